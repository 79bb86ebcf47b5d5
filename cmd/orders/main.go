// 注文サービスのエントリポイント。
// チェックアウトの受付と注文の管理・集計を担当する。
package main

import (
	"log"

	"github.com/gestorelectric/marketplace/internal/orders"
	"github.com/gestorelectric/marketplace/pkg/config"
)

func main() {
	cfg, err := config.Load[config.Orders]()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}

	server, err := orders.NewServer(cfg)
	if err != nil {
		log.Fatalf("注文サーバーの初期化に失敗: %v", err)
	}

	log.Printf("注文サービスを起動します: :%s", cfg.Port)
	if err := server.Run(); err != nil {
		log.Fatalf("注文サービスの起動に失敗: %v", err)
	}
}
