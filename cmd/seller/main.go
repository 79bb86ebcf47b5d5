// 販売者サービスのエントリポイント。
// 商品管理・画像アップロード・税設定・財務記録・アナリティクスを担当し、
// 商品の変更をカタログサービスへ同期する。
package main

import (
	"log"

	"github.com/gestorelectric/marketplace/internal/seller"
	"github.com/gestorelectric/marketplace/pkg/config"
)

func main() {
	cfg, err := config.Load[config.Seller]()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}

	server, err := seller.NewServer(cfg)
	if err != nil {
		log.Fatalf("販売者サーバーの初期化に失敗: %v", err)
	}

	log.Printf("販売者サービスを起動します: :%s", cfg.Port)
	if err := server.Run(); err != nil {
		log.Fatalf("販売者サービスの起動に失敗: %v", err)
	}
}
