// Gatewayサービスのエントリポイント。
// ブラウザからの全リクエストを受け、認可を判定したうえで
// 各バックエンドサービスへリバースプロキシする。
package main

import (
	"log"

	"github.com/gestorelectric/marketplace/internal/gateway"
	"github.com/gestorelectric/marketplace/pkg/config"
)

func main() {
	cfg, err := config.Load[config.Gateway]()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}

	server := gateway.NewServer(cfg)

	log.Printf("Gatewayを起動します: :%s", cfg.Port)
	if err := server.Run(); err != nil {
		log.Fatalf("Gatewayの起動に失敗: %v", err)
	}
}
