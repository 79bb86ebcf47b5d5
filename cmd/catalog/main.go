// カタログサービスのエントリポイント。
// 公開ストアフロント向けの商品・カテゴリのRead Modelを提供する。
package main

import (
	"log"

	"github.com/gestorelectric/marketplace/internal/catalog"
	"github.com/gestorelectric/marketplace/pkg/config"
)

func main() {
	cfg, err := config.Load[config.Catalog]()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}

	server, err := catalog.NewServer(cfg)
	if err != nil {
		log.Fatalf("カタログサーバーの初期化に失敗: %v", err)
	}

	log.Printf("カタログサービスを起動します: :%s", cfg.Port)
	if err := server.Run(); err != nil {
		log.Fatalf("カタログサービスの起動に失敗: %v", err)
	}
}
