// 認証サービスのエントリポイント。
// ユーザー登録・ログイン・セッション確認・プラン変更を担当する。
package main

import (
	"log"

	"github.com/gestorelectric/marketplace/internal/auth"
	"github.com/gestorelectric/marketplace/pkg/config"
)

func main() {
	cfg, err := config.Load[config.Auth]()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}

	server, err := auth.NewServer(cfg)
	if err != nil {
		log.Fatalf("認証サーバーの初期化に失敗: %v", err)
	}

	log.Printf("認証サービスを起動します: :%s", cfg.Port)
	if err := server.Run(); err != nil {
		log.Fatalf("認証サービスの起動に失敗: %v", err)
	}
}
