// Package config は各サービスの起動設定を環境変数から読み込む。
//
// ルーティングテーブルやJWT署名鍵はグローバル変数ではなく、ここで
// 読み込んだ設定値としてサーバーのコンストラクタへ明示的に渡す。
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
)

// defaultJWTSecret は署名鍵が未設定の場合の開発用デフォルト値。
const defaultJWTSecret = "dev_secret_change_me"

// Gateway はgatewayサービスの設定。
type Gateway struct {
	// Port はリッスンポート。
	Port string `env:"PORT" envDefault:"8080"`
	// CORSOrigin は許可するブラウザオリジン。
	CORSOrigin string `env:"CORS_ORIGIN" envDefault:"http://localhost:5173"`
	// JWTSecret はトークン検証用の署名鍵。
	JWTSecret string `env:"AUTH_JWT_SECRET"`
	// AuthURL はauthサービスのベースURL。
	AuthURL string `env:"AUTH_URL" envDefault:"http://localhost:3001"`
	// CatalogURL はcatalogサービスのベースURL。
	CatalogURL string `env:"CATALOG_URL" envDefault:"http://localhost:3002"`
	// SellerURL はsellerサービスのベースURL。
	SellerURL string `env:"SELLER_URL" envDefault:"http://localhost:3003"`
	// OrdersURL はordersサービスのベースURL。
	OrdersURL string `env:"ORDERS_URL" envDefault:"http://localhost:3004"`
	// CookieSecure はHTTPS配備かどうか。falseの場合、バックエンドが
	// 返したSet-CookieからSecure属性を取り除く。
	CookieSecure bool `env:"COOKIE_SECURE" envDefault:"false"`
}

// Auth はauthサービスの設定。
type Auth struct {
	// Port はリッスンポート。
	Port string `env:"PORT" envDefault:"3001"`
	// CORSOrigin は許可するブラウザオリジン。
	CORSOrigin string `env:"CORS_ORIGIN" envDefault:"http://localhost:5173"`
	// JWTSecret はトークン署名鍵。
	JWTSecret string `env:"AUTH_JWT_SECRET"`
	// DBPath はSQLiteデータベースのパス。
	DBPath string `env:"AUTH_DB_PATH" envDefault:"/data/auth.db"`
	// CookieSecure はSecure属性付きCookie（HTTPS配備）を使うかどうか。
	CookieSecure bool `env:"COOKIE_SECURE" envDefault:"false"`
	// SeedDemo はデモユーザーを初期投入するかどうか。
	SeedDemo bool `env:"AUTH_SEED_DEMO" envDefault:"false"`
}

// Catalog はcatalogサービスの設定。
type Catalog struct {
	// Port はリッスンポート。
	Port string `env:"PORT" envDefault:"3002"`
	// CORSOrigin は許可するブラウザオリジン。
	CORSOrigin string `env:"CORS_ORIGIN" envDefault:"http://localhost:5173"`
	// DBPath はSQLiteデータベースのパス。
	DBPath string `env:"CATALOG_DB_PATH" envDefault:"/data/catalog.db"`
	// SeedDemo はデモ商品・カテゴリを初期投入するかどうか。
	SeedDemo bool `env:"CATALOG_SEED_DEMO" envDefault:"false"`
}

// Seller はsellerサービスの設定。
type Seller struct {
	// Port はリッスンポート。
	Port string `env:"PORT" envDefault:"3003"`
	// CORSOrigin は許可するブラウザオリジン。
	CORSOrigin string `env:"CORS_ORIGIN" envDefault:"http://localhost:5173"`
	// JWTSecret はトークン検証用の署名鍵。
	JWTSecret string `env:"AUTH_JWT_SECRET"`
	// DBPath はSQLiteデータベースのパス。
	DBPath string `env:"SELLER_DB_PATH" envDefault:"/data/seller.db"`
	// UploadDir はアップロードファイルの保存先ディレクトリ。
	UploadDir string `env:"UPLOAD_DIR" envDefault:"./uploads"`
	// CatalogURL は商品同期先のcatalogサービスのベースURL。
	CatalogURL string `env:"CATALOG_URL" envDefault:"http://localhost:3002"`
}

// Orders はordersサービスの設定。
type Orders struct {
	// Port はリッスンポート。
	Port string `env:"PORT" envDefault:"3004"`
	// CORSOrigin は許可するブラウザオリジン。
	CORSOrigin string `env:"CORS_ORIGIN" envDefault:"http://localhost:5173"`
	// JWTSecret はトークン検証用の署名鍵。
	JWTSecret string `env:"AUTH_JWT_SECRET"`
	// DBPath はSQLiteデータベースのパス。
	DBPath string `env:"ORDERS_DB_PATH" envDefault:"/data/orders.db"`
	// CatalogURL は価格照会先のcatalogサービスのベースURL。
	CatalogURL string `env:"CATALOG_URL" envDefault:"http://localhost:3002"`
}

// Load は環境変数から設定を読み込む。
// 型パラメータに各サービスの設定構造体を指定する。
func Load[T any]() (*T, error) {
	cfg := new(T)
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("環境変数の読み込みに失敗: %w", err)
	}
	return cfg, nil
}

// ResolveJWTSecret は署名鍵を決定する。
// AUTH_JWT_SECRET → JWT_SECRET → 開発用デフォルト値の順で解決する。
// 全サービスで同じ鍵に揃える必要がある。
func ResolveJWTSecret(fromEnv string) string {
	if fromEnv != "" {
		return fromEnv
	}
	if legacy := os.Getenv("JWT_SECRET"); legacy != "" {
		return legacy
	}
	return defaultJWTSecret
}
