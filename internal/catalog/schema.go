package catalog

import (
	"database/sql"
	"fmt"
)

// スキーマ定義。
const schema = `
CREATE TABLE IF NOT EXISTS products (
    -- 商品の一意識別子（sellerサービスが採番）
    id TEXT PRIMARY KEY,
    -- 商品名
    name TEXT NOT NULL,
    -- 価格
    price REAL NOT NULL DEFAULT 0,
    -- 在庫数
    stock INTEGER NOT NULL DEFAULT 0,
    -- カテゴリ名（未分類は空文字列）
    category TEXT NOT NULL DEFAULT '',
    -- 販売者の表示名
    seller_name TEXT NOT NULL DEFAULT '',
    -- 商品画像一覧のJSONシリアライズ
    images_json TEXT NOT NULL DEFAULT '[]',
    -- 作成日時（seller側の作成日時）
    created_at DATETIME NOT NULL DEFAULT (datetime('now')),
    -- 最終同期日時
    synced_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS categories (
    -- カテゴリの一意識別子
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    -- カテゴリ名（一意）
    name TEXT NOT NULL UNIQUE
);

-- 新着順の一覧取得を高速化するインデックス。
CREATE INDEX IF NOT EXISTS idx_products_created_at
    ON products(created_at DESC);

-- カテゴリでの絞り込みを高速化するインデックス。
CREATE INDEX IF NOT EXISTS idx_products_category
    ON products(category);
`

// initSchema はSQLiteデータベースにスキーマを適用する。
func initSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("スキーマの適用に失敗: %w", err)
	}
	return nil
}
