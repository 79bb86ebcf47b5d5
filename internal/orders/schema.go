package orders

import (
	"database/sql"
	"fmt"
)

// スキーマ定義。
const schema = `
CREATE TABLE IF NOT EXISTS orders (
    -- 注文の一意識別子（UUID）
    id TEXT PRIMARY KEY,
    -- 表示用の注文番号（A-1001形式）
    number TEXT NOT NULL UNIQUE,
    -- 購入者のユーザーID（ゲスト購入は空文字列）
    user_id TEXT NOT NULL DEFAULT '',
    -- 購入者名
    customer_name TEXT NOT NULL,
    -- 購入者メールアドレス
    customer_email TEXT NOT NULL,
    -- ステータス（pending/paid/shipped/delivered/cancelled）
    status TEXT NOT NULL DEFAULT 'pending',
    -- 合計金額
    total REAL NOT NULL DEFAULT 0,
    -- 作成日時
    created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS order_items (
    -- 明細の一意識別子
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    -- 注文ID
    order_id TEXT NOT NULL REFERENCES orders(id),
    -- 商品ID（catalogスナップショット時点）
    product_id TEXT NOT NULL,
    -- 商品名（購入時点のスナップショット）
    name TEXT NOT NULL,
    -- 単価（購入時点のスナップショット）
    price REAL NOT NULL,
    -- 数量
    qty INTEGER NOT NULL
);

-- 新着順の一覧取得を高速化するインデックス。
CREATE INDEX IF NOT EXISTS idx_orders_created_at
    ON orders(created_at DESC);

-- 注文ごとの明細取得を高速化するインデックス。
CREATE INDEX IF NOT EXISTS idx_order_items_order_id
    ON order_items(order_id);
`

// initSchema はSQLiteデータベースにスキーマを適用する。
func initSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("スキーマの適用に失敗: %w", err)
	}
	return nil
}
