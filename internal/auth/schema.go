package auth

import (
	"database/sql"
	"fmt"
)

// スキーマ定義。
const schema = `
CREATE TABLE IF NOT EXISTS users (
    -- ユーザーの一意識別子
    id TEXT PRIMARY KEY,
    -- 表示名
    name TEXT NOT NULL DEFAULT '',
    -- メールアドレス（一意）
    email TEXT NOT NULL,
    -- bcryptでハッシュ化されたパスワード
    password_hash TEXT NOT NULL,
    -- 役割（buyer/seller/admin）
    role TEXT NOT NULL DEFAULT 'buyer',
    -- プラン階層（free/pro/enterprise）
    plan TEXT NOT NULL DEFAULT 'free',
    -- 作成日時
    created_at DATETIME NOT NULL DEFAULT (datetime('now')),
    -- 更新日時
    updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email
    ON users(email);
`

// initSchema はSQLiteデータベースにスキーマを適用する。
func initSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("スキーマの適用に失敗: %w", err)
	}
	return nil
}
