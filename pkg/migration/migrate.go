// Package migration は各サービスのSQLiteスキーマをバイナリ埋め込みのSQLから構築する。
// 適用済みバージョンの最大値をschema_migrationsテーブルに記録し、
// それより新しいステップだけを順に流す。
package migration

import (
	"database/sql"
	"fmt"
	"io/fs"
	"log"
	"path"
	"sort"
	"strconv"
	"strings"
)

// step は1つのマイグレーションステップ。SQLは構築時に読み込み済み。
type step struct {
	version int64
	name    string
	sql     string
}

// Run はdir配下の NNNNNN_name.up.sql をバージョン順に適用する。
// 適用済みの最大バージョン以下のステップはスキップされるため、
// 起動のたびに呼んでも安全。
func Run(db *sql.DB, fsys fs.FS, dir string) error {
	steps, err := loadSteps(fsys, dir)
	if err != nil {
		return fmt.Errorf("マイグレーションの読み込みに失敗: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME NOT NULL DEFAULT (datetime('now'))
		)
	`); err != nil {
		return fmt.Errorf("マイグレーション管理テーブルの作成に失敗: %w", err)
	}

	var current int64
	row := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&current); err != nil {
		return fmt.Errorf("適用済みバージョンの取得に失敗: %w", err)
	}

	for _, st := range steps {
		if st.version <= current {
			continue
		}
		if err := apply(db, st); err != nil {
			return fmt.Errorf("マイグレーション %06d_%s の適用に失敗: %w", st.version, st.name, err)
		}
		log.Printf("[Migration] %06d_%s を適用しました", st.version, st.name)
	}

	return nil
}

// loadSteps はdir配下のup.sqlファイルを読み込んでバージョン順に返す。
// ファイル名がバージョン付きの形式に合わないものは無視する。
func loadSteps(fsys fs.FS, dir string) ([]step, error) {
	matches, err := fs.Glob(fsys, path.Join(dir, "*.up.sql"))
	if err != nil {
		return nil, err
	}

	steps := make([]step, 0, len(matches))
	for _, p := range matches {
		prefix, rest, ok := strings.Cut(path.Base(p), "_")
		if !ok {
			continue
		}
		version, err := strconv.ParseInt(prefix, 10, 64)
		if err != nil {
			continue
		}

		content, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step{
			version: version,
			name:    strings.TrimSuffix(rest, ".up.sql"),
			sql:     string(content),
		})
	}

	sort.Slice(steps, func(i, j int) bool { return steps[i].version < steps[j].version })
	return steps, nil
}

// apply は1ステップをトランザクション内で実行し、バージョンを記録する。
func apply(db *sql.DB, st step) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(st.sql); err != nil {
		return fmt.Errorf("SQL実行に失敗: %w", err)
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", st.version); err != nil {
		return fmt.Errorf("バージョン記録に失敗: %w", err)
	}

	return tx.Commit()
}
