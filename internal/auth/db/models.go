package db

import "time"

// User はusersテーブルの1行を表す。
type User struct {
	// ID はユーザーの一意識別子（UUID）。
	ID string
	// Name は表示名。
	Name string
	// Email はメールアドレス。一意。
	Email string
	// PasswordHash はbcryptでハッシュ化されたパスワード。
	PasswordHash string
	// Role は役割（buyer/seller/admin）。
	Role string
	// Plan はプラン階層（free/pro/enterprise）。
	Plan string
	// CreatedAt は作成日時。
	CreatedAt time.Time
	// UpdatedAt は更新日時。
	UpdatedAt time.Time
}
