package db

import "time"

// Product はproductsテーブルの1行を表す。
type Product struct {
	// ID は商品の一意識別子（UUID）。
	ID string
	// Name は商品名。
	Name string
	// Price は価格。
	Price float64
	// Stock は在庫数。
	Stock int64
	// Category はカテゴリ名。未分類の場合は空文字列。
	Category string
	// SellerID は商品を登録した販売者のユーザーID。
	SellerID string
	// SellerName は販売者の表示名。
	SellerName string
	// CreatedAt は作成日時。
	CreatedAt time.Time
	// UpdatedAt は更新日時。
	UpdatedAt time.Time
}

// ProductImage はproduct_imagesテーブルの1行を表す。
type ProductImage struct {
	// ID は画像レコードの一意識別子。
	ID int64
	// ProductID は商品のID。
	ProductID string
	// URL は画像のURL（/uploads/配下のパス）。
	URL string
	// Alt は代替テキスト。
	Alt string
	// Ord は表示順。
	Ord int64
}

// SellerTax はseller_taxesテーブルの1行を表す。
type SellerTax struct {
	// ID は税設定の一意識別子。
	ID int64
	// Region は適用地域。
	Region string
	// Rate は税率（パーセント）。
	Rate float64
}

// FinanceEntry はfinance_entriesテーブルの1行を表す。
type FinanceEntry struct {
	// ID は記録の一意識別子。
	ID int64
	// Kind は種別（income/expense）。
	Kind string
	// Concept は内容の説明。
	Concept string
	// Amount は金額。
	Amount float64
	// OccurredAt は発生日時。
	OccurredAt time.Time
}

// AuditEvent はaudit_eventsテーブルの1行を表す。
type AuditEvent struct {
	// ID はイベントの一意識別子。
	ID int64
	// UserID は操作を行ったユーザーのID。
	UserID string
	// Action は操作の種類。
	Action string
	// Detail は操作の詳細。
	Detail string
	// CreatedAt は記録日時。
	CreatedAt time.Time
}
