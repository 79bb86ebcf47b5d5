package db

import "time"

// Product はproductsテーブルの1行を表す。
// sellerサービスから同期されるRead Modelのスナップショット。
type Product struct {
	// ID は商品の一意識別子。
	ID string
	// Name は商品名。
	Name string
	// Price は価格。
	Price float64
	// Stock は在庫数。
	Stock int64
	// Category はカテゴリ名。未分類の場合は空文字列。
	Category string
	// SellerName は販売者の表示名。
	SellerName string
	// ImagesJSON は商品画像一覧のJSONシリアライズ。
	ImagesJSON string
	// CreatedAt は作成日時。
	CreatedAt time.Time
	// SyncedAt は最後に同期された日時。
	SyncedAt time.Time
}

// Category はcategoriesテーブルの1行を表す。
type Category struct {
	// ID はカテゴリの一意識別子。
	ID int64
	// Name はカテゴリ名。
	Name string
}
