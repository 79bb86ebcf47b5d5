// Package event はサービス間で交換する商品ライフサイクルイベントの型を定義する。
// sellerサービスが商品の作成・更新・削除時に発行し、catalogサービスが
// Read Modelへ反映する。
package event

// Type はイベントの種類を表す。
type Type string

const (
	// TypeProductUpserted は商品が作成または更新されたことを表す。
	TypeProductUpserted Type = "ProductUpserted"
	// TypeProductDeleted は商品が削除されたことを表す。
	TypeProductDeleted Type = "ProductDeleted"
)

// ProductImage は商品画像のペイロード。
type ProductImage struct {
	// URL は画像のURL（/uploads/配下のパス）。
	URL string `json:"url"`
	// Alt は代替テキスト。
	Alt string `json:"alt"`
	// Order は表示順。
	Order int `json:"order"`
}

// ProductUpserted はProductUpsertedイベントのペイロード。
// catalogのRead Modelを丸ごと置き換えるスナップショット形式。
type ProductUpserted struct {
	// ID は商品の一意識別子。
	ID string `json:"id"`
	// Name は商品名。
	Name string `json:"name"`
	// Price は価格。
	Price float64 `json:"price"`
	// Stock は在庫数。
	Stock int64 `json:"stock"`
	// Category はカテゴリ名。未分類の場合は空文字列。
	Category string `json:"category"`
	// SellerName は販売者の表示名。
	SellerName string `json:"seller_name"`
	// Images は商品画像の一覧。
	Images []ProductImage `json:"images"`
	// CreatedAt は作成日時（RFC 3339）。
	CreatedAt string `json:"created_at"`
}
