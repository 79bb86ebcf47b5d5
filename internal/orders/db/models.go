package db

import "time"

// Order はordersテーブルの1行を表す。
type Order struct {
	// ID は注文の一意識別子（UUID）。
	ID string
	// Number は表示用の注文番号（A-1001形式）。
	Number string
	// UserID は購入者のユーザーID。ゲスト購入は空文字列。
	UserID string
	// CustomerName は購入者名。
	CustomerName string
	// CustomerEmail は購入者メールアドレス。
	CustomerEmail string
	// Status は注文ステータス。
	Status string
	// Total は合計金額。
	Total float64
	// CreatedAt は作成日時。
	CreatedAt time.Time
}

// OrderItem はorder_itemsテーブルの1行を表す。
// 商品名と単価は購入時点のスナップショットで、catalog側の変更に追従しない。
type OrderItem struct {
	// ID は明細の一意識別子。
	ID int64
	// OrderID は注文ID。
	OrderID string
	// ProductID は商品ID。
	ProductID string
	// Name は商品名。
	Name string
	// Price は単価。
	Price float64
	// Qty は数量。
	Qty int64
}
