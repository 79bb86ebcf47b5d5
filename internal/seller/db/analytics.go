package db

import "context"

const summarizeProducts = `
SELECT COUNT(*), COALESCE(SUM(stock), 0), COALESCE(SUM(price * stock), 0)
FROM products
`

// ProductSummary は商品在庫の集計結果。
type ProductSummary struct {
	// TotalProducts は商品数。
	TotalProducts int64
	// TotalStock は在庫総数。
	TotalStock int64
	// InventoryValue は在庫金額（価格×在庫の合計）。
	InventoryValue float64
}

// SummarizeProducts は商品在庫を集計する。
func (q *Queries) SummarizeProducts(ctx context.Context) (ProductSummary, error) {
	row := q.db.QueryRowContext(ctx, summarizeProducts)
	var s ProductSummary
	err := row.Scan(&s.TotalProducts, &s.TotalStock, &s.InventoryValue)
	return s, err
}

const countProductsByCategory = `
SELECT category, COUNT(*) FROM products
GROUP BY category ORDER BY COUNT(*) DESC, category ASC
`

// CategoryCount はカテゴリごとの商品数。
type CategoryCount struct {
	// Category はカテゴリ名。未分類は空文字列。
	Category string
	// Count は商品数。
	Count int64
}

// CountProductsByCategory はカテゴリごとの商品数を集計する。
func (q *Queries) CountProductsByCategory(ctx context.Context) ([]CategoryCount, error) {
	rows, err := q.db.QueryContext(ctx, countProductsByCategory)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var counts []CategoryCount
	for rows.Next() {
		var cc CategoryCount
		if err := rows.Scan(&cc.Category, &cc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, cc)
	}
	return counts, rows.Err()
}

const countLowStockProducts = `
SELECT COUNT(*) FROM products WHERE stock < ?
`

// CountLowStockProducts は在庫が閾値未満の商品数を返す。
func (q *Queries) CountLowStockProducts(ctx context.Context, threshold int64) (int64, error) {
	row := q.db.QueryRowContext(ctx, countLowStockProducts, threshold)
	var n int64
	err := row.Scan(&n)
	return n, err
}
