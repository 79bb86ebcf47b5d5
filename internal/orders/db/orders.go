package db

import (
	"context"
)

const createOrder = `
INSERT INTO orders (id, number, user_id, customer_name, customer_email, status, total)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

// CreateOrderParams はCreateOrderのパラメータ。
type CreateOrderParams struct {
	ID            string
	Number        string
	UserID        string
	CustomerName  string
	CustomerEmail string
	Status        string
	Total         float64
}

// CreateOrder は注文を作成する。
func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) error {
	_, err := q.db.ExecContext(ctx, createOrder,
		arg.ID, arg.Number, arg.UserID, arg.CustomerName, arg.CustomerEmail, arg.Status, arg.Total)
	return err
}

const createOrderItem = `
INSERT INTO order_items (order_id, product_id, name, price, qty)
VALUES (?, ?, ?, ?, ?)
`

// CreateOrderItemParams はCreateOrderItemのパラメータ。
type CreateOrderItemParams struct {
	OrderID   string
	ProductID string
	Name      string
	Price     float64
	Qty       int64
}

// CreateOrderItem は注文明細を作成する。
func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) error {
	_, err := q.db.ExecContext(ctx, createOrderItem,
		arg.OrderID, arg.ProductID, arg.Name, arg.Price, arg.Qty)
	return err
}

const getOrderByID = `
SELECT id, number, user_id, customer_name, customer_email, status, total, created_at
FROM orders WHERE id = ?
`

// GetOrderByID は指定IDの注文を取得する。
func (q *Queries) GetOrderByID(ctx context.Context, id string) (Order, error) {
	row := q.db.QueryRowContext(ctx, getOrderByID, id)
	var o Order
	err := row.Scan(&o.ID, &o.Number, &o.UserID, &o.CustomerName, &o.CustomerEmail,
		&o.Status, &o.Total, &o.CreatedAt)
	return o, err
}

const listOrders = `
SELECT id, number, user_id, customer_name, customer_email, status, total, created_at
FROM orders ORDER BY created_at DESC, number DESC
`

// ListOrders は注文を新しい順に取得する。
func (q *Queries) ListOrders(ctx context.Context) ([]Order, error) {
	rows, err := q.db.QueryContext(ctx, listOrders)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var orders []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.Number, &o.UserID, &o.CustomerName, &o.CustomerEmail,
			&o.Status, &o.Total, &o.CreatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

const listOrderItems = `
SELECT id, order_id, product_id, name, price, qty
FROM order_items WHERE order_id = ? ORDER BY id ASC
`

// ListOrderItems は注文の明細を取得する。
func (q *Queries) ListOrderItems(ctx context.Context, orderID string) ([]OrderItem, error) {
	rows, err := q.db.QueryContext(ctx, listOrderItems, orderID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Name, &it.Price, &it.Qty); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

const countOrders = `
SELECT COUNT(*) FROM orders
`

// CountOrders は注文総数を返す。
func (q *Queries) CountOrders(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countOrders)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const maxOrderSequence = `
SELECT COALESCE(MAX(CAST(SUBSTR(number, 3) AS INTEGER)), 0) FROM orders
`

// MaxOrderSequence は採番済み注文番号（A-NNNN形式）の数値部分の最大値を返す。
// 注文が1件も無い場合は0を返す。注文番号の採番に使う。
func (q *Queries) MaxOrderSequence(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, maxOrderSequence)
	var seq int64
	err := row.Scan(&seq)
	return seq, err
}

const updateOrderStatus = `
UPDATE orders SET status = ? WHERE id = ?
`

// UpdateOrderStatus は注文のステータスを更新する。
// 更新された行数を返す。0の場合は該当注文が存在しない。
func (q *Queries) UpdateOrderStatus(ctx context.Context, id, status string) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateOrderStatus, status, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const summarizeOrders = `
SELECT COUNT(*), COALESCE(SUM(total), 0) FROM orders
`

// OrderSummary は注文の集計結果。
type OrderSummary struct {
	// TotalOrders は注文総数。
	TotalOrders int64
	// Revenue は売上合計（全注文のtotalの合計）。
	Revenue float64
}

// SummarizeOrders は注文総数と売上合計を集計する。
func (q *Queries) SummarizeOrders(ctx context.Context) (OrderSummary, error) {
	row := q.db.QueryRowContext(ctx, summarizeOrders)
	var s OrderSummary
	err := row.Scan(&s.TotalOrders, &s.Revenue)
	return s, err
}

const countOrdersByStatus = `
SELECT status, COUNT(*) FROM orders GROUP BY status ORDER BY status ASC
`

// StatusCount はステータスごとの注文数。
type StatusCount struct {
	// Status は注文ステータス。
	Status string
	// Count は注文数。
	Count int64
}

// CountOrdersByStatus はステータスごとの注文数を集計する。
func (q *Queries) CountOrdersByStatus(ctx context.Context) ([]StatusCount, error) {
	rows, err := q.db.QueryContext(ctx, countOrdersByStatus)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var counts []StatusCount
	for rows.Next() {
		var sc StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, sc)
	}
	return counts, rows.Err()
}
