package db

import "context"

const upsertProduct = `
INSERT INTO products (id, name, price, stock, category, seller_name, images_json, created_at, synced_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))
ON CONFLICT(id) DO UPDATE SET
    name = excluded.name,
    price = excluded.price,
    stock = excluded.stock,
    category = excluded.category,
    seller_name = excluded.seller_name,
    images_json = excluded.images_json,
    synced_at = datetime('now')
`

// UpsertProductParams はUpsertProductのパラメータ。
type UpsertProductParams struct {
	ID         string
	Name       string
	Price      float64
	Stock      int64
	Category   string
	SellerName string
	ImagesJSON string
	CreatedAt  string
}

// UpsertProduct は商品スナップショットを作成または置き換える。
func (q *Queries) UpsertProduct(ctx context.Context, arg UpsertProductParams) error {
	_, err := q.db.ExecContext(ctx, upsertProduct,
		arg.ID, arg.Name, arg.Price, arg.Stock, arg.Category, arg.SellerName, arg.ImagesJSON, arg.CreatedAt)
	return err
}

const deleteProduct = `
DELETE FROM products WHERE id = ?
`

// DeleteProduct は商品スナップショットを削除する。
func (q *Queries) DeleteProduct(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, deleteProduct, id)
	return err
}

const listProducts = `
SELECT id, name, price, stock, category, seller_name, images_json, created_at, synced_at
FROM products ORDER BY created_at DESC LIMIT ?
`

// ListProducts は商品を新しい順に取得する。
func (q *Queries) ListProducts(ctx context.Context, limit int64) ([]Product, error) {
	rows, err := q.db.QueryContext(ctx, listProducts, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.Category,
			&p.SellerName, &p.ImagesJSON, &p.CreatedAt, &p.SyncedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

const getProductByID = `
SELECT id, name, price, stock, category, seller_name, images_json, created_at, synced_at
FROM products WHERE id = ?
`

// GetProductByID はIDで商品を取得する。
func (q *Queries) GetProductByID(ctx context.Context, id string) (Product, error) {
	row := q.db.QueryRowContext(ctx, getProductByID, id)
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.Category,
		&p.SellerName, &p.ImagesJSON, &p.CreatedAt, &p.SyncedAt)
	return p, err
}

const countProducts = `
SELECT COUNT(*) FROM products
`

// CountProducts は商品数を返す。デモシードの投入判定に使用する。
func (q *Queries) CountProducts(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countProducts)
	var n int64
	err := row.Scan(&n)
	return n, err
}

const listCategories = `
SELECT id, name FROM categories ORDER BY name ASC
`

// ListCategories はカテゴリを名前順に取得する。
func (q *Queries) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := q.db.QueryContext(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

const createCategory = `
INSERT INTO categories (name) VALUES (?) ON CONFLICT(name) DO NOTHING
`

// CreateCategory はカテゴリを作成する。同名カテゴリが既にあれば何もしない。
func (q *Queries) CreateCategory(ctx context.Context, name string) error {
	_, err := q.db.ExecContext(ctx, createCategory, name)
	return err
}

const listDistinctProductCategories = `
SELECT DISTINCT category FROM products WHERE category != '' ORDER BY category ASC
`

// ListDistinctProductCategories は商品に設定されているカテゴリ名を重複なしで取得する。
// categoriesテーブルが空の場合のフォールバックに使用する。
func (q *Queries) ListDistinctProductCategories(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listDistinctProductCategories)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
