package db

import "context"

const createProduct = `
INSERT INTO products (id, name, price, stock, category, seller_id, seller_name)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

// CreateProductParams はCreateProductのパラメータ。
type CreateProductParams struct {
	ID         string
	Name       string
	Price      float64
	Stock      int64
	Category   string
	SellerID   string
	SellerName string
}

// CreateProduct は新しい商品を作成する。
func (q *Queries) CreateProduct(ctx context.Context, arg CreateProductParams) error {
	_, err := q.db.ExecContext(ctx, createProduct,
		arg.ID, arg.Name, arg.Price, arg.Stock, arg.Category, arg.SellerID, arg.SellerName)
	return err
}

const getProductByID = `
SELECT id, name, price, stock, category, seller_id, seller_name, created_at, updated_at
FROM products WHERE id = ?
`

// GetProductByID はIDで商品を取得する。
func (q *Queries) GetProductByID(ctx context.Context, id string) (Product, error) {
	row := q.db.QueryRowContext(ctx, getProductByID, id)
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.Category,
		&p.SellerID, &p.SellerName, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

const listProducts = `
SELECT id, name, price, stock, category, seller_id, seller_name, created_at, updated_at
FROM products ORDER BY created_at DESC
`

// ListProducts は商品を新しい順に取得する。
func (q *Queries) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := q.db.QueryContext(ctx, listProducts)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.Category,
			&p.SellerID, &p.SellerName, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

const countProducts = `
SELECT COUNT(*) FROM products
`

// CountProducts は商品数を返す。
func (q *Queries) CountProducts(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countProducts)
	var n int64
	err := row.Scan(&n)
	return n, err
}

const updateProduct = `
UPDATE products
SET name = ?, price = ?, stock = ?, category = ?, seller_name = ?, updated_at = datetime('now')
WHERE id = ?
`

// UpdateProductParams はUpdateProductのパラメータ。
type UpdateProductParams struct {
	Name       string
	Price      float64
	Stock      int64
	Category   string
	SellerName string
	ID         string
}

// UpdateProduct は商品を更新する。
func (q *Queries) UpdateProduct(ctx context.Context, arg UpdateProductParams) error {
	_, err := q.db.ExecContext(ctx, updateProduct,
		arg.Name, arg.Price, arg.Stock, arg.Category, arg.SellerName, arg.ID)
	return err
}

const deleteProduct = `
DELETE FROM products WHERE id = ?
`

// DeleteProduct は商品を削除する。
func (q *Queries) DeleteProduct(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, deleteProduct, id)
	return err
}

const createProductImage = `
INSERT INTO product_images (product_id, url, alt, ord) VALUES (?, ?, ?, ?)
`

// CreateProductImageParams はCreateProductImageのパラメータ。
type CreateProductImageParams struct {
	ProductID string
	URL       string
	Alt       string
	Ord       int64
}

// CreateProductImage は商品画像を登録する。
func (q *Queries) CreateProductImage(ctx context.Context, arg CreateProductImageParams) error {
	_, err := q.db.ExecContext(ctx, createProductImage, arg.ProductID, arg.URL, arg.Alt, arg.Ord)
	return err
}

const listProductImages = `
SELECT id, product_id, url, alt, ord FROM product_images
WHERE product_id = ? ORDER BY ord ASC
`

// ListProductImages は商品の画像を表示順に取得する。
func (q *Queries) ListProductImages(ctx context.Context, productID string) ([]ProductImage, error) {
	rows, err := q.db.QueryContext(ctx, listProductImages, productID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var images []ProductImage
	for rows.Next() {
		var im ProductImage
		if err := rows.Scan(&im.ID, &im.ProductID, &im.URL, &im.Alt, &im.Ord); err != nil {
			return nil, err
		}
		images = append(images, im)
	}
	return images, rows.Err()
}

const deleteProductImages = `
DELETE FROM product_images WHERE product_id = ?
`

// DeleteProductImages は商品の画像をすべて削除する。
// 画像セットの置き換えと商品削除の前処理に使用する。
func (q *Queries) DeleteProductImages(ctx context.Context, productID string) error {
	_, err := q.db.ExecContext(ctx, deleteProductImages, productID)
	return err
}
