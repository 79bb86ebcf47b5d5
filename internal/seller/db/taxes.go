package db

import "context"

const listTaxes = `
SELECT id, region, rate FROM seller_taxes ORDER BY id ASC
`

// ListTaxes は税設定をID順に取得する。
func (q *Queries) ListTaxes(ctx context.Context) ([]SellerTax, error) {
	rows, err := q.db.QueryContext(ctx, listTaxes)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var taxes []SellerTax
	for rows.Next() {
		var t SellerTax
		if err := rows.Scan(&t.ID, &t.Region, &t.Rate); err != nil {
			return nil, err
		}
		taxes = append(taxes, t)
	}
	return taxes, rows.Err()
}

const createTax = `
INSERT INTO seller_taxes (region, rate) VALUES (?, ?)
`

// CreateTaxParams はCreateTaxのパラメータ。
type CreateTaxParams struct {
	Region string
	Rate   float64
}

// CreateTax は税設定を作成し、採番されたIDを返す。
func (q *Queries) CreateTax(ctx context.Context, arg CreateTaxParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, createTax, arg.Region, arg.Rate)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

const deleteTax = `
DELETE FROM seller_taxes WHERE id = ?
`

// DeleteTax は税設定を削除する。
func (q *Queries) DeleteTax(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteTax, id)
	return err
}
