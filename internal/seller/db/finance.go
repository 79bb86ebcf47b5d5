package db

import "context"

const listFinanceEntries = `
SELECT id, kind, concept, amount, occurred_at FROM finance_entries
ORDER BY occurred_at DESC, id DESC
`

// ListFinanceEntries は財務記録を新しい順に取得する。
func (q *Queries) ListFinanceEntries(ctx context.Context) ([]FinanceEntry, error) {
	rows, err := q.db.QueryContext(ctx, listFinanceEntries)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []FinanceEntry
	for rows.Next() {
		var e FinanceEntry
		if err := rows.Scan(&e.ID, &e.Kind, &e.Concept, &e.Amount, &e.OccurredAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

const createFinanceEntry = `
INSERT INTO finance_entries (kind, concept, amount) VALUES (?, ?, ?)
`

// CreateFinanceEntryParams はCreateFinanceEntryのパラメータ。
type CreateFinanceEntryParams struct {
	Kind    string
	Concept string
	Amount  float64
}

// CreateFinanceEntry は財務記録を作成し、採番されたIDを返す。
func (q *Queries) CreateFinanceEntry(ctx context.Context, arg CreateFinanceEntryParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, createFinanceEntry, arg.Kind, arg.Concept, arg.Amount)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}
