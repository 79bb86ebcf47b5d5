package db

import "context"

const createAuditEvent = `
INSERT INTO audit_events (user_id, action, detail) VALUES (?, ?, ?)
`

// CreateAuditEventParams はCreateAuditEventのパラメータ。
type CreateAuditEventParams struct {
	UserID string
	Action string
	Detail string
}

// CreateAuditEvent は監査イベントを記録する。
func (q *Queries) CreateAuditEvent(ctx context.Context, arg CreateAuditEventParams) error {
	_, err := q.db.ExecContext(ctx, createAuditEvent, arg.UserID, arg.Action, arg.Detail)
	return err
}

const listAuditEvents = `
SELECT id, user_id, action, detail, created_at FROM audit_events
ORDER BY created_at DESC, id DESC LIMIT ?
`

// ListAuditEvents は監査イベントを新しい順に取得する。
func (q *Queries) ListAuditEvents(ctx context.Context, limit int64) ([]AuditEvent, error) {
	rows, err := q.db.QueryContext(ctx, listAuditEvents, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var events []AuditEvent
	for rows.Next() {
		var e AuditEvent
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
