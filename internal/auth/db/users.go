package db

import "context"

const createUser = `
INSERT INTO users (id, name, email, password_hash, role, plan)
VALUES (?, ?, ?, ?, ?, ?)
`

// CreateUserParams はCreateUserのパラメータ。
type CreateUserParams struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	Plan         string
}

// CreateUser は新しいユーザーを作成する。
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) error {
	_, err := q.db.ExecContext(ctx, createUser,
		arg.ID, arg.Name, arg.Email, arg.PasswordHash, arg.Role, arg.Plan)
	return err
}

const getUserByID = `
SELECT id, name, email, password_hash, role, plan, created_at, updated_at
FROM users WHERE id = ?
`

// GetUserByID はIDでユーザーを取得する。
func (q *Queries) GetUserByID(ctx context.Context, id string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByID, id)
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Plan, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

const getUserByEmail = `
SELECT id, name, email, password_hash, role, plan, created_at, updated_at
FROM users WHERE email = ?
`

// GetUserByEmail はメールアドレスでユーザーを取得する。
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByEmail, email)
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Plan, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

const updateUserPlan = `
UPDATE users SET plan = ?, updated_at = datetime('now') WHERE id = ?
`

// UpdateUserPlanParams はUpdateUserPlanのパラメータ。
type UpdateUserPlanParams struct {
	Plan string
	ID   string
}

// UpdateUserPlan はユーザーのプラン階層を更新する。
func (q *Queries) UpdateUserPlan(ctx context.Context, arg UpdateUserPlanParams) error {
	_, err := q.db.ExecContext(ctx, updateUserPlan, arg.Plan, arg.ID)
	return err
}

const countUsers = `
SELECT COUNT(*) FROM users
`

// CountUsers はユーザー数を返す。デモシードの投入判定に使用する。
func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countUsers)
	var n int64
	err := row.Scan(&n)
	return n, err
}
