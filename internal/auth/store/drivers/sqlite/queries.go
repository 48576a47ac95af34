package sqlite

import (
	"context"
	"database/sql"
	"time"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type queries struct {
	db dbtx
}

type scanner interface {
	Scan(dest ...any) error
}

type userRow struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         string
	CreatedBy    sql.NullString
	UpdatedBy    sql.NullString
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const userColumns = `id, email, name, password_hash, role, created_by, updated_by, created_at, updated_at`

func scanUser(s scanner) (userRow, error) {
	var r userRow
	err := s.Scan(&r.ID, &r.Email, &r.Name, &r.PasswordHash, &r.Role,
		&r.CreatedBy, &r.UpdatedBy, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

const getUserByID = `SELECT ` + userColumns + ` FROM users WHERE id = ?`

func (q *queries) GetUserByID(ctx context.Context, id string) (userRow, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByID, id))
}

const getUserByEmail = `SELECT ` + userColumns + ` FROM users WHERE email = ? COLLATE NOCASE`

func (q *queries) GetUserByEmail(ctx context.Context, email string) (userRow, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByEmail, email))
}

const listUsers = `SELECT ` + userColumns + ` FROM users ORDER BY id DESC`

func (q *queries) ListUsers(ctx context.Context) ([]userRow, error) {
	rows, err := q.db.QueryContext(ctx, listUsers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []userRow
	for rows.Next() {
		r, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const createUser = `INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *queries) CreateUser(ctx context.Context, r userRow) error {
	_, err := q.db.ExecContext(ctx, createUser,
		r.ID, r.Email, r.Name, r.PasswordHash, r.Role,
		r.CreatedBy, r.UpdatedBy, r.CreatedAt, r.UpdatedAt)
	return err
}

const updateUser = `UPDATE users
SET name = ?, password_hash = ?, role = ?, updated_by = ?, updated_at = ?
WHERE id = ?`

func (q *queries) UpdateUser(ctx context.Context, r userRow) (sql.Result, error) {
	return q.db.ExecContext(ctx, updateUser,
		r.Name, r.PasswordHash, r.Role, r.UpdatedBy, r.UpdatedAt, r.ID)
}

const deleteUser = `DELETE FROM users WHERE id = ?`

func (q *queries) DeleteUser(ctx context.Context, id string) (sql.Result, error) {
	return q.db.ExecContext(ctx, deleteUser, id)
}

const countUsers = `SELECT COUNT(*) FROM users`

func (q *queries) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countUsers).Scan(&n)
	return n, err
}

type contentRow struct {
	ID        string
	Title     string
	Blocks    string
	CreatedBy sql.NullString
	UpdatedBy sql.NullString
	CreatedAt time.Time
	UpdatedAt time.Time
}

const contentColumns = `id, title, blocks, created_by, updated_by, created_at, updated_at`

func scanContent(s scanner) (contentRow, error) {
	var r contentRow
	err := s.Scan(&r.ID, &r.Title, &r.Blocks, &r.CreatedBy, &r.UpdatedBy, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

const getContentByID = `SELECT ` + contentColumns + ` FROM contents WHERE id = ?`

func (q *queries) GetContentByID(ctx context.Context, id string) (contentRow, error) {
	return scanContent(q.db.QueryRowContext(ctx, getContentByID, id))
}

const listContents = `SELECT ` + contentColumns + ` FROM contents ORDER BY id DESC`

func (q *queries) ListContents(ctx context.Context) ([]contentRow, error) {
	rows, err := q.db.QueryContext(ctx, listContents)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []contentRow
	for rows.Next() {
		r, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const createContent = `INSERT INTO contents (` + contentColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`

func (q *queries) CreateContent(ctx context.Context, r contentRow) error {
	_, err := q.db.ExecContext(ctx, createContent,
		r.ID, r.Title, r.Blocks, r.CreatedBy, r.UpdatedBy, r.CreatedAt, r.UpdatedAt)
	return err
}

const updateContent = `UPDATE contents
SET title = ?, blocks = ?, updated_by = ?, updated_at = ?
WHERE id = ?`

func (q *queries) UpdateContent(ctx context.Context, r contentRow) (sql.Result, error) {
	return q.db.ExecContext(ctx, updateContent, r.Title, r.Blocks, r.UpdatedBy, r.UpdatedAt, r.ID)
}

const deleteContent = `DELETE FROM contents WHERE id = ?`

func (q *queries) DeleteContent(ctx context.Context, id string) (sql.Result, error) {
	return q.db.ExecContext(ctx, deleteContent, id)
}
