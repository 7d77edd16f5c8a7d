package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/mattn/go-sqlite3"

	"slotbook/internal/models"
)

// CreateUser inserts a new interviewer account. Returns ErrEmailTaken when
// the email is already registered.
func (db *DB) CreateUser(ctx context.Context, u *models.User) error {
	now := time.Now()
	res, err := db.ExecContext(ctx,
		`INSERT INTO users (email, full_name, password_hash, created_at)
		VALUES (?, ?, ?, ?)`,
		u.Email, u.FullName, u.PasswordHash, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = id
	u.CreatedAt = now
	return nil
}

// GetUserByEmail returns the user registered under email.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return db.scanUser(db.QueryRowContext(ctx,
		"SELECT id, email, full_name, password_hash, created_at FROM users WHERE email = ?",
		email,
	))
}

// GetUserByID returns the user with the given id.
func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return db.scanUser(db.QueryRowContext(ctx,
		"SELECT id, email, full_name, password_hash, created_at FROM users WHERE id = ?",
		id,
	))
}

func (db *DB) scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func isUniqueViolation(err error) bool {
	if sqliteErr, ok := err.(sqlite3.Error); ok {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
