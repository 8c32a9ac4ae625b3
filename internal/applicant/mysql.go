package applicant

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/intake/internal/intake"
)

// Schema creates the application table.  The UNIQUE keys keep two processes
// from accepting the same applicant.  Applied through component.Migrate.
const Schema = `
CREATE TABLE IF NOT EXISTS application (
    id           BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
    email        VARCHAR(255) NOT NULL,
    mobile       VARCHAR(32)  NOT NULL,
    full_name    VARCHAR(255) NOT NULL,
    payload      JSON         NOT NULL,
    submitted_at DATETIME(6)  NOT NULL,
    UNIQUE KEY uq_application_email  (email),
    UNIQUE KEY uq_application_mobile (mobile)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// errDupEntry is MySQL's ER_DUP_ENTRY.
const errDupEntry = 1062

// MySQL is a Registry on a shared database.
type MySQL struct {
	db *sqlx.DB
}

// NewMySQL wraps an open pool whose schema is already applied.
func NewMySQL(db *sqlx.DB) *MySQL { return &MySQL{db: db} }

func (s *MySQL) ContainsEmail(ctx context.Context, email string) (bool, error) {
	return s.exists(ctx, `SELECT 1 FROM application WHERE email = ? LIMIT 1`, email)
}

func (s *MySQL) ContainsMobile(ctx context.Context, mobile string) (bool, error) {
	return s.exists(ctx, `SELECT 1 FROM application WHERE mobile = ? LIMIT 1`, mobile)
}

func (s *MySQL) exists(ctx context.Context, q, arg string) (bool, error) {
	var one int
	err := s.db.GetContext(ctx, &one, q, arg)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

// Append inserts a.  A unique-key violation is reported as
// intake.ErrDuplicate.
func (s *MySQL) Append(ctx context.Context, a *intake.Accepted) error {
	payload, err := json.Marshal(a.Application())
	if err != nil {
		return fmt.Errorf("encode application: %w", err)
	}

	const q = `
        INSERT INTO application (email, mobile, full_name, payload, submitted_at)
        VALUES (?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, q, a.Email(), a.Mobile(), a.FullName(), payload, a.SubmittedAt().UTC())

	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == errDupEntry {
		return intake.ErrDuplicate
	}
	return err
}

// Count returns the number of stored applications.
func (s *MySQL) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM application`)
	return n, err
}
