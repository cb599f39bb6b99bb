package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/skillshare/internal/apperror"
	"github.com/sakif/skillshare/internal/model"
	"github.com/sakif/skillshare/internal/repository"
)

const accountColumns = `id, name, email, password, skills, theme, linkedin, github_profile, created_at, updated_at`

// Create inserts a new account. The email column carries a UNIQUE
// constraint; a collision is translated into apperror.ErrConflict so the
// service layer can report "already registered" without knowing about SQL.
func (db *DB) Create(ctx context.Context, account *model.Account) error {
	account.ID = xid.New().String()

	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now
	if account.Theme == "" {
		account.Theme = model.ThemeLight
	}
	if account.Skills == nil {
		account.Skills = []string{}
	}

	skills, err := marshalList(account.Skills)
	if err != nil {
		return fmt.Errorf("sqlite: creating account: %w", err)
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO accounts (`+accountColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		account.ID,
		account.Name,
		account.Email,
		account.Password,
		skills,
		account.Theme,
		account.LinkedIn,
		account.GitHubProfile,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		// modernc.org/sqlite surfaces constraint violations as plain errors;
		// the message is the only discriminator available.
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return apperror.Duplicate("account", account.Email)
		}
		return fmt.Errorf("sqlite: creating account: %w", err)
	}

	return nil
}

func (db *DB) GetByID(ctx context.Context, id string) (*model.Account, error) {
	return db.getAccount(ctx, `WHERE id = ?`, id)
}

func (db *DB) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	return db.getAccount(ctx, `WHERE email = ?`, email)
}

func (db *DB) getAccount(ctx context.Context, where string, arg any) (*model.Account, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts `+where, arg)

	account, err := scanAccount(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("account", fmt.Sprint(arg))
		}
		return nil, fmt.Errorf("sqlite: getting account %v: %w", arg, err)
	}
	return account, nil
}

// GetByIDs batch-fetches accounts by ID in one query. IDs with no matching
// record are skipped.
func (db *DB) GetByIDs(ctx context.Context, ids []string) ([]model.Account, error) {
	if len(ids) == 0 {
		return []model.Account{}, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: getting accounts by ids: %w", err)
	}
	defer rows.Close()

	accounts := []model.Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning account row: %w", err)
		}
		accounts = append(accounts, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating accounts: %w", err)
	}

	return accounts, nil
}

// List returns every account except excludeID, oldest first (store order).
func (db *DB) List(ctx context.Context, excludeID string) ([]model.Account, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id != ? ORDER BY created_at`,
		excludeID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing accounts: %w", err)
	}
	defer rows.Close()

	accounts := []model.Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning account row: %w", err)
		}
		accounts = append(accounts, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating accounts: %w", err)
	}

	return accounts, nil
}

// UpdateSettings applies an allow-listed partial update. Fetch-then-update:
// the read doubles as the existence check, and we return the full updated
// record to the caller.
func (db *DB) UpdateSettings(ctx context.Context, id string, upd repository.SettingsUpdate) (*model.Account, error) {
	account, err := db.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		account.Name = *upd.Name
	}
	if upd.Theme != nil {
		account.Theme = *upd.Theme
	}
	if upd.LinkedIn != nil {
		account.LinkedIn = *upd.LinkedIn
	}
	if upd.GitHubProfile != nil {
		account.GitHubProfile = *upd.GitHubProfile
	}
	account.UpdatedAt = time.Now()

	_, err = db.conn.ExecContext(ctx,
		`UPDATE accounts
		 SET name = ?, theme = ?, linkedin = ?, github_profile = ?, updated_at = ?
		 WHERE id = ?`,
		account.Name,
		account.Theme,
		account.LinkedIn,
		account.GitHubProfile,
		account.UpdatedAt,
		account.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating account %s: %w", id, err)
	}

	return account, nil
}

// ReplaceSkills replaces the whole skill list for an account.
func (db *DB) ReplaceSkills(ctx context.Context, id string, skills []string) error {
	encoded, err := marshalList(skills)
	if err != nil {
		return fmt.Errorf("sqlite: replacing skills for %s: %w", id, err)
	}

	result, err := db.conn.ExecContext(ctx,
		`UPDATE accounts SET skills = ?, updated_at = ? WHERE id = ?`,
		encoded, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: replacing skills for %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("account", id)
	}

	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(s scanner) (*model.Account, error) {
	var (
		a         model.Account
		rawSkills string
	)
	err := s.Scan(
		&a.ID,
		&a.Name,
		&a.Email,
		&a.Password,
		&rawSkills,
		&a.Theme,
		&a.LinkedIn,
		&a.GitHubProfile,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if a.Skills, err = unmarshalList(rawSkills); err != nil {
		return nil, err
	}
	return &a, nil
}
