package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/janboddez/import-from-pixelfed/internal/models"
)

type AccountRepository interface {
	Get(ctx context.Context) (*models.Account, error)
	Save(ctx context.Context, account *models.Account) error
	// ClearTokens forgets the token pair but keeps the registered client.
	ClearTokens(ctx context.Context) error
	// ClearCredentials forgets client ID/secret and the token pair; a new app
	// registration is required afterwards.
	ClearCredentials(ctx context.Context) error
}

type accountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Get(ctx context.Context) (*models.Account, error) {
	query := `
		SELECT id, host, client_id, client_secret, access_token, refresh_token, token_expires_at, account_id, account_username, created_at, updated_at
		FROM pixelfed_account
		WHERE id = 1
	`

	var account models.Account
	var expiresAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query).Scan(&account.ID, &account.Host, &account.ClientID,
		&account.ClientSecret, &account.AccessToken, &account.RefreshToken, &expiresAt,
		&account.AccountID, &account.AccountUsername, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	if expiresAt.Valid {
		account.TokenExpiresAt = expiresAt.Time
	}

	return &account, nil
}

func (r *accountRepository) Save(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO pixelfed_account (id, host, client_id, client_secret, access_token, refresh_token, token_expires_at, account_id, account_username)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE
		SET host = EXCLUDED.host,
			client_id = EXCLUDED.client_id,
			client_secret = EXCLUDED.client_secret,
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			token_expires_at = EXCLUDED.token_expires_at,
			account_id = EXCLUDED.account_id,
			account_username = EXCLUDED.account_username,
			updated_at = CURRENT_TIMESTAMP
	`

	var expiresAt interface{}
	if !account.TokenExpiresAt.IsZero() {
		expiresAt = account.TokenExpiresAt.UTC()
	}

	_, err := r.db.ExecContext(ctx, query, account.Host, account.ClientID, account.ClientSecret,
		account.AccessToken, account.RefreshToken, expiresAt, account.AccountID, account.AccountUsername)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}

func (r *accountRepository) ClearTokens(ctx context.Context) error {
	query := `
		UPDATE pixelfed_account
		SET access_token = '', refresh_token = '', token_expires_at = NULL, updated_at = $1
		WHERE id = 1
	`
	_, err := r.db.ExecContext(ctx, query, time.Now())
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *accountRepository) ClearCredentials(ctx context.Context) error {
	query := `
		UPDATE pixelfed_account
		SET client_id = '', client_secret = '', access_token = '', refresh_token = '', token_expires_at = NULL, account_id = '', account_username = '', updated_at = $1
		WHERE id = 1
	`
	_, err := r.db.ExecContext(ctx, query, time.Now())
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
