package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/gekaluck/couple-moments-sub000/core/database"
	"github.com/gekaluck/couple-moments-sub000/core/logger"
	"github.com/gekaluck/couple-moments-sub000/modules/account/entity"

	"github.com/google/uuid"
)

type AccountRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.ConnectedAccount, error)
	// GetActiveByUserAndProvider returns the one usable (non-revoked)
	// account for a (user, provider) pair, or nil.
	GetActiveByUserAndProvider(ctx context.Context, userID uuid.UUID, provider string) (*entity.ConnectedAccount, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]entity.ConnectedAccount, error)
	Upsert(ctx context.Context, account *entity.ConnectedAccount) (*entity.ConnectedAccount, error)
	UpdateCredentials(ctx context.Context, id uuid.UUID, accessCipher, refreshCipher []byte, expiresAt *time.Time) error
	MarkRevoked(ctx context.Context, id uuid.UUID, at time.Time) error
}

type accountRepository struct {
	db database.IDatabase
}

func NewAccountRepository(db database.IDatabase) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.ConnectedAccount, error) {
	var account entity.ConnectedAccount
	query := `SELECT * FROM connected_accounts WHERE id = $1`
	err := r.db.GetContext(ctx, &account, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("AccountRepository:GetByID:Error", "error", err, "account_id", id)
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) GetActiveByUserAndProvider(ctx context.Context, userID uuid.UUID, provider string) (*entity.ConnectedAccount, error) {
	var account entity.ConnectedAccount
	query := `
		SELECT * FROM connected_accounts
		WHERE user_id = $1 AND provider = $2 AND revoked_at IS NULL
	`
	err := r.db.GetContext(ctx, &account, query, userID, provider)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("AccountRepository:GetActiveByUserAndProvider:Error", "error", err, "user_id", userID)
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]entity.ConnectedAccount, error) {
	var accounts []entity.ConnectedAccount
	query := `
		SELECT * FROM connected_accounts
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	if err := r.db.SelectContext(ctx, &accounts, query, userID); err != nil {
		logger.Error("AccountRepository:ListByUserID:Error", "error", err, "user_id", userID)
		return nil, err
	}
	return accounts, nil
}

// Upsert creates the (user, provider) account or replaces its credentials,
// clearing revoked_at so a reconnect revives a previously revoked row.
func (r *accountRepository) Upsert(ctx context.Context, account *entity.ConnectedAccount) (*entity.ConnectedAccount, error) {
	query := `
		INSERT INTO connected_accounts
			(user_id, provider, account_email, access_cipher, refresh_cipher, token_expires_at, scope)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, provider)
		DO UPDATE SET
			account_email = EXCLUDED.account_email,
			access_cipher = EXCLUDED.access_cipher,
			refresh_cipher = EXCLUDED.refresh_cipher,
			token_expires_at = EXCLUDED.token_expires_at,
			scope = EXCLUDED.scope,
			revoked_at = NULL,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		account.UserID, account.Provider, account.AccountEmail,
		account.AccessCipher, account.RefreshCipher, account.TokenExpiresAt, account.Scope,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		logger.Error("AccountRepository:Upsert:Error", "error", err, "user_id", account.UserID)
		return nil, err
	}
	account.RevokedAt = nil
	return account, nil
}

func (r *accountRepository) UpdateCredentials(ctx context.Context, id uuid.UUID, accessCipher, refreshCipher []byte, expiresAt *time.Time) error {
	query := `
		UPDATE connected_accounts
		SET access_cipher = $1,
		    refresh_cipher = COALESCE($2, refresh_cipher),
		    token_expires_at = $3,
		    updated_at = NOW()
		WHERE id = $4
	`
	if err := r.db.ExecContext(ctx, query, accessCipher, refreshCipher, expiresAt, id); err != nil {
		logger.Error("AccountRepository:UpdateCredentials:Error", "error", err, "account_id", id)
		return err
	}
	return nil
}

func (r *accountRepository) MarkRevoked(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE connected_accounts
		SET revoked_at = $1, updated_at = NOW()
		WHERE id = $2 AND revoked_at IS NULL
	`
	if err := r.db.ExecContext(ctx, query, at, id); err != nil {
		logger.Error("AccountRepository:MarkRevoked:Error", "error", err, "account_id", id)
		return err
	}
	return nil
}
