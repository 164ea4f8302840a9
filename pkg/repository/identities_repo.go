package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jirani/jirani-auth/pkg/domain"
)

const identityColumns = `id, user_id, type, provider, provider_account_id,
	       refresh_token, access_token, expires_at, token_type, scope, id_token,
	       created_at, updated_at`

// IdentitiesRepository handles linked external-provider identities.
type IdentitiesRepository struct {
	db *sql.DB
}

// NewIdentitiesRepository creates a new identities repository.
func NewIdentitiesRepository(db *sql.DB) *IdentitiesRepository {
	return &IdentitiesRepository{db: db}
}

// Create creates a new linked identity.
func (r *IdentitiesRepository) Create(ctx context.Context, identity *domain.LinkedIdentity) error {
	query := `
		INSERT INTO accounts (id, user_id, type, provider, provider_account_id,
		                      refresh_token, access_token, expires_at, token_type,
		                      scope, id_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.ExecContext(ctx, query,
		identity.ID, identity.UserID, identity.Type, identity.Provider,
		identity.ProviderAccountID, identity.RefreshToken, identity.AccessToken,
		identity.ExpiresAt, identity.TokenType, identity.Scope, identity.IDToken,
		identity.CreatedAt, identity.UpdatedAt,
	)
	return err
}

// CreateTx creates a new linked identity within a transaction.
func (r *IdentitiesRepository) CreateTx(ctx context.Context, tx *sql.Tx, identity *domain.LinkedIdentity) error {
	query := `
		INSERT INTO accounts (id, user_id, type, provider, provider_account_id,
		                      refresh_token, access_token, expires_at, token_type,
		                      scope, id_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := tx.ExecContext(ctx, query,
		identity.ID, identity.UserID, identity.Type, identity.Provider,
		identity.ProviderAccountID, identity.RefreshToken, identity.AccessToken,
		identity.ExpiresAt, identity.TokenType, identity.Scope, identity.IDToken,
		identity.CreatedAt, identity.UpdatedAt,
	)
	return err
}

// GetByProviderAccount retrieves the identity for a (provider, provider
// account id) pair. At most one user may claim a given external identity.
func (r *IdentitiesRepository) GetByProviderAccount(ctx context.Context, provider, providerAccountID string) (*domain.LinkedIdentity, error) {
	query := `
		SELECT ` + identityColumns + `
		FROM accounts
		WHERE provider = $1 AND provider_account_id = $2
	`
	identity := &domain.LinkedIdentity{}
	err := r.db.QueryRowContext(ctx, query, provider, providerAccountID).Scan(
		&identity.ID, &identity.UserID, &identity.Type, &identity.Provider,
		&identity.ProviderAccountID, &identity.RefreshToken, &identity.AccessToken,
		&identity.ExpiresAt, &identity.TokenType, &identity.Scope, &identity.IDToken,
		&identity.CreatedAt, &identity.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrIdentityNotFound
	}
	if err != nil {
		return nil, err
	}
	return identity, nil
}

// ListProvidersByUser returns the provider names linked to a user.
func (r *IdentitiesRepository) ListProvidersByUser(ctx context.Context, userID uuid.UUID) ([]string, error) {
	query := `SELECT provider FROM accounts WHERE user_id = $1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var providers []string
	for rows.Next() {
		var provider string
		if err := rows.Scan(&provider); err != nil {
			return nil, err
		}
		providers = append(providers, provider)
	}
	return providers, rows.Err()
}
