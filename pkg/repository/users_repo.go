package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jirani/jirani-auth/pkg/domain"
)

const userColumns = `id, email, name, image, country_code, country, role, status,
	       password_hash, referral_code, created_at, updated_at`

// UsersRepository handles user persistence.
type UsersRepository struct {
	db *sql.DB
}

// NewUsersRepository creates a new users repository.
func NewUsersRepository(db *sql.DB) *UsersRepository {
	return &UsersRepository{db: db}
}

func scanUser(row *sql.Row) (*domain.User, error) {
	user := &domain.User{}
	err := row.Scan(
		&user.ID, &user.Email, &user.Name, &user.Image, &user.CountryCode,
		&user.Country, &user.Role, &user.Status, &user.PasswordHash,
		&user.ReferralCode, &user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create creates a new user.
func (r *UsersRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, name, image, country_code, country, role, status,
		                   password_hash, referral_code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.Name, user.Image, user.CountryCode, user.Country,
		user.Role, user.Status, user.PasswordHash, user.ReferralCode,
		user.CreatedAt, user.UpdatedAt,
	)
	if IsUniqueViolation(err, "users_email_unique") {
		return domain.ErrEmailTaken
	}
	return err
}

// CreateTx creates a new user within a transaction.
func (r *UsersRepository) CreateTx(ctx context.Context, tx *sql.Tx, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, name, image, country_code, country, role, status,
		                   password_hash, referral_code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := tx.ExecContext(ctx, query,
		user.ID, user.Email, user.Name, user.Image, user.CountryCode, user.Country,
		user.Role, user.Status, user.PasswordHash, user.ReferralCode,
		user.CreatedAt, user.UpdatedAt,
	)
	if IsUniqueViolation(err, "users_email_unique") {
		return domain.ErrEmailTaken
	}
	return err
}

// CreateWithIdentity creates a user and its linked identity in one
// transaction so a failure cannot leave an account with no usable
// authentication method.
func (r *UsersRepository) CreateWithIdentity(ctx context.Context, user *domain.User, identity *domain.LinkedIdentity) error {
	identities := &IdentitiesRepository{db: r.db}
	return Tx(ctx, r.db, func(tx *sql.Tx) error {
		if err := r.CreateTx(ctx, tx, user); err != nil {
			return err
		}
		return identities.CreateTx(ctx, tx, identity)
	})
}

// GetByID retrieves a user by ID.
func (r *UsersRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

// GetByEmail retrieves a user by email. The caller is responsible for
// normalizing the email before lookup.
func (r *UsersRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

// ExistsByEmail checks if a user exists by email.
func (r *UsersRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, email).Scan(&exists)
	return exists, err
}

// ExistsByReferralCode checks if a referral code is already claimed.
func (r *UsersRepository) ExistsByReferralCode(ctx context.Context, code string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE referral_code = $1)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, code).Scan(&exists)
	return exists, err
}

// UpdateImage sets the user's profile image.
func (r *UsersRepository) UpdateImage(ctx context.Context, id uuid.UUID, image string) error {
	query := `
		UPDATE users
		SET image = $2, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id, image)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// SetPassword stores a password hash, enabling credential sign-in for the
// account.
func (r *UsersRepository) SetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id, passwordHash)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// Delete permanently deletes a user. Linked identities cascade via the
// accounts foreign key.
func (r *UsersRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM users WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
