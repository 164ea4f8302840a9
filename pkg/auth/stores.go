package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/jirani/jirani-auth/pkg/domain"
)

// UserStore is the persistence contract the authentication core depends on.
// Implemented by repository.UsersRepository.
type UserStore interface {
	Create(ctx context.Context, user *domain.User) error
	// CreateWithIdentity must create both records atomically.
	CreateWithIdentity(ctx context.Context, user *domain.User, identity *domain.LinkedIdentity) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByReferralCode(ctx context.Context, code string) (bool, error)
	UpdateImage(ctx context.Context, id uuid.UUID, image string) error
	SetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

// IdentityStore is the persistence contract for linked external identities.
// Implemented by repository.IdentitiesRepository.
type IdentityStore interface {
	Create(ctx context.Context, identity *domain.LinkedIdentity) error
	GetByProviderAccount(ctx context.Context, provider, providerAccountID string) (*domain.LinkedIdentity, error)
	ListProvidersByUser(ctx context.Context, userID uuid.UUID) ([]string, error)
}

// Location is a best-effort country resolution for a client IP.
type Location struct {
	CountryCode string // ISO alpha-2
	Country     string // English display name
}

// LocationResolver resolves a client IP to a country. Implementations never
// fail: lookup errors and timeouts degrade to fixed defaults.
type LocationResolver interface {
	Resolve(ctx context.Context, ip string) Location
}
