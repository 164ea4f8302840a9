package auth

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/jirani/jirani-auth/pkg/domain"
)

// fakeUserStore is an in-memory UserStore for service tests.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User

	// identities receives the identity half of CreateWithIdentity so
	// tests can assert both records were written.
	identities *fakeIdentityStore

	createErr error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*domain.User)}
}

func (f *fakeUserStore) Create(ctx context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, u := range f.users {
		if u.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserStore) CreateWithIdentity(ctx context.Context, user *domain.User, identity *domain.LinkedIdentity) error {
	if err := f.Create(ctx, user); err != nil {
		return err
	}
	if f.identities != nil {
		return f.identities.Create(ctx, identity)
	}
	return nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := f.GetByEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	return false, nil
}

func (f *fakeUserStore) ExistsByReferralCode(ctx context.Context, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ReferralCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserStore) UpdateImage(ctx context.Context, id uuid.UUID, image string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Image = &image
	return nil
}

func (f *fakeUserStore) SetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = &passwordHash
	return nil
}

// fakeIdentityStore is an in-memory IdentityStore for service tests.
type fakeIdentityStore struct {
	mu         sync.Mutex
	identities []*domain.LinkedIdentity
}

func newFakeIdentityStore() *fakeIdentityStore {
	return &fakeIdentityStore{}
}

func (f *fakeIdentityStore) Create(ctx context.Context, identity *domain.LinkedIdentity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *identity
	f.identities = append(f.identities, &copied)
	return nil
}

func (f *fakeIdentityStore) GetByProviderAccount(ctx context.Context, provider, providerAccountID string) (*domain.LinkedIdentity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.identities {
		if id.Provider == provider && id.ProviderAccountID == providerAccountID {
			copied := *id
			return &copied, nil
		}
	}
	return nil, domain.ErrIdentityNotFound
}

func (f *fakeIdentityStore) ListProvidersByUser(ctx context.Context, userID uuid.UUID) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var providers []string
	for _, id := range f.identities {
		if id.UserID == userID {
			providers = append(providers, id.Provider)
		}
	}
	return providers, nil
}

// fakeResolver returns a fixed location.
type fakeResolver struct {
	loc Location
}

func (f *fakeResolver) Resolve(ctx context.Context, ip string) Location {
	return f.loc
}
