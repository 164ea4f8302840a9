// Package auth implements the authentication core: credential verification,
// OAuth account linking and creation, sign-up, and session token assembly.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jirani/jirani-auth/pkg/domain"
)

// Service orchestrates the authentication use cases over the user and
// identity stores.
type Service struct {
	users      UserStore
	identities IdentityStore
	location   LocationResolver
}

// NewService creates a new authentication service. location may be nil, in
// which case new accounts get the fixed default country.
func NewService(users UserStore, identities IdentityStore, location LocationResolver) *Service {
	return &Service{
		users:      users,
		identities: identities,
		location:   location,
	}
}

// AuthenticateCredentials verifies an email/password pair and returns the
// normalized identity payload.
//
// Unknown email, wrong password, and banned accounts all fail with
// ErrInvalidCredentials so the caller cannot distinguish them. An account
// with no stored password fails with ErrOAuthOnlyUser, which the caller may
// surface as "sign in with your provider instead".
func (s *Service) AuthenticateCredentials(ctx context.Context, email, password string) (*domain.Identity, error) {
	email = NormalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("look up user: %w", err)
	}

	if user.IsBanned() {
		return nil, domain.ErrInvalidCredentials
	}

	if !user.HasPassword() {
		return nil, domain.ErrOAuthOnlyUser
	}

	if !VerifyPassword(password, *user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	return identityFromUser(user), nil
}

// ProviderProfile is the user profile asserted by an external provider.
type ProviderProfile struct {
	Provider  string
	AccountID string // provider-assigned account id
	Email     string
	Name      string
	Image     string
}

// ProviderTokens are the opaque provider tokens stored verbatim on the
// linked identity for potential provider API use.
type ProviderTokens struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	Scope        string
	IDToken      string
	ExpiresAt    int64 // unix seconds, zero when the provider sent none
}

// AuthenticateOAuth handles an external-provider identity assertion.
//
// When a user with the asserted email exists this is a link event: the
// identity is attached to that user (if not already linked) and the user's
// role, status, country, and referral code are preserved. Linking trusts
// provider-asserted email equality without a separate ownership handshake;
// that is a deliberate policy choice, not an oversight.
//
// When no user matches, a new account is created with status active together
// with its linked identity in one atomic step. The returned flag reports
// whether a new account was created.
func (s *Service) AuthenticateOAuth(ctx context.Context, profile ProviderProfile, tokens ProviderTokens, clientIP string) (*domain.Identity, bool, error) {
	email := NormalizeEmail(profile.Email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, false, fmt.Errorf("look up user: %w", err)
	}

	if user != nil {
		identity, err := s.linkIdentity(ctx, user, profile, tokens)
		return identity, false, err
	}

	identity, err := s.createOAuthUser(ctx, email, profile, tokens, clientIP)
	return identity, true, err
}

// linkIdentity attaches a provider identity to an existing user.
func (s *Service) linkIdentity(ctx context.Context, user *domain.User, profile ProviderProfile, tokens ProviderTokens) (*domain.Identity, error) {
	_, err := s.identities.GetByProviderAccount(ctx, profile.Provider, profile.AccountID)
	if errors.Is(err, domain.ErrIdentityNotFound) {
		identity := newLinkedIdentity(user.ID, profile, tokens)
		if err := s.identities.Create(ctx, identity); err != nil {
			return nil, fmt.Errorf("link identity: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("look up identity: %w", err)
	}

	// Backfill the profile image from the provider if the account has none.
	if (user.Image == nil || *user.Image == "") && profile.Image != "" {
		if err := s.users.UpdateImage(ctx, user.ID, profile.Image); err != nil {
			return nil, fmt.Errorf("update profile image: %w", err)
		}
		user.Image = &profile.Image
	}

	return identityFromUser(user), nil
}

// createOAuthUser creates a brand-new account from a provider profile. OAuth
// accounts start active, unlike fresh credential accounts.
func (s *Service) createOAuthUser(ctx context.Context, email string, profile ProviderProfile, tokens ProviderTokens, clientIP string) (*domain.Identity, error) {
	referralCode, err := uniqueReferralCode(ctx, s.users)
	if err != nil {
		return nil, err
	}

	loc := s.resolveLocation(ctx, clientIP)

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         profile.Name,
		CountryCode:  loc.CountryCode,
		Country:      &loc.Country,
		Role:         domain.RoleUser,
		Status:       domain.StatusActive,
		ReferralCode: referralCode,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if profile.Image != "" {
		user.Image = &profile.Image
	}

	identity := newLinkedIdentity(user.ID, profile, tokens)

	if err := s.users.CreateWithIdentity(ctx, user, identity); err != nil {
		return nil, fmt.Errorf("create user with identity: %w", err)
	}

	return identityFromUser(user), nil
}

// SignUpInput holds a credential registration request.
type SignUpInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	ReferralCode    string // optional code the new user was referred with
}

// SignUpResult is the created-user projection plus onboarding metadata.
type SignUpResult struct {
	UserID          uuid.UUID
	Email           string
	Name            string
	InitialTier     string
	ReferralApplied bool
}

// InitialTier is the onboarding tier assigned to every new account.
const InitialTier = "bronze"

// SignUp registers a new credential account. New accounts start inactive.
func (s *Service) SignUp(ctx context.Context, input SignUpInput, clientIP string) (*SignUpResult, error) {
	if err := ValidateSignUp(input.Name, input.Email, input.Password, input.ConfirmPassword, input.ReferralCode); err != nil {
		return nil, err
	}

	email := NormalizeEmail(input.Email)

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, domain.ErrEmailTaken
	}

	referralCode, err := uniqueReferralCode(ctx, s.users)
	if err != nil {
		return nil, err
	}

	loc := s.resolveLocation(ctx, clientIP)

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         strings.TrimSpace(input.Name),
		CountryCode:  loc.CountryCode,
		Country:      &loc.Country,
		Role:         domain.RoleUser,
		Status:       domain.StatusInactive,
		PasswordHash: &hash,
		ReferralCode: referralCode,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return &SignUpResult{
		UserID:          user.ID,
		Email:           user.Email,
		Name:            user.Name,
		InitialTier:     InitialTier,
		ReferralApplied: input.ReferralCode != "",
	}, nil
}

// AuthMethods describes how an account can authenticate.
type AuthMethods struct {
	HasPassword bool     `json:"hasPassword"`
	Providers   []string `json:"oauthProviders"`
	HasGitHub   bool     `json:"hasGitHub"`
}

// AuthMethods returns whether a password is set and which providers are
// linked for the given user.
func (s *Service) AuthMethods(ctx context.Context, userID uuid.UUID) (*AuthMethods, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	providers, err := s.identities.ListProvidersByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	if providers == nil {
		providers = []string{}
	}

	methods := &AuthMethods{
		HasPassword: user.HasPassword(),
		Providers:   providers,
	}
	for _, p := range providers {
		if p == domain.ProviderGitHub {
			methods.HasGitHub = true
		}
	}
	return methods, nil
}

// SetupPassword sets a first password on an account, enabling credential
// sign-in for a previously OAuth-only user.
func (s *Service) SetupPassword(ctx context.Context, userID uuid.UUID, password string) error {
	if err := ValidateSetupPassword(password); err != nil {
		return &ValidationError{Fields: FieldErrors{"password": err.Error()}}
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	return s.users.SetPassword(ctx, userID, hash)
}

// resolveLocation resolves the requester's country, degrading to the fixed
// defaults when no resolver is configured.
func (s *Service) resolveLocation(ctx context.Context, clientIP string) Location {
	if s.location == nil {
		return Location{CountryCode: domain.DefaultCountryCode, Country: domain.DefaultCountry}
	}
	return s.location.Resolve(ctx, clientIP)
}

// identityFromUser maps a user record to the normalized identity payload,
// defaulting any missing optional field.
func identityFromUser(user *domain.User) *domain.Identity {
	identity := &domain.Identity{
		ID:           user.ID,
		Email:        user.Email,
		Name:         user.Name,
		Role:         user.Role,
		Status:       user.Status,
		Country:      user.CountryCode,
		ReferralCode: user.ReferralCode,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
	if user.Image != nil {
		identity.Image = *user.Image
	}
	if identity.Role == "" {
		identity.Role = domain.RoleUser
	}
	if identity.Status == "" {
		identity.Status = domain.StatusInactive
	}
	if identity.Country == "" {
		identity.Country = domain.DefaultCountryCode
	}
	now := time.Now()
	if identity.CreatedAt.IsZero() {
		identity.CreatedAt = now
	}
	if identity.UpdatedAt.IsZero() {
		identity.UpdatedAt = now
	}
	return identity
}

// newLinkedIdentity builds a LinkedIdentity record from a provider profile
// and its tokens, storing the tokens verbatim.
func newLinkedIdentity(userID uuid.UUID, profile ProviderProfile, tokens ProviderTokens) *domain.LinkedIdentity {
	now := time.Now()
	identity := &domain.LinkedIdentity{
		ID:                uuid.New(),
		UserID:            userID,
		Type:              domain.IdentityTypeOAuth,
		Provider:          profile.Provider,
		ProviderAccountID: profile.AccountID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if tokens.AccessToken != "" {
		identity.AccessToken = &tokens.AccessToken
	}
	if tokens.RefreshToken != "" {
		identity.RefreshToken = &tokens.RefreshToken
	}
	if tokens.TokenType != "" {
		identity.TokenType = &tokens.TokenType
	}
	if tokens.Scope != "" {
		identity.Scope = &tokens.Scope
	}
	if tokens.IDToken != "" {
		identity.IDToken = &tokens.IDToken
	}
	if tokens.ExpiresAt != 0 {
		identity.ExpiresAt = &tokens.ExpiresAt
	}
	return identity
}
