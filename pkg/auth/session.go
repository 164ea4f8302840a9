package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jirani/jirani-auth/pkg/domain"
)

// DefaultSessionTTL is the fixed absolute session lifetime measured from
// issuance. There is no sliding renewal; a session only gets a new expiry by
// re-authenticating.
const DefaultSessionTTL = 30 * 24 * time.Hour

// SessionConfig holds session token configuration.
type SessionConfig struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

// SessionClaims are the identity attributes embedded in a session token.
type SessionClaims struct {
	jwt.RegisteredClaims
	Email        string `json:"email"`
	Name         string `json:"name"`
	Picture      string `json:"picture,omitempty"`
	Role         string `json:"role"`
	Status       string `json:"status"`
	Country      string `json:"country"`
	ReferralCode string `json:"referral_code"`
}

// SessionService assembles session tokens from identity payloads and
// reconstructs session views from token claims.
type SessionService struct {
	config SessionConfig
}

// NewSessionService creates a new session service.
func NewSessionService(config SessionConfig) *SessionService {
	if config.TTL == 0 {
		config.TTL = DefaultSessionTTL
	}
	return &SessionService{config: config}
}

// TTL returns the absolute session lifetime.
func (s *SessionService) TTL() time.Duration {
	return s.config.TTL
}

// IssueSession builds the session claims from an identity payload and
// returns the signed token. Missing optional fields are defaulted for the
// post-login view: role user, status active, country KE.
func (s *SessionService) IssueSession(identity *domain.Identity) (string, error) {
	now := time.Now()

	role := identity.Role
	if role == "" {
		role = domain.RoleUser
	}
	status := identity.Status
	if status == "" {
		status = domain.StatusActive
	}
	country := identity.Country
	if country == "" {
		country = domain.DefaultCountryCode
	}

	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TTL)),
			Issuer:    s.config.Issuer,
		},
		Email:        identity.Email,
		Name:         identity.Name,
		Picture:      identity.Image,
		Role:         string(role),
		Status:       string(status),
		Country:      country,
		ReferralCode: identity.ReferralCode,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.config.Secret)
}

// ResolveSession validates a session token and reconstructs the session view
// by copying the claims verbatim. CreatedAt/UpdatedAt are stamped with the
// read time; they are presentation timestamps, not record timestamps.
func (s *SessionService) ResolveSession(tokenString string) (*domain.SessionUser, error) {
	claims, err := s.parseClaims(tokenString)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &domain.SessionUser{
		ID:           claims.Subject,
		Email:        claims.Email,
		Name:         claims.Name,
		Image:        claims.Picture,
		Role:         domain.Role(claims.Role),
		Status:       domain.Status(claims.Status),
		Country:      claims.Country,
		ReferralCode: claims.ReferralCode,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (s *SessionService) parseClaims(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return s.config.Secret, nil
	})
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, domain.ErrInvalidToken
	}

	return claims, nil
}
