// Package session handles session inspection and sign-out.
package session

import (
	"net/http"

	"github.com/jirani/jirani-auth/internal/http/middleware"
	"github.com/jirani/jirani-auth/internal/httputil"
	"github.com/jirani/jirani-auth/pkg/domain"
)

// Handler handles session endpoints.
type Handler struct {
	cookieConfig httputil.CookieConfig
}

// NewHandler creates a new session handler.
func NewHandler(cookieConfig httputil.CookieConfig) *Handler {
	return &Handler{cookieConfig: cookieConfig}
}

// SessionResponse is the session view returned to clients.
type SessionResponse struct {
	ID           string        `json:"id"`
	Email        string        `json:"email"`
	Name         string        `json:"name"`
	Image        string        `json:"image,omitempty"`
	Role         domain.Role   `json:"role"`
	Status       domain.Status `json:"status"`
	Country      string        `json:"country"`
	ReferralCode string        `json:"referralCode"`
}

// Session returns the current session, or null when unauthenticated.
// GET /api/auth/session
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSessionUser(r.Context())
	if !ok {
		// An anonymous session query is not an error.
		httputil.JSON(w, http.StatusOK, map[string]any{"user": nil})
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]any{
		"user": SessionResponse{
			ID:           sess.ID,
			Email:        sess.Email,
			Name:         sess.Name,
			Image:        sess.Image,
			Role:         sess.Role,
			Status:       sess.Status,
			Country:      sess.Country,
			ReferralCode: sess.ReferralCode,
		},
	})
}

// Logout clears the session cookie.
// POST /api/auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	httputil.ClearSessionCookie(w, h.cookieConfig)
	httputil.JSON(w, http.StatusOK, map[string]string{"redirect": "/"})
}
