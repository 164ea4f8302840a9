// Package me exposes account introspection for the authenticated user.
package me

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/jirani/jirani-auth/internal/http/middleware"
	"github.com/jirani/jirani-auth/internal/httputil"
	"github.com/jirani/jirani-auth/pkg/auth"
	"github.com/jirani/jirani-auth/pkg/domain"
)

// Handler handles authenticated user endpoints.
type Handler struct {
	logger      *slog.Logger
	authService *auth.Service
}

// NewHandler creates a new me handler.
func NewHandler(logger *slog.Logger, authService *auth.Service) *Handler {
	return &Handler{logger: logger, authService: authService}
}

// AuthMethods returns how the current account can authenticate: whether
// a password is set, and which OAuth providers are linked.
// GET /api/user/auth-methods
func (h *Handler) AuthMethods(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSessionUser(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, domain.ErrorMessage(domain.CodeSessionRequired))
		return
	}

	userID, err := uuid.Parse(sess.ID)
	if err != nil {
		httputil.Error(w, http.StatusUnauthorized, "invalid session subject")
		return
	}

	methods, err := h.authService.AuthMethods(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			httputil.Error(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Error("failed to load auth methods", "error", err, "user_id", sess.ID)
		httputil.Error(w, http.StatusInternalServerError, "failed to load auth methods")
		return
	}

	httputil.JSON(w, http.StatusOK, methods)
}
