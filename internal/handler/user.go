package handler

import (
	"log/slog"
	"net/http"

	"github.com/snippetify/snippetify/internal/auth"
	"github.com/snippetify/snippetify/internal/service"
)

// UserHandler owns the /api/users routes.
type UserHandler struct {
	responder
	users *service.UserService
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(users *service.UserService, logger *slog.Logger, exposeDetail bool) *UserHandler {
	return &UserHandler{
		responder: responder{logger: logger, exposeDetail: exposeDetail},
		users:     users,
	}
}

// HandleMe serves GET /api/users/me: the caller's public projection.
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	principalID, _ := auth.UserIDFromContext(r.Context())

	profile, err := h.users.Profile(r.Context(), principalID)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, http.StatusOK, "", map[string]any{"user": profile})
}
