package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/snippetify/snippetify/internal/auth"
	"github.com/snippetify/snippetify/internal/service"
)

// CollectionHandler owns the /api/collections routes. All of them require
// authentication and operate on the caller's own collections.
type CollectionHandler struct {
	responder
	collections *service.CollectionService
}

// NewCollectionHandler creates a CollectionHandler.
func NewCollectionHandler(collections *service.CollectionService, logger *slog.Logger, exposeDetail bool) *CollectionHandler {
	return &CollectionHandler{
		responder:   responder{logger: logger, exposeDetail: exposeDetail},
		collections: collections,
	}
}

type createCollectionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// HandleList serves GET /api/collections.
func (h *CollectionHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	principalID, _ := auth.UserIDFromContext(r.Context())

	collections, err := h.collections.List(r.Context(), principalID)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, http.StatusOK, "", map[string]any{"collections": collections})
}

// HandleCreate serves POST /api/collections.
func (h *CollectionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	principalID, _ := auth.UserIDFromContext(r.Context())

	var req createCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid JSON body")
		return
	}

	collection, err := h.collections.Create(r.Context(), principalID, req.Name, req.Description)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, http.StatusCreated, "collection created", map[string]any{"collection": collection})
}

// HandleGet serves GET /api/collections/{id}.
func (h *CollectionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	principalID, _ := auth.UserIDFromContext(r.Context())

	collection, err := h.collections.Get(r.Context(), principalID, r.PathValue("id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, http.StatusOK, "", map[string]any{"collection": collection})
}

// HandleDelete serves DELETE /api/collections/{id}. Snippets in the deleted
// collection stay, uncategorized.
func (h *CollectionHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	principalID, _ := auth.UserIDFromContext(r.Context())

	if err := h.collections.Delete(r.Context(), principalID, r.PathValue("id")); err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, http.StatusOK, "collection deleted", nil)
}
