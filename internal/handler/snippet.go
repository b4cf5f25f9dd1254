package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/snippetify/snippetify/internal/auth"
	"github.com/snippetify/snippetify/internal/query"
	"github.com/snippetify/snippetify/internal/service"
)

// SnippetHandler owns the /api/snippets routes.
type SnippetHandler struct {
	responder
	snippets *service.SnippetService
}

// NewSnippetHandler creates a SnippetHandler. exposeDetail should be true
// only in the development posture.
func NewSnippetHandler(snippets *service.SnippetService, logger *slog.Logger, exposeDetail bool) *SnippetHandler {
	return &SnippetHandler{
		responder: responder{logger: logger, exposeDetail: exposeDetail},
		snippets:  snippets,
	}
}

// createSnippetRequest is the POST body. All fields arrive as sent; the
// service normalizes and validates.
type createSnippetRequest struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Code         string   `json:"code"`
	Language     string   `json:"language"`
	Tags         []string `json:"tags"`
	IsPublic     bool     `json:"isPublic"`
	CollectionID *string  `json:"collectionId"`
}

// updateSnippetRequest is the PUT body. Pointer fields distinguish "absent"
// from "set to zero value", giving partial-update semantics. An empty
// collectionId string clears the reference.
type updateSnippetRequest struct {
	Title        *string  `json:"title"`
	Description  *string  `json:"description"`
	Code         *string  `json:"code"`
	Language     *string  `json:"language"`
	Tags         []string `json:"tags"`
	IsPublic     *bool    `json:"isPublic"`
	CollectionID *string  `json:"collectionId"`
}

// HandleList serves GET /api/snippets: the caller's own library, filtered,
// sorted, and paginated per the query parameters.
func (h *SnippetHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	principalID, _ := auth.UserIDFromContext(r.Context())

	q := r.URL.Query()
	params := query.Params{
		Page:       q.Get("page"),
		Limit:      q.Get("limit"),
		Search:     q.Get("search"),
		Language:   q.Get("language"),
		IsPublic:   q.Get("isPublic"),
		Collection: q.Get("collection"),
		SortBy:     q.Get("sortBy"),
		SortOrder:  q.Get("sortOrder"),
	}

	page, err := h.snippets.List(r.Context(), principalID, params)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, http.StatusOK, "", page)
}

// HandleGet serves GET /api/snippets/{id}. Auth is optional: owners see
// their private snippets, everyone else only public ones (and counts as a
// view).
func (h *SnippetHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	principalID, _ := auth.UserIDFromContext(r.Context())

	snippet, err := h.snippets.Get(r.Context(), principalID, r.PathValue("id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, http.StatusOK, "", map[string]any{"snippet": snippet})
}

// HandleCreate serves POST /api/snippets.
func (h *SnippetHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	principalID, _ := auth.UserIDFromContext(r.Context())

	var req createSnippetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid JSON body")
		return
	}

	snippet, err := h.snippets.Create(r.Context(), principalID, service.CreateSnippetInput{
		Title:        req.Title,
		Description:  req.Description,
		Code:         req.Code,
		Language:     req.Language,
		Tags:         req.Tags,
		IsPublic:     req.IsPublic,
		CollectionID: req.CollectionID,
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, http.StatusCreated, "snippet created", map[string]any{"snippet": snippet})
}

// HandleUpdate serves PUT /api/snippets/{id}: owner-only partial update.
func (h *SnippetHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	principalID, _ := auth.UserIDFromContext(r.Context())

	var req updateSnippetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid JSON body")
		return
	}

	snippet, err := h.snippets.Update(r.Context(), principalID, r.PathValue("id"), service.UpdateSnippetInput{
		Title:        req.Title,
		Description:  req.Description,
		Code:         req.Code,
		Language:     req.Language,
		Tags:         req.Tags,
		IsPublic:     req.IsPublic,
		CollectionID: req.CollectionID,
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, http.StatusOK, "snippet updated", map[string]any{"snippet": snippet})
}

// HandleDelete serves DELETE /api/snippets/{id}: owner-only.
func (h *SnippetHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	principalID, _ := auth.UserIDFromContext(r.Context())

	if err := h.snippets.Delete(r.Context(), principalID, r.PathValue("id")); err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, http.StatusOK, "snippet deleted", nil)
}

// HandleToggleLike serves POST /api/snippets/{id}/like: flips the caller's
// membership in the like set.
func (h *SnippetHandler) HandleToggleLike(w http.ResponseWriter, r *http.Request) {
	principalID, _ := auth.UserIDFromContext(r.Context())

	snippet, err := h.snippets.ToggleLike(r.Context(), principalID, r.PathValue("id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, http.StatusOK, "", map[string]any{"snippet": snippet})
}
