package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/skillshare/internal/auth"
	"github.com/sakif/skillshare/internal/service"
)

// DirectoryHandler serves the read-side views: profiles, the member
// directory, and search.
type DirectoryHandler struct {
	directory *service.DirectoryService
	logger    *slog.Logger
}

func NewDirectoryHandler(directory *service.DirectoryService, logger *slog.Logger) *DirectoryHandler {
	return &DirectoryHandler{
		directory: directory,
		logger:    logger,
	}
}

// HandleProfile returns an account with its projects and its connections
// resolved, each connection carrying their own projects. Any authenticated
// member can view any profile.
//
// HTTP: GET /api/auth/profile/{userId} (RequireAuth)
func (h *DirectoryHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.directory.Profile(r.Context(), r.PathValue("userId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// HandleAllUsers lists every member except the caller, for the discovery
// page. The exclusion follows the authenticated identity, not the path
// segment, so a caller cannot fetch a listing excluding someone else and
// including themselves twice.
//
// HTTP: GET /api/auth/all-users/{userId} (RequireAuth)
func (h *DirectoryHandler) HandleAllUsers(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.AccountIDFromContext(r.Context())

	users, err := h.directory.AllUsers(r.Context(), callerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// HandleSearch filters members by name or skill, case-insensitively. An
// empty query returns an empty list, not everyone.
//
// HTTP: GET /api/auth/search?query=react (RequireAuth)
func (h *DirectoryHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	results, err := h.directory.Search(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}
