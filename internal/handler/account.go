package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/skillshare/internal/auth"
	"github.com/sakif/skillshare/internal/repository"
	"github.com/sakif/skillshare/internal/service"
)

// AccountHandler covers the account's own mutable state: settings and the
// skill list.
type AccountHandler struct {
	accounts *service.AccountService
	logger   *slog.Logger
}

func NewAccountHandler(accounts *service.AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		logger:   logger,
	}
}

// HandleUpdateSettings applies a partial settings update. Fields absent from
// the body stay untouched; fields outside the four below are ignored
// entirely, so a crafted payload cannot rewrite skills, email, or password
// through this route.
//
// HTTP: PUT /api/auth/settings/{userId} (RequireAuth)
// Body: {"name": "...", "theme": "dark", "linkedIn": "...", "githubProfile": "..."}
func (h *AccountHandler) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.AccountIDFromContext(r.Context())
	targetID := r.PathValue("userId")

	var req struct {
		Name          *string `json:"name"`
		Theme         *string `json:"theme"`
		LinkedIn      *string `json:"linkedIn"`
		GitHubProfile *string `json:"githubProfile"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	account, err := h.accounts.UpdateSettings(r.Context(), callerID, targetID, repository.SettingsUpdate{
		Name:          req.Name,
		Theme:         req.Theme,
		LinkedIn:      req.LinkedIn,
		GitHubProfile: req.GitHubProfile,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Settings updated successfully!",
		"user":    account,
	})
}

// HandleUpdateSkills replaces the account's skill list wholesale.
//
// HTTP: PUT /api/auth/update-skills/{userId} (RequireAuth)
// Body: {"skills": ["Go", "React"]}
func (h *AccountHandler) HandleUpdateSkills(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.AccountIDFromContext(r.Context())
	targetID := r.PathValue("userId")

	var req struct {
		Skills []string `json:"skills"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	skills, err := h.accounts.ReplaceSkills(r.Context(), callerID, targetID, req.Skills)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Skills updated successfully!",
		"skills":  skills,
	})
}
