package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/skillshare/internal/auth"
	"github.com/sakif/skillshare/internal/service"
)

// ProjectHandler covers the project portfolio endpoints.
type ProjectHandler struct {
	projects *service.ProjectService
	logger   *slog.Logger
}

func NewProjectHandler(projects *service.ProjectService, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{
		projects: projects,
		logger:   logger,
	}
}

// projectBody is shared by create and update. TechStack is `any` on
// purpose: clients send either a JSON array or one comma-separated string.
type projectBody struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	TechStack   any     `json:"techStack"`
	IsDeployed  *bool   `json:"isDeployed"`
	Link        *string `json:"link"`
	GitHubRepo  *string `json:"githubRepo"`
}

// HandleAddProject creates a project owned by the caller. A userId in the
// body is ignored — ownership always follows the credential.
//
// HTTP: POST /api/auth/add-project (RequireAuth)
func (h *ProjectHandler) HandleAddProject(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.AccountIDFromContext(r.Context())

	var req projectBody
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	in := service.ProjectInput{TechStack: req.TechStack}
	if req.Title != nil {
		in.Title = *req.Title
	}
	if req.Description != nil {
		in.Description = *req.Description
	}
	if req.Status != nil {
		in.Status = *req.Status
	}
	if req.IsDeployed != nil {
		in.IsDeployed = *req.IsDeployed
	}
	if req.Link != nil {
		in.Link = *req.Link
	}
	if req.GitHubRepo != nil {
		in.GitHubRepo = *req.GitHubRepo
	}

	project, err := h.projects.Add(r.Context(), callerID, in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Project added successfully!",
		"project": project,
	})
}

// HandleUserProjects lists one member's projects, newest first.
//
// HTTP: GET /api/auth/user-projects/{userId} (RequireAuth)
func (h *ProjectHandler) HandleUserProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projects.ListByOwner(r.Context(), r.PathValue("userId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

// HandleUpdateProject applies a partial update to a project the caller
// owns.
//
// HTTP: PUT /api/auth/project/{projectId} (RequireAuth)
func (h *ProjectHandler) HandleUpdateProject(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.AccountIDFromContext(r.Context())
	projectID := r.PathValue("projectId")

	var req projectBody
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	project, err := h.projects.Update(r.Context(), callerID, projectID, service.ProjectUpdate{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		TechStack:   req.TechStack,
		IsDeployed:  req.IsDeployed,
		Link:        req.Link,
		GitHubRepo:  req.GitHubRepo,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Project updated successfully!",
		"project": project,
	})
}

// HandleDeleteProject removes a project the caller owns.
//
// HTTP: DELETE /api/auth/project/{projectId} (RequireAuth)
func (h *ProjectHandler) HandleDeleteProject(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.AccountIDFromContext(r.Context())

	if err := h.projects.Delete(r.Context(), callerID, r.PathValue("projectId")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Project deleted successfully!"})
}
