package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/skillshare/internal/apperror"
	"github.com/sakif/skillshare/internal/model"
	"github.com/sakif/skillshare/internal/repository"
)

// ProjectService handles the project portfolio: create, list, update,
// delete. Mutations are owner-only.
type ProjectService struct {
	projects repository.ProjectRepository
	logger   *slog.Logger
}

func NewProjectService(projects repository.ProjectRepository, logger *slog.Logger) *ProjectService {
	return &ProjectService{
		projects: projects,
		logger:   logger,
	}
}

// ProjectInput is the payload for creating a project. TechStack is loosely
// typed because clients send it either as a JSON array or as one
// comma-separated string; NormalizeTechStack handles both.
type ProjectInput struct {
	Title       string
	Description string
	Status      string
	TechStack   any
	IsDeployed  bool
	Link        string
	GitHubRepo  string
}

// ProjectUpdate is an allow-listed partial update; nil fields stay
// unchanged. TechStack nil means unchanged, otherwise it is normalized the
// same way as on create.
type ProjectUpdate struct {
	Title       *string
	Description *string
	Status      *string
	TechStack   any
	IsDeployed  *bool
	Link        *string
	GitHubRepo  *string
}

// NormalizeTechStack converts the loosely-typed techStack input into a
// clean []string:
//
//   - a string is split on commas, each entry trimmed, empties dropped:
//     "a, b ,c" → ["a","b","c"]
//   - a list is passed through unchanged (JSON decoding yields []any)
//   - anything else (including absent) yields an empty list
func NormalizeTechStack(v any) []string {
	switch raw := v.(type) {
	case nil:
		return []string{}
	case string:
		parts := strings.Split(raw, ",")
		stack := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				stack = append(stack, p)
			}
		}
		return stack
	case []string:
		return raw
	case []any:
		stack := make([]string, 0, len(raw))
		for _, item := range raw {
			if s, ok := item.(string); ok {
				stack = append(stack, s)
			}
		}
		return stack
	default:
		return []string{}
	}
}

// Add creates a project owned by the caller.
func (s *ProjectService) Add(ctx context.Context, ownerID string, in ProjectInput) (*model.Project, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "project title is required")
	}
	if in.Description == "" {
		return nil, apperror.ValidationFailed("description", "description is required")
	}

	status := in.Status
	if status == "" {
		status = model.StatusIdea
	}
	if !model.ValidStatus(status) {
		return nil, apperror.ValidationFailed("status", fmt.Sprintf("invalid project status %q", status))
	}

	project := &model.Project{
		OwnerID:     ownerID,
		Title:       title,
		Description: in.Description,
		Status:      status,
		TechStack:   NormalizeTechStack(in.TechStack),
		IsDeployed:  in.IsDeployed,
		Link:        in.Link,
		GitHubRepo:  in.GitHubRepo,
	}

	if err := s.projects.CreateProject(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("project added",
		slog.String("id", project.ID),
		slog.String("owner", ownerID),
		slog.String("title", project.Title),
	)
	return project, nil
}

// ListByOwner returns one owner's projects, newest first.
func (s *ProjectService) ListByOwner(ctx context.Context, ownerID string) ([]model.Project, error) {
	if ownerID == "" {
		return nil, apperror.ValidationFailed("userId", "owner ID is required")
	}
	return s.projects.ListByOwner(ctx, ownerID)
}

// Update applies a partial update to a project the caller owns.
func (s *ProjectService) Update(ctx context.Context, callerID, projectID string, upd ProjectUpdate) (*model.Project, error) {
	project, err := s.projects.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.OwnerID != callerID {
		return nil, apperror.Forbidden("only the owner can update this project")
	}

	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		if title == "" {
			return nil, apperror.ValidationFailed("title", "project title must not be empty")
		}
		project.Title = title
	}
	if upd.Description != nil {
		if *upd.Description == "" {
			return nil, apperror.ValidationFailed("description", "description must not be empty")
		}
		project.Description = *upd.Description
	}
	if upd.Status != nil {
		if !model.ValidStatus(*upd.Status) {
			return nil, apperror.ValidationFailed("status", fmt.Sprintf("invalid project status %q", *upd.Status))
		}
		project.Status = *upd.Status
	}
	if upd.TechStack != nil {
		project.TechStack = NormalizeTechStack(upd.TechStack)
	}
	if upd.IsDeployed != nil {
		project.IsDeployed = *upd.IsDeployed
	}
	if upd.Link != nil {
		project.Link = *upd.Link
	}
	if upd.GitHubRepo != nil {
		project.GitHubRepo = *upd.GitHubRepo
	}

	if err := s.projects.UpdateProject(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("project updated", slog.String("id", projectID))
	return project, nil
}

// Delete removes a project the caller owns.
func (s *ProjectService) Delete(ctx context.Context, callerID, projectID string) error {
	project, err := s.projects.GetProjectByID(ctx, projectID)
	if err != nil {
		return err
	}
	if project.OwnerID != callerID {
		return apperror.Forbidden("only the owner can delete this project")
	}

	if err := s.projects.DeleteProject(ctx, projectID); err != nil {
		return err
	}

	s.logger.Info("project deleted", slog.String("id", projectID))
	return nil
}
