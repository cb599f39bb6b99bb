package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/skillshare/internal/apperror"
	"github.com/sakif/skillshare/internal/model"
)

const projectColumns = `id, owner_id, title, description, status, tech_stack, is_deployed, link, github_repo, created_at, updated_at`

func (db *DB) CreateProject(ctx context.Context, project *model.Project) error {
	project.ID = xid.New().String()

	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now
	if project.Status == "" {
		project.Status = model.StatusIdea
	}
	if project.TechStack == nil {
		project.TechStack = []string{}
	}

	techStack, err := marshalList(project.TechStack)
	if err != nil {
		return fmt.Errorf("sqlite: creating project: %w", err)
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO projects (`+projectColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		project.ID,
		project.OwnerID,
		project.Title,
		project.Description,
		project.Status,
		techStack,
		project.IsDeployed,
		project.Link,
		project.GitHubRepo,
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating project: %w", err)
	}

	return nil
}

func (db *DB) GetProjectByID(ctx context.Context, id string) (*model.Project, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)

	project, err := scanProject(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("project", id)
		}
		return nil, fmt.Errorf("sqlite: getting project %s: %w", id, err)
	}
	return project, nil
}

// ListByOwner returns one owner's projects, newest first.
func (db *DB) ListByOwner(ctx context.Context, ownerID string) ([]model.Project, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects
		 WHERE owner_id = ?
		 ORDER BY created_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing projects for %s: %w", ownerID, err)
	}
	defer rows.Close()

	return collectProjects(rows)
}

// ListByOwners fetches all projects for a set of owners in a single query
// and groups them by owner. Every requested owner gets an entry in the map,
// even when they own nothing — callers can attach without nil checks.
func (db *DB) ListByOwners(ctx context.Context, ownerIDs []string) (map[string][]model.Project, error) {
	grouped := make(map[string][]model.Project, len(ownerIDs))
	for _, id := range ownerIDs {
		grouped[id] = []model.Project{}
	}
	if len(ownerIDs) == 0 {
		return grouped, nil
	}

	placeholders := strings.Repeat("?,", len(ownerIDs))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, len(ownerIDs))
	for i, id := range ownerIDs {
		args[i] = id
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects
		 WHERE owner_id IN (`+placeholders+`)
		 ORDER BY created_at DESC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing projects by owners: %w", err)
	}
	defer rows.Close()

	projects, err := collectProjects(rows)
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		grouped[p.OwnerID] = append(grouped[p.OwnerID], p)
	}

	return grouped, nil
}

// UpdateProject writes the full record back. ID, owner, and created_at are
// immutable.
func (db *DB) UpdateProject(ctx context.Context, project *model.Project) error {
	project.UpdatedAt = time.Now()

	techStack, err := marshalList(project.TechStack)
	if err != nil {
		return fmt.Errorf("sqlite: updating project %s: %w", project.ID, err)
	}

	result, err := db.conn.ExecContext(ctx,
		`UPDATE projects
		 SET title = ?, description = ?, status = ?, tech_stack = ?,
		     is_deployed = ?, link = ?, github_repo = ?, updated_at = ?
		 WHERE id = ?`,
		project.Title,
		project.Description,
		project.Status,
		techStack,
		project.IsDeployed,
		project.Link,
		project.GitHubRepo,
		project.UpdatedAt,
		project.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating project %s: %w", project.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("project", project.ID)
	}

	return nil
}

func (db *DB) DeleteProject(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting project %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("project", id)
	}

	return nil
}

func collectProjects(rows *sql.Rows) ([]model.Project, error) {
	projects := []model.Project{}
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning project row: %w", err)
		}
		projects = append(projects, *project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating projects: %w", err)
	}
	return projects, nil
}

func scanProject(s scanner) (*model.Project, error) {
	var (
		p            model.Project
		rawTechStack string
	)
	err := s.Scan(
		&p.ID,
		&p.OwnerID,
		&p.Title,
		&p.Description,
		&p.Status,
		&rawTechStack,
		&p.IsDeployed,
		&p.Link,
		&p.GitHubRepo,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if p.TechStack, err = unmarshalList(rawTechStack); err != nil {
		return nil, err
	}
	return &p, nil
}
