// Package repository declares the storage interfaces the service layer
// depends on. Concrete implementations live in the sqlite and surreal
// subpackages; tests use in-memory mocks.
package repository

import (
	"context"

	"github.com/sakif/skillshare/internal/model"
)

// SettingsUpdate is an allow-listed partial update of an account. Nil fields
// are left unchanged. Only the fields named here can ever be written through
// the settings endpoint — arbitrary client payloads cannot reach the record.
type SettingsUpdate struct {
	Name          *string
	Theme         *string
	LinkedIn      *string
	GitHubProfile *string
}

// AccountRepository persists account records.
type AccountRepository interface {
	// Create inserts a new account. Returns apperror.ErrConflict if the
	// email is already registered.
	Create(ctx context.Context, account *model.Account) error
	GetByID(ctx context.Context, id string) (*model.Account, error)
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	// GetByIDs batch-fetches a set of accounts in one query. Missing IDs are
	// silently absent from the result (dangling references are possible —
	// the store enforces no referential integrity).
	GetByIDs(ctx context.Context, ids []string) ([]model.Account, error)
	// List returns every account except excludeID, in store order.
	// excludeID may be empty to list everyone.
	List(ctx context.Context, excludeID string) ([]model.Account, error)
	// UpdateSettings applies the allow-listed partial update and returns the
	// updated record.
	UpdateSettings(ctx context.Context, id string, upd SettingsUpdate) (*model.Account, error)
	// ReplaceSkills replaces the whole skill list.
	ReplaceSkills(ctx context.Context, id string, skills []string) error
}

// ProjectRepository persists project records.
type ProjectRepository interface {
	CreateProject(ctx context.Context, project *model.Project) error
	GetProjectByID(ctx context.Context, id string) (*model.Project, error)
	// ListByOwner returns one owner's projects, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]model.Project, error)
	// ListByOwners batch-fetches projects for a set of owners in a single
	// query, grouped by owner ID. This is what keeps profile and discovery
	// aggregation at a fixed query count instead of one query per account.
	ListByOwners(ctx context.Context, ownerIDs []string) (map[string][]model.Project, error)
	UpdateProject(ctx context.Context, project *model.Project) error
	DeleteProject(ctx context.Context, id string) error
}

// NotificationRepository persists notification records.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, n *model.Notification) error
	GetNotificationByID(ctx context.Context, id string) (*model.Notification, error)
	// ListByRecipient returns a recipient's notifications, newest first.
	ListByRecipient(ctx context.Context, recipientID string) ([]model.Notification, error)
	// DeleteNotification removes a notification; apperror.ErrNotFound if absent.
	DeleteNotification(ctx context.Context, id string) error
}

// ConnectionRepository persists the symmetric connection relation. A
// connection between A and B is a single record covering both directions, so
// the two sides can never disagree.
type ConnectionRepository interface {
	// AcceptRequest atomically establishes the connection pair (add-if-
	// absent) and deletes the triggering notification. If the notification
	// is already gone — e.g. a concurrent accept won the race — the whole
	// operation fails with apperror.ErrNotFound and leaves no new state.
	AcceptRequest(ctx context.Context, notificationID, userID, peerID string) error
	// RemoveConnection removes the pair in one step. Removing an absent pair
	// is a no-op.
	RemoveConnection(ctx context.Context, userID, peerID string) error
	// ConnectionIDs returns the IDs of every account connected to userID.
	ConnectionIDs(ctx context.Context, userID string) ([]string, error)
}

// Store bundles the four repositories. The SQLite and SurrealDB drivers each
// implement all of them on a single connection type.
type Store interface {
	AccountRepository
	ProjectRepository
	NotificationRepository
	ConnectionRepository
}
