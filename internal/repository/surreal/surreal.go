// Package surreal implements the repository interfaces on SurrealDB via
// github.com/surrealdb/surrealdb.go.
//
// This driver keeps the app deployable against a document database, which is
// how it originally ran. It is selected with STORE_DRIVER=surreal and needs
// a reachable SurrealDB server; the SQLite driver remains the default.
//
// Record IDs: SurrealDB addresses records as "table:id" things. We generate
// plain xid identifiers at the application level and use them as the id part
// of the thing, so the rest of the app never sees the table prefix.
//
// Unlike the SQLite driver, SurrealDB gives us no cross-document
// transaction here, so AcceptRequest is a checked sequence rather than an
// atomic unit: the connection record has a deterministic id derived from the
// canonical pair, which makes the establish step idempotent and safe to
// retry if the notification delete fails afterwards.
package surreal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	surrealdb "github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/marshal"

	"github.com/rs/xid"

	"github.com/sakif/skillshare/internal/apperror"
	"github.com/sakif/skillshare/internal/model"
	"github.com/sakif/skillshare/internal/repository"
)

const (
	tableAccount      = "account"
	tableProject      = "project"
	tableNotification = "notification"
	tableConnection   = "connection"
)

// Config holds the SurrealDB connection parameters.
type Config struct {
	URL       string // e.g. "ws://localhost:8000/rpc"
	User      string
	Pass      string
	Namespace string
	Database  string
}

// Store implements repository.Store on a SurrealDB connection.
type Store struct {
	db *surrealdb.DB
}

var _ repository.Store = (*Store)(nil)

// New connects, signs in, and selects the namespace/database.
func New(cfg Config) (*Store, error) {
	db, err := surrealdb.New(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("surreal: connecting to %s: %w", cfg.URL, err)
	}

	if _, err := db.Signin(map[string]any{"user": cfg.User, "pass": cfg.Pass}); err != nil {
		db.Close()
		return nil, fmt.Errorf("surreal: signing in: %w", err)
	}

	if _, err := db.Use(cfg.Namespace, cfg.Database); err != nil {
		db.Close()
		return nil, fmt.Errorf("surreal: selecting %s/%s: %w", cfg.Namespace, cfg.Database, err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying websocket connection.
func (s *Store) Close() error {
	s.db.Close()
	return nil
}

// thing builds a SurrealDB record address from table and plain id.
func thing(table, id string) string {
	return table + ":" + id
}

// plainID strips the table prefix from a SurrealDB record id.
func plainID(thingID string) string {
	if i := strings.IndexByte(thingID, ':'); i >= 0 {
		return thingID[i+1:]
	}
	return thingID
}

// recordMissing reports whether err is the client's "no such record" result.
// The v0.2 client surfaces a select of an absent thing as a PermissionError
// value rather than an empty result.
func recordMissing(err error) bool {
	var pe surrealdb.PermissionError
	return errors.As(err, &pe)
}

// recordExists reports whether err is the server rejecting a create because
// the record is already present. Like the UNIQUE-violation check in the
// SQLite driver, the message text is the only discriminator the client
// offers.
func recordExists(err error) bool {
	return err != nil && strings.Contains(err.Error(), "already exists")
}

// asMap converts a struct to the map form the client's Create/Change calls
// expect, dropping the id field (the record address carries it).
func asMap(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	delete(m, "id")
	return m, nil
}

// ---------------------------------------------------------------------------
// Accounts
// ---------------------------------------------------------------------------

func (s *Store) Create(ctx context.Context, account *model.Account) error {
	// SurrealDB (schemaless) enforces no unique index here, so the email
	// collision check is a read-before-write.
	if _, err := s.GetByEmail(ctx, account.Email); err == nil {
		return apperror.Duplicate("account", account.Email)
	}

	account.ID = xid.New().String()
	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now
	if account.Theme == "" {
		account.Theme = model.ThemeLight
	}
	if account.Skills == nil {
		account.Skills = []string{}
	}

	data, err := accountData(account)
	if err != nil {
		return fmt.Errorf("surreal: creating account: %w", err)
	}
	if _, err := s.db.Create(thing(tableAccount, account.ID), data); err != nil {
		return fmt.Errorf("surreal: creating account: %w", err)
	}
	return nil
}

func (s *Store) GetByID(_ context.Context, id string) (*model.Account, error) {
	accounts, err := marshal.SmartUnmarshal[storedAccount](s.db.Select(thing(tableAccount, id)))
	if err != nil {
		if recordMissing(err) {
			return nil, apperror.NotFound("account", id)
		}
		return nil, fmt.Errorf("surreal: getting account %s: %w", id, err)
	}
	if len(accounts) == 0 {
		return nil, apperror.NotFound("account", id)
	}
	return accounts[0].toModel(), nil
}

func (s *Store) GetByEmail(_ context.Context, email string) (*model.Account, error) {
	accounts, err := marshal.SmartUnmarshal[storedAccount](s.db.Query(
		`SELECT * FROM `+tableAccount+` WHERE email = $email`,
		map[string]any{"email": email},
	))
	if err != nil {
		return nil, fmt.Errorf("surreal: getting account by email: %w", err)
	}
	if len(accounts) == 0 {
		return nil, apperror.NotFound("account", email)
	}
	return accounts[0].toModel(), nil
}

func (s *Store) GetByIDs(_ context.Context, ids []string) ([]model.Account, error) {
	if len(ids) == 0 {
		return []model.Account{}, nil
	}

	things := make([]string, len(ids))
	for i, id := range ids {
		things[i] = thing(tableAccount, id)
	}

	stored, err := marshal.SmartUnmarshal[storedAccount](s.db.Query(
		`SELECT * FROM `+tableAccount+` WHERE id INSIDE $things`,
		map[string]any{"things": things},
	))
	if err != nil {
		return nil, fmt.Errorf("surreal: getting accounts by ids: %w", err)
	}

	accounts := []model.Account{}
	for _, sa := range stored {
		accounts = append(accounts, *sa.toModel())
	}
	return accounts, nil
}

func (s *Store) List(_ context.Context, excludeID string) ([]model.Account, error) {
	stored, err := marshal.SmartUnmarshal[storedAccount](s.db.Query(
		`SELECT * FROM `+tableAccount+` ORDER BY createdAt`, nil,
	))
	if err != nil {
		return nil, fmt.Errorf("surreal: listing accounts: %w", err)
	}

	accounts := []model.Account{}
	for _, sa := range stored {
		a := sa.toModel()
		if a.ID == excludeID {
			continue
		}
		accounts = append(accounts, *a)
	}
	return accounts, nil
}

func (s *Store) UpdateSettings(ctx context.Context, id string, upd repository.SettingsUpdate) (*model.Account, error) {
	account, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		account.Name = *upd.Name
	}
	if upd.Theme != nil {
		account.Theme = *upd.Theme
	}
	if upd.LinkedIn != nil {
		account.LinkedIn = *upd.LinkedIn
	}
	if upd.GitHubProfile != nil {
		account.GitHubProfile = *upd.GitHubProfile
	}
	account.UpdatedAt = time.Now()

	data, err := accountData(account)
	if err != nil {
		return nil, fmt.Errorf("surreal: updating account %s: %w", id, err)
	}
	if _, err := s.db.Change(thing(tableAccount, id), data); err != nil {
		return nil, fmt.Errorf("surreal: updating account %s: %w", id, err)
	}
	return account, nil
}

func (s *Store) ReplaceSkills(ctx context.Context, id string, skills []string) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if skills == nil {
		skills = []string{}
	}
	_, err := s.db.Change(thing(tableAccount, id), map[string]any{
		"skills":    skills,
		"updatedAt": time.Now(),
	})
	if err != nil {
		return fmt.Errorf("surreal: replacing skills for %s: %w", id, err)
	}
	return nil
}

// storedAccount mirrors model.Account but keeps the password readable and
// the record id in SurrealDB's "table:id" form.
type storedAccount struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Password      string    `json:"password"`
	Skills        []string  `json:"skills"`
	Theme         string    `json:"theme"`
	LinkedIn      string    `json:"linkedIn"`
	GitHubProfile string    `json:"githubProfile"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (sa storedAccount) toModel() *model.Account {
	skills := sa.Skills
	if skills == nil {
		skills = []string{}
	}
	return &model.Account{
		ID:            plainID(sa.ID),
		Name:          sa.Name,
		Email:         sa.Email,
		Password:      sa.Password,
		Skills:        skills,
		Theme:         sa.Theme,
		LinkedIn:      sa.LinkedIn,
		GitHubProfile: sa.GitHubProfile,
		CreatedAt:     sa.CreatedAt,
		UpdatedAt:     sa.UpdatedAt,
	}
}

// accountData builds the write map for an account. model.Account hides the
// password from JSON, so it is added back explicitly for storage.
func accountData(a *model.Account) (map[string]any, error) {
	data, err := asMap(a)
	if err != nil {
		return nil, err
	}
	data["password"] = a.Password
	return data, nil
}

// ---------------------------------------------------------------------------
// Projects
// ---------------------------------------------------------------------------

func (s *Store) CreateProject(_ context.Context, project *model.Project) error {
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

	data, err := asMap(project)
	if err != nil {
		return fmt.Errorf("surreal: creating project: %w", err)
	}
	if _, err := s.db.Create(thing(tableProject, project.ID), data); err != nil {
		return fmt.Errorf("surreal: creating project: %w", err)
	}
	return nil
}

func (s *Store) GetProjectByID(_ context.Context, id string) (*model.Project, error) {
	projects, err := marshal.SmartUnmarshal[storedProject](s.db.Select(thing(tableProject, id)))
	if err != nil {
		if recordMissing(err) {
			return nil, apperror.NotFound("project", id)
		}
		return nil, fmt.Errorf("surreal: getting project %s: %w", id, err)
	}
	if len(projects) == 0 {
		return nil, apperror.NotFound("project", id)
	}
	return projects[0].toModel(), nil
}

func (s *Store) ListByOwner(_ context.Context, ownerID string) ([]model.Project, error) {
	stored, err := marshal.SmartUnmarshal[storedProject](s.db.Query(
		`SELECT * FROM `+tableProject+` WHERE owner = $owner ORDER BY createdAt DESC`,
		map[string]any{"owner": ownerID},
	))
	if err != nil {
		return nil, fmt.Errorf("surreal: listing projects for %s: %w", ownerID, err)
	}

	projects := []model.Project{}
	for _, sp := range stored {
		projects = append(projects, *sp.toModel())
	}
	return projects, nil
}

func (s *Store) ListByOwners(_ context.Context, ownerIDs []string) (map[string][]model.Project, error) {
	grouped := make(map[string][]model.Project, len(ownerIDs))
	for _, id := range ownerIDs {
		grouped[id] = []model.Project{}
	}
	if len(ownerIDs) == 0 {
		return grouped, nil
	}

	stored, err := marshal.SmartUnmarshal[storedProject](s.db.Query(
		`SELECT * FROM `+tableProject+` WHERE owner INSIDE $owners ORDER BY createdAt DESC`,
		map[string]any{"owners": ownerIDs},
	))
	if err != nil {
		return nil, fmt.Errorf("surreal: listing projects by owners: %w", err)
	}

	for _, sp := range stored {
		p := sp.toModel()
		grouped[p.OwnerID] = append(grouped[p.OwnerID], *p)
	}
	return grouped, nil
}

func (s *Store) UpdateProject(ctx context.Context, project *model.Project) error {
	if _, err := s.GetProjectByID(ctx, project.ID); err != nil {
		return err
	}
	project.UpdatedAt = time.Now()

	data, err := asMap(project)
	if err != nil {
		return fmt.Errorf("surreal: updating project %s: %w", project.ID, err)
	}
	if _, err := s.db.Change(thing(tableProject, project.ID), data); err != nil {
		return fmt.Errorf("surreal: updating project %s: %w", project.ID, err)
	}
	return nil
}

func (s *Store) DeleteProject(ctx context.Context, id string) error {
	// The client's delete reports nothing back, so existence is checked
	// first to surface NotFound.
	if _, err := s.GetProjectByID(ctx, id); err != nil {
		return err
	}
	if _, err := s.db.Delete(thing(tableProject, id)); err != nil {
		return fmt.Errorf("surreal: deleting project %s: %w", id, err)
	}
	return nil
}

type storedProject struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	TechStack   []string  `json:"techStack"`
	IsDeployed  bool      `json:"isDeployed"`
	Link        string    `json:"link"`
	GitHubRepo  string    `json:"githubRepo"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (sp storedProject) toModel() *model.Project {
	techStack := sp.TechStack
	if techStack == nil {
		techStack = []string{}
	}
	return &model.Project{
		ID:          plainID(sp.ID),
		OwnerID:     sp.OwnerID,
		Title:       sp.Title,
		Description: sp.Description,
		Status:      sp.Status,
		TechStack:   techStack,
		IsDeployed:  sp.IsDeployed,
		Link:        sp.Link,
		GitHubRepo:  sp.GitHubRepo,
		CreatedAt:   sp.CreatedAt,
		UpdatedAt:   sp.UpdatedAt,
	}
}

// ---------------------------------------------------------------------------
// Notifications
// ---------------------------------------------------------------------------

func (s *Store) CreateNotification(_ context.Context, n *model.Notification) error {
	n.ID = xid.New().String()
	n.CreatedAt = time.Now()
	if n.Type == "" {
		n.Type = model.NotifGeneral
	}
	if n.Status == "" {
		n.Status = model.NotifUnread
	}

	data, err := asMap(n)
	if err != nil {
		return fmt.Errorf("surreal: creating notification: %w", err)
	}
	if _, err := s.db.Create(thing(tableNotification, n.ID), data); err != nil {
		return fmt.Errorf("surreal: creating notification: %w", err)
	}
	return nil
}

func (s *Store) GetNotificationByID(_ context.Context, id string) (*model.Notification, error) {
	stored, err := marshal.SmartUnmarshal[storedNotification](s.db.Select(thing(tableNotification, id)))
	if err != nil {
		if recordMissing(err) {
			return nil, apperror.NotFound("notification", id)
		}
		return nil, fmt.Errorf("surreal: getting notification %s: %w", id, err)
	}
	if len(stored) == 0 {
		return nil, apperror.NotFound("notification", id)
	}
	return stored[0].toModel(), nil
}

func (s *Store) ListByRecipient(_ context.Context, recipientID string) ([]model.Notification, error) {
	stored, err := marshal.SmartUnmarshal[storedNotification](s.db.Query(
		`SELECT * FROM `+tableNotification+` WHERE recipient = $recipient ORDER BY createdAt DESC`,
		map[string]any{"recipient": recipientID},
	))
	if err != nil {
		return nil, fmt.Errorf("surreal: listing notifications for %s: %w", recipientID, err)
	}

	notifications := []model.Notification{}
	for _, sn := range stored {
		notifications = append(notifications, *sn.toModel())
	}
	return notifications, nil
}

func (s *Store) DeleteNotification(ctx context.Context, id string) error {
	if _, err := s.GetNotificationByID(ctx, id); err != nil {
		return err
	}
	if _, err := s.db.Delete(thing(tableNotification, id)); err != nil {
		return fmt.Errorf("surreal: deleting notification %s: %w", id, err)
	}
	return nil
}

type storedNotification struct {
	ID          string    `json:"id"`
	RecipientID string    `json:"recipient"`
	SenderID    string    `json:"sender"`
	SenderName  string    `json:"senderName"`
	Message     string    `json:"message"`
	Type        string    `json:"type"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (sn storedNotification) toModel() *model.Notification {
	return &model.Notification{
		ID:          plainID(sn.ID),
		RecipientID: sn.RecipientID,
		SenderID:    sn.SenderID,
		SenderName:  sn.SenderName,
		Message:     sn.Message,
		Type:        sn.Type,
		Status:      sn.Status,
		CreatedAt:   sn.CreatedAt,
	}
}

// ---------------------------------------------------------------------------
// Connections
// ---------------------------------------------------------------------------

// pairID builds the deterministic connection record id for a pair. Both
// orderings map to the same id, so the pair exists at most once.
func pairID(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return ids[0] + "_" + ids[1]
}

// AcceptRequest is a checked sequence (no cross-document transaction on
// this client): verify the notification still exists, establish the pair,
// then delete the notification. A concurrent accept loses at the first
// step; a crash after the pair write leaves a stale notification that a
// retried accept or a reject cleans up.
func (s *Store) AcceptRequest(ctx context.Context, notificationID, userID, peerID string) error {
	if _, err := s.GetNotificationByID(ctx, notificationID); err != nil {
		return err
	}

	low, high := userID, peerID
	if high < low {
		low, high = high, low
	}
	// A rejected create for an existing pair record just means the accounts
	// are already connected; accept treats the pair as add-if-absent. Any
	// other failure aborts before the notification is consumed, so the
	// request survives for a retry.
	_, err := s.db.Create(thing(tableConnection, pairID(userID, peerID)), map[string]any{
		"userA":     low,
		"userB":     high,
		"createdAt": time.Now(),
	})
	if err != nil && !recordExists(err) {
		return fmt.Errorf("surreal: connecting %s/%s: %w", userID, peerID, err)
	}

	return s.DeleteNotification(ctx, notificationID)
}

func (s *Store) RemoveConnection(_ context.Context, userID, peerID string) error {
	if _, err := s.db.Delete(thing(tableConnection, pairID(userID, peerID))); err != nil {
		return fmt.Errorf("surreal: removing connection %s/%s: %w", userID, peerID, err)
	}
	return nil
}

func (s *Store) ConnectionIDs(_ context.Context, userID string) ([]string, error) {
	stored, err := marshal.SmartUnmarshal[storedConnection](s.db.Query(
		`SELECT * FROM `+tableConnection+` WHERE userA = $id OR userB = $id ORDER BY createdAt`,
		map[string]any{"id": userID},
	))
	if err != nil {
		return nil, fmt.Errorf("surreal: listing connections for %s: %w", userID, err)
	}

	ids := []string{}
	for _, c := range stored {
		if c.UserA == userID {
			ids = append(ids, c.UserB)
		} else {
			ids = append(ids, c.UserA)
		}
	}
	return ids, nil
}

type storedConnection struct {
	ID        string    `json:"id"`
	UserA     string    `json:"userA"`
	UserB     string    `json:"userB"`
	CreatedAt time.Time `json:"createdAt"`
}
