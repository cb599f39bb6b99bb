package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/sakif/skillshare/internal/apperror"
	"github.com/sakif/skillshare/internal/auth"
	"github.com/sakif/skillshare/internal/model"
	"github.com/sakif/skillshare/internal/repository"
)

// fakeStore is an in-memory implementation of repository.Store. A fake (not
// a mock framework) keeps the tests dependency-free and readable — the
// semantics mirror the SQLite driver: canonical pair storage, NotFound on
// consumed notifications, seeded ListByOwners entries.
type fakeStore struct {
	accounts      map[string]*model.Account
	accountOrder  []string
	projects      map[string]*model.Project
	projectOrder  []string
	notifications map[string]*model.Notification
	notifOrder    []string
	pairs         map[string]bool // key "low|high"
	pairOrder     []string
	nextID        int

	// set to simulate a storage failure
	failWith error
}

var _ repository.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		accounts:      make(map[string]*model.Account),
		projects:      make(map[string]*model.Project),
		notifications: make(map[string]*model.Notification),
		pairs:         make(map[string]bool),
	}
}

func (f *fakeStore) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%03d", prefix, f.nextID)
}

func pairKey(a, b string) string {
	if a < b {
		return a + "|" + b
	}
	return b + "|" + a
}

// --- AccountRepository ---

func (f *fakeStore) Create(_ context.Context, account *model.Account) error {
	if f.failWith != nil {
		return f.failWith
	}
	for _, a := range f.accounts {
		if a.Email == account.Email {
			return apperror.Duplicate("account", account.Email)
		}
	}
	account.ID = f.id("acct")
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	copied := *account
	f.accounts[account.ID] = &copied
	f.accountOrder = append(f.accountOrder, account.ID)
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*model.Account, error) {
	a, ok := f.accounts[id]
	if !ok {
		return nil, apperror.NotFound("account", id)
	}
	copied := *a
	return &copied, nil
}

func (f *fakeStore) GetByEmail(_ context.Context, email string) (*model.Account, error) {
	for _, a := range f.accounts {
		if a.Email == email {
			copied := *a
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("account", email)
}

func (f *fakeStore) GetByIDs(_ context.Context, ids []string) ([]model.Account, error) {
	out := []model.Account{}
	for _, id := range ids {
		if a, ok := f.accounts[id]; ok {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeStore) List(_ context.Context, excludeID string) ([]model.Account, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := []model.Account{}
	for _, id := range f.accountOrder {
		if id == excludeID {
			continue
		}
		out = append(out, *f.accounts[id])
	}
	return out, nil
}

func (f *fakeStore) UpdateSettings(_ context.Context, id string, upd repository.SettingsUpdate) (*model.Account, error) {
	a, ok := f.accounts[id]
	if !ok {
		return nil, apperror.NotFound("account", id)
	}
	if upd.Name != nil {
		a.Name = *upd.Name
	}
	if upd.Theme != nil {
		a.Theme = *upd.Theme
	}
	if upd.LinkedIn != nil {
		a.LinkedIn = *upd.LinkedIn
	}
	if upd.GitHubProfile != nil {
		a.GitHubProfile = *upd.GitHubProfile
	}
	a.UpdatedAt = time.Now()
	copied := *a
	return &copied, nil
}

func (f *fakeStore) ReplaceSkills(_ context.Context, id string, skills []string) error {
	a, ok := f.accounts[id]
	if !ok {
		return apperror.NotFound("account", id)
	}
	a.Skills = skills
	a.UpdatedAt = time.Now()
	return nil
}

// --- ProjectRepository ---

func (f *fakeStore) CreateProject(_ context.Context, project *model.Project) error {
	if f.failWith != nil {
		return f.failWith
	}
	project.ID = f.id("proj")
	project.CreatedAt = time.Now()
	project.UpdatedAt = project.CreatedAt
	copied := *project
	f.projects[project.ID] = &copied
	f.projectOrder = append(f.projectOrder, project.ID)
	return nil
}

func (f *fakeStore) GetProjectByID(_ context.Context, id string) (*model.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, apperror.NotFound("project", id)
	}
	copied := *p
	return &copied, nil
}

func (f *fakeStore) ListByOwner(_ context.Context, ownerID string) ([]model.Project, error) {
	out := []model.Project{}
	for _, id := range f.projectOrder {
		if p := f.projects[id]; p.OwnerID == ownerID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeStore) ListByOwners(_ context.Context, ownerIDs []string) (map[string][]model.Project, error) {
	out := make(map[string][]model.Project, len(ownerIDs))
	for _, ownerID := range ownerIDs {
		out[ownerID] = []model.Project{}
	}
	for _, id := range f.projectOrder {
		p := f.projects[id]
		if _, wanted := out[p.OwnerID]; wanted {
			out[p.OwnerID] = append(out[p.OwnerID], *p)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateProject(_ context.Context, project *model.Project) error {
	if _, ok := f.projects[project.ID]; !ok {
		return apperror.NotFound("project", project.ID)
	}
	project.UpdatedAt = time.Now()
	copied := *project
	f.projects[project.ID] = &copied
	return nil
}

func (f *fakeStore) DeleteProject(_ context.Context, id string) error {
	if _, ok := f.projects[id]; !ok {
		return apperror.NotFound("project", id)
	}
	delete(f.projects, id)
	for i, pid := range f.projectOrder {
		if pid == id {
			f.projectOrder = append(f.projectOrder[:i], f.projectOrder[i+1:]...)
			break
		}
	}
	return nil
}

// --- NotificationRepository ---

func (f *fakeStore) CreateNotification(_ context.Context, n *model.Notification) error {
	if f.failWith != nil {
		return f.failWith
	}
	n.ID = f.id("notif")
	if n.Type == "" {
		n.Type = model.NotifGeneral
	}
	if n.Status == "" {
		n.Status = model.NotifUnread
	}
	n.CreatedAt = time.Now()
	copied := *n
	f.notifications[n.ID] = &copied
	f.notifOrder = append(f.notifOrder, n.ID)
	return nil
}

func (f *fakeStore) GetNotificationByID(_ context.Context, id string) (*model.Notification, error) {
	n, ok := f.notifications[id]
	if !ok {
		return nil, apperror.NotFound("notification", id)
	}
	copied := *n
	return &copied, nil
}

func (f *fakeStore) ListByRecipient(_ context.Context, recipientID string) ([]model.Notification, error) {
	out := []model.Notification{}
	for _, id := range f.notifOrder {
		if n := f.notifications[id]; n.RecipientID == recipientID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteNotification(_ context.Context, id string) error {
	if _, ok := f.notifications[id]; !ok {
		return apperror.NotFound("notification", id)
	}
	delete(f.notifications, id)
	return nil
}

// --- ConnectionRepository ---

func (f *fakeStore) AcceptRequest(_ context.Context, notificationID, userID, peerID string) error {
	// Like the real drivers: consuming the notification decides the outcome.
	if _, ok := f.notifications[notificationID]; !ok {
		return apperror.NotFound("notification", notificationID)
	}
	key := pairKey(userID, peerID)
	if !f.pairs[key] {
		f.pairs[key] = true
		f.pairOrder = append(f.pairOrder, key)
	}
	delete(f.notifications, notificationID)
	return nil
}

func (f *fakeStore) RemoveConnection(_ context.Context, userID, peerID string) error {
	key := pairKey(userID, peerID)
	if f.pairs[key] {
		delete(f.pairs, key)
		for i, k := range f.pairOrder {
			if k == key {
				f.pairOrder = append(f.pairOrder[:i], f.pairOrder[i+1:]...)
				break
			}
		}
	}
	return nil
}

func (f *fakeStore) ConnectionIDs(_ context.Context, userID string) ([]string, error) {
	ids := []string{}
	for _, key := range f.pairOrder {
		low, high, _ := cutPair(key)
		switch userID {
		case low:
			ids = append(ids, high)
		case high:
			ids = append(ids, low)
		}
	}
	return ids, nil
}

func cutPair(key string) (string, string, bool) {
	for i := 0; i < len(key); i++ {
		if key[i] == '|' {
			return key[:i], key[i+1:], true
		}
	}
	return key, "", false
}

// --- shared helpers ---

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testTokenService(t *testing.T) *auth.TokenService {
	t.Helper()
	ts, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return ts
}
