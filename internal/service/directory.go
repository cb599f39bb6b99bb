package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sakif/skillshare/internal/apperror"
	"github.com/sakif/skillshare/internal/model"
	"github.com/sakif/skillshare/internal/repository"
)

// DirectoryService builds the aggregated read views: a profile with its
// resolved connections, and the discovery/search listings with each
// account's portfolio attached.
//
// The aggregation is deliberately flat on query count: one query for the
// accounts, one for the connection relation, one batched query for all the
// projects involved — regardless of how many accounts are in the result.
type DirectoryService struct {
	accounts    repository.AccountRepository
	projects    repository.ProjectRepository
	connections repository.ConnectionRepository
	logger      *slog.Logger
}

func NewDirectoryService(
	accounts repository.AccountRepository,
	projects repository.ProjectRepository,
	connections repository.ConnectionRepository,
	logger *slog.Logger,
) *DirectoryService {
	return &DirectoryService{
		accounts:    accounts,
		projects:    projects,
		connections: connections,
		logger:      logger,
	}
}

// Profile returns an account with its own projects, its connections
// resolved to summaries, and each connection's projects attached.
func (s *DirectoryService) Profile(ctx context.Context, accountID string) (*model.Profile, error) {
	if accountID == "" {
		return nil, apperror.ValidationFailed("userId", "account ID is required")
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	peerIDs, err := s.connections.ConnectionIDs(ctx, accountID)
	if err != nil {
		return nil, err
	}

	peers, err := s.accounts.GetByIDs(ctx, peerIDs)
	if err != nil {
		return nil, err
	}

	// One project query covers the account and all its peers.
	owners := append([]string{accountID}, peerIDs...)
	projectsByOwner, err := s.projects.ListByOwners(ctx, owners)
	if err != nil {
		return nil, err
	}

	profile := &model.Profile{
		AccountSummary: account.Summary(),
		Connections:    []model.AccountSummary{},
	}
	profile.Projects = projectsByOwner[accountID]

	// Preserve connection order; skip dangling references (a peer deleted
	// from the store but still present in the relation).
	peersByID := make(map[string]model.Account, len(peers))
	for _, p := range peers {
		peersByID[p.ID] = p
	}
	for _, id := range peerIDs {
		peer, ok := peersByID[id]
		if !ok {
			continue
		}
		summary := peer.Summary()
		summary.Projects = projectsByOwner[id]
		profile.Connections = append(profile.Connections, summary)
	}

	return profile, nil
}

// AllUsers lists every account except the caller, each with their projects.
func (s *DirectoryService) AllUsers(ctx context.Context, callerID string) ([]model.AccountSummary, error) {
	accounts, err := s.accounts.List(ctx, callerID)
	if err != nil {
		return nil, err
	}
	return s.attachProjects(ctx, accounts)
}

// Search returns accounts whose name or any skill contains the query,
// case-insensitively, each with their projects. An empty query matches
// nothing.
func (s *DirectoryService) Search(ctx context.Context, query string) ([]model.AccountSummary, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return []model.AccountSummary{}, nil
	}

	accounts, err := s.accounts.List(ctx, "")
	if err != nil {
		return nil, err
	}

	matched := accounts[:0:0]
	for _, a := range accounts {
		if accountMatches(&a, query) {
			matched = append(matched, a)
		}
	}

	return s.attachProjects(ctx, matched)
}

// accountMatches reports whether the lowercased query is a substring of the
// account's name or of any skill.
func accountMatches(a *model.Account, query string) bool {
	if strings.Contains(strings.ToLower(a.Name), query) {
		return true
	}
	for _, skill := range a.Skills {
		if strings.Contains(strings.ToLower(skill), query) {
			return true
		}
	}
	return false
}

// attachProjects turns accounts into summaries with their projects, using
// one batched query for the whole set.
func (s *DirectoryService) attachProjects(ctx context.Context, accounts []model.Account) ([]model.AccountSummary, error) {
	ownerIDs := make([]string, len(accounts))
	for i, a := range accounts {
		ownerIDs[i] = a.ID
	}

	projectsByOwner, err := s.projects.ListByOwners(ctx, ownerIDs)
	if err != nil {
		return nil, err
	}

	summaries := make([]model.AccountSummary, 0, len(accounts))
	for _, a := range accounts {
		summary := a.Summary()
		summary.Projects = projectsByOwner[a.ID]
		summaries = append(summaries, summary)
	}
	return summaries, nil
}
