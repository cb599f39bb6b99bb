// Package service contains the business logic layer of the application.
//
// Handlers parse HTTP and write responses; services validate and enforce
// the rules; repositories read and write the store. Each service receives
// its repository as an interface, so tests inject an in-memory mock and the
// SQLite/SurrealDB drivers are interchangeable in main.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/skillshare/internal/apperror"
	"github.com/sakif/skillshare/internal/auth"
	"github.com/sakif/skillshare/internal/model"
	"github.com/sakif/skillshare/internal/repository"
)

// AccountService handles registration, login, and account settings.
type AccountService struct {
	accounts repository.AccountRepository
	tokens   *auth.TokenService
	logger   *slog.Logger
}

func NewAccountService(accounts repository.AccountRepository, tokens *auth.TokenService, logger *slog.Logger) *AccountService {
	return &AccountService{
		accounts: accounts,
		tokens:   tokens,
		logger:   logger,
	}
}

// AuthResult bundles the account and its issued credential so the handler
// can respond to a login in one step.
type AuthResult struct {
	Account *model.Account
	Token   string
}

// Register creates a new account. The only uniqueness rule is the email;
// password strength and format are deliberately not checked (out of scope
// for this app).
func (s *AccountService) Register(ctx context.Context, name, email, password string) (*model.Account, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if name == "" {
		return nil, apperror.ValidationFailed("name", "name is required")
	}
	if email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "password is required")
	}

	account := &model.Account{
		Name:     name,
		Email:    email,
		Password: password,
		Skills:   []string{},
		Theme:    model.ThemeLight,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info("account registered",
		slog.String("id", account.ID),
		slog.String("email", account.Email),
	)

	return account, nil
}

// Login authenticates by email and password and issues a JWT.
//
// The password check is plain string equality against the stored value —
// hashing is explicitly out of scope here. A wrong password and an unknown
// email both come back as the same "invalid credentials" error, so a caller
// cannot probe which emails are registered.
func (s *AccountService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperror.ValidationFailed("credentials", "email and password are required")
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperror.Unauthorized("invalid credentials")
	}
	if account.Password != password {
		return nil, apperror.Unauthorized("invalid credentials")
	}

	token, err := s.tokens.Generate(account.ID)
	if err != nil {
		return nil, fmt.Errorf("service/account: generating token for %s: %w", account.ID, err)
	}

	s.logger.Info("account logged in", slog.String("id", account.ID))

	return &AuthResult{Account: account, Token: token}, nil
}

// LoginWithGitHub signs a GitHub user in, creating the account on first
// login. Accounts are matched by email; the GitHub profile URL is captured
// as the account's code-hosting link when it isn't set yet.
func (s *AccountService) LoginWithGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service/account: GitHub user must not be nil")
	}
	if ghUser.Email == "" {
		return nil, apperror.ValidationFailed("email",
			"your GitHub account has no public email; make one visible to sign in with GitHub")
	}

	account, err := s.accounts.GetByEmail(ctx, ghUser.Email)
	switch {
	case err == nil:
		if account.GitHubProfile == "" && ghUser.HTMLURL != "" {
			account, err = s.accounts.UpdateSettings(ctx, account.ID, repository.SettingsUpdate{
				GitHubProfile: &ghUser.HTMLURL,
			})
			if err != nil {
				return nil, fmt.Errorf("service/account: linking GitHub profile: %w", err)
			}
		}
	default:
		account = &model.Account{
			Name:          ghUser.DisplayName(),
			Email:         ghUser.Email,
			Skills:        []string{},
			Theme:         model.ThemeLight,
			GitHubProfile: ghUser.HTMLURL,
		}
		if err := s.accounts.Create(ctx, account); err != nil {
			return nil, fmt.Errorf("service/account: creating account for GitHub user: %w", err)
		}
		s.logger.Info("account created via GitHub",
			slog.String("id", account.ID),
			slog.String("login", ghUser.Login),
		)
	}

	token, err := s.tokens.Generate(account.ID)
	if err != nil {
		return nil, fmt.Errorf("service/account: generating token for %s: %w", account.ID, err)
	}

	return &AuthResult{Account: account, Token: token}, nil
}

// GetByID returns the account for the given ID. Used by the /me handler
// after the middleware has validated the credential.
func (s *AccountService) GetByID(ctx context.Context, id string) (*model.Account, error) {
	if id == "" {
		return nil, apperror.ValidationFailed("id", "account ID is required")
	}
	return s.accounts.GetByID(ctx, id)
}

// UpdateSettings applies an allow-listed partial update to the caller's own
// account. Only name, theme, and the two profile links can be changed this
// way; anything else in the payload never reaches the record.
func (s *AccountService) UpdateSettings(ctx context.Context, callerID, targetID string, upd repository.SettingsUpdate) (*model.Account, error) {
	if targetID != callerID {
		return nil, apperror.Forbidden("you can only update your own settings")
	}

	if upd.Name != nil {
		trimmed := strings.TrimSpace(*upd.Name)
		if trimmed == "" {
			return nil, apperror.ValidationFailed("name", "name must not be empty")
		}
		upd.Name = &trimmed
	}
	if upd.Theme != nil && !model.ValidTheme(*upd.Theme) {
		return nil, apperror.ValidationFailed("theme",
			fmt.Sprintf("theme must be %q or %q", model.ThemeLight, model.ThemeDark))
	}

	account, err := s.accounts.UpdateSettings(ctx, targetID, upd)
	if err != nil {
		return nil, err
	}

	s.logger.Info("settings updated", slog.String("id", targetID))
	return account, nil
}

// ReplaceSkills replaces the caller's whole skill list. Entries are trimmed
// and empties dropped; order is preserved.
func (s *AccountService) ReplaceSkills(ctx context.Context, callerID, targetID string, skills []string) ([]string, error) {
	if targetID != callerID {
		return nil, apperror.Forbidden("you can only update your own skills")
	}

	cleaned := make([]string, 0, len(skills))
	for _, skill := range skills {
		if skill = strings.TrimSpace(skill); skill != "" {
			cleaned = append(cleaned, skill)
		}
	}

	if err := s.accounts.ReplaceSkills(ctx, targetID, cleaned); err != nil {
		return nil, err
	}

	s.logger.Info("skills replaced",
		slog.String("id", targetID),
		slog.Int("count", len(cleaned)),
	)
	return cleaned, nil
}
