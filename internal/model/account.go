// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other
// languages, but without inheritance. Go favours composition over inheritance.
package model

import "time"

// Theme values an account may choose for the client UI.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// ValidTheme reports whether s is one of the allowed theme values.
func ValidTheme(s string) bool {
	return s == ThemeLight || s == ThemeDark
}

// Account represents a registered student profile.
//
// WHY json:"-" ON Password?
// The password is stored as-is and compared by equality at login (hashing is
// out of scope for this app). It must never leave the server, so the JSON tag
// excludes it from every response — the Go equivalent of Mongoose's
// .select('-password').
//
// Note that connections are NOT a field here. A connection is a symmetric
// relation between two accounts; storing it twice (once per side) lets the
// two copies drift apart. It lives in its own relation table instead, and the
// directory service attaches the resolved peers at read time.
type Account struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Password      string    `json:"-"`
	Skills        []string  `json:"skills"`
	Theme         string    `json:"theme"`
	LinkedIn      string    `json:"linkedIn"`
	GitHubProfile string    `json:"githubProfile"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// AccountSummary is the public projection of an Account used by the
// discovery, search, and profile endpoints. It carries the owner's projects
// so a browsing student sees each peer's portfolio in one response.
type AccountSummary struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Skills        []string  `json:"skills"`
	Theme         string    `json:"theme"`
	LinkedIn      string    `json:"linkedIn"`
	GitHubProfile string    `json:"githubProfile"`
	Projects      []Project `json:"projects"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Summary returns the password-free projection of a. Projects start empty;
// the caller attaches them.
func (a *Account) Summary() AccountSummary {
	return AccountSummary{
		ID:            a.ID,
		Name:          a.Name,
		Email:         a.Email,
		Skills:        a.Skills,
		Theme:         a.Theme,
		LinkedIn:      a.LinkedIn,
		GitHubProfile: a.GitHubProfile,
		Projects:      []Project{},
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// Profile is the response of the profile endpoint: the account itself plus
// its resolved connections, each carrying their own projects.
type Profile struct {
	AccountSummary
	Connections []AccountSummary `json:"connections"`
}
