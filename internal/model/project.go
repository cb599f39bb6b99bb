package model

import "time"

// Project status values, ordered roughly by lifecycle stage.
const (
	StatusIdea        = "Idea"
	StatusDevelopment = "Development"
	StatusTesting     = "Testing"
	StatusCompleted   = "Completed"
)

// ValidStatus reports whether s is one of the allowed project statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusIdea, StatusDevelopment, StatusTesting, StatusCompleted:
		return true
	}
	return false
}

// Project represents work owned by one account: a side project, a course
// deliverable, a hackathon entry. Other students discover it through the
// owner's profile and through search results.
type Project struct {
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
