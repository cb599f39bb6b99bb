package server_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/skillshare/internal/server"
)

// newTestRouter builds the full stack — router, handlers, services, an
// in-memory SQLite store — exactly as main would, minus the listener.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	srv, err := server.New(server.Config{
		Port:      0,
		DBPath:    ":memory:",
		JWTSecret: "test-secret-at-least-16-chars!!",
	}, logger)
	require.NoError(t, err, "server.New")

	return srv.Router()
}

// doJSON performs a request against the router. A non-empty token goes into
// the Authorization header. body may be nil.
func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&out), "decoding response body")
	return out
}

// registerAndLogin creates an account through the API and returns its ID and
// bearer token.
func registerAndLogin(t *testing.T, router http.Handler, name, email string) (id, token string) {
	t.Helper()

	rr := doJSON(t, router, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": name, "email": email, "password": "pw",
	})
	require.Equal(t, http.StatusCreated, rr.Code, "register %s: %s", email, rr.Body.String())

	rr = doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": email, "password": "pw",
	})
	require.Equal(t, http.StatusOK, rr.Code, "login %s: %s", email, rr.Body.String())

	body := decodeBody(t, rr)
	token, _ = body["token"].(string)
	require.NotEmpty(t, token, "login response token")
	user, _ := body["user"].(map[string]any)
	id, _ = user["id"].(string)
	require.NotEmpty(t, id, "login response user.id")
	return id, token
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rr := doJSON(t, router, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "SkillShare API is active!")
}

func TestRegisterLoginFlow(t *testing.T) {
	router := newTestRouter(t)

	t.Run("register", func(t *testing.T) {
		rr := doJSON(t, router, http.MethodPost, "/api/auth/register", "", map[string]string{
			"name": "Ada", "email": "ada@campus.edu", "password": "pw",
		})
		assert.Equal(t, http.StatusCreated, rr.Code)
		body := decodeBody(t, rr)
		user := body["user"].(map[string]any)
		assert.Equal(t, "Ada", user["name"])
		// The password never appears in a response.
		assert.NotContains(t, rr.Body.String(), `"password"`)
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		rr := doJSON(t, router, http.MethodPost, "/api/auth/register", "", map[string]string{
			"name": "Imposter", "email": "ada@campus.edu", "password": "pw",
		})
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		rr := doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email": "ada@campus.edu", "password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("login and me", func(t *testing.T) {
		rr := doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email": "ada@campus.edu", "password": "pw",
		})
		require.Equal(t, http.StatusOK, rr.Code)
		token := decodeBody(t, rr)["token"].(string)

		rr = doJSON(t, router, http.MethodGet, "/api/auth/me", token, nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "ada@campus.edu", decodeBody(t, rr)["email"])
	})
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t)

	rr := doJSON(t, router, http.MethodGet, "/api/auth/all-users/whoever", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = doJSON(t, router, http.MethodGet, "/api/auth/me", "garbage.token.here", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestConnectionLifecycle(t *testing.T) {
	router := newTestRouter(t)

	adaID, adaToken := registerAndLogin(t, router, "Ada", "ada@campus.edu")
	bobID, bobToken := registerAndLogin(t, router, "Bob", "bob@campus.edu")

	// Ada sends Bob a request.
	rr := doJSON(t, router, http.MethodPost, "/api/auth/send-request", adaToken, map[string]string{
		"senderId": adaID, "senderName": "Ada", "receiverId": bobID,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	// Bob sees it in his inbox.
	rr = doJSON(t, router, http.MethodGet, "/api/auth/notifications/"+bobID, bobToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var inbox []map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&inbox))
	require.Len(t, inbox, 1)
	assert.Equal(t, "Ada wants to connect!", inbox[0]["message"])
	notificationID := inbox[0]["id"].(string)

	// Ada cannot read Bob's inbox.
	rr = doJSON(t, router, http.MethodGet, "/api/auth/notifications/"+bobID, adaToken, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	// Bob accepts.
	rr = doJSON(t, router, http.MethodPost, "/api/auth/accept-request", bobToken, map[string]string{
		"notificationId": notificationID,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	// Both profiles now show the connection.
	for _, tc := range []struct{ viewer, profileID, expectPeer string }{
		{adaToken, adaID, "Bob"},
		{bobToken, bobID, "Ada"},
	} {
		rr = doJSON(t, router, http.MethodGet, "/api/auth/profile/"+tc.profileID, tc.viewer, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		profile := decodeBody(t, rr)
		connections := profile["connections"].([]any)
		require.Len(t, connections, 1, "profile of %s", tc.profileID)
		peer := connections[0].(map[string]any)
		assert.Equal(t, tc.expectPeer, peer["name"])
	}

	// Accepting the same request again fails cleanly.
	rr = doJSON(t, router, http.MethodPost, "/api/auth/accept-request", bobToken, map[string]string{
		"notificationId": notificationID,
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	// Ada removes the connection; both sides are disconnected.
	rr = doJSON(t, router, http.MethodPost, "/api/auth/remove-connection", adaToken, map[string]string{
		"userId": adaID, "targetId": bobID,
	})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, router, http.MethodGet, "/api/auth/profile/"+bobID, bobToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeBody(t, rr)["connections"].([]any), 0)
}

func TestRejectRequest(t *testing.T) {
	router := newTestRouter(t)

	adaID, adaToken := registerAndLogin(t, router, "Ada", "ada@campus.edu")
	bobID, bobToken := registerAndLogin(t, router, "Bob", "bob@campus.edu")

	rr := doJSON(t, router, http.MethodPost, "/api/auth/send-request", adaToken, map[string]string{
		"senderId": adaID, "senderName": "Ada", "receiverId": bobID,
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = doJSON(t, router, http.MethodGet, "/api/auth/notifications/"+bobID, bobToken, nil)
	var inbox []map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&inbox))
	require.Len(t, inbox, 1)

	rr = doJSON(t, router, http.MethodDelete, "/api/auth/reject-request/"+inbox[0]["id"].(string), bobToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	// No connection was made.
	rr = doJSON(t, router, http.MethodGet, "/api/auth/profile/"+adaID, adaToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeBody(t, rr)["connections"].([]any), 0)
}

func TestProjectEndpoints(t *testing.T) {
	router := newTestRouter(t)

	adaID, adaToken := registerAndLogin(t, router, "Ada", "ada@campus.edu")
	_, bobToken := registerAndLogin(t, router, "Bob", "bob@campus.edu")

	// techStack as a comma-separated string gets normalized.
	rr := doJSON(t, router, http.MethodPost, "/api/auth/add-project", adaToken, map[string]any{
		"title":       "SkillShare",
		"description": "campus network",
		"techStack":   "Go, chi ,SQLite",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	project := decodeBody(t, rr)["project"].(map[string]any)
	projectID := project["id"].(string)
	assert.Equal(t, []any{"Go", "chi", "SQLite"}, project["techStack"])
	assert.Equal(t, "Idea", project["status"])
	assert.Equal(t, adaID, project["owner"])

	// It shows up in the owner's listing.
	rr = doJSON(t, router, http.MethodGet, "/api/auth/user-projects/"+adaID, bobToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var projects []map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&projects))
	assert.Len(t, projects, 1)

	// Only the owner can change it.
	rr = doJSON(t, router, http.MethodPut, "/api/auth/project/"+projectID, bobToken, map[string]any{
		"title": "hijacked",
	})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = doJSON(t, router, http.MethodPut, "/api/auth/project/"+projectID, adaToken, map[string]any{
		"status": "Completed",
	})
	require.Equal(t, http.StatusOK, rr.Code)
	updated := decodeBody(t, rr)["project"].(map[string]any)
	assert.Equal(t, "Completed", updated["status"])
	assert.Equal(t, "SkillShare", updated["title"], "unsent fields stay unchanged")

	// Only the owner can delete it.
	rr = doJSON(t, router, http.MethodDelete, "/api/auth/project/"+projectID, bobToken, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = doJSON(t, router, http.MethodDelete, "/api/auth/project/"+projectID, adaToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, router, http.MethodDelete, "/api/auth/project/"+projectID, adaToken, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDiscoveryAndSearch(t *testing.T) {
	router := newTestRouter(t)

	adaID, adaToken := registerAndLogin(t, router, "Ada", "ada@campus.edu")
	bobID, bobToken := registerAndLogin(t, router, "Bob", "bob@campus.edu")

	// Bob lists his skills and a project.
	rr := doJSON(t, router, http.MethodPut, "/api/auth/update-skills/"+bobID, bobToken, map[string]any{
		"skills": []string{"React", "Go"},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = doJSON(t, router, http.MethodPost, "/api/auth/add-project", bobToken, map[string]any{
		"title": "Visualizer", "description": "d", "techStack": []string{"React"},
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	// Discovery excludes the caller and carries portfolios.
	rr = doJSON(t, router, http.MethodGet, "/api/auth/all-users/"+adaID, adaToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var users []map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&users))
	require.Len(t, users, 1)
	assert.Equal(t, "Bob", users[0]["name"])
	assert.Len(t, users[0]["projects"].([]any), 1)

	// Search by skill, case-insensitively.
	rr = doJSON(t, router, http.MethodGet, "/api/auth/search?query=REACT", adaToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var results []map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&results))
	require.Len(t, results, 1)
	assert.Equal(t, "Bob", results[0]["name"])

	// Empty query matches nothing.
	rr = doJSON(t, router, http.MethodGet, "/api/auth/search?query=", adaToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", string(bytes.TrimSpace(rr.Body.Bytes())))
}

func TestSettingsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	adaID, adaToken := registerAndLogin(t, router, "Ada", "ada@campus.edu")
	bobID, _ := registerAndLogin(t, router, "Bob", "bob@campus.edu")

	// Ada cannot update Bob's settings.
	rr := doJSON(t, router, http.MethodPut, "/api/auth/settings/"+bobID, adaToken, map[string]any{
		"theme": "dark",
	})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	// Partial update: theme only, name untouched.
	rr = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/auth/settings/%s", adaID), adaToken, map[string]any{
		"theme": "dark",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	user := decodeBody(t, rr)["user"].(map[string]any)
	assert.Equal(t, "dark", user["theme"])
	assert.Equal(t, "Ada", user["name"])

	// Invalid theme is rejected.
	rr = doJSON(t, router, http.MethodPut, "/api/auth/settings/"+adaID, adaToken, map[string]any{
		"theme": "solarized",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
