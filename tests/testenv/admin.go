package testenv

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"testing"
)

var csrfFieldRe = regexp.MustCompile(`name="gorilla\.csrf\.Token" value="([^"]+)"`)

// Login authenticates as admin and returns a CSRF token usable in the
// X-CSRF-Token header for subsequent admin API calls.
func (e *TestEnv) Login(t *testing.T) string {
	t.Helper()
	return e.LoginWithPassword(t, AdminPassword)
}

// LoginWithPassword performs the login form flow with an arbitrary password.
// The returned token is valid whether or not the login succeeded; callers
// checking rejection should inspect the session themselves.
func (e *TestEnv) LoginWithPassword(t *testing.T, password string) string {
	t.Helper()

	resp, err := e.Client.Get(e.URL("/admin/login"))
	if err != nil {
		t.Fatalf("failed to fetch login page: %v", err)
	}
	page, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("failed to read login page: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login page returned %d", resp.StatusCode)
	}

	m := csrfFieldRe.FindSubmatch(page)
	if m == nil {
		t.Fatalf("no CSRF field in login page:\n%s", page)
	}
	token := string(m[1])

	form := url.Values{}
	form.Set("gorilla.csrf.Token", token)
	form.Set("password", password)

	resp, err = e.Client.PostForm(e.URL("/admin/login"), form)
	if err != nil {
		t.Fatalf("failed to post login form: %v", err)
	}
	resp.Body.Close()

	return token
}

// AdminRequest performs an admin API request with the session cookie and
// CSRF token attached.
func (e *TestEnv) AdminRequest(t *testing.T, method, path, csrfToken string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, e.URL(path), reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-CSRF-Token", csrfToken)

	resp, err := e.Client.Do(req)
	if err != nil {
		t.Fatalf("admin request %s %s: %v", method, path, err)
	}
	return resp
}

// CreateKey creates an access key through the admin API and returns its
// plaintext token and ID.
func (e *TestEnv) CreateKey(t *testing.T, csrfToken, durationType string) (key, id string) {
	t.Helper()

	resp := e.AdminRequest(t, http.MethodPost, "/admin/api/keys", csrfToken,
		map[string]string{"duration_type": durationType})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		data, _ := io.ReadAll(resp.Body)
		t.Fatalf("create key returned %d: %s", resp.StatusCode, data)
	}

	var created struct {
		ID  string `json:"id"`
		Key string `json:"key"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode create key response: %v", err)
	}
	return created.Key, created.ID
}

// PostJSON performs a public API POST with a JSON body.
func (e *TestEnv) PostJSON(t *testing.T, path string, body any) *http.Response {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}
	resp, err := e.Client.Post(e.URL(path), "application/json", strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

// DecodeJSON reads and closes the response body into v.
func DecodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

// RequireStatus fails the test when the response status differs.
func RequireStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		data, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("expected status %d, got %d: %s", want, resp.StatusCode, data)
	}
}
