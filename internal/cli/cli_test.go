package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pioneer-cli/internal/model"
)

type todoListResponse struct {
	Results []model.Task `json:"results"`
}

func runPioneer(t *testing.T, baseURL, stateDir string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("PIONEER_STATE_DIR", stateDir)

	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(append([]string{
		"--config", filepath.Join(stateDir, "config.yaml"),
		"--base-url", baseURL,
	}, args...))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestCLI_LoginThenTasksFlow(t *testing.T) {
	deleteCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(model.LoginResponse{Access: "tok"})
	})
	mux.HandleFunc("GET /api/todos/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(todoListResponse{Results: []model.Task{
			{ID: "1", Title: "Pay bills"},
			{ID: "2", Title: "Buy milk"},
		}})
	})
	mux.HandleFunc("POST /api/todos/", func(w http.ResponseWriter, r *http.Request) {
		var fields model.TaskFields
		_ = json.NewDecoder(r.Body).Decode(&fields)
		_ = json.NewEncoder(w).Encode(model.Task{ID: "3", Title: fields.Title, Priority: fields.Priority})
	})
	mux.HandleFunc("DELETE /api/todos/2/", func(w http.ResponseWriter, r *http.Request) {
		deleteCalls++
		w.WriteHeader(http.StatusNoContent)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	dir := t.TempDir()

	stdout, stderr, err := runPioneer(t, srv.URL, dir, "login", "--email", "ada@example.com", "--password", "pw")
	if err != nil {
		t.Fatalf("login: %v\nstderr: %s", err, stderr)
	}
	if !strings.Contains(stdout, "Logged in as ada@example.com") {
		t.Fatalf("unexpected login output: %q", stdout)
	}

	stdout, stderr, err = runPioneer(t, srv.URL, dir, "tasks", "list", "--search", "pay")
	if err != nil {
		t.Fatalf("tasks list: %v\nstderr: %s", err, stderr)
	}
	var listed []model.Task
	if err := json.Unmarshal([]byte(stdout), &listed); err != nil {
		t.Fatalf("unmarshal list output: %v\nstdout: %s", err, stdout)
	}
	if len(listed) != 1 || listed[0].ID != "1" {
		t.Fatalf("expected the search to match only task 1, got %+v", listed)
	}

	stdout, stderr, err = runPioneer(t, srv.URL, dir, "tasks", "create", "--title", "Water plants", "--priority", "low")
	if err != nil {
		t.Fatalf("tasks create: %v\nstderr: %s", err, stderr)
	}
	var created model.Task
	if err := json.Unmarshal([]byte(stdout), &created); err != nil {
		t.Fatalf("unmarshal create output: %v\nstdout: %s", err, stdout)
	}
	if created.ID != "3" || created.Priority != model.PriorityLow {
		t.Fatalf("unexpected created task: %+v", created)
	}

	// Deleting without --yes never reaches the endpoint.
	_, stderr, err = runPioneer(t, srv.URL, dir, "tasks", "delete", "2")
	if err == nil {
		t.Fatalf("expected delete without --yes to fail")
	}
	if deleteCalls != 0 {
		t.Fatalf("expected no delete request without --yes, got %d", deleteCalls)
	}
	if !strings.Contains(stderr, "--yes") {
		t.Fatalf("expected a hint about --yes, got %q", stderr)
	}

	stdout, stderr, err = runPioneer(t, srv.URL, dir, "tasks", "delete", "2", "--yes")
	if err != nil {
		t.Fatalf("tasks delete: %v\nstderr: %s", err, stderr)
	}
	if deleteCalls != 1 {
		t.Fatalf("expected one delete request, got %d", deleteCalls)
	}
}

func TestCLI_TasksListBucketFilter(t *testing.T) {
	today := time.Now().Format("2006-01-02")
	farOut := time.Now().AddDate(0, 0, 20).Format("2006-01-02")

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(model.LoginResponse{Access: "tok"})
	})
	mux.HandleFunc("GET /api/todos/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(todoListResponse{Results: []model.Task{
			{ID: "1", Title: "due today", TodoDate: today},
			{ID: "2", Title: "due later", TodoDate: farOut},
			{ID: "3", Title: "undated"},
		}})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	if _, stderr, err := runPioneer(t, srv.URL, dir, "login", "--email", "a@b.c", "--password", "pw"); err != nil {
		t.Fatalf("login: %v\nstderr: %s", err, stderr)
	}

	stdout, stderr, err := runPioneer(t, srv.URL, dir, "tasks", "list", "--today")
	if err != nil {
		t.Fatalf("tasks list --today: %v\nstderr: %s", err, stderr)
	}
	var listed []model.Task
	if err := json.Unmarshal([]byte(stdout), &listed); err != nil {
		t.Fatalf("unmarshal: %v\nstdout: %s", err, stdout)
	}
	if len(listed) != 1 || listed[0].ID != "1" {
		t.Fatalf("expected only today's task, got %+v", listed)
	}
}

func TestCLI_RequiresSessionForTasks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected request without a session: %s %s", r.Method, r.URL.Path)
	}))
	t.Cleanup(srv.Close)

	_, stderr, err := runPioneer(t, srv.URL, t.TempDir(), "tasks", "list")
	if err == nil {
		t.Fatalf("expected an error without a stored session")
	}
	if !strings.Contains(stderr, "not logged in") {
		t.Fatalf("expected a login hint, got %q", stderr)
	}
}

func TestCLI_WhoamiOutputsProfile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(model.LoginResponse{Access: "tok"})
	})
	mux.HandleFunc("GET /api/users/me/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(model.UserProfile{ID: 7, Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	if _, stderr, err := runPioneer(t, srv.URL, dir, "login", "--email", "ada@example.com", "--password", "pw"); err != nil {
		t.Fatalf("login: %v\nstderr: %s", err, stderr)
	}

	stdout, stderr, err := runPioneer(t, srv.URL, dir, "whoami", "--pretty")
	if err != nil {
		t.Fatalf("whoami: %v\nstderr: %s", err, stderr)
	}
	var profile model.UserProfile
	if err := json.Unmarshal([]byte(stdout), &profile); err != nil {
		t.Fatalf("unmarshal: %v\nstdout: %s", err, stdout)
	}
	if profile.Email != "ada@example.com" || profile.FirstName != "Ada" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
}
