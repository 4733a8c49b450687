package mutate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"pioneer-cli/internal/api"
	"pioneer-cli/internal/model"
	"pioneer-cli/internal/notify"
	"pioneer-cli/internal/session"
)

func testOrchestrator(t *testing.T, handler http.Handler) (*Orchestrator, *notify.Notifier, *api.Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := api.NewClient(api.Config{
		BaseURL: srv.URL,
		Session: &session.Session{Access: "tok"},
	})
	n := notify.New()
	return NewOrchestrator(client, n, nil), n, client
}

func TestCreate_SuccessNotifiesClosesAndRefetches(t *testing.T) {
	o, n, client := testOrchestrator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(model.Task{ID: "5", Title: "New"})
	}))
	tags := client.Invalidations()

	res, err := o.Create(context.Background(), model.TaskFields{Title: "New"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !res.Refetch || !res.CloseEditor {
		t.Fatalf("expected refetch+close on create success, got %+v", res)
	}
	if res.Task.ID != "5" {
		t.Fatalf("expected created task, got %+v", res.Task)
	}

	nt, ok := n.Latest()
	if !ok || nt.Level != notify.LevelSuccess || nt.Message != "Task Created Successfully" {
		t.Fatalf("expected success notification, got %+v", nt)
	}
	if len(n.Active()) != 1 {
		t.Fatalf("expected loading replaced in place, got %d notifications", len(n.Active()))
	}
	if tag := <-tags; tag != api.TagTodo {
		t.Fatalf("expected todo invalidation, got %q", tag)
	}
}

func TestCreate_SuccessWithoutIDDoesNothingFurther(t *testing.T) {
	o, n, _ := testOrchestrator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(model.Task{Title: "no id"})
	}))

	res, err := o.Create(context.Background(), model.TaskFields{Title: "x"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res.Refetch || res.CloseEditor {
		t.Fatalf("expected no refetch/close without a server id, got %+v", res)
	}
	nt, _ := n.Latest()
	if nt.Level != notify.LevelLoading {
		t.Fatalf("expected the loading notification to remain, got %+v", nt)
	}
}

func TestCreate_ErrorSurfacesServerDetail(t *testing.T) {
	o, n, _ := testOrchestrator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"title must not be empty"}`))
	}))

	_, err := o.Create(context.Background(), model.TaskFields{})
	if err == nil {
		t.Fatalf("expected error")
	}
	nt, _ := n.Latest()
	if nt.Level != notify.LevelError || nt.Message != "title must not be empty" {
		t.Fatalf("expected server detail in notification, got %+v", nt)
	}
}

func TestUpdate_SuccessDoesNotAskForRefetchOrClose(t *testing.T) {
	o, n, client := testOrchestrator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(model.Task{ID: "9", Title: "Edited"})
	}))
	tags := client.Invalidations()

	res, err := o.Update(context.Background(), "9", model.TaskFields{Title: "Edited"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	// Current behavior: update notifies but leaves the editor open and the
	// list stale until something else triggers a refetch.
	if res.Refetch || res.CloseEditor {
		t.Fatalf("expected update to leave editor and list alone, got %+v", res)
	}
	nt, _ := n.Latest()
	if nt.Level != notify.LevelSuccess || nt.Message != "Task Updated Successfully" {
		t.Fatalf("expected update success notification, got %+v", nt)
	}
	select {
	case tag := <-tags:
		t.Fatalf("expected no invalidation after update, got %q", tag)
	default:
	}
}

func TestDelete_WithoutConfirmationNeverCallsEndpoint(t *testing.T) {
	called := false
	o, n, _ := testOrchestrator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	_, err := o.Delete(context.Background(), "1", false)
	if !errors.Is(err, ErrNotConfirmed) {
		t.Fatalf("expected ErrNotConfirmed, got %v", err)
	}
	if called {
		t.Fatalf("expected delete endpoint untouched without confirmation")
	}
	if got := n.Active(); len(got) != 0 {
		t.Fatalf("expected no notifications, got %v", got)
	}
}

func TestDelete_ConfirmedSuccessRefetches(t *testing.T) {
	o, n, _ := testOrchestrator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	res, err := o.Delete(context.Background(), "1", true)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !res.Refetch {
		t.Fatalf("expected refetch after delete, got %+v", res)
	}
	nt, _ := n.Latest()
	if nt.Level != notify.LevelSuccess || nt.Message != "Task deleted successfully" {
		t.Fatalf("expected delete success notification, got %+v", nt)
	}
}

func TestUserMessage_Fallbacks(t *testing.T) {
	if got := UserMessage(errors.New("dial tcp: connection refused")); got != api.GenericErrorMessage {
		t.Fatalf("expected generic fallback for network errors, got %q", got)
	}
	if got := UserMessage(session.ErrNoSession); got == api.GenericErrorMessage {
		t.Fatalf("expected login hint for missing session")
	}
}
