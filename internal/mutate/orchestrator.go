// Package mutate orchestrates task mutations: each one publishes an
// in-progress notification, runs the request, and replaces the notification
// in place with the outcome. Errors surface as notifications, never as
// panics or silent drops.
package mutate

import (
	"context"
	"errors"
	"io"
	"strings"

	"pioneer-cli/internal/api"
	"pioneer-cli/internal/model"
	"pioneer-cli/internal/notify"
	"pioneer-cli/internal/session"

	"github.com/charmbracelet/log"
)

// ErrNotConfirmed means a delete was attempted without the user having
// accepted the confirmation dialog. The endpoint is never called.
var ErrNotConfirmed = errors.New("delete not confirmed")

// Result tells the shell what to do after a successful mutation. Create
// closes the editor and refetches; update intentionally does neither; delete
// refetches. The update asymmetry is long-standing observable behavior and
// is asserted by tests.
type Result struct {
	Task        model.Task
	Refetch     bool
	CloseEditor bool
}

type Orchestrator struct {
	client   *api.Client
	notifier *notify.Notifier
	log      *log.Logger
}

func NewOrchestrator(client *api.Client, notifier *notify.Notifier, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Orchestrator{client: client, notifier: notifier, log: logger}
}

// Create posts a new task. Success requires the server to have assigned an
// id; without one the in-flight notification is left as-is and nothing is
// refetched.
func (o *Orchestrator) Create(ctx context.Context, fields model.TaskFields) (Result, error) {
	nid := o.notifier.Loading("Creating task...")

	created, err := o.client.CreateTodo(ctx, fields)
	if err != nil {
		o.fail(nid, "create task", err)
		return Result{}, err
	}
	if strings.TrimSpace(created.ID) == "" {
		o.log.Warn("create response carried no id")
		return Result{Task: created}, nil
	}

	o.notifier.Success(nid, "Task Created Successfully")
	return Result{Task: created, Refetch: true, CloseEditor: true}, nil
}

// Update patches an existing task. On success it only notifies: the editor
// stays open and the list is not refetched.
func (o *Orchestrator) Update(ctx context.Context, id string, fields model.TaskFields) (Result, error) {
	nid := o.notifier.Loading("Updating task...")

	updated, err := o.client.UpdateTodo(ctx, id, fields)
	if err != nil {
		o.fail(nid, "update task", err)
		return Result{}, err
	}
	if strings.TrimSpace(updated.ID) == "" {
		o.log.Warn("update response carried no id", "task", id)
		return Result{Task: updated}, nil
	}

	o.notifier.Success(nid, "Task Updated Successfully")
	return Result{Task: updated}, nil
}

// Delete removes a task. confirmed must reflect an accepted confirmation
// dialog; without it the endpoint is not called at all.
func (o *Orchestrator) Delete(ctx context.Context, id string, confirmed bool) (Result, error) {
	if !confirmed {
		return Result{}, ErrNotConfirmed
	}
	nid := o.notifier.Loading("Deleting task...")

	if err := o.client.DeleteTodo(ctx, id); err != nil {
		o.fail(nid, "delete task", err)
		return Result{}, err
	}

	o.notifier.Success(nid, "Task deleted successfully")
	return Result{Refetch: true}, nil
}

func (o *Orchestrator) fail(nid, op string, err error) {
	o.log.Error(op+" failed", "err", err)
	o.notifier.Error(nid, UserMessage(err))
}

// UserMessage converts any mutation error into the text shown to the user:
// the server's most specific structured field when present, a login hint for
// a missing session, else the generic fallback.
func UserMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.UserMessage()
	}
	if errors.Is(err, session.ErrNoSession) {
		return "You are not logged in. Run `pioneer login` first."
	}
	return api.GenericErrorMessage
}
