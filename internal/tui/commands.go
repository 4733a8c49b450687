package tui

import (
	"context"
	"os"
	"strings"
	"time"

	"pioneer-cli/internal/api"
	"pioneer-cli/internal/model"
	"pioneer-cli/internal/mutate"
	"pioneer-cli/internal/notify"
	"pioneer-cli/internal/session"

	tea "github.com/charmbracelet/bubbletea"
)

// now is a package hook so date-dependent rendering is testable.
var now = time.Now

const requestTimeout = 30 * time.Second

func reqContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

func (m appModel) loadTasksCmd() tea.Cmd {
	client := m.deps.Client
	return func() tea.Msg {
		ctx, cancel := reqContext()
		defer cancel()
		tasks, err := client.ListTodos(ctx)
		return tasksLoadedMsg{tasks: tasks, err: err}
	}
}

func (m appModel) createTaskCmd(fields model.TaskFields) tea.Cmd {
	orch := m.deps.Orchestrator
	return func() tea.Msg {
		ctx, cancel := reqContext()
		defer cancel()
		res, err := orch.Create(ctx, fields)
		return mutationDoneMsg{result: res, err: err}
	}
}

func (m appModel) updateTaskCmd(id string, fields model.TaskFields) tea.Cmd {
	orch := m.deps.Orchestrator
	return func() tea.Msg {
		ctx, cancel := reqContext()
		defer cancel()
		res, err := orch.Update(ctx, id, fields)
		return mutationDoneMsg{result: res, err: err}
	}
}

// deleteTaskCmd runs only after the confirmation dialog was accepted; the
// orchestrator enforces that again.
func (m appModel) deleteTaskCmd(id string) tea.Cmd {
	orch := m.deps.Orchestrator
	return func() tea.Msg {
		ctx, cancel := reqContext()
		defer cancel()
		res, err := orch.Delete(ctx, id, true)
		return mutationDoneMsg{result: res, err: err}
	}
}

func (m appModel) loginCmd(email, password string, remember bool) tea.Cmd {
	client := m.deps.Client
	notifier := m.deps.Notifier
	store := m.deps.SessionStore
	return func() tea.Msg {
		nid := notifier.Loading("Please Wait..")
		ctx, cancel := reqContext()
		defer cancel()

		resp, err := client.Login(ctx, model.LoginRequest{Email: email, Password: password})
		if err != nil {
			notifier.Error(nid, mutate.UserMessage(err))
			return loginDoneMsg{err: err}
		}

		sess := &session.Session{Access: resp.Access, Email: email}
		if err := store.Save(ctx, sess); err != nil {
			notifier.Error(nid, "Could not save session: "+err.Error())
			return loginDoneMsg{err: err}
		}
		if remember {
			_ = store.RememberLogin(ctx, email, password)
		} else {
			_ = store.ForgetLogin(ctx, email)
		}

		notifier.Success(nid, "Login successful")
		return loginDoneMsg{access: resp.Access, email: email}
	}
}

func (m appModel) signupCmd(req model.SignupRequest) tea.Cmd {
	client := m.deps.Client
	notifier := m.deps.Notifier
	return func() tea.Msg {
		nid := notifier.Loading("Please Wait..")
		ctx, cancel := reqContext()
		defer cancel()

		created, err := client.Signup(ctx, req)
		if err != nil {
			notifier.Error(nid, mutate.UserMessage(err))
			return signupDoneMsg{err: err}
		}
		notifier.Success(nid, "Account created, you can log in now")
		return signupDoneMsg{profile: created}
	}
}

func (m appModel) loadProfileCmd() tea.Cmd {
	client := m.deps.Client
	return func() tea.Msg {
		ctx, cancel := reqContext()
		defer cancel()
		profile, err := client.Me(ctx)
		return profileLoadedMsg{profile: profile, err: err}
	}
}

func (m appModel) saveProfileCmd(upd api.ProfileUpdate, imagePath string) tea.Cmd {
	client := m.deps.Client
	notifier := m.deps.Notifier
	return func() tea.Msg {
		nid := notifier.Loading("Please wait...")
		if p := strings.TrimSpace(imagePath); p != "" {
			f, err := os.Open(p)
			if err != nil {
				notifier.Error(nid, "Could not read image: "+err.Error())
				return profileSavedMsg{err: err}
			}
			defer f.Close()
			upd.Image = &api.ImageAttachment{Filename: p, Reader: f}
		}

		ctx, cancel := reqContext()
		defer cancel()
		updated, err := client.UpdateProfile(ctx, upd)
		if err != nil {
			notifier.Error(nid, "Error saving changes")
			return profileSavedMsg{err: err}
		}
		notifier.Success(nid, "Changes saved successfully!")
		return profileSavedMsg{profile: updated}
	}
}

// notificationTTL is how long a terminal notification stays in the status bar.
const notificationTTL = 3 * time.Second

func expireNotification(id string) tea.Cmd {
	return tea.Tick(notificationTTL, func(time.Time) tea.Msg {
		return notificationExpiredMsg{id: id}
	})
}

// listen commands re-arm themselves from Update after every delivery.

func listenInvalidations(ch <-chan api.Tag) tea.Cmd {
	return func() tea.Msg {
		tag, ok := <-ch
		if !ok {
			return nil
		}
		return invalidatedMsg{tag: tag}
	}
}

func listenNotifications(ch <-chan notify.Notification) tea.Cmd {
	return func() tea.Msg {
		nt, ok := <-ch
		if !ok {
			return nil
		}
		return notificationMsg{nt: nt}
	}
}
