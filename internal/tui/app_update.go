package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"pioneer-cli/internal/api"
	"pioneer-cli/internal/model"
	"pioneer-cli/internal/mutate"
	"pioneer-cli/internal/notify"
	"pioneer-cli/internal/session"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

func (m appModel) Init() tea.Cmd {
	cmds := []tea.Cmd{
		listenInvalidations(m.invalCh),
		listenNotifications(m.ntCh),
		m.spinner.Tick,
	}
	if m.view == viewTasks {
		cmds = append(cmds, m.loadTasksCmd())
	}
	return tea.Batch(cmds...)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.taskList.SetSize(msg.Width, max(4, msg.Height-chromeLines))
		return m, nil

	case spinner.TickMsg:
		if m.spinnerActive() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tasksLoadedMsg:
		if msg.err != nil {
			m.loadErr = mutate.UserMessage(msg.err)
			if m.isAuthFailure(msg.err) {
				m.resetSession(context.Background())
			}
			return m, nil
		}
		m.applyServerTasks(msg.tasks)
		return m, nil

	case invalidatedMsg:
		cmds := []tea.Cmd{listenInvalidations(m.invalCh)}
		if msg.tag == api.TagTodo && m.view == viewTasks {
			cmds = append(cmds, m.loadTasksCmd())
		}
		if msg.tag == api.TagAuth && m.view == viewAccount {
			cmds = append(cmds, m.loadProfileCmd())
		}
		return m, tea.Batch(cmds...)

	case notificationMsg:
		nt := msg.nt
		m.lastNt = &nt
		cmds := []tea.Cmd{listenNotifications(m.ntCh)}
		if nt.Level == notify.LevelLoading {
			cmds = append(cmds, m.spinner.Tick)
		} else {
			// Terminal notifications leave the status bar on their own.
			cmds = append(cmds, expireNotification(nt.ID))
		}
		return m, tea.Batch(cmds...)

	case notificationExpiredMsg:
		m.deps.Notifier.Dismiss(msg.id)
		if m.lastNt != nil && m.lastNt.ID == msg.id {
			m.lastNt = nil
		}
		return m, nil

	case mutationDoneMsg:
		m.busy = false
		if msg.err != nil {
			// The orchestrator already notified; just handle expired creds.
			if m.isAuthFailure(msg.err) {
				m.resetSession(context.Background())
			}
			return m, nil
		}
		if msg.result.CloseEditor {
			m.closeEditor()
		}
		// Refetches ride the invalidation subject, not this message.
		return m, nil

	case loginDoneMsg:
		m.authBusy = false
		if msg.err != nil {
			return m, nil
		}
		sess := &session.Session{Access: msg.access, Email: msg.email, SavedAt: time.Now().UTC()}
		m.deps.Session = sess
		m.deps.Client.SetSession(sess)
		m.view = viewTasks
		m.loaded = false
		return m, m.loadTasksCmd()

	case signupDoneMsg:
		m.authBusy = false
		if msg.err != nil {
			return m, nil
		}
		// Back to login with the email prefilled.
		m.view = viewLogin
		m.emailInput.SetValue(msg.profile.Email)
		m.passwordInput.SetValue("")
		m.focusAuthField(authFocusPassword)
		return m, nil

	case profileLoadedMsg:
		if msg.err != nil {
			m.accLoadFailed = true
			if m.isAuthFailure(msg.err) {
				m.resetSession(context.Background())
			}
			return m, nil
		}
		m.accLoadFailed = false
		m.fillAccountForm(msg.profile)
		return m, nil

	case profileSavedMsg:
		m.accBusy = false
		if msg.err == nil {
			m.fillAccountForm(msg.profile)
		}
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)
	}

	return m, nil
}

const chromeLines = 7

func (m appModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.view {
	case viewLogin, viewSignup:
		return m.updateAuthKey(msg)
	case viewAccount:
		return m.updateAccountKey(msg)
	}

	// Tasks view. The delete confirmation sits on top of everything else.
	if m.confirmTask != nil {
		return m.updateConfirmKey(msg)
	}
	if m.modal != modalNone {
		return m.updateEditorKey(msg)
	}
	if m.searching {
		return m.updateSearchKey(msg)
	}
	return m.updateTasksKey(msg)
}

func (m appModel) updateTasksKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "a", "n":
		m.openAdd()
		return m, nil

	case "e":
		if t, ok := m.selectedTask(); ok {
			m.openEdit(t)
		}
		return m, nil

	case "enter":
		if _, dragging := m.reorder.Dragging(); dragging {
			if t, ok := m.selectedTask(); ok {
				m.reorder.DropOn(t.ID)
			}
			m.reorder.EndDrag()
			m.syncTaskList()
			return m, nil
		}
		if t, ok := m.selectedTask(); ok {
			m.openEdit(t)
		}
		return m, nil

	case "g":
		if t, ok := m.selectedTask(); ok {
			m.reorder.BeginDrag(t.ID)
			m.syncTaskList()
		}
		return m, nil

	case "esc":
		if _, dragging := m.reorder.Dragging(); dragging {
			m.reorder.EndDrag()
			m.syncTaskList()
		}
		return m, nil

	case "d", "x":
		if t, ok := m.selectedTask(); ok {
			task := t
			m.confirmTask = &task
			m.confirmFocus = confirmFocusCancel
		}
		return m, nil

	case "/":
		m.searching = true
		m.search.Focus()
		return m, nil

	case "1":
		m.buckets.Today = !m.buckets.Today
		m.syncTaskList()
		return m, nil
	case "2":
		m.buckets.Next5Days = !m.buckets.Next5Days
		m.syncTaskList()
		return m, nil
	case "3":
		m.buckets.Next10Days = !m.buckets.Next10Days
		m.syncTaskList()
		return m, nil
	case "4":
		m.buckets.Next30Days = !m.buckets.Next30Days
		m.syncTaskList()
		return m, nil

	case "r":
		m.deps.Client.Invalidate(api.TagTodo)
		return m, nil

	case "p":
		m.view = viewAccount
		m.focusAccountField(accountFocusFirstName)
		return m, m.loadProfileCmd()

	case "L":
		m.resetSession(context.Background())
		return m, nil
	}

	var cmd tea.Cmd
	m.taskList, cmd = m.taskList.Update(msg)
	return m, cmd
}

func (m appModel) updateSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.search.Blur()
		return m, nil
	case "esc":
		// Esc clears the term entirely; enter keeps it applied.
		m.searching = false
		m.search.SetValue("")
		m.search.Blur()
		m.syncTaskList()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.syncTaskList()
	return m, cmd
}

func (m appModel) updateConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "n":
		m.confirmTask = nil
		return m, nil

	case "tab", "left", "right":
		if m.confirmFocus == confirmFocusCancel {
			m.confirmFocus = confirmFocusConfirm
		} else {
			m.confirmFocus = confirmFocusCancel
		}
		return m, nil

	case "y":
		return m.confirmDelete()

	case "enter":
		if m.confirmFocus == confirmFocusConfirm {
			return m.confirmDelete()
		}
		m.confirmTask = nil
		return m, nil
	}
	return m, nil
}

func (m appModel) confirmDelete() (tea.Model, tea.Cmd) {
	if m.busy || m.confirmTask == nil {
		return m, nil
	}
	id := m.confirmTask.ID
	m.confirmTask = nil
	m.busy = true
	return m, tea.Batch(m.deleteTaskCmd(id), m.spinner.Tick)
}

func (m appModel) updateEditorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeEditor()
		return m, nil

	case "tab":
		m.focusFormField(nextFormFocus(m.formFocus, 1))
		return m, nil
	case "shift+tab":
		m.focusFormField(nextFormFocus(m.formFocus, -1))
		return m, nil

	case "ctrl+s":
		return m.submitEditor()
	}

	switch m.formFocus {
	case formFocusPriority:
		switch msg.String() {
		case "left", "h":
			m.priorityIdx = (m.priorityIdx + len(priorityChoices) - 1) % len(priorityChoices)
		case "right", "l", " ":
			m.priorityIdx = (m.priorityIdx + 1) % len(priorityChoices)
		}
		return m, nil

	case formFocusSave:
		if msg.String() == "enter" {
			return m.submitEditor()
		}
		return m, nil

	case formFocusCancel:
		if msg.String() == "enter" {
			m.closeEditor()
		}
		return m, nil

	case formFocusDescription:
		var cmd tea.Cmd
		m.descArea, cmd = m.descArea.Update(msg)
		return m, cmd

	case formFocusDate:
		if msg.String() == "enter" {
			m.focusFormField(formFocusSave)
			return m, nil
		}
		var cmd tea.Cmd
		m.dateInput, cmd = m.dateInput.Update(msg)
		return m, cmd

	default: // title
		if msg.String() == "enter" {
			m.focusFormField(formFocusDescription)
			return m, nil
		}
		var cmd tea.Cmd
		m.titleInput, cmd = m.titleInput.Update(msg)
		return m, cmd
	}
}

func nextFormFocus(f taskFormFocus, dir int) taskFormFocus {
	n := int(formFocusCancel) + 1
	return taskFormFocus((int(f) + dir + n) % n)
}

// submitEditor validates locally, then hands off to the orchestrator.
// Validation failures stay inside the form.
func (m appModel) submitEditor() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	fields := m.formFields()
	if fields.Title == "" {
		m.formErr = "Title is required"
		m.focusFormField(formFocusTitle)
		return m, nil
	}
	if fields.TodoDate != "" {
		if _, err := time.Parse("2006-01-02", fields.TodoDate); err != nil {
			m.formErr = "Date must be YYYY-MM-DD"
			m.focusFormField(formFocusDate)
			return m, nil
		}
	}
	m.formErr = ""
	m.busy = true

	if m.modal == modalEditTask && m.editingTask != nil {
		return m, tea.Batch(m.updateTaskCmd(m.editingTask.ID, fields), m.spinner.Tick)
	}
	return m, tea.Batch(m.createTaskCmd(fields), m.spinner.Tick)
}

func (m appModel) updateAuthKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		m.cycleAuthFocus(1)
		return m, nil
	case "shift+tab", "up":
		m.cycleAuthFocus(-1)
		return m, nil
	case "ctrl+s":
		return m.submitAuth()
	case "enter":
		switch m.authFocus {
		case authFocusSubmit:
			return m.submitAuth()
		case authFocusRemember:
			m.rememberMe = !m.rememberMe
			return m, nil
		default:
			m.cycleAuthFocus(1)
			return m, nil
		}
	case " ":
		if m.authFocus == authFocusRemember {
			m.rememberMe = !m.rememberMe
			return m, nil
		}
	case "ctrl+n":
		// Toggle between login and signup.
		if m.view == viewLogin {
			m.view = viewSignup
			m.focusAuthField(authFocusFirstName)
		} else {
			m.view = viewLogin
			m.focusAuthField(authFocusEmail)
		}
		return m, nil
	}

	var cmd tea.Cmd
	switch m.authFocus {
	case authFocusFirstName:
		m.firstNameInput, cmd = m.firstNameInput.Update(msg)
	case authFocusLastName:
		m.lastNameInput, cmd = m.lastNameInput.Update(msg)
	case authFocusEmail:
		m.emailInput, cmd = m.emailInput.Update(msg)
	case authFocusPassword:
		m.passwordInput, cmd = m.passwordInput.Update(msg)
	}
	return m, cmd
}

// cycleAuthFocus moves focus through the visible fields; login skips the
// name fields, signup skips the remember toggle.
func (m *appModel) cycleAuthFocus(dir int) {
	order := []authFormFocus{authFocusEmail, authFocusPassword, authFocusRemember, authFocusSubmit}
	if m.view == viewSignup {
		order = []authFormFocus{authFocusFirstName, authFocusLastName, authFocusEmail, authFocusPassword, authFocusSubmit}
	}
	idx := 0
	for i, f := range order {
		if f == m.authFocus {
			idx = i
			break
		}
	}
	next := order[(idx+dir+len(order))%len(order)]

	// Leaving the email field prefills a remembered password.
	if m.view == viewLogin && m.authFocus == authFocusEmail && next != authFocusEmail {
		if email := strings.TrimSpace(m.emailInput.Value()); email != "" && m.passwordInput.Value() == "" {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			if pw, ok, _ := m.deps.SessionStore.RememberedLogin(ctx, email); ok {
				m.passwordInput.SetValue(pw)
				m.rememberMe = true
			}
			cancel()
		}
	}
	m.focusAuthField(next)
}

func (m appModel) submitAuth() (tea.Model, tea.Cmd) {
	if m.authBusy {
		return m, nil
	}
	email := strings.TrimSpace(m.emailInput.Value())
	password := m.passwordInput.Value()
	if email == "" || password == "" {
		return m, nil
	}

	if m.view == viewSignup {
		first := strings.TrimSpace(m.firstNameInput.Value())
		last := strings.TrimSpace(m.lastNameInput.Value())
		if first == "" || last == "" {
			return m, nil
		}
		m.authBusy = true
		req := model.SignupRequest{FirstName: first, LastName: last, Email: email, Password: password}
		return m, tea.Batch(m.signupCmd(req), m.spinner.Tick)
	}

	m.authBusy = true
	return m, tea.Batch(m.loginCmd(email, password, m.rememberMe), m.spinner.Tick)
}

func (m appModel) updateAccountKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.view = viewTasks
		return m, nil

	case "tab", "down":
		m.focusAccountField(nextAccountFocus(m.accFocus, 1))
		return m, nil
	case "shift+tab", "up":
		m.focusAccountField(nextAccountFocus(m.accFocus, -1))
		return m, nil

	case "ctrl+s":
		return m.submitAccount()

	case "enter":
		switch m.accFocus {
		case accountFocusSave:
			return m.submitAccount()
		case accountFocusCancel:
			// Cancel restores the fetched profile values.
			if m.profile != nil {
				m.fillAccountForm(*m.profile)
				m.deps.Notifier.Info("Changes cancelled")
			}
			return m, nil
		default:
			m.focusAccountField(nextAccountFocus(m.accFocus, 1))
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.accFocus {
	case accountFocusFirstName:
		m.accFirst, cmd = m.accFirst.Update(msg)
	case accountFocusLastName:
		m.accLast, cmd = m.accLast.Update(msg)
	case accountFocusEmail:
		m.accEmail, cmd = m.accEmail.Update(msg)
	case accountFocusAddress:
		m.accAddress, cmd = m.accAddress.Update(msg)
	case accountFocusContact:
		m.accContact, cmd = m.accContact.Update(msg)
	case accountFocusBirthday:
		m.accBirthday, cmd = m.accBirthday.Update(msg)
	case accountFocusImage:
		m.accImagePath, cmd = m.accImagePath.Update(msg)
	}
	return m, cmd
}

func nextAccountFocus(f accountFormFocus, dir int) accountFormFocus {
	n := int(accountFocusCancel) + 1
	return accountFormFocus((int(f) + dir + n) % n)
}

func (m appModel) submitAccount() (tea.Model, tea.Cmd) {
	if m.accBusy {
		return m, nil
	}
	m.accBusy = true
	upd := api.ProfileUpdate{
		FirstName:     strings.TrimSpace(m.accFirst.Value()),
		LastName:      strings.TrimSpace(m.accLast.Value()),
		Email:         strings.TrimSpace(m.accEmail.Value()),
		Address:       strings.TrimSpace(m.accAddress.Value()),
		ContactNumber: strings.TrimSpace(m.accContact.Value()),
		Birthday:      strings.TrimSpace(m.accBirthday.Value()),
	}
	return m, tea.Batch(m.saveProfileCmd(upd, m.accImagePath.Value()), m.spinner.Tick)
}

func (m appModel) spinnerActive() bool {
	if m.busy || m.authBusy || m.accBusy {
		return true
	}
	return m.lastNt != nil && m.lastNt.Level == notify.LevelLoading
}

func (m appModel) isAuthFailure(err error) bool {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.IsAuthError()
	}
	return false
}
