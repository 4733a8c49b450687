package tui

import (
	"context"
	"io"
	"strings"

	"pioneer-cli/internal/api"
	"pioneer-cli/internal/model"
	"pioneer-cli/internal/mutate"
	"pioneer-cli/internal/notify"
	"pioneer-cli/internal/session"
	"pioneer-cli/internal/taskview"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/log"
)

// Deps are the collaborators the TUI consumes. The session is explicit and
// travels through the gateway; the TUI itself never touches storage beyond
// the session store's lifecycle calls.
type Deps struct {
	Client       *api.Client
	Orchestrator *mutate.Orchestrator
	Notifier     *notify.Notifier
	SessionStore session.Store
	Session      *session.Session
	Logger       *log.Logger
}

type appModel struct {
	deps Deps
	log  *log.Logger

	// Subscriptions to the gateway's invalidation subject and the
	// notification feed; re-armed after every delivery.
	invalCh <-chan api.Tag
	ntCh    <-chan notify.Notification

	width  int
	height int

	view view

	// Task page state.
	taskList   list.Model
	reorder    taskview.Reorder
	buckets    taskview.Buckets
	search     textinput.Model
	searching  bool
	loaded     bool
	loadErr    string
	totalTasks int

	// Editor modal (closed/adding/editing) plus the independent delete
	// confirmation machine (idle/confirming).
	modal        modalKind
	editingTask  *model.Task
	confirmTask  *model.Task
	confirmFocus confirmModalFocus

	titleInput  textinput.Model
	descArea    textarea.Model
	dateInput   textinput.Model
	priorityIdx int
	formFocus   taskFormFocus
	// formErr is a client-side validation message; it never leaves the form.
	formErr string

	// A mutation in flight; submits are disabled until it completes.
	busy    bool
	spinner spinner.Model
	lastNt  *notify.Notification

	// Auth forms.
	firstNameInput textinput.Model
	lastNameInput  textinput.Model
	emailInput     textinput.Model
	passwordInput  textinput.Model
	rememberMe     bool
	authFocus      authFormFocus
	authBusy       bool

	// Account form.
	profile       *model.UserProfile
	accFirst      textinput.Model
	accLast       textinput.Model
	accEmail      textinput.Model
	accAddress    textinput.Model
	accContact    textinput.Model
	accBirthday   textinput.Model
	accImagePath  textinput.Model
	accFocus      accountFormFocus
	accBusy       bool
	accLoadFailed bool
}

var priorityChoices = []model.Priority{model.PriorityExtreme, model.PriorityModerate, model.PriorityLow}

func newAppModel(deps Deps) appModel {
	if deps.Logger == nil {
		deps.Logger = log.New(io.Discard)
	}
	m := appModel{deps: deps, log: deps.Logger}
	m.invalCh = deps.Client.Invalidations()
	m.ntCh = deps.Notifier.Subscribe()

	if deps.Session.Valid() {
		m.view = viewTasks
	} else {
		m.view = viewLogin
	}

	m.taskList = newList("Tasks")
	m.taskList.SetDelegate(newTaskDelegate())

	m.search = textinput.New()
	m.search.Placeholder = "Search by title"
	m.search.CharLimit = 200
	m.search.Width = 32

	m.spinner = spinner.New()
	m.spinner.Spinner = spinner.Dot

	m.titleInput = textinput.New()
	m.titleInput.Placeholder = "Title"
	m.titleInput.CharLimit = 200
	m.titleInput.Width = 48

	m.descArea = textarea.New()
	m.descArea.Placeholder = "Description"
	m.descArea.CharLimit = 0
	m.descArea.SetWidth(48)
	m.descArea.SetHeight(5)
	m.descArea.ShowLineNumbers = false

	m.dateInput = textinput.New()
	m.dateInput.Placeholder = "YYYY-MM-DD"
	m.dateInput.CharLimit = 10
	m.dateInput.Width = 12

	m.firstNameInput = textinput.New()
	m.firstNameInput.Placeholder = "First name"
	m.firstNameInput.Width = 32
	m.lastNameInput = textinput.New()
	m.lastNameInput.Placeholder = "Last name"
	m.lastNameInput.Width = 32
	m.emailInput = textinput.New()
	m.emailInput.Placeholder = "Email"
	m.emailInput.Width = 32
	m.passwordInput = textinput.New()
	m.passwordInput.Placeholder = "Password"
	m.passwordInput.Width = 32
	m.passwordInput.EchoMode = textinput.EchoPassword

	m.accFirst = textinput.New()
	m.accFirst.Placeholder = "First name"
	m.accFirst.Width = 32
	m.accLast = textinput.New()
	m.accLast.Placeholder = "Last name"
	m.accLast.Width = 32
	m.accEmail = textinput.New()
	m.accEmail.Placeholder = "Email"
	m.accEmail.Width = 32
	m.accAddress = textinput.New()
	m.accAddress.Placeholder = "Address"
	m.accAddress.Width = 48
	m.accContact = textinput.New()
	m.accContact.Placeholder = "Contact number"
	m.accContact.Width = 24
	m.accBirthday = textinput.New()
	m.accBirthday.Placeholder = "YYYY-MM-DD"
	m.accBirthday.Width = 12
	m.accImagePath = textinput.New()
	m.accImagePath.Placeholder = "Path to image (optional)"
	m.accImagePath.Width = 48

	m.focusAuthField(authFocusEmail)
	return m
}

// visibleTasks runs the pure filter over the manually-ordered view.
func (m *appModel) visibleTasks() []model.Task {
	return taskview.Filter(m.reorder.Tasks(), m.search.Value(), m.buckets, now())
}

// syncTaskList pushes the filtered/ordered tasks into the bubbles list,
// keeping the cursor on the same task when it survives the refresh.
func (m *appModel) syncTaskList() {
	prevID := ""
	if it, ok := m.taskList.SelectedItem().(taskRowItem); ok {
		prevID = it.task.ID
	}

	dragID, _ := m.reorder.Dragging()
	visible := m.visibleTasks()
	items := make([]list.Item, 0, len(visible))
	idx := 0
	for i, t := range visible {
		items = append(items, taskRowItem{task: t, grabbed: t.ID == dragID})
		if t.ID == prevID {
			idx = i
		}
	}
	m.taskList.SetItems(items)
	if len(items) > 0 {
		m.taskList.Select(idx)
	}
}

// applyServerTasks resets the ordered view to server order (discarding any
// manual order) and re-renders.
func (m *appModel) applyServerTasks(tasks []model.Task) {
	m.totalTasks = len(tasks)
	m.reorder.Sync(tasks)
	m.loaded = true
	m.loadErr = ""
	m.syncTaskList()
}

func (m *appModel) selectedTask() (model.Task, bool) {
	it, ok := m.taskList.SelectedItem().(taskRowItem)
	if !ok {
		return model.Task{}, false
	}
	return it.task, true
}

// openAdd and openEdit drive the editor state machine; closes go through
// closeEditor so the form always resets.
func (m *appModel) openAdd() {
	m.modal = modalAddTask
	m.editingTask = nil
	m.titleInput.SetValue("")
	m.descArea.SetValue("")
	m.dateInput.SetValue("")
	m.priorityIdx = indexOfPriority(model.PriorityModerate)
	m.formErr = ""
	m.focusFormField(formFocusTitle)
}

func (m *appModel) openEdit(t model.Task) {
	m.modal = modalEditTask
	task := t
	m.editingTask = &task
	m.titleInput.SetValue(t.Title)
	m.descArea.SetValue(t.Description)
	m.dateInput.SetValue(t.TodoDate)
	m.priorityIdx = indexOfPriority(t.Priority)
	m.formErr = ""
	m.focusFormField(formFocusTitle)
}

func (m *appModel) closeEditor() {
	m.modal = modalNone
	m.editingTask = nil
	m.titleInput.SetValue("")
	m.titleInput.Blur()
	m.descArea.SetValue("")
	m.descArea.Blur()
	m.dateInput.SetValue("")
	m.dateInput.Blur()
	m.formErr = ""
	m.formFocus = formFocusTitle
}

func (m *appModel) formFields() model.TaskFields {
	return model.TaskFields{
		Title:       strings.TrimSpace(m.titleInput.Value()),
		Description: strings.TrimSpace(m.descArea.Value()),
		Priority:    priorityChoices[m.priorityIdx],
		TodoDate:    strings.TrimSpace(m.dateInput.Value()),
	}
}

func (m *appModel) focusFormField(f taskFormFocus) {
	m.formFocus = f
	m.titleInput.Blur()
	m.descArea.Blur()
	m.dateInput.Blur()
	switch f {
	case formFocusTitle:
		m.titleInput.Focus()
	case formFocusDescription:
		m.descArea.Focus()
	case formFocusDate:
		m.dateInput.Focus()
	}
}

func (m *appModel) focusAuthField(f authFormFocus) {
	m.authFocus = f
	m.firstNameInput.Blur()
	m.lastNameInput.Blur()
	m.emailInput.Blur()
	m.passwordInput.Blur()
	switch f {
	case authFocusFirstName:
		m.firstNameInput.Focus()
	case authFocusLastName:
		m.lastNameInput.Focus()
	case authFocusEmail:
		m.emailInput.Focus()
	case authFocusPassword:
		m.passwordInput.Focus()
	}
}

func (m *appModel) focusAccountField(f accountFormFocus) {
	m.accFocus = f
	for _, in := range []*textinput.Model{&m.accFirst, &m.accLast, &m.accEmail, &m.accAddress, &m.accContact, &m.accBirthday, &m.accImagePath} {
		in.Blur()
	}
	switch f {
	case accountFocusFirstName:
		m.accFirst.Focus()
	case accountFocusLastName:
		m.accLast.Focus()
	case accountFocusEmail:
		m.accEmail.Focus()
	case accountFocusAddress:
		m.accAddress.Focus()
	case accountFocusContact:
		m.accContact.Focus()
	case accountFocusBirthday:
		m.accBirthday.Focus()
	case accountFocusImage:
		m.accImagePath.Focus()
	}
}

func (m *appModel) fillAccountForm(p model.UserProfile) {
	prof := p
	m.profile = &prof
	m.accFirst.SetValue(p.FirstName)
	m.accLast.SetValue(p.LastName)
	m.accEmail.SetValue(p.Email)
	m.accAddress.SetValue(p.Address)
	m.accContact.SetValue(p.ContactNumber)
	if p.Birthday != nil {
		m.accBirthday.SetValue(*p.Birthday)
	} else {
		m.accBirthday.SetValue("")
	}
	m.accImagePath.SetValue("")
}

func indexOfPriority(p model.Priority) int {
	for i, c := range priorityChoices {
		if c == p {
			return i
		}
	}
	// Unknown priorities land on moderate rather than crash.
	return 1
}

// resetSession drops the credential and returns to the login view; used on
// logout and when the backend reports an expired token. The shared session is
// swapped, never written in place: in-flight request goroutines still read
// the old value.
func (m *appModel) resetSession(ctx context.Context) {
	_ = m.deps.SessionStore.Clear(ctx)
	m.deps.Session = &session.Session{}
	m.deps.Client.SetSession(m.deps.Session)
	m.view = viewLogin
	m.loaded = false
	m.passwordInput.SetValue("")
	m.focusAuthField(authFocusEmail)
}
