package tui

import (
	"pioneer-cli/internal/api"
	"pioneer-cli/internal/model"
	"pioneer-cli/internal/mutate"
	"pioneer-cli/internal/notify"
)

type view int

const (
	viewLogin view = iota
	viewSignup
	viewTasks
	viewAccount
)

// modalKind is the task-page editor state machine: closed, adding a new task,
// or editing an existing one. Delete confirmation is tracked separately in
// confirmTask so it can sit on top of a closed editor.
type modalKind int

const (
	modalNone modalKind = iota
	modalAddTask
	modalEditTask
)

type confirmModalFocus int

const (
	confirmFocusCancel confirmModalFocus = iota
	confirmFocusConfirm
)

// taskFormFocus walks the editor fields with tab.
type taskFormFocus int

const (
	formFocusTitle taskFormFocus = iota
	formFocusDescription
	formFocusPriority
	formFocusDate
	formFocusSave
	formFocusCancel
)

// authFormFocus covers both the login and signup forms; signup uses the
// name fields, login skips them.
type authFormFocus int

const (
	authFocusFirstName authFormFocus = iota
	authFocusLastName
	authFocusEmail
	authFocusPassword
	authFocusRemember
	authFocusSubmit
)

type accountFormFocus int

const (
	accountFocusFirstName accountFormFocus = iota
	accountFocusLastName
	accountFocusEmail
	accountFocusAddress
	accountFocusContact
	accountFocusBirthday
	accountFocusImage
	accountFocusSave
	accountFocusCancel
)

// Messages produced by async commands.

type tasksLoadedMsg struct {
	tasks []model.Task
	err   error
}

type mutationDoneMsg struct {
	result mutate.Result
	err    error
}

type loginDoneMsg struct {
	access string
	email  string
	err    error
}

type signupDoneMsg struct {
	profile model.UserProfile
	err     error
}

type profileLoadedMsg struct {
	profile model.UserProfile
	err     error
}

type profileSavedMsg struct {
	profile model.UserProfile
	err     error
}

type invalidatedMsg struct {
	tag api.Tag
}

type notificationMsg struct {
	nt notify.Notification
}

type notificationExpiredMsg struct {
	id string
}
