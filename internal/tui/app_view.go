package tui

import (
	"fmt"
	"strings"

	"pioneer-cli/internal/notify"

	"github.com/charmbracelet/lipgloss"
)

func (m appModel) View() string {
	switch m.view {
	case viewLogin:
		return m.viewAuthPage(false)
	case viewSignup:
		return m.viewAuthPage(true)
	case viewAccount:
		return m.viewAccountPage()
	}

	if m.confirmTask != nil {
		body := fmt.Sprintf("Delete %q?\nThis cannot be undone.", m.confirmTask.Title)
		return renderConfirmModal(m.width, m.height, "Delete Task", body, "Delete", "Cancel", m.confirmFocus)
	}
	if m.modal != modalNone {
		return m.viewEditor()
	}
	return m.viewTaskPage()
}

func (m appModel) viewTaskPage() string {
	var b strings.Builder

	header := styleTitle().Render("Pioneer")
	if m.deps.Session.Email != "" {
		header += "  " + styleMuted().Render(m.deps.Session.Email)
	}
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(m.viewFilterBar())
	b.WriteString("\n\n")

	switch {
	case m.loadErr != "":
		b.WriteString(lipgloss.NewStyle().Foreground(colorError).Render(m.loadErr))
		b.WriteString("\n" + styleMuted().Render("r: retry"))
	case !m.loaded:
		b.WriteString(m.spinner.View() + " Loading tasks...")
	case m.totalTasks == 0:
		b.WriteString(styleMuted().Render("No tasks yet. Press a to add one."))
	case len(m.taskList.Items()) == 0:
		b.WriteString(styleMuted().Render("No tasks found"))
	default:
		b.WriteString(m.taskList.View())
	}

	b.WriteString("\n\n")
	b.WriteString(m.viewStatusBar())
	b.WriteString("\n")
	help := "a: add  enter: edit  d: delete  g: grab  /: search  1-4: due filters  p: account  L: logout  q: quit"
	if _, dragging := m.reorder.Dragging(); dragging {
		help = "enter: drop here  esc: cancel move"
	}
	b.WriteString(styleMuted().Render(help))
	return b.String()
}

func (m appModel) viewFilterBar() string {
	chip := func(label string, active bool) string {
		st := styleMuted().Padding(0, 1)
		if active {
			st = lipgloss.NewStyle().
				Foreground(colorSelectedFg).
				Background(colorSelectedBg).
				Bold(true).
				Padding(0, 1)
		}
		return st.Render(label)
	}

	parts := []string{
		chip("1 Today", m.buckets.Today),
		chip("2 Next 5", m.buckets.Next5Days),
		chip("3 Next 10", m.buckets.Next10Days),
		chip("4 Next 30", m.buckets.Next30Days),
	}
	bar := strings.Join(parts, " ")

	if m.searching || m.search.Value() != "" {
		bar += "   " + m.search.View()
	}
	return bar
}

func (m appModel) viewStatusBar() string {
	if m.lastNt == nil {
		return ""
	}
	nt := *m.lastNt
	switch nt.Level {
	case notify.LevelLoading:
		return m.spinner.View() + " " + nt.Message
	case notify.LevelError:
		return lipgloss.NewStyle().Foreground(colorError).Render(nt.Message)
	case notify.LevelSuccess:
		return lipgloss.NewStyle().Foreground(colorSuccess).Render(nt.Message)
	default:
		return nt.Message
	}
}

func (m appModel) viewEditor() string {
	title := "Add Task"
	if m.modal == modalEditTask {
		title = "Edit Task"
	}
	bodyW := modalBodyWidth(m.width)

	var b strings.Builder
	b.WriteString(formLabel("Title", m.formFocus == formFocusTitle))
	b.WriteString("\n" + m.titleInput.View() + "\n\n")

	b.WriteString(formLabel("Description", m.formFocus == formFocusDescription))
	b.WriteString("\n" + m.descArea.View() + "\n")
	if desc := strings.TrimSpace(m.descArea.Value()); desc != "" && m.formFocus != formFocusDescription {
		if preview := renderMarkdown(desc, bodyW-2); preview != "" {
			b.WriteString(preview + "\n")
		}
	}
	b.WriteString("\n")

	b.WriteString(formLabel("Priority", m.formFocus == formFocusPriority))
	b.WriteString("\n" + m.viewPriorityPicker() + "\n\n")

	b.WriteString(formLabel("Due date", m.formFocus == formFocusDate))
	b.WriteString("\n" + m.dateInput.View() + "\n\n")

	save := "Save"
	if m.busy {
		save = m.spinner.View() + " Saving"
	}
	b.WriteString(formButton(save, m.formFocus == formFocusSave))
	b.WriteString(" ")
	b.WriteString(formButton("Cancel", m.formFocus == formFocusCancel))

	if m.formErr != "" {
		b.WriteString("\n\n" + lipgloss.NewStyle().Foreground(colorError).Render(m.formErr))
	}
	b.WriteString("\n\n" + styleMuted().Render("tab: next field  ctrl+s: save  esc: cancel"))

	return renderModalBox(m.width, m.height, title, b.String())
}

func (m appModel) viewPriorityPicker() string {
	parts := make([]string, 0, len(priorityChoices))
	for i, p := range priorityChoices {
		label := string(p)
		if i == m.priorityIdx {
			st := lipgloss.NewStyle().
				Foreground(priorityColor(label)).
				Bold(true)
			parts = append(parts, st.Render("● "+label))
		} else {
			parts = append(parts, styleMuted().Render("○ "+label))
		}
	}
	return strings.Join(parts, "  ")
}

func (m appModel) viewAuthPage(signup bool) string {
	title := "Sign In"
	toggleHint := "ctrl+n: create an account"
	if signup {
		title = "Create Account"
		toggleHint = "ctrl+n: back to sign in"
	}

	var b strings.Builder
	if signup {
		b.WriteString(formLabel("First name", m.authFocus == authFocusFirstName))
		b.WriteString("\n" + m.firstNameInput.View() + "\n\n")
		b.WriteString(formLabel("Last name", m.authFocus == authFocusLastName))
		b.WriteString("\n" + m.lastNameInput.View() + "\n\n")
	}
	b.WriteString(formLabel("Email", m.authFocus == authFocusEmail))
	b.WriteString("\n" + m.emailInput.View() + "\n\n")
	b.WriteString(formLabel("Password", m.authFocus == authFocusPassword))
	b.WriteString("\n" + m.passwordInput.View() + "\n\n")

	if !signup {
		check := "[ ]"
		if m.rememberMe {
			check = "[x]"
		}
		remember := check + " Remember me"
		if m.authFocus == authFocusRemember {
			remember = lipgloss.NewStyle().Bold(true).Render(remember)
		}
		b.WriteString(remember + "\n\n")
	}

	submit := title
	if m.authBusy {
		submit = m.spinner.View() + " Please wait"
	}
	b.WriteString(formButton(submit, m.authFocus == authFocusSubmit))

	b.WriteString("\n\n" + m.viewStatusBar())
	b.WriteString("\n" + styleMuted().Render("tab: next field  enter: submit  "+toggleHint))

	return renderModalBox(m.width, m.height, title, b.String())
}

func (m appModel) viewAccountPage() string {
	if m.accLoadFailed {
		body := lipgloss.NewStyle().Foreground(colorError).Render("Could not load your profile.") +
			"\n\n" + styleMuted().Render("esc: back")
		return renderModalBox(m.width, m.height, "Account", body)
	}

	var b strings.Builder
	if m.profile != nil {
		b.WriteString(styleMuted().Render("Signed in as "+m.profile.Initials()) + "\n\n")
	}

	fields := []struct {
		label string
		view  string
		focus accountFormFocus
	}{
		{"First name", m.accFirst.View(), accountFocusFirstName},
		{"Last name", m.accLast.View(), accountFocusLastName},
		{"Email", m.accEmail.View(), accountFocusEmail},
		{"Address", m.accAddress.View(), accountFocusAddress},
		{"Contact number", m.accContact.View(), accountFocusContact},
		{"Birthday", m.accBirthday.View(), accountFocusBirthday},
		{"Profile image", m.accImagePath.View(), accountFocusImage},
	}
	for _, f := range fields {
		b.WriteString(formLabel(f.label, m.accFocus == f.focus))
		b.WriteString("\n" + f.view + "\n\n")
	}

	save := "Save"
	if m.accBusy {
		save = m.spinner.View() + " Saving"
	}
	b.WriteString(formButton(save, m.accFocus == accountFocusSave))
	b.WriteString(" ")
	b.WriteString(formButton("Cancel", m.accFocus == accountFocusCancel))

	b.WriteString("\n\n" + m.viewStatusBar())
	b.WriteString("\n" + styleMuted().Render("tab: next field  ctrl+s: save  esc: back"))

	return renderModalBox(m.width, m.height, "Account", b.String())
}

func formLabel(label string, focused bool) string {
	if focused {
		return lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Render(label)
	}
	return styleMuted().Render(label)
}

func formButton(label string, focused bool) string {
	st := lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(colorSurfaceFg).
		Background(colorControlBg)
	if focused {
		st = st.
			Foreground(colorSelectedFg).
			Background(colorSelectedBg).
			Bold(true)
	}
	return st.Render(label)
}
