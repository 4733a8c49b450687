package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// modalBodyWidth is the usable content width inside a modal box for a given
// terminal width.
func modalBodyWidth(width int) int {
	w := width - 10
	if w > 64 {
		w = 64
	}
	if w < 24 {
		w = 24
	}
	return w
}

// renderModalBox draws a titled surface for modal content, centered in the
// terminal. No borders: some terminals show background artifacts when
// nesting bordered components inside a surface with a background color.
func renderModalBox(width, height int, title, content string) string {
	bodyW := modalBodyWidth(width)

	titleBar := lipgloss.NewStyle().
		Bold(true).
		Width(bodyW).
		Foreground(colorSelectedFg).
		Background(colorControlBg).
		Padding(0, 1).
		Render(title)

	body := lipgloss.NewStyle().
		Width(bodyW).
		Background(colorSurfaceBg).
		Foreground(colorSurfaceFg).
		Padding(1, 1).
		Render(content)

	box := lipgloss.JoinVertical(lipgloss.Left, titleBar, body)
	if width <= 0 || height <= 0 {
		return box
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

func renderConfirmModal(width, height int, title, body, confirmLabel, cancelLabel string, focus confirmModalFocus) string {
	btnBase := lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(colorSurfaceFg).
		Background(colorControlBg)
	btnActive := btnBase.
		Foreground(colorSelectedFg).
		Background(colorSelectedBg).
		Bold(true)

	confirm := btnBase.Render(confirmLabel)
	cancel := btnBase.Render(cancelLabel)
	if focus == confirmFocusConfirm {
		confirm = btnActive.Render(confirmLabel)
	}
	if focus == confirmFocusCancel {
		cancel = btnActive.Render(cancelLabel)
	}

	sep := lipgloss.NewStyle().Background(colorSurfaceBg).Render(" ")
	controls := lipgloss.JoinHorizontal(lipgloss.Top, cancel, sep, confirm)

	help := styleMuted().Render("tab: focus   enter: select   y: confirm   esc: cancel")

	content := strings.Join([]string{
		body,
		"",
		controls,
		"",
		help,
	}, "\n")
	return renderModalBox(width, height, title, content)
}
