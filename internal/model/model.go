package model

import "strings"

type Priority string

const (
	PriorityExtreme  Priority = "extreme"
	PriorityModerate Priority = "moderate"
	PriorityLow      Priority = "low"
)

// ValidPriority reports whether p is one of the three wire values.
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityExtreme, PriorityModerate, PriorityLow:
		return true
	}
	return false
}

// Task is the server-owned todo resource. The id is assigned by the backend;
// the client never invents identity.
type Task struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Priority    Priority `json:"priority,omitempty"`
	TodoDate    string   `json:"todo_date,omitempty"` // YYYY-MM-DD
}

// TaskFields are the editable fields sent on create/update. The id stays out:
// create has none yet, update carries it in the URL.
type TaskFields struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Priority    Priority `json:"priority,omitempty"`
	TodoDate    string   `json:"todo_date,omitempty"`
}

type UserProfile struct {
	ID            int     `json:"id"`
	Email         string  `json:"email"`
	FirstName     string  `json:"first_name"`
	LastName      string  `json:"last_name"`
	Address       string  `json:"address"`
	ContactNumber string  `json:"contact_number"`
	Birthday      *string `json:"birthday"`
	ProfileImage  *string `json:"profile_image"`
	Bio           string  `json:"bio"`
}

// Initials returns the uppercase first letters of the profile's names,
// used for the avatar placeholder.
func (p UserProfile) Initials() string {
	var b strings.Builder
	if f := strings.TrimSpace(p.FirstName); f != "" {
		b.WriteString(strings.ToUpper(f[:1]))
	}
	if l := strings.TrimSpace(p.LastName); l != "" {
		b.WriteString(strings.ToUpper(l[:1]))
	}
	return b.String()
}

type SignupRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the bearer credential all authenticated calls attach.
type LoginResponse struct {
	Access string `json:"access"`
}
