package domain

import "strings"

// Message is the uniform view of a single Telegram update. Every field is
// optional; which ones are set depends on the update kind that produced it.
type Message struct {
	ChatID    int64
	MessageID int64
	UserID    int64
	Username  string
	FirstName string
	LastName  string
	Text      string

	// At most one media field is set per message.
	Photo    string
	Video    string
	Voice    string
	Document string

	// CallbackData is set only for callback-query updates, never together
	// with Text.
	CallbackData string
	CallbackID   string
}

// FullName returns the user's display name, falling back to the username
// and then to "Unknown".
func (m Message) FullName() string {
	parts := make([]string, 0, 2)
	if m.FirstName != "" {
		parts = append(parts, m.FirstName)
	}
	if m.LastName != "" {
		parts = append(parts, m.LastName)
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}
	if m.Username != "" {
		return m.Username
	}
	return "Unknown"
}

// HasMedia reports whether any media slot is populated.
func (m Message) HasMedia() bool {
	return m.Photo != "" || m.Video != "" || m.Voice != "" || m.Document != ""
}
