package ui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// dismissMsg removes the notification with the given id.
type dismissMsg struct{ id int }

type notification struct {
	id   int
	text string
}

// Notifications is a list of transient error messages. Every Push adds an
// independent entry that is removed by its own timer; entries are neither
// merged nor deduplicated.
type Notifications struct {
	ttl   time.Duration
	next  int
	items []notification
}

// NewNotifications creates an empty list whose entries live for ttl.
func NewNotifications(ttl time.Duration) Notifications {
	return Notifications{ttl: ttl}
}

// Push shows text and returns the command that dismisses it after the ttl.
func (n *Notifications) Push(text string) tea.Cmd {
	id := n.next
	n.next++
	n.items = append(n.items, notification{id: id, text: text})
	return tea.Tick(n.ttl, func(time.Time) tea.Msg {
		return dismissMsg{id: id}
	})
}

// Update handles dismissals. It reports whether msg was consumed.
func (n *Notifications) Update(msg tea.Msg) bool {
	d, ok := msg.(dismissMsg)
	if !ok {
		return false
	}
	for i, item := range n.items {
		if item.id == d.id {
			n.items = append(n.items[:i], n.items[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of visible notifications.
func (n Notifications) Len() int { return len(n.items) }

// Texts returns the visible notification texts, oldest first.
func (n Notifications) Texts() []string {
	texts := make([]string, len(n.items))
	for i, item := range n.items {
		texts[i] = item.text
	}
	return texts
}

func (n Notifications) View() string {
	lines := make([]string, len(n.items))
	for i, item := range n.items {
		lines[i] = errorStyle.Render(item.text)
	}
	return strings.Join(lines, "\n")
}
