// Package ui implements the interactive terminal interface: a link input
// with view and download actions, playback status and transient errors.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"teraview/internal/download"
	"teraview/internal/media"
	"teraview/internal/viewer"
)

// Actions is the part of *viewer.Viewer the interface drives.
type Actions interface {
	View(ctx context.Context, link media.Link) <-chan viewer.Result
	Download(ctx context.Context, link media.Link, filename string, progress download.ProgressFunc) (string, error)
	Stop() error
}

type viewResultMsg struct {
	link media.Link
	res  viewer.Result
}

type playbackEndedMsg struct {
	pb *viewer.Playback
}

// progressMsg and downloadDoneMsg carry the id of the download they belong
// to so messages from a finished download are dropped.
type progressMsg struct {
	id             int
	written, total int64
}

type downloadDoneMsg struct {
	id   int
	path string
	err  error
}

// Model is the bubbletea model for the interactive interface.
type Model struct {
	ctx      context.Context
	actions  Actions
	filename string

	input    textinput.Model
	progress progress.Model
	help     help.Model
	keys     keyMap
	notes    Notifications

	playing     *viewer.Playback
	resolving   int
	downloading bool
	downloadID  int
	percent     float64
	progressCh  chan progressMsg
	status      string
}

// New creates the model. notifyFor is how long error notifications stay up.
func New(ctx context.Context, actions Actions, filename string, notifyFor time.Duration) Model {
	input := textinput.New()
	input.Placeholder = "Enter TeraBox URL"
	input.Prompt = "› "
	input.CharLimit = 2048
	input.Width = 60
	input.Focus()

	return Model{
		ctx:      ctx,
		actions:  actions,
		filename: filename,
		input:    input,
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		help:     help.New(),
		keys:     newKeyMap(),
		notes:    NewNotifications(notifyFor),
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.notes.Update(msg) {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.quit):
			// The viewer logs stop failures; there is no screen left to show them on.
			_ = m.actions.Stop()
			return m, tea.Quit
		case key.Matches(msg, m.keys.view):
			return m.startView()
		case key.Matches(msg, m.keys.download):
			return m.startDownload()
		case key.Matches(msg, m.keys.stop):
			if err := m.actions.Stop(); err != nil {
				return m, m.notes.Push(viewer.Explain(err))
			}
			m.playing = nil
			m.status = "Playback stopped"
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.input.Width = max(20, msg.Width-6)
		m.progress.Width = max(20, msg.Width-10)
		m.help.Width = msg.Width
		return m, nil

	case viewResultMsg:
		m.resolving--
		if msg.res.Err != nil {
			return m, m.notes.Push("Failed to load video: " + viewer.Explain(msg.res.Err))
		}
		m.playing = msg.res.Playback
		m.status = ""
		return m, waitPlayback(msg.res.Playback)

	case playbackEndedMsg:
		if m.playing == msg.pb {
			m.playing = nil
			m.status = "Playback finished"
		}
		return m, nil

	case progressMsg:
		if !m.downloading || msg.id != m.downloadID {
			return m, nil
		}
		if msg.total > 0 {
			m.percent = float64(msg.written) / float64(msg.total)
		}
		m.status = fmt.Sprintf("Downloading… %s", formatBytes(msg.written))
		return m, waitProgress(m.progressCh)

	case downloadDoneMsg:
		if !m.downloading || msg.id != m.downloadID {
			return m, nil
		}
		m.downloading = false
		m.progressCh = nil
		m.percent = 0
		if msg.err != nil {
			m.status = ""
			return m, m.notes.Push("Download failed: " + viewer.Explain(msg.err))
		}
		m.status = "Saved " + msg.path
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) link() (media.Link, bool) {
	s := strings.TrimSpace(m.input.Value())
	return media.Link(s), s != ""
}

func (m Model) startView() (tea.Model, tea.Cmd) {
	link, ok := m.link()
	if !ok {
		return m, m.notes.Push("Enter a TeraBox URL first")
	}
	m.resolving++
	ch := m.actions.View(m.ctx, link)
	return m, func() tea.Msg {
		return viewResultMsg{link: link, res: <-ch}
	}
}

func (m Model) startDownload() (tea.Model, tea.Cmd) {
	link, ok := m.link()
	if !ok {
		return m, m.notes.Push("Enter a TeraBox URL first")
	}
	if m.downloading {
		return m, m.notes.Push("A download is already running")
	}

	m.downloading = true
	m.downloadID++
	m.percent = 0
	m.status = "Resolving…"
	ch := make(chan progressMsg, 1)
	m.progressCh = ch

	id, ctx, actions, filename := m.downloadID, m.ctx, m.actions, m.filename
	run := func() tea.Msg {
		path, err := actions.Download(ctx, link, filename, func(written, total int64) {
			// Drop updates the interface has not caught up with.
			select {
			case ch <- progressMsg{id: id, written: written, total: total}:
			default:
			}
		})
		close(ch)
		return downloadDoneMsg{id: id, path: path, err: err}
	}
	return m, tea.Batch(run, waitProgress(ch))
}

func waitProgress(ch chan progressMsg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

func waitPlayback(pb *viewer.Playback) tea.Cmd {
	return func() tea.Msg {
		<-pb.Done()
		return playbackEndedMsg{pb: pb}
	}
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("TeraBox Video Downloader & Viewer"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if m.playing != nil {
		b.WriteString(playingStyle.Render("▶ Playing " + string(m.playing.Link)))
		b.WriteString("\n")
	}
	if m.resolving > 0 {
		b.WriteString(statusStyle.Render("Resolving…"))
		b.WriteString("\n")
	}
	if m.downloading {
		b.WriteString(m.progress.ViewAs(m.percent))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}
	if m.notes.Len() > 0 {
		b.WriteString(m.notes.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
