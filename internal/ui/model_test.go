package ui

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"teraview/internal/download"
	"teraview/internal/media"
	"teraview/internal/player"
	"teraview/internal/terabox"
	"teraview/internal/viewer"
)

type stubResolver struct{}

func (stubResolver) Resolve(ctx context.Context, link media.Link) (media.Direct, error) {
	if !terabox.IsValidLink(string(link)) {
		return media.Direct{}, &terabox.InvalidInputError{Link: link}
	}
	return media.Direct{URL: "https://cdn.example.com/v.mp4", Field: media.FieldDirectLink}, nil
}

type stubSession struct {
	done chan struct{}
	once sync.Once
}

func (s *stubSession) Stop() error {
	s.once.Do(func() { close(s.done) })
	return nil
}

func (s *stubSession) Wait() error {
	<-s.done
	return nil
}

func (s *stubSession) Done() <-chan struct{} { return s.done }

type stubLauncher struct {
	mu       sync.Mutex
	sessions []*stubSession
}

func (l *stubLauncher) Launch(url, title string) (player.Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := &stubSession{done: make(chan struct{})}
	l.sessions = append(l.sessions, s)
	return s, nil
}

type stubFetcher struct{}

func (stubFetcher) Download(ctx context.Context, rawURL, dir, filename string, progress download.ProgressFunc) (string, error) {
	progress(50, 100)
	progress(100, 100)
	return filepath.Join(dir, filename), nil
}

func newTestModel(t *testing.T) (Model, *viewer.Viewer, *stubLauncher) {
	t.Helper()
	l := &stubLauncher{}
	v := viewer.New(viewer.Options{
		Resolver:    stubResolver{},
		Launcher:    l,
		Fetcher:     stubFetcher{},
		DownloadDir: "/downloads",
	})
	t.Cleanup(func() { v.Close() })
	return New(context.Background(), v, "terabox-video.mp4", time.Second), v, l
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestViewEmptyInput(t *testing.T) {
	m, _, _ := newTestModel(t)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a dismissal command")
	}
	if got := m.notes.Texts(); len(got) != 1 || got[0] != "Enter a TeraBox URL first" {
		t.Errorf("notifications = %v", got)
	}
}

func TestViewInvalidLinkNotifies(t *testing.T) {
	m, _, l := newTestModel(t)
	m.input.SetValue("http://example.com/file")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.resolving != 1 {
		t.Errorf("resolving = %d, want 1", m.resolving)
	}
	m, _ = update(t, m, cmd())

	if got := m.notes.Texts(); len(got) != 1 || got[0] != "Failed to load video: Invalid TeraBox URL" {
		t.Errorf("notifications = %v", got)
	}
	if m.playing != nil {
		t.Error("nothing should be playing")
	}
	if len(l.sessions) != 0 {
		t.Error("no player should be launched")
	}
	if !strings.Contains(m.View(), "Failed to load video") {
		t.Error("View() should render the notification")
	}
}

func TestViewPlaysAndStops(t *testing.T) {
	m, v, l := newTestModel(t)
	m.input.SetValue("  https://www.terabox.com/s/abc  ")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(t, m, cmd())

	if m.playing == nil {
		t.Fatal("expected a playback")
	}
	if m.playing.Link != "https://www.terabox.com/s/abc" {
		t.Errorf("link = %q, input should be trimmed", m.playing.Link)
	}
	if v.Current() != m.playing {
		t.Error("model and viewer disagree on the current playback")
	}
	if !strings.Contains(m.View(), "Playing https://www.terabox.com/s/abc") {
		t.Error("View() should show the playing link")
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlX})
	if m.playing != nil {
		t.Error("playing should be cleared after stop")
	}
	if v.Current() != nil {
		t.Error("viewer should have no playback after stop")
	}
	select {
	case <-l.sessions[0].done:
	default:
		t.Error("session should be stopped")
	}
}

func TestPlaybackEndedIgnoresReplaced(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.input.SetValue("https://www.terabox.com/s/one")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(t, m, cmd())
	first := m.playing

	m.input.SetValue("https://www.terabox.com/s/two")
	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(t, m, cmd())
	second := m.playing

	m, _ = update(t, m, playbackEndedMsg{pb: first})
	if m.playing != second {
		t.Error("end of a replaced playback should not clear the current one")
	}
	m, _ = update(t, m, playbackEndedMsg{pb: second})
	if m.playing != nil {
		t.Error("end of the current playback should clear it")
	}
}

func TestDownload(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.input.SetValue("https://terabox.app/s/abc")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlD})
	if !m.downloading {
		t.Fatal("downloading should be set")
	}

	batch, ok := cmd().(tea.BatchMsg)
	if !ok || len(batch) != 2 {
		t.Fatalf("expected a batch of run and progress commands, got %T", cmd())
	}

	done := batch[0]()
	if msg := batch[1](); msg != nil {
		m, _ = update(t, m, msg)
	}
	m, _ = update(t, m, done)

	if m.downloading {
		t.Error("downloading should be cleared")
	}
	if m.status != "Saved /downloads/terabox-video.mp4" {
		t.Errorf("status = %q", m.status)
	}
}

func TestLateProgressKeepsSavedStatus(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.input.SetValue("https://terabox.app/s/abc")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlD})
	batch := cmd().(tea.BatchMsg)

	// The download finishes before the buffered progress update is read.
	m, _ = update(t, m, batch[0]())
	late := batch[1]()
	if _, ok := late.(progressMsg); !ok {
		t.Fatalf("expected a buffered progress message, got %T", late)
	}
	m, next := update(t, m, late)

	if m.status != "Saved /downloads/terabox-video.mp4" {
		t.Errorf("status = %q, late progress should not overwrite it", m.status)
	}
	if m.downloading {
		t.Error("downloading should stay cleared")
	}
	if next != nil {
		t.Error("late progress should not wait for more updates")
	}
}

func TestProgressFromEarlierDownloadIgnored(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.input.SetValue("https://terabox.app/s/abc")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlD})
	m, _ = update(t, m, cmd().(tea.BatchMsg)[0]())
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlD})

	m, _ = update(t, m, progressMsg{id: m.downloadID - 1, written: 10, total: 100})
	if m.percent != 0 {
		t.Errorf("percent = %v, progress of the earlier download should be ignored", m.percent)
	}
	m, _ = update(t, m, downloadDoneMsg{id: m.downloadID - 1, path: "/old"})
	if !m.downloading {
		t.Error("completion of the earlier download should not end the current one")
	}
}

func TestDownloadFailureNotifies(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.input.SetValue("not a link")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlD})
	batch := cmd().(tea.BatchMsg)
	m, _ = update(t, m, batch[0]())

	if got := m.notes.Texts(); len(got) != 1 || got[0] != "Download failed: Invalid TeraBox URL" {
		t.Errorf("notifications = %v", got)
	}
}

func TestNotificationExpires(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.notes = NewNotifications(5 * time.Millisecond)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.notes.Len() != 1 {
		t.Fatal("expected a notification")
	}
	m, _ = update(t, m, cmd())
	if m.notes.Len() != 0 {
		t.Error("notification should be gone after its tick")
	}
}

func TestQuitStopsPlayback(t *testing.T) {
	m, v, _ := newTestModel(t)
	m.input.SetValue("https://www.terabox.com/s/abc")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(t, m, cmd())

	_, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("esc should quit")
	}
	if v.Current() != nil {
		t.Error("quitting should stop playback")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
