// Package player launches external media players on resolved direct links.
// All player invocations use exec.Command with explicit argument slices,
// so links are never interpreted by a shell.
package player

import (
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Player describes how to invoke a media player binary.
type Player interface {
	// Name returns the player binary name.
	Name() string

	// Available checks if the player binary exists in PATH.
	Available() bool

	// Args returns the command-line arguments that play url with the given title.
	Args(url, title string) []string
}

// New creates a player by name. Unknown names fall back to mpv.
func New(name string) Player {
	switch strings.ToLower(name) {
	case "vlc":
		return &VLC{}
	case "iina", "celluloid":
		return &MPVCompatible{name: strings.ToLower(name)}
	default:
		return &MPV{}
	}
}

func lookPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// Launcher starts player processes with fixed stdio wiring.
type Launcher struct {
	Player Player
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader
}

// Launch starts the player on url without waiting for it to exit.
func (l *Launcher) Launch(url, title string) (Session, error) {
	if !l.Player.Available() {
		return nil, fmt.Errorf("player %q not found in PATH", l.Player.Name())
	}

	cmd := exec.Command(l.Player.Name(), l.Player.Args(url, title)...)
	cmd.Stdout = l.Stdout
	cmd.Stderr = l.Stderr
	cmd.Stdin = l.Stdin

	p, err := start(l.Player.Name(), cmd)
	if err != nil {
		return nil, err
	}
	return p, nil
}
