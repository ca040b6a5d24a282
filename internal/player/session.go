package player

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"
)

// stopGrace is how long a player gets to exit after an interrupt before it is killed.
const stopGrace = 2 * time.Second

// Session is a running playback.
type Session interface {
	// Stop ends playback and waits for the player to exit.
	Stop() error

	// Wait blocks until the player exits on its own or is stopped.
	Wait() error

	// Done is closed once the player has exited.
	Done() <-chan struct{}
}

// Process is a Session backed by an OS process.
type Process struct {
	name string
	cmd  *exec.Cmd
	done chan struct{}
	err  error

	stopOnce sync.Once
	stopErr  error
}

func start(name string, cmd *exec.Cmd) (*Process, error) {
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", name, err)
	}

	p := &Process{name: name, cmd: cmd, done: make(chan struct{})}
	go func() {
		err := cmd.Wait()
		// Players exit non-zero when the user closes them, which is normal.
		var exitErr *exec.ExitError
		if err != nil && !errors.As(err, &exitErr) {
			p.err = fmt.Errorf("running %s: %w", name, err)
		}
		close(p.done)
	}()
	return p, nil
}

func (p *Process) Done() <-chan struct{} { return p.done }

func (p *Process) Wait() error {
	<-p.done
	return p.err
}

// Stop interrupts the player, killing it if it has not exited after stopGrace.
// Only the first call does the work; later calls wait and report its error.
func (p *Process) Stop() error {
	p.stopOnce.Do(func() {
		select {
		case <-p.done:
			return
		default:
		}

		if err := p.cmd.Process.Signal(os.Interrupt); err != nil {
			p.stopErr = p.kill()
			if p.stopErr != nil {
				return
			}
		}

		select {
		case <-p.done:
		case <-time.After(stopGrace):
			p.stopErr = p.kill()
		}
	})
	if p.stopErr != nil {
		return p.stopErr
	}
	<-p.done
	return nil
}

// kill ends the process. A process that already exited is not an error.
func (p *Process) kill() error {
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("killing %s: %w", p.name, err)
	}
	return nil
}
