// Package viewer ties link resolution to the two user actions, downloading
// and playing, and owns the single playback slot.
package viewer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"teraview/internal/download"
	"teraview/internal/media"
	"teraview/internal/player"
)

// Resolver turns a share link into a direct media URL.
type Resolver interface {
	Resolve(ctx context.Context, link media.Link) (media.Direct, error)
}

// Launcher starts playback of a direct URL.
type Launcher interface {
	Launch(url, title string) (player.Session, error)
}

// Fetcher writes a direct URL to a local file.
type Fetcher interface {
	Download(ctx context.Context, rawURL, dir, filename string, progress download.ProgressFunc) (string, error)
}

// Options configures a Viewer.
type Options struct {
	Resolver    Resolver
	Launcher    Launcher
	Fetcher     Fetcher
	DownloadDir string
	Filename    string // used when Download is called without a name
	Logger      *zap.Logger
}

// Playback is the media currently playing for a Viewer.
type Playback struct {
	ID        uuid.UUID
	Link      media.Link
	Direct    media.Direct
	StartedAt time.Time

	session player.Session
}

// Done is closed when the player exits.
func (p *Playback) Done() <-chan struct{} { return p.session.Done() }

// Wait blocks until the player exits.
func (p *Playback) Wait() error { return p.session.Wait() }

// Result is what View delivers once resolution and launch finish.
type Result struct {
	Playback *Playback
	Err      error
}

// Viewer resolves links and acts on them. It holds at most one active
// playback; every successful Play replaces and stops the previous one.
// Independent Viewers share no state.
type Viewer struct {
	resolver Resolver
	launcher Launcher
	fetcher  Fetcher
	dir      string
	filename string
	logger   *zap.Logger

	mu      sync.Mutex
	current *Playback
}

// New creates a Viewer.
func New(opts Options) *Viewer {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	filename := opts.Filename
	if filename == "" {
		filename = media.DefaultFilename
	}
	return &Viewer{
		resolver: opts.Resolver,
		launcher: opts.Launcher,
		fetcher:  opts.Fetcher,
		dir:      opts.DownloadDir,
		filename: filename,
		logger:   logger,
	}
}

// Resolve returns the direct URL for link.
func (v *Viewer) Resolve(ctx context.Context, link media.Link) (media.Direct, error) {
	return v.resolver.Resolve(ctx, link)
}

// Download resolves link and saves the media as filename in the download
// directory. An empty filename uses the configured default.
func (v *Viewer) Download(ctx context.Context, link media.Link, filename string, progress download.ProgressFunc) (string, error) {
	direct, err := v.resolver.Resolve(ctx, link)
	if err != nil {
		return "", err
	}
	if filename == "" {
		filename = v.filename
	}

	path, err := v.fetcher.Download(ctx, direct.URL, v.dir, filename, progress)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", link, err)
	}

	v.logger.Info("download complete", zap.String("link", string(link)), zap.String("path", path))
	return path, nil
}

// DownloadOK is Download reduced to success or failure. Failures are logged.
func (v *Viewer) DownloadOK(ctx context.Context, link media.Link, filename string) bool {
	if _, err := v.Download(ctx, link, filename, nil); err != nil {
		v.logger.Error("download failed", zap.String("link", string(link)), zap.Error(err))
		return false
	}
	return true
}

// Play resolves link, starts the player and makes it the current playback.
// The previous playback, if any, is detached and stopped. When several
// calls overlap, the one whose resolution finishes last ends up current.
func (v *Viewer) Play(ctx context.Context, link media.Link) (*Playback, error) {
	direct, err := v.resolver.Resolve(ctx, link)
	if err != nil {
		return nil, err
	}

	session, err := v.launcher.Launch(direct.URL, string(link))
	if err != nil {
		return nil, fmt.Errorf("starting playback: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	pb := &Playback{
		ID:        id,
		Link:      link,
		Direct:    direct,
		StartedAt: time.Now(),
		session:   session,
	}

	v.mu.Lock()
	prev := v.current
	v.current = pb
	v.mu.Unlock()

	if prev != nil {
		v.logger.Debug("replacing playback", zap.Stringer("old", prev.ID), zap.Stringer("new", pb.ID))
		if err := prev.session.Stop(); err != nil {
			v.logger.Warn("stopping previous playback", zap.Error(err))
		}
	}

	go v.release(pb)

	v.logger.Info("playback started", zap.String("link", string(link)), zap.Stringer("id", pb.ID))
	return pb, nil
}

// release clears the slot once pb's player exits, unless pb was replaced.
func (v *Viewer) release(pb *Playback) {
	<-pb.Done()
	v.mu.Lock()
	if v.current == pb {
		v.current = nil
	}
	v.mu.Unlock()
}

// View runs Play in the background and returns immediately. Exactly one
// Result is delivered on the returned channel.
func (v *Viewer) View(ctx context.Context, link media.Link) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		pb, err := v.Play(ctx, link)
		if err != nil {
			v.logger.Debug("view failed", zap.String("link", string(link)), zap.Error(err))
		}
		ch <- Result{Playback: pb, Err: err}
	}()
	return ch
}

// Current returns the active playback, or nil.
func (v *Viewer) Current() *Playback {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Stop detaches and stops the current playback, if any.
func (v *Viewer) Stop() error {
	v.mu.Lock()
	pb := v.current
	v.current = nil
	v.mu.Unlock()

	if pb == nil {
		return nil
	}
	if err := pb.session.Stop(); err != nil {
		v.logger.Warn("stopping playback", zap.Stringer("id", pb.ID), zap.Error(err))
		return err
	}
	return nil
}

// Close stops any playback. The Viewer must not be used afterwards.
func (v *Viewer) Close() error {
	return v.Stop()
}
