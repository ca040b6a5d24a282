// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"teraview/internal/config"
	"teraview/internal/download"
	"teraview/internal/httputil"
	"teraview/internal/logging"
	"teraview/internal/player"
	"teraview/internal/terabox"
	"teraview/internal/ui"
	"teraview/internal/viewer"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags
var (
	flagEndpoint string
	flagPlayer   string
	flagDebug    bool
)

// cfg holds the loaded configuration (merged: defaults < config file < flags).
var cfg *config.Config

var logger = zap.NewNop()

var rootCmd = &cobra.Command{
	Use:   "teraview [link]",
	Short: "Download and watch TeraBox shares from the terminal",
	Long: `teraview resolves TeraBox share links to direct media URLs.
Play them with mpv/vlc, save them to disk, or serve a small web page that does both.
Without arguments on a terminal it opens an interactive interface.`,
	Args:              cobra.MaximumNArgs(1),
	PersistentPreRunE: loadConfig,
	PersistentPostRun: func(*cobra.Command, []string) { logger.Sync() },
	RunE:              rootRun,
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagEndpoint, "endpoint", "", "Resolution endpoint URL")
	rootCmd.PersistentFlags().StringVar(&flagPlayer, "player", "", "Media player: mpv | vlc | iina | celluloid")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "x", false, "Debug logging to stderr")

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads and merges configuration: defaults < config file < CLI flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// CLI flags override config file values
	if flagEndpoint != "" {
		cfg.Endpoint = flagEndpoint
	}
	if flagPlayer != "" {
		cfg.Player = flagPlayer
	}
	if flagDebug {
		cfg.Debug = true
	}

	// Re-validate after flag overrides
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err = logging.New(cfg.Debug, "")
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	return nil
}

// rootRun plays a link given as argument, or opens the interactive interface.
func rootRun(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		return viewRun(cmd, args)
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("interactive mode needs a terminal; try 'teraview resolve <link>'")
	}

	// The interface owns the terminal, so logs go to a file.
	path, err := config.LogPath()
	if err != nil {
		return err
	}
	if logger, err = logging.New(cfg.Debug, path); err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}

	v, err := newViewer(false)
	if err != nil {
		return err
	}
	defer v.Close()

	return ui.Run(cmd.Context(), v, cfg.Filename, cfg.NotifyDuration())
}

// newViewer wires the resolver, player and downloader from cfg. With
// attach set the player shares this process's stdio.
func newViewer(attach bool) (*viewer.Viewer, error) {
	dir, err := cfg.ExpandDownloadDir()
	if err != nil {
		return nil, fmt.Errorf("resolving download dir: %w", err)
	}

	launcher := &player.Launcher{Player: player.New(cfg.Player)}
	if attach {
		launcher.Stdout = os.Stdout
		launcher.Stderr = os.Stderr
		launcher.Stdin = os.Stdin
	}

	return viewer.New(viewer.Options{
		Resolver:    newResolver(),
		Launcher:    launcher,
		Fetcher:     download.New(httputil.NewStreamClient(), logger),
		DownloadDir: dir,
		Filename:    cfg.Filename,
		Logger:      logger,
	}), nil
}

func newResolver() *terabox.Resolver {
	return terabox.NewResolver(cfg.Endpoint, httputil.NewClient(), logger)
}

// explain reduces an action error to the message shown to people and
// keeps the details in the debug log.
func explain(action string, err error) error {
	logger.Debug(action, zap.Error(err))
	return fmt.Errorf("%s: %s", action, viewer.Explain(err))
}
