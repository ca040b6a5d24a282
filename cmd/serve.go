package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"teraview/internal/web"
)

var flagListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the download and view page over HTTP",
	Args:  cobra.NoArgs,
	RunE:  serveRun,
}

func init() {
	serveCmd.Flags().StringVar(&flagListen, "listen", "", "Listen address (default from config)")
}

func serveRun(cmd *cobra.Command, args []string) error {
	if flagListen != "" {
		cfg.Listen = flagListen
	}

	resolver := newResolver()
	logger.Info("resolving through endpoint", zap.String("endpoint", resolver.Endpoint()))

	s := web.NewServer(web.Options{
		Resolver:  resolver,
		Filename:  cfg.Filename,
		NotifyFor: cfg.NotifyDuration(),
		Logger:    logger,
	})
	return s.Run(cmd.Context(), cfg.Listen)
}
