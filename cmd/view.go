package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"teraview/internal/media"
)

var viewCmd = &cobra.Command{
	Use:   "view <link>",
	Short: "Play a share link and wait for the player to exit",
	Args:  cobra.ExactArgs(1),
	RunE:  viewRun,
}

func viewRun(cmd *cobra.Command, args []string) error {
	v, err := newViewer(true)
	if err != nil {
		return err
	}
	defer v.Close()

	ctx := cmd.Context()
	pb, err := v.Play(ctx, media.Link(args[0]))
	if err != nil {
		return explain("failed to load video", err)
	}
	fmt.Fprintf(os.Stderr, "Playing with %s\n", cfg.Player)

	select {
	case <-pb.Done():
	case <-ctx.Done():
		v.Stop()
	}
	return pb.Wait()
}
