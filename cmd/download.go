package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"teraview/internal/download"
	"teraview/internal/media"
)

var (
	flagOutput string
	flagDir    string
)

var downloadCmd = &cobra.Command{
	Use:   "download <link>",
	Short: "Save the media behind a share link",
	Args:  cobra.ExactArgs(1),
	RunE:  downloadRun,
}

func init() {
	downloadCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "File name (default from config)")
	downloadCmd.Flags().StringVarP(&flagDir, "dir", "d", "", "Download directory (default from config)")
}

func downloadRun(cmd *cobra.Command, args []string) error {
	if flagDir != "" {
		cfg.DownloadDir = flagDir
	}
	v, err := newViewer(true)
	if err != nil {
		return err
	}
	defer v.Close()

	path, err := v.Download(cmd.Context(), media.Link(args[0]), flagOutput, progressBar())
	if err != nil {
		return explain("download", err)
	}
	fmt.Fprintf(os.Stderr, "\nDownloaded: %s\n", path)
	return nil
}

// progressBar draws download progress on stderr when it is a terminal.
func progressBar() download.ProgressFunc {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return nil
	}
	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(40))
	last := -1
	return func(written, total int64) {
		if total <= 0 {
			return
		}
		pct := int(written * 100 / total)
		if pct == last {
			return
		}
		last = pct
		fmt.Fprintf(os.Stderr, "\r%s", bar.ViewAs(float64(written)/float64(total)))
	}
}
