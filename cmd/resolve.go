package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"teraview/internal/media"
)

var flagJSON bool

var resolveCmd = &cobra.Command{
	Use:   "resolve <link>",
	Short: "Print the direct media URL for a share link",
	Args:  cobra.ExactArgs(1),
	RunE:  resolveRun,
}

func init() {
	resolveCmd.Flags().BoolVarP(&flagJSON, "json", "j", false, "Output link, url and source field as JSON")
}

func resolveRun(cmd *cobra.Command, args []string) error {
	v, err := newViewer(true)
	if err != nil {
		return err
	}
	defer v.Close()

	link := media.Link(args[0])
	direct, err := v.Resolve(cmd.Context(), link)
	if err != nil {
		return explain("resolve", err)
	}

	if flagJSON {
		out := map[string]string{
			"link":  link.String(),
			"url":   direct.URL,
			"field": direct.Field.String(),
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Println(direct.URL)
	return nil
}
