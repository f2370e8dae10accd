package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X github.com/yumyai/uniref90/pkg/cli.Version=...".
var (
	Version = "0.1.0"
	Commit  = "none"
)

// NewVersionCommand returns the command to get the uniref90 version
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Return the uniref90 version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "uniref90 %s (commit %s)\n", Version, Commit)
			return nil
		},
	}
}
