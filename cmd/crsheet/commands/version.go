package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/tsawler/crsheet/cmd/crsheet/ui"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(ui.Out, "crsheet %s (%s %s/%s)\n", Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
			return err
		},
	}
}
