package commands

import (
	"github.com/spf13/cobra"

	"github.com/tsawler/crsheet/cmd/crsheet/ui"
	"github.com/tsawler/crsheet/sample"
)

func newSampleCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sample <pdf>",
		Short: "Write an annotated review PDF to try the other commands on",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			review := sample.Default()
			if err := sample.Write(args[0], review); err != nil {
				return err
			}
			a.log.Debug().Str("destination", args[0]).Int("comments", len(review.Notes)).Msg("sample written")
			ui.Success("Wrote %s with %d comments", args[0], len(review.Notes))
			return nil
		},
	}
}
