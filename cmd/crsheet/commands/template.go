package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tsawler/crsheet/cmd/crsheet/ui"
	"github.com/tsawler/crsheet/format"
	"github.com/tsawler/crsheet/report"
)

func newTemplateCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Manage the CRS template",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a blank CRS template (default: the configured template path)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfg.Template
			if len(args) == 1 {
				path = args[0]
			}
			if format.Detect(path) != format.XLSX {
				return fmt.Errorf("template %s must have an .xlsx extension", path)
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := report.NewTemplate(path); err != nil {
				return err
			}
			ui.Success("Wrote template %s", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	cmd.AddCommand(initCmd)
	return cmd
}
