package commands

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/tsawler/crsheet/cmd/crsheet/ui"
	"github.com/tsawler/crsheet/config"
	"github.com/tsawler/crsheet/extraction"
	"github.com/tsawler/crsheet/scan"
	"github.com/tsawler/crsheet/scan/mupdf"
)

func newExtractCommand(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "extract <pdf> [output.xlsx]",
		Short: "Write a PDF's FreeText comments into a copy of the CRS template",
		Long: `Copy the CRS template to the output path, then fill it with the PDF's header
fields, its file name, and one row per FreeText comment.

The output defaults to <name>_comments.xlsx next to the PDF.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := args[0]
			dst := output
			if len(args) == 2 {
				dst = args[1]
			}
			if dst == "" {
				dst = extraction.DefaultDestination(src)
			}
			return a.runExtract(src, dst)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output workbook (default <pdf name>_comments.xlsx)")
	cmd.Flags().Bool("open", false, "open the workbook after a run that found comments")
	_ = a.v.BindPFlag("open", cmd.Flags().Lookup("open"))
	return cmd
}

func (a *app) runExtract(src, dst string) error {
	cfg := extraction.Config{Template: a.cfg.Template, Logger: &a.log}
	if a.cfg.TextEngine == config.EngineMuPDF {
		cfg.TextSource = textSource()
	}

	o, err := extraction.New(cfg)
	if err != nil {
		return err
	}

	if ui.Verbose() {
		ui.Info("Template: %s", o.Template())
		ui.Info("Source:   %s", src)
		ui.Info("Output:   %s", dst)
	}

	s := ui.NewSpinner("Extracting comments...")
	s.Start()
	res, err := o.Run(src, dst)
	s.Stop()
	if err != nil {
		a.log.Error().Stack().Err(err).Str("source", src).Msg("extraction failed")
		return err
	}

	if res.Outcome == extraction.OutcomeNoComments {
		ui.Warning("No FreeText comments found in %s", src)
		ui.Info("Header fields were written to %s", res.Path)
		return nil
	}

	ui.Success("Extracted %d comments to %s", res.Comments, res.Path)
	if a.cfg.Open {
		if err := openFile(res.Path); err != nil {
			ui.Warning("Could not open %s: %v", res.Path, err)
		}
	}
	return nil
}

func textSource() scan.TextSource {
	return mupdf.New()
}

// openFile hands path to the desktop's default application.
func openFile(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", cmd.Path, err)
	}
	return cmd.Process.Release()
}
