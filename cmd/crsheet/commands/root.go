package commands

import (
	"errors"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tsawler/crsheet/cmd/crsheet/ui"
	"github.com/tsawler/crsheet/config"
	"github.com/tsawler/crsheet/extraction"
	"github.com/tsawler/crsheet/internal/logging"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Exit codes.
const (
	ExitOK              = 0
	ExitOther           = 1
	ExitTemplateMissing = 2
	ExitTemplateCopy    = 3
	ExitDocumentRead    = 4
	ExitReportWrite     = 5
)

// app is the state shared by the subcommands of one invocation.
type app struct {
	cfgFile string
	verbose bool
	noColor bool

	v        *viper.Viper
	cfg      *config.Config
	log      zerolog.Logger
	closeLog func() error
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New(), log: zerolog.Nop(), closeLog: func() error { return nil }}

	cmd := &cobra.Command{
		Use:   "crsheet",
		Short: "Collect PDF review comments into a CRS workbook",
		Long: `crsheet reads the FreeText comments a reviewer left on a PDF and writes them,
one row per comment, into a copy of a comment resolution sheet (CRS) template.
The client name, project description, project number and purchase order
reference are picked out of the document's text and written into the sheet's
header block.`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  a.init,
		PersistentPostRunE: func(*cobra.Command, []string) error { return a.closeLog() },
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file (default: ./crsheet.yaml or ~/.config/crsheet/crsheet.yaml)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVar(&a.noColor, "no-color", false, "disable colored output")
	flags.StringP("template", "t", "", "CRS template workbook")
	flags.String("text-engine", "", "body text engine: native or mupdf")
	flags.String("log-format", "", "log format: console or json")
	_ = a.v.BindPFlag("template", flags.Lookup("template"))
	_ = a.v.BindPFlag("text_engine", flags.Lookup("text-engine"))
	_ = a.v.BindPFlag("log.format", flags.Lookup("log-format"))

	cmd.AddCommand(
		newExtractCommand(a),
		newInspectCommand(a),
		newTemplateCommand(a),
		newSampleCommand(a),
		newConfigCommand(a),
		newVersionCommand(),
	)
	return cmd
}

func (a *app) init(cmd *cobra.Command, _ []string) error {
	ui.InitUI(a.noColor, a.verbose)

	cfg, err := config.LoadWith(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	if a.verbose {
		cfg.Log.Level = "debug"
	}
	if cfg.Log.Output == "" || cfg.Log.Output == "stderr" {
		cfg.Log.Writer = ui.Err
	}

	logger, closeLog, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	a.cfg, a.log, a.closeLog = cfg, logger, closeLog
	if used := a.v.ConfigFileUsed(); used != "" {
		a.log.Debug().Str("config", used).Msg("loaded config file")
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}

// ExitCode maps an error returned by Execute to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var e *extraction.Error
	if !errors.As(err, &e) {
		return ExitOther
	}
	switch e.Kind {
	case extraction.TemplateMissing:
		return ExitTemplateMissing
	case extraction.TemplateCopy:
		return ExitTemplateCopy
	case extraction.DocumentRead:
		return ExitDocumentRead
	case extraction.ReportWrite:
		return ExitReportWrite
	default:
		return ExitOther
	}
}
