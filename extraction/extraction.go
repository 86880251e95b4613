package extraction

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/tsawler/crsheet/fields"
	"github.com/tsawler/crsheet/report"
	"github.com/tsawler/crsheet/scan"
)

// Outcome distinguishes a run that found comments from one that did not.
type Outcome int

const (
	// OutcomeComments means at least one FreeText comment was written.
	OutcomeComments Outcome = iota
	// OutcomeNoComments means the document had no FreeText annotations.
	// The header fields and source name are still written.
	OutcomeNoComments
)

// String returns a short label for logs and CLI output.
func (o Outcome) String() string {
	if o == OutcomeNoComments {
		return "no comments"
	}
	return "comments"
}

// Result describes a successful run.
type Result struct {
	Outcome  Outcome
	Comments int
	// Path is the workbook that was written.
	Path     string
	Fields   fields.HeaderFields
	BaseName string
}

// Config configures an Orchestrator.
type Config struct {
	// Template is the path of the CRS workbook copied for every run.
	Template string
	// TextSource optionally replaces the built-in body text extraction.
	TextSource scan.TextSource
	Logger     *zerolog.Logger
}

// Orchestrator runs extractions against one template.
type Orchestrator struct {
	template string
	scanner  *scan.Scanner
	report   *report.Populator
	log      zerolog.Logger
}

// New checks that the template exists and returns an Orchestrator. A
// missing template is reported as a TemplateMissing *Error.
func New(cfg Config) (*Orchestrator, error) {
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}

	info, err := os.Stat(cfg.Template)
	if err == nil && info.IsDir() {
		err = errors.Errorf("%s is a directory", cfg.Template)
	}
	if err != nil {
		return nil, &Error{
			Kind:    TemplateMissing,
			Message: "template " + cfg.Template + " is not available",
			Err:     errors.WithStack(err),
		}
	}

	opts := []scan.Option{scan.WithLogger(log)}
	if cfg.TextSource != nil {
		opts = append(opts, scan.WithTextSource(cfg.TextSource))
	}
	return &Orchestrator{
		template: cfg.Template,
		scanner:  scan.New(opts...),
		report:   report.New(report.WithLogger(log)),
		log:      log,
	}, nil
}

// Template returns the template path.
func (o *Orchestrator) Template() string {
	return o.template
}

// Run copies the template to dst, scans src, and fills the copy. A failed
// run leaves whatever was already written at dst in place.
func (o *Orchestrator) Run(src, dst string) (*Result, error) {
	log := o.log.With().Str("source", src).Str("destination", dst).Logger()

	log.Debug().Str("phase", "copy").Msg("copying template")
	if sameFile(o.template, dst) {
		return nil, &Error{
			Kind:    TemplateCopy,
			Message: "failed to copy template",
			Err:     errors.Errorf("destination %s is the template itself", dst),
		}
	}
	if err := copyFile(o.template, dst); err != nil {
		return nil, &Error{Kind: TemplateCopy, Message: "failed to copy template", Err: errors.WithStack(err)}
	}

	log.Debug().Str("phase", "scan").Msg("scanning document")
	scanned, err := o.scanner.Scan(src)
	if err != nil {
		return nil, &Error{Kind: DocumentRead, Message: "failed to read " + filepath.Base(src), Err: errors.WithStack(err)}
	}

	hf := fields.Parse(scanned.FullText)
	base := BaseName(src)

	log.Debug().Str("phase", "populate").Int("comments", len(scanned.Comments)).Msg("writing report")
	if err := o.report.Populate(dst, hf, base, scanned.Comments); err != nil {
		return nil, &Error{Kind: ReportWrite, Message: "failed to write report", Err: errors.WithStack(err)}
	}

	res := &Result{
		Outcome:  OutcomeComments,
		Comments: len(scanned.Comments),
		Path:     dst,
		Fields:   hf,
		BaseName: base,
	}
	if res.Comments == 0 {
		res.Outcome = OutcomeNoComments
	}
	log.Info().Int("comments", res.Comments).Str("outcome", res.Outcome.String()).Msg("extraction finished")
	return res, nil
}

// BaseName is the file name of path without directory or extension.
func BaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// DefaultDestination is <dir>/<base>_comments.xlsx for a source at
// <dir>/<base>.pdf.
func DefaultDestination(src string) string {
	return filepath.Join(filepath.Dir(src), BaseName(src)+"_comments.xlsx")
}

// sameFile reports whether a and b name the same file. dst may not exist
// yet, so cleaned absolute paths are compared before the file identities.
func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA == nil && errB == nil && absA == absB {
		return true
	}
	infoA, err := os.Stat(a)
	if err != nil {
		return false
	}
	infoB, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(infoA, infoB)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
