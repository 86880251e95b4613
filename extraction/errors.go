package extraction

import (
	"fmt"
)

// ErrorKind classifies a failed run by the phase that failed.
type ErrorKind int

const (
	// TemplateMissing means the configured template does not exist. It is
	// reported by New, before any run.
	TemplateMissing ErrorKind = iota + 1
	// TemplateCopy means the template could not be copied to the destination.
	TemplateCopy
	// DocumentRead means the source document could not be opened or parsed.
	DocumentRead
	// ReportWrite means the copied workbook could not be filled or saved.
	ReportWrite
)

func (k ErrorKind) String() string {
	switch k {
	case TemplateMissing:
		return "template missing"
	case TemplateCopy:
		return "template copy error"
	case DocumentRead:
		return "document read error"
	case ReportWrite:
		return "report write error"
	default:
		return "unknown error"
	}
}

// Sentinels for errors.Is.
var (
	ErrTemplateMissing = &Error{Kind: TemplateMissing}
	ErrTemplateCopy    = &Error{Kind: TemplateCopy}
	ErrDocumentRead    = &Error{Kind: DocumentRead}
	ErrReportWrite     = &Error{Kind: ReportWrite}
)

// Error is a failed run. Err is the underlying cause.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}
