package errors

import (
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseOpen   Phase = "open"   // file open and mapping
	PhaseFrame  Phase = "frame"  // block header/tail framing
	PhaseHeader Phase = "header" // metadata block parsing
	PhaseDecode Phase = "decode" // bytes to floats
	PhaseRead   Phase = "read"   // full table assembly
	PhaseStream Phase = "stream" // chunked row assembly
	PhaseWrite  Phase = "write"  // interchange output
	PhaseConfig Phase = "config" // configuration loading
)

// Kind categorizes the error
type Kind string

const (
	KindIO                 Kind = "io"
	KindFormat             Kind = "format"
	KindUnsupportedVersion Kind = "unsupported_version"
	KindDataIntegrity      Kind = "data_integrity"
	KindInvalidInput       Kind = "invalid_input"
	KindNotFound           Kind = "not_found"
)

// Sentinels match any error of the same kind regardless of phase:
//
//	if errors.Is(err, werrors.ErrFormat) { ... }
var (
	ErrIO                 = &Error{Kind: KindIO}
	ErrFormat             = &Error{Kind: KindFormat}
	ErrUnsupportedVersion = &Error{Kind: KindUnsupportedVersion}
	ErrDataIntegrity      = &Error{Kind: KindDataIntegrity}
	ErrInvalidInput       = &Error{Kind: KindInvalidInput}
	ErrNotFound           = &Error{Kind: KindNotFound}
)

// Error is the structured error type used throughout the module
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Token  string
	Detail string
	Offset int64
	Block  int
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Offset >= 0 {
		b.WriteString(" at offset ")
		b.WriteString(strconv.FormatInt(e.Offset, 10))
	}
	if e.Block > 0 {
		b.WriteString(" (block ")
		b.WriteString(strconv.Itoa(e.Block))
		b.WriteByte(')')
	}

	if e.Token != "" {
		b.WriteString(": token ")
		b.WriteString(strconv.Quote(e.Token))
	}

	if e.Detail != "" {
		if e.Token != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// A target without a phase matches on kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase == "" {
		return e.Kind == t.Kind
	}
	return e.Phase == t.Phase && e.Kind == t.Kind
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase:  phase,
			Kind:   kind,
			Offset: -1,
		},
	}
}

// Offset sets the byte offset in the source where the error was detected
func (b *Builder) Offset(off int) *Builder {
	b.err.Offset = int64(off)
	return b
}

// Block sets the 1-based index of the block being processed
func (b *Builder) Block(n int) *Builder {
	b.err.Block = n
	return b
}

// Token sets the raw offending token
func (b *Builder) Token(tok string) *Builder {
	b.err.Token = tok
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// IO wraps an open/read/write failure
func IO(phase Phase, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindIO,
		Detail: detail,
		Cause:  cause,
		Offset: -1,
	}
}

// Format creates a corruption/malformed-structure error
func Format(phase Phase, detail string, args ...any) *Error {
	if len(args) > 0 {
		detail = fmt.Sprintf(detail, args...)
	}
	return &Error{
		Phase:  phase,
		Kind:   KindFormat,
		Detail: detail,
		Offset: -1,
	}
}

// UnsupportedVersion reports a format-version token outside the known set
func UnsupportedVersion(token string) *Error {
	return &Error{
		Phase:  PhaseHeader,
		Kind:   KindUnsupportedVersion,
		Token:  token,
		Detail: "unknown format version",
		Offset: -1,
	}
}

// DataIntegrity reports data that ends without a sentinel or mid-row
func DataIntegrity(phase Phase, detail string, args ...any) *Error {
	if len(args) > 0 {
		detail = fmt.Sprintf(detail, args...)
	}
	return &Error{
		Phase:  phase,
		Kind:   KindDataIntegrity,
		Detail: detail,
		Offset: -1,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
		Offset: -1,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
		Offset: -1,
	}
}
