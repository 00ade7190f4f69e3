package errors

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
)

// Category groups error codes.
type Category string

const (
	CategoryConfig   Category = "config"
	CategoryRuntime  Category = "runtime"
	CategorySnapshot Category = "snapshot"
	CategoryCLI      Category = "cli"
)

// Location is a position in a file.
type Location struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column,omitempty"`
}

// String returns file:line[:column].
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Error is a structured error with an optional location and fix hint.
type Error struct {
	// Code is the registered identifier (e.g., "E101").
	Code string

	Category Category

	// Message is a short description.
	Message string

	// Detail is a longer explanation.
	Detail string

	// Location points into the file that caused the error, if any.
	Location *Location

	// Context holds the file lines around Location, starting at line
	// ContextStart.
	Context      []string
	ContextStart int

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error.
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// WithLocation points the error at file:line:column and loads the
// surrounding lines from disk.
func (e *Error) WithLocation(file string, line, column int) *Error {
	e.Location = &Location{File: file, Line: line, Column: column}
	if data, err := os.ReadFile(file); err == nil {
		e.Context, e.ContextStart = contextLines(data, line, 5)
	}
	return e
}

// WithOffset points the error at the byte that stopped a decoder after
// reading offset bytes of data, the contents of file. This matches the Offset
// reported by encoding/json syntax and type errors.
func (e *Error) WithOffset(file string, data []byte, offset int64) *Error {
	if offset < 0 {
		return e
	}
	pos := int(min(offset, int64(len(data)))) - 1
	if pos < 0 {
		pos = 0
	}
	prefix := data[:pos]
	line := bytes.Count(prefix, []byte("\n")) + 1
	column := pos - bytes.LastIndexByte(prefix, '\n')
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context, e.ContextStart = contextLines(data, line, 5)
	return e
}

// WithSuggestion sets the fix hint.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// WithDetail replaces the registered detail.
func (e *Error) WithDetail(d string) *Error {
	e.Detail = d
	return e
}

// Wrap sets the underlying error.
func (e *Error) Wrap(err error) *Error {
	e.Wrapped = err
	return e
}

// contextLines returns up to size lines of data centred on target, and the
// line number of the first one.
func contextLines(data []byte, target, size int) ([]string, int) {
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	start := max(target-size/2, 1)
	end := target + size/2

	for n := 1; scanner.Scan(); n++ {
		if n > end {
			break
		}
		if n >= start {
			lines = append(lines, scanner.Text())
		}
	}
	return lines, start
}

// New creates an Error from a registered code.
func New(code string) *Error {
	template, ok := registry[code]
	if !ok {
		return &Error{Code: code, Message: "Unknown error"}
	}
	return &Error{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates an uncoded Error with a formatted message.
func Newf(category Category, format string, args ...any) *Error {
	return &Error{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps err under code, returning err unchanged if it already is
// an *Error.
func FromError(err error, code string) *Error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		return e
	}
	return New(code).Wrap(err)
}
