// Package errors provides the two error kinds the compiler and interpreter
// raise: ParseError for lexing/parsing failures and RuntimeError for
// compile-time resolution failures. The interpreter reports its own
// failures as plain Go errors.
package errors

import (
	"fmt"
	"strings"
)

// Kind distinguishes the two error categories the language surface produces.
type Kind string

const (
	ParseErrorKind   Kind = "ParseError"
	RuntimeErrorKind Kind = "RuntimeError"
)

// SourceLocation pinpoints a single position in a single source file.
type SourceLocation struct {
	File   string
	Line   int
	Column int
}

// StackFrame is one frame of a shade-language call stack, used to render
// a trace through user functions when a RuntimeError escapes a call.
type StackFrame struct {
	Function string
	Location SourceLocation
}

// Error is the shared shape for both ParseError and RuntimeError: a kind, a
// message, a location, an optional source line for caret rendering, and an
// optional call stack.
type Error struct {
	Kind      Kind
	Message   string
	Location  SourceLocation
	Source    string
	CallStack []StackFrame
}

func NewParseError(message, file string, line, column int) *Error {
	return &Error{Kind: ParseErrorKind, Message: message, Location: SourceLocation{File: file, Line: line, Column: column}}
}

func NewRuntimeError(message, file string, line, column int) *Error {
	return &Error{Kind: RuntimeErrorKind, Message: message, Location: SourceLocation{File: file, Line: line, Column: column}}
}

func (e *Error) WithSource(source string) *Error {
	e.Source = source
	return e
}

func (e *Error) AddStackFrame(function string, loc SourceLocation) *Error {
	e.CallStack = append(e.CallStack, StackFrame{Function: function, Location: loc})
	return e
}

// Error implements the error interface with plain (non-colored) rendering.
func (e *Error) Error() string {
	return e.Render(false)
}

// Render builds the full multi-line message: type/message, file:line:col,
// the offending source line with a caret under the column, and a call
// stack if one was attached. When color is true the caret line is
// highlighted with ANSI red; Error always renders without color.
func (e *Error) Render(color bool) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s: %s\n", e.Kind, e.Message))

	if e.Location.File != "" {
		sb.WriteString(fmt.Sprintf("  at %s:%d:%d\n", e.Location.File, e.Location.Line, e.Location.Column))

		if e.Source != "" {
			prefix := fmt.Sprintf("%d | ", e.Location.Line)
			sb.WriteString(fmt.Sprintf("\n  %s%s\n", prefix, e.Source))
			caret := strings.Repeat(" ", len(prefix))
			if e.Location.Column > 0 {
				caret += strings.Repeat(" ", e.Location.Column-1)
			}
			if color {
				sb.WriteString(fmt.Sprintf("  %s\x1b[31m^\x1b[0m\n", caret))
			} else {
				sb.WriteString(fmt.Sprintf("  %s^\n", caret))
			}
		}
	}

	if len(e.CallStack) > 0 {
		sb.WriteString("\ncall stack:\n")
		for _, frame := range e.CallStack {
			if frame.Function != "" {
				sb.WriteString(fmt.Sprintf("  at %s (%s:%d:%d)\n",
					frame.Function, frame.Location.File, frame.Location.Line, frame.Location.Column))
			} else {
				sb.WriteString(fmt.Sprintf("  at %s:%d:%d\n",
					frame.Location.File, frame.Location.Line, frame.Location.Column))
			}
		}
	}

	return sb.String()
}
