package registry

import (
	"fmt"
	"io"
	"runtime"

	"github.com/fatih/color"

	"github.com/peter-lyons-kehl/live-format/go-live/ir"
	"github.com/peter-lyons-kehl/live-format/go-live/pos"
)

// Origin tags an error with the engine source location that raised it,
// which tells expansion failures apart when the same message can come
// from several resolution paths.
type Origin struct {
	File string
	Line int
}

func origin() Origin {
	_, file, line, ok := runtime.Caller(1)
	if !ok {
		return Origin{}
	}
	return Origin{File: file, Line: line}
}

func (o Origin) String() string {
	return fmt.Sprintf("%s:%d", o.File, o.Line)
}

// Error is one expansion diagnostic. It carries a source span; line and
// column are resolved only when the error is converted to a FileError.
type Error struct {
	Origin  Origin
	Span    ir.Span
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// FileError is a fully renderable diagnostic: file name, zero-based
// line/column and a source snippet.
type FileError struct {
	File    string
	Line    int
	Col     int
	Len     int
	Snippet string
	Message string
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line+1, e.Col+1, e.Message)
}

// Render writes the diagnostic, colorized when colorize is set. The
// color decision (tty detection) stays with the caller.
func (e *FileError) Render(w io.Writer, colorize bool) {
	loc := fmt.Sprintf("%s:%d:%d:", e.File, e.Line+1, e.Col+1)
	msg := e.Message
	if colorize {
		loc = color.CyanString("%s", loc)
		msg = color.RedString("%s", msg)
	}
	fmt.Fprintf(w, "%s %s\n", loc, msg)
	if e.Snippet != "" {
		fmt.Fprintf(w, "  `...%s...`\n", e.Snippet)
	}
}

// fileError resolves an Error's span against the registered file's
// source text.
func fileError(e *Error, file, source string) *FileError {
	doc := pos.NewDoc([]byte(source))
	p := doc.Pos(int(e.Span.Start))
	line, col := p.LineCol()
	return &FileError{
		File:    file,
		Line:    line,
		Col:     col,
		Len:     e.Span.Len(),
		Snippet: p.Snippet(10),
		Message: e.Message,
	}
}
