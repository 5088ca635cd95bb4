package report

import (
	"fmt"
	"os"
)

// Error reports a recoverable compilation error at the given position.  The
// position may be nil, in which case no location is printed.
func Error(pos *TextPosition, msg string, args ...interface{}) {
	rep.m.Lock()
	defer rep.m.Unlock()

	rep.errorCount++

	if rep.logLevel >= LogLevelError {
		rep.sink.Message("error", pos, fmt.Sprintf(msg, args...))
	}
}

// Warning reports a non-fatal compilation warning.
func Warning(pos *TextPosition, msg string, args ...interface{}) {
	rep.m.Lock()
	defer rep.m.Unlock()

	if rep.logLevel >= LogLevelWarn {
		rep.sink.Message("warning", pos, fmt.Sprintf(msg, args...))
	}
}

// ICE reports an internal compiler error: an invariant the compiler itself
// was supposed to maintain has been violated.  These are always displayed
// regardless of log level and terminate the process.
func ICE(msg string, args ...interface{}) {
	rep.m.Lock()
	rep.sink.InternalError(fmt.Sprintf(msg, args...))
	rep.m.Unlock()

	os.Exit(-1)
}

// Fatal reports an expected but unrecoverable error (bad configuration,
// missing tools) and exits.
func Fatal(msg string, args ...interface{}) {
	rep.m.Lock()
	if rep.logLevel > LogLevelSilent {
		rep.sink.FatalError(fmt.Sprintf(msg, args...))
	}
	rep.m.Unlock()

	os.Exit(1)
}

// -----------------------------------------------------------------------------

// CompileError is an error carrying a source position so it can be raised
// from deep inside a pass and reported where the position context is known.
type CompileError struct {
	Message string
	Pos     *TextPosition
}

func (ce *CompileError) Error() string {
	return ce.Message
}

// Raise creates a new compile error suitable for panicking with.
func Raise(pos *TextPosition, msg string, args ...interface{}) *CompileError {
	return &CompileError{Message: fmt.Sprintf(msg, args...), Pos: pos}
}

// CatchErrors recovers a raised CompileError and reports it, letting the
// enclosing pass continue with its siblings.  Must be deferred.
func CatchErrors() {
	if x := recover(); x != nil {
		if cerr, ok := x.(*CompileError); ok {
			Error(cerr.Pos, "%s", cerr.Message)
		} else {
			panic(x)
		}
	}
}
