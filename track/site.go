package track

import (
	"fmt"
	"runtime"
)

// Site identifies the call site that produced a record.
type Site struct {
	File string
	Line int
}

// Caller returns the site of the function skip frames above the caller of Caller.
// Caller(0) is the line that calls Caller.
func Caller(skip int) Site {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return Site{}
	}
	return Site{File: file, Line: line}
}

// String renders the site as file(line).
func (s Site) String() string {
	if s.File == "" {
		return "unknown(0)"
	}
	return fmt.Sprintf("%s(%d)", s.File, s.Line)
}
