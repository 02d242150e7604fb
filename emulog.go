package main

import (
	"io"
	"log"
)

// Logger is a thin wrapper over the standard log.Logger used for
// UNIMPL notices, loader failures, and debugger activity lines. No
// third-party logging library appears anywhere in the example pack,
// so stdlib log is used directly rather than introduced for its own
// sake.
type Logger struct {
	*log.Logger
}

func NewLogger(w io.Writer) *Logger {
	return &Logger{Logger: log.New(w, "zx48: ", log.LstdFlags)}
}
