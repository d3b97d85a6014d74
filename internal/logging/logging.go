package logging

import (
	"bytes"
	"io"
	"log"
	"os"
)

var debugTag = []byte(" DEBUG: ")

// Init sends the standard logger to stdout with microsecond timestamps.
// Lines logged with a "DEBUG:" prefix are dropped unless debug is set.
func Init(debug bool) {
	log.SetOutput(filter{w: os.Stdout, debug: debug})
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
}

type filter struct {
	w     io.Writer
	debug bool
}

func (f filter) Write(p []byte) (int, error) {
	if !f.debug && bytes.Contains(p, debugTag) {
		return len(p), nil
	}
	return f.w.Write(p)
}
