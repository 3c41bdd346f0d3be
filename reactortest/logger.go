// Copyright © 2024 The ELPS authors

package reactortest

import (
	"bytes"
	"io"
	"testing"
)

// Logger adapts a testing.TB to io.Writer so that report dumps and
// attributed-tree output land in the test log, correctly attributed to
// the running test.  Output is emitted line by line; a trailing partial
// line is flushed when the test finishes.
type Logger struct {
	t   testing.TB
	buf []byte
}

var _ io.Writer = (*Logger)(nil)

// NewLogger returns a Logger for t.  The logger flushes any buffered
// partial line automatically at the end of the test.
func NewLogger(t testing.TB) *Logger {
	log := &Logger{t: t}
	t.Cleanup(log.Flush)
	return log
}

func (log *Logger) Write(b []byte) (int, error) {
	log.buf = append(log.buf, b...)
	for {
		i := bytes.IndexByte(log.buf, '\n')
		if i < 0 {
			return len(b), nil
		}
		log.t.Log(string(log.buf[:i])) // slice does not include \n
		log.buf = log.buf[i+1:]
	}
}

// Flush logs any buffered output that is not newline terminated.
func (log *Logger) Flush() {
	if len(log.buf) == 0 {
		return
	}
	log.t.Log(string(log.buf))
	log.buf = nil
}
