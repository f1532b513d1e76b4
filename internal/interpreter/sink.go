package interpreter

import (
	"bytes"
	"io"
	"sync"
)

const truncationMark = "\n[output truncated]\n"

// sink buffers output captured during one execution, with a hard byte
// cap so a print loop cannot exhaust memory. Writes past the cap are
// discarded and the truncation is marked once. An optional mirror
// receives the uncapped stream as it is produced; mirror errors are
// ignored so a slow or broken consumer cannot fault the execution.
//
// sink is safe for concurrent use: the worker writes while the caller
// may snapshot partial output on the timeout path.
type sink struct {
	mu        sync.Mutex
	buf       bytes.Buffer
	remaining int64
	truncated bool
	mirror    io.Writer
}

func newSink(limit int64, mirror io.Writer) *sink {
	return &sink{remaining: limit, mirror: mirror}
}

func (s *sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mirror != nil {
		_, _ = s.mirror.Write(p)
	}

	n := len(p)
	if s.remaining <= 0 {
		s.truncate()
		return n, nil
	}
	if int64(n) > s.remaining {
		p = p[:s.remaining]
	}
	s.buf.Write(p)
	s.remaining -= int64(len(p))
	if len(p) < n {
		s.truncate()
	}
	return n, nil
}

func (s *sink) WriteString(text string) {
	_, _ = s.Write([]byte(text))
}

func (s *sink) WriteLine(line string) {
	s.WriteString(line + "\n")
}

// String returns everything captured so far.
func (s *sink) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

// Len returns the number of captured bytes, the truncation mark included.
func (s *sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Len()
}

// Truncated reports whether the cap was hit.
func (s *sink) Truncated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.truncated
}

// truncate marks the cap overrun. Caller must hold mu. The mark itself
// is written outside the budget so it is never silently dropped.
func (s *sink) truncate() {
	if s.truncated {
		return
	}
	s.truncated = true
	s.buf.WriteString(truncationMark)
}
