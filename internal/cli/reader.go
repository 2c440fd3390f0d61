package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// ErrInputCancelled is returned when the context ends before a line arrives.
var ErrInputCancelled = errors.New("input canceled")

type scanned struct {
	err  error
	line string
}

// LineReader reads trimmed lines from an input that may block forever, such
// as a terminal. A single goroutine scans the input, so a line that arrives
// after a cancelled read is kept for the next one.
type LineReader struct {
	src   io.Reader
	lines chan scanned
	once  sync.Once
}

// NewLineReader wraps src. Scanning starts on the first read.
func NewLineReader(src io.Reader) *LineReader {
	if src == nil {
		panic("cli: nil input")
	}
	return &LineReader{src: src, lines: make(chan scanned)}
}

func (r *LineReader) pump() {
	sc := bufio.NewScanner(r.src)
	for sc.Scan() {
		r.lines <- scanned{line: strings.TrimSpace(sc.Text())}
	}
	err := sc.Err()
	if err == nil {
		err = io.EOF
	}
	for {
		r.lines <- scanned{err: err}
	}
}

// ReadLine returns the next line without surrounding whitespace. A final
// line without a newline is returned normally; io.EOF follows it.
func (r *LineReader) ReadLine(ctx context.Context) (string, error) {
	r.once.Do(func() { go r.pump() })

	select {
	case <-ctx.Done():
		return "", ErrInputCancelled
	case s := <-r.lines:
		return s.line, s.err
	}
}
