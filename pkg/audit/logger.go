package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// ErrClosed is returned by Log after Close.
var ErrClosed = errors.New("audit: logger is closed")

// Logger records audit entries.
type Logger interface {
	Log(e Entry) error
	Close() error
}

// Nop discards entries.
type Nop struct{}

func (Nop) Log(Entry) error { return nil }
func (Nop) Close() error    { return nil }

// Writer encodes entries as JSON lines and numbers them in order.
type Writer struct {
	mu     sync.Mutex
	enc    *json.Encoder
	closer io.Closer
	seq    int64
	closed bool
}

// NewWriter logs to w. Close closes w when it is an io.Closer.
func NewWriter(w io.Writer) *Writer {
	l := &Writer{enc: json.NewEncoder(w)}
	if c, ok := w.(io.Closer); ok {
		l.closer = c
	}
	return l
}

// Open appends to the file at path, creating it with 0600 permissions.
// An empty path returns Nop.
func Open(path string) (Logger, error) {
	if path == "" {
		return Nop{}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("audit: failed to open log file: %w", err)
	}
	return NewWriter(f), nil
}

// Log writes e with the next sequence number.
func (l *Writer) Log(e Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	l.seq++
	e.Sequence = l.seq
	if err := l.enc.Encode(e); err != nil {
		return fmt.Errorf("audit: failed to encode entry: %w", err)
	}
	return nil
}

// Close stops logging and closes the destination.
func (l *Writer) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	if l.closer == nil {
		return nil
	}
	if f, ok := l.closer.(*os.File); ok {
		_ = f.Sync()
	}
	return l.closer.Close()
}
