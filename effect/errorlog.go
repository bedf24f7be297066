package effect

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// ErrorLog is an append-only record of layer failures. Each record is a UTC timestamp
// followed by the failure detail.
type ErrorLog struct {
	mu      sync.Mutex
	w       io.Writer
	closer  io.Closer
	records int
}

// OpenErrorLog opens, or creates, the log file at path for appending.
func OpenErrorLog(path string) (*ErrorLog, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "opening error log %s", path)
	}

	l := NewErrorLog(f)
	l.closer = f
	return l, nil
}

// NewErrorLog writes records to w.
func NewErrorLog(w io.Writer) *ErrorLog {
	l := new(ErrorLog)
	l.w = w
	return l
}

// Append writes one record.
func (l *ErrorLog) Append(at time.Time, detail string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := fmt.Fprintf(l.w, "%s UTC : %s\n", at.UTC().Format(time.ANSIC), detail); err != nil {
		return errors.Wrap(err, "appending error record")
	}
	l.records++
	return nil
}

// Records returns the number of records appended since the log was opened.
func (l *ErrorLog) Records() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.records
}

// Close closes the underlying file, if the log owns one.
func (l *ErrorLog) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
