// Package transcript mirrors shell output into an optional session file.
package transcript

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"
	"time"
)

var (
	ErrAlreadyExists    = errors.New("transcript file already exists")
	ErrAlreadyRecording = errors.New("transcript already recording")
	ErrNotRecording     = errors.New("no transcript is recording")
)

// Recorder is an io.Writer that always writes to the console and, between
// Begin and End, also to a transcript file. Writes are unbuffered.
type Recorder struct {
	mu      sync.Mutex
	console io.Writer
	file    *os.File
	name    string
}

// New creates a recorder writing to console.
func New(console io.Writer) *Recorder {
	return &Recorder{console: console}
}

// DefaultName returns prefix_yyyy_MM_dd_HH_mm_ss.txt for t.
func DefaultName(prefix string, t time.Time) string {
	return prefix + "_" + t.Format("2006_01_02_15_04_05") + ".txt"
}

// Begin starts recording into name. An existing file is never reused.
func (r *Recorder) Begin(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file != nil {
		return ErrAlreadyRecording
	}
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL|os.O_APPEND, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrAlreadyExists, name)
		}
		return fmt.Errorf("open transcript: %w", err)
	}
	r.file = f
	r.name = name
	return nil
}

// End flushes and closes the transcript and returns its name.
func (r *Recorder) End() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return "", ErrNotRecording
	}
	f, name := r.file, r.name
	r.file, r.name = nil, ""

	err := f.Sync()
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return name, fmt.Errorf("close transcript: %w", err)
	}
	return name, nil
}

// Recording reports whether a transcript is open.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.file != nil
}

// Name returns the open transcript's file name, "" when not recording.
func (r *Recorder) Name() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.name
}

// Write implements io.Writer.
func (r *Recorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, err := r.console.Write(p)
	if err != nil {
		return n, err
	}
	if r.file != nil {
		if _, err := r.file.Write(p); err != nil {
			return n, fmt.Errorf("write transcript: %w", err)
		}
	}
	return n, nil
}

// Printf formats to both sinks.
func (r *Recorder) Printf(format string, args ...interface{}) {
	fmt.Fprintf(r, format, args...)
}
