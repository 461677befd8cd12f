package session

import (
	"os"
	"os/user"
	"runtime"
	"time"
)

// Report is the end-of-session summary.
type Report struct {
	OS       string
	Arch     string
	User     string
	UserHome string
	HomeDir  string

	Begin time.Time
	Close time.Time

	Commands        int
	Elapsed         time.Duration
	BytesDownloaded int64
	BytesUploaded   int64
}

// Report snapshots the counters. Before Finish the close time is now.
func (s *State) Report() Report {
	s.mu.RLock()
	defer s.mu.RUnlock()

	closed := s.ended
	if closed.IsZero() {
		closed = s.now()
	}

	r := Report{
		OS:              runtime.GOOS,
		Arch:            runtime.GOARCH,
		HomeDir:         s.localHome,
		Begin:           s.started,
		Close:           closed,
		Commands:        s.commands,
		Elapsed:         closed.Sub(s.started),
		BytesDownloaded: s.bytesDownloaded,
		BytesUploaded:   s.bytesUploaded,
	}
	if u, err := user.Current(); err == nil {
		r.User = u.Username
	}
	if home, err := os.UserHomeDir(); err == nil {
		r.UserHome = home
	}
	return r
}
