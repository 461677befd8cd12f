// Package session holds the state of one interactive shell session: the
// remote connection, the pair of working directories, counters and history.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/dbxshell/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/dbxshell/internal/remote"
	"github.com/GriffinCanCode/dbxshell/internal/shared/paths"
	"github.com/GriffinCanCode/dbxshell/internal/transcript"
)

var (
	ErrNotConnected     = errors.New("not connected to Dropbox")
	ErrAlreadyConnected = errors.New("already connected to Dropbox")
)

// Options configures a State.
type Options struct {
	Connector  remote.Connector
	Transcript *transcript.Recorder
	// Home is the process start directory; bare lcd returns to it.
	Home string
	// AppName and AccessToken pre-seed open without arguments.
	AppName     string
	AccessToken string

	Logger  *zap.Logger
	Metrics *monitoring.Metrics
	Now     func() time.Time
}

// State is the session. It is driven by one goroutine at a time; the lock
// only guards reads from the metrics endpoint and tests.
type State struct {
	mu sync.RWMutex

	id        string
	connector remote.Connector
	client    remote.Service
	account   *remote.Account
	team      bool

	appName     string
	accessToken string

	localHome string
	localCwd  string
	remoteCwd string

	commands        int
	bytesUploaded   int64
	bytesDownloaded int64
	history         []string

	started time.Time
	ended   time.Time

	transcript *transcript.Recorder
	logger     *zap.Logger
	metrics    *monitoring.Metrics
	now        func() time.Time
}

// New creates a disconnected session rooted at opts.Home.
func New(opts Options) *State {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.NewString()

	return &State{
		id:          id,
		connector:   opts.Connector,
		appName:     opts.AppName,
		accessToken: opts.AccessToken,
		localHome:   opts.Home,
		localCwd:    opts.Home,
		history:     make([]string, 0, 64),
		started:     now(),
		transcript:  opts.Transcript,
		logger:      logger.With(zap.String("session_id", id)),
		metrics:     opts.Metrics,
		now:         now,
	}
}

// ID returns the session's correlation id.
func (s *State) ID() string {
	return s.id
}

// Logger returns the session-scoped logger.
func (s *State) Logger() *zap.Logger {
	return s.logger
}

// Metrics returns the metrics sink, possibly nil.
func (s *State) Metrics() *monitoring.Metrics {
	return s.metrics
}

// Transcript returns the output recorder.
func (s *State) Transcript() *transcript.Recorder {
	return s.transcript
}

// Open connects with the given identity. On failure the session stays
// disconnected and keeps its previous identity.
func (s *State) Open(ctx context.Context, appName, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return ErrAlreadyConnected
	}
	if s.connector == nil {
		return errors.New("no remote connector configured")
	}

	client, err := s.connector(ctx, appName, token)
	if err != nil {
		return err
	}
	acct, err := client.CurrentAccount(ctx)
	if err != nil {
		return err
	}

	s.client = client
	s.account = acct
	s.team = acct.IsTeam()
	s.appName = appName
	s.accessToken = token
	s.remoteCwd = paths.RemoteRoot
	s.metrics.SetConnected(true)

	s.logger.Info("session connected",
		zap.String("app", appName),
		zap.String("account_id", acct.ID),
		zap.Bool("team", s.team))
	return nil
}

// Close drops the connection and clears the identity.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		return ErrNotConnected
	}
	s.client = nil
	s.account = nil
	s.team = false
	s.appName = ""
	s.accessToken = ""
	s.remoteCwd = paths.RemoteRoot
	s.metrics.SetConnected(false)

	s.logger.Info("session disconnected")
	return nil
}

// Connected reports whether a remote session is open.
func (s *State) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client != nil
}

// Client returns the remote service, or ErrNotConnected.
func (s *State) Client() (remote.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.client == nil {
		return nil, ErrNotConnected
	}
	return s.client, nil
}

// Account returns the connected account, nil when disconnected.
func (s *State) Account() *remote.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.account
}

// Team reports whether space is read from the team allocation.
func (s *State) Team() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.team
}

// AppName returns the app identity, "" if unset.
func (s *State) AppName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.appName
}

// SetAppName sets the app identity if none is set yet.
func (s *State) SetAppName(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appName != "" {
		return false
	}
	s.appName = name
	return true
}

// AccessToken returns the access token, "" if unset.
func (s *State) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// SetAccessToken sets the token if none is set yet.
func (s *State) SetAccessToken(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.accessToken != "" {
		return false
	}
	s.accessToken = token
	return true
}

// RemoteCwd returns the remote directory, "" at root.
func (s *State) RemoteCwd() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.remoteCwd
}

// SetRemoteCwd stores p in canonical form.
func (s *State) SetRemoteCwd(p string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remoteCwd = paths.CleanRemote(p)
}

// RemoteDisplay is the remote directory as shown in the prompt: "" while
// disconnected, "/" at root.
func (s *State) RemoteDisplay() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.client == nil {
		return ""
	}
	return paths.DisplayRemote(s.remoteCwd)
}

// LocalHome returns the process start directory.
func (s *State) LocalHome() string {
	return s.localHome
}

// LocalCwd returns the local working directory.
func (s *State) LocalCwd() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.localCwd
}

// SetLocalCwd changes the local working directory.
func (s *State) SetLocalCwd(p string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.localCwd = p
}

// ResolveRemote resolves a token against the remote directory.
func (s *State) ResolveRemote(token string) (string, paths.Status) {
	return paths.ResolveRemote(token, s.RemoteCwd())
}

// ResolveLocal resolves a token against the local directory.
func (s *State) ResolveLocal(token string) (string, paths.Status) {
	return paths.ResolveLocal(token, s.LocalCwd(), s.localHome)
}

func (s *State) metadata(ctx context.Context, path string) (*remote.Entry, bool) {
	client, err := s.Client()
	if err != nil {
		return nil, false
	}
	e, err := client.Metadata(ctx, path)
	if err != nil {
		s.logger.Debug("existence check failed", zap.String("path", path), zap.Error(err))
		return nil, false
	}
	return e, true
}

// HasFile reports whether path is a remote file. Every failure, including
// network errors, reads as false.
func (s *State) HasFile(ctx context.Context, path string) bool {
	e, ok := s.metadata(ctx, path)
	return ok && e.IsFile()
}

// HasFolder reports whether path is a remote folder. The root always is one
// while connected.
func (s *State) HasFolder(ctx context.Context, path string) bool {
	if path == paths.RemoteRoot {
		return s.Connected()
	}
	e, ok := s.metadata(ctx, path)
	return ok && e.IsFolder()
}

// HasPath reports whether path is a remote file or folder.
func (s *State) HasPath(ctx context.Context, path string) bool {
	if path == paths.RemoteRoot {
		return s.Connected()
	}
	_, ok := s.metadata(ctx, path)
	return ok
}

// AddHistory appends a raw input line.
func (s *State) AddHistory(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, line)
}

// DropLastHistory removes the most recent line.
func (s *State) DropLastHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := len(s.history); n > 0 {
		s.history = s.history[:n-1]
	}
}

// History returns a copy of the recorded lines.
func (s *State) History() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.history...)
}

// CountCommand records one evaluated command.
func (s *State) CountCommand() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands++
}

// CommandCount returns the number of evaluated commands.
func (s *State) CommandCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.commands
}

// AddDownloaded adds to the get byte counter.
func (s *State) AddDownloaded(n int64) {
	s.mu.Lock()
	s.bytesDownloaded += n
	s.mu.Unlock()
	s.metrics.AddTransfer(monitoring.DirectionGet, n)
}

// AddUploaded adds to the put byte counter.
func (s *State) AddUploaded(n int64) {
	s.mu.Lock()
	s.bytesUploaded += n
	s.mu.Unlock()
	s.metrics.AddTransfer(monitoring.DirectionPut, n)
}

// Now returns the session clock's current time.
func (s *State) Now() time.Time {
	return s.now()
}

// Finish stamps the session end time.
func (s *State) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ended = s.now()
}

// String summarizes the session for logs.
func (s *State) String() string {
	return fmt.Sprintf("session %s (connected=%t, commands=%d)", s.id, s.Connected(), s.CommandCount())
}
