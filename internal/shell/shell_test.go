package shell

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/dbxshell/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/dbxshell/internal/localfs"
	"github.com/GriffinCanCode/dbxshell/internal/remote"
	"github.com/GriffinCanCode/dbxshell/internal/remote/remotetest"
	"github.com/GriffinCanCode/dbxshell/internal/session"
	"github.com/GriffinCanCode/dbxshell/internal/transcript"
)

type harness struct {
	fake    *remotetest.Fake
	state   *session.State
	out     *bytes.Buffer
	home    string
	metrics *monitoring.Metrics
}

func newHarness(t *testing.T, opts ...func(*session.Options)) *harness {
	t.Helper()

	h := &harness{
		fake:    remotetest.NewFake(),
		out:     &bytes.Buffer{},
		home:    t.TempDir(),
		metrics: monitoring.NewMetrics(),
	}
	clock := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	so := session.Options{
		Connector:  h.fake.Connector(),
		Transcript: transcript.New(h.out),
		Home:       h.home,
		Metrics:    h.metrics,
		Now: func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		},
	}
	for _, opt := range opts {
		opt(&so)
	}
	h.state = session.New(so)
	return h
}

// run feeds lines to a fresh shell over the harness session until EOF.
func (h *harness) run(t *testing.T, lines ...string) string {
	t.Helper()
	return h.runContext(t, context.Background(), lines...)
}

func (h *harness) runContext(t *testing.T, ctx context.Context, lines ...string) string {
	t.Helper()
	sh := New(Options{
		In:    strings.NewReader(strings.Join(lines, "\n") + "\n"),
		State: h.state,
		FS:    localfs.New(nil),
	})
	sh.Run(ctx)
	assert.True(t, sh.Done())
	return h.out.String()
}

func assertInOrder(t *testing.T, out string, parts ...string) {
	t.Helper()
	pos := 0
	for _, p := range parts {
		i := strings.Index(out[pos:], p)
		if !assert.GreaterOrEqual(t, i, 0, "missing %q after offset %d", p, pos) {
			return
		}
		pos += i + len(p)
	}
}

func TestBannerAndClose(t *testing.T) {
	h := newHarness(t)
	out := h.run(t)

	assert.True(t, strings.HasPrefix(out, "DBXShell: A DropBox Command Line Interface Command Shell. Version 1.00\n"))
	assertInOrder(t, out,
		"Start DropBox Shell",
		"Welcome to the Dropbox Shell! Use 'help' to get started.",
		"::>",
		"Goodbye!",
		"DropBox Shell Report",
		"Close DropBox Shell",
	)
}

func TestOpenChangesPrompt(t *testing.T) {
	h := newHarness(t)
	out := h.run(t, "open myapp TOKEN123", "pwd")

	assertInOrder(t, out,
		"::>Connected 'Fake User' to Dropbox.\n",
		"myapp:/:>/\n",
	)
	assert.Equal(t, 1, h.fake.Calls("account"))
}

func TestOpenFailureStaysDisconnected(t *testing.T) {
	h := newHarness(t)
	h.fake.FailNext("account", remote.NewServiceError("invalid_access_token", nil))

	out := h.run(t, "open myapp BAD", "pwd")

	assert.Contains(t, out, "Open connection: some other DropBox remote error connecting occurred! invalid_access_token.")
	assertInOrder(t, out, "::>Not connected to DropBox!\n")
	assert.False(t, h.state.Connected())
}

func TestOpenArguments(t *testing.T) {
	h := newHarness(t)
	out := h.run(t, "open onlyone", "open")

	assert.Equal(t, 2, strings.Count(out,
		"Error: The command 'open' requires 2 parameters unless app name and access token are already set"))
	assert.Equal(t, 0, h.fake.Calls("account"))
	assert.Equal(t, 2, h.state.CommandCount())
}

func TestOpenPreseeded(t *testing.T) {
	h := newHarness(t, func(o *session.Options) {
		o.AppName = "seeded"
		o.AccessToken = "T0KEN"
	})
	out := h.run(t, "open", "open", "close", "close")

	assertInOrder(t, out,
		"seeded::>Connected 'Fake User' to Dropbox.\n",
		"seeded:/:>Already connected to DropBox!\n",
		"Connection to DropBox disconnected.\n",
		"::>Cannot close; not connected to DropBox!\n",
	)
}

func TestEmptyLine(t *testing.T) {
	h := newHarness(t)
	out := h.run(t, "", "   ", "''")

	assert.Equal(t, 3, strings.Count(out, "Huh? What!\n"))
	assert.Empty(t, h.state.History())
	assert.Equal(t, 0, h.state.CommandCount())
}

func TestUnknownCommand(t *testing.T) {
	h := newHarness(t)
	out := h.run(t, "foobar")

	assertInOrder(t, out,
		"I don't understand!\n",
		"The command: 'foobar' is unknown. Try 'help' for list of shell commands.\n",
	)
	assert.Empty(t, h.state.History())
	assert.Equal(t, 0, h.state.CommandCount())
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.CommandsTotal.WithLabelValues("unknown", monitoring.OutcomeUnknown)))
}

func TestHistoryKeepsRecognizedLines(t *testing.T) {
	h := newHarness(t)
	lines := []string{"lwd", "", "foobar", "cp onlyone", "  ", "ver", "history"}
	out := h.run(t, lines...)

	// 7 lines, 3 empty or unknown
	assert.Equal(t, []string{"lwd", "cp onlyone", "ver", "history"}, h.state.History())
	assert.Equal(t, 4, h.state.CommandCount())
	assertInOrder(t, out,
		"Shell Command History:\n",
		"      0  lwd\n",
		"      1  cp onlyone\n",
		"      2  ver\n",
		"      3  history\n",
	)
}

func TestArgumentCountError(t *testing.T) {
	h := newHarness(t)
	out := h.run(t, "cp a", "pwd extra", "lcd a b")

	assert.Contains(t, out, "Error: The command 'cp' requires 2 parameters, got 1. Usage: cp <source-path> <target-path>\n")
	assert.Contains(t, out, "Error: The command 'pwd' takes no parameters, got 1. Usage: pwd\n")
	assert.Contains(t, out, "Error: The command 'lcd' takes 0 to 1 parameters, got 2. Usage: lcd ( <path> | .. )\n")
	assert.Equal(t, 3, h.state.CommandCount())
	assert.Len(t, h.state.History(), 3)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.CommandsTotal.WithLabelValues("cp", monitoring.OutcomeError)))
}

func TestNotConnected(t *testing.T) {
	h := newHarness(t)
	out := h.run(t, "ls", "pwd", "cd docs", "get a.txt", "space")

	assert.Equal(t, 5, strings.Count(out, "Not connected to DropBox!\n"))
	assert.Equal(t, 5, h.state.CommandCount())
	assert.Equal(t, 0, h.fake.Calls("metadata"))
}

func TestAliasesResolve(t *testing.T) {
	h := newHarness(t)
	out := h.run(t, "version", "ver", "status", "ready")

	assert.Equal(t, 2, strings.Count(out, "DropBox shell version 1.00.\n"))
	assert.Equal(t, 2, strings.Count(out, "Not Ready! Shell is not connected to DropBox!"))
	assert.Equal(t, 2.0, testutil.ToFloat64(h.metrics.CommandsTotal.WithLabelValues("ver", monitoring.OutcomeOK)))
}

func TestPanicIsRecovered(t *testing.T) {
	svc := &remotetest.MockService{}
	svc.On("CurrentAccount", mock.Anything).Return(&remote.Account{ID: "dbid:m", DisplayName: "Mock", Type: remote.AccountBasic}, nil)
	svc.On("SpaceUsage", mock.Anything).Panic("boom")

	h := newHarness(t, func(o *session.Options) { o.Connector = svc.Connector() })
	out := h.run(t, "open a t", "space", "pwd")

	assertInOrder(t, out,
		"Evaluate error: space: panic: boom\n",
		"a:/:>/\n",
	)
	assert.Equal(t, 3, h.state.CommandCount())
	svc.AssertExpectations(t)
}

func TestByeFinalizationOrder(t *testing.T) {
	h := newHarness(t)
	out := h.run(t, "open a t", "script s.txt", "bye", "ver")

	assertInOrder(t, out,
		"Transcript has started with next command.\n",
		"Connection to DropBox disconnected.\n",
		"Goodbye!\n",
		"DropBox Shell Report",
		"Total command count:   2-commands",
		"Transcript has finished for last command.\n",
		"Transcript of shell session written to file: s.txt.\n",
		"Close DropBox Shell\n",
	)
	assert.NotContains(t, out, "DropBox shell version")
	assert.False(t, h.state.Connected())
	assert.False(t, h.state.Transcript().Recording())
	assert.Equal(t, 3, h.state.CommandCount())
}

func TestExitAliases(t *testing.T) {
	for _, word := range []string{"bye", "exit", "quit"} {
		t.Run(word, func(t *testing.T) {
			h := newHarness(t)
			out := h.run(t, word, "ver")
			assert.Equal(t, 1, strings.Count(out, "Goodbye!"))
			assert.NotContains(t, out, "DropBox shell version")
		})
	}
}

func TestCancelledContextFinishes(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := h.runContext(t, ctx, "ver")

	assert.NotContains(t, out, "DropBox shell version")
	assertInOrder(t, out, "Goodbye!", "Close DropBox Shell")
}

func TestOverlongLineEndsSession(t *testing.T) {
	h := newHarness(t)
	input := "ver\n" + strings.Repeat("x", 2*maxLine) + "\nver\n"

	sh := New(Options{In: strings.NewReader(input), State: h.state, FS: localfs.New(nil)})
	sh.Run(context.Background())
	out := h.out.String()

	assert.True(t, sh.Done())
	assert.Equal(t, 1, strings.Count(out, "DropBox shell version 1.00.\n"))
	assertInOrder(t, out, "Goodbye!\n", "DropBox Shell Report", "Total command count:   1-commands", "Close DropBox Shell\n")
	assert.Equal(t, 1, h.state.CommandCount())
}

func TestCommandTable(t *testing.T) {
	h := newHarness(t)
	sh := New(Options{In: strings.NewReader(""), State: h.state, FS: localfs.New(nil)})

	want := map[string][2]int{
		"open": {0, 2}, "close": {0, 0}, "cd": {0, 1}, "pwd": {0, 0}, "dir": {0, 0},
		"cp": {2, 2}, "rm": {1, 1}, "mv": {2, 2}, "mkdir": {1, 1}, "rmdir": {1, 1},
		"get": {1, 1}, "put": {1, 1}, "find": {2, 2}, "info": {1, 1}, "account": {0, 0},
		"space": {0, 0}, "lcd": {0, 1}, "lcp": {2, 2}, "lrm": {1, 1}, "ldir": {0, 0},
		"lfind": {2, 2}, "lmdir": {1, 1}, "lrdir": {1, 1}, "lrn": {2, 2}, "lwd": {0, 0},
		"access": {0, 1}, "appname": {0, 1}, "history": {0, 0}, "ready": {0, 0},
		"report": {0, 0}, "script": {0, 1}, "help": {0, 0}, "ver": {0, 0}, "bye": {0, 0},
	}

	cmds := sh.Commands()
	require.Len(t, cmds, len(want))
	for _, c := range cmds {
		arity, ok := want[c.Name]
		require.True(t, ok, c.Name)
		assert.Equal(t, arity, [2]int{c.MinArgs, c.MaxArgs}, c.Name)
	}

	for alias, canonical := range map[string]string{
		"chdir": "cd", "cdir": "cd", "ls": "dir", "del": "rm", "rn": "mv", "ren": "mv",
		"md": "mkdir", "mdir": "mkdir", "rd": "rmdir", "rdir": "rmdir", "ldel": "lrm",
		"lrd": "lrdir", "status": "ready", "version": "ver", "exit": "bye", "quit": "bye",
	} {
		cmd, ok := sh.registry.lookup(alias)
		require.True(t, ok, alias)
		assert.Equal(t, canonical, cmd.Name)
	}
}
