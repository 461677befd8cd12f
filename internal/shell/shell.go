package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/dbxshell/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/dbxshell/internal/localfs"
	"github.com/GriffinCanCode/dbxshell/internal/session"
	"github.com/GriffinCanCode/dbxshell/internal/transcript"
)

// Version is reported by the ver command and the banner.
const Version = "1.00"

const (
	aboutMessage   = "DBXShell: A DropBox Command Line Interface Command Shell."
	startMessage   = "Start DropBox Shell"
	welcomeMessage = "Welcome to the Dropbox Shell! Use 'help' to get started."
	closeMessage   = "Close DropBox Shell"

	// DefaultTranscriptPrefix names generated transcript files.
	DefaultTranscriptPrefix = "dbx_shell_transcript"

	maxLine = 1 << 20
)

// Options configures a Shell.
type Options struct {
	In    io.Reader
	State *session.State
	FS    localfs.FS

	TranscriptPrefix string
	Logger           *zap.Logger
}

// Shell is the read-eval loop over one session.
type Shell struct {
	in       *bufio.Scanner
	out      *transcript.Recorder
	state    *session.State
	fs       localfs.FS
	registry *registry

	prefix  string
	logger  *zap.Logger
	metrics *monitoring.Metrics
	done    bool
}

// New creates a shell reading commands from opts.In.
func New(opts Options) *Shell {
	logger := opts.Logger
	if logger == nil {
		logger = opts.State.Logger()
	}
	prefix := opts.TranscriptPrefix
	if prefix == "" {
		prefix = DefaultTranscriptPrefix
	}

	scanner := bufio.NewScanner(opts.In)
	scanner.Buffer(make([]byte, 0, 4096), maxLine)

	return &Shell{
		in:       scanner,
		out:      opts.State.Transcript(),
		state:    opts.State,
		fs:       opts.FS,
		registry: newRegistry(builtinCommands(), remoteCommands(), localCommands()),
		prefix:   prefix,
		logger:   logger.Named("shell"),
		metrics:  opts.State.Metrics(),
	}
}

// Run prints the banner and evaluates lines until a terminating command,
// end of input, an input read failure or cancellation of ctx. Every path ends
// with the same finalization; a read failure is logged, not returned.
func (sh *Shell) Run(ctx context.Context) {
	sh.banner()

	stop := make(chan struct{})
	defer close(stop)
	lines, readErr := sh.read(stop)

loop:
	for !sh.done {
		if ctx.Err() != nil {
			sh.printf("\n")
			sh.finish()
			break
		}

		sh.printf("%s", sh.Prompt())
		select {
		case <-ctx.Done():
			sh.printf("\n")
			sh.finish()
			break loop
		case line, ok := <-lines:
			if !ok {
				if err := <-readErr; err != nil {
					sh.logger.Warn("input read failed", zap.Error(err))
				}
				sh.printf("\n")
				sh.finish()
				break loop
			}
			sh.evaluate(ctx, line)
		}
	}

	sh.printf("\n%s\n", closeMessage)
}

// read scans input on its own goroutine so a blocked read never delays
// cancellation. lines is closed at end of input, after the scan error (nil
// at EOF) is sent on the second channel.
func (sh *Shell) read(stop <-chan struct{}) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)

	go func() {
		defer close(lines)
		for sh.in.Scan() {
			select {
			case lines <- sh.in.Text():
			case <-stop:
				return
			}
		}
		errc <- sh.in.Err()
	}()
	return lines, errc
}

// Prompt renders "<appName>:<remoteDir>:>".
func (sh *Shell) Prompt() string {
	return fmt.Sprintf("%s:%s:>", sh.state.AppName(), sh.state.RemoteDisplay())
}

// Done reports whether a terminating command has run.
func (sh *Shell) Done() bool {
	return sh.done
}

func (sh *Shell) evaluate(ctx context.Context, line string) {
	sh.state.AddHistory(line)

	tokens := Tokenize(line)
	if len(tokens) == 0 || tokens[0] == "" {
		sh.printf("Huh? What!\n")
		sh.state.DropLastHistory()
		return
	}

	cmd, ok := sh.registry.lookup(tokens[0])
	if !ok {
		sh.printf("I don't understand!\n")
		sh.printf("The command: '%s' is unknown. Try 'help' for list of shell commands.\n", tokens[0])
		sh.state.DropLastHistory()
		sh.metrics.RecordCommand("unknown", monitoring.OutcomeUnknown)
		return
	}

	err := sh.dispatch(ctx, cmd, tokens[1:])
	sh.state.CountCommand()

	if err != nil {
		sh.metrics.RecordCommand(cmd.Name, monitoring.OutcomeError)
		sh.logger.Debug("command failed", zap.String("command", cmd.Name), zap.Error(err))
		sh.renderError(err)
		return
	}
	sh.metrics.RecordCommand(cmd.Name, monitoring.OutcomeOK)
}

// dispatch runs the handler. A panic is recovered and returned as an error so
// the loop keeps going.
func (sh *Shell) dispatch(ctx context.Context, cmd *Command, args []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			sh.logger.Error("command panicked",
				zap.String("command", cmd.Name),
				zap.Any("panic", r),
				zap.Stack("stack"))
			err = fmt.Errorf("%s: panic: %v", cmd.Name, r)
		}
	}()

	if err := cmd.checkArgs(args); err != nil {
		return err
	}
	return cmd.run(sh, ctx, args)
}

func (sh *Shell) renderError(err error) {
	var argErr *ArgumentCountError
	switch {
	case errors.As(err, &argErr):
		sh.printf("Error: The %s. Usage: %s\n", argErr.Error(), argErr.Usage)
	case errors.Is(err, session.ErrNotConnected):
		sh.printf("Not connected to DropBox!\n")
	default:
		sh.printf("Evaluate error: %v\n", err)
	}
}

// finish is the single exit path: stamp the end time, close the connection,
// say goodbye, report and end any transcript. No step blocks a later one.
func (sh *Shell) finish() {
	sh.state.Finish()

	if sh.state.Connected() {
		sh.closeConnection()
	}
	sh.printf("Goodbye!\n")
	sh.printReport()
	if sh.out.Recording() {
		sh.endTranscript()
	}
	sh.done = true
}

func (sh *Shell) banner() {
	sh.printf("%s Version %s\n\n", aboutMessage, Version)
	sh.printf("%s\n\n", startMessage)
	sh.printf("%s\n\n", welcomeMessage)
}

func (sh *Shell) printf(format string, args ...interface{}) {
	sh.out.Printf(format, args...)
}
