package shell

import (
	"context"
	"errors"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/dbxshell/internal/transcript"
)

const sessionTimeLayout = "Mon Jan 02 15:04:05 MST 2006"

func builtinCommands() []Command {
	return []Command{
		{Name: "access", Params: "[<access-token>]", Summary: "report or set account access token.", MaxArgs: 1, run: (*Shell).cmdAccess},
		{Name: "appname", Params: "[<application-name>]", Summary: "get or set account application name.", MaxArgs: 1, run: (*Shell).cmdAppName},
		{Name: "bye", Aliases: []string{"exit", "quit"}, Summary: "exit shell and if connected close.", run: (*Shell).cmdBye},
		{Name: "help", Summary: "list shell commands.", run: (*Shell).cmdHelp},
		{Name: "history", Summary: "list the valid shell commands entered.", run: (*Shell).cmdHistory},
		{Name: "ready", Aliases: []string{"status"}, Summary: "print ready status of shell.", run: (*Shell).cmdReady},
		{Name: "report", Summary: "report on shell summaries and totals.", run: (*Shell).cmdReport},
		{Name: "script", Params: "[<filename>]", Summary: "make transcript of shell session to file.", MaxArgs: 1, run: (*Shell).cmdScript},
		{Name: "ver", Aliases: []string{"version"}, Summary: "print shell version information.", run: (*Shell).cmdVersion},
	}
}

func (sh *Shell) cmdAccess(_ context.Context, args []string) error {
	if len(args) == 0 {
		if sh.state.AccessToken() != "" {
			sh.printf("Access token set.\n")
		} else {
			sh.printf("Access token is not set!\n")
		}
		return nil
	}

	if !sh.state.SetAccessToken(args[0]) {
		sh.printf("Already set access token!\n")
		return nil
	}
	sh.printf("Set access to '%s' token.\n", maskToken(args[0]))
	return nil
}

// maskToken keeps only the ends of a token so transcripts do not leak it.
func maskToken(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

func (sh *Shell) cmdAppName(_ context.Context, args []string) error {
	if len(args) == 0 {
		if name := sh.state.AppName(); name != "" {
			sh.printf("The app name is %s\n", name)
		} else {
			sh.printf("The app name is not set!\n")
		}
		return nil
	}

	if !sh.state.SetAppName(args[0]) {
		sh.printf("Already set app name!\n")
		return nil
	}
	sh.printf("Set app name to %s\n", args[0])
	return nil
}

func (sh *Shell) cmdBye(_ context.Context, _ []string) error {
	sh.finish()
	return nil
}

func (sh *Shell) cmdHelp(_ context.Context, _ []string) error {
	sh.printf("DropBox Shell Commands and Parameters are:\n\n")
	for _, cmd := range sh.registry.commands {
		sh.printf("    %-44s - %s\n", cmd.Usage(), cmd.Summary)
	}
	sh.printf("\n")
	return nil
}

func (sh *Shell) cmdHistory(_ context.Context, _ []string) error {
	sh.printf("Shell Command History:\n")
	for i, line := range sh.state.History() {
		sh.printf("    % 3d  %s\n", i, line)
	}
	return nil
}

func (sh *Shell) cmdReady(_ context.Context, _ []string) error {
	if sh.state.Connected() {
		sh.printf("Ready! Shell is connected to DropBox!\n")
	} else {
		sh.printf("Not Ready! Shell is not connected to DropBox! Use command 'open' to open connection with shell.\n")
	}

	if sh.out.Recording() {
		sh.printf("Creating a transcript of shell session command usage to file: %s.\n", filepath.Base(sh.out.Name()))
	} else {
		sh.printf("No current transcript of shell session. Use command 'script' <filename> to create a transcript.\n")
	}
	return nil
}

func (sh *Shell) cmdReport(_ context.Context, _ []string) error {
	sh.printReport()
	return nil
}

func (sh *Shell) printReport() {
	r := sh.state.Report()

	sh.printf("\n")
	sh.printf("    [============>>> DropBox Shell Report <<<============]\n\n")
	sh.printf("      Platform: %s %s\n", r.OS, r.Arch)
	sh.printf("      Userinfo: %s:[%s]\n", r.User, r.UserHome)
	sh.printf("      Home Dir: %s\n\n", r.HomeDir)
	sh.printf("      Session Begin: %s\n", r.Begin.Format(sessionTimeLayout))
	sh.printf("      Session Close: %s\n\n", r.Close.Format(sessionTimeLayout))
	sh.printf("           === Total for Session ===\n\n")
	sh.printf("      Total command count:%4d-commands\n", r.Commands)
	sh.printf("      Total session timer:%4d-seconds\n\n", int64(r.Elapsed.Seconds()))
	sh.printf("           === Total Data Traffic ===\n\n")
	sh.printf("      Total bytes data get:%10d-bytes\n", r.BytesDownloaded)
	sh.printf("      Total bytes data put:%10d-bytes\n\n", r.BytesUploaded)
	sh.printf("    [<<<=========----------------------------=========>>>]\n\n")
}

// cmdScript toggles the transcript: it ends a running one, otherwise starts
// a new one in the local working directory.
func (sh *Shell) cmdScript(_ context.Context, args []string) error {
	if sh.out.Recording() {
		sh.endTranscript()
		return nil
	}

	name := ""
	if len(args) == 1 {
		name = args[0]
	} else {
		name = transcript.DefaultName(sh.prefix, sh.state.Now())
		sh.printf("Using default filename: %s for transcript.\n", name)
	}
	path, _ := sh.state.ResolveLocal(name)

	if err := sh.out.Begin(path); err != nil {
		if errors.Is(err, transcript.ErrAlreadyExists) {
			sh.printf("The transcript file: %s already exists!\n", name)
			return nil
		}
		sh.printf("Transcript start; file IO error occurred: %s\n", err)
		return nil
	}
	sh.logger.Info("transcript started", zap.String("path", path))
	sh.printf("Transcript has started with next command.\n")
	return nil
}

// endTranscript writes the closing lines into the transcript, then closes it.
func (sh *Shell) endTranscript() {
	name := filepath.Base(sh.out.Name())
	sh.printf("Transcript has finished for last command.\n")
	sh.printf("Transcript of shell session written to file: %s.\n", name)

	path, err := sh.out.End()
	if err != nil {
		sh.printf("Transcript close; file unknown error occurred: %s\n", err)
		return
	}
	sh.logger.Info("transcript finished", zap.String("path", path))
}

func (sh *Shell) cmdVersion(_ context.Context, _ []string) error {
	sh.printf("DropBox shell version %s.\n", Version)
	return nil
}
