package shell

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/GriffinCanCode/dbxshell/internal/localfs"
	"github.com/GriffinCanCode/dbxshell/internal/shared/paths"
)

func localCommands() []Command {
	return []Command{
		{Name: "lcd", Params: "( <path> | .. )", Summary: "change local current working directory.", MaxArgs: 1, run: (*Shell).cmdLcd},
		{Name: "lcp", Params: "<source-path> <target-path>", Summary: "copy local file or directory.", MinArgs: 2, MaxArgs: 2, run: (*Shell).cmdLcp},
		{Name: "lrm", Aliases: []string{"ldel"}, Params: "<path>", Summary: "delete local file.", MinArgs: 1, MaxArgs: 1, run: (*Shell).cmdLrm},
		{Name: "ldir", Summary: "list local directories and files.", run: (*Shell).cmdLdir},
		{Name: "lfind", Params: "<path> <glob>", Summary: "search in local path for file or directory that matches glob.", MinArgs: 2, MaxArgs: 2, run: (*Shell).cmdLfind},
		{Name: "lmdir", Params: "<path>", Summary: "create local directory.", MinArgs: 1, MaxArgs: 1, run: (*Shell).cmdLmdir},
		{Name: "lrdir", Aliases: []string{"lrd"}, Params: "<path>", Summary: "remove local directory.", MinArgs: 1, MaxArgs: 1, run: (*Shell).cmdLrdir},
		{Name: "lrn", Params: "<source-path> <target-path>", Summary: "rename local file or directory.", MinArgs: 2, MaxArgs: 2, run: (*Shell).cmdLrn},
		{Name: "lwd", Summary: "print local current working directory.", run: (*Shell).cmdLwd},
	}
}

func (sh *Shell) localPath(token string) string {
	p, _ := sh.state.ResolveLocal(token)
	return p
}

func (sh *Shell) cmdLcd(_ context.Context, args []string) error {
	token := ""
	if len(args) == 1 {
		token = args[0]
	}

	p, status := sh.state.ResolveLocal(token)
	if status == paths.StatusNoSuchPath {
		sh.printf("Change local directory: already at root '/' directory.\n")
		return nil
	}
	if !sh.fs.IsDir(p) {
		sh.printf("Error: Path '%s' does not exist!\n", p)
		return nil
	}

	sh.state.SetLocalCwd(p)
	sh.printf("Change local directory to %s\n", p)
	return nil
}

func (sh *Shell) cmdLwd(_ context.Context, _ []string) error {
	sh.printf("%s\n", sh.state.LocalCwd())
	return nil
}

func (sh *Shell) cmdLdir(_ context.Context, _ []string) error {
	cwd := sh.state.LocalCwd()
	entries, err := sh.fs.List(cwd)
	if err != nil {
		if errors.Is(err, localfs.ErrNotFound) {
			sh.printf("Error: Path '%s' does not exist!\n", cwd)
			return nil
		}
		return err
	}

	for _, e := range entries {
		mod := e.Modified.Format(listTimeLayout)
		if e.IsDir {
			sh.printf("%20s  %12d [%s]\n", mod, e.Size, e.Name)
		} else {
			sh.printf("%20s  %12d %s\n", mod, e.Size, e.Name)
		}
	}
	return nil
}

func (sh *Shell) cmdLcp(ctx context.Context, args []string) error {
	src, dst := sh.localPath(args[0]), sh.localPath(args[1])
	if !sh.fs.Exists(src) {
		sh.printf("Local source file: %s not found!\n", args[0])
		return nil
	}
	if sh.fs.Exists(dst) {
		sh.printf("Local target file: %s exists!\n", args[1])
		return nil
	}

	if _, err := sh.fs.Copy(ctx, src, dst); err != nil {
		return err
	}
	sh.printf("Local file: %s copied %s.\n", filepath.Base(src), filepath.Base(dst))
	return nil
}

func (sh *Shell) cmdLrn(_ context.Context, args []string) error {
	src, dst := sh.localPath(args[0]), sh.localPath(args[1])
	if !sh.fs.Exists(src) {
		sh.printf("Local source file: %s not found!\n", args[0])
		return nil
	}
	if sh.fs.Exists(dst) {
		sh.printf("Local target file: %s exists!\n", args[1])
		return nil
	}

	if err := sh.fs.Rename(src, dst); err != nil {
		return err
	}
	sh.printf("Local file: %s renamed %s.\n", filepath.Base(src), filepath.Base(dst))
	return nil
}

func (sh *Shell) cmdLrm(_ context.Context, args []string) error {
	p := sh.localPath(args[0])
	if !sh.fs.Exists(p) {
		sh.printf("Local file: %s not found!\n", args[0])
		return nil
	}
	if sh.fs.IsDir(p) {
		sh.printf("Error: Path '%s' is a directory! Use 'lrdir' to remove it.\n", p)
		return nil
	}

	if err := sh.fs.Remove(p); err != nil {
		return err
	}
	sh.printf("Local file: %s deleted.\n", filepath.Base(p))
	return nil
}

func (sh *Shell) cmdLmdir(_ context.Context, args []string) error {
	p := sh.localPath(args[0])
	if sh.fs.Exists(p) {
		if sh.fs.IsDir(p) {
			sh.printf("Error: Path '%s' already exists as directory!\n", p)
		} else {
			sh.printf("Error: Path '%s' already exists as file!\n", p)
		}
		return nil
	}

	if err := sh.fs.Mkdir(p); err != nil {
		return err
	}
	sh.printf("Created local directory: '%s'.\n", p)
	return nil
}

func (sh *Shell) cmdLrdir(_ context.Context, args []string) error {
	p := sh.localPath(args[0])
	if !sh.fs.IsDir(p) {
		sh.printf("Error: Path '%s' directory does not exist!\n", p)
		return nil
	}

	err := sh.fs.RemoveDir(p)
	switch {
	case errors.Is(err, localfs.ErrNotEmpty):
		sh.printf("Error: Path '%s' directory is not empty!!\n", p)
		return nil
	case err != nil:
		return err
	}
	sh.printf("Directory: '%s' removed.\n", p)
	return nil
}

func (sh *Shell) cmdLfind(ctx context.Context, args []string) error {
	root := sh.localPath(args[0])
	if !sh.fs.IsDir(root) {
		sh.printf("Error: Path '%s' does not exist!\n", root)
		return nil
	}

	matches, err := sh.fs.Find(ctx, root, args[1])
	switch {
	case errors.Is(err, localfs.ErrBadPattern):
		sh.printf("Local find pattern syntax error: %s\n", args[1])
		return nil
	case err != nil:
		sh.printf("Local find unknown error: %s\n", err)
		return nil
	}

	if len(matches) == 0 {
		sh.printf("No matches found!\n")
		return nil
	}
	for _, m := range matches {
		sh.printf("Found:    %s\n", m)
	}
	return nil
}
