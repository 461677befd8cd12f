package shell

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/dbxshell/internal/remote"
	"github.com/GriffinCanCode/dbxshell/internal/shared/paths"
)

const listTimeLayout = "Jan 02 2006 15:04:05:PM"

const (
	kb = 1024
	mb = 1024 * kb
	gb = 1024 * mb
)

func remoteCommands() []Command {
	return []Command{
		{Name: "open", Params: "[<application-name> <access-token>]", Summary: "connect shell with application name and access token.", MaxArgs: 2, run: (*Shell).cmdOpen},
		{Name: "close", Summary: "close account connection.", run: (*Shell).cmdClose},
		{Name: "cd", Aliases: []string{"chdir", "cdir"}, Params: "( <path> | .. )", Summary: "change remote directory.", MaxArgs: 1, run: (*Shell).cmdCd},
		{Name: "pwd", Summary: "print remote current working directory.", run: (*Shell).cmdPwd},
		{Name: "dir", Aliases: []string{"ls"}, Summary: "list remote directories and files.", run: (*Shell).cmdDir},
		{Name: "cp", Params: "<source-path> <target-path>", Summary: "copy remote file or directory.", MinArgs: 2, MaxArgs: 2, run: (*Shell).cmdCopy},
		{Name: "rm", Aliases: []string{"del"}, Params: "<path>", Summary: "delete remote file entry.", MinArgs: 1, MaxArgs: 1, run: (*Shell).cmdRemove},
		{Name: "mv", Aliases: []string{"rn", "ren"}, Params: "<source-path> <target-path>", Summary: "rename remote file or directory.", MinArgs: 2, MaxArgs: 2, run: (*Shell).cmdMove},
		{Name: "mkdir", Aliases: []string{"md", "mdir"}, Params: "<path>", Summary: "make remote directory.", MinArgs: 1, MaxArgs: 1, run: (*Shell).cmdMkdir},
		{Name: "rmdir", Aliases: []string{"rd", "rdir"}, Params: "<path>", Summary: "remove remote directory.", MinArgs: 1, MaxArgs: 1, run: (*Shell).cmdRmdir},
		{Name: "get", Params: "<path>", Summary: "get download remote file to local directory.", MinArgs: 1, MaxArgs: 1, run: (*Shell).cmdGet},
		{Name: "put", Params: "<path>", Summary: "put upload local file to remote directory.", MinArgs: 1, MaxArgs: 1, run: (*Shell).cmdPut},
		{Name: "find", Params: "<path> <query>", Summary: "search in remote path for file or directory that matches query.", MinArgs: 2, MaxArgs: 2, run: (*Shell).cmdFind},
		{Name: "info", Params: "<path>", Summary: "print metadata information about entry at path.", MinArgs: 1, MaxArgs: 1, run: (*Shell).cmdInfo},
		{Name: "account", Summary: "print account status information.", run: (*Shell).cmdAccount},
		{Name: "space", Summary: "print storage space utilization.", run: (*Shell).cmdSpace},
	}
}

// remotePath resolves a token against the remote working directory. ".."
// above the root resolves to the root.
func (sh *Shell) remotePath(token string) string {
	p, _ := sh.state.ResolveRemote(token)
	return paths.CleanRemote(p)
}

func (sh *Shell) cmdOpen(ctx context.Context, args []string) error {
	if sh.state.Connected() {
		sh.printf("Already connected to DropBox!\n")
		return nil
	}

	var appName, token string
	switch len(args) {
	case 2:
		appName, token = args[0], args[1]
	case 0:
		appName, token = sh.state.AppName(), sh.state.AccessToken()
		if appName != "" && token != "" {
			break
		}
		fallthrough
	default:
		return &ArgumentCountError{
			Command: "open",
			Got:     len(args),
			Expect:  "requires 2 parameters unless app name and access token are already set",
			Usage:   "open [<application-name> <access-token>]",
		}
	}

	if err := sh.state.Open(ctx, appName, token); err != nil {
		sh.printf("%s\n", Classify(OpOpen, err))
		return nil
	}
	sh.printf("Connected '%s' to Dropbox.\n", sh.state.Account().DisplayName)
	return nil
}

func (sh *Shell) cmdClose(_ context.Context, _ []string) error {
	if !sh.state.Connected() {
		sh.printf("Cannot close; not connected to DropBox!\n")
		return nil
	}
	sh.closeConnection()
	return nil
}

func (sh *Shell) closeConnection() {
	if err := sh.state.Close(); err != nil {
		sh.logger.Warn("close failed", zap.Error(err))
		sh.printf("General error close connection: %s\n", err)
		return
	}
	sh.printf("Connection to DropBox disconnected.\n")
}

func (sh *Shell) cmdCd(ctx context.Context, args []string) error {
	if _, err := sh.state.Client(); err != nil {
		return err
	}

	token := ""
	if len(args) == 1 {
		token = args[0]
	}
	cwd := sh.state.RemoteCwd()
	p, status := sh.state.ResolveRemote(token)
	p = paths.CleanRemote(p)

	if status == paths.StatusAtRoot || (p == paths.RemoteRoot && cwd == paths.RemoteRoot) {
		sh.printf("Change remote directory: already at root '/' directory.\n")
		return nil
	}
	if p != paths.RemoteRoot && !sh.state.HasFolder(ctx, p) {
		sh.printf("Change directory: directory '%s' does not exist!\n", p)
		return nil
	}

	sh.state.SetRemoteCwd(p)
	sh.printf("Change directory to %s.\n", sh.state.RemoteDisplay())
	return nil
}

func (sh *Shell) cmdPwd(_ context.Context, _ []string) error {
	if _, err := sh.state.Client(); err != nil {
		return err
	}
	sh.printf("%s\n", sh.state.RemoteDisplay())
	return nil
}

func (sh *Shell) cmdDir(ctx context.Context, _ []string) error {
	client, err := sh.state.Client()
	if err != nil {
		return err
	}

	entries, err := client.ListFolder(ctx, sh.state.RemoteCwd())
	if err != nil {
		sh.printf("%s\n", Classify(OpList, err))
		return nil
	}
	for _, e := range entries {
		if e.IsFolder() {
			sh.printf("....................... ------------- [%s]\n", e.Name)
			continue
		}
		sh.printf("%22s %13d %s\n", e.ClientModified.Format(listTimeLayout), e.Size, e.Name)
	}
	return nil
}

// relocation carries the wording that differs between cp and mv.
type relocation struct {
	op       Op
	prefix   string
	done     string
	do       func(remote.Service, context.Context, string, string) (*remote.Entry, error)
	announce bool
}

var (
	copyRelocation = relocation{
		op: OpCopy, prefix: "Copy remote", done: "copied to",
		do: remote.Service.Copy, announce: true,
	}
	moveRelocation = relocation{
		op: OpMove, prefix: "Remote", done: "renamed",
		do: remote.Service.Move,
	}
)

func (sh *Shell) cmdCopy(ctx context.Context, args []string) error {
	return sh.relocate(ctx, copyRelocation, args[0], args[1])
}

func (sh *Shell) cmdMove(ctx context.Context, args []string) error {
	return sh.relocate(ctx, moveRelocation, args[0], args[1])
}

func (sh *Shell) relocate(ctx context.Context, r relocation, srcToken, tgtToken string) error {
	client, err := sh.state.Client()
	if err != nil {
		return err
	}

	src, tgt := sh.remotePath(srcToken), sh.remotePath(tgtToken)
	if r.announce {
		sh.printf("Copy srcPath: %s tgtPath: %s\n", src, tgt)
	}
	if !sh.state.HasPath(ctx, src) {
		sh.printf("%s source path: %s not found!\n", r.prefix, src)
		return nil
	}
	if sh.state.HasPath(ctx, tgt) {
		sh.printf("%s target path: %s exists!\n", r.prefix, tgt)
		return nil
	}

	if _, err := r.do(client, ctx, src, tgt); err != nil {
		sh.printf("%s\n", Classify(r.op, err))
		return nil
	}
	sh.printf("Remote path: %s %s %s.\n", src, r.done, tgt)
	return nil
}

func (sh *Shell) cmdRemove(ctx context.Context, args []string) error {
	client, err := sh.state.Client()
	if err != nil {
		return err
	}

	p := sh.remotePath(args[0])
	if !sh.state.HasFile(ctx, p) {
		sh.printf("Path: '%s' entry is not file!\n", args[0])
		return nil
	}
	e, err := client.Delete(ctx, p)
	if err != nil {
		sh.printf("%s\n", Classify(OpDeleteFile, err))
		return nil
	}
	sh.printf("Deleted file: %s\n", e.PathLower)
	return nil
}

func (sh *Shell) cmdMkdir(ctx context.Context, args []string) error {
	client, err := sh.state.Client()
	if err != nil {
		return err
	}

	e, err := client.CreateFolder(ctx, sh.remotePath(args[0]))
	if err != nil {
		sh.printf("%s\n", Classify(OpCreateFolder, err))
		return nil
	}
	sh.printf("Created %s remote directory.\n", e.PathDisplay)
	return nil
}

func (sh *Shell) cmdRmdir(ctx context.Context, args []string) error {
	client, err := sh.state.Client()
	if err != nil {
		return err
	}

	p := sh.remotePath(args[0])
	if p == paths.RemoteRoot {
		sh.printf("Remove directory: cannot remove the root '/' directory.\n")
		return nil
	}
	if !sh.state.HasFolder(ctx, p) {
		sh.printf("Path: '%s' entry is not folder!\n", p)
		return nil
	}
	e, err := client.Delete(ctx, p)
	if err != nil {
		sh.printf("%s\n", Classify(OpRemoveDir, err))
		return nil
	}
	sh.printf("Removed directory: %s\n", e.PathDisplay)
	return nil
}

func (sh *Shell) cmdFind(ctx context.Context, args []string) error {
	client, err := sh.state.Client()
	if err != nil {
		return err
	}

	root := paths.RemoteRoot
	if args[0] != "/" && args[0] != "." {
		root = sh.remotePath(args[0])
	}
	matches, err := client.Search(ctx, root, args[1])
	if err != nil {
		sh.printf("%s\n", Classify(OpSearch, err))
		return nil
	}
	if len(matches) == 0 {
		sh.printf("No matches found!\n")
		return nil
	}

	sh.printf("Found %d match in path for query!\n", len(matches))
	for _, m := range matches {
		if m.IsFolder() {
			sh.printf("    Dir:     %s\n", m.PathLower)
		} else {
			sh.printf("    File:    %s\n", m.PathLower)
		}
	}
	return nil
}

func (sh *Shell) cmdInfo(ctx context.Context, args []string) error {
	client, err := sh.state.Client()
	if err != nil {
		return err
	}

	p := sh.remotePath(args[0])
	e, err := client.Metadata(ctx, p)
	if err != nil {
		if remote.AsError(err).Kind == remote.ErrPathLookup {
			sh.printf("\nInfo not available for path: '%s' entry!\n", paths.DisplayRemote(p))
			return nil
		}
		sh.printf("%s\n", Classify(OpMetadata, err))
		return nil
	}

	sh.printf("\n")
	if e.IsFile() {
		sh.printf("Info for file:   %s\n\n", p)
		sh.printf("Ident:           %s\n", identOf(e.ID))
		sh.printf("Name:            %s\n", e.Name)
		sh.printf("Path:            %s\n", e.PathDisplay)
		sh.printf("Revision:        %s\n", e.Rev)
		sh.printf("Server Modified: %s\n", e.ServerModified.Format(sessionTimeLayout))
		sh.printf("Client Modified: %s\n", e.ClientModified.Format(sessionTimeLayout))
		sh.printf("Size:            %d-bytes %d-Kbytes %d-Mbytes\n", e.Size, e.Size/kb, e.Size/mb)
		return nil
	}

	sh.printf("Info for folder: %s\n\n", p)
	sh.printf("Ident:           %s\n", identOf(e.ID))
	sh.printf("Name:            %s\n", e.Name)
	sh.printf("Path Display:    %s\n", e.PathDisplay)
	children, err := client.ListFolder(ctx, p)
	if err != nil {
		sh.printf("%s\n", Classify(OpList, err))
		return nil
	}
	sh.printf("Entry Count:     %-4d\n", len(children))
	return nil
}

// identOf strips the "id:" namespace from a Dropbox id.
func identOf(id string) string {
	if i := strings.IndexByte(id, ':'); i >= 0 {
		return id[i+1:]
	}
	return id
}

func (sh *Shell) cmdAccount(ctx context.Context, _ []string) error {
	client, err := sh.state.Client()
	if err != nil {
		return err
	}

	acct := sh.state.Account()
	sh.printf("%s %s %s User: %s %s E-mail: %s\n",
		acct.Country, acct.Locale, strings.ToUpper(string(acct.Type)),
		acct.AbbreviatedName, acct.DisplayName, acct.Email)

	usage, err := client.SpaceUsage(ctx)
	if err != nil {
		sh.printf("%s\n", Classify(OpAccount, err))
		return nil
	}
	team := sh.state.Team()
	if team {
		sh.printf("Id: %s Space: %d-Gb Using: %d-Mb\n", acct.ID, usage.Allocated(team)/gb, usage.Used/mb)
	} else {
		sh.printf("Id: %s Space: %d-Mb Using: %d-Mb\n", acct.ID, usage.Allocated(team)/mb, usage.Used/mb)
	}
	return nil
}

func (sh *Shell) cmdSpace(ctx context.Context, _ []string) error {
	client, err := sh.state.Client()
	if err != nil {
		return err
	}

	usage, err := client.SpaceUsage(ctx)
	if err != nil {
		sh.printf("%s\n", Classify(OpSpace, err))
		return nil
	}
	total := usage.Allocated(sh.state.Team())
	used := usage.Used
	free := total - used

	sh.printf("DropBox Storage Space Utilization:\n\n")
	sh.printf("    Total:%16d-bytes     Used:%16d-bytes     Free:%16d-bytes\n", total, used, free)
	sh.printf("    Total:%16d-Kb        Used:%16d-Kb        Free:%16d-Kb\n", total/kb, used/kb, free/kb)
	sh.printf("    Total:%16d-Mb        Used:%16d-Mb        Free:%16d-Mb\n", total/mb, used/mb, free/mb)
	sh.printf("    Total:%16d-Gb        Used:%16d-Gb        Free:%16d-Gb\n\n", total/gb, used/gb, free/gb)
	return nil
}

// cmdGet downloads a remote file into the local working directory. An
// existing local file is never overwritten; a failed download leaves nothing
// behind.
func (sh *Shell) cmdGet(ctx context.Context, args []string) error {
	client, err := sh.state.Client()
	if err != nil {
		return err
	}

	src := sh.remotePath(args[0])
	if !sh.state.HasFile(ctx, src) {
		sh.printf("File with name %s does not exist!\n", args[0])
		return nil
	}
	dst := filepath.Join(sh.state.LocalCwd(), paths.Base(src))
	if sh.fs.Exists(dst) {
		sh.printf("Local target file: %s exists!\n", dst)
		return nil
	}

	w, err := sh.fs.Create(dst)
	if err != nil {
		return err
	}
	counter := &countingWriter{w: w}
	start := sh.state.Now()
	e, err := client.Download(ctx, src, counter)
	if cerr := w.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		if rerr := sh.fs.Remove(dst); rerr != nil {
			sh.logger.Warn("removing partial download failed", zap.String("path", dst), zap.Error(rerr))
		}
		sh.printf("%s\n", Classify(OpGet, err))
		return nil
	}

	elapsed := sh.state.Now().Sub(start)
	sh.state.AddDownloaded(counter.n)
	sh.printf("Get downloaded file: '%s' total bytes: %d time: %d seconds at %4.3f bytes per second.\n",
		e.Name, counter.n, int64(elapsed.Seconds()), rate(counter.n, elapsed))
	if mtype := sh.fs.DetectType(dst); mtype != "" {
		sh.printf("Content type: %s\n", mtype)
	}
	return nil
}

// cmdPut uploads a local file into the remote working directory under its
// base name. An existing remote file is never overwritten.
func (sh *Shell) cmdPut(ctx context.Context, args []string) error {
	client, err := sh.state.Client()
	if err != nil {
		return err
	}

	src, _ := sh.state.ResolveLocal(args[0])
	if !sh.fs.Exists(src) || sh.fs.IsDir(src) {
		sh.printf("File with name %s does not exist!\n", args[0])
		return nil
	}
	dst := sh.remotePath(paths.Base(src))
	if sh.state.HasPath(ctx, dst) {
		sh.printf("File with name %s already exists!\n", args[0])
		return nil
	}

	r, _, err := sh.fs.Open(src)
	if err != nil {
		return err
	}
	defer r.Close()

	start := sh.state.Now()
	e, err := client.Upload(ctx, dst, r)
	if err != nil {
		sh.printf("%s\n", Classify(OpPut, err))
		return nil
	}

	elapsed := sh.state.Now().Sub(start)
	sh.state.AddUploaded(e.Size)
	sh.printf("Put uploaded file: '%s' total bytes: %d time: %d seconds at %4.3f bytes per second.\n",
		e.Name, e.Size, int64(elapsed.Seconds()), rate(e.Size, elapsed))
	if mtype := sh.fs.DetectType(src); mtype != "" {
		sh.printf("Content type: %s\n", mtype)
	}
	return nil
}

// rate is bytes per second; a transfer faster than the clock resolution
// reports its size.
func rate(n int64, elapsed time.Duration) float64 {
	if secs := elapsed.Seconds(); secs > 0 {
		return float64(n) / secs
	}
	return float64(n)
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
