package shell

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/dbxshell/internal/remote"
)

func TestCdAtRoot(t *testing.T) {
	h := newHarness(t)
	out := h.run(t, "open a t", "cd ..", "cd", "cd /", "pwd")

	assert.Equal(t, 3, strings.Count(out, "Change remote directory: already at root '/' directory.\n"))
	assert.Contains(t, out, "a:/:>/\n")
}

func TestCdNavigation(t *testing.T) {
	h := newHarness(t)
	h.fake.AddFolder("/docs/sub")
	h.fake.AddFile("/docs/a.txt", []byte("x"))

	out := h.run(t, "open a t", "cd docs", "cd sub", "pwd", "cd ..", "cd nope", "cd a.txt", "cd /docs/sub/", "cd")

	assertInOrder(t, out,
		"Change directory to /docs.\n",
		"a:/docs:>Change directory to /docs/sub.\n",
		"a:/docs/sub:>/docs/sub\n",
		"Change directory to /docs.\n",
		"Change directory: directory '/docs/nope' does not exist!\n",
		"Change directory: directory '/docs/a.txt' does not exist!\n",
		"Change directory to /docs/sub.\n",
		"Change directory to /.\n",
	)
}

func TestQuotedRemotePaths(t *testing.T) {
	h := newHarness(t)
	h.fake.AddFile("/my docs/a b.txt", []byte("hello"))

	out := h.run(t, "open a t", "cd 'my docs'", `info "a b.txt"`)

	assert.Contains(t, out, "Change directory to /my docs.\n")
	assert.Contains(t, out, "Info for file:   /my docs/a b.txt\n")
}

func TestDirListing(t *testing.T) {
	h := newHarness(t)
	h.fake.AddFolder("/photos")
	h.fake.AddFile("/a.txt", []byte("abc"))

	out := h.run(t, "open a t", "ls", "dir extra")

	assert.Contains(t, out, "....................... ------------- [photos]\n")
	assert.Contains(t, out, fmt.Sprintf("%22s %13d %s\n", "May 01 2024 12:00:00:PM", 3, "a.txt"))
	assert.Equal(t, 1, h.fake.Calls("list"))
}

func TestDirListingError(t *testing.T) {
	h := newHarness(t)
	h.fake.FailNext("list", remote.NewServiceError("HTTP 500", nil))

	out := h.run(t, "open a t", "ls")

	assert.Contains(t, out, "List remote directory: some other DropBox remote error listing directory occurred! HTTP 500.\n")
}

func TestCopy(t *testing.T) {
	h := newHarness(t)
	h.fake.AddFile("/a.txt", []byte("data"))

	out := h.run(t, "open a t", "cp a.txt b.txt", "cp a.txt b.txt", "cp missing.txt c.txt")

	assertInOrder(t, out,
		"Copy srcPath: /a.txt tgtPath: /b.txt\n",
		"Remote path: /a.txt copied to /b.txt.\n",
		"Copy remote target path: /b.txt exists!\n",
		"Copy remote source path: /missing.txt not found!\n",
	)
	assert.Equal(t, 1, h.fake.Calls("copy"))
	content, ok := h.fake.Content("/b.txt")
	require.True(t, ok)
	assert.Equal(t, "data", string(content))
	assert.True(t, h.fake.Exists("/a.txt"))
}

func TestCopyInSubdirectory(t *testing.T) {
	h := newHarness(t)
	h.fake.AddFile("/docs/a.txt", []byte("data"))
	h.fake.AddFolder("/backup")

	out := h.run(t, "open a t", "cd docs", "cp a.txt /backup/a.txt")

	assert.Contains(t, out, "Remote path: /docs/a.txt copied to /backup/a.txt.\n")
	assert.True(t, h.fake.Exists("/backup/a.txt"))
}

func TestCopyRelocationError(t *testing.T) {
	h := newHarness(t)
	h.fake.AddFile("/a.txt", []byte("data"))
	h.fake.FailNext("copy", remote.NewRelocationError("too_many_files/"))

	out := h.run(t, "open a t", "cp a.txt b.txt", "pwd")

	assert.Contains(t, out, "Copy path: some other relocation error in copy occurred! too_many_files/.\n")
	assert.Contains(t, out, "a:/:>/\n")
	assert.False(t, h.fake.Exists("/b.txt"))
}

func TestMove(t *testing.T) {
	h := newHarness(t)
	h.fake.AddFile("/a.txt", []byte("data"))
	h.fake.AddFile("/taken.txt", nil)

	out := h.run(t, "open a t", "mv a.txt c.txt", "ren c.txt taken.txt", "rn nope.txt x.txt")

	assertInOrder(t, out,
		"Remote path: /a.txt renamed /c.txt.\n",
		"Remote target path: /taken.txt exists!\n",
		"Remote source path: /nope.txt not found!\n",
	)
	assert.False(t, h.fake.Exists("/a.txt"))
	assert.True(t, h.fake.Exists("/c.txt"))
	assert.NotContains(t, out, "Copy srcPath")
}

func TestMkdirRmdirRm(t *testing.T) {
	h := newHarness(t)
	h.fake.AddFile("/a.txt", []byte("abc"))

	out := h.run(t,
		"open a t",
		"mkdir new",
		"md new",
		"rmdir a.txt",
		"rd new",
		"rmdir /",
		"rm new",
		"rm a.txt",
		"del a.txt",
	)

	assertInOrder(t, out,
		"Created /new remote directory.\n",
		"Make directory: file or directory already exists at the directory path.\n",
		"Path: '/a.txt' entry is not folder!\n",
		"Removed directory: /new\n",
		"Remove directory: cannot remove the root '/' directory.\n",
		"Path: 'new' entry is not file!\n",
		"Deleted file: /a.txt\n",
		"Path: 'a.txt' entry is not file!\n",
	)
	assert.False(t, h.fake.Exists("/a.txt"))
	assert.False(t, h.fake.Exists("/new"))
	assert.Equal(t, 2, h.fake.Calls("delete"))
}

func TestRemoveFileDeleteError(t *testing.T) {
	h := newHarness(t)
	h.fake.AddFile("/a.txt", []byte("abc"))
	h.fake.FailNext("delete", remote.NewWriteError(remote.WriteNoPermission, "path_write/no_write_permission/"))

	out := h.run(t, "open a t", "rm a.txt")

	assert.Contains(t, out, "Remove file: path write; file entry path has no write permission.\n")
	assert.True(t, h.fake.Exists("/a.txt"))
}

func TestFind(t *testing.T) {
	h := newHarness(t)
	h.fake.AddFile("/docs/Report.txt", []byte("x"))
	h.fake.AddFolder("/docs/reports")
	h.fake.AddFile("/other/report.md", []byte("y"))

	out := h.run(t, "open a t", "find / report", "find docs report", "find . zzz")

	assertInOrder(t, out,
		"Found 3 match in path for query!\n",
		"Found 2 match in path for query!\n",
		"    File:    /docs/report.txt\n",
		"    Dir:     /docs/reports\n",
		"No matches found!\n",
	)
}

func TestFindError(t *testing.T) {
	h := newHarness(t)
	h.fake.FailNext("search", remote.NewServiceError("HTTP 503", nil))

	out := h.run(t, "open a t", "find / x")

	assert.Contains(t, out, "Find: some other DropBox remote error find in path occurred! HTTP 503.\n")
}

func TestInfo(t *testing.T) {
	h := newHarness(t)
	h.fake.AddFile("/docs/big.bin", make([]byte, 3*1024*1024))
	h.fake.AddFile("/docs/small.txt", []byte("x"))

	out := h.run(t, "open a t", "info docs/big.bin", "cd docs", "info /docs", "info nope")

	assertInOrder(t, out,
		"Info for file:   /docs/big.bin\n",
		"Name:            big.bin\n",
		"Path:            /docs/big.bin\n",
		"Revision:        015f\n",
		"Size:            3145728-bytes 3072-Kbytes 3-Mbytes\n",
		"Info for folder: /docs\n",
		"Name:            docs\n",
		"Path Display:    /docs\n",
		"Entry Count:     2   \n",
		"Info not available for path: '/docs/nope' entry!\n",
	)
}

func TestAccountAndSpace(t *testing.T) {
	h := newHarness(t)
	out := h.run(t, "open a t", "account", "space")

	usage := h.fake.Usage
	total, used := usage.IndividualAllocated, usage.Used
	free := total - used

	assertInOrder(t, out,
		"US en BASIC User: FU Fake User E-mail: fake@example.com\n",
		"Id: dbid:fake Space: 2048-Mb Using: 1-Mb\n",
		"DropBox Storage Space Utilization:\n\n",
		fmt.Sprintf("    Total:%16d-bytes     Used:%16d-bytes     Free:%16d-bytes\n", total, used, free),
		fmt.Sprintf("    Total:%16d-Kb        Used:%16d-Kb        Free:%16d-Kb\n", total/1024, used/1024, free/1024),
		fmt.Sprintf("    Total:%16d-Gb", total/(1024*1024*1024)),
	)
}

func TestAccountTeamAllocation(t *testing.T) {
	h := newHarness(t)
	h.fake.Account.Type = remote.AccountBusiness

	out := h.run(t, "open a t", "account", "space")

	assert.Contains(t, out, "Id: dbid:fake Space: 1024-Gb Using: 1-Mb\n")
	assert.Contains(t, out, fmt.Sprintf("    Total:%16d-bytes", h.fake.Usage.TeamAllocated))
}

func TestGetAndPut(t *testing.T) {
	h := newHarness(t)
	h.fake.AddFile("/docs/report.txt", []byte("hello world"))
	require.NoError(t, os.WriteFile(filepath.Join(h.home, "up.txt"), []byte("abc"), 0o644))

	out := h.run(t,
		"open a t",
		"cd docs",
		"get report.txt",
		"get report.txt",
		"get missing.txt",
		"put up.txt",
		"put up.txt",
		"put nothing.txt",
	)

	assertInOrder(t, out,
		"Get downloaded file: 'report.txt' total bytes: 11 time: 1 seconds at 11.000 bytes per second.\n",
		"Content type: text/plain",
		"Local target file: "+filepath.Join(h.home, "report.txt")+" exists!\n",
		"File with name missing.txt does not exist!\n",
		"Put uploaded file: 'up.txt' total bytes: 3 time: 1 seconds at 3.000 bytes per second.\n",
		"File with name up.txt already exists!\n",
		"File with name nothing.txt does not exist!\n",
	)

	data, err := os.ReadFile(filepath.Join(h.home, "report.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))

	uploaded, ok := h.fake.Content("/docs/up.txt")
	require.True(t, ok)
	assert.Equal(t, "abc", string(uploaded))

	r := h.state.Report()
	assert.Equal(t, int64(11), r.BytesDownloaded)
	assert.Equal(t, int64(3), r.BytesUploaded)
	assert.Equal(t, 1, h.fake.Calls("download"))
	assert.Equal(t, 1, h.fake.Calls("upload"))
}

func TestGetFailureRemovesPartialFile(t *testing.T) {
	h := newHarness(t)
	h.fake.AddFile("/a.txt", []byte("abc"))
	h.fake.FailNext("download", remote.NewServiceError("HTTP 500", nil))

	out := h.run(t, "open a t", "get a.txt")

	assert.Contains(t, out, "Get: some other DropBox remote error in download occurred! HTTP 500.\n")
	assert.NoFileExists(t, filepath.Join(h.home, "a.txt"))
	assert.Equal(t, int64(0), h.state.Report().BytesDownloaded)
}

func TestPutWriteError(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, os.WriteFile(filepath.Join(h.home, "x.txt"), []byte("abc"), 0o644))
	h.fake.FailNext("upload", remote.NewWriteError(remote.WriteInsufficientSpace, "path/insufficient_space/"))

	out := h.run(t, "open a t", "put x.txt")

	assert.Contains(t, out, "Put: path write; file path is insufficient space.\n")
	assert.Equal(t, int64(0), h.state.Report().BytesUploaded)
}
