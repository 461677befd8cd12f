package shell

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLocalDirectories(t *testing.T) {
	h := newHarness(t)
	sub := filepath.Join(h.home, "sub")

	out := h.run(t, "lmdir sub", "lmdir sub", "lcd sub", "lwd", "lcd ..", "lwd", "lcd nope", "lcd sub", "lcd", "lwd")

	assertInOrder(t, out,
		"Created local directory: '"+sub+"'.\n",
		"Error: Path '"+sub+"' already exists as directory!\n",
		"Change local directory to "+sub+"\n",
		sub+"\n",
		"Change local directory to "+h.home+"\n",
		h.home+"\n",
		"Error: Path '"+filepath.Join(h.home, "nope")+"' does not exist!\n",
		"Change local directory to "+sub+"\n",
		"Change local directory to "+h.home+"\n",
		h.home+"\n",
	)
	assert.DirExists(t, sub)
	assert.Equal(t, h.home, h.state.LocalCwd())
}

func TestLocalMkdirOverFile(t *testing.T) {
	h := newHarness(t)
	writeFile(t, filepath.Join(h.home, "f.txt"), "x")

	out := h.run(t, "lmdir f.txt")

	assert.Contains(t, out, "Error: Path '"+filepath.Join(h.home, "f.txt")+"' already exists as file!\n")
}

func TestLocalCdAboveRoot(t *testing.T) {
	h := newHarness(t)
	out := h.run(t, "lcd /", "lcd ..", "lwd")

	assertInOrder(t, out,
		"Change local directory to /\n",
		"Change local directory: already at root '/' directory.\n",
		":>/\n",
	)
}

func TestLocalCopyRenameRemove(t *testing.T) {
	h := newHarness(t)
	writeFile(t, filepath.Join(h.home, "a.txt"), "abc")
	require.NoError(t, os.Mkdir(filepath.Join(h.home, "dir"), 0o755))

	out := h.run(t,
		"lcp a.txt b.txt",
		"lcp a.txt b.txt",
		"lcp zz.txt c.txt",
		"lrn b.txt c.txt",
		"lrn b.txt d.txt",
		"lrn c.txt a.txt",
		"lrm c.txt",
		"ldel c.txt",
		"lrm dir",
	)

	assertInOrder(t, out,
		"Local file: a.txt copied b.txt.\n",
		"Local target file: b.txt exists!\n",
		"Local source file: zz.txt not found!\n",
		"Local file: b.txt renamed c.txt.\n",
		"Local source file: b.txt not found!\n",
		"Local target file: a.txt exists!\n",
		"Local file: c.txt deleted.\n",
		"Local file: c.txt not found!\n",
		"Error: Path '"+filepath.Join(h.home, "dir")+"' is a directory! Use 'lrdir' to remove it.\n",
	)

	assert.FileExists(t, filepath.Join(h.home, "a.txt"))
	assert.NoFileExists(t, filepath.Join(h.home, "b.txt"))
	assert.NoFileExists(t, filepath.Join(h.home, "c.txt"))
	assert.DirExists(t, filepath.Join(h.home, "dir"))
}

func TestLocalCopyDirectory(t *testing.T) {
	h := newHarness(t)
	writeFile(t, filepath.Join(h.home, "src", "one.txt"), "1")
	writeFile(t, filepath.Join(h.home, "src", "nested", "two.txt"), "22")

	out := h.run(t, "lcp src dst")

	assert.Contains(t, out, "Local file: src copied dst.\n")
	data, err := os.ReadFile(filepath.Join(h.home, "dst", "nested", "two.txt"))
	require.NoError(t, err)
	assert.Equal(t, "22", string(data))
}

func TestLocalRemoveDirectory(t *testing.T) {
	h := newHarness(t)
	writeFile(t, filepath.Join(h.home, "full", "x.txt"), "x")
	require.NoError(t, os.Mkdir(filepath.Join(h.home, "empty"), 0o755))

	out := h.run(t, "lrdir full", "lrd empty", "lrdir empty", "lrdir full/x.txt")

	assertInOrder(t, out,
		"Error: Path '"+filepath.Join(h.home, "full")+"' directory is not empty!!\n",
		"Directory: '"+filepath.Join(h.home, "empty")+"' removed.\n",
		"Error: Path '"+filepath.Join(h.home, "empty")+"' directory does not exist!\n",
		"Error: Path '"+filepath.Join(h.home, "full", "x.txt")+"' directory does not exist!\n",
	)
	assert.DirExists(t, filepath.Join(h.home, "full"))
	assert.NoDirExists(t, filepath.Join(h.home, "empty"))
}

func TestLocalFind(t *testing.T) {
	h := newHarness(t)
	writeFile(t, filepath.Join(h.home, "docs", "a.md"), "a")
	writeFile(t, filepath.Join(h.home, "docs", "deep", "b.md"), "b")
	writeFile(t, filepath.Join(h.home, "docs", "c.txt"), "c")

	out := h.run(t, "lfind . *.md", "lfind docs *.go", "lfind . [", "lfind nope *.md")

	assertInOrder(t, out,
		"Found:    "+filepath.Join(h.home, "docs", "a.md")+"\n",
		"Found:    "+filepath.Join(h.home, "docs", "deep", "b.md")+"\n",
		"No matches found!\n",
		"Local find pattern syntax error: [\n",
		"Error: Path '"+filepath.Join(h.home, "nope")+"' does not exist!\n",
	)
	assert.NotContains(t, out, "c.txt")
}

func TestLocalDir(t *testing.T) {
	h := newHarness(t)
	writeFile(t, filepath.Join(h.home, "a.txt"), "abc")
	require.NoError(t, os.Mkdir(filepath.Join(h.home, "sub"), 0o755))

	out := h.run(t, "ldir")

	assert.Contains(t, out, fmt.Sprintf("  %12d a.txt\n", 3))
	assert.Contains(t, out, "[sub]\n")
}
