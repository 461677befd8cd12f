package transcript

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultName(t *testing.T) {
	ts := time.Date(2024, time.March, 7, 9, 5, 3, 0, time.UTC)
	assert.Equal(t, "dbx_shell_transcript_2024_03_07_09_05_03.txt", DefaultName("dbx_shell_transcript", ts))
}

func TestRecorderTeesWhileRecording(t *testing.T) {
	var console bytes.Buffer
	rec := New(&console)
	name := filepath.Join(t.TempDir(), "session.txt")

	rec.Printf("before\n")
	require.NoError(t, rec.Begin(name))
	assert.True(t, rec.Recording())
	assert.Equal(t, name, rec.Name())

	rec.Printf("during %d\n", 1)

	got, err := rec.End()
	require.NoError(t, err)
	assert.Equal(t, name, got)
	assert.False(t, rec.Recording())
	assert.Empty(t, rec.Name())

	rec.Printf("after\n")

	assert.Equal(t, "before\nduring 1\nafter\n", console.String())
	data, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, "during 1\n", string(data))
}

func TestBeginRefusesExistingFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "exists.txt")
	require.NoError(t, os.WriteFile(name, []byte("old"), 0o644))
	rec := New(&bytes.Buffer{})

	err := rec.Begin(name)
	assert.ErrorIs(t, err, ErrAlreadyExists)
	assert.False(t, rec.Recording())

	data, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
}

func TestBeginTwice(t *testing.T) {
	dir := t.TempDir()
	rec := New(&bytes.Buffer{})

	require.NoError(t, rec.Begin(filepath.Join(dir, "a.txt")))
	assert.ErrorIs(t, rec.Begin(filepath.Join(dir, "b.txt")), ErrAlreadyRecording)

	_, err := rec.End()
	require.NoError(t, err)
}

func TestEndWhenIdle(t *testing.T) {
	rec := New(&bytes.Buffer{})
	_, err := rec.End()
	assert.ErrorIs(t, err, ErrNotRecording)
}

func TestBeginBadDirectory(t *testing.T) {
	rec := New(&bytes.Buffer{})
	err := rec.Begin(filepath.Join(t.TempDir(), "missing", "t.txt"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAlreadyExists)
}
