package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTailLog_TrimsToTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "server.log")
	w, err := openTailLog(path, 20, 8)
	require.NoError(t, err)
	defer w.Close()

	_, err = w.Write([]byte("0123456789"))
	require.NoError(t, err)
	_, err = w.Write([]byte("abcdefghij"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "0123456789abcdefghij", string(data))

	_, err = w.Write([]byte("XY"))
	require.NoError(t, err)

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "efghijXY", string(data))
}

func TestTailLog_TrimsExistingFileOnOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte("x"), 30), 0o644))

	w, err := openTailLog(path, 20, 5)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, int64(5), info.Size())
}

func TestTailLog_RejectsKeepAboveMax(t *testing.T) {
	_, err := openTailLog(filepath.Join(t.TempDir(), "x.log"), 5, 10)
	require.Error(t, err)
}

func TestParseLogLevel(t *testing.T) {
	require.Equal(t, "DEBUG", parseLogLevel("debug").String())
	require.Equal(t, "INFO", parseLogLevel("bogus").String())
}
