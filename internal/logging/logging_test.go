package logging

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("bogus"))
}

func TestNewWriter_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, "warn")

	log.Info("organizer", "hidden")
	log.Warn("organizer", "shown", F("file", "a.mkv"))
	log.Error("resolver", "failed", errors.New("boom"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, `"component": "organizer"`)
	assert.Contains(t, out, `"file": "a.mkv"`)
	assert.Contains(t, out, "boom")
	assert.Equal(t, LevelWarn, log.GetLevel())

	log.SetLevel(LevelDebug)
	log.Debug("organizer", "now visible")
	assert.Contains(t, buf.String(), "now visible")
}

func TestNop(t *testing.T) {
	log := Nop()
	log.Info("x", "y")
	log.Error("x", "y", errors.New("z"))
	assert.NoError(t, log.Close())

	var nilLogger *Logger
	nilLogger.Info("x", "y")
}

func TestNew_WritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "stellar.log")
	log, err := New(Config{Level: "info", File: path, Quiet: true})
	require.NoError(t, err)

	log.Info("cli", "hello", F("count", 3))
	require.NoError(t, log.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"component":"cli"`)
	assert.Equal(t, path, log.FilePath())
}

func TestRotatingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	rf, err := openRotatingFile(path, 10, 2)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		_, err := rf.Write([]byte(strings.Repeat("x", 8)))
		require.NoError(t, err)
	}
	require.NoError(t, rf.Close())

	assert.FileExists(t, path)
	assert.FileExists(t, filepath.Join(dir, "app.1.log"))
	assert.FileExists(t, filepath.Join(dir, "app.2.log"))
	assert.NoFileExists(t, filepath.Join(dir, "app.3.log"))
}

func TestRotateFiles_ShiftsBackups(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "app.log")
	require.NoError(t, os.WriteFile(base, []byte("current"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.1.log"), []byte("one"), 0644))

	require.NoError(t, rotateFiles(base, 5))

	data, err := os.ReadFile(filepath.Join(dir, "app.1.log"))
	require.NoError(t, err)
	assert.Equal(t, "current", string(data))

	data, err = os.ReadFile(filepath.Join(dir, "app.2.log"))
	require.NoError(t, err)
	assert.Equal(t, "one", string(data))
	assert.NoFileExists(t, base)
}
