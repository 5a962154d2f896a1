package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenLogFileAppendsToDatedFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	day := time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC)

	for _, line := range []string{"first\n", "second\n"} {
		f, err := OpenLogFile(dir, "sheetsync", day)
		require.NoError(t, err)
		_, err = f.WriteString(line)
		require.NoError(t, err)
		require.NoError(t, f.Close())
	}

	data, err := os.ReadFile(filepath.Join(dir, "sheetsync-2026-10-19.log"))
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\n", string(data))
}

func TestDefaultLogDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir, err := DefaultLogDir("sheetsync")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(dir, home))
	assert.Equal(t, filepath.Join(home, ".sheetsync", "logs"), dir)
}
