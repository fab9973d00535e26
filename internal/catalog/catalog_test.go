package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Embedded(t *testing.T) {
	c, err := Load("", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, 0, c.Skipped())

	def, ok := c.At(0)
	require.True(t, ok)
	assert.Equal(t, "aeg", def.Stages[0])
	_, ok = c.At(3)
	assert.False(t, ok)

	_, i := c.Random()
	assert.True(t, i >= 0 && i < c.Len())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "puzzles.txt")
	body := "# comment\n\nABC|D,abc|abcd\nnot a puzzle\naeg|r,age|gaze\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	c, err := Load(path, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 2, c.Skipped())
	def, _ := c.At(0)
	assert.Equal(t, "abc|d,abc|abcd", def.String())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.txt"), 3)
	assert.Error(t, err)

	_, err = FromLines([]string{"ab,ab"}, 3)
	assert.ErrorIs(t, err, ErrEmpty)
}
