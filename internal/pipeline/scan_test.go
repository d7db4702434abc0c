package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestAllowedExt(t *testing.T) {
	tests := []struct {
		ext     string
		allowed bool
	}{
		{ext: ".pdf", allowed: true},
		{ext: ".PDF", allowed: true},
		{ext: ".txt", allowed: true},
		{ext: "pdf", allowed: true},
		{ext: ".csv", allowed: false},
		{ext: "", allowed: false},
	}
	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			assert.Equal(t, tt.allowed, AllowedExt(tt.ext))
		})
	}
}

func TestIsHidden(t *testing.T) {
	assert.True(t, IsHidden("/reports/.archive"))
	assert.True(t, IsHidden(".env"))
	assert.False(t, IsHidden("/reports/march"))
}

func TestScanDirectory(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.txt"))
	touch(t, filepath.Join(root, "b.pdf"))
	touch(t, filepath.Join(root, "e.csv"))
	touch(t, filepath.Join(root, "sub", "c.txt"))
	touch(t, filepath.Join(root, ".hidden", "d.txt"))
	touch(t, filepath.Join(root, ".h.txt"))

	t.Run("hidden entries skipped", func(t *testing.T) {
		paths, stats, err := ScanDirectory(root, true)
		require.NoError(t, err)

		expected := []string{
			filepath.Join(root, "a.txt"),
			filepath.Join(root, "b.pdf"),
			filepath.Join(root, "sub", "c.txt"),
		}
		assert.Equal(t, expected, paths, "walk order is lexical")
		assert.Equal(t, 3, stats.Matched)
		assert.Equal(t, 0, stats.Failed)
		assert.Greater(t, stats.Scanned, stats.Matched)
	})

	t.Run("hidden entries included on request", func(t *testing.T) {
		paths, stats, err := ScanDirectory(root, false)
		require.NoError(t, err)
		assert.Len(t, paths, 5)
		assert.Equal(t, 5, stats.Matched)
	})
}

func TestScanDirectory_EmptyRoot(t *testing.T) {
	_, _, err := ScanDirectory("  ", true)
	assert.Error(t, err)
}

func TestScanDirectory_MissingRoot(t *testing.T) {
	_, stats, err := ScanDirectory(filepath.Join(t.TempDir(), "nope"), true)
	require.NoError(t, err, "unreadable entries are counted, not fatal")
	assert.Equal(t, 1, stats.Failed)
}
