package auth

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrGenerateKey_GenerateThenLoad(t *testing.T) {
	dir := t.TempDir()

	first, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Len(t, first, keyLength)

	// A second call loads the saved key instead of generating a new one.
	second, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestLoadOrGenerateKey_CreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	key, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Len(t, key, keyLength)

	info, err := os.Stat(filepath.Join(dir, "auth.key"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadOrGenerateKey_RejectsCorruptFile(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{"wrong length", "abcdef"},
		{"not hex", strings.Repeat("z", keyHexLength)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "auth.key"), []byte(tt.contents), 0o600))

			_, err := LoadOrGenerateKey(dir)
			assert.Error(t, err)
		})
	}
}
