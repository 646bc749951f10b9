package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("CALCULATOR_DOTENV_PROBE=from-file\nCALCULATOR_DOTENV_KEEP=from-file\n"), 0o600))

	t.Setenv("CALCULATOR_DOTENV_KEEP", "from-env")
	t.Setenv("CALCULATOR_DOTENV_PROBE", "")
	require.NoError(t, os.Unsetenv("CALCULATOR_DOTENV_PROBE"))

	require.NoError(t, LoadDotEnv(path))

	assert.Equal(t, "from-file", os.Getenv("CALCULATOR_DOTENV_PROBE"))
	assert.Equal(t, "from-env", os.Getenv("CALCULATOR_DOTENV_KEEP"))
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}
