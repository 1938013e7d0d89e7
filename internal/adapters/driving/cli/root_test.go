package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_PersistentFlags(t *testing.T) {
	for _, name := range []string{"verbose", "config-dir", "env-file"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), name)
	}
	assert.Equal(t, "v", rootCmd.PersistentFlags().Lookup("verbose").Shorthand)
}

func TestRootCmd_Subcommands(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"features", "rank", "top", "cache", "pattern", "requirements", "config", "mcp", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestLoadEnv(t *testing.T) {
	t.Run("missing file is ignored", func(t *testing.T) {
		assert.NoError(t, loadEnv(filepath.Join(t.TempDir(), ".env")))
	})

	t.Run("empty path is ignored", func(t *testing.T) {
		assert.NoError(t, loadEnv(""))
	})

	t.Run("loads variables", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("PPLTR_TEST_LOAD_ENV=yes\n"), 0o600))
		t.Cleanup(func() { os.Unsetenv("PPLTR_TEST_LOAD_ENV") })

		require.NoError(t, loadEnv(path))
		assert.Equal(t, "yes", os.Getenv("PPLTR_TEST_LOAD_ENV"))
	})
}

func TestReadRequirements(t *testing.T) {
	t.Run("arguments", func(t *testing.T) {
		got, err := readRequirements(featuresCmd, []string{"a", "b"}, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, got)
	})

	t.Run("file skips blank lines", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "reqs.txt")
		require.NoError(t, os.WriteFile(path, []byte("first\n\n  second  \n"), 0o600))

		got, err := readRequirements(featuresCmd, nil, path)
		require.NoError(t, err)
		assert.Equal(t, []string{"first", "second"}, got)
	})

	t.Run("both sources", func(t *testing.T) {
		_, err := readRequirements(featuresCmd, []string{"a"}, "reqs.txt")
		assert.Error(t, err)
	})

	t.Run("nothing given", func(t *testing.T) {
		_, err := readRequirements(featuresCmd, nil, "")
		assert.Error(t, err)
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "reqs.txt")
		require.NoError(t, os.WriteFile(path, []byte("\n \n"), 0o600))
		_, err := readRequirements(featuresCmd, nil, path)
		assert.Error(t, err)
	})
}
