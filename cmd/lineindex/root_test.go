package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag variable to its default, since cobra keeps
// parsed values in package state between executions.
func resetFlags() {
	verbose, quiet = false, false
	configPath, bufferSize, outputFormat, colorMode, datastorePath = "", 0, "", "", ""
	locateOneBased, offsetOneBased = false, false
	indexIncremental, indexWorkers, indexStoreBlobs, indexIncludeHidden, indexMaxFileSize = false, 0, false, false, 0
	indexGit, indexRev = false, "HEAD"
	annotateOutput = ""
	mergeOutput = "merged.db"
}

// isolateEnv keeps the user's config file and environment out of a test.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	for _, k := range []string{"LINEINDEX_BUFFER_SIZE", "LINEINDEX_DATASTORE", "GITHUB_TOKEN", "GITLAB_TOKEN", "GITLAB_BASE_URL", "NO_COLOR"} {
		t.Setenv(k, "")
	}
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	isolateEnv(t)
	resetFlags()
	t.Cleanup(resetFlags)

	var out, errOut bytes.Buffer
	rootCmd.SetIn(bytes.NewBufferString(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

// writeFile writes content to name under a new temp dir and returns its path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"locate", "offset", "lines", "index", "annotate", "serve", "merge", "config", "version"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	// Arrange
	isolateEnv(t)
	resetFlags()
	t.Cleanup(resetFlags)
	configPath = writeFile(t, "config.yaml", "buffer_size: 64\nformat: yaml\ndatastore: /from/file\n")
	bufferSize = 8
	outputFormat = "json"

	// Act
	cfg, err := loadConfig()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.BufferSize)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "/from/file", cfg.Datastore, "unset flags keep the configured value")
	assert.Equal(t, "auto", cfg.Color)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		apply func()
	}{
		{"format", func() { outputFormat = "xml" }},
		{"color", func() { colorMode = "sometimes" }},
		{"buffer size", func() { bufferSize = -4 }},
		{"missing config", func() { configPath = filepath.Join(os.TempDir(), "lineindex-missing", "config.yaml") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateEnv(t)
			resetFlags()
			t.Cleanup(resetFlags)
			tt.apply()

			_, err := loadConfig()
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_Env(t *testing.T) {
	isolateEnv(t)
	resetFlags()
	t.Setenv("LINEINDEX_BUFFER_SIZE", "16")
	t.Setenv("LINEINDEX_DATASTORE", "/env/ds")

	cfg, err := loadConfig()

	require.NoError(t, err)
	assert.Equal(t, 16, cfg.BufferSize)
	assert.Equal(t, "/env/ds", cfg.Datastore)
}

func TestConfigCommand(t *testing.T) {
	path := writeFile(t, "config.yaml", "github:\n  token: ghp_secret\n")

	out, _, err := execute(t, "", "config", "--config", path)

	require.NoError(t, err)
	assert.Contains(t, out, "# Configuration file location: "+path)
	assert.Contains(t, out, "<redacted>")
	assert.NotContains(t, out, "ghp_secret")
	assert.Contains(t, out, "buffer_size: 1024")
}
