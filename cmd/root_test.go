// File: cmd/root_test.go
package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_VersionFlag(t *testing.T) {
	env := newTestEnv(t)
	out, _, code := env.run(t, "--version")
	assert.Equal(t, 0, code)
	assert.Equal(t, "deskpilot version "+Version+"\n", out)
}

func TestVersionCmd(t *testing.T) {
	env := newTestEnv(t)
	// A broken config must not prevent printing the version.
	env.configPath = "/does/not/exist.yaml"
	out, _, code := env.run(t, "version")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "deskpilot "+Version)
}

func TestRootCmd_BadConfigFile(t *testing.T) {
	env := newTestEnv(t)
	env.configPath = "/does/not/exist.yaml"
	_, stderr, code := env.run(t, "config", "show")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "error reading config file")
}

func TestRootCmd_UnknownCommand(t *testing.T) {
	env := newTestEnv(t)
	_, stderr, code := env.run(t, "teleport")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, `unknown command "teleport"`)
}

func TestConfigFlagAndEnvOverride(t *testing.T) {
	env := newTestEnv(t)
	t.Setenv("DESKPILOT_AGENT_MAX_WAIT", "7")

	_, _, code := env.run(t, "--model", "my-model", "--provider", "ollama", "config", "show")
	require.Equal(t, 0, code)

	require.NotNil(t, env.app.cfg)
	assert.Equal(t, "my-model", env.app.cfg.LLM().Model)
	assert.EqualValues(t, "ollama", env.app.cfg.LLM().Provider)
	assert.Equal(t, 7, env.app.cfg.Agent().MaxWait)
	assert.Equal(t, env.root, env.app.cfg.Session().Root)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		want       int
		wantStderr string
	}{
		{"success", nil, 0, ""},
		{"explicit code", exitWith(3), 3, ""},
		{"wrapped code", fmt.Errorf("batch: %w", exitWith(1)), 1, ""},
		{"interrupted", context.Canceled, 130, "Operation interrupted by user."},
		{"other error", errors.New("boom"), 2, "Error: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			assert.Equal(t, tt.want, exitCode(tt.err, &stderr))
			if tt.wantStderr == "" {
				assert.Empty(t, stderr.String())
			} else {
				assert.Contains(t, stderr.String(), tt.wantStderr)
			}
		})
	}
	assert.NoError(t, exitWith(0))
}
