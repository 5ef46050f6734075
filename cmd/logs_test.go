// File: cmd/logs_test.go
package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/deskpilot/internal/observability"
)

func writeSessionLog(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, observability.SessionLogName), []byte(content), 0o644))
}

func TestLogsCmd_Latest(t *testing.T) {
	env := newTestEnv(t)
	old := filepath.Join(env.root, "session_20250101_000000")
	recent := filepath.Join(env.root, "session_abc", "session_20250101_000001")
	writeSessionLog(t, old, "old run\n")
	writeSessionLog(t, recent, "recent run\n")
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(old, observability.SessionLogName), past, past))

	out, _, code := env.run(t, "logs")
	require.Equal(t, 0, code)
	assert.Equal(t, "recent run\n", out)
}

func TestLogsCmd_Explicit(t *testing.T) {
	env := newTestEnv(t)
	a := filepath.Join(t.TempDir(), "a")
	b := filepath.Join(t.TempDir(), "b")
	writeSessionLog(t, a, "from a\n")
	writeSessionLog(t, b, "from b\n")

	out, _, code := env.run(t, "logs", a, b)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "==> "+filepath.Join(a, observability.SessionLogName)+" <==\nfrom a\n")
	assert.Contains(t, out, "from b\n")
}

func TestLogsCmd_NoSessions(t *testing.T) {
	env := newTestEnv(t)
	_, stderr, code := env.run(t, "logs")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "no sessions found")
}

func TestFollowLogs(t *testing.T) {
	env := newTestEnv(t)
	a := filepath.Join(t.TempDir(), "session_a")
	b := filepath.Join(t.TempDir(), "session_b")
	writeSessionLog(t, a, "first a\n")
	writeSessionLog(t, b, "first b\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	buf := &syncBuffer{}
	done := make(chan error, 1)
	go func() {
		done <- env.app.followLogs(ctx, buf, []string{
			filepath.Join(a, observability.SessionLogName),
			filepath.Join(b, observability.SessionLogName),
		})
	}()

	assert.Eventually(t, func() bool {
		s := buf.String()
		return strings.Contains(s, "[session_a] first a\n") && strings.Contains(s, "[session_b] first b\n")
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err, "cancelling a follow is a clean exit")
	case <-time.After(5 * time.Second):
		t.Fatal("followLogs did not stop after cancellation")
	}
}

func TestFollowLogs_MissingFile(t *testing.T) {
	env := newTestEnv(t)
	err := env.app.followLogs(context.Background(), &syncBuffer{}, []string{filepath.Join(t.TempDir(), "nope.txt")})
	assert.ErrorContains(t, err, "failed to follow")
}
