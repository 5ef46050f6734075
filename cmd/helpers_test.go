// File: cmd/helpers_test.go
package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/deskpilot/internal/agent"
	"github.com/xkilldash9x/deskpilot/internal/config"
	"github.com/xkilldash9x/deskpilot/internal/llmclient"
)

// runResult is what the fake runner answers for one instruction.
type runResult struct {
	outcome agent.Outcome
	err     error
}

// fakeRunner stands in for the full agent. Results are consumed in order;
// once exhausted every run finishes.
type fakeRunner struct {
	mu           sync.Mutex
	results      []runResult
	instructions []string
	opts         []runOptions
	factoryErr   error
}

func (f *fakeRunner) factory(_ context.Context, _ config.Interface, opts runOptions, _ *zap.Logger) (InstructionRunner, error) {
	if f.factoryErr != nil {
		return nil, f.factoryErr
	}
	f.mu.Lock()
	f.opts = append(f.opts, opts)
	f.mu.Unlock()
	return f, nil
}

func (f *fakeRunner) Run(_ context.Context, instruction string) (agent.Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.instructions = append(f.instructions, instruction)
	if len(f.results) == 0 {
		return agent.OutcomeFinished, nil
	}
	r := f.results[0]
	f.results = f.results[1:]
	return r.outcome, r.err
}

// fakeModel answers every request with a canned reply.
type fakeModel struct {
	reply    string
	err      error
	requests []llmclient.Request
}

func (m *fakeModel) Complete(_ context.Context, req llmclient.Request) (string, error) {
	m.requests = append(m.requests, req)
	return m.reply, m.err
}

// testEnv is an isolated app with a session root and config file in a temp dir.
type testEnv struct {
	app        *app
	runner     *fakeRunner
	model      *fakeModel
	root       string
	configPath string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	root := filepath.Join(dir, "sessions")

	configPath := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf(`
session:
  root: %q
batch:
  start_delay: 0s
  block_delay: 0s
agent:
  start_delay: 0s
`, root)
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))

	env := &testEnv{
		app:        newApp(),
		runner:     &fakeRunner{},
		model:      &fakeModel{},
		root:       root,
		configPath: configPath,
	}
	env.app.newRunner = env.runner.factory
	env.app.newModel = func(config.LLMConfig, *zap.Logger) (llmclient.Client, error) { return env.model, nil }
	return env
}

// run executes the CLI and returns stdout, stderr and the exit code.
func (e *testEnv) run(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	return e.runContext(t, context.Background(), args...)
}

func (e *testEnv) runContext(t *testing.T, ctx context.Context, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCommand(e.app)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	code := execute(ctx, root, append([]string{"--config", e.configPath}, args...), &stderr)
	return stdout.String(), stderr.String(), code
}

// syncBuffer is a bytes.Buffer safe for one writer and one reader goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}
