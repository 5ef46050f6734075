// internal/session/journal_test.go
package session

import (
	"bufio"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/deskpilot/internal/action"
	"github.com/xkilldash9x/deskpilot/internal/agent"
)

func readLines(t *testing.T, path string) []map[string]any {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var out []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		out = append(out, m)
	}
	require.NoError(t, sc.Err())
	return out
}

func TestJournal_Record(t *testing.T) {
	dir := t.TempDir()
	j, err := OpenJournal(dir)
	require.NoError(t, err)

	click := action.New("click", action.Params{"start_box": action.PointValue(10, 20)})
	require.NoError(t, j.Record(agent.StepReport{
		Index:      1,
		Time:       time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Screenshot: "shot.png",
		Reasoning:  "Click the button.",
		Action:     &click,
		ActionText: click.String(),
		Outcome:    agent.OutcomeContinue,
		Result:     &agent.ExecutionResult{Status: agent.StatusContinue},
	}))
	require.NoError(t, j.Record(agent.StepReport{
		Index:   2,
		Outcome: agent.OutcomeCallUserRequested,
		Guard:   agent.GuardRepeat,
	}))
	require.NoError(t, j.Close())

	lines := readLines(t, filepath.Join(dir, JournalName))
	require.Len(t, lines, 2)

	assert.Equal(t, float64(1), lines[0]["index"])
	assert.Equal(t, "continue", lines[0]["outcome"])
	assert.Equal(t, "Click the button.", lines[0]["reasoning"])
	assert.Equal(t, "click", lines[0]["action"].(map[string]any)["name"])
	assert.Equal(t, "continue", lines[0]["result"].(map[string]any)["status"])

	assert.Equal(t, "call_user", lines[1]["outcome"])
	assert.Equal(t, "repeat", lines[1]["guard"])
	assert.NotContains(t, lines[1], "action")
}

func TestJournal_AppendsAcrossOpens(t *testing.T) {
	dir := t.TempDir()
	for i := 1; i <= 2; i++ {
		j, err := OpenJournal(dir)
		require.NoError(t, err)
		require.NoError(t, j.Record(agent.StepReport{Index: i}))
		require.NoError(t, j.Close())
	}
	assert.Len(t, readLines(t, filepath.Join(dir, JournalName)), 2)
}

func TestJournal_Closed(t *testing.T) {
	j, err := OpenJournal(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, j.Close())
	assert.NoError(t, j.Close())
	assert.ErrorIs(t, j.Record(agent.StepReport{}), os.ErrClosed)
}

func TestOpenJournal_MissingDir(t *testing.T) {
	_, err := OpenJournal(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorContains(t, err, "failed to open step journal")
}
