// internal/session/journal.go
package session

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/xkilldash9x/deskpilot/internal/agent"
)

// JournalName is the step journal inside a session directory.
const JournalName = "steps.jsonl"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Journal appends one JSON document per step to steps.jsonl. It is an audit
// log and is never read back by the agent.
type Journal struct {
	mu   sync.Mutex
	file *os.File
	w    *bufio.Writer
}

var _ agent.Journal = (*Journal)(nil)

// OpenJournal opens (or creates) the journal of dir for appending.
func OpenJournal(dir string) (*Journal, error) {
	f, err := os.OpenFile(filepath.Join(dir, JournalName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open step journal: %w", err)
	}
	return &Journal{file: f, w: bufio.NewWriter(f)}, nil
}

// Record writes report and flushes it, so a crash loses at most the step in
// progress.
func (j *Journal) Record(report agent.StepReport) error {
	line, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode step %d: %w", report.Index, err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.file == nil {
		return os.ErrClosed
	}
	if _, err := j.w.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to write step %d: %w", report.Index, err)
	}
	return j.w.Flush()
}

// Close flushes and closes the file. It is safe to call more than once.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.file == nil {
		return nil
	}
	flushErr := j.w.Flush()
	closeErr := j.file.Close()
	j.file = nil
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}
