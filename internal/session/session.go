// internal/session/session.go
package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/go-homedir"

	"github.com/xkilldash9x/deskpilot/internal/observability"
)

// dirPrefix starts every session directory name, parent or child.
const dirPrefix = "session_"

// timestampLayout names per-run directories, e.g. session_20240309_140507.
const timestampLayout = "20060102_150405"

// ErrNoSessions is returned by Latest when the root holds no session log.
var ErrNoSessions = errors.New("no sessions found")

// NewParentID returns a fresh identifier grouping the runs of one batch.
func NewParentID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Layout places session directories under Root.
type Layout struct {
	Root string
}

// NewLayout expands a leading ~ in root.
func NewLayout(root string) (Layout, error) {
	expanded, err := homedir.Expand(root)
	if err != nil {
		return Layout{}, fmt.Errorf("failed to expand session root %q: %w", root, err)
	}
	return Layout{Root: expanded}, nil
}

// Create makes the directory of one instruction run. Without a parent id it
// is Root/session_<ts>; with one it is Root/session_<parent>/session_<ts>.
func (l Layout) Create(parentID string, now time.Time) (string, error) {
	dir := l.Root
	if parentID != "" {
		dir = filepath.Join(dir, dirPrefix+parentID)
	}
	dir = filepath.Join(dir, dirPrefix+now.Format(timestampLayout))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create session directory: %w", err)
	}
	return dir, nil
}

// Latest returns the session directory whose log was written most recently.
func (l Layout) Latest() (string, error) {
	var (
		latest  string
		latestT time.Time
	)
	err := filepath.WalkDir(l.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != observability.SessionLogName {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().After(latestT) {
			latest, latestT = filepath.Dir(path), info.ModTime()
		}
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("failed to scan %s: %w", l.Root, err)
	}
	if latest == "" {
		return "", fmt.Errorf("%w under %s", ErrNoSessions, l.Root)
	}
	return latest, nil
}
