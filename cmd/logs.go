// File: cmd/logs.go
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/hpcloud/tail"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/deskpilot/internal/observability"
	"github.com/xkilldash9x/deskpilot/internal/session"
)

func newLogsCmd(a *app) *cobra.Command {
	var follow bool

	cmd := &cobra.Command{
		Use:   "logs [session-dir...]",
		Short: "Print the session log of one or more runs",
		Long: `Logs prints session_log.txt of the given session folders. Without
arguments it shows the most recent session under the session root.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dirs := args
			if len(dirs) == 0 {
				layout, err := session.NewLayout(a.cfg.Session().Root)
				if err != nil {
					return err
				}
				latest, err := layout.Latest()
				if err != nil {
					return err
				}
				dirs = []string{latest}
			}

			paths := make([]string, len(dirs))
			for i, d := range dirs {
				paths[i] = filepath.Join(d, observability.SessionLogName)
			}

			w := &lockedWriter{w: cmd.OutOrStdout()}
			if !follow {
				return printLogs(w, paths)
			}
			return a.followLogs(cmd.Context(), w, paths)
		},
	}
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "keep printing new lines as they are written")
	return cmd
}

// lockedWriter serializes lines written by concurrent followers.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func printLogs(w io.Writer, paths []string) error {
	for _, p := range paths {
		if len(paths) > 1 {
			fmt.Fprintf(w, "==> %s <==\n", p)
		}
		f, err := os.Open(p)
		if err != nil {
			return fmt.Errorf("failed to open session log: %w", err)
		}
		_, err = io.Copy(w, f)
		f.Close()
		if err != nil {
			return fmt.Errorf("failed to read session log: %w", err)
		}
	}
	return nil
}

// followLogs tails every path until ctx is cancelled. Lines of different
// sessions are prefixed with the session folder name.
func (a *app) followLogs(ctx context.Context, w io.Writer, paths []string) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, p := range paths {
		prefix := ""
		if len(paths) > 1 {
			prefix = "[" + filepath.Base(filepath.Dir(p)) + "] "
		}
		g.Go(func() error {
			return a.followLog(gctx, w, p, prefix)
		})
	}
	err := g.Wait()
	if ctx.Err() != nil {
		// Stopping a follow with Ctrl+C is the normal way out.
		return nil
	}
	return err
}

func (a *app) followLog(ctx context.Context, w io.Writer, path, prefix string) error {
	t, err := tail.TailFile(path, tail.Config{
		Follow:    true,
		ReOpen:    true,
		MustExist: true,
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return fmt.Errorf("failed to follow %s: %w", path, err)
	}
	defer func() {
		_ = t.Stop()
		t.Cleanup()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-t.Lines:
			if !ok {
				return t.Err()
			}
			if line.Err != nil {
				a.logger.Warn("Error reading session log.", zap.String("path", path), zap.Error(line.Err))
				continue
			}
			fmt.Fprintf(w, "%s%s\n", prefix, line.Text)
		}
	}
}
