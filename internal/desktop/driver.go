// internal/desktop/driver.go
package desktop

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

var (
	// ErrUnsupportedPlatform is returned when no input driver exists for the OS.
	ErrUnsupportedPlatform = errors.New("desktop input is not supported on this platform")
	// ErrNoScreenshotTool is returned when none of the screenshot commands worked.
	ErrNoScreenshotTool = errors.New("no screenshot command succeeded")
)

// Button is a pointer button.
type Button string

const (
	ButtonLeft   Button = "left"
	ButtonRight  Button = "right"
	ButtonMiddle Button = "middle"
)

// InputDriver emits OS level pointer and keyboard events. Key names passed
// to Hotkey are the canonical names produced by NormalizeKeys.
type InputDriver interface {
	MoveTo(ctx context.Context, x, y int) error
	CursorPosition(ctx context.Context) (x, y int, err error)
	ButtonDown(ctx context.Context, b Button) error
	ButtonUp(ctx context.Context, b Button) error
	Click(ctx context.Context, b Button, count int) error
	Hotkey(ctx context.Context, keys ...string) error
	TypeText(ctx context.Context, text string, interval time.Duration) error
	Scroll(ctx context.Context, amount int) error
}

// commandRunner runs an external program and returns its combined output.
type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(out.String())
		if msg == "" {
			return out.Bytes(), fmt.Errorf("%s: %w", name, err)
		}
		return out.Bytes(), fmt.Errorf("%s: %w: %s", name, err, msg)
	}
	return out.Bytes(), nil
}
