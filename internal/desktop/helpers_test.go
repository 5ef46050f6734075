package desktop

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/xkilldash9x/deskpilot/internal/config"
)

// fakeDriver records every call as a compact string.
type fakeDriver struct {
	mu      sync.Mutex
	calls   []string
	x, y    int
	posErr  error
	failOn  string
	failAt  int
	failErr error
}

func (d *fakeDriver) record(call string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, call)
	if d.failAt > 0 && len(d.calls) == d.failAt {
		return d.failErr
	}
	if d.failOn != "" && strings.HasPrefix(call, d.failOn) {
		return d.failErr
	}
	return nil
}

func (d *fakeDriver) MoveTo(_ context.Context, x, y int) error {
	d.x, d.y = x, y
	return d.record(fmt.Sprintf("move %d,%d", x, y))
}

func (d *fakeDriver) CursorPosition(context.Context) (int, int, error) {
	return d.x, d.y, d.posErr
}

func (d *fakeDriver) ButtonDown(_ context.Context, b Button) error {
	return d.record("down " + string(b))
}

func (d *fakeDriver) ButtonUp(_ context.Context, b Button) error {
	return d.record("up " + string(b))
}

func (d *fakeDriver) Click(_ context.Context, b Button, count int) error {
	return d.record(fmt.Sprintf("click %s x%d", b, count))
}

func (d *fakeDriver) Hotkey(_ context.Context, keys ...string) error {
	return d.record("hotkey " + strings.Join(keys, "+"))
}

func (d *fakeDriver) TypeText(_ context.Context, text string, interval time.Duration) error {
	return d.record(fmt.Sprintf("type %q @%s", text, interval))
}

func (d *fakeDriver) Scroll(_ context.Context, amount int) error {
	return d.record(fmt.Sprintf("scroll %d", amount))
}

func (d *fakeDriver) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

// fakeClipboard is an in-memory clipboard.
type fakeClipboard struct {
	content  string
	writes   []string
	readErr  error
	writeErr error
}

func (c *fakeClipboard) ReadAll() (string, error) { return c.content, c.readErr }
func (c *fakeClipboard) WriteAll(s string) error {
	if c.writeErr != nil {
		return c.writeErr
	}
	c.content = s
	c.writes = append(c.writes, s)
	return nil
}

// testDesktopConfig has no glide time so pointer moves are single jumps.
func testDesktopConfig() config.DesktopConfig {
	return config.DesktopConfig{
		ClickHold:       100 * time.Millisecond,
		SettleDelay:     2 * time.Second,
		WaitDuration:    5 * time.Second,
		KeyDelay:        100 * time.Millisecond,
		TypeInterval:    10 * time.Millisecond,
		ScrollAmount:    500,
		SelectAllKeys:   "ctrl a",
		PasteKeys:       "ctrl v",
		ShowDesktopKeys: "super d",
	}
}
