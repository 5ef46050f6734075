// internal/desktop/cliclick.go
package desktop

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const cliclickBin = "cliclick"

var cliclickModifiers = map[string]string{
	"cmd":   "cmd",
	"super": "cmd",
	"ctrl":  "ctrl",
	"alt":   "alt",
	"shift": "shift",
	"fn":    "fn",
}

// cliclickKeys maps canonical names onto cliclick kp: key names.
var cliclickKeys = map[string]string{
	"enter":     "return",
	"esc":       "esc",
	"backspace": "delete",
	"delete":    "fwd-delete",
	"tab":       "tab",
	"space":     "space",
	"pagedown":  "page-down",
	"pageup":    "page-up",
	"home":      "home",
	"end":       "end",
	"up":        "arrow-up",
	"down":      "arrow-down",
	"left":      "arrow-left",
	"right":     "arrow-right",
}

// CliclickDriver drives macOS through the cliclick command. cliclick has no
// wheel support, so Scroll always fails.
type CliclickDriver struct {
	run commandRunner
}

var _ InputDriver = (*CliclickDriver)(nil)

// NewCliclickDriver creates a driver that executes commands through run.
func NewCliclickDriver(run commandRunner) *CliclickDriver {
	return &CliclickDriver{run: run}
}

func (d *CliclickDriver) exec(ctx context.Context, args ...string) ([]byte, error) {
	return d.run(ctx, cliclickBin, args...)
}

func (d *CliclickDriver) MoveTo(ctx context.Context, x, y int) error {
	_, err := d.exec(ctx, fmt.Sprintf("m:%d,%d", x, y))
	return err
}

// CursorPosition parses `cliclick p`, which prints "x,y".
func (d *CliclickDriver) CursorPosition(ctx context.Context) (int, int, error) {
	out, err := d.exec(ctx, "p")
	if err != nil {
		return 0, 0, err
	}
	xs, ys, ok := strings.Cut(strings.TrimSpace(string(out)), ",")
	x, errX := strconv.Atoi(strings.TrimSpace(xs))
	y, errY := strconv.Atoi(strings.TrimSpace(ys))
	if !ok || errX != nil || errY != nil {
		return 0, 0, fmt.Errorf("unexpected cliclick position output: %q", strings.TrimSpace(string(out)))
	}
	return x, y, nil
}

func (d *CliclickDriver) ButtonDown(ctx context.Context, b Button) error {
	if b != ButtonLeft {
		return fmt.Errorf("cliclick cannot hold the %s button", b)
	}
	_, err := d.exec(ctx, "dd:.")
	return err
}

func (d *CliclickDriver) ButtonUp(ctx context.Context, b Button) error {
	if b != ButtonLeft {
		return fmt.Errorf("cliclick cannot release the %s button", b)
	}
	_, err := d.exec(ctx, "du:.")
	return err
}

func (d *CliclickDriver) Click(ctx context.Context, b Button, count int) error {
	var cmd string
	switch {
	case b == ButtonRight:
		cmd = "rc:."
	case b == ButtonLeft && count == 2:
		cmd = "dc:."
	case b == ButtonLeft && count == 3:
		cmd = "tc:."
	case b == ButtonLeft:
		cmd = "c:."
	default:
		return fmt.Errorf("cliclick cannot click the %s button", b)
	}
	_, err := d.exec(ctx, cmd)
	return err
}

// Hotkey holds the modifiers down around the remaining keys.
func (d *CliclickDriver) Hotkey(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return fmt.Errorf("no keys given")
	}
	var mods []string
	var presses []string
	for _, k := range keys {
		if m, ok := cliclickModifiers[k]; ok {
			mods = append(mods, m)
			continue
		}
		if name, ok := cliclickKeys[k]; ok {
			presses = append(presses, "kp:"+name)
		} else {
			presses = append(presses, "t:"+k)
		}
	}

	var args []string
	if len(mods) > 0 {
		args = append(args, "kd:"+strings.Join(mods, ","))
	}
	args = append(args, presses...)
	if len(mods) > 0 {
		args = append(args, "ku:"+strings.Join(mods, ","))
	}
	_, err := d.exec(ctx, args...)
	return err
}

func (d *CliclickDriver) TypeText(ctx context.Context, text string, interval time.Duration) error {
	_, err := d.exec(ctx, "-w", strconv.FormatInt(max(interval.Milliseconds(), 1), 10), "t:"+text)
	return err
}

func (d *CliclickDriver) Scroll(ctx context.Context, amount int) error {
	return fmt.Errorf("%w: cliclick cannot scroll", ErrUnsupportedPlatform)
}
