// internal/desktop/xdotool.go
package desktop

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const xdotoolBin = "xdotool"

// scrollNotch is how many scroll units one wheel click represents.
const scrollNotch = 100

// xdotoolKeysyms maps canonical key names onto X keysyms.
var xdotoolKeysyms = map[string]string{
	"enter":     "Return",
	"esc":       "Escape",
	"backspace": "BackSpace",
	"delete":    "Delete",
	"tab":       "Tab",
	"space":     "space",
	"pagedown":  "Next",
	"pageup":    "Prior",
	"home":      "Home",
	"end":       "End",
	"insert":    "Insert",
	"up":        "Up",
	"down":      "Down",
	"left":      "Left",
	"right":     "Right",
	"ctrl":      "ctrl",
	"shift":     "shift",
	"alt":       "alt",
	"super":     "super",
	"capslock":  "Caps_Lock",
}

// XdotoolDriver drives X11 through the xdotool command.
type XdotoolDriver struct {
	run commandRunner
}

var _ InputDriver = (*XdotoolDriver)(nil)

// NewXdotoolDriver creates a driver that executes commands through run.
func NewXdotoolDriver(run commandRunner) *XdotoolDriver {
	return &XdotoolDriver{run: run}
}

func (d *XdotoolDriver) exec(ctx context.Context, args ...string) ([]byte, error) {
	return d.run(ctx, xdotoolBin, args...)
}

func (d *XdotoolDriver) MoveTo(ctx context.Context, x, y int) error {
	_, err := d.exec(ctx, "mousemove", strconv.Itoa(x), strconv.Itoa(y))
	return err
}

// CursorPosition parses `xdotool getmouselocation --shell`.
func (d *XdotoolDriver) CursorPosition(ctx context.Context) (int, int, error) {
	out, err := d.exec(ctx, "getmouselocation", "--shell")
	if err != nil {
		return 0, 0, err
	}
	var x, y int
	var haveX, haveY bool
	for line := range strings.SplitSeq(string(out), "\n") {
		key, val, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok {
			continue
		}
		n, convErr := strconv.Atoi(val)
		if convErr != nil {
			continue
		}
		switch key {
		case "X":
			x, haveX = n, true
		case "Y":
			y, haveY = n, true
		}
	}
	if !haveX || !haveY {
		return 0, 0, fmt.Errorf("unexpected getmouselocation output: %q", strings.TrimSpace(string(out)))
	}
	return x, y, nil
}

func xdotoolButton(b Button) string {
	switch b {
	case ButtonRight:
		return "3"
	case ButtonMiddle:
		return "2"
	default:
		return "1"
	}
}

func (d *XdotoolDriver) ButtonDown(ctx context.Context, b Button) error {
	_, err := d.exec(ctx, "mousedown", xdotoolButton(b))
	return err
}

func (d *XdotoolDriver) ButtonUp(ctx context.Context, b Button) error {
	_, err := d.exec(ctx, "mouseup", xdotoolButton(b))
	return err
}

func (d *XdotoolDriver) Click(ctx context.Context, b Button, count int) error {
	if count < 1 {
		count = 1
	}
	_, err := d.exec(ctx, "click", "--repeat", strconv.Itoa(count), xdotoolButton(b))
	return err
}

// Hotkey presses the keys together, e.g. `xdotool key ctrl+a`.
func (d *XdotoolDriver) Hotkey(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return fmt.Errorf("no keys given")
	}
	syms := make([]string, len(keys))
	for i, k := range keys {
		if sym, ok := xdotoolKeysyms[k]; ok {
			syms[i] = sym
		} else {
			syms[i] = k
		}
	}
	_, err := d.exec(ctx, "key", "--clearmodifiers", strings.Join(syms, "+"))
	return err
}

func (d *XdotoolDriver) TypeText(ctx context.Context, text string, interval time.Duration) error {
	_, err := d.exec(ctx, "type", "--delay", strconv.FormatInt(interval.Milliseconds(), 10), "--", text)
	return err
}

// Scroll turns a signed amount into wheel clicks: positive scrolls up
// (button 4), negative down (button 5).
func (d *XdotoolDriver) Scroll(ctx context.Context, amount int) error {
	if amount == 0 {
		return nil
	}
	button := "4"
	if amount < 0 {
		button, amount = "5", -amount
	}
	notches := max(amount/scrollNotch, 1)
	_, err := d.exec(ctx, "click", "--repeat", strconv.Itoa(notches), button)
	return err
}
