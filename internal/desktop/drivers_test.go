// internal/desktop/drivers_test.go
package desktop

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedRunner records invocations and answers with canned output.
type scriptedRunner struct {
	invocations [][]string
	output      string
	err         error
}

func (r *scriptedRunner) run(_ context.Context, name string, args ...string) ([]byte, error) {
	r.invocations = append(r.invocations, append([]string{name}, args...))
	return []byte(r.output), r.err
}

func (r *scriptedRunner) lines() []string {
	out := make([]string, len(r.invocations))
	for i, inv := range r.invocations {
		out[i] = strings.Join(inv, " ")
	}
	return out
}

func TestXdotoolDriver_Commands(t *testing.T) {
	r := &scriptedRunner{}
	d := NewXdotoolDriver(r.run)
	ctx := context.Background()

	require.NoError(t, d.MoveTo(ctx, 12, 34))
	require.NoError(t, d.ButtonDown(ctx, ButtonLeft))
	require.NoError(t, d.ButtonUp(ctx, ButtonLeft))
	require.NoError(t, d.Click(ctx, ButtonLeft, 2))
	require.NoError(t, d.Click(ctx, ButtonRight, 0))
	require.NoError(t, d.Hotkey(ctx, "ctrl", "a"))
	require.NoError(t, d.Hotkey(ctx, "pagedown"))
	require.NoError(t, d.TypeText(ctx, "hi there", 10*time.Millisecond))

	assert.Equal(t, []string{
		"xdotool mousemove 12 34",
		"xdotool mousedown 1",
		"xdotool mouseup 1",
		"xdotool click --repeat 2 1",
		"xdotool click --repeat 1 3",
		"xdotool key --clearmodifiers ctrl+a",
		"xdotool key --clearmodifiers Next",
		"xdotool type --delay 10 -- hi there",
	}, r.lines())
}

func TestXdotoolDriver_Scroll(t *testing.T) {
	tests := []struct {
		amount int
		want   []string
	}{
		{-500, []string{"xdotool click --repeat 5 5"}},
		{500, []string{"xdotool click --repeat 5 4"}},
		{30, []string{"xdotool click --repeat 1 4"}},
		{0, []string{}},
	}
	for _, tt := range tests {
		r := &scriptedRunner{}
		require.NoError(t, NewXdotoolDriver(r.run).Scroll(context.Background(), tt.amount))
		assert.Equal(t, tt.want, r.lines(), "amount %d", tt.amount)
	}
}

func TestXdotoolDriver_CursorPosition(t *testing.T) {
	r := &scriptedRunner{output: "X=640\nY=480\nSCREEN=0\nWINDOW=123\n"}
	x, y, err := NewXdotoolDriver(r.run).CursorPosition(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 640, x)
	assert.Equal(t, 480, y)

	r.output = "garbage"
	_, _, err = NewXdotoolDriver(r.run).CursorPosition(context.Background())
	assert.ErrorContains(t, err, "unexpected getmouselocation output")

	r.err = errors.New("exit status 1")
	_, _, err = NewXdotoolDriver(r.run).CursorPosition(context.Background())
	assert.EqualError(t, err, "exit status 1")
}

func TestXdotoolDriver_HotkeyWithoutKeys(t *testing.T) {
	r := &scriptedRunner{}
	assert.Error(t, NewXdotoolDriver(r.run).Hotkey(context.Background()))
	assert.Empty(t, r.invocations)
}

func TestCliclickDriver_Commands(t *testing.T) {
	r := &scriptedRunner{}
	d := NewCliclickDriver(r.run)
	ctx := context.Background()

	require.NoError(t, d.MoveTo(ctx, 12, 34))
	require.NoError(t, d.ButtonDown(ctx, ButtonLeft))
	require.NoError(t, d.ButtonUp(ctx, ButtonLeft))
	require.NoError(t, d.Click(ctx, ButtonLeft, 1))
	require.NoError(t, d.Click(ctx, ButtonLeft, 2))
	require.NoError(t, d.Click(ctx, ButtonRight, 1))
	require.NoError(t, d.Hotkey(ctx, "cmd", "shift", "t"))
	require.NoError(t, d.Hotkey(ctx, "enter"))
	require.NoError(t, d.TypeText(ctx, "hello", 0))

	assert.Equal(t, []string{
		"cliclick m:12,34",
		"cliclick dd:.",
		"cliclick du:.",
		"cliclick c:.",
		"cliclick dc:.",
		"cliclick rc:.",
		"cliclick kd:cmd,shift t:t ku:cmd,shift",
		"cliclick kp:return",
		"cliclick -w 1 t:hello",
	}, r.lines())
}

func TestCliclickDriver_Unsupported(t *testing.T) {
	r := &scriptedRunner{}
	d := NewCliclickDriver(r.run)
	ctx := context.Background()

	assert.ErrorIs(t, d.Scroll(ctx, -500), ErrUnsupportedPlatform)
	assert.Error(t, d.ButtonDown(ctx, ButtonRight))
	assert.Error(t, d.Click(ctx, ButtonMiddle, 1))
	assert.Empty(t, r.invocations)
}

func TestCliclickDriver_CursorPosition(t *testing.T) {
	r := &scriptedRunner{output: "812,33\n"}
	x, y, err := NewCliclickDriver(r.run).CursorPosition(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 812, x)
	assert.Equal(t, 33, y)

	r.output = "nope"
	_, _, err = NewCliclickDriver(r.run).CursorPosition(context.Background())
	assert.Error(t, err)
}
