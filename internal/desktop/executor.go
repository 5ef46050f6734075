// internal/desktop/executor.go
package desktop

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"

	"github.com/xkilldash9x/deskpilot/internal/action"
	"github.com/xkilldash9x/deskpilot/internal/agent"
	"github.com/xkilldash9x/deskpilot/internal/config"
	"github.com/xkilldash9x/deskpilot/internal/motion"
	"github.com/xkilldash9x/deskpilot/internal/timing"
)

// Clipboard reads and writes the system clipboard.
type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

type systemClipboard struct{}

func (systemClipboard) ReadAll() (string, error)   { return clipboard.ReadAll() }
func (systemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

// Executor carries out parsed actions with an InputDriver.
type Executor struct {
	driver    InputDriver
	clipboard Clipboard
	cfg       config.DesktopConfig
	goos      string
	logger    *zap.Logger
	sleep     func(ctx context.Context, d time.Duration) error
}

var _ agent.ActionExecutor = (*Executor)(nil)

// Option customizes an Executor.
type Option func(*Executor)

// WithClipboard replaces the system clipboard.
func WithClipboard(c Clipboard) Option { return func(e *Executor) { e.clipboard = c } }

// WithGOOS overrides the platform used for key aliases.
func WithGOOS(goos string) Option { return func(e *Executor) { e.goos = goos } }

// NewExecutor creates an Executor.
func NewExecutor(driver InputDriver, cfg config.DesktopConfig, logger *zap.Logger, opts ...Option) *Executor {
	e := &Executor{
		driver:    driver,
		clipboard: systemClipboard{},
		cfg:       cfg,
		goos:      runtime.GOOS,
		logger:    logger.Named("desktop_executor"),
		sleep:     timing.Sleep,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute performs a. Failures the executor understands are reported as a
// failed ExecutionResult; a Go error is only returned for cancellation.
func (e *Executor) Execute(ctx context.Context, a action.Action) (*agent.ExecutionResult, error) {
	var err error
	switch action.KindOf(a.Name) {
	case action.KindClick, action.KindLeftDouble, action.KindRightSingle:
		err = e.click(ctx, a)
	case action.KindType:
		err = e.typeText(ctx, a)
	case action.KindScroll:
		err = e.scroll(ctx, a)
	case action.KindDrag:
		err = e.drag(ctx, a)
	case action.KindHotkey:
		err = e.hotkey(ctx, a)
	case action.KindWait:
		e.logger.Info("Waiting...", zap.Duration("duration", e.cfg.WaitDuration))
		err = e.sleep(ctx, e.cfg.WaitDuration)
	case action.KindFinished:
		e.logger.Info("Task marked as finished.")
		return &agent.ExecutionResult{Status: agent.StatusStop}, nil
	case action.KindAuthenticate:
		e.logger.Info("User authentication (OTP/mobile number) required.")
		return &agent.ExecutionResult{Status: agent.StatusAuthenticate}, nil
	case action.KindCallUser:
		e.logger.Info("Pausing operation and waiting for user input.")
		return &agent.ExecutionResult{Status: agent.StatusCallUser}, nil
	case action.KindUnknown:
		return e.fail(agent.ErrCodeUnknownAction, fmt.Sprintf("unknown action type: %s", a.Name)), nil
	}

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var pe *paramError
		if errors.As(err, &pe) {
			return e.fail(agent.ErrCodeInvalidParameters, pe.Error()), nil
		}
		if errors.Is(err, errClipboardWrite) {
			return e.fail(agent.ErrCodeExecutionFailure, err.Error()), nil
		}
		return e.fail(agent.ErrCodeInputDriver, fmt.Sprintf("error executing action %s: %v", a.Name, err)), nil
	}

	if err := e.sleep(ctx, e.cfg.SettleDelay); err != nil {
		return nil, err
	}
	return &agent.ExecutionResult{Status: agent.StatusContinue}, nil
}

// ShowDesktop minimizes all windows with the configured key combination.
func (e *Executor) ShowDesktop(ctx context.Context) error {
	keys := NormalizeKeys(e.cfg.ShowDesktopKeys, e.goos)
	if len(keys) == 0 {
		return nil
	}
	if err := e.driver.Hotkey(ctx, keys...); err != nil {
		return fmt.Errorf("failed to show desktop: %w", err)
	}
	return nil
}

// paramError marks a missing or invalid action parameter.
type paramError struct{ msg string }

func (p *paramError) Error() string { return p.msg }

var errClipboardWrite = errors.New("failed to write clipboard")

func (e *Executor) fail(code agent.ErrorCode, msg string) *agent.ExecutionResult {
	e.logger.Warn("Action failed.", zap.String("error_code", string(code)), zap.String("message", msg))
	return &agent.ExecutionResult{Status: agent.StatusFailed, ErrorCode: code, Message: msg}
}

func requirePoint(a action.Action, key string) (action.Point, error) {
	p, ok := a.Params.Point(key)
	if !ok {
		return action.Point{}, &paramError{msg: fmt.Sprintf("could not determine coordinates for %s (%s)", a.Name, key)}
	}
	return p, nil
}

// glideTo moves the pointer to p over d, starting from the current cursor
// position. If the position is unknown it jumps.
func (e *Executor) glideTo(ctx context.Context, p action.Point, d time.Duration) error {
	x, y, err := e.driver.CursorPosition(ctx)
	if err != nil {
		e.logger.Debug("Cursor position unavailable, jumping.", zap.Error(err))
		return e.driver.MoveTo(ctx, p.X, p.Y)
	}
	return motion.Glide(ctx, e.driver, motion.Pt(x, y), motion.Pt(p.X, p.Y), d)
}

func (e *Executor) click(ctx context.Context, a action.Action) error {
	p, err := requirePoint(a, "start_box")
	if err != nil {
		return err
	}
	if err := e.glideTo(ctx, p, e.cfg.MoveDuration); err != nil {
		return err
	}

	switch action.KindOf(a.Name) {
	case action.KindLeftDouble:
		return e.driver.Click(ctx, ButtonLeft, 2)
	case action.KindRightSingle:
		return e.driver.Click(ctx, ButtonRight, 1)
	default:
		if err := e.driver.ButtonDown(ctx, ButtonLeft); err != nil {
			return err
		}
		if err := e.sleep(ctx, e.cfg.ClickHold); err != nil {
			return err
		}
		return e.driver.ButtonUp(ctx, ButtonLeft)
	}
}

func (e *Executor) typeText(ctx context.Context, a action.Action) error {
	content, _ := a.Params.Text("content")

	// Clear the focused field first.
	if keys := NormalizeKeys(e.cfg.SelectAllKeys, e.goos); len(keys) > 0 {
		if err := e.driver.Hotkey(ctx, keys...); err != nil {
			return err
		}
		if err := e.sleep(ctx, e.cfg.KeyDelay); err != nil {
			return err
		}
	}
	if err := e.driver.Hotkey(ctx, "backspace"); err != nil {
		return err
	}
	if err := e.sleep(ctx, e.cfg.KeyDelay); err != nil {
		return err
	}

	text, pressEnter := splitTrailingNewline(strings.TrimRight(content, " \t"))
	text = strings.TrimSpace(text)
	if text != "" {
		var err error
		if e.cfg.PasteTyping {
			err = e.paste(ctx, text)
		} else {
			err = e.driver.TypeText(ctx, text, e.cfg.TypeInterval)
		}
		if err != nil {
			return err
		}
	}

	if pressEnter {
		return e.driver.Hotkey(ctx, "enter")
	}
	return nil
}

// splitTrailingNewline removes one trailing newline, written either as the
// escape sequence `\n` or a real line feed, and reports whether it was there.
func splitTrailingNewline(s string) (string, bool) {
	if rest, ok := strings.CutSuffix(s, `\n`); ok {
		return rest, true
	}
	if rest, ok := strings.CutSuffix(s, "\n"); ok {
		return rest, true
	}
	return s, false
}

// paste types text through the clipboard and restores the previous content.
func (e *Executor) paste(ctx context.Context, text string) error {
	previous, readErr := e.clipboard.ReadAll()
	if err := e.clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("%w: %v", errClipboardWrite, err)
	}
	if err := e.driver.Hotkey(ctx, NormalizeKeys(e.cfg.PasteKeys, e.goos)...); err != nil {
		return err
	}
	if err := e.sleep(ctx, e.cfg.KeyDelay); err != nil {
		return err
	}
	if readErr != nil {
		e.logger.Debug("Previous clipboard content unavailable, not restoring.", zap.Error(readErr))
		return nil
	}
	if err := e.clipboard.WriteAll(previous); err != nil {
		e.logger.Warn("Failed to restore clipboard.", zap.Error(err))
	}
	return nil
}

func (e *Executor) scroll(ctx context.Context, a action.Action) error {
	if p, ok := a.Params.Point("start_box"); ok {
		if err := e.glideTo(ctx, p, e.cfg.MoveDuration); err != nil {
			return err
		}
	}

	direction, ok := a.Params.Text("direction")
	if !ok {
		direction = "down"
	}
	amount := e.cfg.ScrollAmount
	if direction == "down" {
		amount = -amount
	}
	return e.driver.Scroll(ctx, amount)
}

func (e *Executor) drag(ctx context.Context, a action.Action) error {
	start, err := requirePoint(a, "start_box")
	if err != nil {
		return err
	}
	end, err := requirePoint(a, "end_box")
	if err != nil {
		return err
	}

	if err := e.glideTo(ctx, start, e.cfg.MoveDuration); err != nil {
		return err
	}
	if err := e.driver.ButtonDown(ctx, ButtonLeft); err != nil {
		return err
	}
	glideErr := motion.Glide(ctx, e.driver, motion.Pt(start.X, start.Y), motion.Pt(end.X, end.Y), e.cfg.DragDuration)
	// Always release, even if the glide was interrupted.
	upErr := e.driver.ButtonUp(context.WithoutCancel(ctx), ButtonLeft)
	if glideErr != nil {
		return glideErr
	}
	return upErr
}

func (e *Executor) hotkey(ctx context.Context, a action.Action) error {
	combo, ok := a.Params.Text("key")
	if !ok {
		combo = "enter"
	}
	keys := NormalizeKeys(combo, e.goos)
	if len(keys) == 0 {
		return &paramError{msg: "invalid hotkey specification"}
	}
	return e.driver.Hotkey(ctx, keys...)
}
