// internal/desktop/capture.go
package desktop

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/mattn/go-shellwords"
	"go.uber.org/zap"

	"github.com/xkilldash9x/deskpilot/internal/config"
)

// pathPlaceholder is replaced with the output file in screenshot commands.
const pathPlaceholder = "{path}"

// ScreenCapturer saves screenshots by running the first working command
// from a list of templates, then scales them to the logical screen size.
type ScreenCapturer struct {
	commands [][]string
	width    int
	height   int
	logger   *zap.Logger

	run      commandRunner
	lookPath func(string) (string, error)
	now      func() time.Time
}

// NewScreenCapturer parses the command templates of cfg.
func NewScreenCapturer(cfg config.DesktopConfig, logger *zap.Logger) (*ScreenCapturer, error) {
	commands := make([][]string, 0, len(cfg.ScreenshotCommands))
	for _, tmpl := range cfg.ScreenshotCommands {
		args, err := shellwords.Parse(tmpl)
		if err != nil {
			return nil, fmt.Errorf("invalid screenshot command %q: %w", tmpl, err)
		}
		if len(args) == 0 {
			continue
		}
		commands = append(commands, args)
	}
	if len(commands) == 0 {
		return nil, fmt.Errorf("%w: no screenshot commands configured", ErrNoScreenshotTool)
	}

	return &ScreenCapturer{
		commands: commands,
		width:    cfg.LogicalWidth,
		height:   cfg.LogicalHeight,
		logger:   logger.Named("screen_capturer"),
		run:      execRunner,
		lookPath: exec.LookPath,
		now:      time.Now,
	}, nil
}

// Capture writes screenshot_<YYYYmmdd_HHMMSS>.png into dir and returns its
// path. A numeric suffix keeps two captures within one second apart.
func (c *ScreenCapturer) Capture(ctx context.Context, dir string) (string, error) {
	path, err := c.nextPath(dir)
	if err != nil {
		return "", err
	}

	var errs []error
	captured := false
	for _, tmpl := range c.commands {
		if _, err := c.lookPath(tmpl[0]); err != nil {
			errs = append(errs, fmt.Errorf("%s: not installed", tmpl[0]))
			continue
		}
		args := make([]string, len(tmpl)-1)
		for i, a := range tmpl[1:] {
			args[i] = strings.ReplaceAll(a, pathPlaceholder, path)
		}
		if _, err := c.run(ctx, tmpl[0], args...); err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			errs = append(errs, err)
			continue
		}
		if _, err := os.Stat(path); err != nil {
			errs = append(errs, fmt.Errorf("%s did not write %s", tmpl[0], path))
			continue
		}
		captured = true
		break
	}
	if !captured {
		return "", fmt.Errorf("%w: %w", ErrNoScreenshotTool, errors.Join(errs...))
	}

	if err := c.scale(path); err != nil {
		return "", err
	}
	c.logger.Debug("Screenshot captured.", zap.String("path", path))
	return path, nil
}

func (c *ScreenCapturer) nextPath(dir string) (string, error) {
	base := "screenshot_" + c.now().Format("20060102_150405")
	path := filepath.Join(dir, base+".png")
	for n := 1; ; n++ {
		_, err := os.Stat(path)
		if errors.Is(err, os.ErrNotExist) {
			return path, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check screenshot path: %w", err)
		}
		path = filepath.Join(dir, fmt.Sprintf("%s_%d.png", base, n))
	}
}

// scale resizes the image to the logical screen size when one is configured
// and the captured image differs from it (HiDPI screens).
func (c *ScreenCapturer) scale(path string) error {
	if c.width <= 0 || c.height <= 0 {
		return nil
	}
	img, err := imaging.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open screenshot: %w", err)
	}
	b := img.Bounds()
	if b.Dx() == c.width && b.Dy() == c.height {
		return nil
	}

	c.logger.Info("Screen scaling detected, resizing screenshot.",
		zap.Int("physical_width", b.Dx()), zap.Int("physical_height", b.Dy()),
		zap.Int("logical_width", c.width), zap.Int("logical_height", c.height),
	)
	resized := imaging.Resize(img, c.width, c.height, imaging.Lanczos)
	if err := imaging.Save(resized, path); err != nil {
		return fmt.Errorf("failed to save resized screenshot: %w", err)
	}
	return nil
}
