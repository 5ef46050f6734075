//go:build linux

// internal/desktop/driver_linux.go
package desktop

import (
	"fmt"
	"os/exec"
)

// NewSystemDriver returns the xdotool backed driver.
func NewSystemDriver() (InputDriver, error) {
	if _, err := exec.LookPath(xdotoolBin); err != nil {
		return nil, fmt.Errorf("%w: %s not found in PATH", ErrUnsupportedPlatform, xdotoolBin)
	}
	return NewXdotoolDriver(execRunner), nil
}
