//go:build darwin

// internal/desktop/driver_darwin.go
package desktop

import (
	"fmt"
	"os/exec"
)

// NewSystemDriver returns the cliclick backed driver.
func NewSystemDriver() (InputDriver, error) {
	if _, err := exec.LookPath(cliclickBin); err != nil {
		return nil, fmt.Errorf("%w: %s not found in PATH (brew install cliclick)", ErrUnsupportedPlatform, cliclickBin)
	}
	return NewCliclickDriver(execRunner), nil
}
