//go:build !linux && !darwin

// internal/desktop/driver_other.go
package desktop

// NewSystemDriver has no implementation on this platform.
func NewSystemDriver() (InputDriver, error) {
	return nil, ErrUnsupportedPlatform
}
