// internal/session/batch.go
package session

import (
	"context"
	"errors"
	"strings"

	"github.com/xkilldash9x/deskpilot/internal/agent"
)

// ErrNoInstructions is returned when a batch file holds no instruction block.
var ErrNoInstructions = errors.New("no instructions found")

// Placeholders replaced by Substitute.
const (
	OTPPlaceholder    = "$Number"
	MobilePlaceholder = "$Mobile"
)

// SplitInstructions cuts raw into blocks separated by a blank line. Blocks are
// trimmed and empty ones dropped.
func SplitInstructions(raw string) []string {
	var blocks []string
	for block := range strings.SplitSeq(raw, "\n\n") {
		if b := strings.TrimSpace(block); b != "" {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

// Substitute fills the OTP and mobile placeholders. A nil value leaves its
// placeholder untouched; an empty string removes it.
func Substitute(raw string, otp, mobile *string) string {
	if otp != nil {
		raw = strings.ReplaceAll(raw, OTPPlaceholder, *otp)
	}
	if mobile != nil {
		raw = strings.ReplaceAll(raw, MobilePlaceholder, *mobile)
	}
	return raw
}

// BlockFunc runs one instruction block and returns its exit code. idx is
// 1-based.
type BlockFunc func(ctx context.Context, idx int, block string) int

// RunBatch runs blocks in order and stops at the first nonzero exit code,
// which it returns. Authentication requests (3) halt the batch like any other
// failure so the operator can rerun with --otp/--mobile. A cancelled context
// yields the interrupt code.
func RunBatch(ctx context.Context, blocks []string, run BlockFunc) int {
	for i, block := range blocks {
		if ctx.Err() != nil {
			return agent.ExitInterrupted
		}
		code := run(ctx, i+1, block)
		if code != 0 {
			return code
		}
	}
	return 0
}
