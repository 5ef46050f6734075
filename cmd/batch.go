// File: cmd/batch.go
package cmd

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/deskpilot/internal/agent"
	"github.com/xkilldash9x/deskpilot/internal/session"
	"github.com/xkilldash9x/deskpilot/internal/timing"
)

// authExitCode is the exit code of a run that needs an OTP or mobile number.
const authExitCode = 3

func newBatchCmd(a *app) *cobra.Command {
	var otp, mobile string

	cmd := &cobra.Command{
		Use:   "batch <instructions-file>",
		Short: "Run blank-line separated instruction blocks one after another",
		Long: `Batch reads a file of instruction blocks separated by empty lines and runs
each block as its own instruction. All runs share one parent session folder.

The placeholders $Number and $Mobile are replaced with --otp and --mobile.
The batch stops at the first block that does not finish; its exit code is
returned (3 means authentication is required, rerun with --otp/--mobile).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := console{out: cmd.OutOrStdout()}

			var otpValue, mobileValue *string
			if cmd.Flags().Changed("otp") {
				otpValue = &otp
			}
			if cmd.Flags().Changed("mobile") {
				mobileValue = &mobile
			}
			return exitWith(a.runBatch(cmd.Context(), out, args[0], otpValue, mobileValue))
		},
	}
	cmd.Flags().StringVar(&otp, "otp", "", "OTP value that replaces $Number in the instructions")
	cmd.Flags().StringVar(&mobile, "mobile", "", "mobile number that replaces $Mobile in the instructions")
	return cmd
}

func (a *app) runBatch(ctx context.Context, out console, path string, otp, mobile *string) int {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		out.Error("Instructions file not found: %s", path)
		return agent.ExitInternal
	}
	if err != nil {
		out.Error("Error reading instructions file: %v", err)
		return agent.ExitInternal
	}

	raw := session.Substitute(string(data), otp, mobile)
	if otp != nil {
		out.Info("Replaced %s with OTP value: %s", session.OTPPlaceholder, *otp)
	}
	if mobile != nil {
		out.Info("Replaced %s with mobile number: %s", session.MobilePlaceholder, *mobile)
	}

	blocks := session.SplitInstructions(raw)
	if len(blocks) == 0 {
		a.logger.Error("Batch file is empty.", zap.String("path", path), zap.Error(session.ErrNoInstructions))
		out.Error("No instructions found in the file. Exiting.")
		return agent.ExitInternal
	}

	if err := timing.Sleep(ctx, a.cfg.Batch().StartDelay); err != nil {
		out.Warn("Operation interrupted by user.")
		return agent.ExitInterrupted
	}

	parentID := session.NewParentID()
	out.Info("\n--- [Batch Session] All instructions will be grouped under: session_%s ---\n", parentID)

	code := session.RunBatch(ctx, blocks, func(ctx context.Context, idx int, block string) int {
		out.Info("\n--- [Instruction %d/%d] Sending instruction ---\n%s\nUsing parent session: session_%s\n", idx, len(blocks), block, parentID)
		if err := timing.Sleep(ctx, a.cfg.Batch().BlockDelay); err != nil {
			out.Warn("Operation interrupted by user.")
			return agent.ExitInterrupted
		}
		return a.runInstruction(ctx, out, block, parentID, false)
	})

	switch code {
	case 0:
		out.Success("\nAll instructions completed successfully.")
	case authExitCode:
		out.Warn("\n--- [Authentication Required] An instruction requested authentication (OTP/mobile number) ---")
		out.Warn("Exit code 3 returned. You can now execute the OTP/mobile number instructions.")
		out.Warn("Note: Use --otp and --mobile arguments if you have OTP/mobile values to pass.")
	case agent.ExitInterrupted:
		// Reported by the interrupted block.
	default:
		out.Error("Stopping execution of remaining instructions.")
	}
	return code
}
