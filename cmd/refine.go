// File: cmd/refine.go
package cmd

import (
	"context"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/deskpilot/internal/agent"
	"github.com/xkilldash9x/deskpilot/internal/llmclient"
)

// defaultRefineOutput receives the refined instructions when --output is unset.
const defaultRefineOutput = "new_instruction.txt"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func newRefineCmd(a *app) *cobra.Command {
	var file, output string
	var debug bool

	cmd := &cobra.Command{
		Use:   "refine [instruction]",
		Short: "Break an instruction into simple steps for batch runs",
		Long: `Refine asks the model to rewrite an instruction as one simple action per
line, separated by empty lines, ready for the batch command.

Use --file for instructions with characters your shell would interpret
($, quotes, and so on).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := console{out: cmd.OutOrStdout()}

			if (len(args) == 1) == (file != "") {
				out.Error("Error: provide either an instruction or --file, not both.")
				return exitWith(agent.ExitInternal)
			}

			instruction := ""
			if file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					out.Error("Error reading file: %v", err)
					return exitWith(agent.ExitInternal)
				}
				instruction = string(data)
			} else {
				instruction = args[0]
			}
			if output == "" {
				output = defaultRefineOutput
			}
			return exitWith(a.refine(cmd.Context(), out, instruction, output, debug))
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the instruction from a file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "where to save the refined instructions (default "+defaultRefineOutput+")")
	cmd.Flags().BoolVar(&debug, "debug", false, "print the request sent to the model")
	return cmd
}

func (a *app) refine(ctx context.Context, out console, instruction, output string, debug bool) int {
	if strings.TrimSpace(instruction) == "" {
		out.Error("Error: Empty instruction provided.")
		return agent.ExitInternal
	}

	llmCfg := a.cfg.LLM()
	client, err := a.newModel(llmCfg, a.logger)
	if err != nil {
		out.Error("Error: %v", err)
		return agent.ExitInternal
	}

	if debug {
		payload, _ := json.MarshalIndent(map[string]any{
			"provider":   llmCfg.Provider,
			"model":      llmCfg.Model,
			"max_tokens": llmCfg.RefineMaxTokens,
			"prompt":     instruction,
		}, "", "  ")
		out.Info("Request:\n%s", payload)
	}

	out.Info("Calling %s...", llmCfg.Model)
	refined, err := llmclient.NewRefiner(client, llmCfg.RefineMaxTokens, a.logger).Refine(ctx, instruction)
	if err != nil {
		if ctx.Err() != nil {
			out.Warn("Operation interrupted by user.")
			return agent.ExitInterrupted
		}
		a.logger.Error("Instruction refinement failed.", zap.Error(err))
		out.Error("Failed to generate new instructions: %v", err)
		return 1
	}

	if err := os.WriteFile(output, []byte(refined), 0o644); err != nil {
		out.Error("Error writing %s: %v", output, err)
		return agent.ExitInternal
	}

	out.Success("\nNew instructions saved to: %s", output)
	out.Info("\nNew Instructions:\n%s\n%s\n%s", strings.Repeat("-", 40), refined, strings.Repeat("-", 40))
	return 0
}
