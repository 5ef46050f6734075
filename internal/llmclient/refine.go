// internal/llmclient/refine.go
package llmclient

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const refineSystemPrompt = `You are a task breakdown assistant. Break down user instructions into simple, step-by-step actions.

RULES:
1. Each action goes on its own line
2. Put an empty line between each action
3. Keep exact text unchanged (emails, passwords, names, numbers)
4. Make each step clear and simple
5. Break down ALL parts of the instruction

EXAMPLES:

Example 1:
Input: "Launch the calculator app and add 5 plus 3"
Output:
Launch the calculator application.

Click on the number 5.

Click the plus button.

Click on the number 3.

Click the equals button to get the result.

Example 2:
Input: "Open browser, go to google.com, search for 'python tutorial'"
Output:
Open the web browser.

Navigate to google.com.

Click on the search box.

Type python tutorial in the search field.

Press Enter or click the search button.

Example 3:
Input: "Fill out the form with name 'John Doe' and email 'john@company.com', then submit"
Output:
Locate the name field in the form.

Enter John Doe in the name field.

Click on the email field.

Enter john@company.com in the email field.

Click the submit button.

Now break down this instruction:
`

// Refiner rewrites a free-form instruction into blank-line separated steps
// that the batch runner can execute one at a time.
type Refiner struct {
	client    Client
	maxTokens int
	logger    *zap.Logger
}

// NewRefiner creates a Refiner on top of any Client.
func NewRefiner(client Client, maxTokens int, logger *zap.Logger) *Refiner {
	return &Refiner{client: client, maxTokens: maxTokens, logger: logger.Named("refiner")}
}

// Refine asks the model for a step breakdown and normalizes the answer.
func (r *Refiner) Refine(ctx context.Context, instruction string) (string, error) {
	if strings.TrimSpace(instruction) == "" {
		return "", fmt.Errorf("instruction is empty")
	}

	r.logger.Debug("Requesting instruction breakdown", zap.Int("instruction_len", len(instruction)))
	out, err := r.client.Complete(ctx, Request{
		System:    refineSystemPrompt,
		Prompt:    instruction,
		MaxTokens: r.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to refine instruction: %w", err)
	}
	r.logger.Debug("Raw refine output", zap.String("output", out))

	refined := FormatSteps(SanitizeInstruction(out))
	if refined == "" {
		return "", ErrEmptyResponse
	}
	return refined, nil
}

// SanitizeInstruction strips quotation marks and leaves every other
// character alone, since emails and passwords rely on them.
func SanitizeInstruction(text string) string {
	return strings.NewReplacer(`"`, "", "'", "").Replace(text)
}

// FormatSteps puts each non-empty trimmed line on its own, separated by one
// blank line.
func FormatSteps(text string) string {
	var steps []string
	for line := range strings.SplitSeq(strings.TrimSpace(text), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			steps = append(steps, line)
		}
	}
	return strings.Join(steps, "\n\n")
}
