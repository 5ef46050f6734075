// internal/llmclient/prompts.go
package llmclient

import (
	"slices"
	"strings"
)

var actionSpace = []string{
	"click(start_box='(x,y)')",
	"left_double(start_box='(x,y)')",
	"right_single(start_box='(x,y)')",
	"drag(start_box='(x1,y1)', end_box='(x2,y2)')",
	"hotkey(key='ctrl c')   # Keys are lowercase, space-separated. Max 3 keys.",
	`type(content='text')   # Use escape chars (\', \", \n). Add \n if Enter is needed.`,
	"scroll(start_box='(x,y)', direction='down')   # Direction: down, up, left, right.",
	"wait()   # Sleep 5s and take a screenshot to check for changes.",
	"finished()   # Task done.",
	"authenticate()   # Use this when OTP, mobile number, or user authentication is required.",
	"call_user()   # Use this if blocked, task unsolvable, or user input or control is needed.",
}

const systemPrompt = "You are a highly precise GUI automation agent. " +
	"You must ONLY use the provided action space and output EXACTLY ONE action per step. " +
	"Strictly follow the sequence of steps given by the user instruction. " +
	"DO NOT perform any actions beyond those listed. " +
	"IMPORTANT: If you see any phone number input field, OTP field, verification code field, or 2FA prompt, " +
	"you MUST immediately use `authenticate()` without entering any data. " +
	"DO NOT type fake phone numbers or OTP codes, always use `authenticate()` for any authentication fields. " +
	"If the flow deviates or an unexpected behavior occurs, use `call_user()`. " +
	"If unsure, use `wait()` or `call_user()`."

const userPromptHeader = `You are a GUI agent. You are given a task and its action history with screenshots.
Strictly follow the sequence of steps below.
Do not perform any actions beyond those explicitly listed in the instruction.
If the flow deviates or an unexpected behavior occurs, stop immediately and use ` + "`call_user()`" + `.

RULES:
- Output exactly ONE action per step.
- Only perform the action explicitly stated in the instruction.
- Do NOT try to perform, infer, or add extra actions beyond what is listed.
- Use English in ` + "`Thought`" + `.
- Keep ` + "`Thought`" + ` concise: explain why this is the next step.

## Output Format

Thought: Explain briefly why this is the correct next step.
Action: one_action_from_action_space

## Action Space
`

// SystemPrompt returns the system message sent with every step.
func SystemPrompt() string { return systemPrompt }

// ActionSpace returns the action signatures advertised to the model.
func ActionSpace() []string { return slices.Clone(actionSpace) }

// UserPrompt renders the per-instruction user message.
func UserPrompt(instruction string) string {
	var b strings.Builder
	b.WriteString(userPromptHeader)
	b.WriteString(strings.Join(actionSpace, "\n"))
	b.WriteString("\n\n## User Task Instruction\n")
	b.WriteString(instruction)
	b.WriteString("\n")
	return b.String()
}
