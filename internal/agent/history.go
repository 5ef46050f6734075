// internal/agent/history.go
package agent

import (
	"slices"

	"github.com/xkilldash9x/deskpilot/internal/llmclient"
)

// Conversation is the ordered record of completed model exchanges of one
// instruction run. Turns are only appended after the model answered.
type Conversation struct {
	turns []llmclient.Turn
}

// Append records a completed exchange.
func (c *Conversation) Append(screenshot []byte, reply string) {
	c.turns = append(c.turns, llmclient.Turn{Screenshot: screenshot, Reply: reply})
}

// Turns returns the exchanges in order. The slice is a copy.
func (c *Conversation) Turns() []llmclient.Turn {
	return slices.Clone(c.turns)
}

// Len is the number of recorded exchanges.
func (c *Conversation) Len() int { return len(c.turns) }
