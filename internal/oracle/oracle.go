// Package oracle is the decision boundary of the simulation: everything that
// turns a character's situation into a structured Decision or a line of
// dialog lives behind the Oracle interface. The production implementation
// talks to Gemini; tests and the headless bot use the scripted one.
package oracle

import (
	"context"

	"oakvale.ai/internal/protocol"
	"oakvale.ai/internal/sim/world"
)

// Oracle produces decisions and dialog for one character at a time. Both
// calls may block on network I/O; callers bound them with the context.
// Implementations must be safe for use from a single worker goroutine but
// are not required to be safe for concurrent use.
type Oracle interface {
	// Decide returns the character's next action. Implementations degrade
	// rather than fail where possible: a malformed upstream reply becomes a
	// "wait" decision, and only transport-level problems surface as errors.
	Decide(ctx context.Context, sheet *world.Character, view protocol.WorldView, history []string) (protocol.Decision, error)

	// Dialog returns the character's spoken reply to a player message.
	Dialog(ctx context.Context, sheet *world.Character, playerMessage string, history []string) (string, error)
}
