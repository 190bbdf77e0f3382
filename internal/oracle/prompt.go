package oracle

import (
	"encoding/json"
	"fmt"
	"strings"

	"oakvale.ai/internal/protocol"
	"oakvale.ai/internal/sim/world"
)

const decisionSystemPrompt = `You are roleplaying as an NPC in a D&D-style game.
Based on your character sheet, memories, and current situation, decide what action to take next.
Respond with a single JSON object using exactly these keys:

{"action": "move/talk/use/attack/wait/etc", "target": "target of the action", "dialog": "anything the character says aloud", "thoughts": "internal thoughts, not spoken", "emotion": "current emotional state", "goal_update": "any updates to current goals"}

Be authentic to your character's personality and motivations.`

// decisionPrompt lays out everything the model needs to act in character:
// the full sheet, where and when it is, what it can see, and what it
// remembers. Mirrors the sections a human DM would recap before asking
// "what do you do?".
func decisionPrompt(sheet *world.Character, view protocol.WorldView, history []string) string {
	var b strings.Builder

	b.WriteString("CHARACTER SHEET:\n")
	b.WriteString(characterSheetJSON(sheet))

	fmt.Fprintf(&b, "\n\nCURRENT LOCATION:\n%s\n", view.Location)
	if view.GameTime != "" {
		fmt.Fprintf(&b, "\nGAME TIME:\n%s\n", view.GameTime)
	}
	fmt.Fprintf(&b, "\nTIME OF DAY:\n%s\n", view.TimeOfDay)
	if view.PlayerPosition != "" {
		fmt.Fprintf(&b, "\nPLAYER POSITION:\n%s\n", view.PlayerPosition)
	}
	fmt.Fprintf(&b, "\nVISIBLE ENVIRONMENT:\n%s\n", view.VisibleArea)

	b.WriteString("\nRECENT HISTORY:\n")
	for _, line := range tail(history, 5) {
		b.WriteString("- ")
		b.WriteString(line)
		b.WriteByte('\n')
	}

	b.WriteString("\nMEMORIES:\n")
	for _, m := range tailMemories(sheet.Memories, 10) {
		b.WriteString("- ")
		b.WriteString(m.Text)
		b.WriteByte('\n')
	}

	fmt.Fprintf(&b, "\nBased on this information, what does %s do next?\n", sheet.Name)
	return b.String()
}

func dialogSystemPrompt(sheet *world.Character) string {
	return fmt.Sprintf(`You are roleplaying as %s, a %s %s in a fantasy RPG.
Respond to the player in character, according to your personality, goals, and memories.
Keep your response brief and conversational.`, sheet.Name, sheet.Race, sheet.Class)
}

func dialogPrompt(sheet *world.Character, playerMessage string, history []string) string {
	var b strings.Builder

	b.WriteString("CHARACTER SHEET:\n")
	b.WriteString(characterSheetJSON(sheet))

	b.WriteString("\n\nRECENT CONVERSATION:\n")
	for _, line := range tail(history, 3) {
		b.WriteString("- ")
		b.WriteString(line)
		b.WriteByte('\n')
	}

	fmt.Fprintf(&b, "\nPLAYER SAYS: %q\n", playerMessage)
	fmt.Fprintf(&b, "\nHow does %s respond?\n", sheet.Name)
	return b.String()
}

func characterSheetJSON(sheet *world.Character) string {
	raw, err := json.MarshalIndent(sheet, "", "  ")
	if err != nil {
		return sheet.String()
	}
	return string(raw)
}

func tail(items []string, n int) []string {
	if len(items) > n {
		return items[len(items)-n:]
	}
	return items
}

func tailMemories(items []world.Memory, n int) []world.Memory {
	if len(items) > n {
		return items[len(items)-n:]
	}
	return items
}
