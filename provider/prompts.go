package provider

import (
	"fmt"

	"github.com/ZaguanLabs/gophrase"
)

const literalPrompt = `You rewrite phrases for autistic readers.
Rewrite the phrase you are given so that its meaning is stated literally and directly.
- Replace idioms, metaphors, sarcasm and figurative language with their plain meaning.
- State implied requests or feelings explicitly.
- Keep the original intent and roughly the original length.
Reply with the rewritten phrase only. No quotes, no explanations, no markup.`

const figurativePrompt = `You rewrite phrases for neurotypical readers.
The phrase you are given was written in a direct, literal communication style.
Rewrite it so a neurotypical reader understands the intent as meant.
- Soften bluntness where it could read as rude, without changing the meaning.
- Use everyday conversational phrasing; idioms are fine where natural.
- Keep the original intent and roughly the original length.
Reply with the rewritten phrase only. No quotes, no explanations, no markup.`

// SystemPrompt returns the system prompt for the given direction.
func SystemPrompt(direction gophrase.Direction) (string, error) {
	switch direction {
	case gophrase.DirectionNTToND:
		return literalPrompt, nil
	case gophrase.DirectionNDToNT:
		return figurativePrompt, nil
	default:
		return "", &gophrase.InvalidDirectionError{Value: string(direction)}
	}
}

// UserMessage wraps the phrase for the user turn.
func UserMessage(phrase string) string {
	return fmt.Sprintf("Phrase: %s", phrase)
}
