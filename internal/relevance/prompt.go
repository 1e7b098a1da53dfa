package relevance

import (
	"fmt"

	"github.com/dgallion1/docrank/internal/textnorm"
)

// MaxTextChars is how much of a text the model gets to see. Anything past
// this prefix does not influence the score.
const MaxTextChars = 512

// Prompt is the fixed-shape scoring input.
type Prompt struct {
	Persona string
	Job     string
	Text    string // Already truncated to MaxTextChars
}

// BuildPrompt embeds persona, job and the first MaxTextChars characters of text.
func BuildPrompt(persona, job, text string) Prompt {
	return Prompt{
		Persona: persona,
		Job:     job,
		Text:    textnorm.Truncate(text, MaxTextChars),
	}
}

func (p Prompt) String() string {
	return fmt.Sprintf("Persona: %s\nJob: %s\nText: %s", p.Persona, p.Job, p.Text)
}

// Instruction is sent as the system prompt to remote models.
const Instruction = `You are a relevance classifier. Given a reader persona, the job they need to get done, and a passage of text, estimate the probability that the passage is useful to that reader for that job.

Rules:
- Judge only the passage shown; do not assume content that is not there
- Boilerplate, navigation text, and references lists are rarely relevant
- Use the whole range: clearly irrelevant passages score below 0.2, directly useful passages above 0.8

Respond with ONLY a JSON object of the form {"probability": 0.73}, no other text.`
