package ai

import (
	"fmt"
)

// DefaultSuggestPrompt asks for a short study plan for one missing skill.
// The single %s receives the skill token.
const DefaultSuggestPrompt = `Skill: %s
Generate improvement suggestions:
1. Skill Level Needed (Basic/Intermediate/Pro)
2. Why it is important (2 short lines)
3. One mini-project idea (only topic)
4. Three free learning links (real URLs)
Keep it short and clean.`

// BuildPrompt fills template with skill, falling back to DefaultSuggestPrompt
// when template is empty. Templates are validated at config load time.
func BuildPrompt(template, skill string) string {
	if template == "" {
		template = DefaultSuggestPrompt
	}
	return fmt.Sprintf(template, skill)
}
