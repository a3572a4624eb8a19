package types

import "strings"

// ScoreBand is the qualitative classification of a match score
type ScoreBand string

const (
	BandStrong   ScoreBand = "strong"
	BandModerate ScoreBand = "moderate"
	BandWeak     ScoreBand = "weak"
)

// Verdict returns the sentence shown next to the score
func (b ScoreBand) Verdict() string {
	switch b {
	case BandStrong:
		return "Strong Resume"
	case BandModerate:
		return "Moderate Resume - improve further"
	default:
		return "Weak Resume"
	}
}

// MatchResult holds the outcome of comparing resume text against a domain
type MatchResult struct {
	Found   []string `json:"found"`   // dictionary skills present in the resume, dictionary order
	Matched []string `json:"matched"` // required skills present, requirement order
	Missing []string `json:"missing"` // required skills absent, requirement order
}

// Score describes the match ratio of a MatchResult
type Score struct {
	Percent float64   `json:"percent"` // rounded to two decimals
	Display string    `json:"display"` // e.g. "66.67%"
	Band    ScoreBand `json:"band"`
	Verdict string    `json:"verdict"`
}

// Suggestion is the generated advice for one missing skill
type Suggestion struct {
	Skill string `json:"skill"`
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}

// Failed reports whether generation failed for this skill
func (s Suggestion) Failed() bool {
	return s.Error != ""
}

// Heading is the upper-cased skill used as the section title
func (s Suggestion) Heading() string {
	return strings.ToUpper(s.Skill)
}

// Body is the text shown under the heading, or the per-skill failure line
func (s Suggestion) Body() string {
	if s.Failed() {
		return "Error for " + s.Skill + ": " + s.Error
	}
	return s.Text
}

// MatchRequest is the JSON body of the match API. Domain is a pointer so
// that an explicit empty name selects the unnamed domain.
type MatchRequest struct {
	ResumeText string  `json:"resumeText" validate:"required"`
	Domain     *string `json:"domain" validate:"required"`
}

// SuggestionsRequest is the JSON body of the suggestions API
type SuggestionsRequest struct {
	Skills []string `json:"skills" validate:"required,min=1,dive,required"`
}

// DomainInfo lists a domain together with its required skills
type DomainInfo struct {
	Name     string   `json:"name"`
	Required []string `json:"required"`
}

// MatchReport is the full result of one resume evaluation, rendered by the formatters
type MatchReport struct {
	Source      string       `json:"source,omitempty"`
	Domain      string       `json:"domain"`
	Required    []string     `json:"required"`
	Result      MatchResult  `json:"result"`
	Score       *Score       `json:"score,omitempty"`
	Suggestions []Suggestion `json:"suggestions,omitempty"`
	Warnings    []string     `json:"warnings,omitempty"`
}
