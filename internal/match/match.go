// Package match compares resume text with the skill dictionary and a
// domain's required skills, and grades the result.
package match

import (
	"strconv"
	"strings"

	"skillmatch/internal/errors"
	"skillmatch/internal/skills"
	"skillmatch/internal/types"
)

// Score band thresholds, in percent
const (
	StrongThreshold   = 70.0
	ModerateThreshold = 50.0
)

// Found returns the dictionary skills that occur as substrings of text,
// ignoring case, in dictionary order
func Found(text string, set *skills.SkillSet) []string {
	lowered := strings.ToLower(text)
	found := []string{}
	for _, skill := range set.All() {
		if strings.Contains(lowered, skill) {
			found = append(found, skill)
		}
	}
	return found
}

// Match splits required into skills present in the resume and skills
// missing from it, preserving the order of required. When required is
// empty the result is still filled in and NO_REQUIRED_SKILLS is returned
// so callers cannot compute a ratio by accident.
func Match(text string, set *skills.SkillSet, required []string) (types.MatchResult, error) {
	found := Found(text, set)
	foundSet := make(map[string]struct{}, len(found))
	for _, skill := range found {
		foundSet[skill] = struct{}{}
	}

	result := types.MatchResult{
		Found:   found,
		Matched: []string{},
		Missing: []string{},
	}
	for _, skill := range required {
		if _, ok := foundSet[skill]; ok {
			result.Matched = append(result.Matched, skill)
		} else {
			result.Missing = append(result.Missing, skill)
		}
	}

	if len(required) == 0 {
		return result, errors.NewValidationError(errors.ErrCodeNoRequiredSkills,
			"domain has no required skills", nil)
	}
	return result, nil
}

// Ratio returns matched/required as a percentage rounded to two decimals.
// Rounding works on the exact binary value with ties going to the even
// digit, so 1 of 32 gives 3.12.
func Ratio(matched, required int) (float64, error) {
	if required <= 0 {
		return 0, errors.NewValidationError(errors.ErrCodeNoRequiredSkills,
			"cannot compute a match ratio without required skills", nil)
	}
	return roundCents(float64(matched) / float64(required) * 100), nil
}

func roundCents(v float64) float64 {
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	if err != nil {
		return v
	}
	return rounded
}

// Classify maps a percentage to its band
func Classify(score float64) types.ScoreBand {
	switch {
	case score >= StrongThreshold:
		return types.BandStrong
	case score >= ModerateThreshold:
		return types.BandModerate
	default:
		return types.BandWeak
	}
}

// FormatPercent renders a score the way it is shown to users: the shortest
// decimal form with at least one fractional digit, followed by "%"
func FormatPercent(score float64) string {
	s := strconv.FormatFloat(score, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s + "%"
}

// Evaluate computes the full score for a match result
func Evaluate(result types.MatchResult) (*types.Score, error) {
	percent, err := Ratio(len(result.Matched), len(result.Matched)+len(result.Missing))
	if err != nil {
		return nil, err
	}
	band := Classify(percent)
	return &types.Score{
		Percent: percent,
		Display: FormatPercent(percent),
		Band:    band,
		Verdict: band.Verdict(),
	}, nil
}
