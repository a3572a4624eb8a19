package flow

import (
	stderrors "errors"
	"strings"

	"skillmatch/internal/errors"
	"skillmatch/internal/skills"
	"skillmatch/internal/types"
)

// Guidance shown in place of a stage that is not available yet
const (
	GuidanceUpload        = "Please upload your resume"
	GuidanceUploadFirst   = "Upload resume first"
	GuidancePreviousSteps = "Complete previous steps first"
	GuidanceNoDomains     = "No job domains available"
	GuidanceNoRequired    = "The selected domain has no required skills"

	NoneText          = "None"
	NoSkillsFoundText = "No matching skills found"
	NoMissingText     = "No missing skills!"
)

// Section keys, in display order
const (
	SectionUpload      = "upload"
	SectionDomain      = "domain"
	SectionMatching    = "matching"
	SectionScore       = "score"
	SectionSuggestions = "suggestions"
)

// Level is the severity a message is displayed with
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Interaction is the computed state of one pass through the flow
type Interaction struct {
	Stage Stage

	ResumeName  string
	ResumeText  string
	Preview     string
	UploadError error
	Found       []string

	Domains      []string
	Domain       string
	DomainChosen bool
	DomainError  error
	Required     []string

	Result     *types.MatchResult
	Score      *types.Score
	ScoreError error

	SuggestionsRequested bool
	Suggestions          []types.Suggestion

	Warnings []skills.Warning
}

// Section is one of the five tabs of the guided interface
type Section struct {
	Key       string
	Title     string
	Available bool
	// Message replaces the section content when it is not available, or
	// accompanies it (for example "No missing skills!")
	Message string
	Level   Level
}

// HasResume reports whether a resume was extracted
func (it *Interaction) HasResume() bool {
	return it.Stage > StageNoUpload
}

// HasDomain reports whether a known domain is selected
func (it *Interaction) HasDomain() bool {
	return it.Stage >= StageDomainSelected
}

// FoundText is the skills-found line of the upload stage
func (it *Interaction) FoundText() string {
	if len(it.Found) == 0 {
		return NoSkillsFoundText
	}
	return strings.Join(it.Found, ", ")
}

// MatchedText lists matched skills, or "None"
func (it *Interaction) MatchedText() string {
	if it.Result == nil {
		return NoneText
	}
	return joinOrNone(it.Result.Matched)
}

// MissingText lists missing skills, or "None"
func (it *Interaction) MissingText() string {
	if it.Result == nil {
		return NoneText
	}
	return joinOrNone(it.Result.Missing)
}

// RequiredText lists the selected domain's required skills
func (it *Interaction) RequiredText() string {
	return strings.Join(it.Required, ", ")
}

// Sections returns the five stages with their availability and guidance
func (it *Interaction) Sections() []Section {
	return []Section{
		it.uploadSection(),
		it.domainSection(),
		it.matchingSection(),
		it.scoreSection(),
		it.suggestionsSection(),
	}
}

func (it *Interaction) uploadSection() Section {
	s := Section{Key: SectionUpload, Title: "Input File"}
	switch {
	case it.UploadError != nil:
		s.Message = "Error reading file: " + errorText(it.UploadError)
		s.Level = LevelError
	case !it.HasResume():
		s.Message = GuidanceUpload
		s.Level = LevelInfo
	default:
		s.Available = true
	}
	return s
}

func (it *Interaction) domainSection() Section {
	s := Section{Key: SectionDomain, Title: "Job Domain"}
	switch {
	case !it.HasResume():
		s.Message = GuidanceUploadFirst
		s.Level = LevelWarning
	case len(it.Domains) == 0:
		s.Message = GuidanceNoDomains
		s.Level = LevelWarning
	case it.DomainError != nil:
		s.Available = true
		s.Message = errorText(it.DomainError)
		s.Level = LevelError
	default:
		s.Available = true
	}
	return s
}

func (it *Interaction) matchingSection() Section {
	s := Section{Key: SectionMatching, Title: "Skills Matching"}
	if !it.HasDomain() {
		s.Message = GuidancePreviousSteps
		s.Level = LevelWarning
		return s
	}
	s.Available = true
	return s
}

func (it *Interaction) scoreSection() Section {
	s := Section{Key: SectionScore, Title: "ATS Score"}
	switch {
	case it.Score != nil:
		s.Available = true
		s.Message = it.Score.Verdict
		s.Level = bandLevel(it.Score.Band)
	case it.HasDomain() && errors.HasCode(it.ScoreError, errors.ErrCodeNoRequiredSkills):
		s.Message = GuidanceNoRequired
		s.Level = LevelWarning
	default:
		s.Message = GuidancePreviousSteps
		s.Level = LevelWarning
	}
	return s
}

func (it *Interaction) suggestionsSection() Section {
	s := Section{Key: SectionSuggestions, Title: "Improvement Suggestions"}
	switch {
	case !it.HasResume():
		s.Message = GuidanceUploadFirst
		s.Level = LevelWarning
	case it.Score == nil:
		s.Message = GuidancePreviousSteps
		s.Level = LevelWarning
	case len(it.Result.Missing) == 0:
		s.Available = true
		s.Message = NoMissingText
		s.Level = LevelSuccess
	default:
		s.Available = true
	}
	return s
}

// Report converts the interaction into the report rendered by the formatters
// and returned by the API
func (it *Interaction) Report() types.MatchReport {
	report := types.MatchReport{
		Source:      it.ResumeName,
		Domain:      it.Domain,
		Required:    it.Required,
		Score:       it.Score,
		Suggestions: it.Suggestions,
	}
	if it.Result != nil {
		report.Result = *it.Result
	} else {
		report.Result = types.MatchResult{Found: it.Found, Matched: []string{}, Missing: []string{}}
	}
	for _, w := range it.Warnings {
		report.Warnings = append(report.Warnings, w.Message)
	}
	if it.ScoreError != nil {
		report.Warnings = append(report.Warnings, errorText(it.ScoreError))
	}
	return report
}

func bandLevel(band types.ScoreBand) Level {
	switch band {
	case types.BandStrong:
		return LevelSuccess
	case types.BandModerate:
		return LevelWarning
	default:
		return LevelError
	}
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return NoneText
	}
	return strings.Join(items, ", ")
}

// errorText prefers the user-facing message of an application error
func errorText(err error) string {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
