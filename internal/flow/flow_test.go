package flow

import (
	"context"
	"errors"
	"sync"
	"testing"

	appErrors "skillmatch/internal/errors"
	"skillmatch/internal/skills"
	"skillmatch/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSuggester struct {
	mu    sync.Mutex
	calls [][]string
	fail  map[string]string
}

func (r *recordingSuggester) SuggestAll(ctx context.Context, skills []string) []types.Suggestion {
	r.mu.Lock()
	r.calls = append(r.calls, append([]string(nil), skills...))
	r.mu.Unlock()

	out := make([]types.Suggestion, len(skills))
	for i, skill := range skills {
		if msg, ok := r.fail[skill]; ok {
			out[i] = types.Suggestion{Skill: skill, Error: msg}
			continue
		}
		out[i] = types.Suggestion{Skill: skill, Text: "learn " + skill}
	}
	return out
}

type recordingObserver struct {
	scores []*types.Score
}

func (r *recordingObserver) ResumeScored(ctx context.Context, domain string, score *types.Score) {
	r.scores = append(r.scores, score)
}

func testCatalog() *skills.Catalog {
	domains := skills.NewDomainMap()
	domains.Set("Data Engineer", []string{"python", "sql", "airflow"})
	domains.Set("Empty Role", []string{})
	domains.Set("Generalist", []string{"python"})
	return &skills.Catalog{
		Skills:  skills.NewSkillSet("python", "sql", "docker"),
		Domains: domains,
	}
}

const sampleResume = "Experienced in Python and SQL, no cloud tools."

func resume() *Resume {
	return &Resume{Name: "resume.docx", Text: sampleResume}
}

func TestEvaluateStages(t *testing.T) {
	tests := []struct {
		name  string
		input Input
		stage Stage
	}{
		{"nothing provided", Input{}, StageNoUpload},
		{"domain without resume", Input{Domain: "Data Engineer"}, StageNoUpload},
		{"failed upload", Input{ExtractErr: errors.New("bad zip"), Domain: "Data Engineer"}, StageNoUpload},
		{"resume only", Input{Resume: resume()}, StageDomainUnselected},
		{"unknown domain", Input{Resume: resume(), Domain: "Astronaut"}, StageDomainUnselected},
		{"domain without requirements", Input{Resume: resume(), Domain: "Empty Role"}, StageDomainSelected},
		{"scored", Input{Resume: resume(), Domain: "Data Engineer"}, StageScoredAwaitingView},
		{"suggestions", Input{Resume: resume(), Domain: "Data Engineer", WantSuggestions: true}, StageSuggestionsView},
	}

	engine := NewEngine(testCatalog(), &recordingSuggester{}, 400, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := engine.Evaluate(context.Background(), tt.input)
			assert.Equal(t, tt.stage, it.Stage, "got %s", it.Stage)
		})
	}
}

func TestEvaluateEmptyDomainName(t *testing.T) {
	domains := skills.NewDomainMap()
	domains.Set("", []string{"python", "kubernetes"})
	engine := NewEngine(&skills.Catalog{Skills: testCatalog().Skills, Domains: domains}, nil, 400, nil)

	it := engine.Evaluate(context.Background(), Input{Resume: resume()})
	assert.Equal(t, StageDomainUnselected, it.Stage, "no selection is not the empty domain")

	it = engine.Evaluate(context.Background(), Input{Resume: resume(), DomainChosen: true})
	require.Equal(t, StageScoredAwaitingView, it.Stage)
	assert.Equal(t, []string{"python", "kubernetes"}, it.Required)
	assert.Equal(t, []string{"python"}, it.Result.Matched)
}

func TestEvaluateEndToEnd(t *testing.T) {
	suggester := &recordingSuggester{}
	observer := &recordingObserver{}
	engine := NewEngine(testCatalog(), suggester, 400, nil)
	engine.SetObserver(observer)

	it := engine.Evaluate(context.Background(), Input{Resume: resume(), Domain: "Data Engineer"})

	assert.Equal(t, sampleResume, it.Preview)
	assert.Equal(t, []string{"python", "sql"}, it.Found)
	assert.Equal(t, "python, sql", it.FoundText())
	assert.Equal(t, "python, sql, airflow", it.RequiredText())
	assert.Equal(t, "python, sql", it.MatchedText())
	assert.Equal(t, "airflow", it.MissingText())
	require.NotNil(t, it.Score)
	assert.Equal(t, 66.67, it.Score.Percent)
	assert.Equal(t, types.BandModerate, it.Score.Band)
	assert.Empty(t, suggester.calls, "suggestions are only generated on request")
	require.Len(t, observer.scores, 1)

	it = engine.Evaluate(context.Background(), Input{Resume: resume(), Domain: "Data Engineer", WantSuggestions: true})
	require.Len(t, suggester.calls, 1)
	assert.Equal(t, []string{"airflow"}, suggester.calls[0])
	require.Len(t, it.Suggestions, 1)
	assert.Equal(t, "learn airflow", it.Suggestions[0].Text)
}

func TestEvaluateRecomputesEveryTime(t *testing.T) {
	engine := NewEngine(testCatalog(), nil, 400, nil)

	first := engine.Evaluate(context.Background(), Input{Resume: resume(), Domain: "Data Engineer"})
	second := engine.Evaluate(context.Background(), Input{Resume: &Resume{Text: "docker"}, Domain: "Data Engineer"})

	assert.Equal(t, 66.67, first.Score.Percent)
	assert.Equal(t, 0.0, second.Score.Percent)
	assert.Equal(t, types.BandWeak, second.Score.Band)
	assert.Equal(t, "None", second.MatchedText())
}

func TestEvaluateWithoutSuggester(t *testing.T) {
	engine := NewEngine(testCatalog(), nil, 400, nil)

	it := engine.Evaluate(context.Background(), Input{Resume: resume(), Domain: "Data Engineer", WantSuggestions: true})

	require.Len(t, it.Suggestions, 1)
	assert.True(t, it.Suggestions[0].Failed())
	assert.Contains(t, it.Suggestions[0].Error, appErrors.ErrCodeAINotConfigured)
}

func TestEvaluateNoMissingSkipsGenerator(t *testing.T) {
	suggester := &recordingSuggester{}
	engine := NewEngine(testCatalog(), suggester, 400, nil)

	it := engine.Evaluate(context.Background(), Input{Resume: resume(), Domain: "Generalist", WantSuggestions: true})

	assert.Equal(t, StageSuggestionsView, it.Stage)
	assert.Equal(t, 100.0, it.Score.Percent)
	assert.Empty(t, it.Suggestions)
	assert.Empty(t, suggester.calls)

	sections := it.Sections()
	assert.True(t, sections[4].Available)
	assert.Equal(t, NoMissingText, sections[4].Message)
}

func TestEvaluatePreviewLength(t *testing.T) {
	engine := NewEngine(testCatalog(), nil, 11, nil)
	it := engine.Evaluate(context.Background(), Input{Resume: resume()})
	assert.Equal(t, "Experienced", it.Preview)
}

func sectionMessages(sections []Section) []string {
	out := make([]string, len(sections))
	for i, s := range sections {
		out[i] = s.Message
	}
	return out
}

func TestSectionsGuidance(t *testing.T) {
	engine := NewEngine(testCatalog(), &recordingSuggester{}, 400, nil)
	ctx := context.Background()

	t.Run("no upload", func(t *testing.T) {
		sections := engine.Evaluate(ctx, Input{}).Sections()
		require.Len(t, sections, 5)
		assert.Equal(t, []string{
			GuidanceUpload,
			GuidanceUploadFirst,
			GuidancePreviousSteps,
			GuidancePreviousSteps,
			GuidanceUploadFirst,
		}, sectionMessages(sections))
		for _, s := range sections {
			assert.False(t, s.Available, s.Key)
		}
		assert.Equal(t, LevelInfo, sections[0].Level)
	})

	t.Run("upload failed", func(t *testing.T) {
		err := appErrors.NewValidationError(appErrors.ErrCodeMalformedDocument, "document is not a valid DOCX file", nil)
		sections := engine.Evaluate(ctx, Input{ExtractErr: err}).Sections()
		assert.Equal(t, "Error reading file: document is not a valid DOCX file", sections[0].Message)
		assert.Equal(t, LevelError, sections[0].Level)
	})

	t.Run("domain not chosen", func(t *testing.T) {
		sections := engine.Evaluate(ctx, Input{Resume: resume()}).Sections()
		assert.True(t, sections[0].Available)
		assert.True(t, sections[1].Available)
		assert.Equal(t, GuidancePreviousSteps, sections[2].Message)
		assert.Equal(t, GuidancePreviousSteps, sections[3].Message)
		assert.Equal(t, GuidancePreviousSteps, sections[4].Message)
	})

	t.Run("unknown domain", func(t *testing.T) {
		sections := engine.Evaluate(ctx, Input{Resume: resume(), Domain: "Astronaut"}).Sections()
		assert.Equal(t, "unknown job domain: Astronaut", sections[1].Message)
		assert.Equal(t, LevelError, sections[1].Level)
	})

	t.Run("domain without required skills", func(t *testing.T) {
		it := engine.Evaluate(ctx, Input{Resume: resume(), Domain: "Empty Role"})
		sections := it.Sections()
		assert.True(t, sections[2].Available)
		assert.False(t, sections[3].Available)
		assert.Equal(t, GuidanceNoRequired, sections[3].Message)
		assert.Nil(t, it.Score)
	})

	t.Run("scored", func(t *testing.T) {
		sections := engine.Evaluate(ctx, Input{Resume: resume(), Domain: "Data Engineer"}).Sections()
		for _, s := range sections {
			assert.True(t, s.Available, s.Key)
		}
		assert.Equal(t, "Moderate Resume - improve further", sections[3].Message)
		assert.Equal(t, LevelWarning, sections[3].Level)
	})
}

func TestSectionsNoDomains(t *testing.T) {
	catalog := &skills.Catalog{
		Skills:  skills.NewSkillSet("python"),
		Domains: skills.NewDomainMap(),
		Warnings: []skills.Warning{
			{Resource: skills.ResourceDomains, Code: appErrors.ErrCodeResourceMissing, Message: "Job Description file is missing"},
		},
	}
	engine := NewEngine(catalog, nil, 400, nil)

	it := engine.Evaluate(context.Background(), Input{Resume: resume()})
	sections := it.Sections()
	assert.False(t, sections[1].Available)
	assert.Equal(t, GuidanceNoDomains, sections[1].Message)
	assert.Equal(t, []string{"Job Description file is missing"}, it.Report().Warnings)
}

func TestReport(t *testing.T) {
	engine := NewEngine(testCatalog(), &recordingSuggester{fail: map[string]string{"airflow": "quota"}}, 400, nil)

	report := engine.Evaluate(context.Background(), Input{Resume: resume(), Domain: "Data Engineer", WantSuggestions: true}).Report()

	assert.Equal(t, "resume.docx", report.Source)
	assert.Equal(t, "Data Engineer", report.Domain)
	assert.Equal(t, []string{"python", "sql", "airflow"}, report.Required)
	assert.Equal(t, []string{"airflow"}, report.Result.Missing)
	require.NotNil(t, report.Score)
	assert.Equal(t, "66.67%", report.Score.Display)
	require.Len(t, report.Suggestions, 1)
	assert.Equal(t, "Error for airflow: quota", report.Suggestions[0].Body())
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "no_upload", StageNoUpload.String())
	assert.Equal(t, "suggestions_view", StageSuggestionsView.String())
	assert.Equal(t, "unknown", Stage(42).String())
}
