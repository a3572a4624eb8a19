package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateEnv runs the test in an empty directory with every key source cleared
func isolateEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	for _, name := range []string{
		"SKILLMATCH_AI_APIKEY", "SKILLMATCH_AI_PROVIDER", "SKILLMATCH_AI_MODEL",
		"SKILLMATCH_APP_LOGLEVEL", "SKILLMATCH_SERVER_PORT",
		"GENAI_API_KEY", "GEMINI_API_KEY", "OPENAI_API_KEY",
		"SKILLMATCH_APP_DOCXLICENSEKEY", "UNIDOC_LICENSE_API_KEY",
	} {
		t.Setenv(name, "")
	}
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	isolateEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ProviderGemini, cfg.AI.Provider)
	assert.Equal(t, DefaultGeminiModel, cfg.AI.Model)
	assert.Empty(t, cfg.AI.APIKey)
	assert.Equal(t, "Skills.txt", cfg.Data.SkillsFile)
	assert.Equal(t, "Job Description.txt", cfg.Data.DomainsFile)
	assert.Equal(t, int64(5*1024*1024), cfg.App.MaxFileSize)
	assert.Equal(t, 400, cfg.App.PreviewLength)
	assert.Empty(t, cfg.App.DocxLicenseKey)
	assert.Equal(t, "disabled", cfg.Server.TLS.Mode)
	assert.Equal(t, "8080", cfg.Server.Port)

	suggest := cfg.GetSuggestConfig()
	assert.Equal(t, ProviderGemini, suggest.Provider)
	assert.Equal(t, DefaultGeminiModel, suggest.Model)
	assert.Equal(t, 1, suggest.Concurrency)
	require.NotNil(t, suggest.Timeout)
	assert.Equal(t, 60*time.Second, *suggest.Timeout)
	require.NotNil(t, suggest.MaxRetries)
	assert.Equal(t, 2, *suggest.MaxRetries)
	assert.True(t, suggest.CircuitBreaker.Enabled)
}

func TestLoadConfigDocxLicenseKey(t *testing.T) {
	isolateEnv(t)
	t.Setenv("UNIDOC_LICENSE_API_KEY", "unidoc-key")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "unidoc-key", cfg.App.DocxLicenseKey)

	t.Setenv("SKILLMATCH_APP_DOCXLICENSEKEY", "configured-key")
	cfg, err = LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "configured-key", cfg.App.DocxLicenseKey)
}

func TestLoadConfigAPIKeyPrecedence(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		expected string
	}{
		{
			name:     "no key anywhere is allowed",
			env:      map[string]string{},
			expected: "",
		},
		{
			name:     "GEMINI_API_KEY as last resort",
			env:      map[string]string{"GEMINI_API_KEY": "gemini-key"},
			expected: "gemini-key",
		},
		{
			name:     "GENAI_API_KEY beats GEMINI_API_KEY",
			env:      map[string]string{"GENAI_API_KEY": "genai-key", "GEMINI_API_KEY": "gemini-key"},
			expected: "genai-key",
		},
		{
			name:     "prefixed variable beats provider variables",
			env:      map[string]string{"SKILLMATCH_AI_APIKEY": "own-key", "GENAI_API_KEY": "genai-key"},
			expected: "own-key",
		},
		{
			name:     "OPENAI_API_KEY ignored for gemini",
			env:      map[string]string{"OPENAI_API_KEY": "openai-key"},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := LoadConfig()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, cfg.AI.APIKey)
			assert.Equal(t, tt.expected, cfg.GetSuggestConfig().APIKey)
		})
	}
}

func TestLoadConfigOpenAIProvider(t *testing.T) {
	isolateEnv(t)
	t.Setenv("SKILLMATCH_AI_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("GENAI_API_KEY", "genai-key")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenAI, cfg.AI.Provider)
	assert.Equal(t, DefaultOpenAIModel, cfg.AI.Model)
	assert.Equal(t, "sk-test", cfg.AI.APIKey)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := isolateEnv(t)

	promptPath := filepath.Join(dir, "prompt.txt")
	require.NoError(t, os.WriteFile(promptPath, []byte("Explain %s briefly.\n"), 0600))

	yaml := `
ai:
  model: gemini-2.0-flash
  suggest:
    concurrency: 4
    promptFile: ` + promptPath + `
data:
  skillsFile: data/skills.txt
  domainsFile: data/domains.txt
server:
  port: "9000"
app:
  previewLength: 100
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0600))

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.0-flash", cfg.AI.Model)
	assert.Equal(t, "data/skills.txt", cfg.Data.SkillsFile)
	assert.Equal(t, "data/domains.txt", cfg.Data.DomainsFile)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, 100, cfg.App.PreviewLength)

	suggest := cfg.GetSuggestConfig()
	assert.Equal(t, 4, suggest.Concurrency)
	assert.Equal(t, "Explain %s briefly.", suggest.PromptTemplate)
	assert.Equal(t, "gemini-2.0-flash", suggest.Model)
}

func TestLoadConfigRejectsBadPrompt(t *testing.T) {
	dir := isolateEnv(t)

	yaml := `
ai:
  suggest:
    promptTemplate: "Skill: %s and %s"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0600))

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one %s placeholder")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			AI:   AIConfig{Provider: ProviderGemini, Timeout: time.Second},
			Data: DataConfig{SkillsFile: "Skills.txt", DomainsFile: "Job Description.txt"},
			Server: ServerConfig{
				Port: "8080",
				TLS:  TLSConfig{Mode: "disabled"},
			},
			App: AppConfig{
				LogLevel:         "info",
				DefaultFormat:    "text",
				SupportedFormats: []string{"json", "text"},
				MaxFileSize:      1024,
			},
		}
	}

	tests := []struct {
		name     string
		mutate   func(*Config)
		errorMsg string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "unknown provider", mutate: func(c *Config) { c.AI.Provider = "claude" }, errorMsg: "unsupported AI provider"},
		{name: "unknown suggest provider", mutate: func(c *Config) { c.AI.Suggest.Provider = "x" }, errorMsg: "suggest: unsupported AI provider"},
		{name: "zero timeout", mutate: func(c *Config) { c.AI.Timeout = 0 }, errorMsg: "AI timeout must be positive"},
		{name: "negative concurrency", mutate: func(c *Config) { c.AI.Suggest.Concurrency = -1 }, errorMsg: "concurrency"},
		{name: "missing data file", mutate: func(c *Config) { c.Data.SkillsFile = "" }, errorMsg: "data.skillsFile"},
		{name: "missing port", mutate: func(c *Config) { c.Server.Port = "" }, errorMsg: "server port is required"},
		{name: "zero max size", mutate: func(c *Config) { c.App.MaxFileSize = 0 }, errorMsg: "max file size"},
		{name: "negative preview", mutate: func(c *Config) { c.App.PreviewLength = -1 }, errorMsg: "preview length"},
		{name: "bad log level", mutate: func(c *Config) { c.App.LogLevel = "trace" }, errorMsg: "invalid log level"},
		{name: "bad default format", mutate: func(c *Config) { c.App.DefaultFormat = "xml" }, errorMsg: "invalid default format"},
		{name: "bad tls", mutate: func(c *Config) { c.Server.TLS.Mode = "mutual" }, errorMsg: "TLS configuration error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errorMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestGetSuggestConfigOverrides(t *testing.T) {
	timeout := 5 * time.Second
	retries := 0
	cfg := &Config{
		AI: AIConfig{
			Provider:    ProviderGemini,
			Model:       "gemini-2.5-pro",
			Timeout:     time.Minute,
			APIKey:      "global",
			MaxRetries:  3,
			Temperature: 0.7,
			Suggest: OperationAIConfig{
				Provider:   ProviderOpenAI,
				Timeout:    &timeout,
				MaxRetries: &retries,
			},
		},
	}

	suggest := cfg.GetSuggestConfig()
	assert.Equal(t, ProviderOpenAI, suggest.Provider)
	assert.Equal(t, DefaultOpenAIModel, suggest.Model, "global gemini model must not leak into openai")
	assert.Equal(t, timeout, *suggest.Timeout)
	assert.Equal(t, 0, *suggest.MaxRetries)
	assert.Equal(t, float32(0.7), *suggest.Temperature)
	assert.Equal(t, "global", suggest.APIKey)
	assert.Equal(t, 1, suggest.Concurrency)

	// the stored operation config stays untouched
	assert.Empty(t, cfg.AI.Suggest.Model)
}
