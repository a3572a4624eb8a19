package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// loadPromptFromFile replaces the suggestion prompt template with the content
// of ai.suggest.promptFile when one is configured
func (c *Config) loadPromptFromFile() error {
	filePath := c.AI.Suggest.PromptFile
	if filePath == "" {
		return nil
	}

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path for suggestion prompt file '%s': %w", filePath, err)
	}

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return fmt.Errorf("suggestion prompt file not found: %s", absPath)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return fmt.Errorf("failed to read suggestion prompt file '%s': %w", absPath, err)
	}

	trimmed := strings.TrimSpace(string(content))
	if trimmed == "" {
		return fmt.Errorf("suggestion prompt file '%s' is empty", absPath)
	}

	if c.AI.Suggest.PromptTemplate != "" {
		log.Printf("[CONFIG] Suggestion prompt file %s overrides inline promptTemplate", absPath)
	}
	c.AI.Suggest.PromptTemplate = trimmed

	log.Printf("[CONFIG] Successfully loaded suggestion prompt from file: %s (%d characters)", absPath, len(trimmed))
	return nil
}

// ValidatePromptTemplate checks that a suggestion template has exactly one %s
// placeholder for the skill name and no other formatting verbs
func ValidatePromptTemplate(template string) error {
	verbs := 0
	for i := 0; i < len(template); i++ {
		if template[i] != '%' {
			continue
		}
		if i+1 >= len(template) {
			return fmt.Errorf("prompt template ends with a lone '%%'")
		}
		switch template[i+1] {
		case '%':
			// escaped percent sign
		case 's':
			verbs++
		default:
			return fmt.Errorf("prompt template contains unsupported verb '%%%c'", template[i+1])
		}
		i++
	}
	if verbs != 1 {
		return fmt.Errorf("prompt template must contain exactly one %%s placeholder, found %d", verbs)
	}
	return nil
}
