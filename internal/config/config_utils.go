package config

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// applyFallbacks applies environment variable fallbacks
func (c *Config) applyFallbacks() {
	c.applyModelDefaults()
	c.applyAPIKeyFallbacks()
	c.applyDocxLicenseFallback()
	c.applyTLSDefaults()
	c.applyObservabilityDefaults()
}

// applyModelDefaults picks a model matching the provider when none is configured
func (c *Config) applyModelDefaults() {
	if c.AI.Model == "" {
		c.AI.Model = defaultModelFor(c.AI.Provider)
	}
}

// applyAPIKeyFallbacks reads the provider's conventional key variables when
// neither the config file nor SKILLMATCH_AI_APIKEY supplied one
func (c *Config) applyAPIKeyFallbacks() {
	if c.AI.APIKey != "" {
		return
	}
	for _, name := range apiKeyEnvVars(c.AI.Provider) {
		if key := os.Getenv(name); key != "" {
			c.AI.APIKey = key
			log.Printf("[CONFIG] Using AI API key from %s", name)
			return
		}
	}
}

func apiKeyEnvVars(provider string) []string {
	if provider == ProviderOpenAI {
		return []string{"OPENAI_API_KEY"}
	}
	return []string{"GENAI_API_KEY", "GEMINI_API_KEY"}
}

// applyDocxLicenseFallback reads the key variable the unidoc tooling uses
func (c *Config) applyDocxLicenseFallback() {
	if c.App.DocxLicenseKey == "" {
		c.App.DocxLicenseKey = os.Getenv(docxLicenseEnvVar)
	}
}

const docxLicenseEnvVar = "UNIDOC_LICENSE_API_KEY"

// applyTLSDefaults applies default TLS configuration values
func (c *Config) applyTLSDefaults() {
	if c.Server.TLS.MinVersion == "" && c.Server.TLS.Mode != "disabled" {
		c.Server.TLS.MinVersion = "1.2"
	}
}

// applyObservabilityDefaults applies default observability configuration values
func (c *Config) applyObservabilityDefaults() {
	if c.Observability.ServiceInstance == "" {
		c.Observability.ServiceInstance = generateServiceInstanceID(c.Observability.ServiceName)
	}
	if c.App.LogLevel == "debug" && !c.Observability.ConsoleOutput {
		c.Observability.ConsoleOutput = true
	}
}

// generateServiceInstanceID generates a unique service instance ID
func generateServiceInstanceID(serviceName string) string {
	if hostname, err := os.Hostname(); err == nil {
		return fmt.Sprintf("%s-%s", serviceName, hostname)
	}
	return fmt.Sprintf("%s-1", serviceName)
}

// logConfigurationSources logs a summary of configuration sources being used
func (c *Config) logConfigurationSources(configFileUsed string) {
	log.Println("[CONFIG] === Configuration Sources Summary ===")

	if configFileUsed != "" {
		log.Printf("[CONFIG] Config file: %s", configFileUsed)
	} else {
		log.Println("[CONFIG] Config file: None (using defaults)")
	}

	envVars := []string{
		"SKILLMATCH_AI_APIKEY",
		"SKILLMATCH_AI_PROVIDER",
		"SKILLMATCH_AI_MODEL",
		"SKILLMATCH_DATA_SKILLSFILE",
		"SKILLMATCH_DATA_DOMAINSFILE",
		"SKILLMATCH_SERVER_PORT",
		"SKILLMATCH_SERVER_HOST",
		"SKILLMATCH_APP_LOGLEVEL",
		"SKILLMATCH_VAULT_ENABLED",
		"GENAI_API_KEY",
		"GEMINI_API_KEY",
		"OPENAI_API_KEY",
		docxLicenseEnvVar,
	}

	log.Println("[CONFIG] Environment variables:")
	hasEnvVars := false
	for _, envVar := range envVars {
		if value := os.Getenv(envVar); value != "" {
			if strings.Contains(strings.ToLower(envVar), "key") {
				log.Printf("[CONFIG]   %s=***MASKED***", envVar)
			} else {
				log.Printf("[CONFIG]   %s=%s", envVar, value)
			}
			hasEnvVars = true
		}
	}
	if !hasEnvVars {
		log.Println("[CONFIG]   None set")
	}

	log.Println("[CONFIG] === Key Configuration Values ===")
	log.Printf("[CONFIG] AI Provider: %s", c.AI.Provider)
	log.Printf("[CONFIG] AI Model: %s", c.AI.Model)
	if c.AI.APIKey != "" {
		log.Println("[CONFIG] AI API Key: ***CONFIGURED***")
	} else {
		log.Println("[CONFIG] AI API Key: ***NOT SET*** (suggestions disabled)")
	}
	log.Printf("[CONFIG] Skills File: %s", c.Data.SkillsFile)
	log.Printf("[CONFIG] Domains File: %s", c.Data.DomainsFile)
	log.Printf("[CONFIG] Server Host: %s", c.Server.Host)
	log.Printf("[CONFIG] Server Port: %s", c.Server.Port)
	log.Printf("[CONFIG] Log Level: %s", c.App.LogLevel)
	log.Printf("[CONFIG] TLS Mode: %s", c.Server.TLS.Mode)
	log.Printf("[CONFIG] Vault Enabled: %t", c.Vault.Enabled)
	log.Printf("[CONFIG] Observability Enabled: %t", c.Observability.Enabled)
	log.Printf("[CONFIG] Suggest - Provider: %s, Model: %s, Concurrency: %d",
		c.AI.Suggest.Provider, c.AI.Suggest.Model, c.AI.Suggest.Concurrency)

	log.Println("[CONFIG] =====================================")
}
