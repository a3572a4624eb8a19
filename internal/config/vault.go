package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"skillmatch/internal/errors"

	"github.com/hashicorp/vault/api"
)

const vaultTimeout = 10 * time.Second

// VaultConfig holds Vault connection configuration
type VaultConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Address   string `mapstructure:"address"`
	Token     string `mapstructure:"token"`
	TokenFile string `mapstructure:"tokenFile"`
	Namespace string `mapstructure:"namespace"`

	Secrets VaultSecrets `mapstructure:"secrets"`
}

// VaultSecrets locates the AI provider key in a KV v2 engine
type VaultSecrets struct {
	Mount      string `mapstructure:"mount"`      // KV v2 mount, "secret" by default
	AIKey      string `mapstructure:"aiKey"`      // secret path below the mount
	AIKeyField string `mapstructure:"aiKeyField"` // field holding the key, "api_key" by default
}

// SecretReader reads one string field of a KV v2 secret
type SecretReader interface {
	ReadString(ctx context.Context, mount, path, field string) (string, error)
}

// VaultClient reads secrets through the Vault KV v2 API
type VaultClient struct {
	client *api.Client
	logger *errors.Logger
}

// NewVaultClient connects to Vault and checks that it is reachable
func NewVaultClient(cfg VaultConfig, logger *errors.Logger) (*VaultClient, error) {
	vaultConfig := api.DefaultConfig()
	if cfg.Address != "" {
		vaultConfig.Address = cfg.Address
	}
	vaultConfig.Timeout = vaultTimeout

	client, err := api.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}

	token, err := resolveVaultToken(cfg)
	if err != nil {
		return nil, err
	}
	client.SetToken(token)

	health, err := client.Sys().Health()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to vault: %w", err)
	}
	if health.Sealed {
		return nil, fmt.Errorf("vault at %s is sealed", vaultConfig.Address)
	}
	if logger != nil {
		logger.Info("Connected to Vault",
			"address", vaultConfig.Address,
			"version", health.Version)
	}

	return &VaultClient{client: client, logger: logger}, nil
}

// resolveVaultToken prefers the configured token, then the token file
func resolveVaultToken(cfg VaultConfig) (string, error) {
	if cfg.Token != "" {
		return cfg.Token, nil
	}
	if cfg.TokenFile != "" {
		raw, err := os.ReadFile(cfg.TokenFile)
		if err != nil {
			return "", fmt.Errorf("failed to read vault token file: %w", err)
		}
		if token := strings.TrimSpace(string(raw)); token != "" {
			return token, nil
		}
	}
	return "", fmt.Errorf("vault token is required when vault is enabled")
}

// ReadString reads field from the latest version of mount/path
func (vc *VaultClient) ReadString(ctx context.Context, mount, path, field string) (string, error) {
	secret, err := vc.client.KVv2(mount).Get(ctx, path)
	if err != nil {
		return "", fmt.Errorf("failed to read secret %s/%s: %w", mount, path, err)
	}

	value, err := stringField(secret.Data, field, mount+"/"+path)
	if err != nil {
		return "", err
	}

	if vc.logger != nil {
		version := 0
		if secret.VersionMetadata != nil {
			version = secret.VersionMetadata.Version
		}
		vc.logger.Debug("Secret read from Vault",
			"mount", mount,
			"path", path,
			"field", field,
			"masked_value", maskSecret(value),
			"version", version)
	}
	return value, nil
}

func stringField(data map[string]any, field, where string) (string, error) {
	raw, ok := data[field]
	if !ok {
		return "", fmt.Errorf("key '%s' not found in secret %s", field, where)
	}
	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("value for key '%s' is not a string in secret %s", field, where)
	}
	return value, nil
}

func maskSecret(value string) string {
	if len(value) > 8 {
		return value[:4] + "****" + value[len(value)-4:]
	}
	if value != "" {
		return "****"
	}
	return ""
}

// ApplyVaultSecrets overrides the AI key with the one stored in Vault when
// Vault is enabled and a secret path is configured
func ApplyVaultSecrets(cfg *Config, logger *errors.Logger) error {
	if !cfg.Vault.Enabled {
		if logger != nil {
			logger.Debug("Vault integration disabled, skipping secret loading")
		}
		return nil
	}

	client, err := NewVaultClient(cfg.Vault, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize vault client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), vaultTimeout)
	defer cancel()
	return applySecrets(ctx, client, cfg, logger)
}

func applySecrets(ctx context.Context, reader SecretReader, cfg *Config, logger *errors.Logger) error {
	s := cfg.Vault.Secrets
	if s.AIKey == "" {
		return nil
	}
	mount, field := s.Mount, s.AIKeyField
	if mount == "" {
		mount = "secret"
	}
	if field == "" {
		field = "api_key"
	}

	key, err := reader.ReadString(ctx, mount, s.AIKey, field)
	if err != nil {
		return fmt.Errorf("failed to load AI API key from vault: %w", err)
	}
	if key == "" {
		if logger != nil {
			logger.Warn("Empty AI API key found in Vault", "path", s.AIKey)
		}
		return nil
	}

	cfg.AI.APIKey = key
	cfg.AI.Suggest.APIKey = key
	if logger != nil {
		logger.Info("AI API key loaded from Vault", "mount", mount, "path", s.AIKey)
	}
	return nil
}
