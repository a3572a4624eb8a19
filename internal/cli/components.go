package cli

import (
	"fmt"

	"skillmatch/internal/ai"
	"skillmatch/internal/common"
	"skillmatch/internal/config"
	"skillmatch/internal/errors"
	"skillmatch/internal/extract"
	"skillmatch/internal/flow"
	"skillmatch/internal/formatters"
	"skillmatch/internal/skills"

	"github.com/spf13/cobra"
)

// components are the pieces every command matches with
type components struct {
	catalog   *skills.Catalog
	extractor *extract.Extractor
	ai        *ai.Service
	engine    *flow.Engine
}

// newComponents loads the dictionaries and builds the suggestion service.
// Missing dictionaries and a missing API key are not errors.
func newComponents(cfg *config.Config, logger *errors.Logger) (*components, error) {
	catalog := skills.LoadCatalog(skills.Paths{
		Skills:  cfg.Data.SkillsFile,
		Domains: cfg.Data.DomainsFile,
	}, logger)

	suggestCfg := cfg.GetSuggestConfig()
	aiService, err := ai.NewService(&suggestCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create AI service: %w", err)
	}

	extractor := extract.NewExtractor(cfg.App.MaxFileSize, logger)
	if cfg.App.DocxLicenseKey != "" {
		if err := extract.SetOfficeLicense(cfg.App.DocxLicenseKey); err != nil {
			logger.Warn("Invalid unidoc license key, reading documents without unioffice", "error", err.Error())
		} else {
			extractor.EnableOfficeModel()
		}
	}

	return &components{
		catalog:   catalog,
		extractor: extractor,
		ai:        aiService,
		engine:    flow.NewEngine(catalog, aiService, cfg.App.PreviewLength, logger),
	}, nil
}

func (c *components) close(logger *errors.Logger) {
	if err := c.ai.Close(); err != nil {
		logger.LogError(err, "Failed to close AI service")
	}
}

// formatFlags registers --output and --format on cmd
func formatFlags(cmd *cobra.Command, target *common.CommandConfig) {
	cmd.Flags().StringVarP(&target.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&target.OutputFormat, "format", "", "Output format: json, text, or markdown")

	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		if len(cfg.App.SupportedFormats) == 0 {
			return formatters.GlobalRegistry.GetSupportedFormats(), cobra.ShellCompDirectiveNoFileComp
		}
		return cfg.App.SupportedFormats, cobra.ShellCompDirectiveNoFileComp
	})
}

// resolveFormat applies the configured default format and validates it
func resolveFormat(cmd *cobra.Command, target *common.CommandConfig) error {
	cfg := getConfigFromContext(cmd.Context())
	if target.OutputFormat == "" {
		target.OutputFormat = cfg.App.DefaultFormat
	}
	return common.ValidateOutputFormat(target.OutputFormat, cfg.App.SupportedFormats)
}
