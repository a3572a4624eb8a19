package cli

import (
	"context"

	"skillmatch/internal/common"
	"skillmatch/internal/flow"
	"skillmatch/internal/types"

	"github.com/spf13/cobra"
)

var matchCmd = &cobra.Command{
	Use:   "match [resume.docx]",
	Short: "Score a resume against a job domain",
	Long: `Extract the text of a DOCX resume, match it against the required skills
of a job domain and print the matched and missing skills with the ATS score.

With --suggest, an AI improvement suggestion is generated for every missing
skill. A failed suggestion is reported for that skill only.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return resolveFormat(cmd, &matchConfig.CommandConfig)
	},
	RunE: runMatch,
}

type matchOptions struct {
	common.CommandConfig
	Domain  string
	Suggest bool
}

var matchConfig matchOptions

func init() {
	formatFlags(matchCmd, &matchConfig.CommandConfig)
	matchCmd.Flags().StringVarP(&matchConfig.Domain, "domain", "d", "", "Job domain to match against")
	matchCmd.Flags().BoolVar(&matchConfig.Suggest, "suggest", false, "Generate AI suggestions for missing skills")
	_ = matchCmd.MarkFlagRequired("domain")

	_ = matchCmd.RegisterFlagCompletionFunc("domain", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		logger := getLoggerFromContext(cmd.Context())
		c, err := newComponents(cfg, logger)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		defer c.close(logger)
		return c.catalog.Domains.Names(), cobra.ShellCompDirectiveNoFileComp
	})
}

func runMatch(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	c, err := newComponents(cfg, logger)
	if err != nil {
		return err
	}
	defer c.close(logger)

	if matchConfig.Suggest && !c.ai.Configured() {
		logger.Warn("No AI API key configured, suggestions will report errors")
	}

	matchOperation := func(ctx context.Context, doc common.Document) (types.MatchReport, error) {
		return evaluateDocument(ctx, c.engine, doc, matchConfig.Domain, matchConfig.Suggest)
	}

	err = common.RunDocumentCommand(cmd.Context(), logger, matchConfig.CommandConfig, args[0], c.extractor, matchOperation)
	if err != nil {
		return err
	}
	logger.Info("Resume match completed successfully")
	return nil
}

// evaluateDocument runs one pass of the flow for a CLI document. An unknown
// domain is an error here, unlike in the guided interface.
func evaluateDocument(ctx context.Context, engine *flow.Engine, doc common.Document, domain string, suggest bool) (types.MatchReport, error) {
	it := engine.Evaluate(ctx, flow.Input{
		Resume:          &flow.Resume{Name: doc.Name, Text: doc.Text},
		Domain:          domain,
		DomainChosen:    true,
		WantSuggestions: suggest,
	})
	if it.DomainError != nil {
		return types.MatchReport{}, it.DomainError
	}
	return it.Report(), nil
}
