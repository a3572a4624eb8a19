package cli

import (
	"context"

	"skillmatch/internal/config"
	"skillmatch/internal/errors"

	"github.com/spf13/cobra"
)

// runtime is what main hands every command through the context
type runtime struct {
	cfg    *config.Config
	logger *errors.Logger
}

type runtimeKey struct{}

var rootCmd = &cobra.Command{
	Use:   "skillmatch",
	Short: "Match resumes against job domain skill requirements",
	Long: `skillmatch reads a DOCX resume, finds the skills it mentions, compares
them with the skills a job domain requires and reports an ATS-style score.
Missing skills can be turned into AI improvement suggestions.

Run "skillmatch serve" for the guided web interface.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Tag every log line with the subcommand that produced it
		if rt, ok := cmd.Context().Value(runtimeKey{}).(runtime); ok {
			rt.logger = rt.logger.With("command", cmd.Name())
			cmd.SetContext(withRuntime(cmd.Context(), rt))
		}
	},
}

// Execute runs the command line with cfg and logger available to every subcommand
func Execute(ctx context.Context, cfg *config.Config, logger *errors.Logger) error {
	rootCmd.SetContext(withRuntime(ctx, runtime{cfg: cfg, logger: logger}))
	return rootCmd.Execute()
}

func withRuntime(ctx context.Context, rt runtime) context.Context {
	return context.WithValue(ctx, runtimeKey{}, rt)
}

func runtimeFrom(ctx context.Context) runtime {
	rt, ok := ctx.Value(runtimeKey{}).(runtime)
	if !ok {
		panic("cli runtime not found in context")
	}
	return rt
}

func getConfigFromContext(ctx context.Context) *config.Config {
	return runtimeFrom(ctx).cfg
}

func getLoggerFromContext(ctx context.Context) *errors.Logger {
	return runtimeFrom(ctx).logger
}

func init() {
	rootCmd.AddCommand(matchCmd, domainsCmd, versionCmd, serveCmd)
}
