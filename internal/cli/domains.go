package cli

import (
	"fmt"

	"skillmatch/internal/common"
	"skillmatch/internal/skills"
	"skillmatch/internal/types"

	"github.com/spf13/cobra"
)

var domainsCmd = &cobra.Command{
	Use:   "domains",
	Short: "List job domains and their required skills",
	Args:  cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return resolveFormat(cmd, &domainsConfig)
	},
	RunE: runDomains,
}

var domainsConfig common.CommandConfig

func init() {
	formatFlags(domainsCmd, &domainsConfig)
}

func runDomains(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	catalog := skills.LoadCatalog(skills.Paths{
		Skills:  cfg.Data.SkillsFile,
		Domains: cfg.Data.DomainsFile,
	}, logger)
	for _, w := range catalog.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w.Message)
	}

	return common.NewOutputHandler(logger).HandleOutput(domainList(catalog), domainsConfig)
}

// domainList lists domains in file order with their required skills
func domainList(catalog *skills.Catalog) []types.DomainInfo {
	domains := []types.DomainInfo{}
	for _, name := range catalog.Domains.Names() {
		required, _ := catalog.Domains.Required(name)
		domains = append(domains, types.DomainInfo{Name: name, Required: required})
	}
	return domains
}
