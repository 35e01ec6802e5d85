// Package cli implements the docmill command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/atelier-labs/docmill/internal/adapters/driven/config/file"
	"github.com/atelier-labs/docmill/internal/core/ports/driving"
	"github.com/atelier-labs/docmill/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Services injected by the composition root. Commands guard against a
// missing service so partial wiring fails with a clear error.
var (
	settingsStore   *file.SettingsStore
	tokenService    driving.TokenService
	authURLProvider AuthURLProvider
	generatorSvc    driving.Generator
	documentQueries driving.DocumentQueries
	dispatcherSvc   driving.Dispatcher
	spoolRunner     SpoolRunner
)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "docmill",
	Short: "Generate customer documents from priced offers",
	Long: `docmill turns priced offers into customer-facing documents.

For each configured template kind it copies a remote template, fills in
the offer data, exports a PDF, shares both files via link and keeps a
local backup of the artifact.

Run 'docmill auth setup' once to configure credentials, then
'docmill auth connect' to authorise access to the document provider.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(
		&verboseFlag, "verbose", "v", false, "Enable verbose output")
}

// Services bundles everything the commands need.
type Services struct {
	Settings        *file.SettingsStore
	TokenService    driving.TokenService
	AuthURL         AuthURLProvider
	Generator       driving.Generator
	DocumentQueries driving.DocumentQueries
	Dispatcher      driving.Dispatcher
	Spool           SpoolRunner
}

// Configure injects the services used by the commands.
func Configure(s Services) {
	settingsStore = s.Settings
	tokenService = s.TokenService
	authURLProvider = s.AuthURL
	generatorSvc = s.Generator
	documentQueries = s.DocumentQueries
	dispatcherSvc = s.Dispatcher
	spoolRunner = s.Spool
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
