// Package cli implements the syncdex command-line interface using cobra.
// Commands talk to the core exclusively through the driving ports; services
// are injected once at startup via SetServices.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/syncdex/internal/core/ports/driven"
	"github.com/custodia-labs/syncdex/internal/core/ports/driving"
	"github.com/custodia-labs/syncdex/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	syncService   driving.SyncService
	searchService driving.SearchService
	stateStore    driven.StateStore
	indexWriter   driven.IndexWriter
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "syncdex",
	Short: "Keep a full-text search index in sync with a remote document store",
	Long: `Syncdex mirrors documents from a remote store (Google Drive or a local
directory) into a local full-text index, detecting changes incrementally
and keeping deletions in step.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

// Services bundles everything the commands need.
type Services struct {
	Sync   driving.SyncService
	Search driving.SearchService
	State  driven.StateStore
	Index  driven.IndexWriter
}

// SetServices injects the service implementations used by the commands.
func SetServices(s Services) {
	syncService = s.Sync
	searchService = s.Search
	stateStore = s.State
	indexWriter = s.Index
}

// SetVersion sets the version string printed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}
