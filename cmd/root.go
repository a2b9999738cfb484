package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wright-cemrc-projects/sync-scripts/cmd/ceph"
	configCmd "github.com/wright-cemrc-projects/sync-scripts/cmd/config"
	"github.com/wright-cemrc-projects/sync-scripts/cmd/project"
	"github.com/wright-cemrc-projects/sync-scripts/cmd/util"
	"github.com/wright-cemrc-projects/sync-scripts/cmd/version"
)

// verboseLogKey is the environment variable used to enable verbose logging.
// When it's set to `true`, Debug events are logged, rather than just Info and
// above.
const verboseLogKey = "CEMRC_SYNC_LOG_VERBOSE"

// Execute runs the main CLI process.
func Execute() {
	if os.Getenv(verboseLogKey) == "true" {
		log.SetLevel(log.DebugLevel)
	}

	// Stdout is reserved for the list of synced projects.
	log.SetOutput(os.Stderr)

	rootCmd := &cobra.Command{
		Use:          "cemrc-sync",
		Short:        "Sync instrument data into the per-user project tree",
		SilenceUsage: true,

		// The call to rootCmd.Execute prints the error, so we silence errors
		// here to avoid double printing.
		SilenceErrors: true,
	}
	rootCmd.AddCommand(
		ceph.New(),
		configCmd.New(),
		project.New(),
		version.New(),
	)

	if err := rootCmd.Execute(); err != nil {
		util.HandleFatalError(err)
	}
}
