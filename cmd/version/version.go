package version

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wright-cemrc-projects/sync-scripts/pkg/version"
)

// Mocked for unit testing.
var stdout io.Writer = os.Stdout

// New creates a new `version` command.
func New() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of cemrc-sync.",
		Long:  "Print the version of cemrc-sync, as a git tag or commit hash.",
		Run: func(_ *cobra.Command, _ []string) {
			run()
		},
	}
}

func run() {
	if version.IsRelease() {
		fmt.Fprintf(stdout, "cemrc-sync version: %s\n", version.Version)
	} else {
		fmt.Fprintln(stdout, "cemrc-sync version: development build")
	}
}
