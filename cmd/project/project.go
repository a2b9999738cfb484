package project

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/wright-cemrc-projects/sync-scripts/cmd/util"
	"github.com/wright-cemrc-projects/sync-scripts/pkg/config"
	"github.com/wright-cemrc-projects/sync-scripts/pkg/errors"
	"github.com/wright-cemrc-projects/sync-scripts/pkg/rsync"
	"github.com/wright-cemrc-projects/sync-scripts/pkg/sync"
)

// Mocked for unit testing.
var (
	stdout    io.Writer = os.Stdout
	stderr    io.Writer = os.Stderr
	newCopier           = func(opts rsync.Options) sync.Copier { return rsync.New(opts) }
	clock               = clockwork.NewRealClock()
)

type options struct {
	dest         string
	permissions  string
	source       string
	nestedSource string
	group        string
	user         string

	staleWeeks        int
	workers           int
	dryRun            bool
	preserveOwnership bool
	metricsTextfile   string
}

// New creates a new `project` command.
func New() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Sync project directories into the destination tree",
		Long: `Copy project directories into <dest>/<group>/<user>/<project>.

With --source, every directory in the source is a project. Its owner is read
from the project's dataset.json, unless --group and --user are given.

With --nested-source, the source is laid out as <group>/<user>/<project>.

Projects are only copied if their group and user are listed in the
permissions file. Each project that had changes is printed to stdout.`,
		Args: cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			if err := opts.validate(); err != nil {
				util.HandleFatalError(err)
			}

			ctx, cancel := util.SignalContext()
			defer cancel()

			if err := run(ctx, opts); err != nil {
				util.HandleFatalError(err)
			}
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.dest, "dest", "", "the root of the destination tree")
	flags.StringVar(&opts.permissions, "permissions", "",
		"path to the permissions file mapping groups to users")
	flags.StringVar(&opts.source, "source", "",
		"a directory of project directories")
	flags.StringVar(&opts.nestedSource, "nested-source", "",
		"a directory laid out as <group>/<user>/<project>")
	flags.StringVar(&opts.group, "group", "",
		"the group that owns every project in --source")
	flags.StringVar(&opts.user, "user", "",
		"the user that owns every project in --source")
	flags.IntVar(&opts.staleWeeks, "stale-weeks", config.DefaultStaleWeeks,
		"skip projects that haven't been modified in this many weeks. 0 disables the check")
	flags.IntVar(&opts.workers, "workers", 1, "the number of projects to copy at once")
	flags.BoolVar(&opts.dryRun, "dry-run", false,
		"print the rsync commands that would run, without copying anything")
	flags.BoolVar(&opts.preserveOwnership, "preserve-ownership", false,
		"keep the owner and group of the source files")
	flags.StringVar(&opts.metricsTextfile, "metrics-textfile", "",
		"write run metrics to this path for the node_exporter textfile collector")
	return cmd
}

func (opts options) validate() error {
	if opts.dest == "" {
		return errors.NewFriendlyError("--dest is required.")
	}
	if opts.permissions == "" {
		return errors.NewFriendlyError("--permissions is required.")
	}
	if (opts.source == "") == (opts.nestedSource == "") {
		return errors.NewFriendlyError("Exactly one of --source or --nested-source is required.")
	}
	if (opts.group == "") != (opts.user == "") {
		return errors.NewFriendlyError("--group and --user must be used together.")
	}
	if opts.group != "" && opts.source == "" {
		return errors.NewFriendlyError("--group and --user can only be used with --source.")
	}
	if opts.staleWeeks < 0 {
		return errors.NewFriendlyError("--stale-weeks can't be negative.")
	}
	return nil
}

func (opts options) enumerate() ([]sync.Unit, error) {
	if opts.nestedSource != "" {
		return sync.EnumerateNested(opts.nestedSource, "")
	}

	units, err := sync.EnumerateFlat(opts.source)
	if err != nil {
		return nil, err
	}
	if opts.group != "" {
		units = sync.WithOwner(units, opts.group, opts.user)
	}
	return units, nil
}

func run(ctx context.Context, opts options) error {
	// The permissions are loaded before anything else so that a bad
	// permissions file stops the run before any unit is touched.
	permissions, err := config.LoadPermissions(opts.permissions)
	if err != nil {
		return errors.WithContext(err, "load permissions")
	}

	dest, err := filepath.Abs(opts.dest)
	if err != nil {
		return errors.WithContext(err, "resolve destination")
	}

	units, err := opts.enumerate()
	if err != nil {
		return errors.WithContext(err, "list projects")
	}

	copier := newCopier(rsync.Options{
		Inplace:           true,
		PreserveOwnership: opts.preserveOwnership,
		DryRun:            opts.dryRun,
	})

	_, err = util.RunSync(ctx, sync.Options{
		Permissions: permissions,
		Remapper: sync.Remapper{
			Root:     dest,
			Resolver: config.DescriptorResolver{},
		},
		Staleness: sync.NewStalenessPolicy(opts.staleWeeks, clock),
		Copier:    copier,
		Reporter:  sync.NewReporter(stdout, stderr),
		Workers:   opts.workers,
		DryRun:    opts.dryRun,
	}, units, opts.metricsTextfile)
	return err
}
