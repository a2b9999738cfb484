package ceph

import (
	"context"
	"io"
	"os"

	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/wright-cemrc-projects/sync-scripts/cmd/util"
	"github.com/wright-cemrc-projects/sync-scripts/pkg/config"
	"github.com/wright-cemrc-projects/sync-scripts/pkg/errors"
	"github.com/wright-cemrc-projects/sync-scripts/pkg/rsync"
	"github.com/wright-cemrc-projects/sync-scripts/pkg/staff"
	"github.com/wright-cemrc-projects/sync-scripts/pkg/sync"
)

// Mocked for unit testing.
var (
	fs                  = afero.NewOsFs()
	stdout    io.Writer = os.Stdout
	stderr    io.Writer = os.Stderr
	newCopier           = func(opts rsync.Options) sync.Copier { return rsync.New(opts) }
	clock               = clockwork.NewRealClock()
)

type options struct {
	configPath      string
	dryRun          bool
	workers         int
	metricsTextfile string
}

// New creates a new `ceph` command.
func New() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "ceph",
		Short: "Sync the instrument mirrors into the Ceph tree",
		Long: `Copy every project in the instrument mirror shares into
<destination>/<group>/<user><userSuffix>/<source>/<project>.

The mirrors, destination and permissions file are configured in the
cemrc-sync config file. Mirrors that aren't mounted are skipped. A staff
processing folder is created in each new project destination.`,
		Args: cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			ctx, cancel := util.SignalContext()
			defer cancel()

			if err := run(ctx, opts); err != nil {
				util.HandleFatalError(err)
			}
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", config.RunConfigPath,
		"path to the cemrc-sync config file")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false,
		"print the rsync commands that would run, without copying anything")
	cmd.Flags().IntVar(&opts.workers, "workers", 0,
		"the number of projects to copy at once. Overrides the config file")
	cmd.Flags().StringVar(&opts.metricsTextfile, "metrics-textfile", "",
		"write run metrics to this path for the node_exporter textfile collector")
	return cmd
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.ParseRun(opts.configPath)
	if err != nil {
		return errors.WithContext(err, "parse config")
	}

	permissions, err := config.LoadPermissions(cfg.Permissions)
	if err != nil {
		return errors.WithContext(err, "load permissions")
	}

	units, err := enumerate(cfg)
	if err != nil {
		return err
	}

	workers := cfg.Workers
	if opts.workers > 0 {
		workers = opts.workers
	}

	syncOpts := sync.Options{
		Permissions: permissions,
		Remapper: sync.Remapper{
			Root:   cfg.Destination,
			Layout: sync.Layout{UserSuffix: cfg.UserSuffix},
		},
		Staleness: sync.NewStalenessPolicy(cfg.GetStaleWeeks(), clock),
		Copier: newCopier(rsync.Options{
			Chmod:             cfg.Rsync.Chmod,
			Inplace:           cfg.Rsync.Inplace,
			PreserveOwnership: cfg.Rsync.PreserveOwnership,
			DryRun:            opts.dryRun,
		}),
		Reporter: sync.NewReporter(stdout, stderr),
		Workers:  workers,
		DryRun:   opts.dryRun,
	}

	if cfg.Staff.Folder != "" {
		provisioner := staff.New(cfg.Staff.Group, opts.dryRun)
		provisioner.Folder = cfg.Staff.Folder
		syncOpts.OnNewDestination = provisioner.Hook
	}

	_, err = util.RunSync(ctx, syncOpts, units, opts.metricsTextfile)
	return err
}

// enumerate lists the projects in each configured mirror. The name of the
// mirror is used as the collection of its projects.
func enumerate(cfg config.Run) ([]sync.Unit, error) {
	paths := cfg.SourcePaths()

	var units []sync.Unit
	for _, source := range cfg.Sources {
		path := paths[source]
		mounted, err := afero.DirExists(fs, path)
		if err != nil {
			return nil, errors.WithContext(err, "stat mirror")
		}
		if !mounted {
			log.WithField("path", path).Info("Mirror isn't mounted. Skipping.")
			continue
		}

		sourceUnits, err := sync.EnumerateNested(path, source)
		if err != nil {
			return nil, errors.WithContext(err, "list projects in "+source)
		}
		units = append(units, sourceUnits...)
	}
	return units, nil
}
