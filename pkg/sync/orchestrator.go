package sync

//go:generate mockery -name Copier

import (
	"context"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/wright-cemrc-projects/sync-scripts/pkg/config"
	"github.com/wright-cemrc-projects/sync-scripts/pkg/errors"
)

// Copier performs a one-way, additive copy of `sourceDir` into `destDir`,
// and returns how many entries it changed. Copying an unchanged source a
// second time must change nothing.
type Copier interface {
	Copy(ctx context.Context, sourceDir, destDir string) (int, error)
}

// Recorder is notified of every Outcome. `copyTime` is zero for units that
// were never copied.
type Recorder interface {
	RecordOutcome(o Outcome, copyTime time.Duration)
}

// Options configures an Orchestrator.
type Options struct {
	Permissions config.Permissions
	Remapper    Remapper
	Staleness   StalenessPolicy
	Copier      Copier

	// Reporter and Recorder are optional.
	Reporter *Reporter
	Recorder Recorder

	// Workers is the number of units processed at once. Values below 2
	// process units sequentially, in order.
	Workers int

	// DryRun disables creating destination directories. The Copier is
	// expected to be configured for a dry run as well.
	DryRun bool

	// OnNewDestination is called with a freshly created, empty destination
	// directory, before the first copy into it. The copy then restores the
	// directory's modification time, so the next run over an unchanged
	// source changes nothing. Errors are logged, and don't change the unit's
	// outcome.
	OnNewDestination func(Destination) error

	Log *logrus.Logger
}

// Orchestrator syncs Units according to its Options.
type Orchestrator struct {
	Options
}

// New returns an Orchestrator configured with `opts`.
func New(opts Options) *Orchestrator {
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	return &Orchestrator{opts}
}

// Run processes `units`, and returns the outcome of each unit that was
// processed. A failure in one unit never stops the others. If `ctx` is
// cancelled, in-flight copies are aborted, no new units are started, and
// ctx.Err() is returned along with the outcomes recorded so far.
func (o *Orchestrator) Run(ctx context.Context, units []Unit) (*RunLog, error) {
	runLog := NewRunLog()
	log := o.Log.WithField("run", uuid.New().String())

	if o.Staleness.Threshold > 0 {
		log.WithField("threshold", o.Staleness.Threshold).Debug(
			"Projects are skipped if the project directory itself hasn't " +
				"been modified within the threshold. Files added deeper in " +
				"the tree may not update the directory's modification time.")
	}

	if o.Workers < 2 {
		for _, unit := range units {
			if ctx.Err() != nil {
				break
			}
			o.process(ctx, log, runLog, unit)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(o.Workers)
		for _, unit := range units {
			if ctx.Err() != nil {
				break
			}

			unit := unit
			g.Go(func() error {
				o.process(ctx, log, runLog, unit)
				return nil
			})
		}
		_ = g.Wait()
	}

	counts := runLog.Counts()
	fields := logrus.Fields{}
	for _, status := range AllStatuses {
		if counts[status] > 0 {
			fields[status.String()] = counts[status]
		}
	}
	log.WithFields(fields).Infof("Processed %d of %d units, changed %d entries.",
		len(runLog.Outcomes()), len(units), runLog.ChangedEntries())
	return runLog, ctx.Err()
}

func (o *Orchestrator) process(ctx context.Context, log *logrus.Entry, runLog *RunLog, unit Unit) {
	// A worker may be started after the run was cancelled.
	if ctx.Err() != nil {
		return
	}

	outcome, copyTime := o.syncUnit(ctx, log, unit)

	entry := log.WithFields(logrus.Fields{
		"source":  unit.SourcePath,
		"status":  outcome.Status,
		"changed": outcome.ChangedEntries,
	})
	if outcome.Err != nil {
		entry = entry.WithError(outcome.Err)
	}
	entry.Debug("Processed unit")

	runLog.Append(outcome)
	if o.Reporter != nil {
		o.Reporter.Report(outcome)
	}
	if o.Recorder != nil {
		o.Recorder.RecordOutcome(outcome, copyTime)
	}
}

func (o *Orchestrator) syncUnit(ctx context.Context, log *logrus.Entry, unit Unit) (Outcome, time.Duration) {
	outcome := Outcome{Unit: unit}

	dest, err := o.Remapper.Remap(unit)
	if err != nil {
		outcome.Err = err
		if _, ok := errors.RootCause(err).(errors.InvalidSegment); ok {
			outcome.Status = DeniedInvalidSegment
		} else {
			outcome.Status = DeniedNoOwnerInfo
		}
		return outcome, 0
	}
	outcome.Destination = dest

	if !o.Permissions.IsAuthorizedGroup(dest.Group) {
		outcome.Status = DeniedInvalidGroup
		return outcome, 0
	}

	if !o.Permissions.IsAuthorizedUser(dest.Group, dest.User) {
		outcome.Status = DeniedInvalidUser
		return outcome, 0
	}

	stale, err := o.Staleness.IsStale(unit.SourcePath)
	if err != nil {
		outcome.Status = ErrorDestinationUnwritable
		outcome.Err = errors.WithContext(err, "check staleness")
		return outcome, 0
	}
	if stale {
		outcome.Status = SkippedStale
		return outcome, 0
	}

	existed, err := afero.DirExists(fs, dest.Path)
	if err != nil {
		outcome.Status = ErrorDestinationUnwritable
		outcome.Err = errors.WithContext(err, "stat destination")
		return outcome, 0
	}

	if !o.DryRun {
		// MkdirAll succeeds if the directory already exists, so concurrent
		// workers creating the same parent don't conflict.
		if err := fs.MkdirAll(path.Dir(dest.Path), 0755); err != nil {
			outcome.Status = ErrorDestinationUnwritable
			outcome.Err = errors.WithContext(err, "create destination parent")
			return outcome, 0
		}
	}

	if !existed && !o.DryRun && o.OnNewDestination != nil {
		o.prepareDestination(log, dest)
	}

	start := time.Now()
	changed, err := o.Copier.Copy(ctx, unit.SourcePath, dest.Path)
	copyTime := time.Since(start)
	if err != nil {
		outcome.Status = ErrorDestinationUnwritable
		outcome.Err = errors.WithContext(err, "copy")
		return outcome, copyTime
	}

	outcome.Status = Synced
	outcome.ChangedEntries = changed
	return outcome, copyTime
}

func (o *Orchestrator) prepareDestination(log *logrus.Entry, dest Destination) {
	err := fs.MkdirAll(dest.Path, 0755)
	if err == nil {
		err = o.OnNewDestination(dest)
	}
	if err != nil {
		log.WithError(err).WithField("path", dest.Path).Warn(
			"Failed to prepare new destination. The data will still be synced.")
	}
}
