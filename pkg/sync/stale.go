package sync

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/wright-cemrc-projects/sync-scripts/pkg/errors"
)

// Week is the unit staleness thresholds are configured in.
const Week = 7 * 24 * time.Hour

// StalenessPolicy decides whether a project directory has gone unmodified
// for too long to be synced.
type StalenessPolicy struct {
	// Threshold is the maximum age of a directory that's still synced. A
	// zero Threshold disables the check.
	Threshold time.Duration
	Clock     clockwork.Clock
}

// NewStalenessPolicy returns a policy that treats directories older than
// `weeks` weeks as stale.
func NewStalenessPolicy(weeks int, clock clockwork.Clock) StalenessPolicy {
	return StalenessPolicy{
		Threshold: time.Duration(weeks) * Week,
		Clock:     clock,
	}
}

// IsStale returns whether the directory at `path` was last modified more
// than Threshold ago. Only the directory's own modification time is
// considered, not the times of the files within it.
func (p StalenessPolicy) IsStale(path string) (bool, error) {
	if p.Threshold <= 0 {
		return false, nil
	}

	fi, err := fs.Stat(path)
	if err != nil {
		return false, errors.WithContext(err, "stat")
	}
	return p.clock().Since(fi.ModTime()) > p.Threshold, nil
}

func (p StalenessPolicy) clock() clockwork.Clock {
	if p.Clock == nil {
		return clockwork.NewRealClock()
	}
	return p.Clock
}
