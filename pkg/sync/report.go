package sync

import (
	"fmt"
	"io"
	goSync "sync"

	"github.com/wright-cemrc-projects/sync-scripts/pkg/errors"
)

// RunLog records the Outcome of every Unit processed in a run. It's safe for
// concurrent use.
type RunLog struct {
	outcomes []Outcome
	lock     goSync.Mutex
}

// NewRunLog returns an empty RunLog.
func NewRunLog() *RunLog {
	return &RunLog{}
}

// Append records `outcome`.
func (l *RunLog) Append(outcome Outcome) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.outcomes = append(l.outcomes, outcome)
}

// Outcomes returns the recorded outcomes in the order they were appended.
func (l *RunLog) Outcomes() []Outcome {
	l.lock.Lock()
	defer l.lock.Unlock()
	return append([]Outcome(nil), l.outcomes...)
}

// Counts returns the number of outcomes with each status.
func (l *RunLog) Counts() map[Status]int {
	l.lock.Lock()
	defer l.lock.Unlock()

	counts := map[Status]int{}
	for _, o := range l.outcomes {
		counts[o.Status]++
	}
	return counts
}

// ChangedEntries returns the total number of entries changed in the run.
func (l *RunLog) ChangedEntries() (n int) {
	l.lock.Lock()
	defer l.lock.Unlock()

	for _, o := range l.outcomes {
		if o.Status == Synced {
			n += o.ChangedEntries
		}
	}
	return n
}

// Reporter writes outcomes for the operator. Units that were synced with
// changes are written to Out as their relative destination, so that the
// output can be consumed by scripts. Denials, skips and errors are written to
// Err behind a stable tag.
type Reporter struct {
	Out io.Writer
	Err io.Writer

	lock goSync.Mutex
}

// NewReporter returns a Reporter that writes to `out` and `err`.
func NewReporter(out, err io.Writer) *Reporter {
	return &Reporter{Out: out, Err: err}
}

// Report writes the line for `o`, if it has one.
func (r *Reporter) Report(o Outcome) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if o.Status == Synced {
		if o.ChangedEntries > 0 {
			fmt.Fprintln(r.Out, o.Destination.Relative)
		}
		return
	}

	line := fmt.Sprintf("%s: %s", o.Status.Tag(), o.Unit.SourcePath)
	if o.Err != nil && !isMissingDescriptor(o.Err) {
		line += fmt.Sprintf(" (%s)", o.Err)
	}
	fmt.Fprintln(r.Err, line)
}

func isMissingDescriptor(err error) bool {
	_, ok := errors.RootCause(err).(errors.MissingDescriptor)
	return ok
}
