package sync

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wright-cemrc-projects/sync-scripts/pkg/errors"
)

func TestReport(t *testing.T) {
	unit := Unit{SourcePath: "/src/labA/alice/proj1"}
	dest := Destination{Relative: "laba/alice/proj1"}

	tests := []struct {
		name      string
		outcome   Outcome
		expStdout string
		expStderr string
	}{
		{
			name:      "SyncedWithChanges",
			outcome:   Outcome{Unit: unit, Status: Synced, ChangedEntries: 2, Destination: dest},
			expStdout: "laba/alice/proj1\n",
		},
		{
			name:    "AlreadySynced",
			outcome: Outcome{Unit: unit, Status: Synced, Destination: dest},
		},
		{
			name:      "Stale",
			outcome:   Outcome{Unit: unit, Status: SkippedStale, Destination: dest},
			expStderr: "[old project - skipping]: /src/labA/alice/proj1\n",
		},
		{
			name: "MissingDescriptor",
			outcome: Outcome{Unit: unit, Status: DeniedNoOwnerInfo,
				Err: errors.MissingDescriptor{Path: "/src/labA/alice/proj1/dataset.json"}},
			expStderr: "[invalid project, no dataset.json present]: /src/labA/alice/proj1\n",
		},
		{
			name: "Unwritable",
			outcome: Outcome{Unit: unit, Status: ErrorDestinationUnwritable,
				Err: errors.WithContext(errors.New("permission denied"), "create destination parent")},
			expStderr: "[destination unwritable]: /src/labA/alice/proj1 " +
				"(create destination parent: permission denied)\n",
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			NewReporter(&stdout, &stderr).Report(test.outcome)
			assert.Equal(t, test.expStdout, stdout.String())
			assert.Equal(t, test.expStderr, stderr.String())
		})
	}
}

func TestRunLog(t *testing.T) {
	runLog := NewRunLog()
	runLog.Append(Outcome{Status: Synced, ChangedEntries: 3})
	runLog.Append(Outcome{Status: Synced})
	runLog.Append(Outcome{Status: DeniedInvalidGroup})
	runLog.Append(Outcome{Status: ErrorDestinationUnwritable, ChangedEntries: 5})

	assert.Len(t, runLog.Outcomes(), 4)
	assert.Equal(t, map[Status]int{
		Synced:                     2,
		DeniedInvalidGroup:         1,
		ErrorDestinationUnwritable: 1,
	}, runLog.Counts())
	assert.Equal(t, 3, runLog.ChangedEntries())
}

func TestStatusNames(t *testing.T) {
	for _, status := range AllStatuses {
		assert.NotContains(t, status.String(), "Status(")
		if status != Synced {
			assert.NotEmpty(t, status.Tag(), status.String())
		}
	}
	assert.Equal(t, "Status(99)", Status(99).String())
	assert.Empty(t, Synced.Tag())
}
