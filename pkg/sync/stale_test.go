package sync

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsStale(t *testing.T) {
	now := time.Date(2024, 2, 13, 12, 0, 0, 0, time.UTC)
	day := 24 * time.Hour

	tests := []struct {
		name     string
		age      time.Duration
		weeks    int
		expStale bool
	}{
		{"FreshAtThreeWeeks", 20 * day, 3, false},
		{"BoundaryIsNotStale", 21 * day, 3, false},
		{"JustPastBoundary", 21*day + time.Second, 3, true},
		{"StaleAtThreeWeeks", 22 * day, 3, true},
		{"StaleAtTwoWeeks", 22 * day, 2, true},
		{"FreshAtFourWeeks", 22 * day, 4, false},
		{"DisabledThreshold", 365 * day, 0, false},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			fs = afero.NewMemMapFs()
			require.NoError(t, fs.MkdirAll("/src/proj", 0755))
			mtime := now.Add(-test.age)
			require.NoError(t, fs.Chtimes("/src/proj", mtime, mtime))

			policy := NewStalenessPolicy(test.weeks, clockwork.NewFakeClockAt(now))
			stale, err := policy.IsStale("/src/proj")
			assert.NoError(t, err)
			assert.Equal(t, test.expStale, stale)
		})
	}
}

func TestIsStaleIgnoresContents(t *testing.T) {
	now := time.Date(2024, 2, 13, 12, 0, 0, 0, time.UTC)
	old := now.Add(-30 * 24 * time.Hour)

	fs = afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/src/proj/sub", 0755))
	require.NoError(t, afero.WriteFile(fs, "/src/proj/sub/new.tiff", []byte("data"), 0644))
	require.NoError(t, fs.Chtimes("/src/proj", old, old))

	stale, err := NewStalenessPolicy(3, clockwork.NewFakeClockAt(now)).IsStale("/src/proj")
	assert.NoError(t, err)
	assert.True(t, stale)
}

func TestIsStaleMissing(t *testing.T) {
	fs = afero.NewMemMapFs()
	_, err := NewStalenessPolicy(3, clockwork.NewFakeClock()).IsStale("/src/missing")
	assert.Error(t, err)
}
