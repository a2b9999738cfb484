package sync

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnumerateNested(t *testing.T) {
	fs = afero.NewMemMapFs()
	for _, dir := range []string{
		"/src/LabA/Alice/proj1",
		"/src/LabA/Alice/proj2",
		"/src/LabA/bob/proj3",
		"/src/labB/carol",
	} {
		require.NoError(t, fs.MkdirAll(dir, 0755))
	}
	require.NoError(t, afero.WriteFile(fs, "/src/README", []byte("not a group"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/src/LabA/Alice/notes.txt", []byte("not a project"), 0644))

	units, err := EnumerateNested("/src", "krios-k3")
	require.NoError(t, err)
	assert.Equal(t, []Unit{
		{SourcePath: "/src/LabA/Alice/proj1", Group: "LabA", User: "Alice", Project: "proj1",
			Collection: "krios-k3", DiscoveredVia: NestedHierarchy},
		{SourcePath: "/src/LabA/Alice/proj2", Group: "LabA", User: "Alice", Project: "proj2",
			Collection: "krios-k3", DiscoveredVia: NestedHierarchy},
		{SourcePath: "/src/LabA/bob/proj3", Group: "LabA", User: "bob", Project: "proj3",
			Collection: "krios-k3", DiscoveredVia: NestedHierarchy},
	}, units)
}

func TestEnumerateFlat(t *testing.T) {
	fs = afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/src/proj2", 0755))
	require.NoError(t, fs.MkdirAll("/src/proj1", 0755))
	require.NoError(t, afero.WriteFile(fs, "/src/stray.log", []byte("log"), 0644))

	units, err := EnumerateFlat("/src")
	require.NoError(t, err)
	assert.Equal(t, []Unit{
		{SourcePath: "/src/proj1", Project: "proj1", DiscoveredVia: FlatWithDescriptor},
		{SourcePath: "/src/proj2", Project: "proj2", DiscoveredVia: FlatWithDescriptor},
	}, units)

	assert.Equal(t, []Unit{
		{SourcePath: "/src/proj1", Group: "laba", User: "alice", Project: "proj1",
			DiscoveredVia: FlatWithExplicitOwner},
		{SourcePath: "/src/proj2", Group: "laba", User: "alice", Project: "proj2",
			DiscoveredVia: FlatWithExplicitOwner},
	}, WithOwner(units, "laba", "alice"))
}

func TestEnumerateMissingRoot(t *testing.T) {
	fs = afero.NewMemMapFs()

	_, err := EnumerateFlat("/missing")
	assert.Error(t, err)

	_, err = EnumerateNested("/missing", "")
	assert.Error(t, err)
}
