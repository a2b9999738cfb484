package config

import "github.com/spf13/afero"

// fs is used for mock tests. It will be overridden by afero.NewMemMapFs()
// in the tests.
var fs = afero.NewOsFs()

// SetFs replaces the filesystem used to read configuration. It's used by tests
// in other packages that need to stage config files in memory.
func SetFs(newFs afero.Fs) {
	fs = newFs
}
