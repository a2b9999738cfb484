package sync

import "github.com/spf13/afero"

// Mocked out for unit testing.
var fs = afero.NewOsFs()

// SetFs sets the filesystem that units are enumerated from, and that
// destination directories are created in.
func SetFs(newFs afero.Fs) {
	fs = newFs
}
