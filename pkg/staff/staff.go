// Package staff provisions the processing folder that facility staff use
// inside new project destinations.
package staff

import (
	"os"
	"os/user"
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/wright-cemrc-projects/sync-scripts/pkg/errors"
	"github.com/wright-cemrc-projects/sync-scripts/pkg/sync"
)

const (
	// DefaultFolder is the name of the folder created for staff.
	DefaultFolder = "staff_proc"

	// DefaultMode is the permission of the staff folder. It's group
	// writable so that everyone in the staff group can process data.
	DefaultMode os.FileMode = 0775
)

// Variables mocked for unit testing.
var (
	fs          = afero.NewOsFs()
	lookupGroup = user.LookupGroup
)

// Provisioner creates the staff folder in project destinations.
type Provisioner struct {
	// Folder is the name of the folder created within the project.
	Folder string

	// Group is the name of the group that owns the folder. The folder is
	// owned by root.
	Group string

	Mode   os.FileMode
	DryRun bool
	Log    *logrus.Logger
}

// New returns a Provisioner for `group` with the default folder name and
// mode.
func New(group string, dryRun bool) Provisioner {
	return Provisioner{
		Folder: DefaultFolder,
		Group:  group,
		Mode:   DefaultMode,
		DryRun: dryRun,
		Log:    logrus.StandardLogger(),
	}
}

// Provision creates the staff folder inside `projectDest` if it doesn't
// already exist, and sets its owner and permissions.
func (p Provisioner) Provision(projectDest string) error {
	path := filepath.Join(projectDest, p.Folder)
	log := p.log().WithFields(logrus.Fields{
		"path":  path,
		"group": p.Group,
	})
	if p.DryRun {
		log.Info("Dry run. Skipping creation of staff folder.")
		return nil
	}

	gid, err := p.gid()
	if err != nil {
		return errors.WithContext(err, "lookup group")
	}

	if err := fs.MkdirAll(path, p.Mode); err != nil {
		return errors.WithContext(err, "create")
	}

	if err := fs.Chown(path, 0, gid); err != nil {
		return errors.WithContext(err, "chown")
	}

	// Chmod explicitly since MkdirAll's mode is subject to the umask.
	if err := fs.Chmod(path, p.Mode); err != nil {
		return errors.WithContext(err, "chmod")
	}

	log.Info("Created staff folder")
	return nil
}

// Hook adapts Provision to the orchestrator's OnNewDestination hook.
func (p Provisioner) Hook(dest sync.Destination) error {
	return p.Provision(dest.Path)
}

func (p Provisioner) gid() (int, error) {
	group, err := lookupGroup(p.Group)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(group.Gid)
}

func (p Provisioner) log() *logrus.Logger {
	if p.Log == nil {
		return logrus.StandardLogger()
	}
	return p.Log
}
