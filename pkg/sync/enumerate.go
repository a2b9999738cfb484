package sync

import (
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/wright-cemrc-projects/sync-scripts/pkg/errors"
)

// EnumerateNested lists the projects in a source tree laid out as
// `root/group/user/project`. Every project becomes a Unit, regardless of
// whether its owner is authorized. `collection` is recorded on each unit, and
// may be empty.
func EnumerateNested(root, collection string) ([]Unit, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.WithContext(err, "absolute path")
	}

	groups, err := listDirs(root)
	if err != nil {
		return nil, errors.WithContext(err, fmt.Sprintf("list %s", root))
	}

	var units []Unit
	for _, group := range groups {
		groupDir := filepath.Join(root, group)
		users, err := listDirs(groupDir)
		if err != nil {
			log.WithError(err).WithField("path", groupDir).Warn("Failed to list group directory")
			continue
		}

		for _, user := range users {
			userDir := filepath.Join(groupDir, user)
			projects, err := listDirs(userDir)
			if err != nil {
				log.WithError(err).WithField("path", userDir).Warn("Failed to list user directory")
				continue
			}

			for _, project := range projects {
				units = append(units, Unit{
					SourcePath:    filepath.Join(userDir, project),
					Group:         group,
					User:          user,
					Project:       project,
					Collection:    collection,
					DiscoveredVia: NestedHierarchy,
				})
			}
		}
	}
	return units, nil
}

// EnumerateFlat lists the project directories directly under `root`. The
// owner of each project is resolved later from its descriptor.
func EnumerateFlat(root string) ([]Unit, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.WithContext(err, "absolute path")
	}

	projects, err := listDirs(root)
	if err != nil {
		return nil, errors.WithContext(err, fmt.Sprintf("list %s", root))
	}

	var units []Unit
	for _, project := range projects {
		units = append(units, Unit{
			SourcePath:    filepath.Join(root, project),
			Project:       project,
			DiscoveredVia: FlatWithDescriptor,
		})
	}
	return units, nil
}

// WithOwner returns copies of `units` that are owned by `group` and `user`.
func WithOwner(units []Unit, group, user string) []Unit {
	owned := make([]Unit, 0, len(units))
	for _, unit := range units {
		unit.Group = group
		unit.User = user
		unit.DiscoveredVia = FlatWithExplicitOwner
		owned = append(owned, unit)
	}
	return owned
}

// listDirs returns the sorted names of the directories in `dir`. Symlinks
// that point at directories are included.
func listDirs(dir string) ([]string, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if isDir(filepath.Join(dir, entry.Name()), entry) {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

func isDir(path string, fi os.FileInfo) bool {
	if fi.Mode()&os.ModeSymlink == 0 {
		return fi.IsDir()
	}

	target, err := fs.Stat(path)
	return err == nil && target.IsDir()
}
