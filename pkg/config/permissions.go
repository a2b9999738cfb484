package config

import (
	"sort"

	"github.com/ghodss/yaml"
	log "github.com/sirupsen/logrus"

	"github.com/wright-cemrc-projects/sync-scripts/pkg/errors"
)

// Permissions maps each authorized group to the users that may sync data
// into it. It's immutable once loaded, so it's safe to query from multiple
// goroutines.
type Permissions struct {
	groups map[string]map[string]struct{}
}

// LoadPermissions parses the permissions file at `path`. The file maps group
// names to arrays of user names, and may be written in either JSON or YAML.
func LoadPermissions(path string) (Permissions, error) {
	contents, err := readFile(path)
	if err != nil {
		return Permissions{}, err
	}

	var raw map[string][]string
	if err := yaml.Unmarshal(contents, &raw); err != nil {
		return Permissions{}, errors.MalformedRegistry{Path: path, Err: err}
	}
	if raw == nil {
		return Permissions{}, errors.MalformedRegistry{Path: path, Err: errors.New("no groups defined")}
	}

	permissions := NewPermissions(raw)
	log.WithFields(log.Fields{
		"path":   path,
		"groups": permissions.Groups(),
	}).Debug("Loaded permissions")
	return permissions, nil
}

// NewPermissions creates Permissions from an in-memory mapping.
func NewPermissions(mapping map[string][]string) Permissions {
	groups := map[string]map[string]struct{}{}
	for group, users := range mapping {
		group = NormalizeName(group)
		members, ok := groups[group]
		if !ok {
			members = map[string]struct{}{}
			groups[group] = members
		}
		for _, user := range users {
			members[NormalizeName(user)] = struct{}{}
		}
	}
	return Permissions{groups: groups}
}

// IsAuthorizedGroup returns whether `group` is a known group.
func (p Permissions) IsAuthorizedGroup(group string) bool {
	p.mustBeLoaded()
	_, ok := p.groups[NormalizeName(group)]
	return ok
}

// IsAuthorizedUser returns whether `user` is a member of `group`.
func (p Permissions) IsAuthorizedUser(group, user string) bool {
	p.mustBeLoaded()
	members, ok := p.groups[NormalizeName(group)]
	if !ok {
		return false
	}
	_, ok = members[NormalizeName(user)]
	return ok
}

// Groups returns the sorted names of all known groups.
func (p Permissions) Groups() []string {
	var groups []string
	for group := range p.groups {
		groups = append(groups, group)
	}
	sort.Strings(groups)
	return groups
}

func (p Permissions) mustBeLoaded() {
	if p.groups == nil {
		panic("permission lookup against an unloaded registry")
	}
}
