package sync

//go:generate mockery -name OwnerResolver

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/wright-cemrc-projects/sync-scripts/pkg/config"
	"github.com/wright-cemrc-projects/sync-scripts/pkg/errors"
)

// OwnerResolver looks up the owner of a project directory whose owner isn't
// encoded in the source hierarchy.
type OwnerResolver interface {
	ResolveOwnership(projectDir string) (group, user string, err error)
}

// Layout controls the shape of destination paths beyond `group/user/project`.
type Layout struct {
	// UserSuffix is appended to the user directory, e.g. "@ad.wisc.edu".
	UserSuffix string
}

// Remapper computes where Units are synced to.
type Remapper struct {
	Root     string
	Layout   Layout
	Resolver OwnerResolver
}

// Remap returns the destination of `unit`. Group and user names are
// normalized, and every path segment is validated so that the destination
// can't escape Root.
func (r Remapper) Remap(unit Unit) (Destination, error) {
	group, user, err := r.owner(unit)
	if err != nil {
		return Destination{}, err
	}

	// The user is validated before the suffix is appended, so that an empty
	// user can't hide behind the suffix.
	if err := validateSegment("user", user); err != nil {
		return Destination{}, err
	}

	segments := []struct {
		kind, value string
	}{
		{"group", group},
		{"user", user + r.Layout.UserSuffix},
		{"collection", unit.Collection},
		{"project", unit.Project},
	}

	root := filepath.ToSlash(filepath.Clean(r.Root))
	var rel []string
	for _, seg := range segments {
		if seg.kind == "collection" && seg.value == "" {
			continue
		}
		if err := validateSegment(seg.kind, seg.value); err != nil {
			return Destination{}, err
		}
		rel = append(rel, seg.value)
	}

	relative := path.Join(rel...)
	dst := path.Join(root, relative)
	if !within(root, dst) {
		panic(fmt.Sprintf("destination %q escapes root %q", dst, root))
	}

	return Destination{
		Path:     dst,
		Relative: relative,
		Group:    group,
		User:     user,
	}, nil
}

func (r Remapper) owner(unit Unit) (group, user string, err error) {
	switch unit.DiscoveredVia {
	case NestedHierarchy, FlatWithExplicitOwner:
		group, user = unit.Group, unit.User
	case FlatWithDescriptor:
		if r.Resolver == nil {
			return "", "", errors.MissingDescriptor{Path: unit.SourcePath}
		}
		group, user, err = r.Resolver.ResolveOwnership(unit.SourcePath)
		if err != nil {
			return "", "", err
		}
	default:
		return "", "", fmt.Errorf("unknown discovery mode %s", unit.DiscoveredVia)
	}
	return config.NormalizeName(group), config.NormalizeName(user), nil
}

func validateSegment(kind, segment string) error {
	if segment == "" || segment == "." || segment == ".." ||
		strings.ContainsAny(segment, "/\\\x00") {
		return errors.InvalidSegment{Kind: kind, Segment: segment}
	}
	return nil
}

// within returns whether `p` is strictly inside `root`. Both paths must be
// clean.
func within(root, p string) bool {
	if root == "/" {
		return p != "/" && strings.HasPrefix(p, "/")
	}
	return strings.HasPrefix(p, root+"/")
}
