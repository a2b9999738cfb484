package sync

import "fmt"

// Discovery describes how a Unit's owner is known.
type Discovery int

const (
	// NestedHierarchy units live at `group/user/project` in the source tree.
	NestedHierarchy Discovery = iota

	// FlatWithDescriptor units are project directories whose owner is
	// recorded in the project's descriptor file.
	FlatWithDescriptor

	// FlatWithExplicitOwner units are project directories whose owner was
	// supplied by the caller.
	FlatWithExplicitOwner
)

func (d Discovery) String() string {
	switch d {
	case NestedHierarchy:
		return "nested"
	case FlatWithDescriptor:
		return "descriptor"
	case FlatWithExplicitOwner:
		return "explicit-owner"
	default:
		return fmt.Sprintf("Discovery(%d)", int(d))
	}
}

// A Unit is a single project directory that's a candidate for syncing.
type Unit struct {
	// SourcePath is the absolute path to the project directory.
	SourcePath string

	// Group and User are the owner of the project, as given by the source
	// layout or the caller. They're empty for FlatWithDescriptor units.
	Group string
	User  string

	// Project is the name of the project directory in the destination.
	Project string

	// Collection is the optional name of the mirror the unit was found in.
	// When set, it's inserted between the user and project directories in
	// the destination.
	Collection string

	DiscoveredVia Discovery
}

// Status is the terminal state of a Unit.
type Status int

const (
	// Synced means the copy succeeded. The unit may already have been in
	// sync, in which case no entries were changed.
	Synced Status = iota
	SkippedStale
	DeniedInvalidGroup
	DeniedInvalidUser
	DeniedNoOwnerInfo
	DeniedInvalidSegment
	ErrorDestinationUnwritable
)

var statusNames = map[Status]string{
	Synced:                     "synced",
	SkippedStale:               "skipped_stale",
	DeniedInvalidGroup:         "denied_invalid_group",
	DeniedInvalidUser:          "denied_invalid_user",
	DeniedNoOwnerInfo:          "denied_no_owner_info",
	DeniedInvalidSegment:       "denied_invalid_segment",
	ErrorDestinationUnwritable: "error_destination_unwritable",
}

// AllStatuses lists every Status in declaration order.
var AllStatuses = []Status{
	Synced, SkippedStale, DeniedInvalidGroup, DeniedInvalidUser,
	DeniedNoOwnerInfo, DeniedInvalidSegment, ErrorDestinationUnwritable,
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Tag returns the stable prefix used when reporting the status to the
// operator. Synced units don't have a tag.
func (s Status) Tag() string {
	switch s {
	case SkippedStale:
		return "[old project - skipping]"
	case DeniedInvalidGroup:
		return "[invalid group, skipping]"
	case DeniedInvalidUser:
		return "[invalid user, skipping]"
	case DeniedNoOwnerInfo:
		return "[invalid project, no dataset.json present]"
	case DeniedInvalidSegment:
		return "[invalid path segment]"
	case ErrorDestinationUnwritable:
		return "[destination unwritable]"
	default:
		return ""
	}
}

// Destination is where a Unit is synced to.
type Destination struct {
	// Path is the absolute destination of the project directory.
	Path string

	// Relative is Path relative to the destination root, and is what's
	// reported to the operator.
	Relative string

	// Group and User are the normalized owner of the project.
	Group string
	User  string
}

// Outcome is the result of processing a single Unit.
type Outcome struct {
	Unit   Unit
	Status Status

	// ChangedEntries is the number of entries the copy changed. It's only
	// meaningful when Status is Synced.
	ChangedEntries int

	// Destination is empty if the unit was denied before its destination
	// could be computed.
	Destination Destination

	// Err is the underlying cause of denials and errors, if there is one.
	Err error
}
