package errors

import (
	"fmt"
)

// MissingFieldError represents a missing required field.
type MissingFieldError struct {
	Field string
}

func (err MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", err.Field)
}

// FileNotFound represents when we were unable to access a file
// because the path didn't exist.
type FileNotFound struct {
	Path string
}

func (err FileNotFound) Error() string {
	return fmt.Sprintf("%q does not exist", err.Path)
}

// MalformedRegistry is returned when the permissions file can't be parsed as
// a mapping from group names to lists of users.
type MalformedRegistry struct {
	Path string
	Err  error
}

func (err MalformedRegistry) Error() string {
	return fmt.Sprintf("malformed permissions file %q: %s", err.Path, err.Err)
}

func (err MalformedRegistry) FriendlyMessage() string {
	return fmt.Sprintf("The permissions file %q could not be parsed.\n"+
		"It must map each group name to a list of user names, e.g.\n"+
		"  {\"labA\": [\"alice\", \"bob\"]}\n\n"+
		"For reference, here is the error from the parser:\n%s", err.Path, err.Err)
}

// MissingDescriptor is returned when a project directory doesn't contain the
// descriptor file needed to resolve its owner.
type MissingDescriptor struct {
	Path string
}

func (err MissingDescriptor) Error() string {
	return fmt.Sprintf("no descriptor at %q", err.Path)
}

// InvalidSegment is returned when a name can't be used as a single path
// segment of a destination path.
type InvalidSegment struct {
	Kind    string
	Segment string
}

func (err InvalidSegment) Error() string {
	return fmt.Sprintf("invalid %s path segment %q", err.Kind, err.Segment)
}
