package config

import (
	"fmt"
	"os"

	"github.com/ghodss/yaml"
	"github.com/spf13/afero"

	"github.com/wright-cemrc-projects/sync-scripts/pkg/errors"
)

// Every file this package reads (the run config, the permissions file and
// project descriptors) is YAML or JSON, and is decoded with ghodss/yaml so
// that both formats work everywhere.

const badConfigTemplate = "The cemrc-sync config %q could not be parsed.\n" +
	"Check that every field has the right type, and that there are no " +
	"fields that cemrc-sync doesn't know about.\n\n" +
	"Parser error: %s"

// versioned is implemented by config files that record the schema they were
// written for.
type versioned interface {
	getVersion() string
}

type incompatibleVersionError struct {
	path, exp, actual string
}

func (err incompatibleVersionError) Error() string {
	return err.FriendlyMessage()
}

func (err incompatibleVersionError) FriendlyMessage() string {
	return fmt.Sprintf("The config %q was written for a different release "+
		"of cemrc-sync (version %q, expected %q).\n"+
		"Run `cemrc-sync config` to regenerate it.", err.path, err.actual, err.exp)
}

// parseVersioned decodes the config at `path` into `out`. The version is
// checked before unknown fields are rejected, so a config from another
// release reports the version mismatch rather than its first new field.
func parseVersioned(path string, out versioned, expVersion string) error {
	contents, err := readFile(path)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(contents, out); err != nil {
		return errors.NewFriendlyError(badConfigTemplate, path, err)
	}

	if actual := out.getVersion(); actual != expVersion {
		return incompatibleVersionError{path, expVersion, actual}
	}

	if err := yaml.UnmarshalStrict(contents, out, yaml.DisallowUnknownFields); err != nil {
		return errors.NewFriendlyError(badConfigTemplate, path, err)
	}
	return nil
}

// readFile reads `path` from the configured filesystem. A missing file is
// reported as errors.FileNotFound so that callers can substitute their own
// error, e.g. MissingDescriptor.
func readFile(path string) ([]byte, error) {
	contents, err := afero.ReadFile(fs, path)
	switch {
	case err == nil:
		return contents, nil
	case os.IsNotExist(err):
		return nil, errors.FileNotFound{Path: path}
	default:
		return nil, errors.WithContext(err, "read "+path)
	}
}
