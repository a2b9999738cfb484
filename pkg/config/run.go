package config

import (
	"path/filepath"

	"github.com/ghodss/yaml"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"

	"github.com/wright-cemrc-projects/sync-scripts/pkg/errors"
)

const (
	// RunConfigPath is the default path to the config used by `cemrc-sync ceph`.
	RunConfigPath = "~/.cemrc-sync.yaml"

	// InitialRunConfigVersion is the version assumed for config files that
	// don't specify one.
	InitialRunConfigVersion = "v1alpha1"

	// SupportedRunConfigVersion is the config version understood by this
	// binary.
	SupportedRunConfigVersion = "v1alpha1"

	// DefaultStaleWeeks is how long a project directory may go unmodified
	// before it's no longer synced.
	DefaultStaleWeeks = 3

	// DefaultChmod is the permission policy applied to entries copied into
	// the Ceph tree.
	DefaultChmod = "Du=rwx,Dg=rx,Do=rx,Fu=rw,Fg=r,Fo=r"
)

// Run configures a scheduled sync of the instrument mirrors into the Ceph
// tree.
type Run struct {
	Version string `json:"version,omitempty"`

	// MirrorPrefix is prepended to each source name to get the path of its
	// mirror share, e.g. "/mnt/buffer/mirror-" and "krios-k3".
	MirrorPrefix string   `json:"mirrorPrefix"`
	Sources      []string `json:"sources"`

	Destination string `json:"destination"`
	Permissions string `json:"permissions"`

	// UserSuffix is appended to user directory names in the destination,
	// e.g. "@ad.wisc.edu".
	UserSuffix string `json:"userSuffix,omitempty"`

	// StaleWeeks overrides DefaultStaleWeeks. Zero disables the check.
	StaleWeeks *int `json:"staleWeeks,omitempty"`

	Workers int `json:"workers,omitempty"`

	Rsync RsyncOptions `json:"rsync,omitempty"`
	Staff StaffOptions `json:"staff,omitempty"`
}

// RsyncOptions configures how rsync is invoked.
type RsyncOptions struct {
	Chmod             string `json:"chmod,omitempty"`
	Inplace           bool   `json:"inplace,omitempty"`
	PreserveOwnership bool   `json:"preserveOwnership,omitempty"`
}

// StaffOptions configures the processing folder created for facility staff
// in every new project destination. No folder is created if Folder is empty.
type StaffOptions struct {
	Folder string `json:"folder,omitempty"`
	Group  string `json:"group,omitempty"`
}

func (r Run) getVersion() string {
	return r.Version
}

// GetStaleWeeks returns the staleness threshold in weeks.
func (r Run) GetStaleWeeks() int {
	if r.StaleWeeks == nil {
		return DefaultStaleWeeks
	}
	return *r.StaleWeeks
}

// SourcePaths returns the path of each mirror share keyed by source name.
func (r Run) SourcePaths() map[string]string {
	paths := map[string]string{}
	for _, source := range r.Sources {
		paths[source] = r.MirrorPrefix + source
	}
	return paths
}

// homedirExpand will be overridden in mock tests
var homedirExpand = homedir.Expand

// ParseRun parses the run config at `path`. Paths inside the config may use
// `~`, and relative paths are evaluated relative to the config file.
func ParseRun(path string) (Run, error) {
	path, err := homedirExpand(path)
	if err != nil {
		return Run{}, errors.WithContext(err, "expand config path")
	}

	config := Run{Version: InitialRunConfigVersion}
	if err := parseVersioned(path, &config, SupportedRunConfigVersion); err != nil {
		if _, ok := err.(errors.FileNotFound); ok {
			return Run{}, errors.NewFriendlyError("The cemrc-sync config "+
				"file doesn't exist at %q. Pass --config to point at an "+
				"existing config.", path)
		}
		return Run{}, errors.WithContext(err, "parse")
	}

	for _, field := range []struct {
		name  string
		value *string
	}{
		{"destination", &config.Destination},
		{"permissions", &config.Permissions},
	} {
		if *field.value == "" {
			return Run{}, errors.MissingFieldError{Field: field.name}
		}

		expanded, err := ExpandPath(*field.value, filepath.Dir(path))
		if err != nil {
			return Run{}, errors.WithContext(err, "expand "+field.name)
		}
		*field.value = expanded
	}

	if len(config.Sources) == 0 {
		return Run{}, errors.MissingFieldError{Field: "sources"}
	}
	if config.Staff.Folder != "" && config.Staff.Group == "" {
		return Run{}, errors.MissingFieldError{Field: "staff.group"}
	}
	if config.Rsync.Chmod == "" {
		config.Rsync.Chmod = DefaultChmod
	}
	return config, nil
}

// WriteRun writes the given run config to `path`.
func WriteRun(path string, cfg Run) error {
	cfg.Version = SupportedRunConfigVersion
	path, err := homedirExpand(path)
	if err != nil {
		return errors.WithContext(err, "expand config path")
	}

	yamlBytes, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.WithContext(err, "marshal")
	}

	if err := afero.WriteFile(fs, path, yamlBytes, 0644); err != nil {
		return errors.WithContext(err, "write")
	}
	return nil
}

// ExpandPath expands `~` in `path`, and makes relative paths absolute by
// evaluating them relative to `relativeTo`.
func ExpandPath(path, relativeTo string) (string, error) {
	expanded, err := homedirExpand(path)
	if err != nil {
		return "", err
	}

	if !filepath.IsAbs(expanded) {
		expanded = filepath.Join(relativeTo, expanded)
	}
	return filepath.Clean(expanded), nil
}
