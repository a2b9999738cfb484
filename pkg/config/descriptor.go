package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ghodss/yaml"
	log "github.com/sirupsen/logrus"

	"github.com/wright-cemrc-projects/sync-scripts/pkg/errors"
)

// DescriptorFileName is the name of the file inside a project directory that
// describes the dataset and who owns it.
const DescriptorFileName = "dataset.json"

// Descriptor is the metadata written by the acquisition software alongside a
// project's data.
type Descriptor struct {
	Date                string  `json:"Date"`
	SampleDescription   string  `json:"SampleDescription"`
	PixelSize           float64 `json:"PixelSize"`
	Voltage             float64 `json:"Voltage"`
	SphericalAberration float64 `json:"SphericalAberration"`
	AmplitudeContrast   float64 `json:"AmplitudeContrast"`
	TypeOfSoftware      string  `json:"TypeOfSoftware"`
	User                string  `json:"User"`
	Group               string  `json:"Group"`

	Instrument         string      `json:"Instrument,omitempty"`
	TypeOfCamera       string      `json:"TypeOfCamera,omitempty"`
	ModeOfCamera       string      `json:"ModeOfCamera,omitempty"`
	UsingCDS           string      `json:"UsingCDS,omitempty"`
	LocationProject    string      `json:"LocationProject,omitempty"`
	TiltDirectory      string      `json:"TiltDirectory,omitempty"`
	TiltRange          interface{} `json:"TiltRange,omitempty"`
	TypeOfSession      string      `json:"TypeOfSession,omitempty"`
	RelionMTF          string      `json:"RelionMTF,omitempty"`
	DiscardFirstFrames int         `json:"DiscardFirstFrames,omitempty"`

	AreTomoAlignZ  interface{} `json:"AreTomo_AlignZ,omitempty"`
	AreTomoVolZ    interface{} `json:"AreTomo_VolZ,omitempty"`
	AreTomoTiltCor interface{} `json:"AreTomo_TiltCor,omitempty"`
	AreTomoPatch   interface{} `json:"AreTomo_Patch,omitempty"`

	// Only populated by ParseDescriptor.
	path string
}

// GetPath returns the path the descriptor was parsed from.
func (d Descriptor) GetPath() string {
	return d.path
}

// ParseDescriptor parses the descriptor in the project directory `projectDir`.
// If the project doesn't have a descriptor, a MissingDescriptor error is
// returned.
func ParseDescriptor(projectDir string) (Descriptor, error) {
	descriptorPath := filepath.Join(projectDir, DescriptorFileName)
	contents, err := readFile(descriptorPath)
	if err != nil {
		if _, ok := err.(errors.FileNotFound); ok {
			return Descriptor{}, errors.MissingDescriptor{Path: descriptorPath}
		}
		return Descriptor{}, err
	}

	var d Descriptor
	if err := yaml.Unmarshal(contents, &d); err != nil {
		return Descriptor{}, errors.WithContext(err, fmt.Sprintf("parse %s", descriptorPath))
	}
	d.path = descriptorPath

	if d.User == "" {
		return Descriptor{}, errors.MissingFieldError{Field: "User"}
	}
	if d.Group == "" {
		return Descriptor{}, errors.MissingFieldError{Field: "Group"}
	}
	return d, nil
}

// MTFName returns the name of the RELION MTF file that matches the camera
// the data was collected with, e.g. "k3-CDS-300keV-mtf.star". If the
// descriptor sets RelionMTF explicitly, that value is used instead. An empty
// string is returned for unknown cameras.
func (d Descriptor) MTFName() string {
	if d.RelionMTF != "" {
		return d.RelionMTF
	}

	var name string
	switch d.TypeOfCamera {
	case "Falcon 3EC":
		name = "f3-"
		switch d.ModeOfCamera {
		case "Counting":
			name += "counting-"
		case "Linear":
			name += "linear-"
		}
	case "Gatan K3":
		name = "k3-"
		if d.UsingCDS == "Yes" {
			name += "CDS-"
		}
	default:
		return ""
	}

	if d.Voltage != 0 {
		name += fmt.Sprintf("%gkeV-", d.Voltage)
	}
	return name + "mtf.star"
}

// RelativeTiltDirectory returns TiltDirectory relative to LocationProject.
// Both are Windows paths written by the acquisition PC, so the result is
// converted to forward slashes.
func (d Descriptor) RelativeTiltDirectory() string {
	return relativeWindowsPath(d.LocationProject, d.TiltDirectory)
}

func relativeWindowsPath(base, target string) string {
	if target == "" {
		return ""
	}

	prefix := commonPrefix(base+`\`, target)
	if prefix == "" {
		return target
	}

	return strings.ReplaceAll(strings.TrimPrefix(target, prefix), `\`, "/")
}

func commonPrefix(a, b string) string {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:n]
}

// DescriptorResolver resolves the owner of a project from its descriptor.
type DescriptorResolver struct{}

// ResolveOwnership returns the normalized group and user recorded in the
// project's descriptor.
func (DescriptorResolver) ResolveOwnership(projectDir string) (group, user string, err error) {
	d, err := ParseDescriptor(projectDir)
	if err != nil {
		return "", "", err
	}

	log.WithFields(log.Fields{
		"project":       projectDir,
		"instrument":    d.Instrument,
		"mtf":           d.MTFName(),
		"tiltDirectory": d.RelativeTiltDirectory(),
	}).Debug("Read project descriptor")
	return NormalizeName(d.Group), NormalizeName(d.User), nil
}
