package config

import (
	"testing"

	log "github.com/sirupsen/logrus"
	logrusTest "github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wright-cemrc-projects/sync-scripts/pkg/errors"
)

const exampleDescriptor = `{
  "Date": "2024-02-13",
  "SampleDescription": "apoferritin",
  "PixelSize": 0.83,
  "Voltage": 300,
  "SphericalAberration": 2.7,
  "AmplitudeContrast": 0.1,
  "TypeOfSoftware": "EPU",
  "User": "Alice",
  "Group": "LabA",
  "TypeOfCamera": "Gatan K3",
  "UsingCDS": "Yes",
  "LocationProject": "D:\\Projects\\alice",
  "TiltDirectory": "D:\\Projects\\alice\\tilts\\ts01"
}`

func TestParseDescriptor(t *testing.T) {
	fs = afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/src/proj1/dataset.json", []byte(exampleDescriptor), 0644))

	d, err := ParseDescriptor("/src/proj1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", d.User)
	assert.Equal(t, "LabA", d.Group)
	assert.Equal(t, 0.83, d.PixelSize)
	assert.Equal(t, "/src/proj1/dataset.json", d.GetPath())
	assert.Equal(t, "k3-CDS-300keV-mtf.star", d.MTFName())
	assert.Equal(t, "tilts/ts01", d.RelativeTiltDirectory())

	hook := logrusTest.NewGlobal()
	log.SetLevel(log.DebugLevel)
	defer log.SetLevel(log.InfoLevel)

	group, user, err := DescriptorResolver{}.ResolveOwnership("/src/proj1")
	assert.NoError(t, err)
	assert.Equal(t, "laba", group)
	assert.Equal(t, "alice", user)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "Read project descriptor", entry.Message)
	assert.Equal(t, "k3-CDS-300keV-mtf.star", entry.Data["mtf"])
	assert.Equal(t, "tilts/ts01", entry.Data["tiltDirectory"])
}

func TestParseDescriptorErrors(t *testing.T) {
	fs = afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/src/nouser/dataset.json", []byte(`{"Group": "labA"}`), 0644))
	require.NoError(t, afero.WriteFile(fs, "/src/nogroup/dataset.json", []byte(`{"User": "alice"}`), 0644))
	require.NoError(t, fs.MkdirAll("/src/empty", 0755))

	_, err := ParseDescriptor("/src/empty")
	assert.Equal(t, errors.MissingDescriptor{Path: "/src/empty/dataset.json"}, err)

	_, _, err = DescriptorResolver{}.ResolveOwnership("/src/empty")
	assert.Equal(t, errors.MissingDescriptor{Path: "/src/empty/dataset.json"}, err)

	_, err = ParseDescriptor("/src/nouser")
	assert.Equal(t, errors.MissingFieldError{Field: "User"}, err)

	_, err = ParseDescriptor("/src/nogroup")
	assert.Equal(t, errors.MissingFieldError{Field: "Group"}, err)
}

func TestMTFName(t *testing.T) {
	tests := []struct {
		name string
		d    Descriptor
		exp  string
	}{
		{
			name: "Explicit",
			d:    Descriptor{RelionMTF: "custom.star", TypeOfCamera: "Gatan K3"},
			exp:  "custom.star",
		},
		{
			name: "FalconCounting",
			d:    Descriptor{TypeOfCamera: "Falcon 3EC", ModeOfCamera: "Counting", Voltage: 200},
			exp:  "f3-counting-200keV-mtf.star",
		},
		{
			name: "FalconLinear",
			d:    Descriptor{TypeOfCamera: "Falcon 3EC", ModeOfCamera: "Linear", Voltage: 300},
			exp:  "f3-linear-300keV-mtf.star",
		},
		{
			name: "K3WithoutCDS",
			d:    Descriptor{TypeOfCamera: "Gatan K3", Voltage: 300},
			exp:  "k3-300keV-mtf.star",
		},
		{
			name: "UnknownCamera",
			d:    Descriptor{TypeOfCamera: "Ceta", Voltage: 120},
			exp:  "",
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.exp, test.d.MTFName())
		})
	}
}

func TestRelativeWindowsPath(t *testing.T) {
	assert.Equal(t, "", relativeWindowsPath(`D:\a`, ""))
	assert.Equal(t, "b/c", relativeWindowsPath(`D:\a`, `D:\a\b\c`))
	assert.Equal(t, `E:\x`, relativeWindowsPath(`D:\a`, `E:\x`))
}
