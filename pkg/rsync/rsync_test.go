package rsync

import (
	"context"
	"fmt"
	"os/exec"
	"testing"

	logrusTest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"

	"github.com/wright-cemrc-projects/sync-scripts/pkg/errors"
)

func TestArgs(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		src     string
		dst     string
		expArgs []string
	}{
		{
			name:    "Default",
			src:     "/src/labA/alice/proj1",
			dst:     "/dst/laba/alice/proj1",
			expArgs: []string{"-aui", "--no-owner", "--no-group", "/src/labA/alice/proj1/", "/dst/laba/alice/proj1/"},
		},
		{
			name:    "Project",
			opts:    Options{Inplace: true, PreserveOwnership: true},
			src:     "/src/proj1/",
			dst:     "/dst/laba/alice/proj1",
			expArgs: []string{"-aui", "--inplace", "/src/proj1/", "/dst/laba/alice/proj1/"},
		},
		{
			name: "Ceph",
			opts: Options{Chmod: "Du=rwx,Dg=rx,Do=rx,Fu=rw,Fg=r,Fo=r"},
			src:  "/mnt/mirror-krios-k3/laba/alice/proj1",
			dst:  "/mnt/cryofs/laba/alice@ad.wisc.edu/krios-k3/proj1",
			expArgs: []string{"-aui", "--chmod=Du=rwx,Dg=rx,Do=rx,Fu=rw,Fg=r,Fo=r", "--no-owner", "--no-group",
				"/mnt/mirror-krios-k3/laba/alice/proj1/", "/mnt/cryofs/laba/alice@ad.wisc.edu/krios-k3/proj1/"},
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expArgs, New(test.opts).Args(test.src, test.dst))
		})
	}
}

func TestCopy(t *testing.T) {
	var ranArgs []string
	runCommand = func(cmd *exec.Cmd) error {
		ranArgs = cmd.Args
		fmt.Fprint(cmd.Stdout, "cd+++++++++ ./\n>f+++++++++ movie1.tiff\n\n>f+++++++++ movie2.tiff\n")
		return nil
	}

	changed, err := New(Options{Inplace: true}).Copy(context.Background(), "/src/proj1", "/dst/proj1")
	assert.NoError(t, err)
	assert.Equal(t, 3, changed)
	assert.Equal(t, []string{"rsync", "-aui", "--inplace", "--no-owner", "--no-group",
		"/src/proj1/", "/dst/proj1/"}, ranArgs)
}

func TestCopyAlreadySynced(t *testing.T) {
	runCommand = func(cmd *exec.Cmd) error {
		return nil
	}

	changed, err := New(Options{}).Copy(context.Background(), "/src/proj1", "/dst/proj1")
	assert.NoError(t, err)
	assert.Equal(t, 0, changed)
}

func TestCopyFailure(t *testing.T) {
	runCommand = func(cmd *exec.Cmd) error {
		fmt.Fprint(cmd.Stdout, ">f+++++++++ movie1.tiff\n")
		fmt.Fprint(cmd.Stderr, "rsync: mkdir \"/dst/proj1\" failed: Permission denied (13)\n")
		return assert.AnError
	}

	changed, err := New(Options{}).Copy(context.Background(), "/src/proj1", "/dst/proj1")
	assert.Equal(t, 0, changed)
	assert.Equal(t, assert.AnError, errors.RootCause(err))
	assert.Contains(t, err.Error(), "Permission denied")
}

func TestCopyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	runCommand = func(cmd *exec.Cmd) error {
		cancel()
		return assert.AnError
	}

	_, err := New(Options{}).Copy(ctx, "/src/proj1", "/dst/proj1")
	assert.Equal(t, context.Canceled, err)
}

func TestCopyDryRun(t *testing.T) {
	runCommand = func(cmd *exec.Cmd) error {
		t.Fatal("rsync shouldn't run during a dry run")
		return nil
	}

	logger, hook := logrusTest.NewNullLogger()
	copier := New(Options{Binary: "/usr/bin/rsync", DryRun: true, Log: logger})
	changed, err := copier.Copy(context.Background(), "/src/proj1", "/dst/proj1")
	assert.NoError(t, err)
	assert.Equal(t, 0, changed)

	entry := hook.LastEntry()
	if assert.NotNil(t, entry) {
		assert.Equal(t, "/usr/bin/rsync -aui --no-owner --no-group /src/proj1/ /dst/proj1/",
			entry.Data["command"])
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abc... (3 more bytes)", truncate("abcdef", 3))
}
