// Package rsync copies project directories by shelling out to rsync.
package rsync

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/wright-cemrc-projects/sync-scripts/pkg/errors"
)

// DefaultBinary is the rsync executable used when Options.Binary is empty.
const DefaultBinary = "rsync"

// Mocked for unit testing.
var runCommand = (*exec.Cmd).Run

// Options configures the rsync invocation.
type Options struct {
	// Binary is the rsync executable. Defaults to DefaultBinary.
	Binary string

	// Chmod is passed to rsync's --chmod flag when set.
	Chmod string

	// Inplace updates destination files in place rather than writing a
	// temporary file and renaming it.
	Inplace bool

	// PreserveOwnership keeps the owner and group of the source files.
	// Otherwise, the copied files are owned by the user running the sync.
	PreserveOwnership bool

	// DryRun logs the command that would be run instead of running it.
	DryRun bool

	Log *logrus.Logger
}

// Copier runs rsync to make a one-way, additive copy of a directory.
type Copier struct {
	Options
}

// New returns a Copier configured with `opts`.
func New(opts Options) *Copier {
	if opts.Binary == "" {
		opts.Binary = DefaultBinary
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	return &Copier{opts}
}

// Args returns the arguments rsync is invoked with to copy `sourceDir` to
// `destDir`. Both directories get a trailing slash so that the contents of
// the source are copied into the destination, rather than the source
// directory itself. Files are never deleted from the destination.
func (c *Copier) Args(sourceDir, destDir string) []string {
	args := []string{"-aui"}
	if c.Inplace {
		args = append(args, "--inplace")
	}
	if c.Chmod != "" {
		args = append(args, "--chmod="+c.Chmod)
	}
	if !c.PreserveOwnership {
		args = append(args, "--no-owner", "--no-group")
	}
	return append(args, withTrailingSlash(sourceDir), withTrailingSlash(destDir))
}

// Copy syncs `sourceDir` into `destDir`, and returns the number of entries
// rsync itemized as changed. The rsync process is killed if `ctx` is
// cancelled.
func (c *Copier) Copy(ctx context.Context, sourceDir, destDir string) (int, error) {
	args := c.Args(sourceDir, destDir)
	if c.DryRun {
		c.Log.WithField("command", strings.Join(append([]string{c.Binary}, args...), " ")).
			Info("Dry run. Skipping copy.")
		return 0, nil
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := runCommand(cmd); err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}

		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return 0, errors.WithContext(err, fmt.Sprintf("rsync (%s)", truncate(msg, 512)))
		}
		return 0, errors.WithContext(err, "rsync")
	}

	return countChanges(stdout.String()), nil
}

// countChanges counts the entries in rsync's itemized output. Each changed
// entry is printed on its own line.
func countChanges(output string) (n int) {
	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}

func withTrailingSlash(dir string) string {
	if strings.HasSuffix(dir, "/") {
		return dir
	}
	return dir + "/"
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length] + fmt.Sprintf("... (%d more bytes)", len(s)-length)
}
