package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wright-cemrc-projects/sync-scripts/cmd/util"
	"github.com/wright-cemrc-projects/sync-scripts/pkg/config"
	"github.com/wright-cemrc-projects/sync-scripts/pkg/errors"
)

// Mocked for unit testing.
var (
	stdout         io.Writer = os.Stdout
	stdin          io.Reader = os.Stdin
	parseRunConfig           = config.ParseRun
	writeRunConfig           = config.WriteRun
)

// The defaults match the facility's mounts.
var defaults = config.Run{
	MirrorPrefix: "/mnt/buffer/mirror-",
	Sources: []string{"krios-k3", "krios-f3", "krios-f4", "arctica-k3",
		"arctica-f3", "aquilos", "aquilos2", "l120c", "l120c-cetaf"},
	Destination: "/mnt/cryofs_cemrc/incoming",
	Permissions: "/mnt/cryofs_cemrc/users.json",
	UserSuffix:  "@ad.wisc.edu",
	Staff: config.StaffOptions{
		Folder: "staff_proc",
		Group:  "CEMRC-facility@ad.wisc.edu",
	},
}

type cliOptions struct {
	path         string
	mirrorPrefix string
	sources      string
	destination  string
	permissions  string
	userSuffix   string
}

// New creates a new `config` command.
func New() *cobra.Command {
	var cliOpts cliOptions
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Setup the config used by `cemrc-sync ceph`",
		Run: func(_ *cobra.Command, _ []string) {
			if err := SetupConfig(cliOpts); err != nil {
				err = errors.NewFriendlyError("Failed to setup configuration:\n%s", err)
				util.HandleFatalError(err)
			}
		},
	}
	cmd.PersistentFlags().StringVar(&cliOpts.path, "config", config.RunConfigPath,
		"path to the cemrc-sync config file")
	cmd.Flags().StringVar(&cliOpts.mirrorPrefix, "mirror-prefix", "",
		"Set the prefix of the mirror shares. "+
			"Optional: If not set, `cemrc-sync config` will interactively prompt.")
	cmd.Flags().StringVar(&cliOpts.sources, "sources", "",
		"Set the comma-separated names of the mirrors to sync. "+
			"Optional: If not set, `cemrc-sync config` will interactively prompt.")
	cmd.Flags().StringVar(&cliOpts.destination, "destination", "",
		"Set the root of the Ceph tree. "+
			"Optional: If not set, `cemrc-sync config` will interactively prompt.")
	cmd.Flags().StringVar(&cliOpts.permissions, "permissions", "",
		"Set the path to the permissions file. "+
			"Optional: If not set, `cemrc-sync config` will interactively prompt.")
	cmd.Flags().StringVar(&cliOpts.userSuffix, "user-suffix", "",
		"Set the suffix appended to user directories. "+
			"Optional: If not set, `cemrc-sync config` will interactively prompt.")

	// Setup the commands for querying the contents of the config.
	type getterSpec struct {
		use, short string
		fn         func(config.Run) string
	}

	getters := []getterSpec{
		{
			use:   "get-destination",
			short: "Get the configured root of the Ceph tree",
			fn:    func(cfg config.Run) string { return cfg.Destination },
		},
		{
			use:   "get-permissions",
			short: "Get the configured path to the permissions file",
			fn:    func(cfg config.Run) string { return cfg.Permissions },
		},
		{
			use:   "get-sources",
			short: "Get the configured mirror shares, one per line",
			fn: func(cfg config.Run) string {
				var paths []string
				for _, source := range cfg.Sources {
					paths = append(paths, cfg.SourcePaths()[source])
				}
				return strings.Join(paths, "\n")
			},
		},
	}
	for _, getter := range getters {
		getter := getter
		cmd.AddCommand(&cobra.Command{
			Use:   getter.use,
			Short: getter.short,
			Run: func(_ *cobra.Command, _ []string) {
				cfg, err := parseRunConfig(cliOpts.path)
				if err != nil {
					err = errors.WithContext(err, "read config")
					util.HandleFatalError(err)
				}

				fmt.Fprintln(stdout, getter.fn(cfg))
			},
		})
	}

	return cmd
}

// SetupConfig generates a config, and writes it to the path in `cliOpts`.
func SetupConfig(cliOpts cliOptions) error {
	cfg, err := generateConfig(cliOpts)
	if err != nil {
		return errors.WithContext(err, "generate config")
	}

	if err := writeRunConfig(cliOpts.path, cfg); err != nil {
		return errors.WithContext(err, "write config")
	}

	fmt.Fprintf(stdout, "Wrote config to %s\n", cliOpts.path)
	return nil
}

func absolutePathValidationFn(path string) (string, bool) {
	if !filepath.IsAbs(path) && !strings.HasPrefix(path, "~") {
		return "The path must be absolute. Please enter another path.", false
	}
	return "", true
}

func sourcesValidationFn(sources string) (string, bool) {
	names := splitSources(sources)
	if len(names) == 0 {
		return "At least one mirror is required.", false
	}

	for _, name := range names {
		if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
			return fmt.Sprintf("The mirror name %q isn't valid. "+
				"Mirror names are appended to the mirror prefix, "+
				"and can't contain path separators.", name), false
		}
	}
	return "", true
}

func userSuffixValidationFn(suffix string) (string, bool) {
	if strings.ContainsAny(suffix, `/\`) {
		return "The user suffix can't contain path separators.", false
	}
	return "", true
}

func splitSources(sources string) (names []string) {
	for _, name := range strings.Split(sources, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

type prompt struct {
	helpString, prompt, defaultAnswer, currAnswer string
	field                                         *string
	validationFn                                  func(string) (string, bool)
}

// generateConfig interacts with the user to decide what the desired
// configuration is.
// It suggests the facility defaults, and allows users to explicitly override
// them if desired.
func generateConfig(cliOpts cliOptions) (config.Run, error) {
	currConfig, err := parseRunConfig(cliOpts.path)
	if err != nil {
		currConfig = config.Run{}
		log.WithError(err).Debug("Failed to read current config")
	}

	opts := cliOpts
	var prompts []prompt
	if cliOpts.mirrorPrefix == "" {
		prompts = append(prompts, prompt{
			helpString: "Enter the prefix of the instrument mirror shares.\n" +
				"The name of each mirror is appended to it to get the path of the share.",
			prompt:        "Mirror prefix",
			defaultAnswer: defaults.MirrorPrefix,
			currAnswer:    currConfig.MirrorPrefix,
			field:         &opts.mirrorPrefix,
			validationFn:  absolutePathValidationFn,
		})
	}

	if cliOpts.sources == "" {
		prompts = append(prompts, prompt{
			helpString: "Enter the comma-separated names of the mirrors to sync.\n" +
				"Mirrors that aren't mounted are skipped.",
			prompt:        "Mirrors",
			defaultAnswer: strings.Join(defaults.Sources, ","),
			currAnswer:    strings.Join(currConfig.Sources, ","),
			field:         &opts.sources,
			validationFn:  sourcesValidationFn,
		})
	}

	if cliOpts.destination == "" {
		prompts = append(prompts, prompt{
			helpString:    "Enter the root of the Ceph tree that projects are copied into.",
			prompt:        "Destination",
			defaultAnswer: defaults.Destination,
			currAnswer:    currConfig.Destination,
			field:         &opts.destination,
			validationFn:  absolutePathValidationFn,
		})
	}

	if cliOpts.permissions == "" {
		prompts = append(prompts, prompt{
			helpString: "Enter the path to the permissions file.\n" +
				"It maps each group to the users that may sync data.",
			prompt:        "Permissions file",
			defaultAnswer: defaults.Permissions,
			currAnswer:    currConfig.Permissions,
			field:         &opts.permissions,
			validationFn:  absolutePathValidationFn,
		})
	}

	if cliOpts.userSuffix == "" {
		prompts = append(prompts, prompt{
			helpString:    "Enter the suffix appended to user directories in the Ceph tree.",
			prompt:        "User suffix",
			defaultAnswer: defaults.UserSuffix,
			currAnswer:    currConfig.UserSuffix,
			field:         &opts.userSuffix,
			validationFn:  userSuffixValidationFn,
		})
	}

	for _, prompt := range prompts {
		var resp string
		for {
			resp, err = promptUser(prompt.helpString, prompt.prompt,
				prompt.defaultAnswer, prompt.currAnswer)
			if err != nil {
				return config.Run{}, errors.WithContext(err, "read response")
			}

			if prompt.validationFn == nil {
				break
			}

			validationErr, ok := prompt.validationFn(resp)
			if ok {
				break
			}

			fmt.Fprintln(stdout, validationErr)
		}

		*prompt.field = resp
	}

	cfg := currConfig
	cfg.MirrorPrefix = opts.mirrorPrefix
	cfg.Sources = splitSources(opts.sources)
	cfg.Destination = opts.destination
	cfg.Permissions = opts.permissions
	cfg.UserSuffix = opts.userSuffix
	if cfg.Staff == (config.StaffOptions{}) {
		cfg.Staff = defaults.Staff
	}
	return cfg, nil
}

func promptUser(helpString, prompt, defaultAnswer, currAnswer string) (string, error) {
	// Display a new line at the end to separate different fields to make it
	// look clearer.
	defer fmt.Fprintln(stdout)

	options := []string{}
	if defaultAnswer != "" {
		options = append(options, defaultAnswer)
	}
	if currAnswer != "" && currAnswer != defaultAnswer {
		options = append(options, currAnswer)
	}
	options = append(options, "(Enter manually)")

	fmt.Fprintln(stdout, helpString+"\n"+prompt+":")

	stdinReader := bufio.NewReader(stdin)

	if nOptions := len(options); nOptions > 1 {
		// defaultAnswer or currAnswer exists.
		fmt.Fprintln(stdout)
		for i, option := range options {
			if i == 0 {
				option = fmt.Sprintf("%s (recommended)", option)
			}
			fmt.Fprintf(stdout, "\t%d. %s\n", i+1, option)
		}
		fmt.Fprintln(stdout)

		for {
			fmt.Fprintf(stdout, "Please choose one [1-%d]: ", nOptions)
			choiceStr, err := stdinReader.ReadString('\n')
			if err != nil {
				return "", err
			}

			var choice int
			choiceStr = strings.TrimRight(choiceStr, "\n")

			// Default to the first choice if user doesn't enter anything.
			if choiceStr == "" {
				choice = 1
			} else {
				choice, err = strconv.Atoi(choiceStr)
				if err != nil || choice < 1 || choice > nOptions {
					// Try again if the input is invalid.
					continue
				}
			}

			if choice == nOptions {
				// Enter manually.
				break
			}

			return options[choice-1], nil
		}
	}

	fmt.Fprint(stdout, "Please enter manually: ")
	resp, err := stdinReader.ReadString('\n')
	if err != nil {
		return "", err
	}

	return strings.TrimRight(resp, "\n"), nil
}
