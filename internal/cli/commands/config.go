package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/csvtranspose/internal/cli/config"
)

const configFileHeader = `# csvtranspose configuration
#
# Every key can also be set with an environment variable, e.g.
# CSVTRANSPOSE_DELIMITER=';' or CSVTRANSPOSE_HISTORY__ENABLED=true,
# and with the matching command line flag.

`

// NewConfigCommand creates the config command and its subcommands.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or inspect the configuration file",
	}

	cmd.AddCommand(newConfigInitCommand())
	cmd.AddCommand(newConfigShowCommand())

	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default " + config.DefaultConfigFile,
		Long: `Write a configuration file with every setting at its default value to the
current directory. An existing file is left alone unless --force is given.`,
		Example: `  csvtranspose config init
  csvtranspose config init --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInit(cmd, config.DefaultConfigFile, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration file")

	return cmd
}

func runConfigInit(cmd *cobra.Command, path string, force bool) error {
	r := NewCommandContextWithoutEngine(cmd).Renderer

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to check %s: %w", path, err)
	}

	data, err := yaml.Marshal(config.DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, append([]byte(configFileHeader), data...), 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	r.Success("Created " + path)
	return nil
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: `Print the configuration after defaults, the config file, environment
variables and flags have been applied, as YAML.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd)
		},
	}
}

func runConfigShow(cmd *cobra.Command) error {
	cmdCtx := NewCommandContextWithoutEngine(cmd)

	data, err := yaml.Marshal(cmdCtx.Cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if file := config.GetConfigFileUsed(); file != "" {
		cmdCtx.Renderer.Printf("# from %s\n", file)
	}
	cmdCtx.Renderer.Printf("%s", data)
	return nil
}
