package commands

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/thoreinstein/claudesync/internal/config"
	"github.com/thoreinstein/claudesync/internal/editor"
	"github.com/thoreinstein/claudesync/internal/errors"
	"github.com/thoreinstein/claudesync/internal/paths"
	"github.com/thoreinstein/claudesync/pkg/fileutil"
)

var (
	configInitForce bool
	configShowFmt   string
)

func init() {
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false,
		"overwrite an existing config file")
	configShowCmd.Flags().StringVar(&configShowFmt, "format", string(fileutil.FormatYAML),
		"output format: "+formatList())

	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage claudesync configuration",
	Long: `Manage claudesync configuration stored in
$XDG_CONFIG_HOME/claudesync/config.yaml.

Every key can also be set through the environment with the CLAUDESYNC_
prefix, e.g. CLAUDESYNC_SOURCE_ROOT.

Without a subcommand, lists all configuration values.`,
	Example: `  # List all configuration
  claudesync config

  # Point claudesync at a bundle checkout
  claudesync config set source_root ~/src/claude-bundle

See Also: claudesync doctor`,
	Args: cobra.NoArgs,
	RunE: runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long: `Get a single configuration value by key.

Array values are printed one per line. Unset keys print "not set".`,
	Example: `  # Get the duplicate-name policy
  claudesync config get on_duplicate

  # Get the recognized extensions
  claudesync config get extensions

See Also: claudesync config set, claudesync config list`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value and write the config file.

For extensions, use comma-separated values. The value is validated
before anything is written.`,
	Example: `  # Let later duplicate skills replace earlier ones
  claudesync config set on_duplicate overwrite

  # Link text files as well as Markdown
  claudesync config set extensions .md,.txt

See Also: claudesync config get, claudesync config list`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration",
	Long:  `List all effective configuration values in YAML format.`,
	Example: `  # List all configuration
  claudesync config list

See Also: claudesync config get, claudesync config set`,
	Args: cobra.NoArgs,
	RunE: runConfigList,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with default values",
	Long: `Write a config file holding the default values. The --source and
--config-root flags, when given, are recorded as source_root and
config_root.

The file is written to --config, or to the default location.`,
	Example: `  # Create the default config file
  claudesync config init

  # Record the bundle location
  claudesync config init --source ~/src/claude-bundle --force`,
	Args:        cobra.NoArgs,
	Annotations: skipConfigCheck(),
	RunE:        runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long:  `Print the effective configuration, including environment overrides, as YAML, TOML or JSON.`,
	Example: `  # Show as TOML
  claudesync config show --format toml`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:         "path",
	Short:       "Print the config file location",
	Args:        cobra.NoArgs,
	Annotations: skipConfigCheck(),
	RunE: func(cmd *cobra.Command, _ []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), config.FileUsed())
		return nil
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open configuration in $EDITOR",
	Long: `Open the configuration file in your default editor, then validate it.

Uses $EDITOR, then $VISUAL, then nano or vi.
If no configuration file exists, run 'claudesync config init' first.`,
	Example: `  # Open config in default editor
  claudesync config edit

  # Open with specific editor
  EDITOR=nano claudesync config edit

See Also: claudesync config list, claudesync config init`,
	Args:        cobra.NoArgs,
	Annotations: skipConfigCheck(),
	RunE:        runConfigEdit,
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	key := args[0]
	w := cmd.OutOrStdout()

	if !isConfigKey(key) {
		return unknownKeyError(key)
	}

	// Check if value exists
	if !viper.IsSet(key) {
		fmt.Fprintln(w, "not set")
		return nil
	}

	if key == config.KeyExtensions {
		// String slice - print one per line
		for _, item := range viper.GetStringSlice(key) {
			fmt.Fprintln(w, item)
		}
		return nil
	}

	value := viper.GetString(key)
	if value == "" {
		value = "not set"
	}
	fmt.Fprintln(w, value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	if err := config.Set(key, value); err != nil {
		if errors.Is(err, config.ErrUnknownKey) {
			return unknownKeyError(key)
		}
		return errors.NewUserError(err, "Run: claudesync config set --help")
	}

	path := config.FileUsed()
	if err := config.Save(path); err != nil {
		return errors.NewSystemError(err, "Check that "+path+" is writable")
	}

	display := value
	if key == config.KeyExtensions {
		display = strings.Join(config.SplitList(value), ", ")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, display)
	return nil
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	return writeConfig(cmd, fileutil.FormatYAML)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	format, err := fileutil.ParseFormat(configShowFmt)
	if err != nil {
		return errors.NewUserError(err, "Use --format "+formatList())
	}
	return writeConfig(cmd, format)
}

// writeConfig prints the effective configuration in format.
func writeConfig(cmd *cobra.Command, format fileutil.Format) error {
	data, err := fileutil.Marshal(format, config.Current())
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}
	_, err = cmd.OutOrStdout().Write(data)
	return errors.Wrap(err, "writing config")
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	path := configFile
	if path == "" {
		path = paths.ConfigFile()
	}

	if _, err := os.Stat(path); err == nil && !configInitForce {
		return errors.NewUserError(
			errors.Newf("config file already exists at %s", path),
			"Use --force to overwrite it")
	}

	cfg := config.Default()
	cfg.SourceRoot = sourceFlag
	cfg.ConfigRoot = configRootFlag
	if errs := config.Validate(cfg); len(errs) > 0 {
		return errors.NewUserError(&config.ValidationError{Errs: errs}, "")
	}

	if err := fileutil.AtomicWrite(path, fileutil.FormatFromPath(path), cfg); err != nil {
		return errors.NewSystemError(errors.Wrap(err, "writing config file"), "Check that the config directory is writable")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

func runConfigEdit(cmd *cobra.Command, _ []string) error {
	path := config.FileUsed()

	// Check if config file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return errors.NewUserError(
			errors.Newf("config file not found at %s", path),
			"Run: claudesync config init")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Location: %s\n", path)

	streams := editor.Streams{In: cmd.InOrStdin(), Out: cmd.OutOrStdout(), Err: cmd.ErrOrStderr()}
	if err := editor.Open(cmd.Context(), path, streams); err != nil {
		return errors.NewUserError(err, "Set $EDITOR to your preferred editor")
	}

	// Re-read so mistakes surface now rather than on the next sync.
	config.Init()
	if _, err := config.Load(path); err != nil {
		return errors.NewConfigError(err)
	}
	return nil
}

func formatList() string {
	names := make([]string, 0, len(fileutil.Formats()))
	for _, f := range fileutil.Formats() {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}

func isConfigKey(key string) bool {
	return slices.Contains(config.Keys(), key)
}

func unknownKeyError(key string) error {
	err := errors.Wrapf(config.ErrUnknownKey, "%s", key)
	return errors.NewUserError(err, "Valid keys: "+strings.Join(config.Keys(), ", "))
}
