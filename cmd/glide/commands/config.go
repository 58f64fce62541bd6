package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/glide-client/internal/constants"
)

// Config represents the CLI configuration file.
type Config struct {
	Instance string `json:"instance,omitempty" yaml:"instance,omitempty"`
	User     string `json:"user,omitempty"     yaml:"user,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	Token    string `json:"token,omitempty"    yaml:"token,omitempty"`
	Output   string `json:"output,omitempty"   yaml:"output,omitempty"`
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show and edit the instance, credentials and defaults stored in the CLI config file",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	var showSecrets bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective configuration from flags, config file and environment",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			if !showSecrets {
				config = config.masked()
			}

			switch viper.GetString("output") {
			case constants.FormatJSON:
				return encodeJSON(cmd.OutOrStdout(), config)
			case constants.FormatYAML:
				return yaml.NewEncoder(cmd.OutOrStdout()).Encode(config)
			default:
				return displayConfigTable(cmd, config)
			}
		},
	}

	cmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "print the password and token in clear text")

	return cmd
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set instance, user, password, token or output in the config file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadFileConfig()

			err := config.set(args[0], args[1])
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", args[0])

			return nil
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Remove instance, user, password, token or output from the config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadFileConfig()

			err := config.set(args[0], "")
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", args[0])

			return nil
		},
	}
}

// loadConfig returns the effective configuration.
func loadConfig() *Config {
	return &Config{
		Instance: viper.GetString(constants.ConfigKeyInstance),
		User:     viper.GetString(constants.ConfigKeyUser),
		Password: viper.GetString(constants.ConfigKeyPassword),
		Token:    viper.GetString(constants.ConfigKeyToken),
		Output:   viper.GetString("output"),
	}
}

// loadFileConfig returns the configuration stored in the config file only, so
// that flags and environment values are not persisted.
func loadFileConfig() *Config {
	config := &Config{}

	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		return config
	}

	// #nosec G304 -- the config path comes from --config or the home directory
	data, err := os.ReadFile(configFile)
	if err != nil {
		return config
	}

	_ = yaml.Unmarshal(data, config)

	return config
}

func (c *Config) set(key, value string) error {
	switch key {
	case constants.ConfigKeyInstance:
		c.Instance = value
	case constants.ConfigKeyUser:
		c.User = value
	case constants.ConfigKeyPassword:
		c.Password = value
	case constants.ConfigKeyToken:
		c.Token = value
	case "output":
		c.Output = value
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	return nil
}

func (c *Config) masked() *Config {
	out := *c
	if out.Password != "" {
		out.Password = constants.MaskedSecret
	}

	if out.Token != "" {
		out.Token = constants.MaskedSecret
	}

	return &out
}

func saveConfigStruct(config *Config) error {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		configDir, err := defaultConfigDir()
		if err != nil {
			return err
		}

		err = os.MkdirAll(configDir, constants.ConfigDirPerm)
		if err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}

		configFile = filepath.Join(configDir, constants.ConfigFileName+"."+constants.ConfigFileType)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func displayConfigTable(cmd *cobra.Command, config *Config) error {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header("Property", "Value")

	_ = table.Append("Instance", valueOrNA(config.Instance))
	_ = table.Append("User", valueOrNA(config.User))
	_ = table.Append("Password", valueOrNA(config.Password))
	_ = table.Append("Token", valueOrNA(config.Token))
	_ = table.Append("Output", valueOrNA(config.Output))
	_ = table.Append("Config File", valueOrNA(viper.ConfigFileUsed()))

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func valueOrNA(value string) string {
	if value == "" {
		return constants.NotAvailable
	}

	return value
}
