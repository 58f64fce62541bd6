package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/fivetwenty-io/glide-client/internal/constants"
	"github.com/fivetwenty-io/glide-client/pkg/glide"
)

var cliVersion = "dev"

// NewRootCommand creates the glide command tree.
func NewRootCommand(version, commit, date string) *cobra.Command {
	cliVersion = version

	rootCmd := &cobra.Command{
		Use:   "glide",
		Short: "ServiceNow Table API CLI",
		Long: `A command-line interface for the ServiceNow Table API.

Credentials and the instance are read from flags, $HOME/.glide/config.yml or the
SNOW_API_TOKEN, SNOW_API_USER, SNOW_API_PASSWD and SNOW_API_INSTANCE variables.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: preRun,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default is $HOME/.glide/config.yml)")
	flags.StringP("instance", "i", "", "instance host, e.g. dev12345.service-now.com")
	flags.StringP("token", "t", "", "bearer token")
	flags.StringP("user", "u", "", "basic auth user")
	flags.String("password", "", "basic auth password")
	flags.Bool("ask-password", false, "prompt for the basic auth password")
	flags.StringP("output", "o", constants.FormatTable, "output format (table, json, yaml)")
	flags.Duration("timeout", constants.DefaultHTTPTimeout, "per request timeout")
	flags.Int("retries", constants.DefaultRetryMax, "retries for connection errors, 429 and 5xx responses")
	flags.BoolP("verbose", "v", false, "verbose output")

	for _, name := range []string{"config", "instance", "token", "user", "password", "ask-password", "output", "timeout", "retries", "verbose"} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}

	glide.BindEnv(viper.GetViper())

	rootCmd.AddCommand(NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewQueryCommand())
	rootCmd.AddCommand(NewGetCommand())
	rootCmd.AddCommand(NewInsertCommand())
	rootCmd.AddCommand(NewUpdateCommand())
	rootCmd.AddCommand(NewDeleteCommand())
	rootCmd.AddCommand(NewRefCommand())
	rootCmd.AddCommand(NewExportCommand())

	return rootCmd
}

// preRun loads the config file for the command being executed, then prompts
// for a password when asked to.
func preRun(cmd *cobra.Command, args []string) error {
	initConfig()

	return promptPassword(cmd, args)
}

func initConfig() {
	cfgFile := viper.GetString("config")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		configDir, err := defaultConfigDir()
		if err != nil {
			_, _ = fmt.Fprintln(os.Stderr, err)

			return
		}

		viper.AddConfigPath(configDir)
		viper.SetConfigType(constants.ConfigFileType)
		viper.SetConfigName(constants.ConfigFileName)
	}

	err := viper.ReadInConfig()
	if err == nil && viper.GetBool("verbose") {
		_, _ = fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func defaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, constants.ConfigDirName), nil
}

func promptPassword(cmd *cobra.Command, _ []string) error {
	if !viper.GetBool("ask-password") {
		return nil
	}

	_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Password: ")

	password, err := term.ReadPassword(int(syscall.Stdin))

	_, _ = fmt.Fprintln(cmd.ErrOrStderr())

	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	viper.Set(constants.ConfigKeyPassword, string(password))

	return nil
}
