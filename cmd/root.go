package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/featherquest/featherquest-go/cmd/nearby"
	"github.com/featherquest/featherquest-go/cmd/observations"
	"github.com/featherquest/featherquest-go/cmd/search"
	"github.com/featherquest/featherquest-go/cmd/user"
	"github.com/featherquest/featherquest-go/internal/conf"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "featherquest",
		Short: "FeatherQuest CLI",
	}

	// Set up the global flags for the root command.
	setupFlags(rootCmd, settings)

	subcommands := []*cobra.Command{
		nearby.Command(settings),
		observations.Command(settings),
		search.Command(settings),
		user.Command(settings),
	}
	rootCmd.AddCommand(subcommands...)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// Parse flags first so command-line arguments take precedence over
		// the config file.
		if err := cmd.Flags().Parse(args); err != nil {
			return err
		}
		return conf.ValidateSettings(settings)
	}

	return rootCmd
}

// setupFlags configures the global flags for the root command.
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.EBird.APIKey, "apikey", viper.GetString("ebird.apikey"), "eBird API key")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		cobra.CheckErr(err)
	}
}
