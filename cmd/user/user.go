package user

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/featherquest/featherquest-go/internal/conf"
	"github.com/featherquest/featherquest-go/internal/datastore"
	"github.com/featherquest/featherquest-go/internal/security"
	"github.com/featherquest/featherquest-go/internal/settings"
	"github.com/featherquest/featherquest-go/internal/units"
)

// Command creates the user parent command for accounts and preferences.
func Command(cfg *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts and saved preferences",
	}

	cmd.AddCommand(
		registerCommand(cfg),
		loginCommand(cfg),
		setPrefsCommand(cfg),
	)

	return cmd
}

func registerCommand(cfg *conf.Settings) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "register <name>",
		Short: "Create a local account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatastore(cfg, func(ds datastore.Interface) error {
				if err := security.NewCredentialManager(ds).RegisterUser(cmd.Context(), args[0], password); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "registered %s\n", args[0])
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Account password")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func loginCommand(cfg *conf.Settings) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <name>",
		Short: "Verify account credentials",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatastore(cfg, func(ds datastore.Interface) error {
				match, err := security.NewCredentialManager(ds).CheckCredentials(cmd.Context(), args[0], password)
				if err != nil {
					return err
				}
				if !match {
					return fmt.Errorf("invalid credentials")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "credentials ok\n")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Account password")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func setPrefsCommand(cfg *conf.Settings) *cobra.Command {
	var (
		unit        string
		maxDistance int
	)

	cmd := &cobra.Command{
		Use:   "set-prefs <name>",
		Short: "Save the unit system and search radius for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatastore(cfg, func(ds datastore.Interface) error {
				resolver := settings.NewResolver(ds)

				prefs, err := resolver.Load(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if unit != "" {
					prefs.UnitSystem = units.ParseUnit(unit)
				}
				if maxDistance > 0 {
					prefs.MaxDistance = maxDistance
				}

				if err := resolver.Save(cmd.Context(), args[0], prefs); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "saved: %s, max distance %d\n",
					prefs.UnitSystem, prefs.MaxDistance)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&unit, "unit", "", "Unit system (kilometers or miles)")
	cmd.Flags().IntVar(&maxDistance, "max-distance", 0, "Search radius in the chosen unit")

	return cmd
}

func withDatastore(cfg *conf.Settings, fn func(datastore.Interface) error) error {
	ds, err := datastore.New(cfg)
	if err != nil {
		return err
	}
	if err := ds.Open(); err != nil {
		return err
	}
	defer func() { _ = ds.Close() }()
	return fn(ds)
}
