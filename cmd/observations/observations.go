package observations

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/featherquest/featherquest-go/internal/achievements"
	"github.com/featherquest/featherquest-go/internal/conf"
	"github.com/featherquest/featherquest-go/internal/datastore"
	"github.com/featherquest/featherquest-go/internal/geo"
	"github.com/featherquest/featherquest-go/internal/observations"
)

// Command creates the observations parent command.
func Command(cfg *conf.Settings) *cobra.Command {
	var userName string

	cmd := &cobra.Command{
		Use:   "observations",
		Short: "Manage the personal observation log",
	}

	cmd.PersistentFlags().StringVar(&userName, "user", viper.GetString("user"), "Owner of the observation log")

	cmd.AddCommand(
		listCommand(cfg, &userName),
		addCommand(cfg, &userName),
		deleteCommand(cfg, &userName),
	)

	return cmd
}

func listCommand(cfg *conf.Settings, userName *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List observations, newest first, with badge progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cfg, *userName, func(store *observations.Store) error {
				snapshot, err := store.Snapshot(cmd.Context())
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
				for _, obs := range snapshot {
					fmt.Fprintf(w, "%s\t%s %s\t%s\tx%d\t%s\n",
						obs.ID, obs.Date, obs.Time, obs.BirdName, obs.NumberOfBirds, obs.Notes)
				}
				_ = w.Flush()

				fmt.Fprintf(out, "\n%d observations\n", len(snapshot))
				for _, badge := range achievements.Evaluate(len(snapshot)) {
					marker := " "
					if badge.Earned {
						marker = "*"
					}
					fmt.Fprintf(out, "  [%s] %s: %s\n", marker, badge.Title, badge.Description)
				}
				return nil
			})
		},
	}
}

func addCommand(cfg *conf.Settings, userName *string) *cobra.Command {
	var (
		bird      string
		date      string
		timeOfDay string
		location  string
		count     int
		notes     string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new observation",
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := geo.ParseCoordinates(location)
			if err != nil {
				return err
			}

			return withStore(cfg, *userName, func(store *observations.Store) error {
				before, err := store.Snapshot(cmd.Context())
				if err != nil {
					return err
				}

				id, err := store.Create(cmd.Context(), &observations.Observation{
					BirdName:      bird,
					Date:          date,
					Time:          timeOfDay,
					Location:      loc,
					NumberOfBirds: count,
					Notes:         notes,
				})
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "recorded observation %s\n", id)

				was := achievements.Evaluate(len(before))
				now := achievements.Evaluate(len(before) + 1)
				for i := range now {
					if now[i].Earned && !was[i].Earned {
						fmt.Fprintf(out, "badge earned: %s\n", now[i].Title)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&bird, "bird", "", "Common name of the bird")
	cmd.Flags().StringVar(&date, "date", "", "Observation date as 2006-01-02")
	cmd.Flags().StringVar(&timeOfDay, "time", "", "Observation time as 15:04:05")
	cmd.Flags().StringVar(&location, "location", "", "Coordinates as \"lat,lng\"")
	cmd.Flags().IntVar(&count, "count", 1, "Number of birds observed")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form notes")
	_ = cmd.MarkFlagRequired("bird")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("location")

	return cmd
}

func deleteCommand(cfg *conf.Settings, userName *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an observation by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cfg, *userName, func(store *observations.Store) error {
				if err := store.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted observation %s\n", args[0])
				return nil
			})
		},
	}
}

// withStore opens the configured datastore, wraps it in an observation store
// for the user and closes both when fn returns.
func withStore(cfg *conf.Settings, userName string, fn func(*observations.Store) error) error {
	ds, err := datastore.New(cfg)
	if err != nil {
		return err
	}
	if err := ds.Open(); err != nil {
		return err
	}
	defer func() { _ = ds.Close() }()

	store := observations.NewStore(ds, userName)
	defer store.Close()

	return fn(store)
}
