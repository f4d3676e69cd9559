package nearby

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/featherquest/featherquest-go/internal/conf"
	"github.com/featherquest/featherquest-go/internal/datastore"
	"github.com/featherquest/featherquest-go/internal/ebird"
	"github.com/featherquest/featherquest-go/internal/geo"
	"github.com/featherquest/featherquest-go/internal/settings"
	"github.com/featherquest/featherquest-go/internal/units"
)

// Command creates the nearby command for querying hotspots and recent
// sightings around a location.
func Command(cfg *conf.Settings) *cobra.Command {
	var (
		userName string
		location string
		custom   string
		radius   int
		unit     string
	)

	cmd := &cobra.Command{
		Use:   "nearby",
		Short: "List birding hotspots and recent sightings near a location",
		Long: "Query eBird for hotspots and recent sightings around the given coordinates. " +
			"Radius and unit system default to the user's saved settings.",
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := geo.ParseCoordinates(location)
			if err != nil {
				return err
			}
			loc := geo.ResolveLocation(custom, current)

			store, err := datastore.New(cfg)
			if err != nil {
				return err
			}
			if err := store.Open(); err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			prefs, err := settings.NewResolver(store).Load(cmd.Context(), userName)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: failed to load settings, using defaults: %v\n", err)
			}
			if radius <= 0 {
				radius = prefs.MaxDistance
			}
			querySystem := prefs.UnitSystem
			if unit != "" {
				querySystem = units.ParseUnit(unit)
			}

			client, err := ebird.NewClient(ebird.FromSettings(cfg))
			if err != nil {
				return err
			}

			coordinator := geo.NewCoordinator(client, cfg.EBird.LookbackDays)
			result := coordinator.FetchNearby(cmd.Context(), loc, radius, querySystem)

			printResult(cmd, result)

			if len(result.Errors) == 2 {
				return fmt.Errorf("both nearby queries failed: %v, %v", result.Errors[0], result.Errors[1])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&userName, "user", viper.GetString("user"), "User whose saved settings apply")
	cmd.Flags().StringVar(&location, "location", "", "Current coordinates as \"lat,lng\"")
	cmd.Flags().StringVar(&custom, "custom", "", "Custom coordinates as \"lat,lng\", falls back to --location when invalid")
	cmd.Flags().IntVar(&radius, "radius", 0, "Search radius, defaults to the saved max distance")
	cmd.Flags().StringVar(&unit, "unit", "", "Unit system for the radius (kilometers or miles)")
	_ = cmd.MarkFlagRequired("location")

	return cmd
}

func printResult(cmd *cobra.Command, result *geo.NearbyResult) {
	out := cmd.OutOrStdout()

	for _, qe := range result.Errors {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", qe)
	}

	w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	fmt.Fprintf(w, "Hotspots (%d)\n", len(result.Hotspots))
	for _, h := range result.Hotspots {
		fmt.Fprintf(w, "  %s\t%.4f,%.4f\t%d species\n", h.LocName, h.Latitude, h.Longitude, h.NumSpeciesAllTime)
	}
	fmt.Fprintf(w, "Recent sightings (%d)\n", len(result.Sightings))
	for _, s := range result.Sightings {
		fmt.Fprintf(w, "  %s\t%s\t%s\n", s.CommonName, s.LocName, s.ObsDate)
	}
	_ = w.Flush()
}
