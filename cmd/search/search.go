package search

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/featherquest/featherquest-go/internal/conf"
	"github.com/featherquest/featherquest-go/internal/ebird"
	"github.com/featherquest/featherquest-go/internal/species"
)

// Command creates the search command for species name lookup.
func Command(cfg *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search the eBird taxonomy by common or scientific name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args[0]) < species.MinQueryLength {
				fmt.Fprintf(cmd.OutOrStdout(), "query too short, need at least %d characters\n", species.MinQueryLength)
				return nil
			}

			client, err := ebird.NewClient(ebird.FromSettings(cfg))
			if err != nil {
				return err
			}

			matches, err := client.SearchSpecies(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			for _, match := range matches {
				fmt.Fprintf(w, "%s\t%s\t%s\n", match.SpeciesCode, match.CommonName, match.SciName)
			}
			_ = w.Flush()
			fmt.Fprintf(cmd.OutOrStdout(), "%d matches\n", len(matches))
			return nil
		},
	}
}
