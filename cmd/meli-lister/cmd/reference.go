package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/meli-lister/internal/listing"
)

func referenceCmd() *cobra.Command {
	refRoot := &cobra.Command{
		Use:   "reference",
		Short: "Show marketplace reference data",
		Long: "Show the currencies and listing types the listing form offers.\n" +
			"The server fetches them with its application credentials, so no\n" +
			"browser session is needed.",
	}

	refRoot.AddCommand(
		currenciesCmd(),
		listingTypesCmd(),
	)

	return refRoot
}

func currenciesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "currencies",
		Short: "List currencies",
		Example: `  meli-lister reference currencies
  meli-lister reference currencies --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			choices, err := newClient().Currencies(cmd.Context())
			if err != nil {
				return err
			}
			return printChoices(cmd, choices)
		},
	}
}

func listingTypesCmd() *cobra.Command {
	var siteID string

	c := &cobra.Command{
		Use:   "listing-types",
		Short: "List listing types of a site",
		Example: `  meli-lister reference listing-types
  meli-lister reference listing-types --site MLB`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			choices, err := newClient().ListingTypes(cmd.Context(), siteID)
			if err != nil {
				return err
			}
			return printChoices(cmd, choices)
		},
	}

	c.Flags().StringVar(&siteID, "site", "", "marketplace site id (default: server's site)")
	return c
}

func printChoices(cmd *cobra.Command, choices []listing.Choice) error {
	out := cmd.OutOrStdout()
	if jsonOutput() {
		return outputJSON(out, choices)
	}
	if len(choices) == 0 {
		_, err := fmt.Fprintln(out, "No entries found.")
		return err
	}
	return printChoiceTable(out, choices)
}
