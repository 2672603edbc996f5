// Package cmd implements the meli-lister CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	apiclient "github.com/donaldgifford/meli-lister/internal/api/client"
)

const envPrefix = "MELI"

var rootCmd = &cobra.Command{
	Use:   "meli-lister",
	Short: "List items on MercadoLibre from the browser",
	Long: "meli-lister is a small web front end for the MercadoLibre API.\n" +
		"It signs a seller in through OAuth, builds the listing form from live\n" +
		"reference data, creates listings and shows the seller's active ones.",
	SilenceUsage: true,
}

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initEnv)

	rootCmd.PersistentFlags().
		String("config", "config.yaml", "server config file path")
	rootCmd.PersistentFlags().
		String("server", "http://localhost:8080", "API server URL")
	rootCmd.PersistentFlags().
		String("output", "table", "output format (table, json)")

	for _, name := range []string{"config", "server", "output"} {
		cobra.CheckErr(viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)))
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(referenceCmd())
	rootCmd.AddCommand(quotaCmd())
}

// initEnv loads .env into the process environment, so ${VAR} references in
// the config file and MELI_* overrides both see it.
func initEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "Ignoring .env:", err)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()
}

func configPath() string {
	return viper.GetString("config")
}

func newClient() *apiclient.Client {
	return apiclient.New(viper.GetString("server"))
}

func jsonOutput() bool {
	return viper.GetString("output") == "json"
}
