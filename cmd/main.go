package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.3.0"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "parceldash",
	Short: "Real-estate transaction dashboard",
	Long: `parceldash filters parcel sale records by year, price, owner and locality
and serves them as a table and a map. The same core backs the HTTP API
(serve) and the terminal commands (query, browse).`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	Example: `  # Serve the dashboard API
  $ parceldash serve --config configs/config.yaml

  # Corporate buyers in 2021-2024, exported to CSV
  $ parceldash query --year-min 2021 --year-max 2024 --type CORP --out corp.csv

  # Browse the reduced dataset for one city
  $ parceldash browse --variant reduced --locality Venice`,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default ./configs/config.yaml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(browseCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styles.Error.Render("error: ")+err.Error())
		os.Exit(1)
	}
}
