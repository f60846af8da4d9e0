package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"qjm-roster/internal/catalog"
	"qjm-roster/internal/config"
	"qjm-roster/internal/wargame"
)

var catalogFile string

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the unit catalog as a faction tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			c   *catalog.Catalog
			err error
		)
		if catalogFile != "" {
			c, err = catalog.LoadFile(catalogFile)
		} else {
			var cfg *config.Config
			cfg, err = config.Load(configPath, schemaPath)
			if err != nil {
				return err
			}
			client := wargame.NewClient(cfg.Service.BaseURL, wargame.Options{Timeout: cfg.Service.Timeout})
			c, err = client.Catalog(context.Background())
		}
		if err != nil {
			return err
		}
		colors := term.IsTerminal(int(os.Stdout.Fd()))
		fmt.Fprint(cmd.OutOrStdout(), catalog.NewTreeFormatter(colors).Format(c))
		return nil
	},
}

func init() {
	catalogCmd.Flags().StringVar(&catalogFile, "file", "", "Read the catalog from a YAML/JSON file instead of the service")
}
