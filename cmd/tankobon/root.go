package cmd

import (
	"os"

	"github.com/kagemura/tankobon/pkg/app"
	"github.com/kagemura/tankobon/pkg/config"
	"github.com/kagemura/tankobon/pkg/data"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tankobon",
	Short: "A manga volume ingestion and library CLI",
	Long:  "Import volume archives, browse your library and export e-books with a TUI and CLI",
	Run: func(cmd *cobra.Command, args []string) {
		// Launch TUI by default
		a := app.NewApp()
		if err := a.Run(); err != nil {
			cobra.CheckErr(err)
		}
	},
}

func init() {
	// Add all subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(exportCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openLibrary loads the config and opens the catalog database. The
// returned close function releases the database handle.
func openLibrary() (config.Config, *data.Repository, func()) {
	cfg, err := config.LoadConfig()
	cobra.CheckErr(err)
	cobra.CheckErr(cfg.Validate())

	db, err := data.InitDuckDB(cfg.DatabasePath)
	cobra.CheckErr(err)

	return cfg, data.NewRepository(db), func() { db.Close() }
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
