package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/kagemura/tankobon/pkg/services"
	"github.com/kagemura/tankobon/pkg/storage"
	"github.com/spf13/cobra"
)

var processCmd = &cobra.Command{
	Use:   "process [volume-id] [archive]",
	Short: "Import a volume archive",
	Long: `Run the ingestion pipeline for a volume: inspect the archive,
extract its page images, sequence them and persist them to the library.

When the archive argument is omitted the volume's stored source file is
used, which reprocesses a previously imported volume.`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		volumeID := args[0]
		archivePath := ""
		if len(args) > 1 {
			archivePath = args[1]
		}
		verbose, _ := cmd.Flags().GetBool("verbose")

		cfg, repo, closeDB := openLibrary()
		defer closeDB()

		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		if verbose {
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		}

		store := storage.NewMediaStore(cfg.MediaRoot)
		processor := services.NewProcessor(repo, store, cfg, logger)

		// Listen for progress
		done := make(chan struct{})
		go func() {
			defer close(done)
			for progress := range processor.GetProgressChannel() {
				switch progress.Stage {
				case "inspecting":
					fmt.Println("🔍 Inspecting archive...")
				case "extracting":
					fmt.Printf("\r📦 Extracting: %d pages", progress.Current)
				case "sequencing":
					fmt.Printf("\n🔢 Sequencing %d pages...\n", progress.Total)
				case "persisting":
					fmt.Println("💾 Persisting to library...")
				}
			}
		}()

		result := processor.ProcessVolume(volumeID, archivePath)
		processor.Close()
		<-done

		if result.Success {
			fmt.Printf("✅ %s\n", result.Message)
		} else {
			fmt.Printf("❌ %s\n", result.Message)
			os.Exit(1)
		}
	},
}

func init() {
	processCmd.Flags().Bool("verbose", false, "Show pipeline logs")
}
