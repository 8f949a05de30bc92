package cmd

import (
	"fmt"
	"sort"

	"github.com/kagemura/tankobon/pkg/integrations"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [volume-id]",
	Short: "Export a processed volume as an e-book",
	Long: `Export a processed volume's pages as an EPUB, MOBI or AZW3 book.

Use --profile to optimize page images for a specific e-reader.

Examples:
  tankobon export 4f1c2ab0 --output ~/Books
  tankobon export 4f1c2ab0 --profile kindle-paperwhite3 --format mobi
  tankobon export --list-profiles`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		listProfiles, _ := cmd.Flags().GetBool("list-profiles")
		if listProfiles {
			printProfileList()
			return
		}

		if len(args) == 0 {
			cobra.CheckErr(fmt.Errorf("volume id is required (use --list-profiles to see device profiles)"))
		}

		volumeID := args[0]
		profileID, _ := cmd.Flags().GetString("profile")
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		opts := integrations.ExportOptions{
			Format:      integrations.ExportFormat(format),
			OutputDir:   output,
			RightToLeft: true, // Manga reading direction
		}

		if profileID != "" {
			device, ok := integrations.GetDeviceProfile(profileID)
			if !ok {
				cobra.CheckErr(fmt.Errorf("unknown profile: %s (use --list-profiles to see available options)", profileID))
			}
			opts.Device = device
			opts.Optimize = true
		}

		cfg, repo, closeDB := openLibrary()
		defer closeDB()

		book, err := integrations.LoadVolumeBook(repo, volumeID)
		cobra.CheckErr(err)

		fmt.Printf("📖 Exporting '%s' Vol. %d (%d chapters)...\n",
			book.Manga.Title, book.Volume.Number, len(book.Chapters))
		if opts.Optimize {
			fmt.Printf("📱 Optimizing pages for %s...\n", opts.Device.Name)
		}

		path, err := integrations.ExportVolume(book, cfg.MediaRoot, opts)
		cobra.CheckErr(err)

		fmt.Printf("✅ Export complete!\n")
		fmt.Printf("📂 Output: %s\n", path)
	},
}

func init() {
	exportCmd.Flags().StringP("profile", "p", "", "E-reader profile for image optimization")
	exportCmd.Flags().StringP("format", "f", "epub", "Output format: epub, mobi or azw3")
	exportCmd.Flags().StringP("output", "o", ".", "Output directory")
	exportCmd.Flags().Bool("list-profiles", false, "List supported e-reader profiles")
}

func printProfileList() {
	fmt.Println("📱 Supported e-reader profiles:")
	profiles := integrations.ListDevices()
	sort.Strings(profiles)
	for _, profile := range profiles {
		fmt.Printf("  %s\n", profile)
	}
}
