package cmd

import (
	"fmt"
	"strings"

	"github.com/kagemura/tankobon/pkg/data"
	"github.com/kagemura/tankobon/pkg/sources"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add [manga-title]",
	Short: "Add a manga or volume to your library",
	Long:  "Create a manga entry, optionally with a volume ready for import",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		title := strings.Join(args, " ")
		volumeNumber, _ := cmd.Flags().GetInt("volume")
		filePath, _ := cmd.Flags().GetString("file")
		volumeTitle, _ := cmd.Flags().GetString("title")
		lookup, _ := cmd.Flags().GetBool("lookup")

		_, repo, closeDB := openLibrary()
		defer closeDB()

		manga, err := repo.GetMangaByTitle(title)
		cobra.CheckErr(err)

		if manga == nil {
			manga = &data.Manga{Title: title}

			if lookup {
				fmt.Printf("🔍 Looking up '%s' on MangaDex...\n", title)
				source := sources.NewMangaDex()
				results, err := source.Search(title)
				if err != nil {
					fmt.Printf("⚠️  Lookup failed: %v\n", err)
				} else if len(results) > 0 {
					manga.Description = results[0].Description
					manga.Status = results[0].Status
					fmt.Printf("✅ Found: %s\n", results[0].Title)
				}
			}

			cobra.CheckErr(repo.SaveManga(manga))
			fmt.Printf("✅ Added '%s' to library (ID: %s)\n", manga.Title, manga.ID)
		} else {
			fmt.Printf("📚 '%s' already in library (ID: %s)\n", manga.Title, manga.ID)
		}

		if volumeNumber > 0 {
			volume := &data.Volume{
				MangaID:    manga.ID,
				Number:     volumeNumber,
				Title:      volumeTitle,
				SourceFile: filePath,
			}
			cobra.CheckErr(repo.SaveVolume(volume))

			fmt.Printf("✅ Added volume %d (ID: %s)\n", volume.Number, volume.ID)
			if filePath != "" {
				fmt.Printf("💡 To import its pages, use: tankobon process %s\n", volume.ID)
			} else {
				fmt.Printf("💡 To import its pages, use: tankobon process %s <archive>\n", volume.ID)
			}
		}
	},
}

func init() {
	addCmd.Flags().IntP("volume", "v", 0, "Volume number to create")
	addCmd.Flags().StringP("file", "f", "", "Archive file for the volume")
	addCmd.Flags().StringP("title", "t", "", "Volume title")
	addCmd.Flags().Bool("lookup", false, "Fetch metadata from MangaDex")

	rootCmd.AddCommand(addCmd)
}
