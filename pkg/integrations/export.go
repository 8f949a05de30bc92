package integrations

import (
	"fmt"

	"github.com/kagemura/tankobon/pkg/data"
)

// Catalog is the slice of the repository the exporter reads from.
type Catalog interface {
	GetVolume(id string) (*data.Volume, error)
	GetManga(id string) (*data.Manga, error)
	ListChapters(volumeID string) ([]data.Chapter, error)
	ListPages(chapterID string) ([]data.Page, error)
}

// LoadVolumeBook assembles the book for a processed volume.
func LoadVolumeBook(catalog Catalog, volumeID string) (VolumeBook, error) {
	volume, err := catalog.GetVolume(volumeID)
	if err != nil {
		return VolumeBook{}, fmt.Errorf("failed to load volume: %w", err)
	}
	if volume == nil {
		return VolumeBook{}, fmt.Errorf("volume not found: %s", volumeID)
	}
	if !volume.Processed {
		return VolumeBook{}, fmt.Errorf("volume has not been processed yet")
	}

	manga, err := catalog.GetManga(volume.MangaID)
	if err != nil {
		return VolumeBook{}, fmt.Errorf("failed to load manga: %w", err)
	}
	if manga == nil {
		return VolumeBook{}, fmt.Errorf("manga not found: %s", volume.MangaID)
	}

	chapters, err := catalog.ListChapters(volumeID)
	if err != nil {
		return VolumeBook{}, fmt.Errorf("failed to list chapters: %w", err)
	}

	book := VolumeBook{Manga: manga, Volume: volume}
	for _, chapter := range chapters {
		pages, err := catalog.ListPages(chapter.ID)
		if err != nil {
			return VolumeBook{}, fmt.Errorf("failed to list pages: %w", err)
		}
		book.Chapters = append(book.Chapters, ChapterPages{Chapter: chapter, Pages: pages})
	}

	return book, nil
}

// ExportVolume compiles the book into an EPub and converts it when a
// different container is requested. Pages are run through the device's
// optimization pipeline when opts.Optimize is set.
func ExportVolume(book VolumeBook, mediaRoot string, opts ExportOptions) (string, error) {
	var filter PageFilter
	if opts.Optimize {
		filter = NewImageProcessor(opts.Device.GetOptimizationSettings())
	}

	builder := NewEPubBuilder(opts.OutputDir, mediaRoot, filter)
	epubPath, err := builder.CreateEPub(book)
	if err != nil {
		return "", err
	}

	if opts.Format == FormatEPUB || opts.Format == "" {
		return epubPath, nil
	}

	return NewConverter(opts.Device).Convert(epubPath, opts.Format, opts.RightToLeft)
}
