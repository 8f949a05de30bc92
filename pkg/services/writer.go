package services

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/kagemura/tankobon/pkg/data"
	"github.com/kagemura/tankobon/pkg/storage"
)

// Repository is the catalog access the ingest pipeline needs.
type Repository interface {
	GetVolume(id string) (*data.Volume, error)
	SaveVolume(volume *data.Volume) error
	WithTx(fn func(*sql.Tx) error) error
	ClearVolumeContentTx(tx *sql.Tx, volumeID string) error
	InsertChapterTx(tx *sql.Tx, chapter *data.Chapter) error
	InsertPageTx(tx *sql.Tx, page *data.Page) error
	MarkVolumeProcessedTx(tx *sql.Tx, volumeID string, processed bool) error
}

// stagedPage is one extracted page waiting to be persisted: its entry name
// inside the archive (which drives ordering), the scratch file holding its
// bytes, and what the probe learned about it.
type stagedPage struct {
	name   string
	path   string
	ext    string
	width  int
	height int
}

// Writer commits an ordered page list for a volume in a single
// transaction: chapter row, page rows and media files all land together
// or not at all.
type Writer struct {
	repo  Repository
	store *storage.MediaStore
}

// NewWriter creates a new Writer instance
func NewWriter(repo Repository, store *storage.MediaStore) *Writer {
	return &Writer{repo: repo, store: store}
}

// Persist replaces the volume's content with one chapter holding the given
// pages, assigns 1-based contiguous page indices in slice order, and marks
// the volume processed. Any failure rolls back the transaction and removes
// every media file written for it.
func (w *Writer) Persist(volume *data.Volume, title string, pages []stagedPage) (*data.Chapter, error) {
	if volume == nil {
		return nil, fmt.Errorf("volume cannot be nil")
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: no pages to persist", ErrPersistence)
	}

	chapter := &data.Chapter{
		ID:        uuid.NewString(),
		VolumeID:  volume.ID,
		Number:    1,
		Title:     title,
		PageCount: len(pages),
	}

	var written []string
	err := w.repo.WithTx(func(tx *sql.Tx) error {
		// Reprocessing replaces whatever an earlier ingest stored.
		if err := w.repo.ClearVolumeContentTx(tx, volume.ID); err != nil {
			return fmt.Errorf("failed to clear volume content: %w", err)
		}
		if err := w.repo.InsertChapterTx(tx, chapter); err != nil {
			return fmt.Errorf("failed to insert chapter: %w", err)
		}
		for i, page := range pages {
			relPath := storage.PagePath(volume.ID, chapter.Number, i+1, page.ext)
			absPath, err := w.store.CopyFile(page.path, relPath)
			if err != nil {
				return fmt.Errorf("failed to store page %d: %w", i+1, err)
			}
			written = append(written, absPath)

			row := &data.Page{
				ID:        uuid.NewString(),
				ChapterID: chapter.ID,
				Index:     i + 1,
				ImagePath: relPath,
				Width:     page.width,
				Height:    page.height,
			}
			if err := w.repo.InsertPageTx(tx, row); err != nil {
				return fmt.Errorf("failed to insert page %d: %w", i+1, err)
			}
		}
		return w.repo.MarkVolumeProcessedTx(tx, volume.ID, true)
	})
	if err != nil {
		w.removeWritten(written)
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	w.sweepStale(written)
	volume.Processed = true
	return chapter, nil
}

// removeWritten deletes the files of a rolled-back ingest so no stray
// media outlives the transaction. Directory removal only succeeds once
// the directory is empty, which is exactly the intent.
func (w *Writer) removeWritten(paths []string) {
	for _, p := range paths {
		os.Remove(p)
	}
	if len(paths) > 0 {
		chapterDir := filepath.Dir(paths[0])
		os.Remove(chapterDir)
		os.Remove(filepath.Dir(chapterDir))
	}
}

// sweepStale removes files left behind in the chapter directory by an
// earlier ingest that wrote more pages than this one.
func (w *Writer) sweepStale(written []string) {
	if len(written) == 0 {
		return
	}
	keep := make(map[string]struct{}, len(written))
	for _, p := range written {
		keep[filepath.Base(p)] = struct{}{}
	}
	dir := filepath.Dir(written[0])
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if _, ok := keep[entry.Name()]; !ok {
			os.Remove(filepath.Join(dir, entry.Name()))
		}
	}
}
