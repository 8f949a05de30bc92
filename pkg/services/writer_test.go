package services

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/kagemura/tankobon/pkg/data"
	"github.com/kagemura/tankobon/pkg/storage"
)

// stagePages writes scratch page files and returns their records in the
// given name order, mirroring what the processor hands the writer.
func stagePages(t *testing.T, names ...string) []stagedPage {
	t.Helper()

	dir := t.TempDir()
	png := createTestPNG()
	pages := make([]stagedPage, 0, len(names))
	for i, name := range names {
		path := filepath.Join(dir, fmt.Sprintf("entry_%06d.png", i))
		if err := os.WriteFile(path, png, 0o644); err != nil {
			t.Fatalf("Failed to write scratch page: %v", err)
		}
		pages = append(pages, stagedPage{name: name, path: path, ext: ".png", width: 1, height: 1})
	}
	return pages
}

func TestWriter_Persist(t *testing.T) {
	mediaRoot := t.TempDir()
	store := storage.NewMediaStore(mediaRoot)

	var chapter *data.Chapter
	var rows []*data.Page
	marked := false
	repo := &mockRepository{
		insertChapterFunc: func(tx *sql.Tx, c *data.Chapter) error {
			chapter = c
			return nil
		},
		insertPageFunc: func(tx *sql.Tx, p *data.Page) error {
			rows = append(rows, p)
			return nil
		},
		markVolumeProcessedFunc: func(tx *sql.Tx, volumeID string, processed bool) error {
			marked = processed
			return nil
		},
	}

	writer := NewWriter(repo, store)
	volume := &data.Volume{ID: "vol-1", MangaID: "manga-1", Number: 1}

	got, err := writer.Persist(volume, "Volume 1", stagePages(t, "a.png", "b.png", "c.png"))
	if err != nil {
		t.Fatalf("Persist() error = %v, want nil", err)
	}

	if got != chapter {
		t.Error("Persist() should return the inserted chapter")
	}
	if chapter.VolumeID != "vol-1" || chapter.Number != 1 {
		t.Errorf("Unexpected chapter %+v", chapter)
	}
	if chapter.Title != "Volume 1" {
		t.Errorf("Expected chapter title 'Volume 1', got %q", chapter.Title)
	}
	if chapter.PageCount != 3 {
		t.Errorf("Expected page count 3, got %d", chapter.PageCount)
	}
	if !marked {
		t.Error("Volume should have been marked processed")
	}
	if !volume.Processed {
		t.Error("Persist() should set Processed on the volume")
	}

	if len(rows) != 3 {
		t.Fatalf("Expected 3 page rows, got %d", len(rows))
	}
	for i, row := range rows {
		if row.Index != i+1 {
			t.Errorf("Page %d has index %d", i, row.Index)
		}
		if row.ChapterID != chapter.ID {
			t.Errorf("Page %d bound to chapter %q, want %q", i, row.ChapterID, chapter.ID)
		}
		info, err := os.Stat(store.AbsPath(row.ImagePath))
		if err != nil {
			t.Fatalf("Stored page should exist: %v", err)
		}
		if info.Size() == 0 {
			t.Errorf("Stored page %s is empty", row.ImagePath)
		}
	}
}

func TestWriter_PersistNoPages(t *testing.T) {
	writer := NewWriter(&mockRepository{}, storage.NewMediaStore(t.TempDir()))

	_, err := writer.Persist(&data.Volume{ID: "vol-1"}, "", nil)
	if !errors.Is(err, ErrPersistence) {
		t.Errorf("Persist() error = %v, want ErrPersistence", err)
	}
}

func TestWriter_PersistNilVolume(t *testing.T) {
	writer := NewWriter(&mockRepository{}, storage.NewMediaStore(t.TempDir()))

	if _, err := writer.Persist(nil, "", stagePages(t, "a.png")); err == nil {
		t.Error("Persist() should fail with nil volume")
	}
}

func TestWriter_PersistRollback(t *testing.T) {
	mediaRoot := t.TempDir()
	store := storage.NewMediaStore(mediaRoot)

	inserted := 0
	repo := &mockRepository{
		insertPageFunc: func(tx *sql.Tx, p *data.Page) error {
			inserted++
			if inserted == 2 {
				return fmt.Errorf("constraint violation")
			}
			return nil
		},
	}

	writer := NewWriter(repo, store)
	volume := &data.Volume{ID: "vol-1", MangaID: "manga-1", Number: 1}

	_, err := writer.Persist(volume, "", stagePages(t, "a.png", "b.png"))
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("Persist() error = %v, want ErrPersistence", err)
	}
	if volume.Processed {
		t.Error("Volume must not be marked processed after a rollback")
	}

	if _, err := os.Stat(filepath.Join(mediaRoot, "volume_vol-1")); !os.IsNotExist(err) {
		t.Error("Files written before the rollback should have been removed")
	}
}

func TestWriter_PersistTxError(t *testing.T) {
	repo := &mockRepository{
		withTxFunc: func(fn func(*sql.Tx) error) error {
			return fmt.Errorf("failed to begin transaction")
		},
	}
	writer := NewWriter(repo, storage.NewMediaStore(t.TempDir()))

	_, err := writer.Persist(&data.Volume{ID: "vol-1"}, "", stagePages(t, "a.png"))
	if !errors.Is(err, ErrPersistence) {
		t.Errorf("Persist() error = %v, want ErrPersistence", err)
	}
}

func TestWriter_PersistClearsPreviousContent(t *testing.T) {
	var calls []string
	repo := &mockRepository{
		clearVolumeContentFunc: func(tx *sql.Tx, volumeID string) error {
			calls = append(calls, "clear")
			return nil
		},
		insertChapterFunc: func(tx *sql.Tx, c *data.Chapter) error {
			calls = append(calls, "chapter")
			return nil
		},
	}
	writer := NewWriter(repo, storage.NewMediaStore(t.TempDir()))

	if _, err := writer.Persist(&data.Volume{ID: "vol-1"}, "", stagePages(t, "a.png")); err != nil {
		t.Fatalf("Persist() error = %v, want nil", err)
	}

	if len(calls) < 2 || calls[0] != "clear" || calls[1] != "chapter" {
		t.Errorf("Expected clear before chapter insert, got %v", calls)
	}
}

func TestWriter_PersistSweepsStaleFiles(t *testing.T) {
	mediaRoot := t.TempDir()
	store := storage.NewMediaStore(mediaRoot)

	// A leftover page from an earlier, longer ingest.
	stale := storage.PagePath("vol-1", 1, 9, ".png")
	if _, err := store.WritePage(stale, createTestPNG()); err != nil {
		t.Fatalf("Failed to write stale page: %v", err)
	}

	writer := NewWriter(&mockRepository{}, store)
	volume := &data.Volume{ID: "vol-1", MangaID: "manga-1", Number: 1}

	if _, err := writer.Persist(volume, "", stagePages(t, "a.png", "b.png")); err != nil {
		t.Fatalf("Persist() error = %v, want nil", err)
	}

	if _, err := os.Stat(store.AbsPath(stale)); !os.IsNotExist(err) {
		t.Error("Stale page from a previous ingest should have been swept")
	}
	for i := 1; i <= 2; i++ {
		fresh := storage.PagePath("vol-1", 1, i, ".png")
		if _, err := os.Stat(store.AbsPath(fresh)); err != nil {
			t.Errorf("Fresh page %d should exist: %v", i, err)
		}
	}
}
