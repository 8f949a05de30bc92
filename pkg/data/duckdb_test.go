package data

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	t.Helper()

	// Create temp directory for test database
	tmpDir, err := os.MkdirTemp("", "tankobon-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	dbPath := filepath.Join(tmpDir, "test.db")
	db, err := InitDuckDB(dbPath)
	if err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("Failed to init DB: %v", err)
	}

	repo := &Repository{db: db}

	cleanup := func() {
		db.Close()
		os.RemoveAll(tmpDir)
	}

	return repo, cleanup
}

func TestSaveAndGetManga(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	manga := &Manga{
		ID:          "test-manga-1",
		Title:       "Test Manga",
		Description: "A test manga description",
		Status:      "completed",
	}

	// Save manga
	err := repo.SaveManga(manga)
	if err != nil {
		t.Fatalf("Failed to save manga: %v", err)
	}

	// Get manga
	retrieved, err := repo.GetManga("test-manga-1")
	if err != nil {
		t.Fatalf("Failed to get manga: %v", err)
	}

	if retrieved == nil {
		t.Fatal("Expected manga to be found")
	}

	if retrieved.ID != manga.ID {
		t.Errorf("Expected ID %s, got %s", manga.ID, retrieved.ID)
	}

	if retrieved.Title != manga.Title {
		t.Errorf("Expected Title %s, got %s", manga.Title, retrieved.Title)
	}

	if retrieved.Status != manga.Status {
		t.Errorf("Expected Status %s, got %s", manga.Status, retrieved.Status)
	}
}

func TestSaveMangaAssignsID(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	manga := &Manga{Title: "Untitled"}
	if err := repo.SaveManga(manga); err != nil {
		t.Fatalf("Failed to save manga: %v", err)
	}

	if manga.ID == "" {
		t.Error("Expected SaveManga to assign an ID")
	}
}

func TestListMangas(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	// Initially empty
	mangas, err := repo.ListMangas()
	if err != nil {
		t.Fatalf("Failed to list mangas: %v", err)
	}

	if len(mangas) != 0 {
		t.Errorf("Expected 0 mangas, got %d", len(mangas))
	}

	// Add some mangas
	for i := 1; i <= 3; i++ {
		manga := &Manga{
			ID:    string(rune('a' + i - 1)),
			Title: string(rune('A'+i-1)) + " Manga",
		}
		err := repo.SaveManga(manga)
		if err != nil {
			t.Fatalf("Failed to save manga %d: %v", i, err)
		}
	}

	// List all
	mangas, err = repo.ListMangas()
	if err != nil {
		t.Fatalf("Failed to list mangas: %v", err)
	}

	if len(mangas) != 3 {
		t.Errorf("Expected 3 mangas, got %d", len(mangas))
	}

	// Ordered by title
	if mangas[0].Title != "A Manga" {
		t.Errorf("Expected first manga 'A Manga', got '%s'", mangas[0].Title)
	}
}

func TestGetMangaByTitle(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	manga := &Manga{ID: "manga-1", Title: "Berserk"}
	repo.SaveManga(manga)

	retrieved, err := repo.GetMangaByTitle("Berserk")
	if err != nil {
		t.Fatalf("Failed to get manga by title: %v", err)
	}
	if retrieved == nil || retrieved.ID != "manga-1" {
		t.Errorf("Expected manga-1, got %+v", retrieved)
	}

	missing, err := repo.GetMangaByTitle("Unknown")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if missing != nil {
		t.Error("Expected nil for unknown title")
	}
}

func TestSaveAndListVolumes(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	manga := &Manga{ID: "manga-1", Title: "Test Manga"}
	repo.SaveManga(manga)

	// Save volumes out of order
	volumes := []*Volume{
		{ID: "vol-2", MangaID: "manga-1", Number: 2, SourceFile: "/uploads/v2.cbz"},
		{ID: "vol-1", MangaID: "manga-1", Number: 1, SourceFile: "/uploads/v1.cbz"},
	}

	for _, v := range volumes {
		if err := repo.SaveVolume(v); err != nil {
			t.Fatalf("Failed to save volume: %v", err)
		}
	}

	retrieved, err := repo.ListVolumes("manga-1")
	if err != nil {
		t.Fatalf("Failed to list volumes: %v", err)
	}

	if len(retrieved) != 2 {
		t.Fatalf("Expected 2 volumes, got %d", len(retrieved))
	}

	// Verify ordering by number
	if retrieved[0].Number != 1 || retrieved[1].Number != 2 {
		t.Errorf("Expected volumes ordered by number, got %d then %d",
			retrieved[0].Number, retrieved[1].Number)
	}

	if retrieved[0].Processed {
		t.Error("Expected new volume to start unprocessed")
	}

	if retrieved[0].CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be set")
	}
}

func TestSaveVolumeUpsert(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	repo.SaveManga(&Manga{ID: "manga-1", Title: "Test"})

	volume := &Volume{ID: "vol-1", MangaID: "manga-1", Number: 1, Title: "First"}
	if err := repo.SaveVolume(volume); err != nil {
		t.Fatalf("Failed to save volume: %v", err)
	}
	created := volume.CreatedAt

	// Update same volume
	volume.Title = "First (revised)"
	volume.Processed = true
	if err := repo.SaveVolume(volume); err != nil {
		t.Fatalf("Failed to update volume: %v", err)
	}

	retrieved, _ := repo.GetVolume("vol-1")
	if retrieved == nil {
		t.Fatal("Expected volume to be found")
	}
	if retrieved.Title != "First (revised)" {
		t.Errorf("Expected Title 'First (revised)', got '%s'", retrieved.Title)
	}
	if !retrieved.Processed {
		t.Error("Expected volume to be marked processed")
	}
	if !retrieved.CreatedAt.Equal(created) {
		t.Errorf("Expected CreatedAt to be preserved, got %v", retrieved.CreatedAt)
	}
}

func TestPersistChaptersAndPages(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	repo.SaveManga(&Manga{ID: "manga-1", Title: "Test"})
	repo.SaveVolume(&Volume{ID: "vol-1", MangaID: "manga-1", Number: 1})

	err := repo.WithTx(func(tx *sql.Tx) error {
		chapter := &Chapter{ID: "ch-1", VolumeID: "vol-1", Number: 1, Title: "Chapter 1", PageCount: 2}
		if err := repo.InsertChapterTx(tx, chapter); err != nil {
			return err
		}
		for i := 1; i <= 2; i++ {
			page := &Page{ChapterID: "ch-1", Index: i, ImagePath: "vol-1/ch-1/page.png"}
			if err := repo.InsertPageTx(tx, page); err != nil {
				return err
			}
		}
		return repo.MarkVolumeProcessedTx(tx, "vol-1", true)
	})
	if err != nil {
		t.Fatalf("Failed to persist chapters and pages: %v", err)
	}

	chapters, err := repo.ListChapters("vol-1")
	if err != nil {
		t.Fatalf("Failed to list chapters: %v", err)
	}
	if len(chapters) != 1 {
		t.Fatalf("Expected 1 chapter, got %d", len(chapters))
	}
	if chapters[0].PageCount != 2 {
		t.Errorf("Expected 2 pages recorded, got %d", chapters[0].PageCount)
	}

	pages, err := repo.ListPages("ch-1")
	if err != nil {
		t.Fatalf("Failed to list pages: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("Expected 2 pages, got %d", len(pages))
	}
	if pages[0].Index != 1 || pages[1].Index != 2 {
		t.Errorf("Expected pages ordered by index, got %d then %d", pages[0].Index, pages[1].Index)
	}

	volume, _ := repo.GetVolume("vol-1")
	if !volume.Processed {
		t.Error("Expected volume to be marked processed")
	}
}

func TestWithTxRollback(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	repo.SaveManga(&Manga{ID: "manga-1", Title: "Test"})
	repo.SaveVolume(&Volume{ID: "vol-1", MangaID: "manga-1", Number: 1})

	boom := errors.New("boom")
	err := repo.WithTx(func(tx *sql.Tx) error {
		chapter := &Chapter{ID: "ch-1", VolumeID: "vol-1", Number: 1}
		if err := repo.InsertChapterTx(tx, chapter); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected boom error, got: %v", err)
	}

	// Nothing from the failed transaction should be visible
	chapters, err := repo.ListChapters("vol-1")
	if err != nil {
		t.Fatalf("Failed to list chapters: %v", err)
	}
	if len(chapters) != 0 {
		t.Errorf("Expected 0 chapters after rollback, got %d", len(chapters))
	}
}

func TestClearVolumeContent(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	repo.SaveManga(&Manga{ID: "manga-1", Title: "Test"})
	repo.SaveVolume(&Volume{ID: "vol-1", MangaID: "manga-1", Number: 1})

	err := repo.WithTx(func(tx *sql.Tx) error {
		if err := repo.InsertChapterTx(tx, &Chapter{ID: "ch-1", VolumeID: "vol-1", Number: 1}); err != nil {
			return err
		}
		return repo.InsertPageTx(tx, &Page{ChapterID: "ch-1", Index: 1, ImagePath: "p.png"})
	})
	if err != nil {
		t.Fatalf("Failed to seed content: %v", err)
	}

	// Reprocessing clears old rows first
	err = repo.WithTx(func(tx *sql.Tx) error {
		return repo.ClearVolumeContentTx(tx, "vol-1")
	})
	if err != nil {
		t.Fatalf("Failed to clear volume content: %v", err)
	}

	chapters, _ := repo.ListChapters("vol-1")
	if len(chapters) != 0 {
		t.Errorf("Expected 0 chapters, got %d", len(chapters))
	}
	pages, _ := repo.ListPages("ch-1")
	if len(pages) != 0 {
		t.Errorf("Expected 0 pages, got %d", len(pages))
	}
}

func TestDeleteManga(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	repo.SaveManga(&Manga{ID: "manga-1", Title: "Test"})
	repo.SaveVolume(&Volume{ID: "vol-1", MangaID: "manga-1", Number: 1})

	err := repo.WithTx(func(tx *sql.Tx) error {
		if err := repo.InsertChapterTx(tx, &Chapter{ID: "ch-1", VolumeID: "vol-1", Number: 1}); err != nil {
			return err
		}
		return repo.InsertPageTx(tx, &Page{ChapterID: "ch-1", Index: 1, ImagePath: "p.png"})
	})
	if err != nil {
		t.Fatalf("Failed to seed content: %v", err)
	}

	// Delete manga
	if err := repo.DeleteManga("manga-1"); err != nil {
		t.Fatalf("Failed to delete manga: %v", err)
	}

	// Verify manga is gone
	retrieved, _ := repo.GetManga("manga-1")
	if retrieved != nil {
		t.Error("Expected manga to be deleted")
	}

	// Verify volumes, chapters and pages are gone too
	volumes, _ := repo.ListVolumes("manga-1")
	if len(volumes) != 0 {
		t.Errorf("Expected 0 volumes, got %d", len(volumes))
	}
	chapters, _ := repo.ListChapters("vol-1")
	if len(chapters) != 0 {
		t.Errorf("Expected 0 chapters, got %d", len(chapters))
	}
	pages, _ := repo.ListPages("ch-1")
	if len(pages) != 0 {
		t.Errorf("Expected 0 pages, got %d", len(pages))
	}
}

func TestDeleteVolume(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	repo.SaveManga(&Manga{ID: "manga-1", Title: "Test"})
	repo.SaveVolume(&Volume{ID: "vol-1", MangaID: "manga-1", Number: 1})
	repo.SaveVolume(&Volume{ID: "vol-2", MangaID: "manga-1", Number: 2})

	if err := repo.DeleteVolume("vol-1"); err != nil {
		t.Fatalf("Failed to delete volume: %v", err)
	}

	volumes, _ := repo.ListVolumes("manga-1")
	if len(volumes) != 1 {
		t.Fatalf("Expected 1 volume left, got %d", len(volumes))
	}
	if volumes[0].ID != "vol-2" {
		t.Errorf("Expected vol-2 to survive, got %s", volumes[0].ID)
	}
}

func TestGetMangaWithVolumeCount(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	repo.SaveManga(&Manga{ID: "manga-1", Title: "Test"})

	// Add 3 volumes, 2 processed
	volumes := []*Volume{
		{ID: "vol-1", MangaID: "manga-1", Number: 1, Processed: true},
		{ID: "vol-2", MangaID: "manga-1", Number: 2, Processed: true},
		{ID: "vol-3", MangaID: "manga-1", Number: 3, Processed: false},
	}

	for _, v := range volumes {
		repo.SaveVolume(v)
	}

	// Get stats
	retrievedManga, total, processed, err := repo.GetMangaWithVolumeCount("manga-1")
	if err != nil {
		t.Fatalf("Failed to get manga with volume count: %v", err)
	}

	if retrievedManga == nil {
		t.Fatal("Expected manga to be found")
	}

	if total != 3 {
		t.Errorf("Expected 3 total volumes, got %d", total)
	}

	if processed != 2 {
		t.Errorf("Expected 2 processed volumes, got %d", processed)
	}
}

func TestGetNonExistentManga(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	manga, err := repo.GetManga("non-existent")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if manga != nil {
		t.Error("Expected manga to be nil for non-existent ID")
	}
}

func TestSaveMangaUpsert(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	manga := &Manga{
		ID:     "manga-1",
		Title:  "Original Title",
		Status: "ongoing",
	}
	repo.SaveManga(manga)

	// Update same manga
	manga.Title = "Updated Title"
	manga.Status = "completed"
	err := repo.SaveManga(manga)
	if err != nil {
		t.Fatalf("Failed to update manga: %v", err)
	}

	// Verify update
	retrieved, _ := repo.GetManga("manga-1")
	if retrieved.Title != "Updated Title" {
		t.Errorf("Expected Title 'Updated Title', got '%s'", retrieved.Title)
	}

	if retrieved.Status != "completed" {
		t.Errorf("Expected Status 'completed', got '%s'", retrieved.Status)
	}
}
