package data

import "testing"

func TestMangaModel(t *testing.T) {
	manga := Manga{
		ID:          "test-id",
		Title:       "Test Manga",
		Description: "A test manga",
		Status:      "completed",
	}

	if manga.ID != "test-id" {
		t.Errorf("Expected ID 'test-id', got '%s'", manga.ID)
	}

	if manga.Title != "Test Manga" {
		t.Errorf("Expected Title 'Test Manga', got '%s'", manga.Title)
	}

	if manga.Status != "completed" {
		t.Errorf("Expected Status 'completed', got '%s'", manga.Status)
	}
}

func TestVolumeModel(t *testing.T) {
	volume := Volume{
		ID:         "vol-1",
		MangaID:    "manga-1",
		Number:     3,
		Title:      "Volume 3",
		SourceFile: "/uploads/v3.cbz",
	}

	if volume.MangaID != "manga-1" {
		t.Errorf("Expected MangaID 'manga-1', got '%s'", volume.MangaID)
	}

	if volume.Number != 3 {
		t.Errorf("Expected Number 3, got %d", volume.Number)
	}

	if volume.Processed {
		t.Error("Expected a fresh volume to start unprocessed")
	}
}

func TestChapterModel(t *testing.T) {
	chapter := Chapter{
		ID:        "ch-1",
		VolumeID:  "vol-1",
		Number:    1,
		Title:     "Chapter 1",
		PageCount: 42,
	}

	if chapter.ID != "ch-1" {
		t.Errorf("Expected ID 'ch-1', got '%s'", chapter.ID)
	}

	if chapter.VolumeID != "vol-1" {
		t.Errorf("Expected VolumeID 'vol-1', got '%s'", chapter.VolumeID)
	}

	if chapter.PageCount != 42 {
		t.Errorf("Expected PageCount 42, got %d", chapter.PageCount)
	}
}

func TestPageModel(t *testing.T) {
	page := Page{
		ID:        "page-1",
		ChapterID: "ch-1",
		Index:     1,
		ImagePath: "volume_vol-1/chapter_001/page_0001.png",
		Width:     784,
		Height:    1200,
	}

	if page.ChapterID != "ch-1" {
		t.Errorf("Expected ChapterID 'ch-1', got '%s'", page.ChapterID)
	}

	if page.Index != 1 {
		t.Errorf("Expected Index 1, got %d", page.Index)
	}

	if page.Width != 784 || page.Height != 1200 {
		t.Errorf("Expected 784x1200, got %dx%d", page.Width, page.Height)
	}
}
