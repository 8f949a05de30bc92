package data

import "time"

type Manga struct {
	ID          string
	Title       string
	Description string
	Status      string // "ongoing", "completed", "hiatus"
}

type Volume struct {
	ID         string
	MangaID    string
	Number     int
	Title      string
	SourceFile string // Path to the uploaded archive
	Processed  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Chapter struct {
	ID        string
	VolumeID  string
	Number    int
	Title     string
	PageCount int
}

// Page indices are 1-based and contiguous within a chapter.
type Page struct {
	ID        string
	ChapterID string
	Index     int
	ImagePath string // Relative to the media root
	Width     int
	Height    int
}
