package data

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb/v2"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS mangas (
		id VARCHAR PRIMARY KEY,
		title VARCHAR NOT NULL,
		description VARCHAR NOT NULL DEFAULT '',
		status VARCHAR NOT NULL DEFAULT 'ongoing'
	)`,
	`CREATE TABLE IF NOT EXISTS volumes (
		id VARCHAR PRIMARY KEY,
		manga_id VARCHAR NOT NULL,
		number INTEGER NOT NULL,
		title VARCHAR NOT NULL DEFAULT '',
		source_file VARCHAR NOT NULL DEFAULT '',
		processed BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		UNIQUE (manga_id, number)
	)`,
	`CREATE TABLE IF NOT EXISTS chapters (
		id VARCHAR PRIMARY KEY,
		volume_id VARCHAR NOT NULL,
		number INTEGER NOT NULL,
		title VARCHAR NOT NULL DEFAULT '',
		page_count INTEGER NOT NULL DEFAULT 0,
		UNIQUE (volume_id, number)
	)`,
	`CREATE TABLE IF NOT EXISTS pages (
		id VARCHAR PRIMARY KEY,
		chapter_id VARCHAR NOT NULL,
		page_index INTEGER NOT NULL,
		image_path VARCHAR NOT NULL,
		width INTEGER NOT NULL DEFAULT 0,
		height INTEGER NOT NULL DEFAULT 0,
		UNIQUE (chapter_id, page_index)
	)`,
}

// InitDuckDB opens the catalog database at path and creates any missing
// tables.
func InitDuckDB(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database dir: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return db, nil
}

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) SaveManga(manga *Manga) error {
	if manga.ID == "" {
		manga.ID = uuid.NewString()
	}

	_, err := r.db.Exec(`
		INSERT INTO mangas (id, title, description, status)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			status = excluded.status`,
		manga.ID, manga.Title, manga.Description, manga.Status)
	if err != nil {
		return fmt.Errorf("failed to save manga: %w", err)
	}

	return nil
}

func (r *Repository) GetManga(id string) (*Manga, error) {
	var manga Manga
	err := r.db.QueryRow(`
		SELECT id, title, description, status FROM mangas WHERE id = ?`, id).
		Scan(&manga.ID, &manga.Title, &manga.Description, &manga.Status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get manga: %w", err)
	}

	return &manga, nil
}

func (r *Repository) GetMangaByTitle(title string) (*Manga, error) {
	var manga Manga
	err := r.db.QueryRow(`
		SELECT id, title, description, status FROM mangas WHERE title = ?`, title).
		Scan(&manga.ID, &manga.Title, &manga.Description, &manga.Status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get manga by title: %w", err)
	}

	return &manga, nil
}

func (r *Repository) ListMangas() ([]Manga, error) {
	rows, err := r.db.Query(`
		SELECT id, title, description, status FROM mangas ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("failed to list mangas: %w", err)
	}
	defer rows.Close()

	var mangas []Manga
	for rows.Next() {
		var manga Manga
		if err := rows.Scan(&manga.ID, &manga.Title, &manga.Description, &manga.Status); err != nil {
			return nil, fmt.Errorf("failed to scan manga: %w", err)
		}
		mangas = append(mangas, manga)
	}

	return mangas, rows.Err()
}

// DeleteManga removes the manga and everything under it. DuckDB has no
// cascading deletes, so the children go first.
func (r *Repository) DeleteManga(id string) error {
	return r.WithTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			DELETE FROM pages WHERE chapter_id IN (
				SELECT c.id FROM chapters c
				JOIN volumes v ON c.volume_id = v.id
				WHERE v.manga_id = ?)`, id)
		if err != nil {
			return fmt.Errorf("failed to delete pages: %w", err)
		}
		_, err = tx.Exec(`
			DELETE FROM chapters WHERE volume_id IN (
				SELECT id FROM volumes WHERE manga_id = ?)`, id)
		if err != nil {
			return fmt.Errorf("failed to delete chapters: %w", err)
		}
		if _, err := tx.Exec(`DELETE FROM volumes WHERE manga_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete volumes: %w", err)
		}
		if _, err := tx.Exec(`DELETE FROM mangas WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete manga: %w", err)
		}
		return nil
	})
}

func (r *Repository) SaveVolume(volume *Volume) error {
	now := time.Now().UTC()
	if volume.ID == "" {
		volume.ID = uuid.NewString()
		volume.CreatedAt = now
	}
	volume.UpdatedAt = now

	_, err := r.db.Exec(`
		INSERT INTO volumes (id, manga_id, number, title, source_file, processed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			number = excluded.number,
			title = excluded.title,
			source_file = excluded.source_file,
			processed = excluded.processed,
			updated_at = excluded.updated_at`,
		volume.ID, volume.MangaID, volume.Number, volume.Title, volume.SourceFile,
		volume.Processed, volume.CreatedAt, volume.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save volume: %w", err)
	}

	return nil
}

func (r *Repository) GetVolume(id string) (*Volume, error) {
	var volume Volume
	err := r.db.QueryRow(`
		SELECT id, manga_id, number, title, source_file, processed, created_at, updated_at
		FROM volumes WHERE id = ?`, id).
		Scan(&volume.ID, &volume.MangaID, &volume.Number, &volume.Title,
			&volume.SourceFile, &volume.Processed, &volume.CreatedAt, &volume.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get volume: %w", err)
	}

	return &volume, nil
}

func (r *Repository) ListVolumes(mangaID string) ([]Volume, error) {
	rows, err := r.db.Query(`
		SELECT id, manga_id, number, title, source_file, processed, created_at, updated_at
		FROM volumes WHERE manga_id = ? ORDER BY number`, mangaID)
	if err != nil {
		return nil, fmt.Errorf("failed to list volumes: %w", err)
	}
	defer rows.Close()

	var volumes []Volume
	for rows.Next() {
		var volume Volume
		if err := rows.Scan(&volume.ID, &volume.MangaID, &volume.Number, &volume.Title,
			&volume.SourceFile, &volume.Processed, &volume.CreatedAt, &volume.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan volume: %w", err)
		}
		volumes = append(volumes, volume)
	}

	return volumes, rows.Err()
}

func (r *Repository) DeleteVolume(id string) error {
	return r.WithTx(func(tx *sql.Tx) error {
		if err := r.ClearVolumeContentTx(tx, id); err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM volumes WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete volume: %w", err)
		}
		return nil
	})
}

// GetMangaWithVolumeCount returns the manga along with its total and
// processed volume counts, for the library listing.
func (r *Repository) GetMangaWithVolumeCount(id string) (*Manga, int, int, error) {
	manga, err := r.GetManga(id)
	if err != nil {
		return nil, 0, 0, err
	}
	if manga == nil {
		return nil, 0, 0, nil
	}

	var total, processed int
	err = r.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN processed THEN 1 ELSE 0 END), 0)
		FROM volumes WHERE manga_id = ?`, id).
		Scan(&total, &processed)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to count volumes: %w", err)
	}

	return manga, total, processed, nil
}

func (r *Repository) ListChapters(volumeID string) ([]Chapter, error) {
	rows, err := r.db.Query(`
		SELECT id, volume_id, number, title, page_count
		FROM chapters WHERE volume_id = ? ORDER BY number`, volumeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chapters: %w", err)
	}
	defer rows.Close()

	var chapters []Chapter
	for rows.Next() {
		var chapter Chapter
		if err := rows.Scan(&chapter.ID, &chapter.VolumeID, &chapter.Number,
			&chapter.Title, &chapter.PageCount); err != nil {
			return nil, fmt.Errorf("failed to scan chapter: %w", err)
		}
		chapters = append(chapters, chapter)
	}

	return chapters, rows.Err()
}

func (r *Repository) ListPages(chapterID string) ([]Page, error) {
	rows, err := r.db.Query(`
		SELECT id, chapter_id, page_index, image_path, width, height
		FROM pages WHERE chapter_id = ? ORDER BY page_index`, chapterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	defer rows.Close()

	var pages []Page
	for rows.Next() {
		var page Page
		if err := rows.Scan(&page.ID, &page.ChapterID, &page.Index,
			&page.ImagePath, &page.Width, &page.Height); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		pages = append(pages, page)
	}

	return pages, rows.Err()
}

// WithTx runs fn inside a transaction, rolling back on error.
func (r *Repository) WithTx(fn func(*sql.Tx) error) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed (%v) after: %w", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ClearVolumeContentTx removes every chapter and page belonging to the
// volume, so a reprocess starts from a clean slate.
func (r *Repository) ClearVolumeContentTx(tx *sql.Tx, volumeID string) error {
	_, err := tx.Exec(`
		DELETE FROM pages WHERE chapter_id IN (
			SELECT id FROM chapters WHERE volume_id = ?)`, volumeID)
	if err != nil {
		return fmt.Errorf("failed to clear pages: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM chapters WHERE volume_id = ?`, volumeID); err != nil {
		return fmt.Errorf("failed to clear chapters: %w", err)
	}

	return nil
}

func (r *Repository) InsertChapterTx(tx *sql.Tx, chapter *Chapter) error {
	if chapter.ID == "" {
		chapter.ID = uuid.NewString()
	}

	_, err := tx.Exec(`
		INSERT INTO chapters (id, volume_id, number, title, page_count)
		VALUES (?, ?, ?, ?, ?)`,
		chapter.ID, chapter.VolumeID, chapter.Number, chapter.Title, chapter.PageCount)
	if err != nil {
		return fmt.Errorf("failed to insert chapter: %w", err)
	}

	return nil
}

func (r *Repository) InsertPageTx(tx *sql.Tx, page *Page) error {
	if page.ID == "" {
		page.ID = uuid.NewString()
	}

	_, err := tx.Exec(`
		INSERT INTO pages (id, chapter_id, page_index, image_path, width, height)
		VALUES (?, ?, ?, ?, ?, ?)`,
		page.ID, page.ChapterID, page.Index, page.ImagePath, page.Width, page.Height)
	if err != nil {
		return fmt.Errorf("failed to insert page: %w", err)
	}

	return nil
}

func (r *Repository) MarkVolumeProcessedTx(tx *sql.Tx, volumeID string, processed bool) error {
	_, err := tx.Exec(`
		UPDATE volumes SET processed = ?, updated_at = ? WHERE id = ?`,
		processed, time.Now().UTC(), volumeID)
	if err != nil {
		return fmt.Errorf("failed to mark volume processed: %w", err)
	}

	return nil
}
