package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MediaStore owns the on-disk page images. Every path under the root is
// derived from catalog identifiers, so a row can always be mapped back
// to its file and vice versa.
type MediaStore struct {
	root string
}

func NewMediaStore(root string) *MediaStore {
	return &MediaStore{root: root}
}

func (s *MediaStore) Root() string {
	return s.root
}

// PagePath builds the media-root-relative location for a page image:
// volume_<id>/chapter_<nnn>/page_<nnnn><ext>.
func PagePath(volumeID string, chapterNumber, pageIndex int, ext string) string {
	return filepath.Join(
		fmt.Sprintf("volume_%s", volumeID),
		fmt.Sprintf("chapter_%03d", chapterNumber),
		fmt.Sprintf("page_%04d%s", pageIndex, NormalizeExt(ext)),
	)
}

// NormalizeExt lowercases an image extension and folds jpeg to jpg.
func NormalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if ext == ".jpeg" {
		ext = ".jpg"
	}
	return ext
}

func (s *MediaStore) AbsPath(relPath string) string {
	return filepath.Join(s.root, relPath)
}

// WritePage places page data at the relative path, creating parents as
// needed, and returns the absolute path written.
func (s *MediaStore) WritePage(relPath string, data []byte) (string, error) {
	absPath := s.AbsPath(relPath)
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create page dir: %w", err)
	}
	if err := os.WriteFile(absPath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write page: %w", err)
	}
	return absPath, nil
}

// CopyFile moves staged bytes into the store without holding them in
// memory a second time.
func (s *MediaStore) CopyFile(srcPath, relPath string) (string, error) {
	absPath := s.AbsPath(relPath)
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create page dir: %w", err)
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("failed to open staged page: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to create page file: %w", err)
	}
	if _, err := dst.ReadFrom(src); err != nil {
		dst.Close()
		os.Remove(absPath)
		return "", fmt.Errorf("failed to copy staged page: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("failed to close page file: %w", err)
	}

	return absPath, nil
}

// RemoveVolume deletes every image stored for the volume. Used both for
// rollback after a failed ingest and for volume deletion.
func (s *MediaStore) RemoveVolume(volumeID string) error {
	dir := filepath.Join(s.root, fmt.Sprintf("volume_%s", volumeID))
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove volume media: %w", err)
	}
	return nil
}
