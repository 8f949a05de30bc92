package services

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kagemura/tankobon/pkg/archive"
	"github.com/kagemura/tankobon/pkg/config"
	"github.com/kagemura/tankobon/pkg/integrations"
	"github.com/kagemura/tankobon/pkg/storage"
)

// ProcessProgress represents the progress of a volume ingest
type ProcessProgress struct {
	VolumeID string
	Stage    string // "inspecting", "extracting", "sequencing", "persisting", "complete", "error"
	Current  int
	Total    int
	Err      error
}

// Result is the outcome handed back to the caller. Failures are already
// translated into Message; no error crosses this boundary.
type Result struct {
	Success   bool
	Message   string
	ChapterID string
	PageCount int
}

// Processor runs the ingest pipeline for volume archives: inspect,
// extract, sequence, persist, report.
type Processor struct {
	repo         Repository
	store        *storage.MediaStore
	writer       *Writer
	locks        *volumeLockRegistry
	cfg          config.Config
	logger       *slog.Logger
	progressChan chan ProcessProgress
}

// NewProcessor creates a new Processor instance. A nil logger falls back
// to slog.Default().
func NewProcessor(repo Repository, store *storage.MediaStore, cfg config.Config, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		repo:         repo,
		store:        store,
		writer:       NewWriter(repo, store),
		locks:        volumeLocks(),
		cfg:          cfg,
		logger:       logger,
		progressChan: make(chan ProcessProgress, 100),
	}
}

// GetProgressChannel returns the channel for receiving progress updates
func (p *Processor) GetProgressChannel() <-chan ProcessProgress {
	return p.progressChan
}

// ProcessVolume runs the full pipeline for one volume archive. When
// filePath is empty the volume's stored source file is used. It never
// returns an error or panics; every outcome is folded into the Result.
func (p *Processor) ProcessVolume(volumeID, filePath string) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("volume processing panicked", "volume", volumeID, "panic", r)
			result = Result{Message: fmt.Sprintf("internal error: %v", r)}
		}
	}()

	if !p.locks.TryAcquire(volumeID) {
		return p.fail(volumeID, ErrVolumeBusy)
	}
	defer p.locks.Release(volumeID)

	volume, err := p.repo.GetVolume(volumeID)
	if err != nil {
		return p.fail(volumeID, fmt.Errorf("failed to load volume: %w", err))
	}
	if volume == nil {
		return p.fail(volumeID, ErrVolumeNotFound)
	}
	if filePath == "" {
		filePath = volume.SourceFile
	}
	if filePath == "" {
		return p.fail(volumeID, fmt.Errorf("volume has no source file"))
	}

	p.logger.Info("processing volume", "volume", volumeID, "file", filePath)
	p.sendProgress(ProcessProgress{VolumeID: volumeID, Stage: "inspecting"})

	reader, err := archive.Open(filePath, archive.Options{
		MaxArchiveSize: p.cfg.MaxArchiveSize,
		MaxEntrySize:   p.cfg.MaxEntrySize,
		TempDir:        p.cfg.ScratchDir(),
		RenderDPI:      p.cfg.RenderDPI,
	})
	if err != nil {
		return p.fail(volumeID, err)
	}
	defer reader.Close()

	if volume.SourceFile != filePath {
		volume.SourceFile = filePath
		if err := p.repo.SaveVolume(volume); err != nil {
			return p.fail(volumeID, fmt.Errorf("failed to update volume: %w", err))
		}
	}

	if err := os.MkdirAll(p.cfg.ScratchDir(), 0o755); err != nil {
		return p.fail(volumeID, fmt.Errorf("failed to create scratch directory: %w", err))
	}
	scratchDir, err := os.MkdirTemp(p.cfg.ScratchDir(), "tankobon-ingest-*")
	if err != nil {
		return p.fail(volumeID, fmt.Errorf("failed to create scratch directory: %w", err))
	}
	defer os.RemoveAll(scratchDir)

	staged, err := p.stageEntries(volumeID, reader, scratchDir)
	if err != nil {
		return p.fail(volumeID, err)
	}

	p.sendProgress(ProcessProgress{VolumeID: volumeID, Stage: "sequencing", Total: len(staged)})
	sort.SliceStable(staged, func(i, j int) bool {
		return archive.Compare(staged[i].name, staged[j].name) < 0
	})

	p.sendProgress(ProcessProgress{VolumeID: volumeID, Stage: "persisting", Total: len(staged)})
	title := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	chapter, err := p.writer.Persist(volume, title, staged)
	if err != nil {
		return p.fail(volumeID, err)
	}

	p.sendProgress(ProcessProgress{
		VolumeID: volumeID,
		Stage:    "complete",
		Current:  chapter.PageCount,
		Total:    chapter.PageCount,
	})
	p.logger.Info("volume processed", "volume", volumeID, "chapter", chapter.ID, "pages", chapter.PageCount)

	return Result{
		Success:   true,
		Message:   fmt.Sprintf("Processed %d pages.", chapter.PageCount),
		ChapterID: chapter.ID,
		PageCount: chapter.PageCount,
	}
}

// stageEntries drains the reader into scratchDir one entry at a time so
// only a single page is ever held in memory.
func (p *Processor) stageEntries(volumeID string, reader archive.EntryReader, scratchDir string) ([]stagedPage, error) {
	var staged []stagedPage
	for {
		entry, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		ext := storage.NormalizeExt(filepath.Ext(entry.Name))
		scratchPath := filepath.Join(scratchDir, fmt.Sprintf("entry_%06d%s", len(staged), ext))
		if err := os.WriteFile(scratchPath, entry.Data, 0o644); err != nil {
			return nil, fmt.Errorf("failed to stage entry %q: %w", entry.Name, err)
		}

		page := stagedPage{name: entry.Name, path: scratchPath, ext: ext}
		// Dimensions are best-effort; a page the probe cannot decode is
		// stored with zero width and height.
		if w, h, err := integrations.ProbeDimensions(entry.Data); err == nil {
			page.width, page.height = w, h
		}
		staged = append(staged, page)

		p.sendProgress(ProcessProgress{VolumeID: volumeID, Stage: "extracting", Current: len(staged)})
	}
	return staged, nil
}

// fail logs the error, emits an error progress event and folds the error
// into a failed Result.
func (p *Processor) fail(volumeID string, err error) Result {
	p.logger.Error("volume processing failed", "volume", volumeID, "error", err)
	p.sendProgress(ProcessProgress{VolumeID: volumeID, Stage: "error", Err: err})
	return Result{Message: messageFor(err)}
}

// messageFor translates a pipeline error into the message shown to the
// caller, keyed by error kind.
func messageFor(err error) string {
	switch {
	case errors.Is(err, ErrVolumeBusy):
		return "This volume is already being processed."
	case errors.Is(err, ErrVolumeNotFound):
		return "Volume not found."
	case errors.Is(err, archive.ErrUnsupportedFormat):
		return "The file format is not supported. Supported formats: ZIP, CBZ, RAR, CBR, 7Z, CB7, PDF."
	case errors.Is(err, archive.ErrFileTooLarge):
		return "The file exceeds the maximum allowed archive size."
	case errors.Is(err, archive.ErrPasswordProtected):
		return "The archive is password-protected and cannot be processed."
	case errors.Is(err, archive.ErrEmptyArchive):
		return "No page images were found in the archive."
	case errors.Is(err, archive.ErrEntryTooLarge):
		return "An image inside the archive exceeds the maximum allowed size."
	case errors.Is(err, archive.ErrUnsupportedPDF):
		return "The PDF could not be rendered. Encrypted or interactive documents are not supported."
	case errors.Is(err, archive.ErrCorruptArchive):
		return "The archive appears to be corrupt and could not be read."
	case errors.Is(err, ErrPersistence):
		return "The volume could not be saved to the library."
	default:
		return fmt.Sprintf("Processing failed: %v", err)
	}
}

// sendProgress sends a progress update (non-blocking)
func (p *Processor) sendProgress(progress ProcessProgress) {
	select {
	case p.progressChan <- progress:
	default:
		// Channel full, skip this update
	}
}

// Close cleans up resources
func (p *Processor) Close() {
	close(p.progressChan)
}
