package integrations

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-shiori/go-epub"
	"github.com/kagemura/tankobon/pkg/data"
)

// ChapterPages pairs a chapter with its pages, ordered by page index.
type ChapterPages struct {
	Chapter data.Chapter
	Pages   []data.Page
}

// VolumeBook is everything the builder needs to compile one volume.
type VolumeBook struct {
	Manga    *data.Manga
	Volume   *data.Volume
	Chapters []ChapterPages
}

type EPubBuilder struct {
	outputDir string
	mediaRoot string
	filter    PageFilter
}

// NewEPubBuilder writes books into outputDir, resolving page paths
// against mediaRoot. A nil filter exports pages untouched.
func NewEPubBuilder(outputDir, mediaRoot string, filter PageFilter) *EPubBuilder {
	return &EPubBuilder{outputDir: outputDir, mediaRoot: mediaRoot, filter: filter}
}

// CreateEPub compiles a processed volume into a single EPub file and
// returns the path written.
func (b *EPubBuilder) CreateEPub(book VolumeBook) (string, error) {
	if len(book.Chapters) == 0 {
		return "", fmt.Errorf("no chapters to compile")
	}

	if err := os.MkdirAll(b.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	title := book.Manga.Title
	if book.Volume.Title != "" {
		title = fmt.Sprintf("%s: %s", title, book.Volume.Title)
	}
	title = fmt.Sprintf("%s, Vol. %d", title, book.Volume.Number)

	e, err := epub.NewEpub(title)
	if err != nil {
		return "", fmt.Errorf("failed to create EPub: %w", err)
	}

	e.SetAuthor(book.Manga.Title)
	if book.Manga.Description != "" {
		e.SetDescription(book.Manga.Description)
	}
	e.SetLang("en")

	// Filtered pages need a scratch dir that outlives e.Write, since
	// go-epub reads source images lazily at write time.
	scratchDir, err := os.MkdirTemp("", "tankobon-epub-*")
	if err != nil {
		return "", fmt.Errorf("failed to create scratch dir: %w", err)
	}
	defer os.RemoveAll(scratchDir)

	for _, cp := range book.Chapters {
		if err := b.addChapterToEPub(e, cp, scratchDir); err != nil {
			return "", fmt.Errorf("failed to add chapter %d: %w", cp.Chapter.Number, err)
		}
	}

	safeTitle := sanitizeFilename(fmt.Sprintf("%s - Vol %02d", book.Manga.Title, book.Volume.Number))
	outputPath := filepath.Join(b.outputDir, safeTitle+".epub")

	if err := e.Write(outputPath); err != nil {
		return "", fmt.Errorf("failed to write EPub: %w", err)
	}

	return outputPath, nil
}

// addChapterToEPub adds a single chapter's pages to the EPub
func (b *EPubBuilder) addChapterToEPub(e *epub.Epub, cp ChapterPages, scratchDir string) error {
	if len(cp.Pages) == 0 {
		return fmt.Errorf("chapter has no pages")
	}

	chapterTitle := fmt.Sprintf("Chapter %d", cp.Chapter.Number)
	if cp.Chapter.Title != "" {
		chapterTitle = fmt.Sprintf("%s: %s", chapterTitle, cp.Chapter.Title)
	}

	var htmlContent strings.Builder
	htmlContent.WriteString(fmt.Sprintf("<h1>%s</h1>\n", chapterTitle))

	for _, page := range cp.Pages {
		imgPath := filepath.Join(b.mediaRoot, page.ImagePath)

		if b.filter != nil {
			filtered, err := b.filterPage(imgPath, page, scratchDir)
			if err != nil {
				return err
			}
			imgPath = filtered
		}

		internalPath, err := e.AddImage(imgPath, "")
		if err != nil {
			return fmt.Errorf("failed to add image %s: %w", page.ImagePath, err)
		}

		htmlContent.WriteString(fmt.Sprintf(
			`<div class="page"><img src="%s" alt="Page %d" style="width:100%%;height:auto;"/></div>%s`,
			internalPath, page.Index, "\n",
		))
	}

	_, err := e.AddSection(htmlContent.String(), chapterTitle, "", "")
	if err != nil {
		return fmt.Errorf("failed to add section: %w", err)
	}

	return nil
}

// filterPage runs the page through the filter and parks the result in
// the scratch dir for go-epub to pick up.
func (b *EPubBuilder) filterPage(imgPath string, page data.Page, scratchDir string) (string, error) {
	raw, err := os.ReadFile(imgPath)
	if err != nil {
		return "", fmt.Errorf("failed to read page %s: %w", page.ImagePath, err)
	}

	processed, err := b.filter.Process(raw)
	if err != nil {
		return "", fmt.Errorf("failed to filter page %s: %w", page.ImagePath, err)
	}

	outPath := filepath.Join(scratchDir, fmt.Sprintf("%s_%04d.jpg", page.ChapterID, page.Index))
	if err := os.WriteFile(outPath, processed, 0o644); err != nil {
		return "", fmt.Errorf("failed to write filtered page: %w", err)
	}

	return outPath, nil
}

// sanitizeFilename removes characters that are invalid in filenames
func sanitizeFilename(name string) string {
	invalid := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"}
	result := name
	for _, char := range invalid {
		result = strings.ReplaceAll(result, char, "_")
	}
	// Trim spaces and dots from ends
	result = strings.TrimSpace(result)
	result = strings.Trim(result, ".")
	return result
}
