package archive

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// pdfReader rasterizes one page per Next call. Rendering shells out to
// pdftoppm, which keeps poppler's codecs out of the process.
type pdfReader struct {
	path      string
	pageCount int
	page      int
	dpi       int
	tempDir   string
}

func openPDF(path string, opts Options) (*pdfReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer file.Close()

	pageCount, err := api.PageCount(file, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read pdf: %w", classifyError(err))
	}
	if pageCount == 0 {
		return nil, fmt.Errorf("%w: pdf has no pages", ErrEmptyArchive)
	}

	if _, err := exec.LookPath("pdftoppm"); err != nil {
		return nil, fmt.Errorf("%w: pdftoppm not found in PATH", ErrUnsupportedPDF)
	}

	dpi := opts.RenderDPI
	if dpi <= 0 {
		dpi = 300
	}

	return &pdfReader{path: path, pageCount: pageCount, dpi: dpi, tempDir: opts.TempDir}, nil
}

func (p *pdfReader) Next() (Entry, error) {
	if p.page >= p.pageCount {
		return Entry{}, io.EOF
	}
	p.page++

	data, err := p.renderPage(p.page)
	if err != nil {
		return Entry{}, err
	}

	return Entry{Name: fmt.Sprintf("page_%04d.png", p.page), Data: data}, nil
}

func (p *pdfReader) renderPage(pageNum int) ([]byte, error) {
	tmpDir, err := os.MkdirTemp(p.tempDir, "tankobon-page-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create render dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	outputPrefix := filepath.Join(tmpDir, "page")
	pageStr := strconv.Itoa(pageNum)

	cmd := exec.Command("pdftoppm",
		"-png",
		"-f", pageStr,
		"-l", pageStr,
		"-r", strconv.Itoa(p.dpi),
		"-singlefile",
		p.path,
		outputPrefix,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("%w: pdftoppm page %d: %s", ErrUnsupportedPDF, pageNum, strings.TrimSpace(string(output)))
	}

	rendered := outputPrefix + ".png"
	if _, err := os.Stat(rendered); err != nil {
		return nil, fmt.Errorf("%w: pdftoppm produced no output for page %d", ErrUnsupportedPDF, pageNum)
	}

	data, err := os.ReadFile(rendered)
	if err != nil {
		return nil, fmt.Errorf("failed to read rendered page: %w", err)
	}

	return data, nil
}

func (p *pdfReader) Close() error {
	return nil
}
