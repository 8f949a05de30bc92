package archive

import (
	"fmt"
	"io"
	"path"
	"strings"
)

// Entry is one page image pulled out of an archive, in archive order.
type Entry struct {
	Name string
	Data []byte
}

// EntryReader streams image entries one at a time so only a single page
// is held in memory. Next returns io.EOF after the last entry.
type EntryReader interface {
	Next() (Entry, error)
	Close() error
}

// Options tune extraction limits and the PDF rasterizer.
type Options struct {
	MaxArchiveSize int64
	MaxEntrySize   int64
	TempDir        string
	RenderDPI      int
}

// Open inspects the file and returns the entry reader for its format.
func Open(filePath string, opts Options) (EntryReader, error) {
	format, err := Inspect(filePath, opts.MaxArchiveSize)
	if err != nil {
		return nil, err
	}

	var reader EntryReader
	switch format {
	case FormatZip:
		reader, err = openZip(filePath, opts)
	case FormatRar:
		reader, err = openRar(filePath, opts)
	case Format7z:
		reader, err = openSevenZip(filePath, opts)
	case FormatPDF:
		reader, err = openPDF(filePath, opts)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}

	return &countingReader{reader: reader}, nil
}

// countingReader turns an exhausted stream with zero yielded entries
// into ErrEmptyArchive.
type countingReader struct {
	reader EntryReader
	count  int
}

func (c *countingReader) Next() (Entry, error) {
	entry, err := c.reader.Next()
	if err == io.EOF && c.count == 0 {
		return Entry{}, ErrEmptyArchive
	}
	if err == nil {
		c.count++
	}
	return entry, err
}

func (c *countingReader) Close() error {
	return c.reader.Close()
}

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// isImageEntry reports whether an archive member should be treated as a
// page. Reader junk (__MACOSX resource forks, thumbnails, metadata
// files) is skipped along with anything that is not an image.
func isImageEntry(name string) bool {
	clean := strings.ReplaceAll(name, "\\", "/")
	if strings.HasPrefix(clean, "__MACOSX/") || strings.Contains(clean, "/__MACOSX/") {
		return false
	}

	base := path.Base(clean)
	if strings.HasPrefix(base, ".") {
		return false
	}
	switch strings.ToLower(base) {
	case "thumbs.db", "desktop.ini", "comicinfo.xml":
		return false
	}

	return imageExts[strings.ToLower(path.Ext(base))]
}

// readEntryData drains one entry under the per-entry cap. The cap guards
// against decompression bombs, so it applies to the inflated bytes, not
// the header's claimed size.
func readEntryData(r io.Reader, name string, limit int64) ([]byte, error) {
	if limit <= 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", ErrCorruptArchive, name, err)
		}
		return data, nil
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrCorruptArchive, name, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s", ErrEntryTooLarge, name)
	}

	return data, nil
}
