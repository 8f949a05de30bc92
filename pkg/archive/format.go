package archive

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Format identifies the container type of an uploaded volume.
type Format string

const (
	FormatZip Format = "zip"
	FormatRar Format = "rar"
	Format7z  Format = "7z"
	FormatPDF Format = "pdf"
)

var formatByExt = map[string]Format{
	".zip": FormatZip,
	".cbz": FormatZip,
	".rar": FormatRar,
	".cbr": FormatRar,
	".7z":  Format7z,
	".cb7": Format7z,
	".pdf": FormatPDF,
}

// Magic prefixes per format. Zip accepts the local-file, empty-archive
// and spanned markers.
var signatures = map[Format][][]byte{
	FormatZip: {
		{0x50, 0x4B, 0x03, 0x04},
		{0x50, 0x4B, 0x05, 0x06},
		{0x50, 0x4B, 0x07, 0x08},
	},
	FormatRar: {
		[]byte("Rar!\x1a\x07"),
	},
	Format7z: {
		{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C},
	},
	FormatPDF: {
		[]byte("%PDF-"),
	},
}

// DetectFormat maps a filename to its container format by extension.
func DetectFormat(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	format, ok := formatByExt[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return format, nil
}

// Inspect validates an uploaded file before any extraction work starts:
// the extension must be a known container, the size must fit under
// maxSize (0 means unlimited), and the leading bytes must match the
// format's signature.
func Inspect(path string, maxSize int64) (Format, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat archive: %w", err)
	}
	if maxSize > 0 && info.Size() > maxSize {
		return "", fmt.Errorf("%w: %d bytes (limit %d)", ErrFileTooLarge, info.Size(), maxSize)
	}

	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open archive: %w", err)
	}
	defer file.Close()

	header := make([]byte, 8)
	n, err := file.Read(header)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read archive header: %w", err)
	}
	header = header[:n]

	for _, magic := range signatures[format] {
		if bytes.HasPrefix(header, magic) {
			return format, nil
		}
	}

	return "", fmt.Errorf("%w: file signature does not match %s", ErrUnsupportedFormat, format)
}
