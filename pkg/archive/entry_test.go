package archive

import (
	"errors"
	"testing"
)

func TestIsImageEntry(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{"page_1.jpg", true},
		{"page_1.JPG", true},
		{"pages/page_1.jpeg", true},
		{"page_1.png", true},
		{"page_1.gif", true},
		{"page_1.webp", true},
		{"page_1.bmp", true},
		{"scan.tiff", true},
		{"windows\\style\\page.png", true},
		{"ComicInfo.xml", false},
		{"comicinfo.XML", false},
		{"notes.txt", false},
		{"Thumbs.db", false},
		{"desktop.ini", false},
		{".DS_Store", false},
		{"pages/.hidden.png", false},
		{"__MACOSX/._page_1.jpg", false},
		{"vol/__MACOSX/._page_1.jpg", false},
		{"page_1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isImageEntry(tt.name); got != tt.expected {
				t.Errorf("isImageEntry(%q) = %v, want %v", tt.name, got, tt.expected)
			}
		})
	}
}

func TestOpenUnsupportedExtension(t *testing.T) {
	path := writeTestFile(t, "volume.tar", []byte("whatever"))

	_, err := Open(path, Options{})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Open() error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestOpenOversizedArchive(t *testing.T) {
	path := writeTestFile(t, "volume.zip", append([]byte("PK\x03\x04"), make([]byte, 2048)...))

	_, err := Open(path, Options{MaxArchiveSize: 512})
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("Open() error = %v, want ErrFileTooLarge", err)
	}
}

func TestOpenCorruptArchives(t *testing.T) {
	// Valid signatures followed by garbage must classify as corrupt, not
	// crash the pipeline.
	tests := []struct {
		name     string
		filename string
		data     []byte
	}{
		{"zip", "v.cbz", append([]byte("PK\x03\x04"), []byte("garbage that is not a real archive")...)},
		{"rar", "v.cbr", append([]byte("Rar!\x1a\x07\x00"), []byte("garbage that is not a real archive")...)},
		{"7z", "v.cb7", append([]byte("7z\xbc\xaf\x27\x1c"), []byte("garbage that is not a real archive")...)},
		{"pdf", "v.pdf", append([]byte("%PDF-1.4\n"), []byte("garbage that is not a real document")...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTestFile(t, tt.filename, tt.data)
			reader, err := Open(path, Options{})
			if err == nil {
				// Some decoders defer parsing to the first entry read.
				_, err = reader.Next()
				reader.Close()
			}
			if !errors.Is(err, ErrCorruptArchive) {
				t.Errorf("Open() error = %v, want ErrCorruptArchive", err)
			}
		})
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		msg      string
		expected error
	}{
		{"archive: password required", ErrPasswordProtected},
		{"aes: cannot Decrypt stream", ErrPasswordProtected},
		{"file is Encrypted", ErrPasswordProtected},
		{"bad header crc", ErrCorruptArchive},
		{"unexpected EOF", ErrCorruptArchive},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			if got := classifyError(errors.New(tt.msg)); got != tt.expected {
				t.Errorf("classifyError(%q) = %v, want %v", tt.msg, got, tt.expected)
			}
		})
	}
}
