package archive

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeTestFile(t *testing.T, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
	return path
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		filename string
		expected Format
		wantErr  bool
	}{
		{"volume.zip", FormatZip, false},
		{"volume.cbz", FormatZip, false},
		{"volume.CBZ", FormatZip, false},
		{"volume.rar", FormatRar, false},
		{"volume.cbr", FormatRar, false},
		{"volume.7z", Format7z, false},
		{"volume.cb7", Format7z, false},
		{"volume.pdf", FormatPDF, false},
		{"volume.tar.gz", "", true},
		{"volume.txt", "", true},
		{"volume", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			format, err := DetectFormat(tt.filename)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedFormat) {
					t.Errorf("DetectFormat(%q) error = %v, want ErrUnsupportedFormat", tt.filename, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DetectFormat(%q) error = %v, want nil", tt.filename, err)
			}
			if format != tt.expected {
				t.Errorf("DetectFormat(%q) = %s, want %s", tt.filename, format, tt.expected)
			}
		})
	}
}

func TestInspectSignatures(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
		expected Format
	}{
		{"zip local header", "v.zip", []byte("PK\x03\x04rest-of-archive"), FormatZip},
		{"empty zip marker", "v.cbz", []byte("PK\x05\x06rest"), FormatZip},
		{"rar", "v.cbr", []byte("Rar!\x1a\x07\x00data"), FormatRar},
		{"7z", "v.cb7", []byte("7z\xbc\xaf\x27\x1cdata"), Format7z},
		{"pdf", "v.pdf", []byte("%PDF-1.7\ndata"), FormatPDF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTestFile(t, tt.filename, tt.data)
			format, err := Inspect(path, 0)
			if err != nil {
				t.Fatalf("Inspect() error = %v, want nil", err)
			}
			if format != tt.expected {
				t.Errorf("Inspect() = %s, want %s", format, tt.expected)
			}
		})
	}
}

func TestInspectSignatureMismatch(t *testing.T) {
	// Extension claims zip but the bytes are something else entirely.
	path := writeTestFile(t, "fake.cbz", []byte("this is not an archive"))

	_, err := Inspect(path, 0)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Inspect() error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestInspectSizeLimit(t *testing.T) {
	path := writeTestFile(t, "big.zip", append([]byte("PK\x03\x04"), make([]byte, 1024)...))

	if _, err := Inspect(path, 100); !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("Inspect() error = %v, want ErrFileTooLarge", err)
	}

	// Zero means unlimited
	if _, err := Inspect(path, 0); err != nil {
		t.Errorf("Inspect() error = %v, want nil with no limit", err)
	}
}

func TestInspectMissingFile(t *testing.T) {
	_, err := Inspect(filepath.Join(t.TempDir(), "nope.zip"), 0)
	if err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestInspectTruncatedHeader(t *testing.T) {
	// Shorter than any signature
	path := writeTestFile(t, "tiny.zip", []byte("P"))

	_, err := Inspect(path, 0)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Inspect() error = %v, want ErrUnsupportedFormat", err)
	}
}
