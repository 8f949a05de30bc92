package archive

import (
	"archive/zip"
	"fmt"
	"io"
)

// zipReader walks the central directory of zip and cbz volumes.
type zipReader struct {
	rc       *zip.ReadCloser
	pos      int
	maxEntry int64
}

func openZip(path string, opts Options) (*zipReader, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}

	return &zipReader{rc: rc, maxEntry: opts.MaxEntrySize}, nil
}

func (z *zipReader) Next() (Entry, error) {
	for z.pos < len(z.rc.File) {
		file := z.rc.File[z.pos]
		z.pos++

		if file.FileInfo().IsDir() || !isImageEntry(file.Name) {
			continue
		}
		// Bit 0 of the general purpose flags marks an encrypted entry.
		if file.Flags&0x1 != 0 {
			return Entry{}, fmt.Errorf("%w: %s", ErrPasswordProtected, file.Name)
		}

		rc, err := file.Open()
		if err != nil {
			return Entry{}, fmt.Errorf("%w: opening %s: %v", ErrCorruptArchive, file.Name, err)
		}
		data, err := readEntryData(rc, file.Name, z.maxEntry)
		rc.Close()
		if err != nil {
			return Entry{}, err
		}

		return Entry{Name: file.Name, Data: data}, nil
	}

	return Entry{}, io.EOF
}

func (z *zipReader) Close() error {
	return z.rc.Close()
}
