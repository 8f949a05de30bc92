package archive

import (
	"fmt"
	"io"

	"github.com/bodgit/sevenzip"
)

// sevenZipReader walks 7z and cb7 volumes through the bodgit decoder.
type sevenZipReader struct {
	rc       *sevenzip.ReadCloser
	pos      int
	maxEntry int64
}

func openSevenZip(path string, opts Options) (*sevenZipReader, error) {
	rc, err := sevenzip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open 7z: %w", classifyError(err))
	}

	return &sevenZipReader{rc: rc, maxEntry: opts.MaxEntrySize}, nil
}

func (s *sevenZipReader) Next() (Entry, error) {
	for s.pos < len(s.rc.File) {
		file := s.rc.File[s.pos]
		s.pos++

		if file.FileInfo().IsDir() || !isImageEntry(file.Name) {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return Entry{}, fmt.Errorf("failed to open 7z entry %s: %w", file.Name, classifyError(err))
		}
		data, err := readEntryData(rc, file.Name, s.maxEntry)
		rc.Close()
		if err != nil {
			return Entry{}, err
		}

		return Entry{Name: file.Name, Data: data}, nil
	}

	return Entry{}, io.EOF
}

func (s *sevenZipReader) Close() error {
	return s.rc.Close()
}
