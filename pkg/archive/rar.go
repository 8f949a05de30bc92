package archive

import (
	"fmt"
	"io"

	"github.com/nwaples/rardecode/v2"
)

// rarReader streams rar and cbr volumes. Rar has no central directory,
// so entries come in archive order straight off the decoder.
type rarReader struct {
	rc       *rardecode.ReadCloser
	maxEntry int64
}

func openRar(path string, opts Options) (*rarReader, error) {
	rc, err := rardecode.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open rar: %w", classifyError(err))
	}

	return &rarReader{rc: rc, maxEntry: opts.MaxEntrySize}, nil
}

func (r *rarReader) Next() (Entry, error) {
	for {
		header, err := r.rc.Next()
		if err == io.EOF {
			return Entry{}, io.EOF
		}
		if err != nil {
			return Entry{}, fmt.Errorf("failed to read rar entry: %w", classifyError(err))
		}

		if header.IsDir || !isImageEntry(header.Name) {
			continue
		}

		data, err := readEntryData(r.rc, header.Name, r.maxEntry)
		if err != nil {
			return Entry{}, err
		}

		return Entry{Name: header.Name, Data: data}, nil
	}
}

func (r *rarReader) Close() error {
	return r.rc.Close()
}
