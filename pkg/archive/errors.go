package archive

import (
	"errors"
	"strings"
)

// Sentinel errors for the ingestion pipeline. Callers dispatch on these
// with errors.Is; wrapped variants carry the file-level detail.
var (
	ErrUnsupportedFormat = errors.New("unsupported archive format")
	ErrFileTooLarge      = errors.New("archive exceeds size limit")
	ErrCorruptArchive    = errors.New("corrupt archive")
	ErrEmptyArchive      = errors.New("archive contains no images")
	ErrPasswordProtected = errors.New("archive is password protected")
	ErrUnsupportedPDF    = errors.New("unsupported pdf feature")
	ErrEntryTooLarge     = errors.New("archive entry exceeds size limit")
)

// classifyError folds library-specific failures into the pipeline
// sentinels. Encryption errors vary by backend, so match on the message.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "password") || strings.Contains(msg, "encrypt") || strings.Contains(msg, "decrypt") {
		return ErrPasswordProtected
	}
	return ErrCorruptArchive
}
