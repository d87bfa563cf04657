package security

import (
	"bytes"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

var (
	ErrNoExtension         = errors.New("file has no extension")
	ErrExtensionNotAllowed = errors.New("file extension not allowed, expected .csv or .xlsx")
	ErrContentMismatch     = errors.New("file content does not match extension")
)

// Magic byte signatures for allowed import types; nil means text content
var magicBytes = map[string][][]byte{
	".xlsx": {{0x50, 0x4B, 0x03, 0x04}}, // ZIP (PK..)
	".csv":  nil,
}

// ValidateImportFile checks an uploaded student list in two layers:
// the extension whitelist, then the content signature (ZIP for .xlsx,
// UTF-8 text without NUL bytes for .csv).
func ValidateImportFile(filename string, data []byte) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return ErrNoExtension
	}
	signatures, ok := magicBytes[ext]
	if !ok {
		return errors.Join(ErrExtensionNotAllowed, errors.New(ext))
	}

	if signatures == nil {
		if !isText(data) {
			return ErrContentMismatch
		}
		return nil
	}
	for _, sig := range signatures {
		if bytes.HasPrefix(data, sig) {
			return nil
		}
	}
	return ErrContentMismatch
}

func isText(data []byte) bool {
	if bytes.IndexByte(data, 0) >= 0 || !utf8.Valid(data) {
		return false
	}
	return strings.HasPrefix(http.DetectContentType(data), "text/")
}
