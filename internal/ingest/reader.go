package ingest

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeFile reads a delimited text file and returns its content as UTF-8.
// The primary encoding is EUC-KR (cp949, the usual export encoding for the
// shop admin); when that decode produces replacement runes the raw bytes are
// retried as UTF-8. A file readable under neither encoding is an error the
// caller treats as "skip this file".
func DecodeFile(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return decodeBytes(raw)
}

func decodeBytes(raw []byte) (string, error) {
	// A UTF-8 BOM settles the question outright.
	if bytes.HasPrefix(raw, utf8BOM) {
		trimmed := raw[len(utf8BOM):]
		if !utf8.Valid(trimmed) {
			return "", fmt.Errorf("file has UTF-8 BOM but invalid UTF-8 content")
		}
		return string(trimmed), nil
	}

	decoded, _, err := transform.Bytes(korean.EUCKR.NewDecoder(), raw)
	if err == nil && !strings.ContainsRune(string(decoded), utf8.RuneError) {
		return string(decoded), nil
	}

	if utf8.Valid(raw) {
		return string(raw), nil
	}

	return "", fmt.Errorf("content is neither valid EUC-KR nor valid UTF-8")
}
