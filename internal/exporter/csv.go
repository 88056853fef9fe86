// Package exporter writes derived datasets to CSV for spreadsheet
// consumption, with encoding chosen for the target audience: EUC-KR for
// Korean Excel installs, UTF-8 with BOM otherwise.
package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// Encoding selects the byte encoding of exported CSV files.
type Encoding string

const (
	// EncodingEUCKR produces EUC-KR bytes, the encoding legacy Korean
	// Excel expects.
	EncodingEUCKR Encoding = "euc-kr"
	// EncodingUTF8BOM produces UTF-8 with a leading byte order mark so
	// Excel detects the encoding.
	EncodingUTF8BOM Encoding = "utf-8-bom"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// NewCSVWriter wraps w with the requested encoding and returns a ready
// csv.Writer. The caller must Flush the writer and check its Error before
// trusting the output.
func NewCSVWriter(w io.Writer, enc Encoding) (*csv.Writer, error) {
	switch enc {
	case EncodingEUCKR:
		return csv.NewWriter(transform.NewWriter(w, korean.EUCKR.NewEncoder())), nil
	case EncodingUTF8BOM:
		if _, err := w.Write(utf8BOM); err != nil {
			return nil, fmt.Errorf("failed to write BOM: %w", err)
		}
		return csv.NewWriter(w), nil
	default:
		return nil, fmt.Errorf("unknown export encoding: %q", enc)
	}
}
