// backend/src/utils/csv.go
package utils

import (
	"io"
	"strings"
)

// WriteQuotedCSV writes records as RFC-4180 CSV with every field
// double-quoted and embedded quotes doubled. encoding/csv only quotes
// fields that need it, and the export contract requires a fixed,
// fully-quoted layout, so the quoting is done here.
func WriteQuotedCSV(w io.Writer, records [][]string) error {
	var sb strings.Builder
	for _, record := range records {
		sb.Reset()
		for i, field := range record {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteByte('"')
			sb.WriteString(strings.ReplaceAll(field, `"`, `""`))
			sb.WriteByte('"')
		}
		sb.WriteString("\r\n")
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
	}
	return nil
}
