// Package report renders flat row sets as CSV exports.
package report

import (
	"strings"
	"time"
)

// RenderCSV produces the export format: a bare comma-joined header line,
// then one line per row with every field quoted. Embedded quotes are
// doubled per RFC 4180.
func RenderCSV(headers []string, rows [][]string) string {
	var sb strings.Builder
	sb.WriteString(strings.Join(headers, ","))
	for _, row := range rows {
		sb.WriteByte('\n')
		for i, field := range row {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteByte('"')
			sb.WriteString(strings.ReplaceAll(field, `"`, `""`))
			sb.WriteByte('"')
		}
	}
	return sb.String()
}

// Filename builds the download name `<name>_<ISO-date>.csv`.
func Filename(name string, now time.Time) string {
	return name + "_" + now.UTC().Format("2006-01-02") + ".csv"
}
