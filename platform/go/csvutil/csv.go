// Package csvutil renders export files with every field quoted and CRLF line endings.
package csvutil

import "strings"

const lineEnd = "\r\n"

// Encode renders headers followed by rows. Rows shorter than headers are written as they are.
func Encode(headers []string, rows [][]string) string {
	var b strings.Builder
	writeLine(&b, headers)
	for _, row := range rows {
		writeLine(&b, row)
	}
	return b.String()
}

func writeLine(b *strings.Builder, fields []string) {
	for i, field := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(field, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteString(lineEnd)
}
