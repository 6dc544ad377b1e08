package csv

import (
	"bytes"
	"strings"
)

const lineEnding = "\n"

// RowToCsv escapes one line of fields without the line ending.
func RowToCsv(fields []string) string {
	escaped := make([]string, len(fields))
	for i, field := range fields {
		escaped[i] = escapeField(field)
	}
	return strings.Join(escaped, ",")
}

// ToCsv writes the header followed by every row. The output is byte-identical for identical rows.
func ToCsv(rows []Row) bytes.Buffer {
	var b bytes.Buffer

	b.WriteString(RowToCsv(headers))
	b.WriteString(lineEnding)

	for _, row := range rows {
		b.WriteString(RowToCsv(row.GetRowForCsv()))
		b.WriteString(lineEnding)
	}

	return b
}

// Serialize is ToCsv as a string.
func Serialize(rows []Row) string {
	b := ToCsv(rows)
	return b.String()
}
