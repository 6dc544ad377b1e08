package csv

import (
	"fmt"
	"strings"
	"time"
)

// FormatDatetime renders mm/dd/yyyy hh:mm:ss in UTC.
func FormatDatetime(t time.Time) string {
	t = t.UTC()
	result := fmt.Sprintf("%02d/%02d/%d %02d:%02d:%02d",
		t.Month(), t.Day(), t.Year(),
		t.Hour(), t.Minute(), t.Second())

	return result
}

// escapeField quotes a value only when it holds a comma, a double quote or a line break.
func escapeField(value string) string {
	if !strings.ContainsAny(value, ",\"\r\n") {
		return value
	}
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}
