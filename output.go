package console

import (
	"fmt"
	"io"
	"strings"
)

// writeTable renders headers and rows as aligned columns without borders.
func writeTable(w io.Writer, headers []string, rows [][]string) error {
	if len(headers) == 0 {
		return nil
	}
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(strings.TrimSpace(h))
	}
	for _, row := range rows {
		for i := range widths {
			if i < len(row) && len(row[i]) > widths[i] {
				widths[i] = len(row[i])
			}
		}
	}
	if _, err := fmt.Fprintln(w, formatRow(headers, widths)); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(w, formatRow(row, widths)); err != nil {
			return err
		}
	}
	return nil
}

func formatRow(row []string, widths []int) string {
	if len(widths) == 0 {
		return ""
	}
	var b strings.Builder
	b.Grow(len(widths) * 8)
	b.WriteString("  ")
	for i := range widths {
		value := ""
		if i < len(row) {
			value = strings.TrimSpace(row[i])
		}
		if i == len(widths)-1 {
			b.WriteString(value)
			break
		}
		b.WriteString(fmt.Sprintf("%-*s", widths[i], value))
		b.WriteString("   ")
	}
	return b.String()
}
