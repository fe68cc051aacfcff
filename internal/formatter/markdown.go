// Package formatter renders harvest summaries as markdown tables.
package formatter

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// minColumnWidth keeps separator rows at least "---" wide.
const minColumnWidth = 3

// FormatTable renders header and rows as an aligned markdown table.
// Widths use display width so wide and combining characters line up.
// Short rows are padded with empty cells; extra cells are dropped.
// Cells are trimmed, flattened to one line and have "|" escaped.
func FormatTable(header []string, rows [][]string) string {
	colCount := len(header)
	if colCount == 0 {
		return ""
	}

	// 1. Calculate max widths (using display width)
	colWidths := make([]int, colCount)

	measure := func(row []string) {
		for i := 0; i < len(row) && i < colCount; i++ {
			if width := runewidth.StringWidth(cleanCell(row[i])); width > colWidths[i] {
				colWidths[i] = width
			}
		}
	}

	measure(header)

	for _, row := range rows {
		measure(row)
	}

	for i := range colWidths {
		if colWidths[i] < minColumnWidth {
			colWidths[i] = minColumnWidth
		}
	}

	// 2. Reconstruct lines
	lines := make([]string, 0, len(rows)+2)
	lines = append(lines, formatRow(header, colWidths), formatSeparator(colWidths))

	for _, row := range rows {
		lines = append(lines, formatRow(row, colWidths))
	}

	return strings.Join(lines, "\n") + "\n"
}

func formatRow(row []string, colWidths []int) string {
	var sb strings.Builder

	sb.WriteString("|")

	for j, width := range colWidths {
		sb.WriteString(" ")

		content := ""
		if j < len(row) {
			content = cleanCell(row[j])
		}

		sb.WriteString(content)

		// Pad with spaces based on display width
		if padding := width - runewidth.StringWidth(content); padding > 0 {
			sb.WriteString(strings.Repeat(" ", padding))
		}

		sb.WriteString(" |")
	}

	return sb.String()
}

// cellReplacer keeps a cell on one line and escapes column separators.
var cellReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "|", "\\|")

func cleanCell(cell string) string {
	return cellReplacer.Replace(strings.TrimSpace(cell))
}

func formatSeparator(colWidths []int) string {
	var sb strings.Builder

	sb.WriteString("|")

	for _, width := range colWidths {
		sb.WriteString(" ")
		sb.WriteString(strings.Repeat("-", width))
		sb.WriteString(" |")
	}

	return sb.String()
}
