package formatter

import (
	"testing"
)

func TestFormatTable(t *testing.T) {
	tests := []struct {
		name     string
		header   []string
		rows     [][]string
		expected string
	}{
		{
			name:   "Basic table formatting",
			header: []string{"Collection", "State"},
			rows: [][]string{
				{"articles", "done"},
				{"questions", "aborted"},
			},
			expected: `| Collection | State   |
| ---------- | ------- |
| articles   | done    |
| questions  | aborted |
`,
		},
		{
			name:   "Minimum column width",
			header: []string{"A", "B"},
			rows:   [][]string{{"1", "2"}},
			expected: `| A   | B   |
| --- | --- |
| 1   | 2   |
`,
		},
		{
			name:   "Short and long rows",
			header: []string{"Col A", "Col B"},
			rows:   [][]string{{"only"}, {"x", "y", "dropped"}},
			expected: `| Col A | Col B |
| ----- | ----- |
| only  |       |
| x     | y     |
`,
		},
		{
			name:   "Trim spaces in cells",
			header: []string{"  Col  "},
			rows:   [][]string{{"  val  "}},
			expected: `| Col |
| --- |
| val |
`,
		},
		{
			name:   "Padded cells measured after trimming",
			header: []string{"Key", "Value"},
			rows:   [][]string{{"   a   ", "b"}},
			expected: `| Key | Value |
| --- | ----- |
| a   | b     |
`,
		},
		{
			name:   "Pipes escaped and newlines flattened",
			header: []string{"Error"},
			rows:   [][]string{{"bad | value\nsecond line"}},
			expected: `| Error                    |
| ------------------------ |
| bad \| value second line |
`,
		},
		{
			name:   "Wide characters use display width",
			header: []string{"Name", "N"},
			rows:   [][]string{{"中文", "1"}, {"abcd", "2"}},
			expected: `| Name | N   |
| ---- | --- |
| 中文 | 1   |
| abcd | 2   |
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatTable(tt.header, tt.rows)
			if got != tt.expected {
				t.Errorf("FormatTable() mismatch\nGot:\n%s\nExpected:\n%s", got, tt.expected)
			}
		})
	}
}

func TestFormatTable_NoHeader(t *testing.T) {
	if got := FormatTable(nil, [][]string{{"x"}}); got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
}
