package core

import "strings"

// SplitLine splits one physical line into comma-separated columns.
//
// Fields may be wrapped in double quotes; inside quotes a comma is literal
// and "" stands for a single quote character. Any other quote toggles
// quoting wherever it appears. The result always has at least one column.
// Quoted fields spanning several lines are not supported.
func SplitLine(line string) []string {
	var (
		cols     []string
		cur      strings.Builder
		inQuotes bool
	)

	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == '"' && inQuotes && i+1 < len(line) && line[i+1] == '"':
			cur.WriteByte('"')
			i++
		case ch == '"':
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			cols = append(cols, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(ch)
		}
	}

	return append(cols, cur.String())
}
