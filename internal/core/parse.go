package core

import "strings"

// ParsedDataset is the result of reading a dataset file: its trimmed header
// and one RawRow per non-blank data line.
type ParsedDataset struct {
	Header []string
	Rows   []RawRow
	Lines  []int // 1-based source line of each row
}

// ParseDataset reads a whole dataset file.
//
// A leading byte-order mark is dropped, line endings are normalized and
// blank lines are skipped. The first
// remaining line is the header, which must name every column in [Columns]
// in any order. Data rows shorter than the header are padded with empty
// cells; only header problems fail the parse.
//
// Returns ErrMalformedInput when there are no non-blank lines and a
// *MissingColumnsError when required columns are absent.
func ParseDataset(text string) (*ParsedDataset, error) {
	text = strings.TrimPrefix(text, "\uFEFF")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var (
		lines   []string
		lineNos []int
	)
	for i, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
		lineNos = append(lineNos, i+1)
	}

	if len(lines) == 0 {
		return nil, ErrMalformedInput
	}

	header := SplitLine(lines[0])
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	idx, err := ValidateHeader(header)
	if err != nil {
		return nil, err
	}

	parsed := &ParsedDataset{
		Header: header,
		Rows:   make([]RawRow, 0, len(lines)-1),
		Lines:  lineNos[1:],
	}
	for _, line := range lines[1:] {
		cols := SplitLine(line)
		parsed.Rows = append(parsed.Rows, RawRow{
			RawText:  idx.cell(cols, ColRawText),
			Type:     idx.cell(cols, ColType),
			NormText: idx.cell(cols, ColNormText),
			SpanRaw:  idx.cell(cols, ColSpanRaw),
			SpanType: idx.cell(cols, ColSpanType),
			SpanNorm: idx.cell(cols, ColSpanNorm),
		})
	}

	return parsed, nil
}

// HeaderIndex maps column names to their position in a header row.
type HeaderIndex map[string]int

// MakeHeaderIndex indexes an already trimmed header. When a name repeats,
// the first occurrence wins.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		if _, seen := idx[h]; !seen {
			idx[h] = i
		}
	}
	return idx
}

// ValidateHeader checks that every required column is present.
// Missing names are reported in canonical column order.
func ValidateHeader(header []string) (HeaderIndex, error) {
	idx := MakeHeaderIndex(header)

	var missing []string
	for _, col := range Columns() {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	return idx, nil
}

func (h HeaderIndex) cell(cols []string, name string) string {
	pos, ok := h[name]
	if !ok || pos >= len(cols) {
		return ""
	}
	return cols[pos]
}
