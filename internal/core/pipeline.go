package core

// ProcessDataset runs the full ingestion pipeline over a dataset file:
// parse, normalize each row, validate, and collect accepted rows in their
// canonical form.
//
// Header failures (ErrMalformedInput, *MissingColumnsError) are returned
// before any row is touched. Row failures never abort the batch; they are
// counted and listed in BatchResult.Rejected.
func ProcessDataset(text string) (*BatchResult, error) {
	parsed, err := ParseDataset(text)
	if err != nil {
		return nil, err
	}
	return ProcessRows(parsed), nil
}

// ProcessRows normalizes and validates already parsed rows.
func ProcessRows(parsed *ParsedDataset) *BatchResult {
	result := &BatchResult{
		TotalRows:    len(parsed.Rows),
		AcceptedRows: make([]Row, 0, len(parsed.Rows)),
	}

	for i, raw := range parsed.Rows {
		row := NormalizeRow(raw)
		if row.Corrected {
			result.CorrectedRows++
		}

		outcome := ValidateRow(row)
		if !outcome.Accepted {
			line := 0
			if i < len(parsed.Lines) {
				line = parsed.Lines[i]
			}
			result.Rejected = append(result.Rejected, RejectedRow{Line: line, Reason: outcome.Reason})
			continue
		}

		result.ValidRows++
		result.AcceptedRows = append(result.AcceptedRows, row.Canonical())
	}

	return result
}
