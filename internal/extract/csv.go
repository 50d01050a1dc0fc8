package extract

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

// extractCSV renders a CSV file as one line of space-joined fields per
// record, which keeps column values adjacent for chunking and search.
func extractCSV(content []byte) (string, error) {
	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parse CSV: %w", err)
	}
	var buf strings.Builder
	for _, rec := range records {
		buf.WriteString(strings.Join(rec, " "))
		buf.WriteByte('\n')
	}
	return strings.TrimSpace(buf.String()), nil
}
