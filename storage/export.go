package storage

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
)

// ExportCSV serializes the full current record set as CSV with a fixed
// header row. Quoting follows RFC 4180 via encoding/csv.
func (s *Store) ExportCSV(ctx context.Context) (string, error) {
	expenses, err := s.List(ctx, "", "")
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"id", "date", "amount", "category", "note"}); err != nil {
		return "", err
	}
	for _, exp := range expenses {
		row := []string{
			strconv.FormatUint(uint64(exp.ID), 10),
			exp.Date,
			exp.Amount.String(),
			exp.Category,
			exp.Note,
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ExportJSON serializes the full current record set as a JSON array of
// objects with the same fields as the CSV export.
func (s *Store) ExportJSON(ctx context.Context) (string, error) {
	expenses, err := s.List(ctx, "", "")
	if err != nil {
		return "", err
	}

	b, err := json.MarshalIndent(expenses, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode expenses: %w", err)
	}
	return string(b), nil
}
