package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Cheertaboi/coupon-management-service/internal/models"
)

var ErrEmptyFile = errors.New("csv file is empty")

var aliases = map[string]string{
	"coupon_description": "description",
	"coupon_code":        "code",
}

// ParseCSV reads a header row followed by coupon rows. Header names are
// matched case-insensitively with spaces treated as underscores. Blank lines
// are skipped; Line is the 1-based line in the file.
func ParseCSV(r io.Reader) ([]models.ImportRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	names := make([]string, len(header))
	hasCode := false
	for i, h := range header {
		names[i] = normalizeHeader(h)
		if names[i] == "code" {
			hasCode = true
		}
	}
	if !hasCode {
		return nil, fmt.Errorf("csv header must include a code column")
	}

	rows := []models.ImportRow{}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line, _ := cr.FieldPos(0)

		if blank(record) {
			continue
		}

		fields := make(map[string]string, len(names))
		for i, name := range names {
			if name == "" || i >= len(record) {
				continue
			}
			fields[name] = strings.TrimSpace(record[i])
		}
		rows = append(rows, models.ImportRow{Line: line, Fields: fields})
	}

	return rows, nil
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, " ", "_")
	if a, ok := aliases[h]; ok {
		return a
	}
	return h
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
