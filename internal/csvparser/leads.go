// Package csvparser reads uploaded candidate lists. The CSV must have
// a header row with an "Email" column; a "Name" column is optional and
// any other columns are ignored.
package csvparser

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"ReachPilot/internal/models"
)

// ParseLeads parses candidate rows from r. maxRows bounds how many
// data rows are read (excluding the header); rows without an email and
// malformed rows are skipped.
func ParseLeads(r io.Reader, maxRows int) ([]models.ImportRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, err
	}
	if len(headers) == 0 {
		return nil, errors.New("csv header row is empty")
	}

	emailIdx, nameIdx := -1, -1
	for i, h := range headers {
		h = strings.TrimSpace(h)
		if strings.EqualFold(h, "email") {
			emailIdx = i
		}
		if strings.EqualFold(h, "name") {
			nameIdx = i
		}
	}
	if emailIdx == -1 {
		return nil, errors.New("csv must contain an Email column")
	}

	if maxRows <= 0 {
		maxRows = 1000
	}

	rows := make([]models.ImportRow, 0)
	for len(rows) < maxRows {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) != len(headers) {
			// skip malformed row
			continue
		}

		email := strings.TrimSpace(record[emailIdx])
		if email == "" {
			continue
		}

		row := models.ImportRow{Email: email}
		if nameIdx >= 0 {
			row.Name = strings.TrimSpace(record[nameIdx])
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, errors.New("csv must contain at least one data row")
	}

	return rows, nil
}
