// ABOUTME: Reads legacy dealer directories exported as CSV (dealers.dat)
// ABOUTME: Maps header-named columns onto dealer records; unknown columns are kept as extras

package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/harperreed/dealerdesk/models"
)

const (
	formatAuto = ""
	formatJSON = "json"
	formatCSV  = "csv"
)

// dealerFormat resolves the input format, using the file extension when
// none was given.
func dealerFormat(format, path string) (string, error) {
	switch strings.ToLower(format) {
	case formatAuto:
		switch strings.ToLower(filepath.Ext(path)) {
		case ".csv", ".dat":
			return formatCSV, nil
		}
		return formatJSON, nil
	case formatJSON:
		return formatJSON, nil
	case formatCSV:
		return formatCSV, nil
	}
	return "", fmt.Errorf("unknown format %q (valid: json, csv)", format)
}

// columnKey folds a header to the form used for matching: lower case with
// spaces, dashes and underscores removed.
func columnKey(header string) string {
	r := strings.NewReplacer(" ", "", "_", "", "-", "")
	return r.Replace(strings.ToLower(strings.TrimSpace(header)))
}

type setter func(d *models.DealerRecord, value string) error

var dealerColumns = map[string]setter{
	"id":            func(d *models.DealerRecord, v string) error { d.ID = models.ID(v); return nil },
	"name":          func(d *models.DealerRecord, v string) error { d.Name = v; return nil },
	"dealer":        func(d *models.DealerRecord, v string) error { d.Name = v; return nil },
	"dealername":    func(d *models.DealerRecord, v string) error { d.Name = v; return nil },
	"address":       func(d *models.DealerRecord, v string) error { d.Address = v; return nil },
	"phone":         func(d *models.DealerRecord, v string) error { d.Phone = v; return nil },
	"email":         func(d *models.DealerRecord, v string) error { d.Email = v; return nil },
	"website":       func(d *models.DealerRecord, v string) error { d.Website = v; return nil },
	"contact":       func(d *models.DealerRecord, v string) error { d.ContactPerson = v; return nil },
	"contactperson": func(d *models.DealerRecord, v string) error { d.ContactPerson = v; return nil },
	"notes":         func(d *models.DealerRecord, v string) error { d.Notes = v; return nil },
	"status": func(d *models.DealerRecord, v string) error {
		if v == "" {
			return nil
		}
		st, err := models.ParseStatus(v)
		if err != nil {
			return err
		}
		d.Status = st
		return nil
	},
	"lastcontact": func(d *models.DealerRecord, v string) error {
		if v == "" {
			return nil
		}
		date, err := models.ParseDate(v)
		if err != nil {
			return err
		}
		d.LastContact = &date
		return nil
	},
}

// decodeDealersCSV parses a header row followed by one dealer per row. Rows
// whose field count differs from the header are skipped and counted.
func decodeDealersCSV(data []byte) ([]models.DealerRecord, int, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read CSV header: %w", err)
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(headers[i], "\ufeff"))
	}

	var (
		dealers []models.DealerRecord
		skipped int
	)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("failed to parse CSV: %w", err)
		}
		line, _ := reader.FieldPos(0)
		if len(row) != len(headers) {
			log.Printf("Skipping CSV line %d: %d fields, header has %d", line, len(row), len(headers))
			skipped++
			continue
		}

		var d models.DealerRecord
		for i, header := range headers {
			value := strings.TrimSpace(row[i])
			if set, ok := dealerColumns[columnKey(header)]; ok {
				if err := set(&d, value); err != nil {
					return nil, 0, fmt.Errorf("CSV line %d, column %q: %w", line, header, err)
				}
				continue
			}
			if header == "" || value == "" {
				continue
			}
			raw, err := json.Marshal(value)
			if err != nil {
				return nil, 0, fmt.Errorf("CSV line %d, column %q: %w", line, header, err)
			}
			if d.Extra == nil {
				d.Extra = make(map[string]json.RawMessage)
			}
			d.Extra[header] = raw
		}
		dealers = append(dealers, d)
	}
	return dealers, skipped, nil
}
