package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"propiedades-api/models"
)

// rawHeader is the column layout the scraping job exports. The features
// column packs the short labelled tokens joined by "|".
var rawHeader = []string{
	"id", "price", "expensas", "location", "features",
	"description", "address", "link", "scrap_date",
}

// ReadRawListings loads a scraped raw batch from the CSV file at path.
// The header row is validated against the expected layout; a malformed
// scrap_date cell is left as the zero time rather than failing the row.
func ReadRawListings(path string) ([]*models.RawListing, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(rawHeader)

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("csv: read header: %w", err)
	}
	for i, col := range rawHeader {
		if i >= len(header) || strings.TrimSpace(header[i]) != col {
			return nil, fmt.Errorf("csv: unexpected header, want %v got %v", rawHeader, header)
		}
	}

	var listings []*models.RawListing
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: read row: %w", err)
		}

		l := &models.RawListing{
			ID:          row[0],
			Price:       row[1],
			Expensas:    row[2],
			Location:    row[3],
			Description: row[5],
			Address:     row[6],
			Link:        row[7],
		}
		if row[4] != "" {
			l.Features = strings.Split(row[4], "|")
		}
		if t, err := time.Parse(time.RFC3339, row[8]); err == nil {
			l.ScrapDate = t
		}

		listings = append(listings, l)
	}

	return listings, nil
}
