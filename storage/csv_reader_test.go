package storage

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleCSV = `id,price,expensas,location,features,description,address,link,scrap_date
prop-1,USD 250.000,$ 45.000 Expensas,"Palermo Hollywood, Palermo",2 amb.|50 m² tot.|1 coch.,Luminoso con balcón,Gorriti 4800,https://example.com/prop-1,2024-06-01T00:00:00Z
prop-2,Consultar,,Barrio Norte,,,Santa Fe 1200,https://example.com/prop-2,not-a-date
`

func writeSampleCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "raw.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadRawListings(t *testing.T) {
	listings, err := ReadRawListings(writeSampleCSV(t, sampleCSV))
	if err != nil {
		t.Fatalf("ReadRawListings: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("expected 2 listings, got %d", len(listings))
	}

	first := listings[0]
	if first.ID != "prop-1" || first.Price != "USD 250.000" {
		t.Errorf("first record parsed wrong: %+v", first)
	}
	if len(first.Features) != 3 || first.Features[1] != "50 m² tot." {
		t.Errorf("features = %v; want 3 pipe-separated tokens", first.Features)
	}
	if first.ScrapDate.IsZero() {
		t.Error("scrap_date should parse for a valid RFC3339 cell")
	}

	second := listings[1]
	if second.Features != nil {
		t.Errorf("empty features cell should yield nil, got %v", second.Features)
	}
	if !second.ScrapDate.IsZero() {
		t.Error("malformed scrap_date should leave the zero time")
	}
}

func TestReadRawListingsBadHeader(t *testing.T) {
	path := writeSampleCSV(t, "foo,bar\n1,2\n")
	if _, err := ReadRawListings(path); err == nil {
		t.Error("expected error for unexpected header")
	}
}

func TestReadRawListingsMissingFile(t *testing.T) {
	if _, err := ReadRawListings("/nonexistent/raw.csv"); err == nil {
		t.Error("expected error for missing file")
	}
}
