package models

import "time"

// RawListing holds one unprocessed scraped record, exactly as exported by the
// scraping job. Every field except the identity ones is free text.
type RawListing struct {
	ID          string
	Price       string
	Expensas    string
	Location    string
	Features    []string
	Description string
	Address     string
	Link        string
	ScrapDate   time.Time
}

// FeatureSet is the result of parsing a raw listing's feature tokens.
// A nil field means no token populated it.
type FeatureSet struct {
	Ambientes         *int
	Dormitorios       *int
	Banos             *int
	SuperficieTotalM2 *int
	Cocheras          *int
}

// Property is the normalized, typed record matching the propiedades table.
// Pointer fields are nullable: a record with nil PriceUSD or Barrio is
// dropped at load time, never stored.
type Property struct {
	ID                int64      `json:"id"`
	SourceID          string     `json:"source_id"`
	PriceUSD          *float64   `json:"price_usd"`
	ExpensasARS       *float64   `json:"expensas_ars"`
	Barrio            *string    `json:"barrio"`
	Address           string     `json:"address"`
	Ambientes         int        `json:"ambientes"`
	Dormitorios       int        `json:"dormitorios"`
	Banos             int        `json:"banos"`
	SuperficieTotalM2 *int       `json:"superficie_total_m2"`
	Cocheras          int        `json:"cocheras"`
	Description       string     `json:"description"`
	Link              string     `json:"link"`
	ScrapDate         *time.Time `json:"scrap_date"`
}

// PropertyUpdate carries the mutable subset of a stored property. Nil fields
// are left untouched.
type PropertyUpdate struct {
	PriceUSD    *float64 `json:"price_usd"`
	ExpensasARS *float64 `json:"expensas_ars"`
	Description *string  `json:"description"`
}

// IsEmpty reports whether the update changes nothing.
func (u *PropertyUpdate) IsEmpty() bool {
	return u.PriceUSD == nil && u.ExpensasARS == nil && u.Description == nil
}

// BarrioStats aggregates stored prices for one barrio.
type BarrioStats struct {
	Barrio              string  `json:"barrio"`
	CantidadPropiedades int     `json:"cantidad_propiedades"`
	PrecioPromedioUSD   float64 `json:"precio_promedio_usd"`
	PrecioMinUSD        float64 `json:"precio_min_usd"`
	PrecioMaxUSD        float64 `json:"precio_max_usd"`
	PrecioPromedioM2USD float64 `json:"precio_promedio_m2_usd"`
}

// MarketSnapshot aggregates one scrape date's worth of stored listings.
type MarketSnapshot struct {
	ScrapDate           time.Time `json:"scrap_date"`
	CantidadPropiedades int       `json:"cantidad_propiedades"`
	PrecioPromedioUSD   float64   `json:"precio_promedio_usd"`
}
