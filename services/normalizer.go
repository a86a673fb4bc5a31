package services

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"propiedades-api/models"
	"propiedades-api/utils"
)

// Validation thresholds. Prices below minPriceUSD are per-unit or placeholder
// values, not sale prices. The expensas bounds match the DECIMAL(10,2) column.
var (
	minPriceUSD    = decimal.NewFromInt(10_000)
	minExpensasARS = decimal.NewFromInt(100)
	maxExpensasARS = decimal.NewFromInt(100_000_000)
)

// intRegexp captures the first integer embedded in a feature token.
var intRegexp = regexp.MustCompile(`\d+`)

// OfficialBarrios is the fixed list of CABA neighborhoods a listing may
// resolve to, in official casing.
var OfficialBarrios = []string{
	"Recoleta", "Palermo", "Belgrano", "Caballito", "Almagro", "Villa Crespo",
	"Nuñez", "Saavedra", "Villa Urquiza", "Flores", "San Nicolas", "Retiro",
	"Balvanera", "Monserrat", "San Telmo", "La Boca", "Barracas", "Constitucion",
	"Parque Patricios", "Boedo", "San Cristobal", "Liniers", "Mataderos",
	"Villa Lugano", "Villa Riachuelo", "Villa Soldati", "Pompeya", "Parque Chacabuco",
	"Parque Avellaneda", "Versalles", "Villa Real", "Monte Castro", "Villa Devoto",
	"Villa del Parque", "Villa Santa Rita", "Agronomia", "Chacarita", "Paternal",
	"Villa Ortuzar", "Coghlan", "Colegiales", "Puerto Madero", "Parque Chas",
	"Floresta", "Villa Luro", "Villa Pueyrredon", "Villa General Mitre", "Velez Sarsfield",
}

// barrioExceptions maps colloquial and sub-neighborhood names to their
// containing official barrio. A hit here wins over positional parsing.
var barrioExceptions = map[string]string{
	"barrio norte":         "Recoleta",
	"centro / microcentro": "San Nicolas",
	"congreso":             "Balvanera",
	"once":                 "Balvanera",
	"abasto":               "Almagro",
	"parque centenario":    "Caballito",
	"tribunales":           "San Nicolas",
	"la paternal":          "Paternal",
	"catalinas":            "Retiro",
}

// officialByNorm indexes the official list by its accent-stripped lowercase
// form for case- and accent-insensitive lookup.
var officialByNorm = func() map[string]string {
	m := make(map[string]string, len(OfficialBarrios))
	for _, b := range OfficialBarrios {
		m[utils.NormalizeText(b)] = b
	}
	return m
}()

// IsOfficialBarrio reports whether name is exactly one of the canonical
// barrio names (official casing).
func IsOfficialBarrio(name string) bool {
	canonical, ok := officialByNorm[utils.NormalizeText(name)]
	return ok && canonical == name
}

// ParsePrice cleans a raw sale-price string ("USD 250.000") into a USD value.
// Returns nil for empty input, unparseable text, or values below the 10,000
// threshold. Parse failures never surface as errors.
func ParsePrice(raw string) *float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}

	s = strings.ToUpper(s)
	s = strings.ReplaceAll(s, "USD", "")
	s = strings.ReplaceAll(s, ".", "")
	s = strings.TrimSpace(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	if d.LessThan(minPriceUSD) {
		return nil
	}

	v := d.InexactFloat64()
	return &v
}

// ParseExpensas cleans a raw monthly-expenses string ("$ 45.000 Expensas")
// into an ARS value. Values outside [100, 100,000,000) are nil: the lower
// bound rejects placeholders, the upper bound is the storage column limit.
func ParseExpensas(raw string) *float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}

	s = strings.ToUpper(s)
	s = strings.ReplaceAll(s, "ARS", "")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "EXPENSAS", "")
	s = strings.ReplaceAll(s, ".", "")
	s = strings.TrimSpace(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	if d.LessThan(minExpensasARS) || d.GreaterThanOrEqual(maxExpensasARS) {
		return nil
	}

	v := d.InexactFloat64()
	return &v
}

// StandardizeBarrio resolves a free-text location ("Palermo Hollywood,
// Palermo", "Barrio Norte, Capital Federal") to an official barrio name.
//
// Resolution order:
//  1. pre-comma segment against the exception map (always wins);
//  2. segment after the first comma against the official list;
//  3. pre-comma segment against the official list.
//
// Returns nil when nothing matches; the record is dropped later at load time.
func StandardizeBarrio(raw string) *string {
	parts := strings.Split(raw, ",")
	primary := utils.NormalizeText(parts[0])

	if canonical, ok := barrioExceptions[primary]; ok {
		return &canonical
	}

	if len(parts) > 1 {
		if official, ok := officialByNorm[utils.NormalizeText(parts[1])]; ok {
			return &official
		}
	}

	if official, ok := officialByNorm[primary]; ok {
		return &official
	}

	return nil
}

// ParseFeatures extracts structured counts from raw feature tokens such as
// "2 amb.", "50 m² tot." or "1 coch.". Each token contributes the first
// integer it contains to the field whose marker substring it carries.
// Tokens with no integer or no known marker are ignored.
func ParseFeatures(tokens []string) models.FeatureSet {
	var fs models.FeatureSet

	for _, token := range tokens {
		lower := strings.ToLower(token)

		match := intRegexp.FindString(lower)
		if match == "" {
			continue
		}
		n, err := strconv.Atoi(match)
		if err != nil {
			continue
		}

		switch {
		case strings.Contains(lower, "amb."):
			fs.Ambientes = &n
		case strings.Contains(lower, "dorm."):
			fs.Dormitorios = &n
		case strings.Contains(lower, "baño"):
			fs.Banos = &n
		case strings.Contains(lower, "m² tot."):
			fs.SuperficieTotalM2 = &n
		case strings.Contains(lower, "coch."):
			fs.Cocheras = &n
		}
	}

	return fs
}
