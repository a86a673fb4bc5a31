package services

import (
	"sort"

	"propiedades-api/models"
	"propiedades-api/utils"
)

// TransformReport counts what happened to a batch during transformation.
type TransformReport struct {
	Total             int
	InvalidPrices     int
	InvalidExpensas   int
	ImputedExpensas   int
	MedianExpensas    float64
	UnmappedBarrios   int
	MissingSuperficie int
}

// Transformer turns raw scraped batches into normalized Property records.
type Transformer struct {
	logger *utils.Logger
}

// NewTransformer creates a Transformer with the given logger.
func NewTransformer(logger *utils.Logger) *Transformer {
	return &Transformer{logger: logger}
}

// Transform runs every field normalizer over the batch and imputes the
// batch median into records whose expensas failed to parse. The output
// contains every input record: records missing price or barrio are kept
// here and dropped later by the load policy.
func (t *Transformer) Transform(raw []*models.RawListing) ([]*models.Property, *TransformReport) {
	report := &TransformReport{Total: len(raw)}
	props := make([]*models.Property, 0, len(raw))

	var parsedExpensas []float64

	for _, r := range raw {
		p := &models.Property{
			SourceID:    r.ID,
			Address:     r.Address,
			Description: r.Description,
			Link:        r.Link,
		}
		if !r.ScrapDate.IsZero() {
			d := r.ScrapDate
			p.ScrapDate = &d
		}

		p.PriceUSD = ParsePrice(r.Price)
		if p.PriceUSD == nil {
			report.InvalidPrices++
		}

		p.ExpensasARS = ParseExpensas(r.Expensas)
		if p.ExpensasARS == nil {
			report.InvalidExpensas++
		} else {
			parsedExpensas = append(parsedExpensas, *p.ExpensasARS)
		}

		p.Barrio = StandardizeBarrio(r.Location)
		if p.Barrio == nil {
			report.UnmappedBarrios++
		}

		fs := ParseFeatures(r.Features)
		p.Ambientes = intOrZero(fs.Ambientes)
		p.Dormitorios = intOrZero(fs.Dormitorios)
		p.Banos = intOrZero(fs.Banos)
		p.Cocheras = intOrZero(fs.Cocheras)
		p.SuperficieTotalM2 = fs.SuperficieTotalM2
		if p.SuperficieTotalM2 == nil {
			report.MissingSuperficie++
		}

		props = append(props, p)
	}

	// Expensas imputation happens once per batch, with the median of the
	// values that did parse in this same batch.
	if len(parsedExpensas) > 0 {
		median := median(parsedExpensas)
		report.MedianExpensas = median
		for _, p := range props {
			if p.ExpensasARS == nil {
				m := median
				p.ExpensasARS = &m
				report.ImputedExpensas++
			}
		}
	}

	t.logger.Info("[transform] %d records — invalid prices: %d | unmapped barrios: %d | expensas imputed: %d (median $%.2f ARS)",
		report.Total, report.InvalidPrices, report.UnmappedBarrios, report.ImputedExpensas, report.MedianExpensas)

	return props, report
}

// median returns the statistical median of values. Even-length inputs
// average the two middle elements.
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
