package ml

import (
	"strings"

	"propiedades-api/utils"
)

// descriptionKeywords are the amenity and condition terms mined from listing
// descriptions. Each becomes one 0/1 column in the feature vector. The set
// is fixed at training time; changing it requires retraining.
var descriptionKeywords = []struct {
	Column string
	Term   string
}{
	{"has_balcon", "balcon"},
	{"has_luminoso", "luminoso"},
	{"has_seguridad", "seguridad"},
	{"has_pileta", "pileta"},
	{"has_gimnasio", "gimnasio"},
	{"has_sum", "sum"},
	{"has_parrilla", "parrilla"},
	{"has_estrenar", "estrenar"},
	{"has_reciclado", "reciclado"},
	{"has_cochera_cubierta", "cochera cubierta"},
	{"has_amenities", "amenities"},
}

// KeywordColumns returns the column names the extractor emits, in order.
func KeywordColumns() []string {
	cols := make([]string, len(descriptionKeywords))
	for i, kw := range descriptionKeywords {
		cols[i] = kw.Column
	}
	return cols
}

// DescriptionFlags extracts keyword-presence features from a free-text
// description. Matching is a literal substring check on the lowercased,
// accent-stripped text; an empty description yields all zeros.
func DescriptionFlags(description string) map[string]float64 {
	flags := make(map[string]float64, len(descriptionKeywords))
	normalized := utils.NormalizeText(description)

	for _, kw := range descriptionKeywords {
		if normalized != "" && strings.Contains(normalized, kw.Term) {
			flags[kw.Column] = 1
		} else {
			flags[kw.Column] = 0
		}
	}
	return flags
}
