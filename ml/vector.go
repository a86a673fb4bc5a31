package ml

import "propiedades-api/models"

// BuildVector encodes a prediction request into the positional feature
// vector the ensemble expects. The barrio becomes a one-hot indicator
// column ("barrio_Palermo"); the result is then projected onto the
// training-time column list: training columns absent from the request are
// zero-filled, request columns unknown to the training schema are dropped.
// Column order is preserved exactly — the model reads positions, not names.
//
// An out-of-vocabulary barrio therefore sets no indicator at all and
// collapses to the baseline rather than failing.
func BuildVector(req *models.PredictionRequest, columns []string) []float64 {
	features := map[string]float64{
		"ambientes":           float64(req.Ambientes),
		"dormitorios":         float64(req.Dormitorios),
		"banos":               float64(req.Banos),
		"superficie_total_m2": float64(req.SuperficieTotalM2),
		"cocheras":            float64(req.Cocheras),
	}

	for col, v := range DescriptionFlags(req.Description) {
		features[col] = v
	}

	if req.Barrio != "" {
		features["barrio_"+req.Barrio] = 1
	}

	x := make([]float64, len(columns))
	for i, col := range columns {
		x[i] = features[col]
	}
	return x
}
