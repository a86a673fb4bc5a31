package models

// PredictionRequest is the input shape of the /predict endpoint.
type PredictionRequest struct {
	Barrio            string `json:"barrio"`
	Ambientes         int    `json:"ambientes"`
	Dormitorios       int    `json:"dormitorios"`
	Banos             int    `json:"banos"`
	SuperficieTotalM2 int    `json:"superficie_total_m2"`
	Cocheras          int    `json:"cocheras"`
	Description       string `json:"description,omitempty"`
}

// ConfidenceInterval brackets a point estimate. The bounds come from
// disagreement across the ensemble's trees under a normal approximation,
// not from a calibrated statistical procedure.
type ConfidenceInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// PredictionResult is the output shape of the /predict endpoint.
// SimilarPropertiesAvg is nil when no comparable listing exists or the
// comparable lookup failed.
type PredictionResult struct {
	PredictedPriceUSD    float64            `json:"predicted_price_usd"`
	ConfidenceInterval   ConfidenceInterval `json:"confidence_interval"`
	SimilarPropertiesAvg *float64           `json:"similar_properties_avg"`
}

// FeatureImportance pairs one training column with its importance weight.
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// ModelInfo describes the loaded artifact for the model-info endpoint.
type ModelInfo struct {
	ModelType   string              `json:"model_type"`
	NFeatures   int                 `json:"n_features"`
	NEstimators int                 `json:"n_estimators"`
	Metrics     map[string]float64  `json:"metrics"`
	TopFeatures []FeatureImportance `json:"top_features"`
}
