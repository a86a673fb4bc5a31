package ml

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/dgraph-io/ristretto"

	"propiedades-api/models"
	"propiedades-api/utils"
)

// ErrModelUnavailable marks the prediction path as down because the trained
// artifact could not be loaded at startup. This is not retried per request.
var ErrModelUnavailable = errors.New("ml: model artifact not loaded")

// ComparableSource looks up the average sale price of stored listings
// matching a comparable window.
type ComparableSource interface {
	SimilarAveragePrice(barrio string, ambMin, ambMax, supMin, supMax int) (*float64, error)
}

// Predictor serves price predictions from the loaded artifact. The artifact
// is immutable after construction, so a single Predictor is safe to share
// across concurrent requests.
type Predictor struct {
	artifact    *Artifact
	comparables ComparableSource
	cache       *ristretto.Cache
	cacheTTL    time.Duration
	logger      *utils.Logger
}

// NewPredictor builds a Predictor. artifact may be nil, in which case every
// prediction returns ErrModelUnavailable but the rest of the service keeps
// running degraded.
func NewPredictor(artifact *Artifact, comparables ComparableSource, cacheTTL time.Duration, logger *utils.Logger) (*Predictor, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10_000,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("ml: comparable cache: %w", err)
	}

	return &Predictor{
		artifact:    artifact,
		comparables: comparables,
		cache:       cache,
		cacheTTL:    cacheTTL,
		logger:      logger,
	}, nil
}

// Available reports whether the artifact loaded and predictions can be served.
func (p *Predictor) Available() bool {
	return p.artifact != nil
}

// Predict runs the request through every tree of the ensemble. The point
// estimate is the ensemble mean; the interval is estimate ± 1.96 times the
// standard deviation of the individual tree predictions. That spread is a
// disagreement heuristic under a normal approximation, not a calibrated
// 95% guarantee.
func (p *Predictor) Predict(req *models.PredictionRequest) (*models.PredictionResult, error) {
	if p.artifact == nil {
		return nil, ErrModelUnavailable
	}

	x := BuildVector(req, p.artifact.Columns)
	preds := p.artifact.Model.PredictAll(x)
	estimate, std := meanStd(preds)

	result := &models.PredictionResult{
		PredictedPriceUSD: estimate,
		ConfidenceInterval: models.ConfidenceInterval{
			Lower: estimate - 1.96*std,
			Upper: estimate + 1.96*std,
		},
		SimilarPropertiesAvg: p.similarAverage(req),
	}

	p.logger.Info("[predict] %.2f USD | barrio: %s | superficie: %d m²",
		estimate, req.Barrio, req.SuperficieTotalM2)

	return result, nil
}

// similarAverage returns the cached or freshly queried comparable average.
// Comparables share the barrio, have ambientes within ±1 and superficie
// within ±20% (floored at 20 m² to avoid degenerate windows). Lookup
// failures degrade to nil, never to an error.
func (p *Predictor) similarAverage(req *models.PredictionRequest) *float64 {
	if p.comparables == nil {
		return nil
	}

	ambMin := req.Ambientes - 1
	if ambMin < 1 {
		ambMin = 1
	}
	ambMax := req.Ambientes + 1
	supMin := int(float64(req.SuperficieTotalM2) * 0.8)
	if supMin < 20 {
		supMin = 20
	}
	supMax := int(float64(req.SuperficieTotalM2) * 1.2)

	key := fmt.Sprintf("%s|%d-%d|%d-%d", req.Barrio, ambMin, ambMax, supMin, supMax)
	if cached, ok := p.cache.Get(key); ok {
		v := cached.(float64)
		return &v
	}

	avg, err := p.comparables.SimilarAveragePrice(req.Barrio, ambMin, ambMax, supMin, supMax)
	if err != nil {
		p.logger.Warn("[predict] comparable lookup failed, degrading to none: %v", err)
		return nil
	}
	if avg == nil {
		return nil
	}

	p.cache.SetWithTTL(key, *avg, 1, p.cacheTTL)
	return avg
}

// ModelInfo describes the loaded artifact: type, width, ensemble size,
// training metrics and the ten most important features.
func (p *Predictor) ModelInfo() (*models.ModelInfo, error) {
	if p.artifact == nil {
		return nil, ErrModelUnavailable
	}

	forest := p.artifact.Model
	info := &models.ModelInfo{
		ModelType:   forest.ModelType,
		NFeatures:   len(p.artifact.Columns),
		NEstimators: len(forest.Trees),
		Metrics:     forest.Metrics,
	}

	ranked := make([]models.FeatureImportance, 0, len(forest.FeatureImportances))
	for i, imp := range forest.FeatureImportances {
		if i >= len(p.artifact.Columns) {
			break
		}
		ranked = append(ranked, models.FeatureImportance{
			Feature:    p.artifact.Columns[i],
			Importance: imp,
		})
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].Importance > ranked[j].Importance })
	if len(ranked) > 10 {
		ranked = ranked[:10]
	}
	info.TopFeatures = ranked

	return info, nil
}

// meanStd returns the mean and population standard deviation of values.
func meanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / float64(len(values)))
}
