package ml

import (
	"errors"
	"testing"
	"time"

	"propiedades-api/utils"
)

func leafTree(value float64) Tree {
	return Tree{Nodes: []TreeNode{{Feature: -1, Value: value}}}
}

// fixtureArtifact returns a three-tree ensemble that predicts 100,000 on
// average with a spread across trees.
func fixtureArtifact() *Artifact {
	return &Artifact{
		Model: &Forest{
			ModelType:          "RandomForestRegressor",
			Trees:              []Tree{leafTree(90000), leafTree(100000), leafTree(110000)},
			FeatureImportances: []float64{0.2, 0.1, 0.05, 0.5, 0.05, 0.05, 0.05},
			Metrics:            map[string]float64{"r2_score": 0.87},
		},
		Columns: []string{
			"ambientes", "dormitorios", "banos", "superficie_total_m2",
			"cocheras", "has_balcon", "barrio_Palermo",
		},
	}
}

type fakeComparables struct {
	avg   *float64
	err   error
	calls int
}

func (f *fakeComparables) SimilarAveragePrice(barrio string, ambMin, ambMax, supMin, supMax int) (*float64, error) {
	f.calls++
	return f.avg, f.err
}

func newTestPredictor(t *testing.T, artifact *Artifact, comparables ComparableSource) *Predictor {
	t.Helper()
	p, err := NewPredictor(artifact, comparables, time.Minute, utils.NewLogger(utils.LevelError))
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestPredictPointEstimateAndInterval(t *testing.T) {
	p := newTestPredictor(t, fixtureArtifact(), nil)

	result, err := p.Predict(testRequest())
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}

	if result.PredictedPriceUSD != 100000 {
		t.Errorf("point estimate = %.2f; want 100000", result.PredictedPriceUSD)
	}
	if !(result.ConfidenceInterval.Lower < result.PredictedPriceUSD &&
		result.PredictedPriceUSD < result.ConfidenceInterval.Upper) {
		t.Errorf("interval %v does not bracket the estimate %.2f",
			result.ConfidenceInterval, result.PredictedPriceUSD)
	}

	// interval is symmetric around the estimate
	lowerGap := result.PredictedPriceUSD - result.ConfidenceInterval.Lower
	upperGap := result.ConfidenceInterval.Upper - result.PredictedPriceUSD
	if diff := lowerGap - upperGap; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("interval not symmetric: -%.2f / +%.2f", lowerGap, upperGap)
	}
}

func TestPredictUnseenBarrioSucceeds(t *testing.T) {
	p := newTestPredictor(t, fixtureArtifact(), nil)

	req := testRequest()
	req.Barrio = "Mataderos" // not among the training columns

	result, err := p.Predict(req)
	if err != nil {
		t.Fatalf("Predict with unseen barrio: %v", err)
	}
	if result.PredictedPriceUSD <= 0 {
		t.Errorf("estimate = %.2f; want > 0", result.PredictedPriceUSD)
	}
}

func TestPredictModelUnavailable(t *testing.T) {
	p := newTestPredictor(t, nil, nil)

	if _, err := p.Predict(testRequest()); !errors.Is(err, ErrModelUnavailable) {
		t.Errorf("err = %v; want ErrModelUnavailable", err)
	}
	if _, err := p.ModelInfo(); !errors.Is(err, ErrModelUnavailable) {
		t.Errorf("ModelInfo err = %v; want ErrModelUnavailable", err)
	}
}

func TestPredictSimilarAverage(t *testing.T) {
	avg := 95000.0
	comparables := &fakeComparables{avg: &avg}
	p := newTestPredictor(t, fixtureArtifact(), comparables)

	result, err := p.Predict(testRequest())
	if err != nil {
		t.Fatal(err)
	}
	if result.SimilarPropertiesAvg == nil || *result.SimilarPropertiesAvg != 95000 {
		t.Errorf("similar avg = %v; want 95000", result.SimilarPropertiesAvg)
	}
}

func TestPredictSimilarAverageDegradesOnError(t *testing.T) {
	comparables := &fakeComparables{err: errors.New("connection refused")}
	p := newTestPredictor(t, fixtureArtifact(), comparables)

	result, err := p.Predict(testRequest())
	if err != nil {
		t.Fatalf("lookup failure must not fail the prediction: %v", err)
	}
	if result.SimilarPropertiesAvg != nil {
		t.Errorf("similar avg = %v; want nil on lookup failure", *result.SimilarPropertiesAvg)
	}
}

func TestPredictSimilarAverageNoComparables(t *testing.T) {
	comparables := &fakeComparables{avg: nil}
	p := newTestPredictor(t, fixtureArtifact(), comparables)

	result, err := p.Predict(testRequest())
	if err != nil {
		t.Fatal(err)
	}
	if result.SimilarPropertiesAvg != nil {
		t.Errorf("similar avg = %v; want nil when no comparable exists", *result.SimilarPropertiesAvg)
	}
}

func TestModelInfoTopFeatures(t *testing.T) {
	p := newTestPredictor(t, fixtureArtifact(), nil)

	info, err := p.ModelInfo()
	if err != nil {
		t.Fatal(err)
	}

	if info.NEstimators != 3 || info.NFeatures != 7 {
		t.Errorf("n_estimators=%d n_features=%d; want 3 and 7", info.NEstimators, info.NFeatures)
	}
	if len(info.TopFeatures) == 0 || info.TopFeatures[0].Feature != "superficie_total_m2" {
		t.Errorf("top feature = %v; want superficie_total_m2 first", info.TopFeatures)
	}
	for i := 1; i < len(info.TopFeatures); i++ {
		if info.TopFeatures[i].Importance > info.TopFeatures[i-1].Importance {
			t.Error("top features must be sorted by importance, descending")
		}
	}
}

func TestMeanStd(t *testing.T) {
	mean, std := meanStd([]float64{90000, 100000, 110000})
	if mean != 100000 {
		t.Errorf("mean = %.2f; want 100000", mean)
	}
	// population std of [-10000, 0, 10000]
	want := 8164.965809
	if std < want-0.01 || std > want+0.01 {
		t.Errorf("std = %.4f; want %.4f", std, want)
	}
}
