package ml

import (
	"testing"

	"propiedades-api/models"
)

func testRequest() *models.PredictionRequest {
	return &models.PredictionRequest{
		Barrio:            "Palermo",
		Ambientes:         2,
		Dormitorios:       1,
		Banos:             1,
		SuperficieTotalM2: 50,
		Cocheras:          0,
		Description:       "balcon luminoso",
	}
}

func TestBuildVectorColumnOrder(t *testing.T) {
	columns := []string{"superficie_total_m2", "ambientes", "barrio_Palermo", "has_balcon"}
	x := BuildVector(testRequest(), columns)

	want := []float64{50, 2, 1, 1}
	if len(x) != len(want) {
		t.Fatalf("vector width = %d; want %d", len(x), len(want))
	}
	for i := range want {
		if x[i] != want[i] {
			t.Errorf("x[%d] (%s) = %.0f; want %.0f", i, columns[i], x[i], want[i])
		}
	}
}

func TestBuildVectorZeroFillsMissingColumns(t *testing.T) {
	columns := []string{"ambientes", "barrio_Belgrano", "barrio_Recoleta", "has_pileta"}
	x := BuildVector(testRequest(), columns)

	// Palermo is not in the training columns: every barrio indicator stays 0
	// and the record collapses to the baseline.
	if x[1] != 0 || x[2] != 0 {
		t.Errorf("unseen barrio must leave all indicators at 0, got %v", x)
	}
	if x[3] != 0 {
		t.Errorf("has_pileta = %.0f; want 0", x[3])
	}
	if x[0] != 2 {
		t.Errorf("ambientes = %.0f; want 2", x[0])
	}
}

func TestBuildVectorDropsUnknownFeatures(t *testing.T) {
	// The request carries has_balcon=1, but the training schema never saw
	// that column; the projection drops it silently.
	columns := []string{"ambientes"}
	x := BuildVector(testRequest(), columns)

	if len(x) != 1 {
		t.Fatalf("vector width = %d; want 1", len(x))
	}
}
