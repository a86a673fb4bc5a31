package ml

import (
	"os"
	"path/filepath"
	"testing"
)

const modelJSON = `{
	"model_type": "RandomForestRegressor",
	"trees": [
		{"nodes": [
			{"feature": 0, "threshold": 2.5, "left": 1, "right": 2, "value": 0},
			{"feature": -1, "threshold": 0, "left": 0, "right": 0, "value": 80000},
			{"feature": -1, "threshold": 0, "left": 0, "right": 0, "value": 120000}
		]},
		{"nodes": [{"feature": -1, "threshold": 0, "left": 0, "right": 0, "value": 100000}]}
	],
	"feature_importances": [0.7, 0.3],
	"metrics": {"r2_score": 0.8709, "rmse_usd": 155871}
}`

const columnsJSON = `["ambientes", "superficie_total_m2"]`

func writeArtifactFiles(t *testing.T, model, columns string) (string, string) {
	t.Helper()
	dir := t.TempDir()

	modelPath := filepath.Join(dir, "model.json")
	if err := os.WriteFile(modelPath, []byte(model), 0644); err != nil {
		t.Fatal(err)
	}
	columnsPath := filepath.Join(dir, "model_columns.json")
	if err := os.WriteFile(columnsPath, []byte(columns), 0644); err != nil {
		t.Fatal(err)
	}
	return modelPath, columnsPath
}

func TestLoadArtifact(t *testing.T) {
	modelPath, columnsPath := writeArtifactFiles(t, modelJSON, columnsJSON)

	artifact, err := LoadArtifact(modelPath, columnsPath)
	if err != nil {
		t.Fatalf("LoadArtifact: %v", err)
	}

	if artifact.Model.ModelType != "RandomForestRegressor" {
		t.Errorf("ModelType = %q", artifact.Model.ModelType)
	}
	if len(artifact.Model.Trees) != 2 {
		t.Errorf("trees = %d; want 2", len(artifact.Model.Trees))
	}
	if len(artifact.Columns) != 2 || artifact.Columns[0] != "ambientes" {
		t.Errorf("columns = %v", artifact.Columns)
	}
	if artifact.Model.Metrics["r2_score"] != 0.8709 {
		t.Errorf("metrics = %v", artifact.Model.Metrics)
	}
}

func TestLoadArtifactMissingFile(t *testing.T) {
	_, columnsPath := writeArtifactFiles(t, modelJSON, columnsJSON)

	if _, err := LoadArtifact("/nonexistent/model.json", columnsPath); err == nil {
		t.Error("expected error for missing model file")
	}
}

func TestLoadArtifactEmptyColumns(t *testing.T) {
	modelPath, columnsPath := writeArtifactFiles(t, modelJSON, `[]`)

	if _, err := LoadArtifact(modelPath, columnsPath); err == nil {
		t.Error("expected error for empty columns file")
	}
}

func TestTreePredictWalksSplits(t *testing.T) {
	modelPath, columnsPath := writeArtifactFiles(t, modelJSON, columnsJSON)
	artifact, err := LoadArtifact(modelPath, columnsPath)
	if err != nil {
		t.Fatal(err)
	}

	tree := &artifact.Model.Trees[0]
	if got := tree.Predict([]float64{2, 50}); got != 80000 {
		t.Errorf("ambientes=2 → %.0f; want 80000", got)
	}
	if got := tree.Predict([]float64{4, 50}); got != 120000 {
		t.Errorf("ambientes=4 → %.0f; want 120000", got)
	}
}
