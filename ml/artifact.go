// Package ml loads the trained pricing ensemble and serves predictions
// with a disagreement-based confidence interval.
package ml

import (
	"encoding/json"
	"fmt"
	"os"
)

// TreeNode is one node of a regression tree. Feature is the column index to
// split on, or -1 for a leaf, in which case Value is the node's prediction.
type TreeNode struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

// Tree is a single regression tree stored as a flat node array rooted at 0.
type Tree struct {
	Nodes []TreeNode `json:"nodes"`
}

// Predict walks the tree for one feature vector.
func (t *Tree) Predict(x []float64) float64 {
	i := 0
	for t.Nodes[i].Feature >= 0 {
		node := t.Nodes[i]
		if x[node.Feature] <= node.Threshold {
			i = node.Left
		} else {
			i = node.Right
		}
	}
	return t.Nodes[i].Value
}

// Forest is the trained ensemble as exported by the training job.
type Forest struct {
	ModelType          string             `json:"model_type"`
	Trees              []Tree             `json:"trees"`
	FeatureImportances []float64          `json:"feature_importances"`
	Metrics            map[string]float64 `json:"metrics"`
}

// PredictAll returns every individual tree's prediction for x.
func (f *Forest) PredictAll(x []float64) []float64 {
	preds := make([]float64, len(f.Trees))
	for i := range f.Trees {
		preds[i] = f.Trees[i].Predict(x)
	}
	return preds
}

// Artifact bundles the ensemble with the ordered column list it was trained
// on. Loaded once at startup and read-only afterwards, so it is safe to
// share across concurrent requests.
type Artifact struct {
	Model   *Forest
	Columns []string
}

// LoadArtifact reads the model and column files. Both must be present and
// well formed; a failure here makes the prediction path unavailable.
func LoadArtifact(modelPath, columnsPath string) (*Artifact, error) {
	modelBytes, err := os.ReadFile(modelPath)
	if err != nil {
		return nil, fmt.Errorf("ml: read model file: %w", err)
	}
	var forest Forest
	if err := json.Unmarshal(modelBytes, &forest); err != nil {
		return nil, fmt.Errorf("ml: decode model file: %w", err)
	}
	if len(forest.Trees) == 0 {
		return nil, fmt.Errorf("ml: model file %q holds no trees", modelPath)
	}

	colBytes, err := os.ReadFile(columnsPath)
	if err != nil {
		return nil, fmt.Errorf("ml: read columns file: %w", err)
	}
	var columns []string
	if err := json.Unmarshal(colBytes, &columns); err != nil {
		return nil, fmt.Errorf("ml: decode columns file: %w", err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("ml: columns file %q is empty", columnsPath)
	}

	return &Artifact{Model: &forest, Columns: columns}, nil
}
