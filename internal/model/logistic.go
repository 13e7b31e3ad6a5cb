package model

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/fraudlens/fraudlens/internal/features"
)

// Logistic is a standardized-feature logistic regression over the fixed
// feature vector [typing_speed, time_on_page, payment_code]. Positive class
// is fraud (label 1).
//
// The artifact is plain JSON so the trainer, the server, and operators can
// all read it; there is no pickle-style opacity to hide schema drift behind.
type Logistic struct {
	Weights   [features.NumFeatures]float64 `json:"weights"`
	Bias      float64                       `json:"bias"`
	Means     [features.NumFeatures]float64 `json:"feature_means"`
	Stds      [features.NumFeatures]float64 `json:"feature_stds"`
	ClassList []int                         `json:"classes"`
	Version   string                        `json:"version"`
	TrainedAt time.Time                     `json:"trained_at"`
}

// Predict returns the predicted label for one feature vector.
func (m *Logistic) Predict(v features.Vector) int {
	probs := m.PredictProba(v)
	best := 0
	for i := 1; i < len(probs); i++ {
		if probs[i] > probs[best] {
			best = i
		}
	}
	return m.ClassList[best]
}

// PredictProba returns class probabilities aligned with Classes().
// A degenerate single-class model always answers 1.0 for that class.
func (m *Logistic) PredictProba(v features.Vector) []float64 {
	if len(m.ClassList) == 1 {
		return []float64{1.0}
	}
	p1 := sigmoid(m.decision(v))
	return []float64{1 - p1, p1}
}

// Classes returns the labels the model was trained on, ascending.
func (m *Logistic) Classes() []int {
	out := make([]int, len(m.ClassList))
	copy(out, m.ClassList)
	return out
}

// Type reports the classifier family for /model-info.
func (m *Logistic) Type() string {
	return "LogisticRegression"
}

// decision computes the raw linear score over standardized features.
func (m *Logistic) decision(v features.Vector) float64 {
	z := m.Bias
	for i := 0; i < features.NumFeatures; i++ {
		z += m.Weights[i] * m.standardize(i, v[i])
	}
	return z
}

func (m *Logistic) standardize(i int, x float64) float64 {
	std := m.Stds[i]
	if std == 0 {
		std = 1
	}
	return (x - m.Means[i]) / std
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

// Save writes the artifact to disk, indented for operator inspection.
func (m *Logistic) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("model: encode artifact: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("model: write artifact: %w", err)
	}
	return nil
}

// UnmarshalLogistic decodes and sanity-checks an artifact.
func UnmarshalLogistic(data []byte) (*Logistic, error) {
	var m Logistic
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if len(m.ClassList) == 0 || len(m.ClassList) > 2 {
		return nil, fmt.Errorf("artifact lists %d classes, want 1 or 2", len(m.ClassList))
	}
	for i := 1; i < len(m.ClassList); i++ {
		if m.ClassList[i] <= m.ClassList[i-1] {
			return nil, fmt.Errorf("artifact classes not strictly ascending: %v", m.ClassList)
		}
	}
	return &m, nil
}
