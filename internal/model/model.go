// Package model handles the pre-trained fraud classifier: the on-disk JSON
// artifact, loading it once at start-up, and inference. The classifier is
// immutable for the process lifetime and is passed into handlers explicitly
// so tests can substitute a fake without a process restart.
package model

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/fraudlens/fraudlens/internal/features"
)

// ErrNotLoaded is returned when a scoring operation is attempted without a
// loaded classifier. Scoring endpoints refuse to guess a decision.
var ErrNotLoaded = errors.New("model: classifier not loaded")

// ErrNotFound is returned when the model artifact file does not exist.
var ErrNotFound = errors.New("model: artifact not found")

// Classifier is the opaque pre-trained binary classifier contract.
// PredictProba returns one probability per entry of Classes, in order.
type Classifier interface {
	Predict(v features.Vector) int
	PredictProba(v features.Vector) []float64
	Classes() []int
	Type() string
}

// Load reads a classifier artifact from disk. A missing file is reported
// as ErrNotFound so callers can distinguish "not trained yet" from a
// corrupt artifact.
func Load(path string) (*Logistic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("model: read artifact: %w", err)
	}
	m, err := UnmarshalLogistic(data)
	if err != nil {
		return nil, fmt.Errorf("model: decode artifact %s: %w", path, err)
	}
	return m, nil
}
