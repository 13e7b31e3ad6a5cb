// Package scoring implements the verification decision path: score a
// validated feature vector with the loaded classifier, derive the
// allow/block decision, and record blocked attempts for audit.
//
// The decision is a pure function of the feature vector through the model's
// own output. There is no injected randomness and no side channel that can
// perturb a score.
package scoring

import (
	"context"
	"math"

	"github.com/fraudlens/fraudlens/internal/features"
	"github.com/fraudlens/fraudlens/internal/logging"
	"github.com/fraudlens/fraudlens/internal/metrics"
	"github.com/fraudlens/fraudlens/internal/model"
)

// Decision is the binary outcome of a verification.
type Decision string

const (
	DecisionAllow Decision = "allow"
	DecisionBlock Decision = "block"
)

// FraudLabel is the positive class the classifier was trained to flag.
const FraudLabel = 1

// Scorer wraps a classifier and extracts the fraud-class probability.
type Scorer struct {
	clf model.Classifier
}

// NewScorer creates a scorer over a loaded classifier.
func NewScorer(clf model.Classifier) *Scorer {
	return &Scorer{clf: clf}
}

// Score returns the predicted label and the probability mass for the fraud
// class. If the model was trained without class 1 (a degenerate training
// set), the probability is defined as 0.0 rather than failing; the case is
// logged and counted so operators notice.
func (s *Scorer) Score(ctx context.Context, v features.Vector) (label int, fraudProb float64) {
	label = s.clf.Predict(v)
	probs := s.clf.PredictProba(v)

	idx := -1
	for i, c := range s.clf.Classes() {
		if c == FraudLabel {
			idx = i
			break
		}
	}
	if idx < 0 || idx >= len(probs) {
		logging.L(ctx).Warn("model has no fraud class, probability forced to 0.0",
			"classes", s.clf.Classes(),
		)
		metrics.MissingFraudClass.Inc()
		return label, 0.0
	}
	return label, probs[idx]
}

// Round4 rounds to 4 decimal places for display stability.
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
