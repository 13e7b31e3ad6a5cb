package model

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/fraudlens/fraudlens/internal/features"
)

// TrainConfig controls the gradient-descent fit.
type TrainConfig struct {
	Epochs       int
	LearningRate float64
	BatchSize    int
	L2           float64 // regularization strength; higher caps model capacity
	Seed         int64
}

// DefaultTrainConfig returns the parameters used by cmd/train and by
// cross-validation fold refits.
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		Epochs:       200,
		LearningRate: 0.1,
		BatchSize:    32,
		L2:           0.001,
		Seed:         42,
	}
}

// Fit trains a logistic regression on the labeled samples using mini-batch
// gradient descent over standardized features. Labels must be 0 or 1.
// A single-class training set produces a degenerate one-class model rather
// than an error; the scorer handles that case explicitly.
func Fit(cfg TrainConfig, samples []features.Vector, labels []int) (*Logistic, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("model: no training samples")
	}
	if len(samples) != len(labels) {
		return nil, fmt.Errorf("model: %d samples but %d labels", len(samples), len(labels))
	}

	classes := distinctLabels(labels)
	for _, c := range classes {
		if c != 0 && c != 1 {
			return nil, fmt.Errorf("model: label %d outside {0,1}", c)
		}
	}

	m := &Logistic{
		ClassList: classes,
		Version:   "1",
		TrainedAt: time.Now().UTC(),
	}
	m.Means, m.Stds = momentStats(samples)

	if len(classes) == 1 {
		return m, nil
	}

	if cfg.Epochs <= 0 {
		cfg.Epochs = DefaultTrainConfig().Epochs
	}
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = DefaultTrainConfig().LearningRate
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultTrainConfig().BatchSize
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	n := len(samples)

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		order := rng.Perm(n)
		for start := 0; start < n; start += cfg.BatchSize {
			end := start + cfg.BatchSize
			if end > n {
				end = n
			}

			var grad [features.NumFeatures]float64
			var gradBias float64
			for _, idx := range order[start:end] {
				p := sigmoid(m.decision(samples[idx]))
				residual := p - float64(labels[idx])
				for i := 0; i < features.NumFeatures; i++ {
					grad[i] += residual * m.standardize(i, samples[idx][i])
				}
				gradBias += residual
			}

			batch := float64(end - start)
			for i := 0; i < features.NumFeatures; i++ {
				m.Weights[i] -= cfg.LearningRate * (grad[i]/batch + cfg.L2*m.Weights[i])
			}
			m.Bias -= cfg.LearningRate * gradBias / batch
		}
	}

	return m, nil
}

// Accuracy scores the classifier against labeled samples. Used by cmd/train
// to report fit quality and select a capped model.
func Accuracy(c Classifier, samples []features.Vector, labels []int) float64 {
	if len(samples) == 0 {
		return 0
	}
	correct := 0
	for i, s := range samples {
		if c.Predict(s) == labels[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(samples))
}

func distinctLabels(labels []int) []int {
	seen := make(map[int]bool)
	for _, l := range labels {
		seen[l] = true
	}
	var out []int
	for _, c := range []int{0, 1} {
		if seen[c] {
			out = append(out, c)
		}
	}
	// Labels outside {0,1} still need to surface for Fit's check.
	for l := range seen {
		if l != 0 && l != 1 {
			out = append(out, l)
		}
	}
	return out
}

func momentStats(samples []features.Vector) (means, stds [features.NumFeatures]float64) {
	n := float64(len(samples))
	for _, s := range samples {
		for i := 0; i < features.NumFeatures; i++ {
			means[i] += s[i]
		}
	}
	for i := 0; i < features.NumFeatures; i++ {
		means[i] /= n
	}
	for _, s := range samples {
		for i := 0; i < features.NumFeatures; i++ {
			d := s[i] - means[i]
			stds[i] += d * d
		}
	}
	for i := 0; i < features.NumFeatures; i++ {
		stds[i] = math.Sqrt(stds[i] / n)
	}
	return means, stds
}
