package evaluation

import (
	"context"
	"fmt"

	"github.com/fraudlens/fraudlens/internal/features"
	"github.com/fraudlens/fraudlens/internal/logging"
	"github.com/fraudlens/fraudlens/internal/metrics"
	"github.com/fraudlens/fraudlens/internal/model"
	"github.com/fraudlens/fraudlens/internal/scoring"
	"github.com/fraudlens/fraudlens/internal/syncutil"
	"github.com/fraudlens/fraudlens/internal/traces"
)

// DatasetResult reports the live model's quality on the held-out 20% of
// the configured dataset, plus cross-validation over the full dataset.
type DatasetResult struct {
	Metrics
	CrossValidation      CrossValidation `json:"cross_validation"`
	TestSamples          int             `json:"test_samples"`
	FraudRate            float64         `json:"fraud_rate"`
	ClassificationReport map[string]any  `json:"classification_report"`
}

// CustomMetrics are the headline statistics over caller-supplied rows.
type CustomMetrics struct {
	Metrics
	TotalSamples int     `json:"total_samples"`
	FraudRate    float64 `json:"fraud_rate"`
}

// Predictions carries the per-row model output so callers can inspect
// individual disagreements.
type Predictions struct {
	PredictedLabels         []int     `json:"predicted_labels"`
	PredictionProbabilities []float64 `json:"prediction_probabilities"`
}

// CustomResult is the outcome of evaluating caller-supplied rows.
type CustomResult struct {
	Metrics     CustomMetrics `json:"metrics"`
	Predictions Predictions   `json:"predictions"`
}

// Evaluator recomputes model-quality metrics against the labeled dataset
// the model was trained from, or against caller-supplied rows.
type Evaluator struct {
	datasetPath string
	trainCfg    model.TrainConfig

	// Serializes dataset evaluations: cross-validation retrains a model
	// per fold, so concurrent requests would multiply that work for an
	// identical answer. Waiters still honor request cancellation.
	locks *syncutil.ContextShardedMutex
}

// New creates an evaluator over the configured dataset path.
func New(datasetPath string) *Evaluator {
	return &Evaluator{
		datasetPath: datasetPath,
		trainCfg:    model.DefaultTrainConfig(),
		locks:       syncutil.NewContextShardedMutex(),
	}
}

// EvaluateDataset scores the classifier on the held-out 20% of the
// configured dataset, using the same seeded stratified split every run,
// then cross-validates the training procedure over the full dataset.
// Nothing is cached: every call recomputes from the file.
func (e *Evaluator) EvaluateDataset(ctx context.Context, clf model.Classifier) (*DatasetResult, error) {
	ctx, span := traces.StartSpan(ctx, "evaluation.dataset", traces.DatasetPath(e.datasetPath))
	defer span.End()

	unlock, err := e.locks.LockContext(ctx, e.datasetPath)
	if err != nil {
		metrics.EvaluationsTotal.WithLabelValues("cancelled").Inc()
		return nil, err
	}
	defer unlock()

	result, err := e.evaluateDataset(ctx, clf)
	if err != nil {
		metrics.EvaluationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.EvaluationsTotal.WithLabelValues("success").Inc()

	span.SetAttributes(traces.SampleCount(result.TestSamples))
	logging.L(ctx).Info("dataset evaluation complete",
		"test_samples", result.TestSamples,
		"accuracy", result.Accuracy,
	)
	return result, nil
}

func (e *Evaluator) evaluateDataset(ctx context.Context, clf model.Classifier) (*DatasetResult, error) {
	samples, labels, err := e.loadDataset()
	if err != nil {
		return nil, err
	}

	_, testIdx, err := StratifiedSplit(labels, TestFraction, SplitSeed)
	if err != nil {
		return nil, &EvaluationError{Stage: "splitting dataset", Err: err}
	}

	yTrue := make([]int, len(testIdx))
	yPred := make([]int, len(testIdx))
	for i, idx := range testIdx {
		yTrue[i] = labels[idx]
		yPred[i] = clf.Predict(samples[idx])
	}

	cv, err := e.CrossValidate(ctx, samples, labels)
	if err != nil {
		return nil, err
	}

	return &DatasetResult{
		Metrics:              ComputeMetrics(yTrue, yPred),
		CrossValidation:      cv,
		TestSamples:          len(testIdx),
		FraudRate:            FraudRate(yTrue),
		ClassificationReport: ClassificationReport(yTrue, yPred),
	}, nil
}

// EvaluateRows scores the classifier on caller-supplied labeled rows. No
// split is applied; every row is evaluated and its prediction returned.
func (e *Evaluator) EvaluateRows(ctx context.Context, clf model.Classifier, rows []Row) (*CustomResult, error) {
	ctx, span := traces.StartSpan(ctx, "evaluation.custom", traces.SampleCount(len(rows)))
	defer span.End()

	if len(rows) == 0 {
		metrics.EvaluationsTotal.WithLabelValues("error").Inc()
		return nil, &features.ValidationError{
			Message: "test_data must contain at least one row",
			Fields:  []string{"test_data"},
		}
	}

	samples, labels, err := Encode(rows)
	if err != nil {
		metrics.EvaluationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	scorer := scoring.NewScorer(clf)
	yPred := make([]int, len(samples))
	probs := make([]float64, len(samples))
	for i, s := range samples {
		label, prob := scorer.Score(ctx, s)
		yPred[i] = label
		probs[i] = scoring.Round4(prob)
	}

	result := &CustomResult{
		Metrics: CustomMetrics{
			Metrics:      ComputeMetrics(labels, yPred),
			TotalSamples: len(rows),
			FraudRate:    FraudRate(labels),
		},
		Predictions: Predictions{
			PredictedLabels:         yPred,
			PredictionProbabilities: probs,
		},
	}

	metrics.EvaluationsTotal.WithLabelValues("success").Inc()
	logging.L(ctx).Info("custom evaluation complete",
		"total_samples", result.Metrics.TotalSamples,
		"accuracy", result.Metrics.Accuracy,
	)
	return result, nil
}

// CrossValidate runs stratified k-fold cross-validation, refitting a fresh
// model for each fold on the samples outside it. The scores measure the
// training procedure, not the one persisted artifact.
func (e *Evaluator) CrossValidate(ctx context.Context, samples []features.Vector, labels []int) (CrossValidation, error) {
	folds := StratifiedFolds(labels, CVFolds, SplitSeed)
	scores := make([]float64, 0, CVFolds)

	for k, holdout := range folds {
		inFold := make(map[int]bool, len(holdout))
		for _, idx := range holdout {
			inFold[idx] = true
		}

		var trainSamples []features.Vector
		var trainLabels []int
		for i := range samples {
			if !inFold[i] {
				trainSamples = append(trainSamples, samples[i])
				trainLabels = append(trainLabels, labels[i])
			}
		}

		m, err := model.Fit(e.trainCfg, trainSamples, trainLabels)
		if err != nil {
			return CrossValidation{}, &EvaluationError{
				Stage: fmt.Sprintf("refitting fold %d", k+1),
				Err:   err,
			}
		}

		holdoutSamples := make([]features.Vector, len(holdout))
		holdoutLabels := make([]int, len(holdout))
		for i, idx := range holdout {
			holdoutSamples[i] = samples[idx]
			holdoutLabels[i] = labels[idx]
		}
		scores = append(scores, model.Accuracy(m, holdoutSamples, holdoutLabels))
	}

	logging.L(ctx).Debug("cross-validation complete", "folds", len(scores))
	return Summarize(scores), nil
}

func (e *Evaluator) loadDataset() ([]features.Vector, []int, error) {
	rows, err := LoadCSV(e.datasetPath)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, &EvaluationError{
			Stage: "loading dataset",
			Err:   fmt.Errorf("dataset %s has no rows", e.datasetPath),
		}
	}
	return Encode(rows)
}
