package evaluation

import (
	"math"

	"github.com/fraudlens/fraudlens/internal/scoring"
)

// ConfusionMatrix is always a full 2×2 over labels {0,1}, even when one
// label is absent from the evaluated fold. The four cells sum to the
// evaluated sample count.
type ConfusionMatrix struct {
	TrueNegatives  int `json:"true_negatives"`
	FalsePositives int `json:"false_positives"`
	FalseNegatives int `json:"false_negatives"`
	TruePositives  int `json:"true_positives"`
}

// Metrics are the headline evaluation statistics, rounded to 4 decimals.
type Metrics struct {
	Accuracy        float64         `json:"accuracy"`
	Precision       float64         `json:"precision"`
	Recall          float64         `json:"recall"`
	F1Score         float64         `json:"f1_score"`
	ConfusionMatrix ConfusionMatrix `json:"confusion_matrix"`
}

// ClassReport mirrors one entry of sklearn-style per-class reporting.
type ClassReport struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1Score   float64 `json:"f1-score"`
	Support   int     `json:"support"`
}

// CrossValidation aggregates k-fold accuracy scores.
type CrossValidation struct {
	MeanAccuracy float64   `json:"mean_accuracy"`
	StdAccuracy  float64   `json:"std_accuracy"`
	CVScores     []float64 `json:"cv_scores"`
}

// ComputeMetrics derives all headline statistics from true and predicted
// labels. All ratios are zero-division-safe: an undefined ratio is 0,
// never an exception or NaN.
func ComputeMetrics(yTrue, yPred []int) Metrics {
	cm := ComputeConfusionMatrix(yTrue, yPred)
	n := len(yTrue)

	var accuracy float64
	if n > 0 {
		accuracy = float64(cm.TrueNegatives+cm.TruePositives) / float64(n)
	}
	precision := safeRatio(cm.TruePositives, cm.TruePositives+cm.FalsePositives)
	recall := safeRatio(cm.TruePositives, cm.TruePositives+cm.FalseNegatives)
	f1 := 0.0
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}

	return Metrics{
		Accuracy:        scoring.Round4(accuracy),
		Precision:       scoring.Round4(precision),
		Recall:          scoring.Round4(recall),
		F1Score:         scoring.Round4(f1),
		ConfusionMatrix: cm,
	}
}

// FraudRate is the fraction of samples labeled fraud, rounded to 4 decimals.
func FraudRate(labels []int) float64 {
	if len(labels) == 0 {
		return 0
	}
	fraud := 0
	for _, y := range labels {
		if y == 1 {
			fraud++
		}
	}
	return scoring.Round4(float64(fraud) / float64(len(labels)))
}

// ComputeConfusionMatrix builds the 2×2 matrix by explicitly enumerating
// the label set {0,1} rather than inferring it from observed values.
func ComputeConfusionMatrix(yTrue, yPred []int) ConfusionMatrix {
	var cm ConfusionMatrix
	for i := range yTrue {
		switch {
		case yTrue[i] == 0 && yPred[i] == 0:
			cm.TrueNegatives++
		case yTrue[i] == 0 && yPred[i] == 1:
			cm.FalsePositives++
		case yTrue[i] == 1 && yPred[i] == 0:
			cm.FalseNegatives++
		default:
			cm.TruePositives++
		}
	}
	return cm
}

// ClassificationReport computes per-class precision/recall/F1/support plus
// macro and weighted averages, keyed the way sklearn keys its dict output.
func ClassificationReport(yTrue, yPred []int) map[string]any {
	cm := ComputeConfusionMatrix(yTrue, yPred)
	n := len(yTrue)

	class0 := classEntry(cm.TrueNegatives, cm.FalseNegatives, cm.TrueNegatives+cm.FalsePositives)
	class1 := classEntry(cm.TruePositives, cm.FalsePositives, cm.TruePositives+cm.FalseNegatives)

	accuracy := 0.0
	if n > 0 {
		accuracy = float64(cm.TrueNegatives+cm.TruePositives) / float64(n)
	}

	macro := ClassReport{
		Precision: scoring.Round4((class0.Precision + class1.Precision) / 2),
		Recall:    scoring.Round4((class0.Recall + class1.Recall) / 2),
		F1Score:   scoring.Round4((class0.F1Score + class1.F1Score) / 2),
		Support:   n,
	}

	weighted := ClassReport{Support: n}
	if n > 0 {
		w0 := float64(class0.Support) / float64(n)
		w1 := float64(class1.Support) / float64(n)
		weighted.Precision = scoring.Round4(class0.Precision*w0 + class1.Precision*w1)
		weighted.Recall = scoring.Round4(class0.Recall*w0 + class1.Recall*w1)
		weighted.F1Score = scoring.Round4(class0.F1Score*w0 + class1.F1Score*w1)
	}

	return map[string]any{
		"0":            class0,
		"1":            class1,
		"accuracy":     scoring.Round4(accuracy),
		"macro avg":    macro,
		"weighted avg": weighted,
	}
}

// classEntry builds one per-class report row. predicted is the count of
// correct predictions for the class, wrongPredicted the count of samples
// wrongly predicted as the class, support the true count of the class.
func classEntry(correct, wrongPredicted, support int) ClassReport {
	precision := safeRatio(correct, correct+wrongPredicted)
	recall := safeRatio(correct, support)
	f1 := 0.0
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}
	return ClassReport{
		Precision: scoring.Round4(precision),
		Recall:    scoring.Round4(recall),
		F1Score:   scoring.Round4(f1),
		Support:   support,
	}
}

// Summarize computes mean and population standard deviation of fold scores.
func Summarize(scores []float64) CrossValidation {
	cv := CrossValidation{CVScores: make([]float64, len(scores))}
	if len(scores) == 0 {
		return cv
	}

	sum := 0.0
	for i, s := range scores {
		cv.CVScores[i] = scoring.Round4(s)
		sum += s
	}
	mean := sum / float64(len(scores))

	variance := 0.0
	for _, s := range scores {
		d := s - mean
		variance += d * d
	}
	variance /= float64(len(scores))

	cv.MeanAccuracy = scoring.Round4(mean)
	cv.StdAccuracy = scoring.Round4(math.Sqrt(variance))
	return cv
}

func safeRatio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
