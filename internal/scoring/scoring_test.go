package scoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fraudlens/fraudlens/internal/audit"
	"github.com/fraudlens/fraudlens/internal/circuitbreaker"
	"github.com/fraudlens/fraudlens/internal/features"
	"github.com/fraudlens/fraudlens/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClassifier lets tests dictate the model's output exactly.
type fakeClassifier struct {
	label   int
	probs   []float64
	classes []int
	calls   int
}

func (f *fakeClassifier) Predict(v features.Vector) int {
	f.calls++
	return f.label
}

func (f *fakeClassifier) PredictProba(v features.Vector) []float64 { return f.probs }
func (f *fakeClassifier) Classes() []int                           { return f.classes }
func (f *fakeClassifier) Type() string                             { return "FakeClassifier" }

// failingStore always rejects writes.
type failingStore struct{}

func (failingStore) Record(ctx context.Context, a *audit.Attempt) error {
	return errors.New("store down")
}
func (failingStore) List(ctx context.Context, limit int) ([]*audit.Attempt, error) {
	return nil, errors.New("store down")
}
func (failingStore) ListBefore(ctx context.Context, before time.Time, beforeID string, limit int) ([]*audit.Attempt, error) {
	return nil, errors.New("store down")
}
func (failingStore) Count(ctx context.Context) (int64, error) { return 0, errors.New("store down") }

func validRequest() features.Request {
	return features.Request{
		TypingSpeed: 45.0,
		TimeOnPage:  13.0,
		PaymentType: "credit card",
		UserID:      "u42",
	}
}

func TestScorer_FraudProbabilityFromClassList(t *testing.T) {
	clf := &fakeClassifier{label: 1, probs: []float64{0.2, 0.8}, classes: []int{0, 1}}
	scorer := NewScorer(clf)

	label, prob := scorer.Score(context.Background(), features.Vector{45, 13, 1})
	assert.Equal(t, 1, label)
	assert.Equal(t, 0.8, prob)
}

func TestScorer_MissingFraudClassForcesZero(t *testing.T) {
	clf := &fakeClassifier{label: 0, probs: []float64{1.0}, classes: []int{0}}
	scorer := NewScorer(clf)

	label, prob := scorer.Score(context.Background(), features.Vector{45, 13, 1})
	assert.Equal(t, 0, label)
	assert.Equal(t, 0.0, prob)
}

func TestVerify_AllowPath(t *testing.T) {
	clf := &fakeClassifier{label: 0, probs: []float64{0.9, 0.1}, classes: []int{0, 1}}
	store := audit.NewMemoryStore()
	svc := NewService(clf, store)

	result, err := svc.Verify(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, DecisionAllow, result.Decision)
	assert.Equal(t, "Verification successful", result.Reason)
	assert.Equal(t, 0.1, result.FraudProbability)
	assert.False(t, result.Saved)
	assert.Equal(t, 1, clf.calls, "classifier invoked exactly once")

	// Allowed attempts are never audited
	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestVerify_BlockPersistsAttempt(t *testing.T) {
	clf := &fakeClassifier{label: 1, probs: []float64{0.25, 0.75}, classes: []int{0, 1}}
	store := audit.NewMemoryStore()
	svc := NewService(clf, store)

	result, err := svc.Verify(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, DecisionBlock, result.Decision)
	assert.Equal(t, "Fraud detected", result.Reason)
	assert.True(t, result.Saved)

	attempts, err := store.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, "u42", attempts[0].UserID)
	assert.Equal(t, "credit card", attempts[0].PaymentType)
	assert.Equal(t, 45.0, attempts[0].TypingSpeed)
	assert.Equal(t, "Fraud detected", attempts[0].Reason)
	assert.NotEmpty(t, attempts[0].ID)
}

func TestVerify_AuditFailureDegradesToSavedFalse(t *testing.T) {
	clf := &fakeClassifier{label: 1, probs: []float64{0.25, 0.75}, classes: []int{0, 1}}
	svc := NewService(clf, failingStore{})

	result, err := svc.Verify(context.Background(), validRequest())
	require.NoError(t, err)

	// The decision is unchanged; only the saved flag reports the gap.
	assert.Equal(t, DecisionBlock, result.Decision)
	assert.False(t, result.Saved)
}

func TestVerify_AuditCircuitOpensAfterRepeatedFailures(t *testing.T) {
	clf := &fakeClassifier{label: 1, probs: []float64{0.25, 0.75}, classes: []int{0, 1}}
	svc := NewService(clf, failingStore{})

	for i := 0; i < auditCBThreshold; i++ {
		result, err := svc.Verify(context.Background(), validRequest())
		require.NoError(t, err)
		assert.False(t, result.Saved)
	}
	require.Equal(t, circuitbreaker.StateOpen, svc.breaker.State())

	// Writes are skipped while the circuit is open; the decision is
	// still computed and returned.
	result, err := svc.Verify(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, DecisionBlock, result.Decision)
	assert.False(t, result.Saved)
	assert.Equal(t, circuitbreaker.StateOpen, svc.breaker.State())
}

func TestVerify_ValidationFailureNeverReachesClassifier(t *testing.T) {
	clf := &fakeClassifier{label: 1, probs: []float64{0, 1}, classes: []int{0, 1}}
	svc := NewService(clf, audit.NewMemoryStore())

	req := validRequest()
	req.TypingSpeed = 250.0

	_, err := svc.Verify(context.Background(), req)
	var verr *features.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "Typing speed out of valid range")
	assert.Zero(t, clf.calls)
}

func TestVerify_NoModelRefuses(t *testing.T) {
	svc := NewService(nil, audit.NewMemoryStore())

	_, err := svc.Verify(context.Background(), validRequest())
	assert.ErrorIs(t, err, model.ErrNotLoaded)
}

func TestVerify_Deterministic(t *testing.T) {
	clf := &fakeClassifier{label: 0, probs: []float64{0.63, 0.37}, classes: []int{0, 1}}
	svc := NewService(clf, audit.NewMemoryStore())

	first, err := svc.Verify(context.Background(), validRequest())
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := svc.Verify(context.Background(), validRequest())
		require.NoError(t, err)
		assert.Equal(t, first.Decision, again.Decision)
		assert.Equal(t, first.FraudProbability, again.FraudProbability)
	}
}

func TestRound4(t *testing.T) {
	assert.Equal(t, 0.1235, Round4(0.12345))
	assert.Equal(t, 1.0, Round4(0.99999))
	assert.Equal(t, 0.0, Round4(0.00004))
}
