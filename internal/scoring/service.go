package scoring

import (
	"context"
	"time"

	"github.com/fraudlens/fraudlens/internal/audit"
	"github.com/fraudlens/fraudlens/internal/circuitbreaker"
	"github.com/fraudlens/fraudlens/internal/features"
	"github.com/fraudlens/fraudlens/internal/idgen"
	"github.com/fraudlens/fraudlens/internal/logging"
	"github.com/fraudlens/fraudlens/internal/metrics"
	"github.com/fraudlens/fraudlens/internal/model"
	"github.com/fraudlens/fraudlens/internal/traces"
)

// DefaultAuditTimeout bounds the audit write so a hung store never delays a
// decision that has already been computed.
const DefaultAuditTimeout = 2 * time.Second

// EventEmitter receives decision events for the realtime feed.
type EventEmitter interface {
	EmitDecision(decision string, details map[string]any)
}

// Result is the outcome of one verification, returned once per request.
type Result struct {
	Decision         Decision
	Reason           string
	Saved            bool
	FraudProbability float64
	TypingSpeed      float64
	TimeOnPage       float64
	PaymentType      string
	UserID           string
}

// The circuit breaker stops hammering an audit store that keeps failing:
// while open, blocked attempts degrade straight to saved:false instead of
// burning the write timeout on every decision.
const (
	auditCBThreshold = 5
	auditCBOpenFor   = 30 * time.Second
)

// Service runs verifications end to end: validate, score, decide, audit.
type Service struct {
	scorer       *Scorer
	store        audit.Store
	emitter      EventEmitter
	auditTimeout time.Duration
	breaker      *circuitbreaker.Breaker
}

// Option configures the service.
type Option func(*Service)

// WithAuditTimeout overrides the default audit-write timeout.
func WithAuditTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.auditTimeout = d
		}
	}
}

// WithEvents sets an emitter for realtime decision events.
func WithEvents(e EventEmitter) Option {
	return func(s *Service) { s.emitter = e }
}

// NewService creates a verification service. clf may be nil when the model
// artifact is absent; Verify then refuses with model.ErrNotLoaded.
func NewService(clf model.Classifier, store audit.Store, opts ...Option) *Service {
	s := &Service{
		store:        store,
		auditTimeout: DefaultAuditTimeout,
		breaker:      circuitbreaker.New("audit_store", auditCBThreshold, auditCBOpenFor),
	}
	if clf != nil {
		s.scorer = NewScorer(clf)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ModelLoaded reports whether a classifier is available for scoring.
func (s *Service) ModelLoaded() bool {
	return s.scorer != nil
}

// Verify runs one verification. A validation failure or an unloaded model
// is returned as an error; an audit-write failure is NOT an error — it
// degrades to Saved=false on an otherwise correct result.
func (s *Service) Verify(ctx context.Context, req features.Request) (*Result, error) {
	if s.scorer == nil {
		return nil, model.ErrNotLoaded
	}

	vec, err := features.Validate(req)
	if err != nil {
		return nil, err
	}

	paymentType, _ := req.PaymentType.(string) // guaranteed by Validate

	ctx, span := traces.StartSpan(ctx, "scoring.Verify",
		traces.PaymentType(paymentType),
		traces.UserID(req.UserID),
	)
	defer span.End()

	label, prob := s.scorer.Score(ctx, vec)

	result := &Result{
		Decision:         DecisionAllow,
		Reason:           "Verification successful",
		FraudProbability: Round4(prob),
		TypingSpeed:      vec[features.IdxTypingSpeed],
		TimeOnPage:       vec[features.IdxTimeOnPage],
		PaymentType:      paymentType,
		UserID:           req.UserID,
	}
	if label == FraudLabel {
		result.Decision = DecisionBlock
		result.Reason = "Fraud detected"
		result.Saved = s.recordAttempt(ctx, result)
	}

	span.SetAttributes(traces.Decision(string(result.Decision)))
	metrics.VerificationsTotal.WithLabelValues(string(result.Decision)).Inc()

	logging.L(ctx).Info("verification scored",
		"decision", result.Decision,
		"fraud_probability", result.FraudProbability,
		"payment_type", result.PaymentType,
		"user_id", result.UserID,
	)

	if s.emitter != nil {
		s.emitter.EmitDecision(string(result.Decision), map[string]any{
			"fraud_probability": result.FraudProbability,
			"payment_type":      result.PaymentType,
			"user_id":           result.UserID,
		})
	}

	return result, nil
}

// recordAttempt writes the blocked attempt to the audit store under a
// bounded timeout. Returns whether the write succeeded.
func (s *Service) recordAttempt(ctx context.Context, r *Result) bool {
	if s.store == nil {
		return false
	}

	if !s.breaker.Allow() {
		logging.L(ctx).Warn("audit store circuit open, skipping write")
		metrics.AuditWritesTotal.WithLabelValues("skipped").Inc()
		return false
	}

	writeCtx, cancel := context.WithTimeout(ctx, s.auditTimeout)
	defer cancel()

	err := s.store.Record(writeCtx, &audit.Attempt{
		ID:          idgen.WithPrefix("fa_"),
		UserID:      r.UserID,
		TypingSpeed: r.TypingSpeed,
		TimeOnPage:  r.TimeOnPage,
		PaymentType: r.PaymentType,
		Reason:      r.Reason,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		s.breaker.RecordFailure()
		logging.L(ctx).Error("audit write failed, decision unchanged", "error", err)
		metrics.AuditWritesTotal.WithLabelValues("error").Inc()
		return false
	}
	s.breaker.RecordSuccess()
	metrics.AuditWritesTotal.WithLabelValues("ok").Inc()
	return true
}
