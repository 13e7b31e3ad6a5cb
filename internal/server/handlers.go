package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fraudlens/fraudlens/internal/audit"
	"github.com/fraudlens/fraudlens/internal/evaluation"
	"github.com/fraudlens/fraudlens/internal/features"
	"github.com/fraudlens/fraudlens/internal/logging"
	"github.com/fraudlens/fraudlens/internal/model"
	"github.com/fraudlens/fraudlens/internal/pagination"
	"github.com/fraudlens/fraudlens/internal/scoring"
)

// defaultAttemptsLimit bounds GET /fraud-attempts when no limit is given.
const defaultAttemptsLimit = 100

// -----------------------------------------------------------------------------
// Health
// -----------------------------------------------------------------------------

func (s *Server) healthHandler(c *gin.Context) {
	healthy, statuses := s.healthReg.CheckAll(c.Request.Context())

	database := "disconnected"
	for _, st := range statuses {
		if st.Name == "database" && st.Healthy {
			database = "connected"
		}
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, gin.H{
		"status":       status,
		"model_loaded": s.verifier.ModelLoaded(),
		"database":     database,
		"checks":       statuses,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) livenessHandler(c *gin.Context) {
	if !s.healthy.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

func (s *Server) readinessHandler(c *gin.Context) {
	if !s.ready.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// -----------------------------------------------------------------------------
// Verification
// -----------------------------------------------------------------------------

// blockResponse is the refusal envelope: every rejected request carries an
// explicit block decision so callers never mistake an error for an allow.
func blockResponse(c *gin.Context, status int, reason string) {
	c.JSON(status, gin.H{
		"decision": string(scoring.DecisionBlock),
		"reason":   reason,
		"details":  gin.H{},
	})
}

func (s *Server) verifyHandler(c *gin.Context) {
	var req features.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		blockResponse(c, http.StatusBadRequest, "No data provided")
		return
	}

	result, err := s.verifier.Verify(c.Request.Context(), req)
	if err != nil {
		var valErr *features.ValidationError
		switch {
		case errors.As(err, &valErr):
			blockResponse(c, http.StatusBadRequest, valErr.Message)
		case errors.Is(err, model.ErrNotLoaded):
			blockResponse(c, http.StatusInternalServerError, "Model not loaded")
		default:
			logging.L(c.Request.Context()).Error("verification failed", "error", err)
			blockResponse(c, http.StatusInternalServerError, fmt.Sprintf("Internal server error: %v", err))
		}
		return
	}

	var userID any
	if result.UserID != "" {
		userID = result.UserID
	}

	c.JSON(http.StatusOK, gin.H{
		"decision": string(result.Decision),
		"reason":   result.Reason,
		"saved":    result.Saved,
		"details": gin.H{
			"fraud_probability": result.FraudProbability,
			"typing_speed":      result.TypingSpeed,
			"time_on_page":      result.TimeOnPage,
			"payment_type":      result.PaymentType,
			"user_id":           userID,
		},
	})
}

// -----------------------------------------------------------------------------
// Audit trail
// -----------------------------------------------------------------------------

func (s *Server) fraudAttemptsHandler(c *gin.Context) {
	limit := defaultAttemptsLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	cursor, err := pagination.Decode(c.Query("cursor"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cursor"})
		return
	}

	ctx := c.Request.Context()

	// Fetch one extra row to detect whether another page exists.
	var attempts []*audit.Attempt
	if cursor != nil {
		attempts, err = s.auditStore.ListBefore(ctx, cursor.CreatedAt, cursor.ID, limit+1)
	} else {
		attempts, err = s.auditStore.List(ctx, limit+1)
	}
	if err != nil {
		logging.L(ctx).Error("failed to list fraud attempts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":    fmt.Sprintf("Database error: %v", err),
			"attempts": []any{},
		})
		return
	}

	attempts, nextCursor, hasMore := pagination.ComputePage(attempts, limit, func(a *audit.Attempt) (time.Time, string) {
		return a.CreatedAt, a.ID
	})

	total, err := s.auditStore.Count(ctx)
	if err != nil {
		logging.L(ctx).Warn("failed to count fraud attempts", "error", err)
		total = int64(len(attempts))
	}

	resp := gin.H{
		"status":   "success",
		"count":    len(attempts),
		"total":    total,
		"attempts": attempts,
		"has_more": hasMore,
	}
	if nextCursor != "" {
		resp["next_cursor"] = nextCursor
	}
	c.JSON(http.StatusOK, resp)
}

// -----------------------------------------------------------------------------
// Model metadata & accuracy
// -----------------------------------------------------------------------------

func (s *Server) modelInfoHandler(c *gin.Context) {
	if !s.verifier.ModelLoaded() {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Model not loaded",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":                  "loaded",
		"model_type":              s.clf.Type(),
		"feature_names":           features.FeatureNames(),
		"payment_types":           features.PaymentTypes(),
		"supported_payment_codes": features.PaymentCodes(),
	})
}

// evalErrorResponse maps evaluation failures onto the API's error envelope.
func evalErrorResponse(c *gin.Context, err error) {
	var (
		resErr  *evaluation.ResourceError
		valErr  *features.ValidationError
		evalErr *evaluation.EvaluationError
	)
	switch {
	case errors.As(err, &resErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      fmt.Sprintf("Test data file not found: %s", resErr.Resource),
			"suggestion": "Generate a labeled dataset with the gendata tool",
		})
	case errors.As(err, &valErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": valErr.Message})
	case errors.As(err, &evalErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": evalErr.Error()})
	default:
		logging.L(c.Request.Context()).Error("evaluation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func (s *Server) accuracyHandler(c *gin.Context) {
	if !s.verifier.ModelLoaded() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Model not loaded"})
		return
	}

	results, err := s.evaluator.EvaluateDataset(c.Request.Context(), s.clf)
	if err != nil {
		evalErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":           "success",
		"accuracy_metrics": results,
	})
}

func (s *Server) detailedAccuracyHandler(c *gin.Context) {
	if !s.verifier.ModelLoaded() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Model not loaded"})
		return
	}

	results, err := s.evaluator.EvaluateDataset(c.Request.Context(), s.clf)
	if err != nil {
		evalErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":           "success",
		"detailed_metrics": results,
	})
}

func (s *Server) customAccuracyHandler(c *gin.Context) {
	if !s.verifier.ModelLoaded() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Model not loaded"})
		return
	}

	var body struct {
		TestData []evaluation.Row `json:"test_data"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.TestData == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Please provide test_data in the request body",
		})
		return
	}

	result, err := s.evaluator.EvaluateRows(c.Request.Context(), s.clf, body.TestData)
	if err != nil {
		evalErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "success",
		"metrics":     result.Metrics,
		"predictions": result.Predictions,
	})
}

func (s *Server) performanceSummaryHandler(c *gin.Context) {
	if !s.verifier.ModelLoaded() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Model not loaded"})
		return
	}

	modelInfo := gin.H{
		"model_type":    s.clf.Type(),
		"feature_names": features.FeatureNames(),
		"payment_types": features.PaymentTypes(),
	}

	// A failed evaluation does not fail the summary: the model info is
	// still useful, so the error rides along in accuracy_evaluation.
	var accuracyEvaluation any
	if results, err := s.evaluator.EvaluateDataset(c.Request.Context(), s.clf); err != nil {
		accuracyEvaluation = gin.H{"error": err.Error()}
	} else {
		accuracyEvaluation = results
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"performance_summary": gin.H{
			"model_info":          modelInfo,
			"accuracy_evaluation": accuracyEvaluation,
		},
	})
}

// -----------------------------------------------------------------------------
// Feed
// -----------------------------------------------------------------------------

func (s *Server) feedStatsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"feed":   s.feedHub.Stats(),
	})
}
