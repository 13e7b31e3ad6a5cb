// Package features is the single source of truth for the scoring contract's
// input side: the fixed payment-type encoding, request validation, and the
// ordered feature vector consumed by the classifier.
//
// The payment mapping and the feature column order are shared verbatim
// between training (cmd/train), evaluation, and live scoring. Nothing else
// in the repository is allowed to restate them.
package features

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Feature column order. Index positions must match the order used at
// training time; a mismatch silently produces a meaningless score.
const (
	IdxTypingSpeed = 0
	IdxTimeOnPage  = 1
	IdxPaymentCode = 2
)

// NumFeatures is the width of the feature vector.
const NumFeatures = 3

// Accepted input ranges.
const (
	MaxTypingSpeed = 200.0  // keys per minute
	MaxTimeOnPage  = 3600.0 // seconds
)

// Vector is the ordered numeric input to the classifier:
// [typing_speed, time_on_page, payment_code].
type Vector [NumFeatures]float64

// paymentCodes is the fixed payment-type encoding. Lookup is
// case-insensitive; any string outside this set is a validation error,
// never a fifth category.
var paymentCodes = map[string]int{
	"cash on delivery": 0,
	"credit card":      1,
	"paytm":            2,
	"paypal":           3,
}

// PaymentCode maps a payment-type string to its integer code.
func PaymentCode(paymentType string) (int, bool) {
	code, ok := paymentCodes[strings.ToLower(strings.TrimSpace(paymentType))]
	return code, ok
}

// PaymentTypes returns the supported payment-type strings, sorted by code.
func PaymentTypes() []string {
	types := make([]string, 0, len(paymentCodes))
	for t := range paymentCodes {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool {
		return paymentCodes[types[i]] < paymentCodes[types[j]]
	})
	return types
}

// PaymentCodes returns a copy of the full payment-type → code mapping.
func PaymentCodes() map[string]int {
	m := make(map[string]int, len(paymentCodes))
	for k, v := range paymentCodes {
		m[k] = v
	}
	return m
}

// FeatureNames returns the feature column names in vector order.
func FeatureNames() []string {
	return []string{"typing_speed", "time_on_page", "payment_code"}
}

// Request is one checkout attempt as submitted by the client. The fields
// are raw JSON values so that a missing field is distinguishable from zero
// and numeric strings ("45") coerce the way the original clients expect.
type Request struct {
	TypingSpeed any    `json:"typing_speed"`
	TimeOnPage  any    `json:"time_on_page"`
	PaymentType any    `json:"payment_type"`
	UserID      string `json:"user_id,omitempty"`
}

// ValidationError reports malformed request input. It is always a
// client-facing 400; the message is safe to return verbatim.
type ValidationError struct {
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validate checks presence, coerces the numeric fields, enforces ranges,
// and maps the payment type, producing the ordered feature vector.
// Pure function, no side effects.
func Validate(req Request) (Vector, error) {
	var missing []string
	if req.TypingSpeed == nil {
		missing = append(missing, "typing_speed")
	}
	if req.TimeOnPage == nil {
		missing = append(missing, "time_on_page")
	}
	if req.PaymentType == nil {
		missing = append(missing, "payment_type")
	}
	if len(missing) > 0 {
		return Vector{}, &ValidationError{
			Message: "Missing required fields: " + strings.Join(missing, ", "),
			Fields:  missing,
		}
	}

	typingSpeed, okSpeed := toFloat(req.TypingSpeed)
	timeOnPage, okTime := toFloat(req.TimeOnPage)
	if !okSpeed || !okTime {
		return Vector{}, &ValidationError{
			Message: "Invalid numeric values for typing_speed or time_on_page",
			Fields:  []string{"typing_speed", "time_on_page"},
		}
	}

	if typingSpeed < 0 || typingSpeed > MaxTypingSpeed {
		return Vector{}, &ValidationError{
			Message: fmt.Sprintf("Typing speed out of valid range (0-%d)", int(MaxTypingSpeed)),
			Fields:  []string{"typing_speed"},
		}
	}
	if timeOnPage < 0 || timeOnPage > MaxTimeOnPage {
		return Vector{}, &ValidationError{
			Message: fmt.Sprintf("Time on page out of valid range (0-%d seconds)", int(MaxTimeOnPage)),
			Fields:  []string{"time_on_page"},
		}
	}

	paymentType, ok := req.PaymentType.(string)
	if !ok {
		return Vector{}, &ValidationError{
			Message: "payment_type must be a string",
			Fields:  []string{"payment_type"},
		}
	}
	code, ok := PaymentCode(paymentType)
	if !ok {
		return Vector{}, &ValidationError{
			Message: fmt.Sprintf("Unknown payment type: %s. Supported types: %s",
				paymentType, strings.Join(PaymentTypes(), ", ")),
			Fields: []string{"payment_type"},
		}
	}

	return Vector{typingSpeed, timeOnPage, float64(code)}, nil
}

// toFloat coerces a decoded JSON value to float64. Numeric strings are
// accepted because the original browser clients submit form values as text.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
