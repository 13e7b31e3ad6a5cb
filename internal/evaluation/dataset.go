// Package evaluation recomputes accuracy statistics for the fraud
// classifier: held-out evaluation of the configured dataset, evaluation of
// caller-supplied rows, and k-fold cross-validation. It applies the exact
// feature encoding used at training and inference time.
package evaluation

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/fraudlens/fraudlens/internal/features"
)

// Row is one labeled sample.
type Row struct {
	TypingSpeed float64 `json:"typing_speed"`
	TimeOnPage  float64 `json:"time_on_page"`
	PaymentType string  `json:"payment_type"`
	IsFraud     int     `json:"is_fraud"`
}

// requiredColumns are the dataset columns the evaluator needs; extra
// columns (user_id in generated datasets) are ignored.
var requiredColumns = []string{"typing_speed", "time_on_page", "payment_type", "is_fraud"}

// LoadCSV reads a labeled dataset. A missing file is a ResourceError;
// missing columns are a ValidationError naming them; malformed cells are
// an EvaluationError carrying the row number.
func LoadCSV(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &ResourceError{Resource: path, Err: err}
		}
		return nil, &ResourceError{Resource: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, &EvaluationError{Stage: "reading dataset header", Err: err}
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.ToLower(name))] = i
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &features.ValidationError{
			Message: "Missing required columns: " + strings.Join(missing, ", "),
			Fields:  missing,
		}
	}

	var rows []Row
	line := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &EvaluationError{Stage: fmt.Sprintf("reading dataset line %d", line+1), Err: err}
		}
		line++

		row, err := parseRow(record, cols)
		if err != nil {
			return nil, &EvaluationError{Stage: fmt.Sprintf("parsing dataset line %d", line), Err: err}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func parseRow(record []string, cols map[string]int) (Row, error) {
	speed, err := strconv.ParseFloat(strings.TrimSpace(record[cols["typing_speed"]]), 64)
	if err != nil {
		return Row{}, fmt.Errorf("typing_speed: %w", err)
	}
	page, err := strconv.ParseFloat(strings.TrimSpace(record[cols["time_on_page"]]), 64)
	if err != nil {
		return Row{}, fmt.Errorf("time_on_page: %w", err)
	}
	label, err := strconv.Atoi(strings.TrimSpace(record[cols["is_fraud"]]))
	if err != nil {
		return Row{}, fmt.Errorf("is_fraud: %w", err)
	}
	if label != 0 && label != 1 {
		return Row{}, fmt.Errorf("is_fraud: label %d outside {0,1}", label)
	}
	return Row{
		TypingSpeed: speed,
		TimeOnPage:  page,
		PaymentType: record[cols["payment_type"]],
		IsFraud:     label,
	}, nil
}

// Encode applies the shared payment-type encoding to every row. Any
// unmapped payment type fails the whole evaluation with a descriptive
// error listing the offending values — never a per-row skip.
func Encode(rows []Row) ([]features.Vector, []int, error) {
	samples := make([]features.Vector, 0, len(rows))
	labels := make([]int, 0, len(rows))
	unknown := make(map[string]bool)

	for _, row := range rows {
		code, ok := features.PaymentCode(row.PaymentType)
		if !ok {
			unknown[row.PaymentType] = true
			continue
		}
		samples = append(samples, features.Vector{row.TypingSpeed, row.TimeOnPage, float64(code)})
		labels = append(labels, row.IsFraud)
	}

	if len(unknown) > 0 {
		values := make([]string, 0, len(unknown))
		for v := range unknown {
			values = append(values, v)
		}
		sort.Strings(values)
		return nil, nil, &features.ValidationError{
			Message: fmt.Sprintf("Unknown payment_type values in test_data: %s. Supported: %s",
				strings.Join(values, ", "), strings.Join(features.PaymentTypes(), ", ")),
			Fields: []string{"payment_type"},
		}
	}

	return samples, labels, nil
}
