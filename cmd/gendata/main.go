// Command gendata writes a synthetic labeled checkout dataset for training
// and evaluation. Fraud rows type implausibly fast and leave the page
// quickly; legitimate rows look like ordinary shoppers.
//
// Usage:
//
//	go run ./cmd/gendata -out data/fraud_dataset.csv -rows 500 -fraud-rate 0.1
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/fraudlens/fraudlens/internal/features"
	"github.com/fraudlens/fraudlens/internal/logging"
)

func main() {
	var (
		out       = flag.String("out", "data/fraud_dataset.csv", "output CSV path")
		rows      = flag.Int("rows", 500, "number of rows to generate")
		fraudRate = flag.Float64("fraud-rate", 0.1, "fraction of rows labeled fraud")
		seed      = flag.Int64("seed", 42, "random seed")
	)
	flag.Parse()

	logger := logging.New("info", "text")

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		logger.Error("failed to create output directory", "error", err)
		os.Exit(1)
	}

	f, err := os.Create(*out)
	if err != nil {
		logger.Error("failed to create output file", "path", *out, "error", err)
		os.Exit(1)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"typing_speed", "time_on_page", "payment_type", "user_id", "is_fraud"}); err != nil {
		logger.Error("failed to write header", "error", err)
		os.Exit(1)
	}

	rng := rand.New(rand.NewSource(*seed))
	paymentTypes := features.PaymentTypes()
	fraudCount := 0

	for i := 0; i < *rows; i++ {
		isFraud := 0
		if rng.Float64() < *fraudRate {
			isFraud = 1
			fraudCount++
		}

		record := []string{
			fmt.Sprintf("%d", typingSpeed(rng, isFraud)),
			fmt.Sprintf("%d", timeOnPage(rng, isFraud)),
			paymentType(rng, paymentTypes, isFraud),
			fmt.Sprintf("%d", 10000+rng.Intn(90000)),
			fmt.Sprintf("%d", isFraud),
		}
		if err := w.Write(record); err != nil {
			logger.Error("failed to write row", "error", err)
			os.Exit(1)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		logger.Error("failed to flush output", "error", err)
		os.Exit(1)
	}

	logger.Info("dataset generated",
		"path", *out,
		"rows", *rows,
		"fraud_rows", fraudCount,
	)
}

// typingSpeed stays within the range the verification API accepts, so the
// generated rows are also usable as /verify payloads.
func typingSpeed(rng *rand.Rand, isFraud int) int {
	if isFraud == 1 {
		return 120 + rng.Intn(81) // suspiciously fast
	}
	return 20 + rng.Intn(71) // normal human
}

func timeOnPage(rng *rand.Rand, isFraud int) int {
	if isFraud == 1 {
		return 5 + rng.Intn(26) // very short
	}
	return 45 + rng.Intn(556)
}

func paymentType(rng *rand.Rand, types []string, isFraud int) string {
	if isFraud == 1 {
		// Fraud skews toward card-style payments
		if rng.Float64() < 0.5 {
			return "credit card"
		}
		return "paypal"
	}
	return types[rng.Intn(len(types))]
}
