package results

import (
	"fmt"
	"math"
	"sort"

	"github.com/SAP-F-2025/swipe-quiz-service/internal/models"
)

const DefaultEpsilon = 1e-6

// Report is the outcome of comparing a computed result with an expected one.
// Pass is true iff Errors is empty.
type Report struct {
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors"`
}

type config struct {
	epsilon float64
}

type Option func(*config)

// WithEpsilon sets the absolute tolerance used for mean comparisons.
func WithEpsilon(epsilon float64) Option {
	return func(c *config) {
		c.epsilon = epsilon
	}
}

// ValidateTestResult compares actual against expected. Labels must match
// exactly; means are checked for every key in expected only. Blend is not
// compared. A key missing from actual is reported, never fatal.
func ValidateTestResult(actual, expected models.TestResult, opts ...Option) Report {
	cfg := config{epsilon: DefaultEpsilon}
	for _, opt := range opts {
		opt(&cfg)
	}

	errs := make([]string, 0)
	errs = appendLabelMismatch(errs, "primarySwipeType", actual.PrimarySwipeType, expected.PrimarySwipeType)
	errs = appendLabelMismatch(errs, "topStyle", actual.TopStyle, expected.TopStyle)
	errs = appendLabelMismatch(errs, "topEnneagram", actual.TopEnneagram, expected.TopEnneagram)
	errs = appendMeanMismatches(errs, "means.connection", actual.Means.Connection, expected.Means.Connection, cfg.epsilon)
	errs = appendMeanMismatches(errs, "means.enneagram", actual.Means.Enneagram, expected.Means.Enneagram, cfg.epsilon)

	return Report{Pass: len(errs) == 0, Errors: errs}
}

func appendLabelMismatch(errs []string, field, got, want string) []string {
	if got == want {
		return errs
	}
	return append(errs, fmt.Sprintf("%s mismatch: got %q, expected %q", field, got, want))
}

// appendMeanMismatches walks expected keys in sorted order so reports are
// stable. An absent actual value is NaN, which never compares equal.
func appendMeanMismatches(errs []string, field string, actual, expected map[string]float64, epsilon float64) []string {
	keys := make([]string, 0, len(expected))
	for k := range expected {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		want := expected[k]
		got, ok := actual[k]
		if !ok {
			got = math.NaN()
		}
		if approxEqual(got, want, epsilon) {
			continue
		}
		errs = append(errs, fmt.Sprintf("%s.%s mismatch: got %s, expected %s", field, k, formatMean(got, ok), formatMean(want, true)))
	}
	return errs
}

func approxEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}

func formatMean(v float64, present bool) string {
	if !present {
		return "undefined"
	}
	return fmt.Sprintf("%g", v)
}
