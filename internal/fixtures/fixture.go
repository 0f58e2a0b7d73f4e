// Package fixtures loads YAML scenario files: a question set, ordering
// options, a list of swipes and the outcome those swipes should score.
package fixtures

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/SAP-F-2025/swipe-quiz-service/internal/models"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/ordering"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/results"
)

var ErrInvalidFixture = errors.New("invalid fixture")

type Fixture struct {
	Name      string            `yaml:"name"`
	Options   ordering.Options  `yaml:"options"`
	Questions []models.Question `yaml:"questions"`

	// ExpectedOrder, when present, is the id sequence Options must produce
	ExpectedOrder []uint `yaml:"expected_order,omitempty"`

	Swipes   []results.Swipe        `yaml:"swipes,omitempty"`
	Expected *models.ExpectedResult `yaml:"expected,omitempty"`
}

// Load reads and parses a fixture file.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}
	fixture, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return fixture, nil
}

// Parse decodes a fixture. Options missing from the document keep their
// defaults; unknown keys are rejected.
func Parse(data []byte) (*Fixture, error) {
	fixture := &Fixture{Options: ordering.DefaultOptions()}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(fixture); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}

	if err := fixture.Validate(); err != nil {
		return nil, err
	}
	return fixture, nil
}

// Validate checks ids are unique and that every swipe and expected id refers
// to a known question.
func (f *Fixture) Validate() error {
	known := make(map[uint]bool, len(f.Questions))
	for i, q := range f.Questions {
		if q.ID == 0 {
			return fmt.Errorf("%w: questions[%d] has no id", ErrInvalidFixture, i)
		}
		if known[q.ID] {
			return fmt.Errorf("%w: duplicate question id %d", ErrInvalidFixture, q.ID)
		}
		if q.Framework != "" && !q.Framework.IsValid() {
			return fmt.Errorf("%w: question %d has unknown framework %q", ErrInvalidFixture, q.ID, q.Framework)
		}
		known[q.ID] = true
	}

	for i, s := range f.Swipes {
		if !known[s.QuestionID] {
			return fmt.Errorf("%w: swipes[%d] refers to unknown question %d", ErrInvalidFixture, i, s.QuestionID)
		}
		if !s.Direction.IsValid() {
			return fmt.Errorf("%w: swipes[%d] has unknown direction %q", ErrInvalidFixture, i, s.Direction)
		}
	}

	for _, id := range f.ExpectedOrder {
		if !known[id] {
			return fmt.Errorf("%w: expected_order refers to unknown question %d", ErrInvalidFixture, id)
		}
	}
	return nil
}

// Scenario results for a fixture
type Outcome struct {
	Plan       ordering.Plan     `json:"plan"`
	OrderMatch *bool             `json:"order_match,omitempty"`
	Result     models.TestResult `json:"result"`
	Report     *results.Report   `json:"report,omitempty"`
}

// Run sequences the questions, scores the swipes and, where the fixture
// carries expectations, compares against them.
func (f *Fixture) Run(opts ...results.Option) Outcome {
	out := Outcome{
		Plan:   ordering.Sequence(f.Questions, f.Options),
		Result: results.Score(f.Questions, f.Swipes),
	}

	if f.ExpectedOrder != nil {
		match := len(out.Plan.Orders) == len(f.ExpectedOrder)
		for i := 0; match && i < len(f.ExpectedOrder); i++ {
			match = out.Plan.Orders[i].ID == f.ExpectedOrder[i]
		}
		out.OrderMatch = &match
	}

	if f.Expected != nil {
		report := results.ValidateTestResult(out.Result, *f.Expected, opts...)
		out.Report = &report
	}
	return out
}

// Passed reports whether every expectation present in the fixture held.
func (o Outcome) Passed() bool {
	if o.OrderMatch != nil && !*o.OrderMatch {
		return false
	}
	if o.Report != nil && !o.Report.Pass {
		return false
	}
	return true
}
