package models

// Means holds the per-category mean scores of each framework.
type Means struct {
	Connection map[string]float64 `json:"connection" yaml:"connection"`
	Enneagram  map[string]float64 `json:"enneagram" yaml:"enneagram"`
}

// TestResult is the scored outcome of a session. The same shape is used for
// expected fixtures.
type TestResult struct {
	PrimarySwipeType string  `json:"primary_swipe_type" yaml:"primary_swipe_type"`
	TopStyle         string  `json:"top_style" yaml:"top_style"`
	TopEnneagram     string  `json:"top_enneagram" yaml:"top_enneagram"`
	Means            Means   `json:"means" yaml:"means"`
	Blend            *string `json:"blend,omitempty" yaml:"blend,omitempty"`
}

// ExpectedResult is a fixture describing what a scorer should produce.
type ExpectedResult = TestResult
