package ordering

const (
	DefaultSeed        int64 = 42
	DefaultMaxRun            = 2
	DefaultWarmupCount       = 6
	DefaultFinaleCount       = 6
)

// Options controls a single ordering computation. Start from DefaultOptions
// and override fields; zero counts are meaningful (no warm-up, no finale).
type Options struct {
	Seed        int64 `json:"seed" yaml:"seed"`
	MaxRun      int   `json:"max_run" yaml:"max_run"`
	WarmupCount int   `json:"warmup_count" yaml:"warmup_count"`
	FinaleCount int   `json:"finale_count" yaml:"finale_count"`
}

func DefaultOptions() Options {
	return Options{
		Seed:        DefaultSeed,
		MaxRun:      DefaultMaxRun,
		WarmupCount: DefaultWarmupCount,
		FinaleCount: DefaultFinaleCount,
	}
}

// Overrides carries optional per-call changes to a base Options value.
type Overrides struct {
	Seed        *int64 `json:"seed,omitempty" yaml:"seed,omitempty"`
	MaxRun      *int   `json:"max_run,omitempty" yaml:"max_run,omitempty" validate:"omitempty,min=1,max=100"`
	WarmupCount *int   `json:"warmup_count,omitempty" yaml:"warmup_count,omitempty" validate:"omitempty,min=0,max=100"`
	FinaleCount *int   `json:"finale_count,omitempty" yaml:"finale_count,omitempty" validate:"omitempty,min=0,max=100"`
}

// Apply returns base with every non-nil override applied.
func (o Overrides) Apply(base Options) Options {
	if o.Seed != nil {
		base.Seed = *o.Seed
	}
	if o.MaxRun != nil {
		base.MaxRun = *o.MaxRun
	}
	if o.WarmupCount != nil {
		base.WarmupCount = *o.WarmupCount
	}
	if o.FinaleCount != nil {
		base.FinaleCount = *o.FinaleCount
	}
	return base
}
