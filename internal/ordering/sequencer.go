// Package ordering computes the deterministic presentation order of a
// question set: seeded warm-up and finale buckets around a shuffled middle,
// repaired so no framework runs longer than a configured limit where a break
// is available.
package ordering

import (
	"slices"

	"github.com/SAP-F-2025/swipe-quiz-service/internal/models"
)

// Plan is the full outcome of an ordering computation.
type Plan struct {
	Orders []models.QuestionOrder `json:"orders"`

	// Selected bucket ids in selection order, before repair.
	Warmup []uint `json:"warmup"`
	Finale []uint `json:"finale"`

	// Deferred counts items pushed into the repair buffer; Flushed counts
	// those still buffered when the candidates ran out.
	Deferred int `json:"deferred"`
	Flushed  int `json:"flushed"`

	// LongestRun is the longest same-framework streak in the final order.
	LongestRun int `json:"longest_run"`
}

// Randomize returns the display order for questions under opts.
func Randomize(questions []models.Question, opts Options) []models.QuestionOrder {
	return Sequence(questions, opts).Orders
}

// Sequence builds warm-up ++ shuffled middle ++ finale, then repairs the
// window rule. It never fails: every input question appears exactly once in
// the result regardless of how the repair goes.
func Sequence(questions []models.Question, opts Options) Plan {
	if len(questions) == 0 {
		return Plan{Orders: []models.QuestionOrder{}}
	}

	gen := NewGenerator(opts.Seed)

	var warmup, finale []int
	warmup, gen = selectBucket(questions, models.TagWarmup, opts.WarmupCount, nil, gen)
	chosen := make(map[int]bool, len(warmup))
	for _, idx := range warmup {
		chosen[idx] = true
	}
	finale, gen = selectBucket(questions, models.TagHighSignal, opts.FinaleCount, chosen, gen)
	for _, idx := range finale {
		chosen[idx] = true
	}

	middle := make([]int, 0, len(questions)-len(chosen))
	for i := range questions {
		if !chosen[i] {
			middle = append(middle, i)
		}
	}
	middle, _ = Shuffle(middle, gen)

	candidates := make([]item, 0, len(questions))
	for _, part := range [][]int{warmup, middle, finale} {
		for _, idx := range part {
			candidates = append(candidates, item{id: questions[idx].ID, framework: questions[idx].Framework})
		}
	}

	state := newRepairState(candidates, opts.MaxRun)
	for !state.done() {
		state.step()
	}
	flushed := len(state.buffer)
	state.flush()

	orders := make([]models.QuestionOrder, len(state.out))
	for i, it := range state.out {
		orders[i] = models.QuestionOrder{ID: it.id, DisplayOrder: i + 1}
	}

	return Plan{
		Orders:     orders,
		Warmup:     idsOf(questions, warmup),
		Finale:     idsOf(questions, finale),
		Deferred:   state.deferred,
		Flushed:    flushed,
		LongestRun: longestRun(state.out),
	}
}

type item struct {
	id        uint
	framework models.Framework
}

// repairState walks the candidate queue, deferring items that would extend
// the current streak past maxRun and splicing the first buffered item of a
// different framework in their place.
type repairState struct {
	queue  []item
	buffer []item
	out    []item

	streak models.Framework
	runLen int

	maxRun   int
	deferred int
}

func newRepairState(candidates []item, maxRun int) *repairState {
	return &repairState{
		queue:  candidates,
		out:    make([]item, 0, len(candidates)),
		maxRun: maxRun,
	}
}

func (s *repairState) done() bool {
	return len(s.queue) == 0
}

func (s *repairState) step() {
	next := s.queue[0]
	s.queue = s.queue[1:]

	if !s.exceeds(next) {
		s.place(next)
		return
	}

	s.buffer = append(s.buffer, next)
	s.deferred++
	if i := s.breaker(); i >= 0 {
		b := s.buffer[i]
		s.buffer = slices.Delete(s.buffer, i, i+1)
		s.place(b)
	}
}

// exceeds reports whether placing it now would break the window rule.
// maxRun < 1 disables the rule; items without a framework never count.
func (s *repairState) exceeds(it item) bool {
	return s.maxRun > 0 &&
		it.framework != "" &&
		it.framework == s.streak &&
		s.runLen >= s.maxRun
}

// breaker returns the first buffered index whose framework differs from the
// active streak, or -1.
func (s *repairState) breaker() int {
	return slices.IndexFunc(s.buffer, func(it item) bool {
		return it.framework != s.streak
	})
}

func (s *repairState) place(it item) {
	switch {
	case it.framework == "":
		s.streak, s.runLen = "", 0
	case it.framework == s.streak:
		s.runLen++
	default:
		s.streak, s.runLen = it.framework, 1
	}
	s.out = append(s.out, it)
}

// flush appends whatever is still deferred, in buffer order, even when that
// leaves a run longer than maxRun.
func (s *repairState) flush() {
	for _, it := range s.buffer {
		s.place(it)
	}
	s.buffer = nil
}

func longestRun(items []item) int {
	longest, run := 0, 0
	var prev models.Framework
	for i, it := range items {
		switch {
		case it.framework == "":
			run = 0
		case i > 0 && it.framework == prev:
			run++
		default:
			run = 1
		}
		prev = it.framework
		longest = max(longest, run)
	}
	return longest
}
