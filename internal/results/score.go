// Package results scores swipe sessions and checks scored results against
// expected fixtures.
package results

import (
	"sort"

	"github.com/SAP-F-2025/swipe-quiz-service/internal/models"
)

// BlendMargin is the largest gap between the top two connection means for
// which the result is reported as a blend.
const BlendMargin = 0.1

// Swipe is one scored answer.
type Swipe struct {
	QuestionID uint                  `json:"question_id" yaml:"question_id"`
	Direction  models.SwipeDirection `json:"direction" yaml:"direction"`
}

// Score computes a TestResult from the question set and the swipes made on
// it. Swipes on unknown questions or with unknown directions are ignored.
// A reversed question scores the weight of the opposite direction.
func Score(questions []models.Question, swipes []Swipe) models.TestResult {
	byID := make(map[uint]*models.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}

	type acc struct {
		sum   float64
		count int
	}
	totals := map[models.Framework]map[string]*acc{
		models.FrameworkConnection: {},
		models.FrameworkEnneagram:  {},
	}
	directions := make(map[models.SwipeDirection]int)

	for _, s := range swipes {
		q, ok := byID[s.QuestionID]
		if !ok || !s.Direction.IsValid() {
			continue
		}
		directions[s.Direction]++

		byCategory, ok := totals[q.Framework]
		if !ok {
			continue
		}
		dir := s.Direction
		if q.Reverse {
			dir = dir.Opposite()
		}
		a := byCategory[q.Category]
		if a == nil {
			a = &acc{}
			byCategory[q.Category] = a
		}
		a.sum += q.Weight[dir]
		a.count++
	}

	means := func(fw models.Framework) map[string]float64 {
		out := make(map[string]float64, len(totals[fw]))
		for category, a := range totals[fw] {
			out[category] = a.sum / float64(a.count)
		}
		return out
	}

	result := models.TestResult{
		PrimarySwipeType: primaryDirection(directions),
		Means: models.Means{
			Connection: means(models.FrameworkConnection),
			Enneagram:  means(models.FrameworkEnneagram),
		},
	}

	ranked := rank(result.Means.Connection)
	if len(ranked) > 0 {
		result.TopStyle = ranked[0]
	}
	if len(ranked) > 1 {
		top, second := result.Means.Connection[ranked[0]], result.Means.Connection[ranked[1]]
		if top-second <= BlendMargin {
			blend := ranked[0] + "+" + ranked[1]
			result.Blend = &blend
		}
	}
	if ranked := rank(result.Means.Enneagram); len(ranked) > 0 {
		result.TopEnneagram = ranked[0]
	}

	return result
}

func primaryDirection(counts map[models.SwipeDirection]int) string {
	best, bestCount := "", 0
	for _, d := range models.SwipeDirections {
		if counts[d] > bestCount {
			best, bestCount = string(d), counts[d]
		}
	}
	return best
}

// rank orders categories by mean descending, ties alphabetically.
func rank(means map[string]float64) []string {
	keys := make([]string, 0, len(means))
	for k := range means {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if means[keys[i]] != means[keys[j]] {
			return means[keys[i]] > means[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}
