package ordering

import "github.com/SAP-F-2025/swipe-quiz-service/internal/models"

// selectBucket shuffles the indexes of questions carrying tag (skipping any
// index in exclude) and keeps at most count of them. The tagged pool is
// shuffled even when count is zero so the draws consumed depend only on the
// pool, not on the requested size.
func selectBucket(questions []models.Question, tag string, count int, exclude map[int]bool, gen Generator) ([]int, Generator) {
	var pool []int
	for i := range questions {
		if exclude[i] || !questions[i].HasTag(tag) {
			continue
		}
		pool = append(pool, i)
	}

	picked, gen := Shuffle(pool, gen)
	if count < 0 {
		count = 0
	}
	if len(picked) > count {
		picked = picked[:count]
	}
	return picked, gen
}

// SelectBucket returns up to count ids of questions tagged with tag, in
// shuffle order, along with the advanced generator.
func SelectBucket(questions []models.Question, tag string, count int, gen Generator) ([]uint, Generator) {
	picked, gen := selectBucket(questions, tag, count, nil, gen)
	return idsOf(questions, picked), gen
}

func idsOf(questions []models.Question, indexes []int) []uint {
	ids := make([]uint, len(indexes))
	for i, idx := range indexes {
		ids[i] = questions[idx].ID
	}
	return ids
}
