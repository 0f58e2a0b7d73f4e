package cache

import (
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/SAP-F-2025/swipe-quiz-service/internal/models"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/ordering"
)

// OrderingKey fingerprints everything an ordering depends on: options and,
// per question in input order, its id, framework and tags. Tags are free
// text, so each one is written with its length in front.
func OrderingKey(questions []models.Question, opts ordering.Options) string {
	d := xxhash.New()
	fmt.Fprintf(d, "s=%d;r=%d;w=%d;f=%d|", opts.Seed, opts.MaxRun, opts.WarmupCount, opts.FinaleCount)
	for _, q := range questions {
		fmt.Fprintf(d, "%d:%s:%d", q.ID, q.Framework, len(q.Tags))
		for _, tag := range q.Tags {
			fmt.Fprintf(d, ",%d:%s", len(tag), tag)
		}
		d.WriteString(";")
	}
	return fmt.Sprintf("v2:%d:%016x", len(questions), d.Sum64())
}
