package cache

import (
	"context"
	"fmt"
	"log/slog"
)

func QuestionKey(id uint) string {
	return fmt.Sprintf("id:%d", id)
}

func SessionKey(id string) string {
	return "id:" + id
}

// questionListPattern matches every cached question listing
const questionListPattern = "list:*"

// InvalidateQuestionLists drops cached question listings after a write.
// Cached orderings are keyed by content, so they never go stale.
func InvalidateQuestionLists(ctx context.Context, cm *CacheManager) {
	if err := cm.Question.DeleteMatching(ctx, questionListPattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate question lists", "error", err)
	}
}

// InvalidateQuestion drops one question and every cached listing
func InvalidateQuestion(ctx context.Context, cm *CacheManager, id uint) {
	if err := cm.Question.Delete(ctx, QuestionKey(id)); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate question", "error", err, "question_id", id)
	}
	InvalidateQuestionLists(ctx, cm)
}

func InvalidateSession(ctx context.Context, cm *CacheManager, id string) {
	if err := cm.Session.Delete(ctx, SessionKey(id)); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate session", "error", err, "session_id", id)
	}
}
