package app

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"quizhub-service/internal/domain"
)

// Aggregator derives per-user performance summaries from the attempt log.
// Pure reads; results only change when new attempts or quizzes appear.
type Aggregator struct {
	quizzes  QuizStore
	attempts AttemptStore
	log      *zap.Logger
}

func NewAggregator(quizzes QuizStore, attempts AttemptStore, log *zap.Logger) *Aggregator {
	return &Aggregator{quizzes: quizzes, attempts: attempts, log: log}
}

// UserPerformance groups the user's attempts by quiz (newest attempt first,
// quizzes ordered by most recent attempt) and computes per-quiz count, score
// history, max percentage, and a running average. Attempts whose quiz no
// longer resolves are skipped: the cascade delete and this scan are not
// transactionally linked, so a stray orphan must degrade to a log line, not
// an error.
func (a *Aggregator) UserPerformance(ctx context.Context, userID string) (domain.UserPerformance, error) {
	attempts, err := a.attempts.ListUserAttempts(ctx, userID)
	if err != nil {
		return domain.UserPerformance{}, err
	}

	titles := make(map[string]string)
	orphaned := make(map[string]bool)
	grouped := make(map[string]*domain.QuizPerformance)
	var order []string

	for _, attempt := range attempts {
		if orphaned[attempt.QuizID] {
			continue
		}
		title, known := titles[attempt.QuizID]
		if !known {
			quiz, err := a.quizzes.GetQuiz(ctx, attempt.QuizID)
			if errors.Is(err, domain.ErrQuizNotFound) {
				orphaned[attempt.QuizID] = true
				a.log.Warn("skipping attempts for deleted quiz",
					zap.String("quizId", attempt.QuizID),
					zap.String("userId", userID))
				continue
			}
			if err != nil {
				return domain.UserPerformance{}, err
			}
			title = quiz.Title
			titles[attempt.QuizID] = title
		}

		perf, ok := grouped[attempt.QuizID]
		if !ok {
			perf = &domain.QuizPerformance{QuizID: attempt.QuizID, Title: title}
			grouped[attempt.QuizID] = perf
			order = append(order, attempt.QuizID)
		}

		perf.Attempts++
		perf.Scores = append(perf.Scores, domain.ScorePoint{
			Score:      attempt.Score,
			Percentage: attempt.Percentage,
			Date:       attempt.CreatedAt,
		})
		if attempt.Percentage > perf.HighestScore {
			perf.HighestScore = attempt.Percentage
		}
		// Incremental running mean; order-independent, so iterating
		// newest-first still yields the plain arithmetic mean.
		perf.AveragePercentage = (perf.AveragePercentage*float64(perf.Attempts-1) + attempt.Percentage) / float64(perf.Attempts)
	}

	created, err := a.quizzes.CountQuizzesByCreator(ctx, userID)
	if err != nil {
		return domain.UserPerformance{}, err
	}

	result := domain.UserPerformance{
		Quizzes:             make([]domain.QuizPerformance, 0, len(order)),
		CreatedQuizzesCount: created,
	}
	for _, quizID := range order {
		result.Quizzes = append(result.Quizzes, *grouped[quizID])
	}
	return result, nil
}

// QuizAttempts returns the user's attempt history for one quiz, newest first.
func (a *Aggregator) QuizAttempts(ctx context.Context, userID, quizID string) ([]domain.Attempt, error) {
	return a.attempts.ListQuizAttempts(ctx, userID, quizID)
}
