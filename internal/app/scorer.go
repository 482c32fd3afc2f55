package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"quizhub-service/internal/domain"
)

const unansweredText = "Not answered"

// Scorer grades submitted attempts, persists them as immutable records, and
// keeps the quiz counters current.
type Scorer struct {
	quizzes  QuizStore
	attempts AttemptStore
	feed     *StatsFeed
	log      *zap.Logger
	newID    func() string
	now      func() time.Time
}

func NewScorer(quizzes QuizStore, attempts AttemptStore, feed *StatsFeed, log *zap.Logger) *Scorer {
	return &Scorer{
		quizzes:  quizzes,
		attempts: attempts,
		feed:     feed,
		log:      log,
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// NewScorerWithClock is test-only for deterministic IDs and timestamps.
func NewScorerWithClock(quizzes QuizStore, attempts AttemptStore, feed *StatsFeed, log *zap.Logger, newID func() string, now func() time.Time) *Scorer {
	return &Scorer{quizzes: quizzes, attempts: attempts, feed: feed, log: log, newID: newID, now: now}
}

// SubmitAttempt grades answers against the quiz, persists the attempt, and
// bumps the quiz counters. Validation and not-found failures happen before
// any write; a failed counter update after the attempt insert is tolerable
// because the attempt log, not the counters, is authoritative for stats.
func (s *Scorer) SubmitAttempt(ctx context.Context, quizID, userID string, answers []domain.Answer) (domain.AttemptResult, error) {
	if userID == "" {
		return domain.AttemptResult{}, domain.Validationf("userId is required")
	}

	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.AttemptResult{}, err
	}
	if err := validateAnswers(quiz, answers); err != nil {
		return domain.AttemptResult{}, err
	}

	score, review := grade(quiz, answers)
	total := len(quiz.Questions)
	percentage := float64(score) / float64(total) * 100

	attempt := domain.Attempt{
		ID:             s.newID(),
		UserID:         userID,
		QuizID:         quizID,
		Score:          score,
		TotalQuestions: total,
		Percentage:     percentage,
		CreatedAt:      s.now(),
	}
	if err := s.attempts.InsertAttempt(ctx, attempt); err != nil {
		return domain.AttemptResult{}, fmt.Errorf("insert attempt: %w", err)
	}

	timesTaken, highest, err := s.quizzes.RecordAttempt(ctx, quizID, percentage)
	if err != nil {
		return domain.AttemptResult{}, fmt.Errorf("update quiz counters: %w", err)
	}

	if s.feed != nil {
		s.feed.Publish(domain.QuizStats{
			QuizID:       quizID,
			TimesTaken:   timesTaken,
			HighestScore: highest,
			UpdatedAt:    attempt.CreatedAt,
		})
	}
	s.log.Info("attempt scored",
		zap.String("quizId", quizID),
		zap.String("userId", userID),
		zap.Int("score", score),
		zap.Float64("percentage", percentage))

	return domain.AttemptResult{
		AttemptID:      attempt.ID,
		Score:          score,
		TotalQuestions: total,
		Percentage:     percentage,
		TimesTaken:     timesTaken,
		Review:         review,
	}, nil
}

// validateAnswers rejects malformed submissions: one entry per question, each
// either Unanswered or a valid option index for its question.
func validateAnswers(quiz domain.Quiz, answers []domain.Answer) error {
	if len(answers) != len(quiz.Questions) {
		return domain.Validationf("expected %d answers, got %d", len(quiz.Questions), len(answers))
	}
	for i, answer := range answers {
		if answer == domain.Unanswered {
			continue
		}
		if answer < 0 || int(answer) >= len(quiz.Questions[i].Options) {
			return domain.Validationf("answer %d: option index %d out of range", i, answer)
		}
	}
	return nil
}

// grade compares each answer to its question's canonical correct index and
// builds the per-question review. An unanswered entry never counts as correct,
// and neither does any answer to a question whose canonical index is -1.
func grade(quiz domain.Quiz, answers []domain.Answer) (int, []domain.ReviewEntry) {
	score := 0
	review := make([]domain.ReviewEntry, 0, len(quiz.Questions))
	for i, question := range quiz.Questions {
		answer := answers[i]
		correctIndex := domain.CorrectIndex(question)
		correct := correctIndex >= 0 && int(answer) == correctIndex

		if correct {
			score++
		}

		userAnswer := unansweredText
		if answer != domain.Unanswered {
			userAnswer = question.Options[answer].Text
		}
		correctAnswer := ""
		if correctIndex >= 0 {
			correctAnswer = question.Options[correctIndex].Text
		}
		review = append(review, domain.ReviewEntry{
			Question:      question.Text,
			UserAnswer:    userAnswer,
			CorrectAnswer: correctAnswer,
			Correct:       correct,
		})
	}
	return score, review
}
