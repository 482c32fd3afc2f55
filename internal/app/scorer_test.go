package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"quizhub-service/internal/app"
	"quizhub-service/internal/domain"
	"quizhub-service/internal/infra/memory"
)

// fourQuestionQuiz has correct indices [1, 0, 2, 3].
func fourQuestionQuiz() app.QuizDraft {
	return app.QuizDraft{
		Title:       "Mixed",
		Description: "four questions",
		Questions: []domain.Question{
			{Text: "Q1", Options: []domain.Option{{Text: "a"}, {Text: "b", Correct: true}, {Text: "c"}, {Text: "d"}}},
			{Text: "Q2", Options: []domain.Option{{Text: "a", Correct: true}, {Text: "b"}, {Text: "c"}, {Text: "d"}}},
			{Text: "Q3", Options: []domain.Option{{Text: "a"}, {Text: "b"}, {Text: "c", Correct: true}, {Text: "d"}}},
			{Text: "Q4", Options: []domain.Option{{Text: "a"}, {Text: "b"}, {Text: "c"}, {Text: "d", Correct: true}}},
		},
	}
}

func newScoringFixture(t *testing.T) (*app.Scorer, *memory.Store, string) {
	t.Helper()
	store := memory.NewStore()
	svc := app.NewQuizServiceWithClock(store, zap.NewNop(), sequentialIDs("quiz"), fixedClock())
	quiz, err := svc.Create(context.Background(), "author", fourQuestionQuiz())
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	scorer := app.NewScorerWithClock(store, store, nil, zap.NewNop(), sequentialIDs("attempt"), fixedClock())
	return scorer, store, quiz.ID
}

func TestSubmitAttemptGrades(t *testing.T) {
	ctx := context.Background()
	scorer, _, quizID := newScoringFixture(t)

	result, err := scorer.SubmitAttempt(ctx, quizID, "learner", []domain.Answer{1, 0, 0, 3})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Score != 3 || result.TotalQuestions != 4 {
		t.Fatalf("expected 3/4, got %d/%d", result.Score, result.TotalQuestions)
	}
	if result.Percentage != 75.0 {
		t.Fatalf("expected 75.0, got %v", result.Percentage)
	}
	if result.TimesTaken != 1 {
		t.Fatalf("expected timesTaken 1, got %d", result.TimesTaken)
	}
	if len(result.Review) != 4 {
		t.Fatalf("expected 4 review entries, got %d", len(result.Review))
	}
	third := result.Review[2]
	if third.Correct || third.UserAnswer != "a" || third.CorrectAnswer != "c" {
		t.Fatalf("unexpected review for question 3: %+v", third)
	}
	if !result.Review[0].Correct || !result.Review[1].Correct || !result.Review[3].Correct {
		t.Fatalf("expected questions 1,2,4 correct: %+v", result.Review)
	}
}

func TestSubmitAttemptExtremes(t *testing.T) {
	ctx := context.Background()
	scorer, _, quizID := newScoringFixture(t)

	perfect, err := scorer.SubmitAttempt(ctx, quizID, "learner", []domain.Answer{1, 0, 2, 3})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if perfect.Percentage != 100.0 || perfect.Score != 4 {
		t.Fatalf("expected perfect score, got %+v", perfect)
	}

	zero, err := scorer.SubmitAttempt(ctx, quizID, "learner", []domain.Answer{0, 1, 0, 0})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if zero.Percentage != 0.0 || zero.Score != 0 {
		t.Fatalf("expected zero score, got %+v", zero)
	}
}

func TestSubmitAttemptUnanswered(t *testing.T) {
	ctx := context.Background()
	scorer, _, quizID := newScoringFixture(t)

	result, err := scorer.SubmitAttempt(ctx, quizID, "learner",
		[]domain.Answer{domain.Unanswered, 0, domain.Unanswered, domain.Unanswered})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Score != 1 || result.Percentage != 25.0 {
		t.Fatalf("expected 1/4, got %+v", result)
	}
	if result.Review[0].UserAnswer != "Not answered" || result.Review[0].Correct {
		t.Fatalf("unexpected review for skipped question: %+v", result.Review[0])
	}
}

func TestSubmitAttemptValidation(t *testing.T) {
	ctx := context.Background()
	scorer, store, quizID := newScoringFixture(t)

	if _, err := scorer.SubmitAttempt(ctx, "missing", "learner", []domain.Answer{1, 0, 2, 3}); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
	if _, err := scorer.SubmitAttempt(ctx, quizID, "learner", []domain.Answer{1, 0}); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for short answers, got %v", err)
	}
	if _, err := scorer.SubmitAttempt(ctx, quizID, "learner", []domain.Answer{1, 0, 2, 9}); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for out-of-range index, got %v", err)
	}
	if _, err := scorer.SubmitAttempt(ctx, quizID, "", []domain.Answer{1, 0, 2, 3}); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for missing user, got %v", err)
	}

	// No side effects from rejected submissions.
	quiz, err := store.GetQuiz(ctx, quizID)
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if quiz.TimesTaken != 0 || quiz.HighestScore != 0 {
		t.Fatalf("rejected submissions mutated counters: %+v", quiz)
	}
	attempts, _ := store.ListUserAttempts(ctx, "learner")
	if len(attempts) != 0 {
		t.Fatalf("rejected submissions persisted attempts: %d", len(attempts))
	}
}

func TestCountersTrackAttempts(t *testing.T) {
	ctx := context.Background()
	scorer, store, quizID := newScoringFixture(t)

	submissions := [][]domain.Answer{
		{1, 0, 0, 0}, // 25%
		{1, 0, 2, 0}, // 50%
		{1, 0, 0, 3}, // 75%
		{0, 0, 2, 0}, // 50%
	}
	for _, answers := range submissions {
		if _, err := scorer.SubmitAttempt(ctx, quizID, "learner", answers); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	quiz, err := store.GetQuiz(ctx, quizID)
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if quiz.TimesTaken != 4 {
		t.Fatalf("expected timesTaken 4, got %d", quiz.TimesTaken)
	}
	if quiz.HighestScore != 75.0 {
		t.Fatalf("expected highestScore 75, got %v", quiz.HighestScore)
	}
}

func TestConcurrentSubmissions(t *testing.T) {
	ctx := context.Background()
	scorer, store, quizID := newScoringFixture(t)

	// 60% is impossible on 4 questions; use 50% and 100% submissions racing.
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		answers := []domain.Answer{1, 0, 0, 0}
		if i%2 == 1 {
			answers = []domain.Answer{1, 0, 2, 3}
		}
		wg.Add(1)
		go func(answers []domain.Answer) {
			defer wg.Done()
			if _, err := scorer.SubmitAttempt(ctx, quizID, "learner", answers); err != nil {
				t.Errorf("submit: %v", err)
			}
		}(answers)
	}
	wg.Wait()

	quiz, err := store.GetQuiz(ctx, quizID)
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if quiz.TimesTaken != 20 {
		t.Fatalf("lost increments: timesTaken=%d", quiz.TimesTaken)
	}
	if quiz.HighestScore != 100.0 {
		t.Fatalf("lost max update: highestScore=%v", quiz.HighestScore)
	}
}

func TestQuestionWithoutCorrectOptionNeverGradesCorrect(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	// Seed the store directly with a question that has no correct flag, a
	// shape creation-time validation would reject.
	broken := domain.Quiz{
		ID:          "legacy",
		CreatorID:   "author",
		Title:       "Legacy",
		Description: "pre-validation document",
		Questions: []domain.Question{
			{Text: "Q", Options: []domain.Option{{Text: "a"}, {Text: "b"}}},
		},
	}
	if err := store.CreateQuiz(ctx, broken); err != nil {
		t.Fatalf("seed quiz: %v", err)
	}
	scorer := app.NewScorerWithClock(store, store, nil, zap.NewNop(), sequentialIDs("attempt"), fixedClock())

	result, err := scorer.SubmitAttempt(ctx, "legacy", "learner", []domain.Answer{0})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Score != 0 || result.Review[0].Correct {
		t.Fatalf("ungradable question scored correct: %+v", result)
	}
}

func TestSubmitPublishesStats(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := app.NewQuizServiceWithClock(store, zap.NewNop(), sequentialIDs("quiz"), fixedClock())
	quiz, err := svc.Create(ctx, "author", fourQuestionQuiz())
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}

	feed := app.NewStatsFeed()
	updates, cancel := feed.Subscribe(quiz.ID)
	defer cancel()

	scorer := app.NewScorerWithClock(store, store, feed, zap.NewNop(), sequentialIDs("attempt"), fixedClock())
	if _, err := scorer.SubmitAttempt(ctx, quiz.ID, "learner", []domain.Answer{1, 0, 0, 3}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	stats := <-updates
	if stats.QuizID != quiz.ID || stats.TimesTaken != 1 || stats.HighestScore != 75.0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}
