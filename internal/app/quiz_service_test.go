package app_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"quizhub-service/internal/app"
	"quizhub-service/internal/domain"
	"quizhub-service/internal/infra/memory"
)

func TestCreateQuizValidates(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestQuizService()

	cases := []struct {
		name  string
		draft app.QuizDraft
	}{
		{"empty questions", app.QuizDraft{Title: "T", Description: "D"}},
		{"no correct option", app.QuizDraft{Title: "T", Description: "D", Questions: []domain.Question{
			{Text: "Q", Options: []domain.Option{{Text: "a"}, {Text: "b"}}},
		}}},
		{"two correct options", app.QuizDraft{Title: "T", Description: "D", Questions: []domain.Question{
			{Text: "Q", Options: []domain.Option{{Text: "a", Correct: true}, {Text: "b", Correct: true}}},
		}}},
		{"single option", app.QuizDraft{Title: "T", Description: "D", Questions: []domain.Question{
			{Text: "Q", Options: []domain.Option{{Text: "a", Correct: true}}},
		}}},
		{"missing title", app.QuizDraft{Description: "D", Questions: validQuestions()}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, "u1", tc.draft); !domain.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateAndGetQuiz(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestQuizService()

	created, err := svc.Create(ctx, "u1", app.QuizDraft{Title: "Go", Description: "basics", Questions: validQuestions()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.CreatorID != "u1" {
		t.Fatalf("unexpected quiz %+v", created)
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Go" || len(got.Questions) != 2 {
		t.Fatalf("unexpected quiz %+v", got)
	}
	if got.TimesTaken != 0 || got.HighestScore != 0 {
		t.Fatalf("expected zeroed counters, got %+v", got)
	}
}

func TestUpdateQuizOwnerOnly(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestQuizService()

	created, err := svc.Create(ctx, "u1", app.QuizDraft{Title: "Go", Description: "basics", Questions: validQuestions()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Update(ctx, created.ID, "intruder", app.QuizUpdate{Title: "Hacked"}); !errors.Is(err, domain.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	unchanged, _ := svc.Get(ctx, created.ID)
	if unchanged.Title != "Go" {
		t.Fatalf("quiz mutated by unauthorized update: %+v", unchanged)
	}

	updated, err := svc.Update(ctx, created.ID, "u1", app.QuizUpdate{Title: "Go 1.22"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Go 1.22" || updated.Description != "basics" {
		t.Fatalf("partial update broke unspecified fields: %+v", updated)
	}
}

func TestDeleteQuizCascades(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestQuizService()
	scorer := app.NewScorer(store, store, nil, zap.NewNop())

	created, err := svc.Create(ctx, "u1", app.QuizDraft{Title: "Go", Description: "basics", Questions: validQuestions()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := scorer.SubmitAttempt(ctx, created.ID, "learner", []domain.Answer{1, 0}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if err := svc.Delete(ctx, created.ID, "intruder"); !errors.Is(err, domain.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if err := svc.Delete(ctx, created.ID, "u1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := svc.Get(ctx, created.ID); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
	attempts, err := store.ListQuizAttempts(ctx, "learner", created.ID)
	if err != nil {
		t.Fatalf("list attempts: %v", err)
	}
	if len(attempts) != 0 {
		t.Fatalf("expected cascade to remove attempts, got %d", len(attempts))
	}
}

func TestListSummaries(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestQuizService()

	if _, err := svc.Create(ctx, "u1", app.QuizDraft{Title: "A", Description: "d", Questions: validQuestions()}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, "u2", app.QuizDraft{Title: "B", Description: "d", Questions: validQuestions()}); err != nil {
		t.Fatalf("create: %v", err)
	}

	summaries, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}
	if summaries[0].QuestionCount != 2 {
		t.Fatalf("expected question count 2, got %d", summaries[0].QuestionCount)
	}
}

func validQuestions() []domain.Question {
	return []domain.Question{
		{Text: "What is 2 + 2?", Options: []domain.Option{
			{Text: "3"}, {Text: "4", Correct: true}, {Text: "5"},
		}},
		{Text: "Capital of France?", Options: []domain.Option{
			{Text: "Paris", Correct: true}, {Text: "Lyon"},
		}},
	}
}

func newTestQuizService() (*app.QuizService, *memory.Store) {
	store := memory.NewStore()
	svc := app.NewQuizServiceWithClock(store, zap.NewNop(), sequentialIDs("quiz"), fixedClock())
	return svc, store
}

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func fixedClock() func() time.Time {
	base := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	n := 0
	return func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}
