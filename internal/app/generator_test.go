package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"quizhub-service/internal/app"
	"quizhub-service/internal/domain"
	"quizhub-service/internal/infra/memory"
)

type stubCompleter struct {
	reply string
	err   error
	seen  string
}

func (s *stubCompleter) Complete(_ context.Context, prompt string) (string, error) {
	s.seen = prompt
	return s.reply, s.err
}

const generatedQuizJSON = `{
  "title": "Go Quiz",
  "description": "A medium difficulty quiz on Go with 1 questions.",
  "questions": [
    {
      "questionText": "What does go vet do?",
      "options": [
        {"text": "Formats code", "isCorrect": false},
        {"text": "Reports suspicious constructs", "isCorrect": true},
        {"text": "Runs benchmarks", "isCorrect": false},
        {"text": "Builds binaries", "isCorrect": false}
      ]
    }
  ]
}`

func TestGenerateQuizFromFencedJSON(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := app.NewQuizServiceWithClock(store, zap.NewNop(), sequentialIDs("quiz"), fixedClock())
	completer := &stubCompleter{reply: "Here you go:\n```json\n" + generatedQuizJSON + "\n```\nEnjoy!"}
	generator := app.NewGenerator(completer, svc, zap.NewNop())

	quiz, err := generator.Generate(ctx, "author", "Go", 1, "Medium")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if quiz.Title != "Go Quiz" || len(quiz.Questions) != 1 {
		t.Fatalf("unexpected quiz %+v", quiz)
	}
	if quiz.CreatorID != "author" {
		t.Fatalf("expected creator ownership, got %q", quiz.CreatorID)
	}
	if !strings.Contains(completer.seen, "about Go with 1 multiple-choice questions") {
		t.Fatalf("prompt missing topic/count: %q", completer.seen)
	}

	// The generated quiz went through the normal creation path.
	stored, err := store.GetQuiz(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("stored quiz missing: %v", err)
	}
	if domain.CorrectIndex(stored.Questions[0]) != 1 {
		t.Fatalf("unexpected correct index: %+v", stored.Questions[0])
	}
}

func TestGenerateQuizBareJSON(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := app.NewQuizServiceWithClock(store, zap.NewNop(), sequentialIDs("quiz"), fixedClock())
	generator := app.NewGenerator(&stubCompleter{reply: "preamble " + generatedQuizJSON + " postamble"}, svc, zap.NewNop())

	if _, err := generator.Generate(ctx, "author", "Go", 1, ""); err != nil {
		t.Fatalf("generate: %v", err)
	}
}

func TestGenerateQuizRejectsInvalidContent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := app.NewQuizServiceWithClock(store, zap.NewNop(), sequentialIDs("quiz"), fixedClock())

	// Model returned a question with two correct options.
	bad := strings.Replace(generatedQuizJSON, `{"text": "Formats code", "isCorrect": false}`,
		`{"text": "Formats code", "isCorrect": true}`, 1)
	generator := app.NewGenerator(&stubCompleter{reply: bad}, svc, zap.NewNop())

	if _, err := generator.Generate(ctx, "author", "Go", 1, "Hard"); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	quizzes, _ := store.ListQuizzes(ctx)
	if len(quizzes) != 0 {
		t.Fatalf("invalid generation was persisted: %+v", quizzes)
	}
}

func TestGenerateQuizUpstreamFailure(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := app.NewQuizServiceWithClock(store, zap.NewNop(), sequentialIDs("quiz"), fixedClock())
	upstream := errors.New("model overloaded")
	generator := app.NewGenerator(&stubCompleter{err: upstream}, svc, zap.NewNop())

	if _, err := generator.Generate(ctx, "author", "Go", 1, ""); !errors.Is(err, upstream) {
		t.Fatalf("expected wrapped upstream error, got %v", err)
	}
	if _, err := generator.Generate(ctx, "author", "", 1, ""); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for empty topic, got %v", err)
	}
}
