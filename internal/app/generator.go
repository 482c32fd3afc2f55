package app

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"quizhub-service/internal/domain"
)

// TextCompleter abstracts the external text-generation service.
type TextCompleter interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Generator asks the text-generation service for quiz content and persists it
// through the normal creation path, so generated quizzes face the same schema
// validation as manually authored ones.
type Generator struct {
	completer TextCompleter
	quizzes   *QuizService
	log       *zap.Logger
}

func NewGenerator(completer TextCompleter, quizzes *QuizService, log *zap.Logger) *Generator {
	return &Generator{completer: completer, quizzes: quizzes, log: log}
}

// Generate produces and stores a quiz about topic, owned by creatorID.
func (g *Generator) Generate(ctx context.Context, creatorID, topic string, questionCount int, difficulty string) (domain.Quiz, error) {
	if topic == "" {
		return domain.Quiz{}, domain.Validationf("topic is required")
	}
	if questionCount <= 0 {
		questionCount = 10
	}
	if difficulty == "" {
		difficulty = "Medium"
	}

	raw, err := g.completer.Complete(ctx, buildPrompt(topic, questionCount, difficulty))
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("generate quiz: %w", err)
	}

	var draft QuizDraft
	if err := json.Unmarshal([]byte(extractJSON(raw)), &draft); err != nil {
		return domain.Quiz{}, fmt.Errorf("generate quiz: decode content: %w", err)
	}

	quiz, err := g.quizzes.Create(ctx, creatorID, draft)
	if err != nil {
		return domain.Quiz{}, err
	}
	g.log.Info("quiz generated",
		zap.String("quizId", quiz.ID),
		zap.String("topic", topic),
		zap.Int("questions", len(quiz.Questions)))
	return quiz, nil
}

func buildPrompt(topic string, questionCount int, difficulty string) string {
	lower := strings.ToLower(difficulty)
	return fmt.Sprintf(`Generate a %s difficulty quiz about %s with %d multiple-choice questions.
Provide the response in the following strict JSON format:
{
  "title": "%s Quiz",
  "description": "A %s difficulty quiz on %s with %d questions.",
  "questions": [
    {
      "questionText": "Question text",
      "options": [
        {"text": "Option 1", "isCorrect": false},
        {"text": "Option 2", "isCorrect": true},
        {"text": "Option 3", "isCorrect": false},
        {"text": "Option 4", "isCorrect": false}
      ]
    }
  ]
}
Ensure: exactly %d questions, 4 options per question, one correct answer per question. Wrap the JSON in a `+"```json ... ```"+` fence.`,
		lower, topic, questionCount, topic, lower, topic, questionCount, questionCount)
}

var jsonFence = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

// extractJSON pulls the quiz payload out of a model response: a ```json fence
// when present, otherwise everything between the outermost braces.
func extractJSON(raw string) string {
	if m := jsonFence.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return strings.TrimSpace(raw[start : end+1])
	}
	return raw
}
