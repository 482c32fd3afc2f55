package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"quizhub-service/internal/domain"
)

// QuizService owns the quiz lifecycle: create, read, update, delete.
type QuizService struct {
	quizzes QuizStore
	log     *zap.Logger
	newID   func() string
	now     func() time.Time
}

func NewQuizService(quizzes QuizStore, log *zap.Logger) *QuizService {
	return &QuizService{
		quizzes: quizzes,
		log:     log,
		newID:   uuid.NewString,
		now:     time.Now,
	}
}

// NewQuizServiceWithClock is test-only for deterministic IDs and timestamps.
func NewQuizServiceWithClock(quizzes QuizStore, log *zap.Logger, newID func() string, now func() time.Time) *QuizService {
	return &QuizService{quizzes: quizzes, log: log, newID: newID, now: now}
}

// QuizDraft is the author-supplied content of a new quiz.
type QuizDraft struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Questions   []domain.Question `json:"questions"`
}

// Create validates the draft and persists a new quiz owned by creatorID.
func (s *QuizService) Create(ctx context.Context, creatorID string, draft QuizDraft) (domain.Quiz, error) {
	quiz := domain.Quiz{
		ID:          s.newID(),
		CreatorID:   creatorID,
		Title:       draft.Title,
		Description: draft.Description,
		Questions:   draft.Questions,
		CreatedAt:   s.now(),
	}
	if err := domain.ValidateQuiz(quiz); err != nil {
		return domain.Quiz{}, err
	}
	if err := s.quizzes.CreateQuiz(ctx, quiz); err != nil {
		return domain.Quiz{}, err
	}
	s.log.Info("quiz created", zap.String("quizId", quiz.ID), zap.String("creatorId", creatorID))
	return quiz, nil
}

// Get returns the quiz or domain.ErrQuizNotFound.
func (s *QuizService) Get(ctx context.Context, quizID string) (domain.Quiz, error) {
	return s.quizzes.GetQuiz(ctx, quizID)
}

// List returns summaries of every quiz.
func (s *QuizService) List(ctx context.Context) ([]domain.QuizSummary, error) {
	quizzes, err := s.quizzes.ListQuizzes(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]domain.QuizSummary, 0, len(quizzes))
	for _, quiz := range quizzes {
		summaries = append(summaries, quiz.Summary())
	}
	return summaries, nil
}

// ListByCreator returns every quiz owned by creatorID.
func (s *QuizService) ListByCreator(ctx context.Context, creatorID string) ([]domain.Quiz, error) {
	return s.quizzes.ListQuizzesByCreator(ctx, creatorID)
}

// QuizUpdate carries the fields of a partial update. Zero values mean "keep
// the existing value".
type QuizUpdate struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Questions   []domain.Question `json:"questions"`
}

// Update applies a partial update to a quiz. Only the owner may update; the
// merged document is re-validated before anything is written.
func (s *QuizService) Update(ctx context.Context, quizID, requesterID string, update QuizUpdate) (domain.Quiz, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}
	if quiz.CreatorID != requesterID {
		return domain.Quiz{}, domain.ErrNotOwner
	}

	if update.Title != "" {
		quiz.Title = update.Title
	}
	if update.Description != "" {
		quiz.Description = update.Description
	}
	if update.Questions != nil {
		quiz.Questions = update.Questions
	}
	if err := domain.ValidateQuiz(quiz); err != nil {
		return domain.Quiz{}, err
	}
	if err := s.quizzes.UpdateQuiz(ctx, quiz); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

// Delete removes a quiz and cascades to its attempts. Only the owner may
// delete.
func (s *QuizService) Delete(ctx context.Context, quizID, requesterID string) error {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return err
	}
	if quiz.CreatorID != requesterID {
		return domain.ErrNotOwner
	}
	if err := s.quizzes.DeleteQuiz(ctx, quizID); err != nil {
		return err
	}
	s.log.Info("quiz deleted", zap.String("quizId", quizID), zap.String("creatorId", requesterID))
	return nil
}
