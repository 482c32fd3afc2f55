package app

import (
	"context"

	"quizhub-service/internal/domain"
)

// QuizStore abstracts how quiz documents are persisted (in-memory, Postgres,
// optionally behind a Redis read-through cache).
type QuizStore interface {
	// CreateQuiz persists the quiz and appends it to the creator's owned-quiz
	// secondary index. The quiz's CreatorID stays authoritative over the index.
	CreateQuiz(ctx context.Context, quiz domain.Quiz) error
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	ListQuizzes(ctx context.Context) ([]domain.Quiz, error)
	ListQuizzesByCreator(ctx context.Context, creatorID string) ([]domain.Quiz, error)
	CountQuizzesByCreator(ctx context.Context, creatorID string) (int, error)
	UpdateQuiz(ctx context.Context, quiz domain.Quiz) error
	// DeleteQuiz removes the quiz, its owned-index reference, and every attempt
	// referencing it as a single unit, so no orphaned attempt survives a
	// completed delete.
	DeleteQuiz(ctx context.Context, quizID string) error
	// RecordAttempt bumps the quiz counters for one scored attempt: an atomic
	// increment of timesTaken and an atomic conditional max of highestScore.
	// Implementations must not read-modify-write from application memory.
	RecordAttempt(ctx context.Context, quizID string, percentage float64) (timesTaken int, highestScore float64, err error)
}

// AttemptStore owns the immutable attempt log. Listings are newest-first with
// insertion order breaking timestamp ties.
type AttemptStore interface {
	InsertAttempt(ctx context.Context, attempt domain.Attempt) error
	ListUserAttempts(ctx context.Context, userID string) ([]domain.Attempt, error)
	ListQuizAttempts(ctx context.Context, userID, quizID string) ([]domain.Attempt, error)
}

// UserStore keeps the directory of externally-authenticated identities.
type UserStore interface {
	CreateUser(ctx context.Context, user domain.User) error
	GetUser(ctx context.Context, userID string) (domain.User, error)
}
