package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quizhub-service/internal/domain"
)

// Store persists quizzes, attempts, and users in Postgres. Questions are kept
// as one JSONB document per quiz; counters live in plain columns so they can
// be updated atomically in SQL.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) CreateQuiz(ctx context.Context, quiz domain.Quiz) error {
	questions, err := json.Marshal(quiz.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO quizzes (id, creator_id, title, description, questions, times_taken, highest_score, created_at)
		 VALUES ($1, $2, $3, $4, $5, 0, 0, $6)`,
		quiz.ID, quiz.CreatorID, quiz.Title, quiz.Description, questions, quiz.CreatedAt); err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}
	// Owned-quiz secondary index; skipped silently when the creator never
	// registered, matching the quiz record staying authoritative.
	if _, err := tx.Exec(ctx,
		`INSERT INTO user_quizzes (user_id, quiz_id)
		 SELECT $1, $2 WHERE EXISTS (SELECT 1 FROM users WHERE id = $1)`,
		quiz.CreatorID, quiz.ID); err != nil {
		return fmt.Errorf("index quiz for owner: %w", err)
	}
	return tx.Commit(ctx)
}

func (s *Store) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, creator_id, title, description, questions, times_taken, highest_score, created_at
		 FROM quizzes WHERE id = $1`, quizID)
	return scanQuiz(row)
}

func (s *Store) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, creator_id, title, description, questions, times_taken, highest_score, created_at
		 FROM quizzes ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()
	return collectQuizzes(rows)
}

func (s *Store) ListQuizzesByCreator(ctx context.Context, creatorID string) ([]domain.Quiz, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, creator_id, title, description, questions, times_taken, highest_score, created_at
		 FROM quizzes WHERE creator_id = $1 ORDER BY created_at`, creatorID)
	if err != nil {
		return nil, fmt.Errorf("list quizzes by creator: %w", err)
	}
	defer rows.Close()
	return collectQuizzes(rows)
}

func (s *Store) CountQuizzesByCreator(ctx context.Context, creatorID string) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM quizzes WHERE creator_id = $1`, creatorID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count quizzes: %w", err)
	}
	return count, nil
}

func (s *Store) UpdateQuiz(ctx context.Context, quiz domain.Quiz) error {
	questions, err := json.Marshal(quiz.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE quizzes SET title = $2, description = $3, questions = $4 WHERE id = $1`,
		quiz.ID, quiz.Title, quiz.Description, questions)
	if err != nil {
		return fmt.Errorf("update quiz: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

// DeleteQuiz removes the quiz, its owned-index row, and its attempts in one
// transaction so a crash mid-delete cannot leave orphaned attempt records.
func (s *Store) DeleteQuiz(ctx context.Context, quizID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM attempts WHERE quiz_id = $1`, quizID); err != nil {
		return fmt.Errorf("delete attempts: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM user_quizzes WHERE quiz_id = $1`, quizID); err != nil {
		return fmt.Errorf("delete owner index: %w", err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM quizzes WHERE id = $1`, quizID)
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuizNotFound
	}
	return tx.Commit(ctx)
}

// RecordAttempt bumps the counters in a single UPDATE, so concurrent
// submissions can neither lose an increment nor overwrite a higher concurrent
// score.
func (s *Store) RecordAttempt(ctx context.Context, quizID string, percentage float64) (int, float64, error) {
	var timesTaken int
	var highest float64
	err := s.pool.QueryRow(ctx,
		`UPDATE quizzes
		 SET times_taken = times_taken + 1, highest_score = GREATEST(highest_score, $2)
		 WHERE id = $1
		 RETURNING times_taken, highest_score`,
		quizID, percentage).Scan(&timesTaken, &highest)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, 0, domain.ErrQuizNotFound
	}
	if err != nil {
		return 0, 0, fmt.Errorf("record attempt: %w", err)
	}
	return timesTaken, highest, nil
}

func (s *Store) InsertAttempt(ctx context.Context, attempt domain.Attempt) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO attempts (id, user_id, quiz_id, score, total_questions, percentage, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		attempt.ID, attempt.UserID, attempt.QuizID, attempt.Score,
		attempt.TotalQuestions, attempt.Percentage, attempt.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

func (s *Store) ListUserAttempts(ctx context.Context, userID string) ([]domain.Attempt, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, quiz_id, score, total_questions, percentage, created_at
		 FROM attempts WHERE user_id = $1 ORDER BY created_at DESC, seq DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()
	return collectAttempts(rows)
}

func (s *Store) ListQuizAttempts(ctx context.Context, userID, quizID string) ([]domain.Attempt, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, quiz_id, score, total_questions, percentage, created_at
		 FROM attempts WHERE user_id = $1 AND quiz_id = $2 ORDER BY created_at DESC, seq DESC`,
		userID, quizID)
	if err != nil {
		return nil, fmt.Errorf("list quiz attempts: %w", err)
	}
	defer rows.Close()
	return collectAttempts(rows)
}

func (s *Store) CreateUser(ctx context.Context, user domain.User) error {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, email, name, created_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO NOTHING`,
		user.ID, user.Email, user.Name, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserExists
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, userID string) (domain.User, error) {
	var user domain.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, name, created_at FROM users WHERE id = $1`, userID).
		Scan(&user.ID, &user.Email, &user.Name, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT quiz_id FROM user_quizzes WHERE user_id = $1`, userID)
	if err != nil {
		return domain.User{}, fmt.Errorf("get owned quizzes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var quizID string
		if err := rows.Scan(&quizID); err != nil {
			return domain.User{}, fmt.Errorf("scan owned quiz: %w", err)
		}
		user.QuizIDs = append(user.QuizIDs, quizID)
	}
	if err := rows.Err(); err != nil {
		return domain.User{}, fmt.Errorf("get owned quizzes: %w", err)
	}
	return user, nil
}

func scanQuiz(row pgx.Row) (domain.Quiz, error) {
	var quiz domain.Quiz
	var questions []byte
	err := row.Scan(&quiz.ID, &quiz.CreatorID, &quiz.Title, &quiz.Description,
		&questions, &quiz.TimesTaken, &quiz.HighestScore, &quiz.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("scan quiz: %w", err)
	}
	if err := json.Unmarshal(questions, &quiz.Questions); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal questions: %w", err)
	}
	return quiz, nil
}

func collectQuizzes(rows pgx.Rows) ([]domain.Quiz, error) {
	var quizzes []domain.Quiz
	for rows.Next() {
		quiz, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, quiz)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quizzes: %w", err)
	}
	return quizzes, nil
}

func collectAttempts(rows pgx.Rows) ([]domain.Attempt, error) {
	var attempts []domain.Attempt
	for rows.Next() {
		var attempt domain.Attempt
		if err := rows.Scan(&attempt.ID, &attempt.UserID, &attempt.QuizID,
			&attempt.Score, &attempt.TotalQuestions, &attempt.Percentage, &attempt.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		attempts = append(attempts, attempt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}
	return attempts, nil
}
