package memory

import (
	"context"
	"sync"

	"quizhub-service/internal/domain"
)

// Store is an in-memory implementation of the app store interfaces, used for
// tests and dependency-free local runs. A single mutex guards all maps, which
// also makes the counter bump in RecordAttempt atomic with respect to
// concurrent submissions.
type Store struct {
	mu        sync.RWMutex
	quizzes   map[string]domain.Quiz
	quizOrder []string
	attempts  []domain.Attempt
	users     map[string]domain.User
}

func NewStore() *Store {
	return &Store{
		quizzes: make(map[string]domain.Quiz),
		users:   make(map[string]domain.User),
	}
}

func (s *Store) CreateQuiz(_ context.Context, quiz domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes[quiz.ID] = cloneQuiz(quiz)
	s.quizOrder = append(s.quizOrder, quiz.ID)
	// Secondary index: mirror the quiz into the owner's list when the owner
	// is registered. CreatorID on the quiz stays authoritative.
	if user, ok := s.users[quiz.CreatorID]; ok {
		user.QuizIDs = append(user.QuizIDs, quiz.ID)
		s.users[quiz.CreatorID] = user
	}
	return nil
}

func (s *Store) GetQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return cloneQuiz(quiz), nil
}

func (s *Store) ListQuizzes(_ context.Context) ([]domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quizzes := make([]domain.Quiz, 0, len(s.quizOrder))
	for _, id := range s.quizOrder {
		quizzes = append(quizzes, cloneQuiz(s.quizzes[id]))
	}
	return quizzes, nil
}

func (s *Store) ListQuizzesByCreator(_ context.Context, creatorID string) ([]domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var quizzes []domain.Quiz
	for _, id := range s.quizOrder {
		if quiz := s.quizzes[id]; quiz.CreatorID == creatorID {
			quizzes = append(quizzes, cloneQuiz(quiz))
		}
	}
	return quizzes, nil
}

func (s *Store) CountQuizzesByCreator(_ context.Context, creatorID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, quiz := range s.quizzes {
		if quiz.CreatorID == creatorID {
			count++
		}
	}
	return count, nil
}

func (s *Store) UpdateQuiz(_ context.Context, quiz domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.quizzes[quiz.ID]
	if !ok {
		return domain.ErrQuizNotFound
	}
	// Counters are owned by RecordAttempt; an update never touches them.
	quiz.TimesTaken = existing.TimesTaken
	quiz.HighestScore = existing.HighestScore
	s.quizzes[quiz.ID] = cloneQuiz(quiz)
	return nil
}

func (s *Store) DeleteQuiz(_ context.Context, quizID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.ErrQuizNotFound
	}
	delete(s.quizzes, quizID)
	for i, id := range s.quizOrder {
		if id == quizID {
			s.quizOrder = append(s.quizOrder[:i], s.quizOrder[i+1:]...)
			break
		}
	}
	if user, ok := s.users[quiz.CreatorID]; ok {
		kept := user.QuizIDs[:0]
		for _, id := range user.QuizIDs {
			if id != quizID {
				kept = append(kept, id)
			}
		}
		user.QuizIDs = kept
		s.users[quiz.CreatorID] = user
	}
	keptAttempts := s.attempts[:0]
	for _, attempt := range s.attempts {
		if attempt.QuizID != quizID {
			keptAttempts = append(keptAttempts, attempt)
		}
	}
	s.attempts = keptAttempts
	return nil
}

func (s *Store) RecordAttempt(_ context.Context, quizID string, percentage float64) (int, float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return 0, 0, domain.ErrQuizNotFound
	}
	quiz.TimesTaken++
	if percentage > quiz.HighestScore {
		quiz.HighestScore = percentage
	}
	s.quizzes[quizID] = quiz
	return quiz.TimesTaken, quiz.HighestScore, nil
}

func (s *Store) InsertAttempt(_ context.Context, attempt domain.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts = append(s.attempts, attempt)
	return nil
}

func (s *Store) ListUserAttempts(_ context.Context, userID string) ([]domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterAttemptsLocked(func(a domain.Attempt) bool {
		return a.UserID == userID
	}), nil
}

func (s *Store) ListQuizAttempts(_ context.Context, userID, quizID string) ([]domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterAttemptsLocked(func(a domain.Attempt) bool {
		return a.UserID == userID && a.QuizID == quizID
	}), nil
}

// filterAttemptsLocked walks the log backwards so results come out
// newest-first with insertion order breaking timestamp ties.
func (s *Store) filterAttemptsLocked(keep func(domain.Attempt) bool) []domain.Attempt {
	var matched []domain.Attempt
	for i := len(s.attempts) - 1; i >= 0; i-- {
		if keep(s.attempts[i]) {
			matched = append(matched, s.attempts[i])
		}
	}
	return matched
}

func (s *Store) CreateUser(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; ok {
		return domain.ErrUserExists
	}
	s.users[user.ID] = user
	return nil
}

func (s *Store) GetUser(_ context.Context, userID string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[userID]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	user.QuizIDs = append([]string(nil), user.QuizIDs...)
	return user, nil
}

func cloneQuiz(quiz domain.Quiz) domain.Quiz {
	questions := make([]domain.Question, len(quiz.Questions))
	for i, question := range quiz.Questions {
		questions[i] = question
		questions[i].Options = append([]domain.Option(nil), question.Options...)
	}
	quiz.Questions = questions
	return quiz
}
