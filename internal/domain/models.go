package domain

import "time"

// Option represents a possible answer for a question.
type Option struct {
	Text    string `json:"text"`
	Correct bool   `json:"isCorrect"`
}

// Question models an MCQ question with exactly one correct option.
type Question struct {
	Text    string   `json:"questionText"`
	Options []Option `json:"options"`
}

// Quiz is an ordered set of questions owned by a creator. TimesTaken and
// HighestScore are best-effort counters; the attempt log stays authoritative
// for per-user statistics.
type Quiz struct {
	ID           string     `json:"id"`
	CreatorID    string     `json:"creatorId"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Questions    []Question `json:"questions"`
	TimesTaken   int        `json:"timesTaken"`
	HighestScore float64    `json:"highestScore"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// QuizSummary is the list-view projection of a quiz.
type QuizSummary struct {
	ID            string    `json:"id"`
	CreatorID     string    `json:"creatorId"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	QuestionCount int       `json:"questionCount"`
	TimesTaken    int       `json:"timesTaken"`
	HighestScore  float64   `json:"highestScore"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Summary projects the quiz for listings.
func (q Quiz) Summary() QuizSummary {
	return QuizSummary{
		ID:            q.ID,
		CreatorID:     q.CreatorID,
		Title:         q.Title,
		Description:   q.Description,
		QuestionCount: len(q.Questions),
		TimesTaken:    q.TimesTaken,
		HighestScore:  q.HighestScore,
		CreatedAt:     q.CreatedAt,
	}
}

// Answer is a learner's choice for one question: an option index, or
// Unanswered when the question was skipped.
type Answer int

// Unanswered marks a skipped question. It never equals a real option index,
// so a skipped question can never grade as correct.
const Unanswered Answer = -1

// Attempt is one learner's graded submission for a quiz. Immutable once created.
type Attempt struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	QuizID         string    `json:"quizId"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	Percentage     float64   `json:"percentage"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ReviewEntry explains the grading of a single question to the learner.
type ReviewEntry struct {
	Question      string `json:"questionText"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	Correct       bool   `json:"isCorrect"`
}

// AttemptResult is the outcome of submitting a quiz.
type AttemptResult struct {
	AttemptID      string        `json:"attemptId"`
	Score          int           `json:"score"`
	TotalQuestions int           `json:"totalQuestions"`
	Percentage     float64       `json:"percentage"`
	TimesTaken     int           `json:"timesTaken"`
	Review         []ReviewEntry `json:"review"`
}

// ScorePoint is one attempt's score as seen in a performance summary.
type ScorePoint struct {
	Score      int       `json:"score"`
	Percentage float64   `json:"percentage"`
	Date       time.Time `json:"date"`
}

// QuizPerformance aggregates one learner's attempts on one quiz. Derived from
// the attempt log on every read, never stored.
type QuizPerformance struct {
	QuizID            string       `json:"quizId"`
	Title             string       `json:"title"`
	Attempts          int          `json:"attempts"`
	Scores            []ScorePoint `json:"scores"`
	HighestScore      float64      `json:"highestScore"`
	AveragePercentage float64      `json:"averagePercentage"`
}

// UserPerformance is the learner's dashboard view across all quizzes taken.
type UserPerformance struct {
	Quizzes             []QuizPerformance `json:"quizPerformance"`
	CreatedQuizzesCount int               `json:"createdQuizzesCount"`
}

// User is a directory entry for an externally-authenticated identity. QuizIDs
// is a secondary index of owned quizzes; the quiz's CreatorID is authoritative
// when the two disagree.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	QuizIDs   []string  `json:"quizzesCreated"`
	CreatedAt time.Time `json:"createdAt"`
}

// QuizStats is a point-in-time snapshot of a quiz's counters, published to
// live subscribers after each scored attempt.
type QuizStats struct {
	QuizID       string    `json:"quizId"`
	TimesTaken   int       `json:"timesTaken"`
	HighestScore float64   `json:"highestScore"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
