package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"quizhub-service/internal/app"
	"quizhub-service/internal/domain"
)

// API exposes the quiz platform as a JSON-over-HTTP surface.
type API struct {
	quizzes    *app.QuizService
	scorer     *app.Scorer
	aggregator *app.Aggregator
	generator  *app.Generator
	users      *app.UserService
	log        *zap.Logger
}

func NewAPI(quizzes *app.QuizService, scorer *app.Scorer, aggregator *app.Aggregator, generator *app.Generator, users *app.UserService, log *zap.Logger) *API {
	return &API{
		quizzes:    quizzes,
		scorer:     scorer,
		aggregator: aggregator,
		generator:  generator,
		users:      users,
		log:        log,
	}
}

type errorResponse struct {
	Message string `json:"message"`
}

type createQuizRequest struct {
	CreatorID string `json:"creatorId"`
	app.QuizDraft
}

func (a *API) handleCreateQuiz(w http.ResponseWriter, r *http.Request) {
	var req createQuizRequest
	if !a.decode(w, r, &req) {
		return
	}
	quiz, err := a.quizzes.Create(r.Context(), req.CreatorID, req.QuizDraft)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

func (a *API) handleGetQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := a.quizzes.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (a *API) handleListQuizzes(w http.ResponseWriter, r *http.Request) {
	summaries, err := a.quizzes.List(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (a *API) handleListUserQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := a.quizzes.ListByCreator(r.Context(), r.PathValue("userId"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	if quizzes == nil {
		quizzes = []domain.Quiz{}
	}
	writeJSON(w, http.StatusOK, quizzes)
}

type updateQuizRequest struct {
	UserID string `json:"userId"`
	app.QuizUpdate
}

func (a *API) handleUpdateQuiz(w http.ResponseWriter, r *http.Request) {
	var req updateQuizRequest
	if !a.decode(w, r, &req) {
		return
	}
	quiz, err := a.quizzes.Update(r.Context(), r.PathValue("id"), req.UserID, req.QuizUpdate)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

type deleteQuizRequest struct {
	UserID string `json:"userId"`
}

func (a *API) handleDeleteQuiz(w http.ResponseWriter, r *http.Request) {
	var req deleteQuizRequest
	if !a.decode(w, r, &req) {
		return
	}
	if err := a.quizzes.Delete(r.Context(), r.PathValue("id"), req.UserID); err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Quiz removed"})
}

type generateQuizRequest struct {
	CreatorID     string `json:"creatorId"`
	Topic         string `json:"topic"`
	QuestionCount int    `json:"questionCount"`
	Difficulty    string `json:"difficulty"`
}

func (a *API) handleGenerateQuiz(w http.ResponseWriter, r *http.Request) {
	var req generateQuizRequest
	if !a.decode(w, r, &req) {
		return
	}
	quiz, err := a.generator.Generate(r.Context(), req.CreatorID, req.Topic, req.QuestionCount, req.Difficulty)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

type submitAttemptRequest struct {
	UserID string `json:"userId"`
	// One entry per question; null marks an unanswered question.
	Answers []*int `json:"answers"`
}

func (a *API) handleSubmitAttempt(w http.ResponseWriter, r *http.Request) {
	var req submitAttemptRequest
	if !a.decode(w, r, &req) {
		return
	}
	answers := make([]domain.Answer, len(req.Answers))
	for i, answer := range req.Answers {
		if answer == nil {
			answers[i] = domain.Unanswered
		} else {
			answers[i] = domain.Answer(*answer)
		}
	}
	result, err := a.scorer.SubmitAttempt(r.Context(), r.PathValue("id"), req.UserID, answers)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *API) handleQuizAttempts(w http.ResponseWriter, r *http.Request) {
	attempts, err := a.aggregator.QuizAttempts(r.Context(), r.PathValue("userId"), r.PathValue("quizId"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	if attempts == nil {
		attempts = []domain.Attempt{}
	}
	writeJSON(w, http.StatusOK, attempts)
}

func (a *API) handleUserPerformance(w http.ResponseWriter, r *http.Request) {
	performance, err := a.aggregator.UserPerformance(r.Context(), r.PathValue("userId"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, performance)
}

type userRequest struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if !a.decode(w, r, &req) {
		return
	}
	user, err := a.users.Register(r.Context(), req.ID, req.Email, req.Name)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if !a.decode(w, r, &req) {
		return
	}
	user, err := a.users.Login(r.Context(), req.ID, req.Email, req.Name)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (a *API) handleUserProfile(w http.ResponseWriter, r *http.Request) {
	user, err := a.users.Profile(r.Context(), r.PathValue("userId"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (a *API) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return false
	}
	return true
}

// writeError maps domain failures to transport statuses: validation 400,
// ownership 401, missing resources 404, everything else 500.
func (a *API) writeError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: err.Error()})
	case errors.Is(err, domain.ErrNotOwner):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "User not authorized"})
	case errors.Is(err, domain.ErrQuizNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Message: "Quiz not found"})
	case errors.Is(err, domain.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Message: "User not found"})
	case errors.Is(err, domain.ErrUserExists):
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "User already exists"})
	default:
		a.log.Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "Server Error"})
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}
