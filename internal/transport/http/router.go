package http

import "net/http"

// NewRouter wires the API and the live stats feed onto a mux.
func NewRouter(api *API, stats *StatsHandler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("POST /api/quizzes", api.handleCreateQuiz)
	mux.HandleFunc("GET /api/quizzes", api.handleListQuizzes)
	mux.HandleFunc("POST /api/quizzes/generate", api.handleGenerateQuiz)
	mux.HandleFunc("GET /api/quizzes/{id}", api.handleGetQuiz)
	mux.HandleFunc("PUT /api/quizzes/{id}", api.handleUpdateQuiz)
	mux.HandleFunc("DELETE /api/quizzes/{id}", api.handleDeleteQuiz)
	mux.HandleFunc("POST /api/quizzes/{id}/attempts", api.handleSubmitAttempt)

	mux.HandleFunc("POST /api/users/register", api.handleRegister)
	mux.HandleFunc("POST /api/users/login", api.handleLogin)
	mux.HandleFunc("GET /api/users/{userId}", api.handleUserProfile)
	mux.HandleFunc("GET /api/users/{userId}/quizzes", api.handleListUserQuizzes)
	mux.HandleFunc("GET /api/users/{userId}/quizzes/{quizId}/attempts", api.handleQuizAttempts)
	mux.HandleFunc("GET /api/users/{userId}/performance", api.handleUserPerformance)

	mux.HandleFunc("GET /ws/quizzes/{id}/stats", stats.ServeWS)

	return mux
}
