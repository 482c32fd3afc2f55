package http

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"quizhub-service/internal/app"
	"quizhub-service/internal/domain"
)

// StatsHandler streams live quiz counter updates over a websocket.
type StatsHandler struct {
	quizzes  *app.QuizService
	feed     *app.StatsFeed
	log      *zap.Logger
	upgrader websocket.Upgrader
}

func NewStatsHandler(quizzes *app.QuizService, feed *app.StatsFeed, log *zap.Logger) *StatsHandler {
	return &StatsHandler{
		quizzes: quizzes,
		feed:    feed,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeWS upgrades the request and streams stats snapshots for one quiz: the
// current counters first, then an update after every scored attempt.
func (h *StatsHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.PathValue("id")

	quiz, err := h.quizzes.Get(r.Context(), quizID)
	if err != nil {
		http.Error(w, "quiz not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	updates, cancel := h.feed.Subscribe(quizID)
	defer cancel()

	initial := domain.QuizStats{
		QuizID:       quiz.ID,
		TimesTaken:   quiz.TimesTaken,
		HighestScore: quiz.HighestScore,
		UpdatedAt:    quiz.CreatedAt,
	}
	if err := conn.WriteJSON(outboundMessage[domain.QuizStats]{Type: "stats", Payload: initial}); err != nil {
		return
	}

	// Reader goroutine only watches for the peer closing the socket.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case stats, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(outboundMessage[domain.QuizStats]{Type: "stats", Payload: stats}); err != nil {
				h.log.Debug("ws write failed", zap.Error(err))
				return
			}
		case <-closed:
			return
		}
	}
}
