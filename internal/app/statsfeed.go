package app

import (
	"sync"

	"quizhub-service/internal/domain"
)

// StatsFeed fans quiz counter updates out to live subscribers. Slow consumers
// never block a publish: when a subscriber's buffer is full the stale snapshot
// is dropped for the newest one.
type StatsFeed struct {
	mu   sync.Mutex
	subs map[string]map[chan domain.QuizStats]struct{}
}

func NewStatsFeed() *StatsFeed {
	return &StatsFeed{subs: make(map[string]map[chan domain.QuizStats]struct{})}
}

// Subscribe returns a channel of stats snapshots for one quiz. The caller must
// invoke the returned cancel function to avoid leaks.
func (f *StatsFeed) Subscribe(quizID string) (<-chan domain.QuizStats, func()) {
	ch := make(chan domain.QuizStats, 8)

	f.mu.Lock()
	set, ok := f.subs[quizID]
	if !ok {
		set = make(map[chan domain.QuizStats]struct{})
		f.subs[quizID] = set
	}
	set[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if set, ok := f.subs[quizID]; ok {
			if _, ok := set[ch]; ok {
				delete(set, ch)
				close(ch)
			}
			if len(set) == 0 {
				delete(f.subs, quizID)
			}
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers the snapshot to every subscriber of its quiz.
func (f *StatsFeed) Publish(stats domain.QuizStats) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subs[stats.QuizID] {
		select {
		case ch <- stats:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- stats
		}
	}
}
