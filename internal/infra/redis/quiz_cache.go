package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quizhub-service/internal/app"
	"quizhub-service/internal/domain"
)

// QuizCache is a read-through decorator over a QuizStore: quiz documents are
// cached as JSON (SET quiz:{id}:doc) with a jittered TTL, and every mutation
// of a quiz, counter bumps included, drops the cached copy. Misses go through
// singleflight so a cold popular quiz hits the backing store once.
type QuizCache struct {
	app.QuizStore
	client *redis.Client
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuizCache(inner app.QuizStore, client *redis.Client, ttl time.Duration) *QuizCache {
	return &QuizCache{
		QuizStore: inner,
		client:    client,
		ttl:       ttl,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuizCache) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	key := c.key(quizID)
	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var quiz domain.Quiz
		if err := json.Unmarshal(raw, &quiz); err == nil {
			return quiz, nil
		}
		// Unreadable entry: fall through and refill.
		_ = c.client.Del(ctx, key).Err()
	}

	result, err, _ := c.sf.Do(quizID, func() (interface{}, error) {
		// Re-check in case another goroutine filled the cache.
		if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
			var quiz domain.Quiz
			if err := json.Unmarshal(raw, &quiz); err == nil {
				return quiz, nil
			}
		}

		quiz, err := c.QuizStore.GetQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}
		if raw, err := json.Marshal(quiz); err == nil {
			// best-effort SET, a miss just refills later
			_ = c.client.Set(ctx, key, raw, c.ttlWithJitter()).Err()
		}
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (c *QuizCache) UpdateQuiz(ctx context.Context, quiz domain.Quiz) error {
	if err := c.QuizStore.UpdateQuiz(ctx, quiz); err != nil {
		return err
	}
	_ = c.client.Del(ctx, c.key(quiz.ID)).Err()
	return nil
}

func (c *QuizCache) DeleteQuiz(ctx context.Context, quizID string) error {
	if err := c.QuizStore.DeleteQuiz(ctx, quizID); err != nil {
		return err
	}
	_ = c.client.Del(ctx, c.key(quizID)).Err()
	return nil
}

func (c *QuizCache) RecordAttempt(ctx context.Context, quizID string, percentage float64) (int, float64, error) {
	timesTaken, highest, err := c.QuizStore.RecordAttempt(ctx, quizID, percentage)
	if err != nil {
		return 0, 0, err
	}
	// Counters changed underneath the cached document.
	_ = c.client.Del(ctx, c.key(quizID)).Err()
	return timesTaken, highest, nil
}

func (c *QuizCache) key(quizID string) string {
	return "quiz:" + quizID + ":doc"
}

func (c *QuizCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
