package ai

import (
	"context"
	"errors"
	"time"

	"aira/models"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerGenerator stops calling a failing backend for a while.
type BreakerGenerator struct {
	next TextGenerator
	cb   *gobreaker.CircuitBreaker
}

func NewBreakerGenerator(next TextGenerator, logger *zap.Logger) *BreakerGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "language-model",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return &BreakerGenerator{next: next, cb: cb}
}

func (b *BreakerGenerator) GenerateText(ctx context.Context, history []models.ChatMessage, systemPrompt string) (string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.GenerateText(ctx, history, systemPrompt)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", ErrModelUnavailable
	}
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

func (b *BreakerGenerator) State() gobreaker.State {
	return b.cb.State()
}
