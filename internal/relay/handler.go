package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/sweetsavoury/battletally/internal/battle"
	"github.com/sweetsavoury/battletally/internal/config"
	"github.com/sweetsavoury/battletally/internal/pkg/breaker"
	"github.com/sweetsavoury/battletally/internal/pkg/retry"
)

var (
	ErrBadEnvelope = errors.New("bad envelope")
	ErrRoute       = errors.New("routing failed")
	ErrCircuitOpen = errors.New("circuit breaker open")
)

// Envelope is the archived-webhook message format on the replay topic: the
// original webhook body wrapped with its routing headers.
type Envelope struct {
	Topic      string          `json:"topic"`
	ShopDomain string          `json:"shop_domain"`
	Payload    json.RawMessage `json:"payload"`
}

// Router is the shared event router, satisfied by battle.Router.
type Router interface {
	Route(ctx context.Context, topic, shopDomain string, body []byte) (battle.Outcome, error)
}

type brk interface {
	Allow() error
	Success()
	Failure()
}

// Handler processes one replayed webhook. Replay is at-least-once by nature;
// that is fine because every downstream handler is idempotent. Malformed
// envelopes are acknowledged after logging: redelivery cannot fix them.
type Handler struct {
	router      Router
	breaker     brk
	logger      *zap.Logger
	retryPolicy config.Retry
}

func NewHandler(router Router, brk *breaker.Breaker, retryPolicy config.Retry, logger *zap.Logger) *Handler {
	return &Handler{
		router:      router,
		breaker:     brk,
		logger:      logger,
		retryPolicy: retryPolicy,
	}
}

// Handle is called by the consumer for a single message. Returning nil lets
// the consumer commit the offset.
func (h *Handler) Handle(ctx context.Context, message kafkago.Message) error {
	if err := h.breaker.Allow(); err != nil {
		h.logger.Warn("circuit breaker is open",
			zap.Error(err),
			zap.Int("partition", message.Partition),
			zap.Int64("offset", message.Offset),
		)
		return fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	}

	var env Envelope
	if err := json.Unmarshal(message.Value, &env); err != nil {
		h.logger.Error("bad envelope json, skipping message",
			zap.Error(err),
			zap.Int("partition", message.Partition),
			zap.Int64("offset", message.Offset),
		)
		return nil
	}
	if env.Topic == "" || env.ShopDomain == "" || len(env.Payload) == 0 {
		h.logger.Error("incomplete envelope, skipping message",
			zap.String("topic", env.Topic),
			zap.String("shop", env.ShopDomain),
			zap.Int("partition", message.Partition),
			zap.Int64("offset", message.Offset),
		)
		return nil
	}

	var outcome battle.Outcome
	if err := retry.Do(ctx, h.retryPolicy, func() error {
		var routeErr error
		outcome, routeErr = h.router.Route(ctx, env.Topic, env.ShopDomain, env.Payload)
		if outcome == battle.OutcomeFailed {
			return routeErr
		}
		return nil
	}); err != nil {
		h.logger.Error("replay failed after retries",
			zap.String("topic", env.Topic),
			zap.String("shop", env.ShopDomain),
			zap.Error(err),
			zap.Int("partition", message.Partition),
			zap.Int64("offset", message.Offset),
		)
		h.breaker.Failure()
		return fmt.Errorf("%w: %v", ErrRoute, err)
	}

	if outcome == battle.OutcomeRejected {
		// A bad payload stays bad on redelivery; acknowledge and move on.
		h.logger.Warn("replayed payload rejected",
			zap.String("topic", env.Topic),
			zap.String("shop", env.ShopDomain),
		)
	}

	h.breaker.Success()
	h.logger.Info("replayed webhook processed",
		zap.String("topic", env.Topic),
		zap.String("shop", env.ShopDomain),
		zap.String("outcome", string(outcome)),
		zap.Int("partition", message.Partition),
		zap.Int64("offset", message.Offset),
	)
	return nil
}
