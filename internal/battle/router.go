package battle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sweetsavoury/battletally/internal/domain"
)

//go:generate mockgen -source router.go -destination=router_mock_test.go -package=battle

var ErrBadPayload = errors.New("bad payload")

// Handlers is what the router dispatches to, satisfied by Service.
type Handlers interface {
	HandlePaid(ctx context.Context, shopDomain string, ev domain.OrderEvent) (Outcome, error)
	HandleCancelled(ctx context.Context, shopDomain string, ev domain.OrderEvent) (Outcome, error)
	HandleRefund(ctx context.Context, shopDomain string, ev domain.RefundEvent) (Outcome, error)
}

// Router parses the raw body per topic and dispatches. Topics outside the
// closed set are acknowledged without processing so the platform can add
// notification types without breaking us.
type Router struct {
	handlers Handlers
	logger   *zap.Logger
}

func NewRouter(handlers Handlers, logger *zap.Logger) *Router {
	return &Router{handlers: handlers, logger: logger}
}

func (r *Router) Route(ctx context.Context, topic, shopDomain string, body []byte) (Outcome, error) {
	switch topic {
	case domain.TopicOrdersPaid:
		var ev domain.OrderEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return OutcomeRejected, fmt.Errorf("%w: %v", ErrBadPayload, err)
		}
		if ev.ID == 0 {
			return OutcomeRejected, fmt.Errorf("%w: missing order id", ErrBadPayload)
		}
		return r.handlers.HandlePaid(ctx, shopDomain, ev)

	case domain.TopicOrdersCancelled:
		var ev domain.OrderEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return OutcomeRejected, fmt.Errorf("%w: %v", ErrBadPayload, err)
		}
		if ev.ID == 0 {
			return OutcomeRejected, fmt.Errorf("%w: missing order id", ErrBadPayload)
		}
		return r.handlers.HandleCancelled(ctx, shopDomain, ev)

	case domain.TopicRefundsCreate:
		var ev domain.RefundEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return OutcomeRejected, fmt.Errorf("%w: %v", ErrBadPayload, err)
		}
		if ev.OrderID == 0 {
			return OutcomeRejected, fmt.Errorf("%w: missing order id", ErrBadPayload)
		}
		return r.handlers.HandleRefund(ctx, shopDomain, ev)

	default:
		r.logger.Debug("ignoring unhandled topic",
			zap.String("topic", topic),
			zap.String("shop", shopDomain),
		)
		return OutcomeIgnored, nil
	}
}
