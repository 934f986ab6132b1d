package battle

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/sweetsavoury/battletally/internal/domain"
	"github.com/sweetsavoury/battletally/internal/ledger"
	"github.com/sweetsavoury/battletally/internal/observability"
)

//go:generate mockgen -source service.go -destination=service_mock_test.go -package=battle

// OrderLedger is the per-order record store, satisfied by ledger.OrderStore.
type OrderLedger interface {
	Create(ctx context.Context, rec *domain.OrderRecord) (bool, error)
	Get(ctx context.Context, shopDomain, orderID string) (*domain.OrderRecord, bool, error)
	Update(ctx context.Context, rec *domain.OrderRecord) error
	Delete(ctx context.Context, shopDomain, orderID string) error
}

// Aggregator moves the running totals, satisfied by ledger.Totals.
type Aggregator interface {
	Apply(ctx context.Context, shopDomain string, d domain.Delta) error
}

// Classifier resolves products to sides, satisfied by classifier.Classifier.
type Classifier interface {
	Classify(ctx context.Context, shopDomain string, productID int64) (domain.Side, error)
}

// Service implements the three event handlers. Every handler is safe to
// re-invoke with the same payload: paid events are gated by the atomic
// record creation, cancellations and refunds no-op once the record is gone
// or fully refunded.
type Service struct {
	orders     OrderLedger
	totals     Aggregator
	classifier Classifier
	logger     *zap.Logger
	metrics    observability.Metrics
}

func NewService(orders OrderLedger, totals Aggregator, classifier Classifier, logger *zap.Logger, metrics observability.Metrics) *Service {
	return &Service{
		orders:     orders,
		totals:     totals,
		classifier: classifier,
		logger:     logger,
		metrics:    metrics,
	}
}

// HandlePaid classifies and totals the full order before touching any state,
// then creates the ledger record (the idempotency gate) and applies the
// aggregate delta. The record is written first: if the process dies before
// the delta lands, the aggregate trails the ledger instead of leading it,
// and a re-delivery cannot double-count.
func (s *Service) HandlePaid(ctx context.Context, shopDomain string, ev domain.OrderEvent) (Outcome, error) {
	orderID := strconv.FormatInt(ev.ID, 10)
	start := time.Now()

	contrib, err := ledger.ComputeContribution(ctx, s.classifier, shopDomain, ev.LineItems)
	if err != nil {
		s.logger.Error("contribution computation failed",
			zap.String("shop", shopDomain),
			zap.String("order_id", orderID),
			zap.Error(err),
		)
		return OutcomeFailed, err
	}

	if contrib.IsZero() {
		s.logger.Info("order contributes nothing, no record created",
			zap.String("shop", shopDomain),
			zap.String("order_id", orderID),
		)
		return OutcomeSkipped, nil
	}

	rec := &domain.OrderRecord{
		OrderID:      orderID,
		ShopDomain:   shopDomain,
		SweetCents:   contrib.Delta.SweetCents,
		SavouryCents: contrib.Delta.SavouryCents,
		LineItems:    contrib.Lines,
	}

	created, err := s.orders.Create(ctx, rec)
	if err != nil {
		return OutcomeFailed, err
	}
	if !created {
		s.logger.Info("duplicate paid event",
			zap.String("shop", shopDomain),
			zap.String("order_id", orderID),
		)
		return OutcomeDuplicate, nil
	}

	if err := s.totals.Apply(ctx, shopDomain, contrib.Delta); err != nil {
		// Record exists but the aggregate was not moved: the known residual
		// gap between the two stores. The sender's retry hits the duplicate
		// gate, so the delta is not re-applied automatically.
		s.logger.Error("totals delta failed after ledger write",
			zap.String("shop", shopDomain),
			zap.String("order_id", orderID),
			zap.Error(err),
		)
		return OutcomeFailed, err
	}

	s.metrics.ObserveLedger("paid", msSince(start))
	s.logger.Info("order recorded",
		zap.String("shop", shopDomain),
		zap.String("order_id", orderID),
		zap.Int64("sweet_cents", contrib.Delta.SweetCents),
		zap.Int64("savoury_cents", contrib.Delta.SavouryCents),
	)
	return OutcomeProcessed, nil
}

// HandleCancelled reverses whatever the order still holds and removes its
// record. The record's side totals already account for prior partial
// refunds, so only the outstanding portion is reversed. Cancelling an
// unknown or already-cancelled order is a no-op.
func (s *Service) HandleCancelled(ctx context.Context, shopDomain string, ev domain.OrderEvent) (Outcome, error) {
	orderID := strconv.FormatInt(ev.ID, 10)
	start := time.Now()

	rec, ok, err := s.orders.Get(ctx, shopDomain, orderID)
	if err != nil {
		return OutcomeFailed, err
	}
	if !ok {
		s.logger.Info("cancellation for unknown order",
			zap.String("shop", shopDomain),
			zap.String("order_id", orderID),
		)
		return OutcomeSkipped, nil
	}

	reversal := domain.Delta{SweetCents: rec.SweetCents, SavouryCents: rec.SavouryCents}.Negate()
	if !reversal.IsZero() {
		if err := s.totals.Apply(ctx, shopDomain, reversal); err != nil {
			return OutcomeFailed, err
		}
	}

	if err := s.orders.Delete(ctx, shopDomain, orderID); err != nil {
		return OutcomeFailed, err
	}

	s.metrics.ObserveLedger("cancelled", msSince(start))
	s.logger.Info("order cancelled",
		zap.String("shop", shopDomain),
		zap.String("order_id", orderID),
		zap.Int64("sweet_cents", reversal.SweetCents),
		zap.Int64("savoury_cents", reversal.SavouryCents),
	)
	return OutcomeProcessed, nil
}

// HandleRefund prorates the refunded lines against the stored record.
// Refunds for orders with no record, including orders cancelled before the
// refund arrived, are dropped: there is nothing left to prorate against.
func (s *Service) HandleRefund(ctx context.Context, shopDomain string, ev domain.RefundEvent) (Outcome, error) {
	orderID := strconv.FormatInt(ev.OrderID, 10)
	start := time.Now()

	rec, ok, err := s.orders.Get(ctx, shopDomain, orderID)
	if err != nil {
		return OutcomeFailed, err
	}
	if !ok {
		s.logger.Warn("refund for unknown order dropped",
			zap.String("shop", shopDomain),
			zap.String("order_id", orderID),
		)
		return OutcomeSkipped, nil
	}

	delta := ledger.Prorate(rec, ev.RefundLineItems)
	if delta.IsZero() {
		s.logger.Info("refund had no effect",
			zap.String("shop", shopDomain),
			zap.String("order_id", orderID),
		)
		return OutcomeSkipped, nil
	}

	if err := s.totals.Apply(ctx, shopDomain, delta); err != nil {
		return OutcomeFailed, err
	}
	if err := s.orders.Update(ctx, rec); err != nil {
		return OutcomeFailed, err
	}

	s.metrics.ObserveLedger("refund", msSince(start))
	s.logger.Info("refund prorated",
		zap.String("shop", shopDomain),
		zap.String("order_id", orderID),
		zap.Int64("sweet_cents", delta.SweetCents),
		zap.Int64("savoury_cents", delta.SavouryCents),
	)
	return OutcomeProcessed, nil
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000.0
}
