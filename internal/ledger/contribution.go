package ledger

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sweetsavoury/battletally/internal/domain"
)

// Classifier resolves a product to its side; satisfied by classifier.Classifier.
type Classifier interface {
	Classify(ctx context.Context, shopDomain string, productID int64) (domain.Side, error)
}

// Contribution is the fully evaluated effect of one paid order: the per-side
// delta plus the line-item fragments that seed the order's ledger record.
type Contribution struct {
	Delta domain.Delta
	Lines map[string]*domain.LineItemRecord
}

func (c Contribution) IsZero() bool { return c.Delta.IsZero() }

// ComputeContribution classifies every line item and totals its revenue per
// side. It touches no stored state, so a classification failure partway
// through aborts the event before anything has been written. Line items with
// no resolved side or a non-positive quantity are excluded entirely.
func ComputeContribution(ctx context.Context, cls Classifier, shopDomain string, items []domain.LineItem) (Contribution, error) {
	out := Contribution{Lines: map[string]*domain.LineItemRecord{}}

	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}

		side, err := cls.Classify(ctx, shopDomain, item.ProductID)
		if err != nil {
			return Contribution{}, fmt.Errorf("classify product %d: %w", item.ProductID, err)
		}
		if side == domain.SideNone {
			continue
		}

		price, err := domain.ParseCents(item.Price)
		if err != nil {
			return Contribution{}, fmt.Errorf("line item %d: %w", item.ID, err)
		}
		discount, err := domain.ParseCents(item.TotalDiscount)
		if err != nil {
			return Contribution{}, fmt.Errorf("line item %d: %w", item.ID, err)
		}

		lineTotal := price*item.Quantity - discount
		if lineTotal < 0 {
			lineTotal = 0
		}

		switch side {
		case domain.SideSweet:
			out.Delta.SweetCents += lineTotal
		case domain.SideSavoury:
			out.Delta.SavouryCents += lineTotal
		}

		out.Lines[strconv.FormatInt(item.ID, 10)] = &domain.LineItemRecord{
			Side:             side,
			OriginalQuantity: item.Quantity,
			RevenueCents:     lineTotal,
			RemainingCents:   lineTotal,
		}
	}
	return out, nil
}
