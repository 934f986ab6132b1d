package ledger

import (
	"strconv"

	"github.com/sweetsavoury/battletally/internal/domain"
)

// Prorate applies a refund against a previously recorded order, mutating the
// record in place, and returns the (non-positive) delta to apply to the
// aggregate. Each refunded line is capped twice: by the refunded fraction of
// its original quantity and by whatever revenue remains un-refunded, so the
// cumulative refunds on a line can never exceed its revenue. A refund for a
// line the order never recorded is skipped. A zero delta means nothing
// changed and nothing should be persisted.
func Prorate(rec *domain.OrderRecord, lines []domain.RefundLineItem) domain.Delta {
	var delta domain.Delta

	for _, rl := range lines {
		if rl.Quantity <= 0 {
			continue
		}
		li, ok := rec.LineItems[strconv.FormatInt(rl.LineItemID, 10)]
		if !ok || li.OriginalQuantity <= 0 {
			continue
		}

		qty := rl.Quantity
		if qty > li.OriginalQuantity {
			qty = li.OriginalQuantity
		}

		// revenue * qty / original, rounded half-up in integer math.
		amount := (2*li.RevenueCents*qty + li.OriginalQuantity) / (2 * li.OriginalQuantity)
		if amount > li.RemainingCents {
			amount = li.RemainingCents
		}
		if amount <= 0 {
			continue
		}

		li.RemainingCents -= amount

		switch li.Side {
		case domain.SideSweet:
			delta.SweetCents -= amount
			rec.SweetCents -= amount
		case domain.SideSavoury:
			delta.SavouryCents -= amount
			rec.SavouryCents -= amount
		}
	}

	if rec.SweetCents < 0 {
		rec.SweetCents = 0
	}
	if rec.SavouryCents < 0 {
		rec.SavouryCents = 0
	}
	return delta
}
