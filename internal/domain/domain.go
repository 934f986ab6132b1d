package domain

import (
	"strings"
	"time"
)

// Side is the revenue category a product belongs to in the battle.
type Side string

const (
	SideNone    Side = ""
	SideSweet   Side = "sweet"
	SideSavoury Side = "savoury"
)

// ParseSide maps a raw value to a known side, case-insensitively.
// Anything else resolves to SideNone.
func ParseSide(s string) Side {
	switch {
	case strings.EqualFold(s, string(SideSweet)):
		return SideSweet
	case strings.EqualFold(s, string(SideSavoury)):
		return SideSavoury
	default:
		return SideNone
	}
}

// LineItemRecord is the per-line-item slice of an order's ledger entry.
// RevenueCents is fixed at order time; RemainingCents only ever shrinks,
// staying within [0, RevenueCents].
type LineItemRecord struct {
	Side             Side  `json:"side"`
	OriginalQuantity int64 `json:"original_quantity"`
	RevenueCents     int64 `json:"revenue_cents"`
	RemainingCents   int64 `json:"remaining_cents"`
}

// OrderRecord is the durable per-order ledger entry. Created once on the
// first processed paid event, mutated in place by refunds, removed on
// cancellation.
type OrderRecord struct {
	OrderID      string                     `json:"order_id"`
	ShopDomain   string                     `json:"shop_domain"`
	SweetCents   int64                      `json:"sweet_cents"`
	SavouryCents int64                      `json:"savoury_cents"`
	LineItems    map[string]*LineItemRecord `json:"line_items"`
}

// Delta is a signed change to the running per-side totals.
type Delta struct {
	SweetCents   int64
	SavouryCents int64
}

func (d Delta) IsZero() bool {
	return d.SweetCents == 0 && d.SavouryCents == 0
}

func (d Delta) Negate() Delta {
	return Delta{SweetCents: -d.SweetCents, SavouryCents: -d.SavouryCents}
}

// Totals is the shop-wide running aggregate.
type Totals struct {
	SweetCents   int64
	SavouryCents int64
	LastUpdated  time.Time
}
