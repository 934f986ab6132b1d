package ledger

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/sweetsavoury/battletally/internal/domain"
)

const (
	fieldSweet   = "sweet"
	fieldSavoury = "savoury"
	fieldUpdated = "updated"
)

// TotalsKV is the slice of the store the aggregate needs: a hash read plus the
// pipelined increment that applies a whole delta in one submission.
type TotalsKV interface {
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	IncrFields(ctx context.Context, key string, deltas map[string]int64, sets map[string]string) error
}

// Totals maintains the shop-wide running sums. The aggregate is only ever
// moved by deltas, never recomputed from the ledger.
type Totals struct {
	kv  TotalsKV
	now func() time.Time
}

func NewTotals(kv TotalsKV) *Totals {
	return &Totals{kv: kv, now: time.Now}
}

func totalsKey(shopDomain string) string {
	return "battle:totals:" + shopDomain
}

// Apply moves both side counters and the last-updated stamp atomically.
// Zero deltas are the caller's responsibility to suppress.
func (t *Totals) Apply(ctx context.Context, shopDomain string, d domain.Delta) error {
	deltas := map[string]int64{
		fieldSweet:   d.SweetCents,
		fieldSavoury: d.SavouryCents,
	}
	sets := map[string]string{
		fieldUpdated: t.now().UTC().Format(time.RFC3339Nano),
	}
	if err := t.kv.IncrFields(ctx, totalsKey(shopDomain), deltas, sets); err != nil {
		return fmt.Errorf("apply totals delta: %w", err)
	}
	return nil
}

// Current reads the aggregate. A shop with no recorded events renders as zero
// totals with the current time, never an error.
func (t *Totals) Current(ctx context.Context, shopDomain string) (domain.Totals, error) {
	fields, err := t.kv.HGetAll(ctx, totalsKey(shopDomain))
	if err != nil {
		return domain.Totals{}, fmt.Errorf("read totals: %w", err)
	}

	out := domain.Totals{LastUpdated: t.now().UTC()}
	if v, ok := fields[fieldSweet]; ok {
		out.SweetCents, _ = strconv.ParseInt(v, 10, 64)
	}
	if v, ok := fields[fieldSavoury]; ok {
		out.SavouryCents, _ = strconv.ParseInt(v, 10, 64)
	}
	if v, ok := fields[fieldUpdated]; ok {
		if ts, err := time.Parse(time.RFC3339Nano, v); err == nil {
			out.LastUpdated = ts
		}
	}
	return out, nil
}
