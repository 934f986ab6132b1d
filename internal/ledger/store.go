package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sweetsavoury/battletally/internal/domain"
)

// KV is the slice of the store the order ledger needs.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	SetNX(ctx context.Context, key, value string) (bool, error)
	Del(ctx context.Context, key string) error
}

// OrderStore persists one ledger record per order. Creation is an atomic
// create-if-absent, which doubles as the idempotency gate: the duplicate
// delivery of a paid event loses the write and stops there.
type OrderStore struct {
	kv KV
}

func NewOrderStore(kv KV) *OrderStore {
	return &OrderStore{kv: kv}
}

func orderKey(shopDomain, orderID string) string {
	return fmt.Sprintf("battle:order:%s:%s", shopDomain, orderID)
}

// Create writes the record only if no record for this order exists yet and
// reports whether this call created it.
func (s *OrderStore) Create(ctx context.Context, rec *domain.OrderRecord) (bool, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return false, fmt.Errorf("marshal order record: %w", err)
	}
	created, err := s.kv.SetNX(ctx, orderKey(rec.ShopDomain, rec.OrderID), string(raw))
	if err != nil {
		return false, fmt.Errorf("create order record %s: %w", rec.OrderID, err)
	}
	return created, nil
}

func (s *OrderStore) Get(ctx context.Context, shopDomain, orderID string) (*domain.OrderRecord, bool, error) {
	raw, ok, err := s.kv.Get(ctx, orderKey(shopDomain, orderID))
	if err != nil {
		return nil, false, fmt.Errorf("get order record %s: %w", orderID, err)
	}
	if !ok {
		return nil, false, nil
	}
	var rec domain.OrderRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, false, fmt.Errorf("unmarshal order record %s: %w", orderID, err)
	}
	return &rec, true, nil
}

// Update overwrites an existing record after a refund mutation.
func (s *OrderStore) Update(ctx context.Context, rec *domain.OrderRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal order record: %w", err)
	}
	if err := s.kv.Set(ctx, orderKey(rec.ShopDomain, rec.OrderID), string(raw)); err != nil {
		return fmt.Errorf("update order record %s: %w", rec.OrderID, err)
	}
	return nil
}

func (s *OrderStore) Delete(ctx context.Context, shopDomain, orderID string) error {
	if err := s.kv.Del(ctx, orderKey(shopDomain, orderID)); err != nil {
		return fmt.Errorf("delete order record %s: %w", orderID, err)
	}
	return nil
}
