package battle

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sweetsavoury/battletally/internal/domain"
	"github.com/sweetsavoury/battletally/internal/observability"
)

const testShop = "demo.myshopify.com"

func paidEvent() domain.OrderEvent {
	return domain.OrderEvent{
		ID: 1001,
		LineItems: []domain.LineItem{
			{ID: 7001, ProductID: 55, Quantity: 2, Price: "10.00", TotalDiscount: "0.00"},
		},
	}
}

func TestHandlePaid(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	l := zap.NewNop()
	m := observability.NewNoop()
	errBoom := errors.New("boom")

	testCases := []struct {
		name string

		setupMocks func() *Service
		want       Outcome
		wantErr    error
	}{
		{
			name: "Processed",

			setupMocks: func() *Service {
				orders := NewMockOrderLedger(ctrl)
				totals := NewMockAggregator(ctrl)
				cls := NewMockClassifier(ctrl)

				cls.EXPECT().Classify(ctx, testShop, int64(55)).Return(domain.SideSweet, nil)
				orders.EXPECT().Create(ctx, gomock.Any()).Return(true, nil)
				totals.EXPECT().Apply(ctx, testShop, domain.Delta{SweetCents: 2000}).Return(nil)

				return NewService(orders, totals, cls, l, m)
			},
			want: OutcomeProcessed,
		},
		{
			name: "Duplicate delivery stops at the gate",

			setupMocks: func() *Service {
				orders := NewMockOrderLedger(ctrl)
				cls := NewMockClassifier(ctrl)

				cls.EXPECT().Classify(ctx, testShop, int64(55)).Return(domain.SideSweet, nil)
				orders.EXPECT().Create(ctx, gomock.Any()).Return(false, nil)

				return NewService(orders, NewMockAggregator(ctrl), cls, l, m)
			},
			want: OutcomeDuplicate,
		},
		{
			name: "No classifiable items",

			setupMocks: func() *Service {
				cls := NewMockClassifier(ctrl)
				cls.EXPECT().Classify(ctx, testShop, int64(55)).Return(domain.SideNone, nil)

				return NewService(NewMockOrderLedger(ctrl), NewMockAggregator(ctrl), cls, l, m)
			},
			want: OutcomeSkipped,
		},
		{
			name: "Classification failure aborts before any write",

			setupMocks: func() *Service {
				cls := NewMockClassifier(ctrl)
				cls.EXPECT().Classify(ctx, testShop, int64(55)).Return(domain.SideNone, errBoom)

				return NewService(NewMockOrderLedger(ctrl), NewMockAggregator(ctrl), cls, l, m)
			},
			want:    OutcomeFailed,
			wantErr: errBoom,
		},
		{
			name: "Totals delta failure after ledger write",

			setupMocks: func() *Service {
				orders := NewMockOrderLedger(ctrl)
				totals := NewMockAggregator(ctrl)
				cls := NewMockClassifier(ctrl)

				cls.EXPECT().Classify(ctx, testShop, int64(55)).Return(domain.SideSweet, nil)
				orders.EXPECT().Create(ctx, gomock.Any()).Return(true, nil)
				totals.EXPECT().Apply(ctx, testShop, domain.Delta{SweetCents: 2000}).Return(errBoom)

				return NewService(orders, totals, cls, l, m)
			},
			want:    OutcomeFailed,
			wantErr: errBoom,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := tc.setupMocks()
			out, err := s.HandlePaid(ctx, testShop, paidEvent())

			require.Equal(t, tc.want, out)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestHandleCancelled(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	l := zap.NewNop()
	m := observability.NewNoop()

	rec := &domain.OrderRecord{
		OrderID:    "1001",
		ShopDomain: testShop,
		SweetCents: 1000,
		LineItems: map[string]*domain.LineItemRecord{
			"7001": {Side: domain.SideSweet, OriginalQuantity: 2, RevenueCents: 2000, RemainingCents: 1000},
		},
	}

	testCases := []struct {
		name string

		setupMocks func() *Service
		want       Outcome
	}{
		{
			name: "Unknown order is a no-op",

			setupMocks: func() *Service {
				orders := NewMockOrderLedger(ctrl)
				orders.EXPECT().Get(ctx, testShop, "1001").Return(nil, false, nil)
				return NewService(orders, NewMockAggregator(ctrl), NewMockClassifier(ctrl), l, m)
			},
			want: OutcomeSkipped,
		},
		{
			name: "Reverses only the outstanding portion",

			setupMocks: func() *Service {
				orders := NewMockOrderLedger(ctrl)
				totals := NewMockAggregator(ctrl)

				orders.EXPECT().Get(ctx, testShop, "1001").Return(rec, true, nil)
				totals.EXPECT().Apply(ctx, testShop, domain.Delta{SweetCents: -1000}).Return(nil)
				orders.EXPECT().Delete(ctx, testShop, "1001").Return(nil)

				return NewService(orders, totals, NewMockClassifier(ctrl), l, m)
			},
			want: OutcomeProcessed,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := tc.setupMocks()
			out, err := s.HandleCancelled(ctx, testShop, domain.OrderEvent{ID: 1001})

			require.NoError(t, err)
			require.Equal(t, tc.want, out)
		})
	}
}

func TestHandleRefund(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	l := zap.NewNop()
	m := observability.NewNoop()

	refund := domain.RefundEvent{
		OrderID: 1001,
		RefundLineItems: []domain.RefundLineItem{
			{LineItemID: 7001, Quantity: 1},
		},
	}

	freshRecord := func() *domain.OrderRecord {
		return &domain.OrderRecord{
			OrderID:    "1001",
			ShopDomain: testShop,
			SweetCents: 2000,
			LineItems: map[string]*domain.LineItemRecord{
				"7001": {Side: domain.SideSweet, OriginalQuantity: 2, RevenueCents: 2000, RemainingCents: 2000},
			},
		}
	}

	t.Run("Refund after cancellation is dropped", func(t *testing.T) {
		orders := NewMockOrderLedger(ctrl)
		orders.EXPECT().Get(ctx, testShop, "1001").Return(nil, false, nil)
		s := NewService(orders, NewMockAggregator(ctrl), NewMockClassifier(ctrl), l, m)

		out, err := s.HandleRefund(ctx, testShop, refund)
		require.NoError(t, err)
		require.Equal(t, OutcomeSkipped, out)
	})

	t.Run("Prorates and persists", func(t *testing.T) {
		rec := freshRecord()
		orders := NewMockOrderLedger(ctrl)
		totals := NewMockAggregator(ctrl)

		orders.EXPECT().Get(ctx, testShop, "1001").Return(rec, true, nil)
		totals.EXPECT().Apply(ctx, testShop, domain.Delta{SweetCents: -1000}).Return(nil)
		orders.EXPECT().Update(ctx, rec).Return(nil)

		s := NewService(orders, totals, NewMockClassifier(ctrl), l, m)
		out, err := s.HandleRefund(ctx, testShop, refund)

		require.NoError(t, err)
		require.Equal(t, OutcomeProcessed, out)
		require.Equal(t, int64(1000), rec.SweetCents)
		require.Equal(t, int64(1000), rec.LineItems["7001"].RemainingCents)
	})

	t.Run("Fully refunded line yields no state change", func(t *testing.T) {
		rec := freshRecord()
		rec.SweetCents = 0
		rec.LineItems["7001"].RemainingCents = 0

		orders := NewMockOrderLedger(ctrl)
		orders.EXPECT().Get(ctx, testShop, "1001").Return(rec, true, nil)

		s := NewService(orders, NewMockAggregator(ctrl), NewMockClassifier(ctrl), l, m)
		out, err := s.HandleRefund(ctx, testShop, refund)

		require.NoError(t, err)
		require.Equal(t, OutcomeSkipped, out)
	})
}
