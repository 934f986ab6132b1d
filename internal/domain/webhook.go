package domain

// Webhook topics this service reacts to. Anything else is acknowledged and
// dropped so the platform does not retry notification types we never asked for.
const (
	TopicOrdersPaid      = "orders/paid"
	TopicOrdersCancelled = "orders/cancelled"
	TopicRefundsCreate   = "refunds/create"
)

// OrderEvent mirrors the subset of the Shopify order webhook payload the
// ledger needs.
type OrderEvent struct {
	ID        int64      `json:"id"`
	LineItems []LineItem `json:"line_items"`
}

type LineItem struct {
	ID            int64  `json:"id"`
	ProductID     int64  `json:"product_id"`
	Quantity      int64  `json:"quantity"`
	Price         string `json:"price"`
	TotalDiscount string `json:"total_discount"`
}

// RefundEvent mirrors the subset of the refunds/create payload the proration
// engine needs.
type RefundEvent struct {
	OrderID         int64            `json:"order_id"`
	RefundLineItems []RefundLineItem `json:"refund_line_items"`
}

type RefundLineItem struct {
	LineItemID int64 `json:"line_item_id"`
	Quantity   int64 `json:"quantity"`
}
