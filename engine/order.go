package engine

import "time"

// Side is the direction of an order or trade.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// OrderType selects the execution style of an order. Only market orders are
// issued by the runner; the other types are carried for callers that manage
// their own orders.
type OrderType string

const (
	Market    OrderType = "market"
	Limit     OrderType = "limit"
	Stop      OrderType = "stop"
	StopLimit OrderType = "stop_limit"
)

// OrderStatus is the lifecycle state of an order. An order is created
// Pending and moves to Filled or Rejected exactly once; Cancelled is defined
// for completeness but never assigned by the engine.
type OrderStatus string

const (
	Pending   OrderStatus = "pending"
	Filled    OrderStatus = "filled"
	Cancelled OrderStatus = "cancelled"
	Rejected  OrderStatus = "rejected"
)

// Order is an intent to trade. Terminal orders are never mutated again.
type Order struct {
	ID        string      `json:"id"`
	Symbol    string      `json:"symbol"`
	Side      Side        `json:"side"`
	Type      OrderType   `json:"type"`
	Quantity  float64     `json:"quantity"`
	Price     float64     `json:"price,omitempty"`      // limit price, 0 = none
	StopPrice float64     `json:"stop_price,omitempty"` // stop trigger, 0 = none
	Time      time.Time   `json:"timestamp"`
	Status    OrderStatus `json:"status"`

	FilledPrice    float64 `json:"filled_price"`
	FilledQuantity float64 `json:"filled_quantity"`
	Commission     float64 `json:"commission"`
}
