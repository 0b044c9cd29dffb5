// Package engine implements the order-execution and accounting state machine
// of the backtester: cash, positions, order and trade ledgers, and the
// equity curve.
package engine

import (
	"time"

	"github.com/rustyeddy/quant/internal/id"
)

// Engine owns all mutable state of one backtest run. It is not safe for
// concurrent use; independent runs must each own their own Engine.
type Engine struct {
	InitialCapital float64
	CommissionRate float64

	cash      float64
	positions map[string]*Position
	orders    []*Order
	trades    []Trade
	curve     []EquityPoint
	now       time.Time

	totalTrades   int
	winningTrades int
	losingTrades  int
}

// New creates an Engine with the given starting cash and commission rate
// (e.g. 0.001 for 10 bps per fill).
func New(initialCapital, commissionRate float64) *Engine {
	e := &Engine{
		InitialCapital: initialCapital,
		CommissionRate: commissionRate,
	}
	e.Reset()
	return e
}

// Reset restores the engine to its initial state so it can host a fresh,
// independent run.
func (e *Engine) Reset() {
	e.cash = e.InitialCapital
	e.positions = make(map[string]*Position)
	e.orders = nil
	e.trades = nil
	e.curve = nil
	e.now = time.Time{}
	e.totalTrades = 0
	e.winningTrades = 0
	e.losingTrades = 0
}

// SetTime sets the current replay time. New orders are stamped with it.
func (e *Engine) SetTime(t time.Time) { e.now = t }

// Cash returns the current cash balance.
func (e *Engine) Cash() float64 { return e.cash }

// Position returns a copy of the position for symbol.
func (e *Engine) Position(symbol string) (Position, bool) {
	pos, ok := e.positions[symbol]
	if !ok {
		return Position{}, false
	}
	return *pos, true
}

// Positions returns a snapshot copy of every position.
func (e *Engine) Positions() map[string]Position {
	out := make(map[string]Position, len(e.positions))
	for sym, pos := range e.positions {
		out[sym] = *pos
	}
	return out
}

// Orders returns the order ledger.
func (e *Engine) Orders() []*Order { return e.orders }

// Trades returns the trade ledger.
func (e *Engine) Trades() []Trade { return e.trades }

// EquityCurve returns the recorded equity curve.
func (e *Engine) EquityCurve() []EquityPoint { return e.curve }

// TradeCounts returns the running total, winning and losing trade counters.
// Only sell fills are counted; a gross P&L of exactly zero counts as a loss.
func (e *Engine) TradeCounts() (total, wins, losses int) {
	return e.totalTrades, e.winningTrades, e.losingTrades
}

// CreateOrder allocates a new pending order stamped with the current replay
// time. Quantity must be positive and finite; the engine does not validate
// it since runner-computed quantities always are. The limit and stop prices
// are 0 for market orders.
func (e *Engine) CreateOrder(symbol string, side Side, typ OrderType, quantity, limitPrice, stopPrice float64) *Order {
	o := &Order{
		ID:        id.New(),
		Symbol:    symbol,
		Side:      side,
		Type:      typ,
		Quantity:  quantity,
		Price:     limitPrice,
		StopPrice: stopPrice,
		Time:      e.now,
		Status:    Pending,
	}
	e.orders = append(e.orders, o)
	return o
}

// ExecuteOrder fills a pending order at price, all-or-nothing. It returns
// false without mutating any state when the order is not pending, when a buy
// would cost more than the available cash, or when a sell exceeds the held
// quantity; the order is marked Rejected in the latter two cases.
func (e *Engine) ExecuteOrder(o *Order, price float64) bool {
	if o.Status != Pending {
		return false
	}

	switch o.Side {
	case Buy:
		required := o.Quantity * price * (1 + e.CommissionRate)
		if required > e.cash {
			o.Status = Rejected
			return false
		}
	case Sell:
		held := 0.0
		if pos, ok := e.positions[o.Symbol]; ok {
			held = pos.Quantity
		}
		if o.Quantity > held {
			o.Status = Rejected
			return false
		}
	}

	commission := o.Quantity * price * e.CommissionRate
	pnl := 0.0

	switch o.Side {
	case Buy:
		e.cash -= o.Quantity*price + commission

		pos, ok := e.positions[o.Symbol]
		if !ok {
			pos = &Position{Symbol: o.Symbol}
			e.positions[o.Symbol] = pos
		}
		totalCost := pos.Quantity*pos.AvgPrice + o.Quantity*price
		totalQty := pos.Quantity + o.Quantity
		if totalQty > 0 {
			pos.AvgPrice = totalCost / totalQty
		} else {
			pos.AvgPrice = 0
		}
		pos.Quantity += o.Quantity
		pos.TotalCommission += commission

	case Sell:
		e.cash += o.Quantity*price - commission

		pos := e.positions[o.Symbol]
		pnl = o.Quantity * (price - pos.AvgPrice)
		pos.RealizedPnL += pnl
		pos.Quantity -= o.Quantity
		pos.TotalCommission += commission

		e.totalTrades++
		if pnl > 0 {
			e.winningTrades++
		} else {
			e.losingTrades++
		}
	}

	e.trades = append(e.trades, Trade{
		ID:         id.New(),
		Symbol:     o.Symbol,
		Side:       o.Side,
		Quantity:   o.Quantity,
		Price:      price,
		Time:       o.Time,
		Commission: commission,
		PnL:        pnl,
	})

	o.Status = Filled
	o.FilledPrice = price
	o.FilledQuantity = o.Quantity
	o.Commission = commission
	return true
}

// UpdatePositions marks open positions to market: every position with
// quantity > 0 and a known current price gets its unrealized P&L recomputed.
func (e *Engine) UpdatePositions(prices map[string]float64) {
	for sym, pos := range e.positions {
		price, ok := prices[sym]
		if !ok || pos.Quantity <= 0 {
			continue
		}
		pos.UnrealizedPnL = pos.Quantity * (price - pos.AvgPrice)
	}
}

// Equity returns cash plus the mark-to-market value of open positions with a
// known price.
func (e *Engine) Equity(prices map[string]float64) float64 {
	total := e.cash
	for sym, pos := range e.positions {
		price, ok := prices[sym]
		if !ok || pos.Quantity <= 0 {
			continue
		}
		total += pos.Quantity * price
	}
	return total
}

// UpdateEquityCurve marks positions to market and appends one equity-curve
// point at the current replay time.
func (e *Engine) UpdateEquityCurve(prices map[string]float64) {
	e.UpdatePositions(prices)

	var unrealized, realized float64
	for _, pos := range e.positions {
		unrealized += pos.UnrealizedPnL
		realized += pos.RealizedPnL
	}

	e.curve = append(e.curve, EquityPoint{
		Time:          e.now,
		Equity:        e.Equity(prices),
		Cash:          e.cash,
		UnrealizedPnL: unrealized,
		RealizedPnL:   realized,
	})
}
