package backtest

import (
	"github.com/oarkflow/errors"
	"github.com/sirupsen/logrus"

	"github.com/quantfoundry/pinetester/pine"
)

// FillRule decides the price a signal executes at.
type FillRule int

const (
	// FillClose executes on the close of the bar that produced the signal.
	FillClose FillRule = iota
	// FillNextOpen queues the signal and executes on the next bar's open.
	// A signal on the final bar is dropped, never filled retroactively.
	FillNextOpen
)

// SizeRule decides how many units an entry buys or sells.
type SizeRule int

const (
	// SizeFixedUnits trades SizeValue units per entry.
	SizeFixedUnits SizeRule = iota
	// SizeFixedNotional trades SizeValue/price units per entry.
	SizeFixedNotional
)

// RunConfig is the immutable simulation configuration for one run.
type RunConfig struct {
	InitialCash    float64
	CommissionRate float64
	Fill           FillRule
	Size           SizeRule
	SizeValue      float64
	Inputs         map[string]Value

	// Priority resolves conflicting same-bar signals; nil keeps the
	// default exit-before-enter order.
	Priority []Signal
}

// DefaultRunConfig mirrors the account the reference runs use: 10000 in
// cash, 0.1% commission per fill, fills on the signal bar's close, and the
// whole starting balance as notional per entry.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		InitialCash:    10000,
		CommissionRate: 0.001,
		Fill:           FillClose,
		Size:           SizeFixedNotional,
		SizeValue:      10000,
	}
}

// Position is the single open position of a run. Side is "LONG" or "SHORT";
// there is never more than one position and never pyramiding onto it.
type Position struct {
	Side       string
	EntryTime  int64
	EntryPrice float64
	Size       float64
	Commission float64
	Comment    string
}

// Engine drives one strategy over one series and produces the ledger.
// It owns the position/cash state machine; the interpreter only ever
// hands it intents.
type Engine struct {
	strategy *pine.Strategy
	series   *Series
	cfg      RunConfig

	cash    float64
	pos     *Position
	pending []Intent

	ledger *Ledger
}

// NewEngine builds an engine for one run.
func NewEngine(strategy *pine.Strategy, series *Series, cfg RunConfig) *Engine {
	return &Engine{strategy: strategy, series: series, cfg: cfg}
}

// Run validates the strategy and the series, then simulates bar by bar:
// pending next-open fills execute first against the bar's open, the
// interpreter evaluates the bar, the bar's intents fill per the fill rule,
// and equity is sampled at the close. The returned ledger is append-only
// and fully describes the run.
func (e *Engine) Run() (*Ledger, error) {
	if err := pine.Validate(e.strategy); err != nil {
		return nil, err
	}
	if err := e.series.Validate(); err != nil {
		return nil, err
	}

	logrus.Infof("backtest start: %v, %v, %v bars", e.series.Symbol, e.series.Timeframe, e.series.Len())

	e.cash = e.cfg.InitialCash
	e.pos = nil
	e.pending = nil
	e.ledger = NewLedger(e.series.Symbol)

	ctx := NewContext(e.series, e.strategy)
	for name, v := range e.cfg.Inputs {
		ctx.SetInput(name, v)
	}
	interp := NewInterpreter(e.strategy, ctx)
	interp.SetPriority(e.cfg.Priority)

	for ctx.Advance() {
		bar := ctx.Bar()

		if len(e.pending) > 0 {
			e.applyIntents(e.pending, bar.Time, bar.Open)
			e.pending = nil
		}

		intents, err := interp.EvalBar()
		if err != nil {
			return nil, errors.NewE(err, "strategy evaluation failed", "")
		}

		if e.cfg.Fill == FillNextOpen {
			e.pending = intents
		} else {
			e.applyIntents(intents, bar.Time, bar.Close)
		}

		e.ledger.markEquity(bar.Time, e.equityAt(bar.Close))
	}

	// a position still open at the end of the run becomes a single
	// mark-to-market record; it is never force-closed
	if e.pos != nil {
		last := e.series.LastBar()
		e.ledger.append(Trade{
			Kind:       KindMark,
			Side:       e.pos.Side,
			Time:       last.Time,
			Price:      last.Close,
			Size:       e.pos.Size,
			Commission: e.pos.Commission,
			Profit:     e.unrealized(last.Close),
			Comment:    e.pos.Comment,
		})
	}

	sum := e.ledger.Summarize()
	logrus.Infof("backtest end: %v trades, net %v", sum.TotalTrades, sum.RealizedProfit)
	return e.ledger, nil
}

// applyIntents runs one bar's intents against the position state machine.
// The slice arrives from the interpreter in priority order, exit-first
// unless the run overrides it, so a same-bar exit and entry resolve as
// close-then-open under the default. Entries while a position is open are
// ignored; exits against the wrong side or a flat book are ignored.
func (e *Engine) applyIntents(intents []Intent, time int64, price float64) {
	for _, in := range intents {
		switch in.Signal {
		case ExitLong:
			if e.pos != nil && e.pos.Side == "LONG" {
				e.closePosition(time, price, in.Comment)
			}
		case ExitShort:
			if e.pos != nil && e.pos.Side == "SHORT" {
				e.closePosition(time, price, in.Comment)
			}
		case EnterLong:
			if e.pos == nil {
				e.openPosition("LONG", time, price, in.Comment)
			}
		case EnterShort:
			if e.pos == nil {
				e.openPosition("SHORT", time, price, in.Comment)
			}
		}
	}
}

func (e *Engine) positionSize(price float64) float64 {
	if e.cfg.Size == SizeFixedNotional {
		return e.cfg.SizeValue / price
	}
	return e.cfg.SizeValue
}

func (e *Engine) openPosition(side string, time int64, price float64, comment string) {
	size := e.positionSize(price)
	if size <= 0 {
		return
	}
	notional := price * size
	commission := notional * e.cfg.CommissionRate
	if side == "LONG" {
		e.cash -= notional + commission
	} else {
		e.cash += notional - commission
	}
	e.pos = &Position{
		Side:       side,
		EntryTime:  time,
		EntryPrice: price,
		Size:       size,
		Commission: commission,
		Comment:    comment,
	}
}

// closePosition realizes the open position at price and commits the round
// trip to the ledger: the deferred ENTRY record first, then the EXIT record
// carrying the realized profit net of both commissions.
func (e *Engine) closePosition(time int64, price float64, comment string) {
	pos := e.pos
	notional := price * pos.Size
	commission := notional * e.cfg.CommissionRate
	if pos.Side == "LONG" {
		e.cash += notional - commission
	} else {
		e.cash -= notional + commission
	}

	profit := (price - pos.EntryPrice) * pos.Size
	if pos.Side == "SHORT" {
		profit = -profit
	}
	profit -= pos.Commission + commission

	e.ledger.append(Trade{
		Kind:       KindEntry,
		Side:       pos.Side,
		Time:       pos.EntryTime,
		Price:      pos.EntryPrice,
		Size:       pos.Size,
		Commission: pos.Commission,
		Comment:    pos.Comment,
	})
	e.ledger.append(Trade{
		Kind:       KindExit,
		Side:       pos.Side,
		Time:       time,
		Price:      price,
		Size:       pos.Size,
		Commission: commission,
		Profit:     profit,
		Comment:    comment,
	})
	e.pos = nil
}

// unrealized is the open position's mark-to-market profit at price, net of
// the entry commission already paid.
func (e *Engine) unrealized(price float64) float64 {
	if e.pos == nil {
		return 0
	}
	p := (price - e.pos.EntryPrice) * e.pos.Size
	if e.pos.Side == "SHORT" {
		p = -p
	}
	return p - e.pos.Commission
}

// equityAt is cash plus the open position's liquidation value at price.
func (e *Engine) equityAt(price float64) float64 {
	if e.pos == nil {
		return e.cash
	}
	if e.pos.Side == "LONG" {
		return e.cash + price*e.pos.Size
	}
	return e.cash - price*e.pos.Size
}
