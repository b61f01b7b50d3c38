package backtest

import (
	"github.com/oarkflow/xid"
)

// TradeKind distinguishes ledger records.
type TradeKind string

// Trade record kinds. ENTRY and EXIT are realized records of a closed
// round trip; MARK is the unrealized mark-to-market record of a position
// still open when the run ends.
const (
	KindEntry TradeKind = "ENTRY"
	KindExit  TradeKind = "EXIT"
	KindMark  TradeKind = "MARK"
)

// Trade is one immutable ledger record. Profit is set on EXIT records
// (realized, net of both commissions) and on MARK records (unrealized).
type Trade struct {
	ID         string
	Kind       TradeKind
	Side       string
	Time       int64
	Price      float64
	Size       float64
	Commission float64
	Profit     float64
	Comment    string
}

// EquityPoint is one sample of the equity curve: cash plus the
// mark-to-market value of any open position at a bar close.
type EquityPoint struct {
	Time   int64
	Equity float64
}

// Ledger is the append-only record of a completed run: trades in execution
// order and the per-bar equity curve. All statistics are pure reductions
// over these two slices; nothing re-runs the simulation.
type Ledger struct {
	Symbol string
	Trades []Trade
	Equity []EquityPoint
}

// NewLedger returns an empty ledger for a symbol.
func NewLedger(symbol string) *Ledger {
	return &Ledger{Symbol: symbol}
}

func (l *Ledger) append(t Trade) {
	t.ID = xid.New().String()
	l.Trades = append(l.Trades, t)
}

func (l *Ledger) markEquity(time int64, equity float64) {
	l.Equity = append(l.Equity, EquityPoint{Time: time, Equity: equity})
}

// Summary is the reduced view of a ledger handed to reporting.
type Summary struct {
	TotalTrades      int
	Wins             int
	Losses           int
	RealizedProfit   float64
	UnrealizedProfit float64
	WinRate          float64
	ProfitFactor     float64
	MaxDrawdown      float64
	FinalEquity      float64
}

// Summarize reduces the ledger to its summary statistics.
func (l *Ledger) Summarize() Summary {
	sum := Summary{TotalTrades: len(l.Trades)}

	grossWin, grossLoss := 0.0, 0.0
	for _, t := range l.Trades {
		switch t.Kind {
		case KindExit:
			sum.RealizedProfit += t.Profit
			if t.Profit > 0 {
				sum.Wins++
				grossWin += t.Profit
			} else if t.Profit < 0 {
				sum.Losses++
				grossLoss += -t.Profit
			}
		case KindMark:
			sum.UnrealizedProfit += t.Profit
		}
	}

	if closed := sum.Wins + sum.Losses; closed > 0 {
		sum.WinRate = float64(sum.Wins) / float64(closed)
	}
	if grossLoss > 0 {
		sum.ProfitFactor = grossWin / grossLoss
	}
	sum.MaxDrawdown = l.MaxDrawdown()
	if len(l.Equity) > 0 {
		sum.FinalEquity = l.Equity[len(l.Equity)-1].Equity
	}
	return sum
}

// MaxDrawdown returns the largest peak-to-trough decline of the equity
// curve, as a positive amount in account currency.
func (l *Ledger) MaxDrawdown() float64 {
	peak, maxDD := 0.0, 0.0
	for i, p := range l.Equity {
		if i == 0 || p.Equity > peak {
			peak = p.Equity
		}
		if dd := peak - p.Equity; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}
