package backtest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quantfoundry/pinetester/backtest"
)

func TestSummarize(t *testing.T) {
	ledger := &backtest.Ledger{
		Symbol: "TEST",
		Trades: []backtest.Trade{
			{Kind: backtest.KindEntry, Side: "LONG", Price: 100},
			{Kind: backtest.KindExit, Side: "LONG", Price: 110, Profit: 10},
			{Kind: backtest.KindEntry, Side: "SHORT", Price: 105},
			{Kind: backtest.KindExit, Side: "SHORT", Price: 110, Profit: -5},
			{Kind: backtest.KindMark, Side: "LONG", Price: 120, Profit: 3},
		},
		Equity: []backtest.EquityPoint{
			{Time: 1, Equity: 10000},
			{Time: 2, Equity: 10010},
			{Time: 3, Equity: 10005},
			{Time: 4, Equity: 10008},
		},
	}

	sum := ledger.Summarize()
	assert.Equal(t, 5, sum.TotalTrades)
	assert.Equal(t, 1, sum.Wins)
	assert.Equal(t, 1, sum.Losses)
	assert.Equal(t, 0.5, sum.WinRate)
	assert.Equal(t, 5.0, sum.RealizedProfit)
	assert.Equal(t, 3.0, sum.UnrealizedProfit)
	assert.Equal(t, 2.0, sum.ProfitFactor)
	assert.Equal(t, 5.0, sum.MaxDrawdown)
	assert.Equal(t, 10008.0, sum.FinalEquity)
}

func TestSummarizeEmptyLedger(t *testing.T) {
	sum := backtest.NewLedger("TEST").Summarize()

	assert.Zero(t, sum.TotalTrades)
	assert.Zero(t, sum.WinRate)
	assert.Zero(t, sum.ProfitFactor)
	assert.Zero(t, sum.MaxDrawdown)
}

func TestMaxDrawdownPeakToTrough(t *testing.T) {
	ledger := &backtest.Ledger{
		Equity: []backtest.EquityPoint{
			{Time: 1, Equity: 100},
			{Time: 2, Equity: 120},
			{Time: 3, Equity: 80},
			{Time: 4, Equity: 130},
			{Time: 5, Equity: 95},
		},
	}

	// deepest decline is 120 -> 80, not the later 130 -> 95
	assert.Equal(t, 40.0, ledger.MaxDrawdown())

	ledger.Equity = append(ledger.Equity, backtest.EquityPoint{Time: 6, Equity: 85})
	assert.Equal(t, 45.0, ledger.MaxDrawdown(), "new trough below the 130 peak")
}

func TestTradeIDsAssignedByEngine(t *testing.T) {
	ledger := run(t, momentumScript, closeSeries(100, 105, 95), unitConfig())

	seen := map[string]bool{}
	for _, trade := range ledger.Trades {
		assert.NotEmpty(t, trade.ID)
		assert.False(t, seen[trade.ID], "trade IDs must be unique")
		seen[trade.ID] = true
	}
}
