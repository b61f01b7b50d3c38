package models

import (
	"time"

	"github.com/quantfoundry/pinetester/backtest"
)

// BacktestResult is the stored outcome of one strategy run,
// also has relationships to the run's trade records.
type BacktestResult struct {
	ID               int           `gorm:"primary_key" json:"-"`
	Timestamp        int64         `json:"timestamp"`
	Symbol           string        `json:"symbol"`
	Timeframe        string        `json:"timeframe"`
	Strategy         string        `json:"strategy"`
	InitialCash      float64       `json:"initial_cash"`
	CommissionRate   float64       `json:"commission_rate"`
	TotalTrades      int           `json:"total_trades"`
	Wins             int           `json:"wins"`
	Losses           int           `json:"losses"`
	WinRate          float64       `json:"win_rate"`
	RealizedProfit   float64       `json:"realized_profit"`
	UnrealizedProfit float64       `json:"unrealized_profit"`
	ProfitFactor     float64       `json:"profit_factor"`
	MaxDrawdown      float64       `json:"max_drawdown"`
	FinalEquity      float64       `json:"final_equity"`
	Trades           []TradeRecord `gorm:"foreignKey:Symbol;references:Symbol" json:"-"`
}

// TradeRecord is one stored ledger trade
type TradeRecord struct {
	ID         int     `gorm:"primary_key" json:"-"`
	TradeID    string  `json:"trade_id"`
	Symbol     string  `json:"symbol"`
	Kind       string  `json:"kind"`
	Side       string  `json:"side"`
	Time       int64   `json:"time"`
	Price      float64 `json:"price"`
	Size       float64 `json:"size"`
	Commission float64 `json:"commission"`
	Profit     float64 `json:"profit"`
	Comment    string  `json:"comment"`
}

// NewBacktestResult flattens a finished run's ledger into its storable form
func NewBacktestResult(strategyTitle, timeframe string, cfg backtest.RunConfig, ledger *backtest.Ledger) *BacktestResult {
	sum := ledger.Summarize()

	records := make([]TradeRecord, 0, len(ledger.Trades))
	for _, t := range ledger.Trades {
		records = append(records, TradeRecord{
			TradeID:    t.ID,
			Symbol:     ledger.Symbol,
			Kind:       string(t.Kind),
			Side:       t.Side,
			Time:       t.Time,
			Price:      t.Price,
			Size:       t.Size,
			Commission: t.Commission,
			Profit:     t.Profit,
			Comment:    t.Comment,
		})
	}

	return &BacktestResult{
		Timestamp:        time.Now().Unix() * 1000,
		Symbol:           ledger.Symbol,
		Timeframe:        timeframe,
		Strategy:         strategyTitle,
		InitialCash:      cfg.InitialCash,
		CommissionRate:   cfg.CommissionRate,
		TotalTrades:      sum.TotalTrades,
		Wins:             sum.Wins,
		Losses:           sum.Losses,
		WinRate:          sum.WinRate,
		RealizedProfit:   sum.RealizedProfit,
		UnrealizedProfit: sum.UnrealizedProfit,
		ProfitFactor:     sum.ProfitFactor,
		MaxDrawdown:      sum.MaxDrawdown,
		FinalEquity:      sum.FinalEquity,
		Trades:           records,
	}
}

// DeleteBacktestResult deletes all existing data for symbol
func DeleteBacktestResult(symbol string) {
	DB.Delete(BacktestResult{}, "Symbol LIKE ?", "%"+symbol+"%")
	DB.Delete(TradeRecord{}, "Symbol LIKE ?", "%"+symbol+"%")
}

// BacktestResultFrame wraps a stored result for json, Result is nil when
// the symbol has never been backtested
type BacktestResultFrame struct {
	Result *BacktestResult `json:"result"`
}

// GetBacktestResultFrame returns BacktestResultFrame including BacktestResult for symbol
func GetBacktestResultFrame(symbol string) *BacktestResultFrame {
	var result BacktestResult
	var frame BacktestResultFrame

	err := DB.Preload("Trades").First(&result, BacktestResult{Symbol: symbol})
	if err.Error != nil {
		// Not Found
		frame.Result = nil
		return &frame
	}

	frame.Result = &result
	return &frame
}

// CreateBacktestResult creates new backtest results, but before create, you delete existing data, beforehand
func (r *BacktestResult) CreateBacktestResult() error {
	if err := DB.Create(r).Error; err != nil {
		return err
	}
	return nil
}
