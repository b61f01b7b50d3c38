package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/oarkflow/errors"
	"github.com/oarkflow/gologger"

	"github.com/quantfoundry/pinetester/backtest"
)

var tradeHeader = []string{
	"id", "kind", "side", "time", "price", "size", "commission", "profit", "comment",
}

// TradeLines renders the ledger's trades as csv lines, header first.
func TradeLines(ledger *backtest.Ledger) []string {
	lines := []string{strings.Join(tradeHeader, ",")}
	for _, t := range ledger.Trades {
		fields := []string{
			t.ID,
			string(t.Kind),
			t.Side,
			time.UnixMilli(t.Time).UTC().Format("2006-01-02 15:04:05"),
			num(t.Price),
			num(t.Size),
			num(t.Commission),
			num(t.Profit),
			t.Comment,
		}
		lines = append(lines, strings.Join(fields, ","))
	}
	return lines
}

// SummaryLines renders the run summary as key,value csv lines.
func SummaryLines(ledger *backtest.Ledger) []string {
	sum := ledger.Summarize()
	return []string{
		"stat,value",
		fmt.Sprintf("symbol,%s", ledger.Symbol),
		fmt.Sprintf("total_trades,%d", sum.TotalTrades),
		fmt.Sprintf("wins,%d", sum.Wins),
		fmt.Sprintf("losses,%d", sum.Losses),
		fmt.Sprintf("win_rate,%s", num(sum.WinRate)),
		fmt.Sprintf("realized_profit,%s", num(sum.RealizedProfit)),
		fmt.Sprintf("unrealized_profit,%s", num(sum.UnrealizedProfit)),
		fmt.Sprintf("profit_factor,%s", num(sum.ProfitFactor)),
		fmt.Sprintf("max_drawdown,%s", num(sum.MaxDrawdown)),
		fmt.Sprintf("final_equity,%s", num(sum.FinalEquity)),
	}
}

// ExportCsv writes the trade ledger and the run summary to path. The
// writer drains its queue on a background goroutine, so ExportCsv blocks
// until every queued line has been handed to the file before returning;
// callers may exit immediately afterwards.
func ExportCsv(path string, ledger *backtest.Ledger) error {
	writer, err := gologger.New(path, 3000)
	if err != nil {
		return err
	}

	for _, line := range TradeLines(ledger) {
		writer.WriteString(line)
	}
	writer.WriteString("")
	for _, line := range SummaryLines(ledger) {
		writer.WriteString(line)
	}

	// trailing sentinel: the queue is serviced in order, so once it has
	// been dequeued every report line above is already on disk
	writer.WriteString("")
	deadline := time.Now().Add(5 * time.Second)
	for gologger.QueueSize() > 0 {
		if time.Now().After(deadline) {
			return errors.New("report write queue did not drain: " + path)
		}
		time.Sleep(time.Millisecond)
	}
	return nil
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
