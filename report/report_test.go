package report_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfoundry/pinetester/backtest"
	"github.com/quantfoundry/pinetester/report"
)

func sampleLedger() *backtest.Ledger {
	return &backtest.Ledger{
		Symbol: "TESTUSD",
		Trades: []backtest.Trade{
			{ID: "a1", Kind: backtest.KindEntry, Side: "LONG", Time: 86400000, Price: 105, Size: 1, Comment: "up bar"},
			{ID: "a2", Kind: backtest.KindExit, Side: "LONG", Time: 172800000, Price: 95, Size: 1, Profit: -10, Comment: "down bar"},
		},
		Equity: []backtest.EquityPoint{
			{Time: 86400000, Equity: 10000},
			{Time: 172800000, Equity: 9990},
		},
	}
}

func TestTradeLines(t *testing.T) {
	lines := report.TradeLines(sampleLedger())

	require.Len(t, lines, 3)
	assert.Equal(t, "id,kind,side,time,price,size,commission,profit,comment", lines[0])
	assert.Equal(t, "a1,ENTRY,LONG,1970-01-02 00:00:00,105,1,0,0,up bar", lines[1])
	assert.Equal(t, "a2,EXIT,LONG,1970-01-03 00:00:00,95,1,0,-10,down bar", lines[2])
}

// the file must be complete the moment ExportCsv returns, even though the
// writer hands lines to a background goroutine
func TestExportCsvDeliversFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")

	require.NoError(t, report.ExportCsv(path, sampleLedger()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "id,kind,side,time,price,size,commission,profit,comment")
	assert.Contains(t, content, "a1,ENTRY,LONG,1970-01-02 00:00:00,105,1,0,0,up bar")
	assert.Contains(t, content, "a2,EXIT,LONG,1970-01-03 00:00:00,95,1,0,-10,down bar")
	assert.Contains(t, content, "final_equity,9990")
}

func TestSummaryLines(t *testing.T) {
	lines := report.SummaryLines(sampleLedger())

	joined := strings.Join(lines, "\n")
	assert.Contains(t, joined, "symbol,TESTUSD")
	assert.Contains(t, joined, "total_trades,2")
	assert.Contains(t, joined, "losses,1")
	assert.Contains(t, joined, "realized_profit,-10")
	assert.Contains(t, joined, "max_drawdown,10")
	assert.Contains(t, joined, "final_equity,9990")
}
