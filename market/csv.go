package market

import (
	"encoding/csv"
	"os"
	"strings"

	"github.com/araddon/dateparse"
	"github.com/oarkflow/convert"
	"github.com/oarkflow/errors"
	"github.com/oarkflow/log"

	"github.com/quantfoundry/pinetester/backtest"
)

// LoadCSVSeries reads OHLCV bars from a csv file into a series. The header
// row names the columns; time/date, open, high, low, close and volume are
// matched case-insensitively and any other column is ignored. Timestamps
// parse in any common format and become unix milliseconds.
func LoadCSVSeries(path, symbol, timeframe string) (*backtest.Series, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.NewE(err, "unable to open candle file", "")
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.NewE(err, "unable to read candle file", "")
	}
	if len(rows) < 2 {
		return nil, errors.New("candle file has no data rows: " + path)
	}

	col := map[string]int{}
	for i, name := range rows[0] {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	timeCol, ok := col["time"]
	if !ok {
		timeCol, ok = col["date"]
	}
	if !ok {
		return nil, errors.New("candle file has no time or date column: " + path)
	}
	for _, name := range []string{"open", "high", "low", "close"} {
		if _, ok := col[name]; !ok {
			return nil, errors.New("candle file missing column: " + name)
		}
	}

	numField := func(row []string, name string) float64 {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return 0
		}
		v, _ := convert.ToFloat64(strings.ReplaceAll(row[i], ",", ""))
		return v
	}

	series := backtest.NewSeries(symbol, timeframe)
	for _, row := range rows[1:] {
		ts, err := dateparse.ParseAny(row[timeCol])
		if err != nil {
			return nil, errors.NewE(err, "bad timestamp in candle file", "")
		}
		series.AddBar(backtest.Bar{
			Time:   ts.UnixMilli(),
			Open:   numField(row, "open"),
			High:   numField(row, "high"),
			Low:    numField(row, "low"),
			Close:  numField(row, "close"),
			Volume: numField(row, "volume"),
		})
	}

	log.Info().Str("file", path).Int("bars", series.Len()).Msg("Loaded candles")
	return series, nil
}
