package market

import (
	"time"

	"github.com/markcheno/go-quote"
	"github.com/oarkflow/errors"
	"github.com/oarkflow/log"
)

const dateFormat = "2006-01-02"

// binancePeriod maps a timeframe label to the exchange's kline interval.
func binancePeriod(timeframe string) (quote.Period, error) {
	switch timeframe {
	case "1m":
		return quote.Min1, nil
	case "5m":
		return quote.Min5, nil
	case "15m":
		return quote.Min15, nil
	case "30m":
		return quote.Min30, nil
	case "1h":
		return quote.Min60, nil
	case "4h":
		return quote.Hour4, nil
	case "1d":
		return quote.Daily, nil
	case "1w":
		return quote.Weekly, nil
	}
	return quote.Daily, errors.New("unsupported timeframe: " + timeframe)
}

// FetchCandles downloads OHLCV history for symbol(BTCUSDT, ETHUSDT...etc)
// during today ~ before dayPeriod days.
func FetchCandles(symbol, timeframe string, dayPeriod int) (*quote.Quote, error) {
	period, err := binancePeriod(timeframe)
	if err != nil {
		return nil, err
	}

	endDay := time.Now()
	startDay := endDay.AddDate(0, 0, -dayPeriod)

	log.Info().Str("symbol", symbol).Str("timeframe", timeframe).Msg("Fetching candles")
	q, err := quote.NewQuoteFromBinance(symbol, startDay.Format(dateFormat), endDay.Format(dateFormat), period)
	if err != nil {
		return nil, errors.NewE(err, "candle download failed", "")
	}
	log.Info().Str("symbol", symbol).Int("bars", len(q.Date)).Msg("Fetched candles")

	return &q, nil
}
