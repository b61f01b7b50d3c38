package models

import (
	"math"
	"sort"

	"github.com/markcheno/go-quote"
	"gorm.io/gorm"

	"github.com/quantfoundry/pinetester/backtest"
)

// Candles is slice of Candle
// Using this, create candle data in database
type Candles []Candle

// Candle is one stored OHLCV bar, keyed by symbol, timeframe and time
type Candle struct {
	ID        int     `json:"-"`
	Symbol    string  `gorm:"index" json:"-"`
	Timeframe string  `json:"-"`
	Time      int64   `json:"time"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// NewCandlesFromQuote converts Quote to slice of Candle due to creating in database,
// ex) [Date[1, 2, 3...], Open[1, 2, 3...]...] → [[Date[1], Open[1]...], [Date[2], Open[2]...]...]
// and return pointer of Candles(used as constructor)
// Time is converted to unix milliseconds, the representation the simulator uses
func NewCandlesFromQuote(q *quote.Quote, symbol, timeframe string) *Candles {
	candles := Candles{}
	for i := 0; i < len(q.Date); i++ {
		candles = append(candles, Candle{
			Symbol:    symbol,
			Timeframe: timeframe,
			Time:      q.Date[i].Unix() * 1000,
			Open:      (math.Round(q.Open[i]*100) / 100),
			High:      (math.Round(q.High[i]*100) / 100),
			Low:       (math.Round(q.Low[i]*100) / 100),
			Close:     (math.Round(q.Close[i]*100) / 100),
			Volume:    q.Volume[i],
		})
	}

	return &candles
}

// NewCandlesFromSeries converts an in-memory bar series to storable candles
func NewCandlesFromSeries(s *backtest.Series) *Candles {
	candles := Candles{}
	for _, bar := range s.Bars {
		candles = append(candles, Candle{
			Symbol:    s.Symbol,
			Timeframe: s.Timeframe,
			Time:      bar.Time,
			Open:      bar.Open,
			High:      bar.High,
			Low:       bar.Low,
			Close:     bar.Close,
			Volume:    bar.Volume,
		})
	}
	return &candles
}

// CreateCandles creates candle data
func (cs *Candles) CreateCandles() error {
	return DB.Create(cs).Error
}

// GetCandleFrame gets candle data for limit by descending
// After get data, return CandleFrame stored in data
func GetCandleFrame(symbol, timeframe string, limit int) *CandleFrame {
	var candles Candles
	DB.Where(&Candle{Symbol: symbol, Timeframe: timeframe}).
		Order("time desc").Limit(limit).Find(&candles)
	sort.Slice(candles, func(i, j int) bool { return candles[i].Time < candles[j].Time })

	cframe := CandleFrame{}
	cframe.Symbol = symbol
	cframe.Timeframe = timeframe
	cframe.Candles = candles

	return &cframe
}

// AllDeleteCandles deletes all data of "candles" table
func AllDeleteCandles() {
	DB.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Candle{})
}

// LastCandleTime returns a time of last candle for symbol and timeframe
func LastCandleTime(symbol, timeframe string) (int64, error) {
	var candle Candle
	if err := DB.Where(&Candle{Symbol: symbol, Timeframe: timeframe}).
		Order("time desc").First(&candle).Error; err != nil {
		return 0, err
	}
	return candle.Time, nil
}

// CandleFrame is a loaded candle window for one symbol and timeframe,
// also used as json for the web frontend
type CandleFrame struct {
	Symbol    string  `json:"symbol"`
	Timeframe string  `json:"timeframe"`
	Candles   Candles `json:"candles"`
}

// Series converts the frame to the simulator's bar series
func (cframe *CandleFrame) Series() *backtest.Series {
	series := backtest.NewSeries(cframe.Symbol, cframe.Timeframe)
	for _, c := range cframe.Candles {
		series.AddBar(backtest.Bar{
			Time:   c.Time,
			Open:   c.Open,
			High:   c.High,
			Low:    c.Low,
			Close:  c.Close,
			Volume: c.Volume,
		})
	}
	return series
}
