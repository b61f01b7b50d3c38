package backtest

import (
	"fmt"

	bt "github.com/google/btree"
)

// Bar is one immutable OHLCV observation. Time is unix milliseconds, the
// same representation the candle storage uses.
type Bar struct {
	Time   int64
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Series is the ordered bar history for one symbol and timeframe.
// The invariant is strictly increasing timestamps with no duplicates;
// Validate enforces it before a run starts.
type Series struct {
	Symbol    string
	Timeframe string
	Bars      []Bar
}

// NewSeries returns an empty series for a symbol/timeframe pair.
func NewSeries(symbol, timeframe string) *Series {
	return &Series{Symbol: symbol, Timeframe: timeframe}
}

// AddBar appends a bar to the series. Ordering is checked by Validate, not
// here, so callers can bulk-load and validate once.
func (s *Series) AddBar(b Bar) {
	s.Bars = append(s.Bars, b)
}

// Len returns the number of bars.
func (s *Series) Len() int { return len(s.Bars) }

// Bar returns the bar at index i.
func (s *Series) Bar(i int) Bar { return s.Bars[i] }

// LastBar returns the final bar; the series must not be empty.
func (s *Series) LastBar() Bar { return s.Bars[len(s.Bars)-1] }

// NonMonotonicSeriesError reports a timestamp ordering violation. A series
// carrying one aborts the run before any trade is simulated.
type NonMonotonicSeriesError struct {
	Index int
	Prev  int64
	Curr  int64
}

func (e *NonMonotonicSeriesError) Error() string {
	return fmt.Sprintf("series timestamps not strictly increasing at index %d: %d -> %d",
		e.Index, e.Prev, e.Curr)
}

type timeKey int64

func (a timeKey) Less(other bt.Item) bool { return a < other.(timeKey) }

// Validate checks the series invariant: strictly increasing, duplicate-free
// timestamps. Duplicates are detected with a btree insert-or-replace probe.
func (s *Series) Validate() error {
	seen := bt.New(32)
	for i, bar := range s.Bars {
		if i > 0 && bar.Time <= s.Bars[i-1].Time {
			return &NonMonotonicSeriesError{Index: i, Prev: s.Bars[i-1].Time, Curr: bar.Time}
		}
		if seen.ReplaceOrInsert(timeKey(bar.Time)) != nil {
			return &NonMonotonicSeriesError{Index: i, Prev: bar.Time, Curr: bar.Time}
		}
	}
	return nil
}

// Closes returns the close prices of all bars.
func (s *Series) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, bar := range s.Bars {
		closes[i] = bar.Close
	}
	return closes
}

// Highs returns the high prices of all bars.
func (s *Series) Highs() []float64 {
	highs := make([]float64, len(s.Bars))
	for i, bar := range s.Bars {
		highs[i] = bar.High
	}
	return highs
}

// Lows returns the low prices of all bars.
func (s *Series) Lows() []float64 {
	lows := make([]float64, len(s.Bars))
	for i, bar := range s.Bars {
		lows[i] = bar.Low
	}
	return lows
}
