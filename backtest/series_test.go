package backtest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfoundry/pinetester/backtest"
)

func closeSeries(closes ...float64) *backtest.Series {
	series := backtest.NewSeries("TEST", "1d")
	for i, c := range closes {
		series.AddBar(backtest.Bar{
			Time:   int64(i+1) * 86400000,
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 1000,
		})
	}
	return series
}

func TestSeriesValidate(t *testing.T) {
	assert.NoError(t, closeSeries(100, 105, 95, 110).Validate())
	assert.NoError(t, backtest.NewSeries("EMPTY", "1d").Validate())
}

func TestSeriesValidateRejectsDecreasingTime(t *testing.T) {
	series := backtest.NewSeries("TEST", "1d")
	series.AddBar(backtest.Bar{Time: 2000, Close: 100})
	series.AddBar(backtest.Bar{Time: 1000, Close: 101})

	err := series.Validate()
	require.Error(t, err)
	var nonMono *backtest.NonMonotonicSeriesError
	require.ErrorAs(t, err, &nonMono)
	assert.Equal(t, 1, nonMono.Index)
}

func TestSeriesValidateRejectsDuplicateTime(t *testing.T) {
	series := backtest.NewSeries("TEST", "1d")
	series.AddBar(backtest.Bar{Time: 1000, Close: 100})
	series.AddBar(backtest.Bar{Time: 1000, Close: 101})

	var nonMono *backtest.NonMonotonicSeriesError
	assert.ErrorAs(t, series.Validate(), &nonMono)
}

func TestSeriesAccessors(t *testing.T) {
	series := closeSeries(100, 105, 95)

	assert.Equal(t, 3, series.Len())
	assert.Equal(t, 105.0, series.Bar(1).Close)
	assert.Equal(t, 95.0, series.LastBar().Close)
	assert.Equal(t, []float64{100, 105, 95}, series.Closes())
}
