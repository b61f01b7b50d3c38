package models_test

import (
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/quantfoundry/pinetester/app/models"
	"github.com/quantfoundry/pinetester/backtest"
	"github.com/quantfoundry/pinetester/pine"
)

const testStrategy = `
strategy("Momentum")

if close > close[1] {
    enterlong("up bar")
} else {
    exitlong("down bar")
}
`

type ModelsTestSuite struct {
	suite.Suite
	Series *backtest.Series
	Ledger *backtest.Ledger
	Cfg    backtest.RunConfig
}

func (suite *ModelsTestSuite) SetupSuite() {
	logrus.SetLevel(logrus.ErrorLevel)
	models.DB, _ = gorm.Open(sqlite.Open("models_test.sqlite3"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})

	models.DB.AutoMigrate(
		&models.Candle{},
		&models.BacktestResult{},
		&models.TradeRecord{},
	)

	suite.Series = backtest.NewSeries("TESTUSD", "1d")
	closes := []float64{100, 105, 95, 110, 90, 115}
	for i, c := range closes {
		suite.Series.AddBar(backtest.Bar{
			Time: int64(i+1) * 86400000,
			Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 1000,
		})
	}

	strat, err := pine.Parse(testStrategy)
	suite.Require().NoError(err)
	suite.Cfg = backtest.RunConfig{
		InitialCash: 10000,
		Size:        backtest.SizeFixedUnits,
		SizeValue:   1,
	}
	suite.Ledger, err = backtest.NewEngine(strat, suite.Series, suite.Cfg).Run()
	suite.Require().NoError(err)
}

func (suite *ModelsTestSuite) SetupTest() {
	suite.Require().NoError(models.NewCandlesFromSeries(suite.Series).CreateCandles())
}

func (suite *ModelsTestSuite) TearDownTest() {
	models.AllDeleteCandles()
	models.DeleteBacktestResult(suite.Series.Symbol)
}

func (suite *ModelsTestSuite) TearDownSuite() {
	os.Remove("models_test.sqlite3")
}

func TestModels(t *testing.T) {
	suite.Run(t, new(ModelsTestSuite))
}

func (suite *ModelsTestSuite) TestCandleRoundTrip() {
	cframe := models.GetCandleFrame("TESTUSD", "1d", suite.Series.Len())

	suite.Equal("TESTUSD", cframe.Symbol)
	suite.Len(cframe.Candles, suite.Series.Len())

	loaded := cframe.Series()
	suite.NoError(loaded.Validate())
	suite.Equal(suite.Series.Closes(), loaded.Closes())
	suite.Equal(suite.Series.Bar(0).Time, loaded.Bar(0).Time)
}

func (suite *ModelsTestSuite) TestCandleFrameLimit() {
	cframe := models.GetCandleFrame("TESTUSD", "1d", 3)

	suite.Len(cframe.Candles, 3)
	// the limit keeps the newest bars, reordered oldest first
	suite.Equal(suite.Series.Bar(3).Close, cframe.Candles[0].Close)
	suite.Equal(suite.Series.LastBar().Close, cframe.Candles[2].Close)
}

func (suite *ModelsTestSuite) TestCreateEmptyCandlesFails() {
	// an empty download must surface as an error, not vanish silently
	suite.Error((&models.Candles{}).CreateCandles())
}

func (suite *ModelsTestSuite) TestLastCandleTime() {
	last, err := models.LastCandleTime("TESTUSD", "1d")

	suite.NoError(err)
	suite.Equal(suite.Series.LastBar().Time, last)
}

func (suite *ModelsTestSuite) TestBacktestResultRoundTrip() {
	result := models.NewBacktestResult("Momentum", "1d", suite.Cfg, suite.Ledger)
	suite.NoError(result.CreateBacktestResult())

	frame := models.GetBacktestResultFrame("TESTUSD")
	suite.Require().NotNil(frame.Result)
	suite.Equal("Momentum", frame.Result.Strategy)
	suite.Equal(len(suite.Ledger.Trades), frame.Result.TotalTrades)
	suite.Len(frame.Result.Trades, len(suite.Ledger.Trades))
	suite.Equal(suite.Ledger.Summarize().RealizedProfit, frame.Result.RealizedProfit)
}

func (suite *ModelsTestSuite) TestBacktestResultNotFound() {
	frame := models.GetBacktestResultFrame("UNKNOWN")
	suite.Nil(frame.Result)
}
