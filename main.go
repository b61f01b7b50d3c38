package main

import (
	"os"

	"github.com/oarkflow/errors"
	"github.com/sirupsen/logrus"

	"github.com/quantfoundry/pinetester/app/models"
	"github.com/quantfoundry/pinetester/backtest"
	"github.com/quantfoundry/pinetester/config"
	"github.com/quantfoundry/pinetester/log"
	"github.com/quantfoundry/pinetester/market"
	"github.com/quantfoundry/pinetester/pine"
	"github.com/quantfoundry/pinetester/report"
)

func main() {
	config.InitConfig()
	log.SetLogging()
	models.InitDB()

	src, err := os.ReadFile(config.Config.StrategyFile)
	if err != nil {
		logrus.Fatalf("strategy file read error: %v", err)
	}
	strategy, err := pine.Parse(string(src))
	if err != nil {
		logrus.Fatalf("strategy parse error: %v", err)
	}
	if err := pine.Validate(strategy); err != nil {
		logrus.Fatalf("strategy validation error: %v", err)
	}
	logrus.Infof("strategy loaded: %v", strategy.Title)

	series, err := loadSeries()
	if err != nil {
		logrus.Fatalf("series load error: %v", err)
	}

	cfg := runConfig()
	ledger, err := backtest.NewEngine(strategy, series, cfg).Run()
	if err != nil {
		logrus.Fatalf("backtest error: %v", err)
	}

	models.DeleteBacktestResult(series.Symbol)
	result := models.NewBacktestResult(strategy.Title, series.Timeframe, cfg, ledger)
	if err := result.CreateBacktestResult(); err != nil {
		logrus.Warnf("backtest result save error: %v", err)
	}

	if err := report.ExportCsv(config.Config.ReportFile, ledger); err != nil {
		logrus.Warnf("report export error: %v", err)
	}
}

// loadSeries prefers the configured csv file; otherwise it downloads fresh
// candles, stores them, and reads the run window back from the database.
func loadSeries() (*backtest.Series, error) {
	conf := config.Config
	if conf.CSVFile != "" {
		return market.LoadCSVSeries(conf.CSVFile, conf.Symbol, conf.Timeframe)
	}

	q, err := market.FetchCandles(conf.Symbol, conf.Timeframe, conf.DaysBack)
	if err != nil {
		return nil, err
	}
	if len(q.Date) == 0 {
		return nil, errors.New("no candles downloaded: " + conf.Symbol)
	}
	if err := models.NewCandlesFromQuote(q, conf.Symbol, conf.Timeframe).CreateCandles(); err != nil {
		return nil, err
	}

	cframe := models.GetCandleFrame(conf.Symbol, conf.Timeframe, len(q.Date))
	return cframe.Series(), nil
}

func runConfig() backtest.RunConfig {
	conf := config.Config
	cfg := backtest.RunConfig{
		InitialCash:    conf.Cash,
		CommissionRate: conf.Commission,
		SizeValue:      conf.SizeValue,
	}
	if conf.FillRule == "next_open" {
		cfg.Fill = backtest.FillNextOpen
	}
	if conf.SizeRule == "notional" {
		cfg.Size = backtest.SizeFixedNotional
	}
	return cfg
}
