package config

import (
	"github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"
)

// Config represents config info
var Config ConfList

// ConfList has contents of config.ini
type ConfList struct {
	DBdriver string
	DBname   string

	Symbol    string
	Timeframe string
	DaysBack  int
	CSVFile   string

	StrategyFile string

	Cash       float64
	Commission float64
	FillRule   string
	SizeRule   string
	SizeValue  float64

	ReportFile string
}

// InitConfig initializes config settings
func InitConfig() {
	conf, err := ini.Load("config.ini")
	if err != nil {
		logrus.Warnf("init file open error: %v", err)
	}

	Config = ConfList{
		DBdriver:     conf.Section("db").Key("driver").String(),
		DBname:       conf.Section("db").Key("name").String(),
		Symbol:       conf.Section("data").Key("symbol").String(),
		Timeframe:    conf.Section("data").Key("timeframe").MustString("1d"),
		DaysBack:     conf.Section("data").Key("days_back").MustInt(365),
		CSVFile:      conf.Section("data").Key("csv").String(),
		StrategyFile: conf.Section("strategy").Key("file").String(),
		Cash:         conf.Section("backtest").Key("cash").MustFloat64(10000),
		Commission:   conf.Section("backtest").Key("commission").MustFloat64(0.001),
		FillRule:     conf.Section("backtest").Key("fill_rule").MustString("close"),
		SizeRule:     conf.Section("backtest").Key("size_rule").MustString("notional"),
		SizeValue:    conf.Section("backtest").Key("size_value").MustFloat64(10000),
		ReportFile:   conf.Section("backtest").Key("report").MustString("report.csv"),
	}
}
