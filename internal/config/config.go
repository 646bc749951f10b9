// Package config loads calculator and service settings from defaults, an
// optional config file and CALCULATOR_-prefixed environment variables.
package config

import (
	"path/filepath"

	"github.com/shopspring/decimal"
)

// Config holds all application configuration.
type Config struct {
	Calculator Calculator `mapstructure:"calculator" validate:"required"`
	Server     Server     `mapstructure:"server" validate:"required"`
	Log        Log        `mapstructure:"log" validate:"required"`
	OTel       OTel       `mapstructure:"otel"`
}

// Calculator contains the settings read by the calculator core.
type Calculator struct {
	BaseDir         string          `mapstructure:"base_dir" validate:"required"`
	HistoryDir      string          `mapstructure:"history_dir"`
	HistoryFileName string          `mapstructure:"history_file" validate:"required"`
	MaxHistorySize  int             `mapstructure:"max_history_size" validate:"gt=0"`
	AutoSave        bool            `mapstructure:"auto_save"`
	Precision       int             `mapstructure:"precision" validate:"gte=0,lte=28"`
	MaxInputValue   decimal.Decimal `mapstructure:"max_input_value"`
}

// HistoryFile is the path the history is persisted to. A relative
// HistoryDir is resolved against BaseDir.
func (c Calculator) HistoryFile() string {
	dir := c.HistoryDir
	if dir == "" {
		dir = filepath.Join(c.BaseDir, "history")
	} else if !filepath.IsAbs(dir) {
		dir = filepath.Join(c.BaseDir, dir)
	}
	return filepath.Join(dir, c.HistoryFileName)
}

type Server struct {
	Addr string `mapstructure:"addr" validate:"required"`
}

type Log struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json console"`
}

// OTel toggles the OTLP trace, metric and log exporters.
type OTel struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
}

// DefaultMaxInputValue bounds operand magnitude when nothing else is set.
const DefaultMaxInputValue = "1e999"

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Calculator: Calculator{
			BaseDir:         ".",
			HistoryFileName: "calculator_history.json",
			MaxHistorySize:  1000,
			AutoSave:        true,
			Precision:       10,
			MaxInputValue:   decimal.RequireFromString(DefaultMaxInputValue),
		},
		Server: Server{Addr: ":8080"},
		Log:    Log{Level: "info", Format: "json"},
		OTel:   OTel{ServiceName: "decimal-calculator"},
	}
}
