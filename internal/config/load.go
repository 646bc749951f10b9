package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g.
// CALCULATOR_LOG_LEVEL. Calculator keys drop their section name:
// calculator.auto_save is read from CALCULATOR_AUTO_SAVE.
const EnvPrefix = "CALCULATOR"

// ConfigFileEnv names the variable holding an optional config file path.
const ConfigFileEnv = "CALCULATOR_CONFIG_FILE"

// Load reads configuration from defaults, the file named by
// CALCULATOR_CONFIG_FILE (if set) and the environment. Environment variables
// take precedence over the file.
func Load() (*Config, error) {
	return LoadFile(os.Getenv(ConfigFileEnv))
}

// LoadFile is Load with an explicit config file path. An empty path skips
// the file.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range calculatorKeys {
		env := EnvPrefix + "_" + strings.ToUpper(key)
		if err := v.BindEnv("calculator."+key, env); err != nil {
			return nil, fmt.Errorf("bind environment variable %s: %w", env, err)
		}
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		decimalHook(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct constraints and the decimal input bound.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if !cfg.Calculator.MaxInputValue.IsPositive() {
		return errors.New("validation failed: calculator.max_input_value must be positive")
	}
	return nil
}

var calculatorKeys = []string{
	"base_dir",
	"history_dir",
	"history_file",
	"max_history_size",
	"auto_save",
	"precision",
	"max_input_value",
}

func setDefaults(v *viper.Viper) {
	def := Default()

	v.SetDefault("calculator.base_dir", def.Calculator.BaseDir)
	v.SetDefault("calculator.history_dir", def.Calculator.HistoryDir)
	v.SetDefault("calculator.history_file", def.Calculator.HistoryFileName)
	v.SetDefault("calculator.max_history_size", def.Calculator.MaxHistorySize)
	v.SetDefault("calculator.auto_save", def.Calculator.AutoSave)
	v.SetDefault("calculator.precision", def.Calculator.Precision)
	v.SetDefault("calculator.max_input_value", DefaultMaxInputValue)

	v.SetDefault("server.addr", def.Server.Addr)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)
	v.SetDefault("otel.enabled", def.OTel.Enabled)
	v.SetDefault("otel.service_name", def.OTel.ServiceName)
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

// decimalHook decodes strings and numbers into decimal.Decimal.
func decimalHook() mapstructure.DecodeHookFuncType {
	return func(_ reflect.Type, to reflect.Type, data any) (any, error) {
		if to != decimalType {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return decimal.NewFromString(strings.TrimSpace(v))
		case int:
			return decimal.NewFromInt(int64(v)), nil
		case int64:
			return decimal.NewFromInt(v), nil
		case float64:
			return decimal.NewFromFloat(v), nil
		case decimal.Decimal:
			return v, nil
		default:
			return data, nil
		}
	}
}
