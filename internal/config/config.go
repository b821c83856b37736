// Package config loads the reader's TOML configuration file. Fields omitted
// from the file retain their default values, so partial configs are safe.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"

	"github.com/banshee-data/lsm6200/internal/classify"
	"github.com/banshee-data/lsm6200/internal/serialmux"
)

// SerialConfig is the [serial] section: connection parameters for the gauge
// port. Timeout is in seconds and bounds each blocking read.
type SerialConfig struct {
	Port           string  `toml:"port"`
	BaudRate       int     `toml:"baudrate"`
	DataBits       int     `toml:"databits"`
	Parity         string  `toml:"parity"`
	StopBits       int     `toml:"stopbits"`
	TimeoutSeconds float64 `toml:"timeout"`
}

// PortOptions converts the section into serial port options.
func (c SerialConfig) PortOptions() serialmux.PortOptions {
	return serialmux.PortOptions{
		BaudRate:    c.BaudRate,
		DataBits:    c.DataBits,
		StopBits:    c.StopBits,
		Parity:      c.Parity,
		ReadTimeout: time.Duration(c.TimeoutSeconds * float64(time.Second)),
	}
}

// ProtocolConfig is the [protocol] section: frame shape defaults used by
// the parser when a line lacks explicit information.
type ProtocolConfig struct {
	LineEnding   string `toml:"line_ending"`
	ExpectedUnit string `toml:"expected_unit"`
}

// ClassificationConfig is the [classification] section. Low, High and
// Standard are written as strings in the file ("0.110") so they reach the
// decimal pipeline without passing through a binary float.
type ClassificationConfig struct {
	Mode     string          `toml:"mode"`
	Operator string          `toml:"operator"`
	Low      decimal.Decimal `toml:"low"`
	High     decimal.Decimal `toml:"high"`
	Units    string          `toml:"units"`
	Standard decimal.Decimal `toml:"standard"`
}

// Rule converts the section into a threshold rule.
func (c ClassificationConfig) Rule() classify.Rule {
	return classify.Rule{
		Mode:     classify.Mode(c.Mode),
		Operator: classify.Operator(c.Operator),
		Low:      c.Low,
		High:     c.High,
	}
}

// LoggingConfig is the [logging] section.
type LoggingConfig struct {
	CSVPath  string `toml:"csv_path"`
	Append   bool   `toml:"append"`
	Timezone string `toml:"timezone"` // local | utc
}

// AppConfig is the root configuration.
type AppConfig struct {
	Serial         SerialConfig         `toml:"serial"`
	Protocol       ProtocolConfig       `toml:"protocol"`
	Classification ClassificationConfig `toml:"classification"`
	Logging        LoggingConfig        `toml:"logging"`
}

// Default returns the configuration used when no file is present.
func Default() AppConfig {
	return AppConfig{
		Serial: SerialConfig{
			BaudRate:       9600,
			DataBits:       8,
			Parity:         "N",
			StopBits:       1,
			TimeoutSeconds: 1.0,
		},
		Protocol: ProtocolConfig{
			LineEnding:   serialmux.DefaultTerminator,
			ExpectedUnit: "mm",
		},
		Classification: ClassificationConfig{
			Mode:     string(classify.ModeThreshold),
			Operator: string(classify.OpBetween),
			Low:      decimal.Zero,
			High:     decimal.New(10, 0),
			Units:    "mm",
			Standard: decimal.New(110, -3),
		},
		Logging: LoggingConfig{
			CSVPath:  "logs/readings.csv",
			Append:   true,
			Timezone: "local",
		},
	}
}

// Load reads the configuration at path, layered over the defaults. An empty
// path or a missing file yields the defaults; a malformed file is an error.
func Load(path string) (AppConfig, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the fields the core cannot sensibly default. Unknown
// classification modes and operators deliberately pass: the classifier
// downgrades them to UNKNOWN verdicts at runtime instead of refusing to
// start.
func (c *AppConfig) Validate() error {
	if _, err := c.Serial.PortOptions().Normalize(); err != nil {
		return err
	}
	if c.Serial.TimeoutSeconds <= 0 {
		return fmt.Errorf("serial timeout must be positive, got %v", c.Serial.TimeoutSeconds)
	}
	switch c.Logging.Timezone {
	case "local", "utc":
	default:
		return fmt.Errorf("logging timezone must be %q or %q, got %q", "local", "utc", c.Logging.Timezone)
	}
	if c.Logging.CSVPath == "" {
		return fmt.Errorf("logging csv_path must not be empty")
	}
	return nil
}
