package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}

	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if cfg.Serial.BaudRate != 9600 {
		t.Errorf("BaudRate = %d", cfg.Serial.BaudRate)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
[serial]
port = "/dev/ttyUSB0"
baudrate = 19200

[classification]
standard = "0.120"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Serial.Port != "/dev/ttyUSB0" || cfg.Serial.BaudRate != 19200 {
		t.Errorf("serial = %+v", cfg.Serial)
	}
	// untouched fields keep their defaults
	if cfg.Serial.DataBits != 8 || cfg.Serial.Parity != "N" {
		t.Errorf("serial defaults lost: %+v", cfg.Serial)
	}
	if !cfg.Classification.Standard.Equal(decimal.RequireFromString("0.120")) {
		t.Errorf("Standard = %s", cfg.Classification.Standard)
	}
	if cfg.Classification.Mode != "threshold" || cfg.Classification.Operator != "between" {
		t.Errorf("classification defaults lost: %+v", cfg.Classification)
	}
	if !cfg.Logging.Append {
		t.Error("Append default lost")
	}
}

func TestLoad_DecimalBoundsFromStrings(t *testing.T) {
	path := writeConfig(t, `
[classification]
mode = "threshold"
operator = "between"
low = "0.10"
high = "0.12"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	rule := cfg.Classification.Rule()
	if !rule.Low.Equal(decimal.RequireFromString("0.10")) {
		t.Errorf("Low = %s", rule.Low)
	}
	if !rule.High.Equal(decimal.RequireFromString("0.12")) {
		t.Errorf("High = %s", rule.High)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	path := writeConfig(t, "[serial\nport=")
	if _, err := Load(path); err == nil {
		t.Error("Load() expected parse error")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate(default) = %v", err)
	}

	bad := Default()
	bad.Logging.Timezone = "berlin"
	if err := bad.Validate(); err == nil {
		t.Error("expected timezone error")
	}

	bad = Default()
	bad.Serial.DataBits = 3
	if err := bad.Validate(); err == nil {
		t.Error("expected data bits error")
	}

	bad = Default()
	bad.Logging.CSVPath = ""
	if err := bad.Validate(); err == nil {
		t.Error("expected csv_path error")
	}

	// unknown mode passes validation; the classifier reports UNKNOWN instead
	odd := Default()
	odd.Classification.Mode = "window"
	if err := odd.Validate(); err != nil {
		t.Errorf("Validate(mode=window) = %v", err)
	}
}
