// Command lsmreader reads measurements from an LSM-6200 laser scan
// micrometer over RS-232, classifies each reading, and appends it to a CSV
// session log. With -simulate it runs the same pipeline against generated
// demo readings instead of hardware.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/banshee-data/lsm6200/internal/config"
	"github.com/banshee-data/lsm6200/internal/monitoring"
	"github.com/banshee-data/lsm6200/internal/protocol"
	"github.com/banshee-data/lsm6200/internal/readlog"
	"github.com/banshee-data/lsm6200/internal/serialmux"
	"github.com/banshee-data/lsm6200/internal/session"
	"github.com/banshee-data/lsm6200/internal/simulate"
)

var (
	configPath = flag.String("config", "", "Path to config.toml")
	listPorts  = flag.Bool("list-ports", false, "List available serial ports and exit")

	// serial overrides
	portFlag = flag.String("port", "", "Serial port device path (e.g. /dev/ttyUSB0)")
	baud     = flag.Int("baud", 0, "Baud rate (e.g. 9600)")
	dataBits = flag.Int("databits", 0, "Data bits (5-8)")
	parity   = flag.String("parity", "", "Parity (N, E, or O)")
	stopBits = flag.Int("stopbits", 0, "Stop bits (1 or 2)")
	timeout  = flag.Float64("timeout", 0, "Read timeout in seconds")

	// logging overrides
	csvPath  = flag.String("csv", "", "CSV log path")
	noAppend = flag.Bool("no-append", false, "Overwrite the CSV instead of appending")
	utc      = flag.Bool("utc", false, "Use UTC timestamps in the CSV")

	// classification overrides
	modeFlag = flag.String("mode", "", "Classification mode: band, threshold, or none")
	standard = flag.String("standard", "", "Standard size for band mode (e.g. 0.110)")

	// simulation
	simulateFlag = flag.Bool("simulate", false, "Generate demo readings instead of opening a serial port")
	interval     = flag.Duration("interval", time.Second, "Simulated reading interval")
	spread       = flag.String("spread", "0.012", "Simulated spread around the standard")
	tail         = flag.Bool("tail", false, "Echo raw frames as they arrive")
)

func main() {
	flag.Parse()
	log := monitoring.Log

	if *listPorts {
		ports, err := serialmux.ListPorts()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to enumerate serial ports")
		}
		if len(ports) == 0 {
			fmt.Println("No serial ports found. Plug in your USB-RS232 adapter and try again.")
			return
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	flagsSet := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { flagsSet[f.Name] = true })
	applyOverrides(&cfg, flagsSet)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	mode := session.Mode(cfg.Classification.Mode)
	std := cfg.Classification.Standard

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var port serialmux.Porter
	if *simulateFlag {
		spr, err := decimal.NewFromString(*spread)
		if err != nil {
			log.Fatal().Err(err).Str("spread", *spread).Msg("invalid spread")
		}
		pipe, feed := serialmux.NewPipePort()
		sim := simulate.New(std, spr, cfg.Classification.Units)
		go sim.Feed(ctx, feed, cfg.Protocol.LineEnding, *interval, nil)
		port = pipe
		log.Info().Str("standard", std.StringFixed(3)).Str("spread", spr.String()).Msg("simulating readings")
	} else {
		if cfg.Serial.Port == "" {
			log.Fatal().Msg("no serial port specified; use -port or set serial.port in config.toml (try -list-ports)")
		}
		port, err = serialmux.Open(cfg.Serial.Port, cfg.Serial.PortOptions())
		if err != nil {
			log.Fatal().Err(err).Str("port", cfg.Serial.Port).Msg("failed to open serial port")
		}
		log.Info().
			Str("port", cfg.Serial.Port).
			Int("baud", cfg.Serial.BaudRate).
			Msgf("reading %d%s%d frames", cfg.Serial.DataBits, cfg.Serial.Parity, cfg.Serial.StopBits)
	}

	logPath := cfg.Logging.CSVPath
	if mode == session.ModeBand {
		// band sessions get their own file named after the standard size
		// and the start time
		logPath = filepath.Join(filepath.Dir(logPath),
			readlog.SessionFilename(std, cfg.Classification.Units, time.Now()))
	}
	log.Info().Str("csv", logPath).Bool("append", cfg.Logging.Append).Msg("logging readings")

	s, err := session.New(session.Options{
		Port:       port,
		Terminator: cfg.Protocol.LineEnding,
		Parser:     &protocol.Parser{ExpectedUnit: cfg.Protocol.ExpectedUnit},
		Mode:       mode,
		Rule:       cfg.Classification.Rule(),
		Standard:   std,
		Log: readlog.Options{
			Path:   logPath,
			Append: cfg.Logging.Append,
			UTC:    cfg.Logging.Timezone == "utc",
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start session")
	}

	if *tail {
		id, frames := s.Mux().Subscribe()
		defer s.Mux().Unsubscribe(id)
		go func() {
			for frame := range frames {
				log.Debug().Str("frame", frame).Msg("raw")
			}
		}()
	}

	err = s.Run(ctx)
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		log.Info().Msg("stopped")
	default:
		log.Fatal().Err(err).Msg("session failed")
	}
}

// applyOverrides merges the command line flags that were explicitly set
// onto the loaded configuration.
func applyOverrides(cfg *config.AppConfig, set map[string]bool) {
	if set["port"] {
		cfg.Serial.Port = *portFlag
	}
	if set["baud"] {
		cfg.Serial.BaudRate = *baud
	}
	if set["databits"] {
		cfg.Serial.DataBits = *dataBits
	}
	if set["parity"] {
		cfg.Serial.Parity = *parity
	}
	if set["stopbits"] {
		cfg.Serial.StopBits = *stopBits
	}
	if set["timeout"] {
		cfg.Serial.TimeoutSeconds = *timeout
	}
	if set["csv"] {
		cfg.Logging.CSVPath = *csvPath
	}
	if set["no-append"] {
		cfg.Logging.Append = !*noAppend
	}
	if set["utc"] && *utc {
		cfg.Logging.Timezone = "utc"
	}
	if set["mode"] {
		cfg.Classification.Mode = *modeFlag
	}
	if set["standard"] {
		if std, err := decimal.NewFromString(*standard); err == nil {
			cfg.Classification.Standard = std
		}
	}
}
