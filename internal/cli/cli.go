// Package cli parses coreavrd's command line (spec.md §6).
package cli

// cli.go is adapted from the flag.FlagSet-based parsing and log-wiring style of ELSIE's
// cmd/internal/cli.Commander (NewFormattedLogger + slog.SetDefault), collapsed from a
// multi-subcommand dispatcher down to a single flat flag set: coreavrd names one mode of
// operation (spec.md §6's CLI table), not a family of subcommands the way ELSIE's `exec`/`demo`
// commands are, so the Command/Commander indirection is dropped in favor of a single Config.

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/coreavr/coreavr/internal/core"
	"github.com/coreavr/coreavr/internal/log"
)

// Config holds the parsed command line (spec.md §6).
type Config struct {
	Device       string
	ServeRSP     bool
	Port         int
	TraceRSP     bool
	EEPROMImage  string
	EEPROMFormat string
	FlashFormat  string
	ListDevices  bool
	Breakpoints  []uint32
	ClockHz      uint64
	DumpOnExit   bool

	FlashImage string
}

// ErrUsage is returned for a malformed command line (spec.md §6: exit code 1 on usage error).
var ErrUsage = fmt.Errorf("usage error")

// Parse parses args (excluding the program name) into a Config.
func Parse(args []string) (*Config, error) {
	fs := flag.NewFlagSet("coreavrd", flag.ContinueOnError)

	cfg := &Config{Port: 1212}

	var breakpoints multiFlag

	fs.StringVar(&cfg.Device, "d", core.DefaultVariant, "MCU variant")
	fs.BoolVar(&cfg.ServeRSP, "g", false, "enable the RSP server")
	fs.IntVar(&cfg.Port, "p", 1212, "TCP port for the RSP server")
	fs.BoolVar(&cfg.TraceRSP, "G", false, "dump RSP traffic")
	fs.StringVar(&cfg.EEPROMImage, "e", "", "EEPROM image file")
	fs.StringVar(&cfg.EEPROMFormat, "E", "raw", `EEPROM image format (only "raw" is supported)`)
	fs.StringVar(&cfg.FlashFormat, "F", "raw", `flash image format (only "raw" is supported)`)
	fs.BoolVar(&cfg.ListDevices, "L", false, "list supported devices and exit")
	fs.Var(&breakpoints, "B", "preset a breakpoint at byte address addr (repeatable)")
	fs.Uint64Var(&cfg.ClockHz, "c", 0, "cosmetic clock-frequency annotation, in Hz")
	fs.BoolVar(&cfg.DumpOnExit, "C", false, "write a memory snapshot to core_avr_dump.core on exit")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUsage, err)
	}

	cfg.Breakpoints = breakpoints.values

	if cfg.ListDevices {
		return cfg, nil
	}

	if fs.NArg() > 0 {
		cfg.FlashImage = fs.Arg(0)
	}

	if cfg.EEPROMFormat != "raw" || cfg.FlashFormat != "raw" {
		return nil, fmt.Errorf("%w: only raw binary images are supported", ErrUsage)
	}

	if _, ok := core.Variants[cfg.Device]; !ok {
		return nil, fmt.Errorf("%w: unknown device %q", ErrUsage, cfg.Device)
	}

	return cfg, nil
}

// InitLogger wires the default logger the way ELSIE's Commander.WithLogger does.
func InitLogger() *log.Logger {
	logger := log.NewFormattedLogger(os.Stderr)
	log.SetDefault(logger)

	return logger
}

// multiFlag collects repeated -B breakpoint flags, each a hex byte address.
type multiFlag struct {
	values []uint32
}

func (m *multiFlag) String() string {
	return fmt.Sprintf("%v", m.values)
}

func (m *multiFlag) Set(s string) error {
	var v uint32
	digits := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if _, err := fmt.Sscanf(digits, "%x", &v); err != nil {
		return fmt.Errorf("invalid breakpoint address %q: %w", s, err)
	}

	m.values = append(m.values, v)

	return nil
}
