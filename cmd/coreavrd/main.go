// cmd/coreavrd is the command-line interface to the simulator: it builds a core for the requested
// device variant, loads flash/EEPROM images, and optionally serves GDB RSP over TCP (spec.md §6).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/coreavr/coreavr/internal/cli"
	"github.com/coreavr/coreavr/internal/core"
	"github.com/coreavr/coreavr/internal/encoding"
	"github.com/coreavr/coreavr/internal/log"
	"github.com/coreavr/coreavr/internal/rsp"
)

const dumpFile = "core_avr_dump.core"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if cfg.ListDevices {
		for _, name := range core.Names() {
			fmt.Println(core.Variants[name].String())
		}

		return 0
	}

	logger := cli.InitLogger()

	if cfg.TraceRSP {
		log.LogLevel.Set(log.Debug)
	}

	c := core.New(core.Variants[cfg.Device])

	if cfg.FlashImage != "" {
		if err := loadFlash(c, cfg.FlashImage); err != nil {
			logger.Error("failed to load flash image", "file", cfg.FlashImage, "err", err)
			return 1
		}
	}

	if cfg.EEPROMImage != "" {
		if err := loadEEPROM(c, cfg.EEPROMImage); err != nil {
			logger.Error("failed to load EEPROM image", "file", cfg.EEPROMImage, "err", err)
			return 1
		}
	}

	for _, addr := range cfg.Breakpoints {
		c.Breaks.Insert(core.Word(addr / 2))
	}

	if cfg.ClockHz != 0 {
		logger.Info("clock", "hz", cfg.ClockHz)
	}

	if cfg.DumpOnExit {
		defer func() {
			if err := dumpCore(c); err != nil {
				logger.Error("failed to write core dump", "file", dumpFile, "err", err)
			}
		}()
	}

	if !cfg.ServeRSP {
		logger.Info("device ready, no RSP server requested", "device", cfg.Device)
		return 0
	}

	ctx, cancel := rsp.NotifyShutdown(context.Background())
	defer cancel()

	addr := fmt.Sprintf(":%d", cfg.Port)

	server := rsp.NewServer(c, addr)
	server.Trace = cfg.TraceRSP

	if err := server.ListenAndServe(ctx); err != nil {
		logger.Error("server stopped", "err", err)
		return 1
	}

	return 0
}

func loadFlash(c *core.Core, file string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}

	words, err := encoding.FlashWords(data)
	if err != nil {
		return err
	}

	for i, w := range words {
		if err := c.Flash.WriteWord(core.Word(i), core.Word(w)); err != nil {
			return err
		}
	}

	return nil
}

func loadEEPROM(c *core.Core, file string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}

	bytes, err := encoding.EEPROMBytes(data)
	if err != nil {
		return err
	}

	_, err = c.EEPROM.LoadRaw(bytes)

	return err
}

func dumpCore(c *core.Core) error {
	out, err := os.Create(dumpFile)
	if err != nil {
		return err
	}
	defer out.Close()

	return c.Dump(out)
}
