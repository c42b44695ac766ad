package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/lumen2d/lumen/config"
	"github.com/lumen2d/lumen/game"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = embedded defaults)")
	scriptsDir := flag.String("scripts", "", "Script directory (overrides config)")
	headless := flag.Bool("headless", false, "Run without graphics or audio")
	maxTicks := flag.Uint64("max-ticks", 0, "Headless: stop after N ticks (0 = unlimited)")
	logStats := flag.Bool("log-stats", false, "Enable telemetry capture and CSV export")
	outputDir := flag.String("output-dir", "", "Telemetry output directory (overrides config)")
	seed := flag.Int64("seed", 0, "RNG seed (overrides config; 0 = time-based)")
	devLog := flag.Bool("dev-log", false, "Console logger with colored levels")
	flag.Parse()

	cfgErr := config.Init(*configPath)
	if cfgErr != nil {
		// Embedded defaults always parse.
		config.MustInit("")
	}
	cfg := config.Cfg()
	if *scriptsDir != "" {
		cfg.Scripts.Dir = *scriptsDir
	}
	if *seed != 0 {
		cfg.Game.Seed = *seed
	}
	if *logStats {
		cfg.Telemetry.Enabled = true
	}
	if *devLog {
		cfg.Logging.Dev = true
		cfg.Logging.Level = "debug"
	}

	log, err := game.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if cfgErr != nil {
		log.Warn("config load failed, running on defaults",
			zap.String("path", *configPath),
			zap.Error(cfgErr),
		)
	}

	g, err := game.NewGame(cfg, log, game.Options{
		Headless:  *headless,
		OutputDir: *outputDir,
	})
	if err != nil {
		log.Fatal("engine init failed", zap.Error(err))
	}

	if *headless {
		log.Info("starting headless run",
			zap.Uint64("max_ticks", *maxTicks),
			zap.String("scripts", cfg.Scripts.Dir),
		)
		g.RunHeadless(*maxTicks)
		return
	}
	g.Run()
}
