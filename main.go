package main

import (
	"context"
	"fmt"
	"os"

	"modelbench/internal/config"
	"modelbench/internal/container"
	"modelbench/ui"
)

// defaultLogFile keeps log lines off the screen the UI draws on
const defaultLogFile = "modelbench.log"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Logging.File == "" {
		cfg.Logging.File = defaultLogFile
	}

	c, err := container.New(cfg)
	if err != nil {
		return err
	}
	defer c.Shutdown(context.Background())

	page := ui.NewPage()
	if err := c.Init(page); err != nil {
		return err
	}

	c.Logger.Info("starting terminal ui against %s", cfg.Client.ServerURL)
	return ui.Run(ui.Config{AltScreen: true}, page, c.Controller, c.Logger)
}
