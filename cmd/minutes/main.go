package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/cli"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/config"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/ui"
)

const defaultConfigPath = "config.yaml"

func main() {
	if err := run(); err != nil {
		ui.NewFormatter(os.Stderr).Error(err.Error())
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
		// the default file is optional
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			path = ""
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	return cli.NewRootCmd(&cli.Dependencies{Config: cfg}).Execute()
}
