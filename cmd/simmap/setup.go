package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/JensKlimke/SimMap-sub000/pkg/config"
	"github.com/go-chi/httplog/v2"
	"github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"
)

func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(envFiles...); err != nil {
		return nil, err
	}
	return config.Load(configPath)
}

func newLogger(cfg *config.Config) *httplog.Logger {
	level, _ := cfg.LogLevel()
	return httplog.NewLogger("simmap", httplog.Options{
		Writer:           os.Stderr,
		LogLevel:         level,
		JSON:             cfg.Log.JSON,
		Concise:          cfg.Log.Concise,
		MessageFieldName: "message",
		LevelFieldName:   "severity",
		TimeFieldFormat:  time.RFC3339,
		Tags: map[string]string{
			"version": "v1.0",
		},
		QuietDownRoutes: []string{
			"/metrics",
			"/health",
		},
		QuietDownPeriod: 10 * time.Second,
	})
}

func newBar(max int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(max,
		progressbar.OptionSetWriter(ansi.NewAnsiStderr()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(15),
		progressbar.OptionSetDescription(description),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}

func finish(bar *progressbar.ProgressBar, logger *slog.Logger) {
	if err := bar.Finish(); err != nil {
		logger.Debug("progress bar", slog.Any("error", err))
	}
}
