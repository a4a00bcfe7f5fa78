// Package main is the entry point for the treedoc demo editor.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dshills/treedoc/internal/config"
	"github.com/dshills/treedoc/internal/event"
	"github.com/dshills/treedoc/internal/logger"
	"github.com/dshills/treedoc/internal/model"
	"github.com/dshills/treedoc/internal/model/history"
	"github.com/dshills/treedoc/internal/undo"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", config.DefaultPath(), "path to config file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("treedoc %s (%s)\n", version, commit)
		return 0
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: loading config: %v\n", err)
		return 1
	}

	var logOut io.Writer
	if cfg.Logging.File != "" {
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: opening log file: %v\n", err)
			return 1
		}
		defer f.Close()
		logOut = f
	}
	logger.Init(logger.ParseLevel(cfg.Logging.Level), logOut)
	log := logger.Get()

	bus := event.NewBus()
	hist := history.NewLog()
	doc := model.NewDocument(bus, hist)
	if cfg.Editor.RootName != model.RootMain {
		if _, err := doc.CreateRoot(cfg.Editor.RootName); err != nil {
			fmt.Fprintf(os.Stderr, "Error: creating root %q: %v\n", cfg.Editor.RootName, err)
			return 1
		}
	}

	ctrl, err := undo.NewController(doc, hist, bus, undo.Options{
		RestoreSelection: cfg.Undo.RestoreSelection,
		Logger:           log,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: starting undo controller: %v\n", err)
		return 1
	}
	defer ctrl.Close()

	if watcher, err := config.NewWatcher(*configPath, bus, log); err == nil {
		defer watcher.Close()
	} else {
		log.Warn("config watch unavailable", "error", err)
	}

	ed, err := newEditor(doc, ctrl, bus, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: starting editor: %v\n", err)
		return 1
	}
	if err := ed.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
