// sensor-tui shows the rolling sensor readings and their trend in the terminal.
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"sensor-dashboard/config"
	"sensor-dashboard/services"
	"sensor-dashboard/tui"
	"sensor-dashboard/utils"
)

func main() {
	if len(os.Args) >= 2 && (os.Args[1] == "-h" || os.Args[1] == "--help") {
		printUsage()
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// the alt screen owns stdout; logs go to a file or nowhere
	if path := os.Getenv("TUI_LOG_FILE"); path != "" {
		f, err := tea.LogToFile(path, "sensor-tui")
		if err != nil {
			log.Fatalf("log file: %v", err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}
	utils.SetLevel(cfg.LogLevel)

	buffer, err := services.NewRollingBuffer(cfg.BufferCapacity)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid BUFFER_CAPACITY: %v\n", err)
		os.Exit(1)
	}

	generator, fields, err := services.NewSourceGenerator(cfg.Source, cfg.SourceURL, cfg.Fields, cfg.RandSeed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reading source %s: %v\n", cfg.Source, err)
		os.Exit(1)
	}

	sampler, err := services.NewSampler(services.SamplerConfig{
		Buffer:     buffer,
		Generator:  generator,
		Interval:   cfg.Interval,
		TrendField: cfg.TrendField,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	p := tea.NewProgram(tui.NewApp(buffer, sampler, fields), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error running program: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s\n\n", os.Args[0])
	fmt.Fprintln(os.Stderr, "Terminal dashboard for synthetic sensor readings.")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Environment variables:")
	fmt.Fprintln(os.Stderr, "  BUFFER_CAPACITY       readings kept (default 5)")
	fmt.Fprintln(os.Stderr, "  UPDATE_INTERVAL_SECS  seconds between readings (default 3)")
	fmt.Fprintln(os.Stderr, "  SENSOR_FIELDS         name:low:high[:unit],... ")
	fmt.Fprintln(os.Stderr, "  SOURCE                random, host or http")
	fmt.Fprintln(os.Stderr, "  TUI_LOG_FILE          write logs here instead of discarding them")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Keybindings:")
	fmt.Fprintln(os.Stderr, "  s / space    Sample now")
	fmt.Fprintln(os.Stderr, "  t            Toggle trend")
	fmt.Fprintln(os.Stderr, "  ?            Help")
	fmt.Fprintln(os.Stderr, "  q            Quit")
}
