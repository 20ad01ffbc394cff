// Package log wraps zerolog with the process-wide logger used by section-cms.
package log

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config captures options for configuring the global logger.
type Config struct {
	Level   string    // "debug", "info", ... falls back to LOG_LEVEL, then info
	Output  io.Writer // defaults to os.Stdout
	Service string
}

var (
	mu         sync.RWMutex
	base       zerolog.Logger
	configured bool
)

// Configure (re)initialises the global logger. Loggers obtained earlier keep
// their old settings; WithComponent picks up the new ones.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	base = build(cfg)
	configured = true
}

func build(cfg Config) zerolog.Logger {
	level := zerolog.InfoLevel
	raw := cfg.Level
	if raw == "" {
		raw = os.Getenv("LOG_LEVEL")
	}
	if raw != "" {
		if parsed, err := zerolog.ParseLevel(raw); err == nil {
			level = parsed
		}
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	writer := cfg.Output
	if writer == nil {
		writer = os.Stdout
	}
	service := cfg.Service
	if service == "" {
		service = "section-cms"
	}
	return zerolog.New(writer).With().
		Timestamp().
		Str("service", service).
		Logger()
}

// Base returns the configured base logger, configuring defaults on first use.
func Base() zerolog.Logger {
	mu.RLock()
	if configured {
		l := base
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if !configured {
		base = build(Config{})
		configured = true
	}
	return base
}

// WithComponent returns a child logger annotated with the given component name.
func WithComponent(component string) zerolog.Logger {
	return Base().With().Str("component", component).Logger()
}

// SetOutput swaps the writer of the base logger. Used by the CLI to keep
// stdout clean for JSON output.
func SetOutput(w io.Writer) {
	Base()
	mu.Lock()
	base = base.Output(w)
	mu.Unlock()
}
