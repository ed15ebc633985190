// Package moedconfig handles command-line flags and config file loading
// for the dispatch server process, returning a config.Config.
package moedconfig

import (
	"flag"
	"fmt"

	"github.com/Mentat-Vision/moe/config"
)

const (
	DefaultListenAddr  = ":8765"
	DefaultScaleFactor = 0.5
)

// Loader handles parsing of command-line flags and config file loading.
// It can be instantiated with a custom FlagSet for testing.
type Loader struct {
	fs          *flag.FlagSet
	configPath  *string
	listenAddr  *string
	scaleFactor *float64
}

// NewLoader creates a new Loader with flags registered on the provided FlagSet.
// If fs is nil, the default flag.CommandLine is used.
func NewLoader(fs *flag.FlagSet) *Loader {
	if fs == nil {
		fs = flag.CommandLine
	}
	l := &Loader{fs: fs}
	l.configPath = fs.String("config", "", "Path to YAML config file (required)")
	l.listenAddr = fs.String("listen", "", "Override server listen address")
	l.scaleFactor = fs.Float64("scale", 0, "Override frame scale factor")
	return l
}

// Load parses the flags (if not already parsed) and returns the server
// configuration. The config file is mandatory: it carries the expert
// backend list, which has no sensible flag form.
func (l *Loader) Load(args []string) (*config.Config, error) {
	if !l.fs.Parsed() {
		if err := l.fs.Parse(args); err != nil {
			return nil, fmt.Errorf("failed to parse flags: %w", err)
		}
	}

	if *l.configPath == "" {
		return nil, fmt.Errorf("--config is required")
	}

	cfg, err := config.LoadConfig(*l.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// CLI flags override file values.
	if *l.listenAddr != "" {
		cfg.Server.ListenAddr = *l.listenAddr
	}
	if *l.scaleFactor != 0 {
		cfg.Server.ScaleFactor = *l.scaleFactor
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
