package ceos

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/d21d3q/goceos/internal/config"
	"github.com/d21d3q/goceos/internal/layout"
	"github.com/d21d3q/goceos/internal/record"
	"github.com/d21d3q/goceos/internal/registry"
)

// Options configures a Decoder.
type Options struct {
	// Permissive accepts layouts with overlapping or out-of-range fields and
	// skips the per-field check against the header's record length.
	Permissive bool
	// LayoutFiles are YAML layout files registered next to the built-in
	// record types.
	LayoutFiles []string
	// Logger defaults to the logrus standard logger.
	Logger logrus.FieldLogger
	// Registerer receives the decode counters when set.
	Registerer prometheus.Registerer
}

// OptionsFromConfigFile loads a YAML config and returns matching options. The
// returned level is the configured logging level.
func OptionsFromConfigFile(path string) (Options, logrus.Level, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return Options{}, 0, err
	}
	lvl, err := cfg.LogLevel()
	if err != nil {
		return Options{}, 0, err
	}
	return Options{Permissive: cfg.Permissive, LayoutFiles: cfg.Layouts}, lvl, nil
}

func (opts Options) toInternal() (*registry.Registry, record.Options, error) {
	ropts := record.Options{Permissive: opts.Permissive}
	if !opts.Permissive && len(opts.LayoutFiles) == 0 {
		return registry.Default(), ropts, nil
	}
	var regOpts []registry.Option
	if opts.Permissive {
		regOpts = append(regOpts, registry.Permissive())
	}
	reg := registry.Default().Clone(regOpts...)
	for _, path := range opts.LayoutFiles {
		layouts, err := layout.LoadFile(path, opts.Permissive)
		if err != nil {
			return nil, ropts, err
		}
		for _, l := range layouts {
			if err := reg.Register(record.Variant{Name: l.Name(), Layout: l}); err != nil {
				return nil, ropts, fmt.Errorf("%s: %w", path, err)
			}
		}
	}
	return reg, ropts, nil
}
