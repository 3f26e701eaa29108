package grid

import "log"

type config struct {
	axUnits   []string
	gridUnits []string
	logger    *log.Logger
}

// Option configures optional grid metadata.
type Option func(*config)

// WithAxisUnits sets one unit label per dimension. A single label is
// broadcast to every dimension.
func WithAxisUnits(units ...string) Option {
	return func(cfg *config) {
		cfg.axUnits = append([]string(nil), units...)
	}
}

// WithGridUnits sets one unit label per property. A single label is
// broadcast to every property.
func WithGridUnits(units ...string) Option {
	return func(cfg *config) {
		cfg.gridUnits = append([]string(nil), units...)
	}
}

// WithLogger sets the logger used for warnings. The default is
// log.Default().
func WithLogger(l *log.Logger) Option {
	return func(cfg *config) {
		if l != nil {
			cfg.logger = l
		}
	}
}

func applyOptions(opts []Option) config {
	cfg := config{logger: log.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
