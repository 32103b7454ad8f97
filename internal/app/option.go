// Package app wires the deck-spec builder into a runnable application:
// configuration, logging, one-shot builds, a change watcher, and the HTTP
// surface that serves built packages.
package app

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}
