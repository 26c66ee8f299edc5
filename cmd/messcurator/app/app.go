// Package app provides the application context and dependency management
// for the messcurator CLI. It centralizes configuration, logging and the
// lazily created curator client.
package app

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/agentstation/messcurator"
	"github.com/agentstation/messcurator/cmd/application"
	"github.com/agentstation/messcurator/pkg/events"
)

// Ensure App implements application.Application at compile time.
var _ application.Application = (*App)(nil)

// App represents the messcurator application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	settings *Settings

	// cfg is loaded by setupCommand unless preset with WithConfig
	cfg        messcurator.Config
	cfgFile    string
	configured bool

	logger       *zerolog.Logger
	customLogger bool
	fs           afero.Fs

	// base options applied to every client, before per-call options
	clientOpts []messcurator.Option

	// Curator instance (lazy-initialized, singleton)
	mu      sync.RWMutex
	curator messcurator.Client
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version:  version,
		commit:   commit,
		date:     date,
		builtBy:  builtBy,
		settings: LoadSettings(),
		cfg:      messcurator.DefaultConfig(),
		fs:       afero.NewOsFs(),
	}

	logger := NewLogger(app.settings)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Settings returns the command-line settings.
func (a *App) Settings() *Settings {
	return a.settings
}

// Config returns the curator configuration.
func (a *App) Config() messcurator.Config {
	return a.cfg
}

// ConfigFile returns the configuration file that was read, if any.
func (a *App) ConfigFile() string {
	return a.cfgFile
}

// Fs returns the filesystem used for output files and reports.
func (a *App) Fs() afero.Fs {
	return a.fs
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the --format flag value.
func (a *App) OutputFormat() string {
	return a.settings.Format
}

// Quiet reports whether -q was given.
func (a *App) Quiet() bool {
	return a.settings.Quiet
}

// Curator returns the curator client. Without options the client is created
// once and shared; with options a new client is built.
func (a *App) Curator(opts ...messcurator.Option) (messcurator.Client, error) {
	if len(opts) > 0 {
		return messcurator.New(a.cfg, append(a.baseOptions(), opts...)...)
	}

	a.mu.RLock()
	if a.curator != nil {
		mc := a.curator
		a.mu.RUnlock()
		return mc, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	// Double-check after acquiring write lock
	if a.curator != nil {
		return a.curator, nil
	}

	mc, err := messcurator.New(a.cfg, a.baseOptions()...)
	if err != nil {
		return nil, err
	}
	a.curator = mc
	return mc, nil
}

// baseOptions builds the client options from the settings.
func (a *App) baseOptions() []messcurator.Option {
	opts := []messcurator.Option{
		messcurator.WithFs(a.fs),
		messcurator.WithLogger(a.logger),
		messcurator.WithEmitter(a.emitter()),
	}
	return append(opts, a.clientOpts...)
}

// emitter returns the event sink selected with --events. In quiet mode the
// console sink gives way to the logger, which drops routine progress.
func (a *App) emitter() events.Emitter {
	switch a.settings.Events {
	case EventsNone:
		return events.Nop
	case EventsYAML:
		return events.YAML(os.Stderr)
	case EventsLog:
		return events.Log(a.logger)
	default:
		if a.settings.Quiet {
			return events.Log(a.logger)
		}
		return events.Console(os.Stderr)
	}
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets the curator configuration. The configuration file is then
// not read.
func WithConfig(cfg messcurator.Config) Option {
	return func(a *App) error {
		a.cfg = cfg
		a.configured = true
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		a.customLogger = true
		return nil
	}
}

// WithFs sets the filesystem for output files and curator documents.
func WithFs(fs afero.Fs) Option {
	return func(a *App) error {
		a.fs = fs
		return nil
	}
}

// WithClientOptions adds options to every curator client, such as an
// injected emulator runner.
func WithClientOptions(opts ...messcurator.Option) Option {
	return func(a *App) error {
		a.clientOpts = append(a.clientOpts, opts...)
		return nil
	}
}
