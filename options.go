package messcurator

import (
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/agentstation/messcurator/internal/emulator"
	"github.com/agentstation/messcurator/pkg/events"
)

// Option configures a client.
type Option func(*options) error

type options struct {
	fs      afero.Fs
	romSrc  afero.Fs
	romDst  afero.Fs
	runner  emulator.Runner
	emitter events.Emitter
	logger  *zerolog.Logger
}

func defaults() *options {
	osFs := afero.NewOsFs()
	return &options{
		fs:      osFs,
		romSrc:  osFs,
		romDst:  osFs,
		emitter: events.Nop,
	}
}

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithFs sets the filesystem holding the machine list, the folder ini and
// the curated document.
func WithFs(fs afero.Fs) Option {
	return func(o *options) error {
		o.fs = fs
		return nil
	}
}

// WithROMFs sets the ROM source and destination filesystems.
func WithROMFs(src, dst afero.Fs) Option {
	return func(o *options) error {
		o.romSrc, o.romDst = src, dst
		return nil
	}
}

// WithRunner replaces the emulator process. The emulator path is then not
// required.
func WithRunner(r emulator.Runner) Option {
	return func(o *options) error {
		o.runner = r
		return nil
	}
}

// WithEmitter sets the progress event sink.
func WithEmitter(e events.Emitter) Option {
	return func(o *options) error {
		o.emitter = events.Or(e)
		return nil
	}
}

// WithLogger sets the logger used when the context carries none.
func WithLogger(l *zerolog.Logger) Option {
	return func(o *options) error {
		o.logger = l
		return nil
	}
}
