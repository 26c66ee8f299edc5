// Package application provides test doubles for the command application
// interface.
package application

import (
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/agentstation/messcurator"
	iface "github.com/agentstation/messcurator/cmd/application"
	"github.com/agentstation/messcurator/pkg/errors"
)

// Mock provides a mock implementation of Application for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
//
// Example Usage:
//
//	fs := afero.NewMemMapFs()
//	mock := &application.Mock{
//	    CuratorFunc: func(opts ...messcurator.Option) (messcurator.Client, error) {
//	        return messcurator.New(cfg, append([]messcurator.Option{messcurator.WithFs(fs)}, opts...)...)
//	    },
//	    FsFunc: func() afero.Fs { return fs },
//	}
//	cmd := platforms.NewCommand(mock)
type Mock struct {
	CuratorFunc      func(opts ...messcurator.Option) (messcurator.Client, error)
	ConfigFunc       func() messcurator.Config
	FsFunc           func() afero.Fs
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	QuietFunc        func() bool
	VersionFunc      func() string
	CommitFunc       func() string
	DateFunc         func() string
	BuiltByFunc      func() string
}

// Curator returns a client using the mock function or a configuration error.
func (m *Mock) Curator(opts ...messcurator.Option) (messcurator.Client, error) {
	if m.CuratorFunc != nil {
		return m.CuratorFunc(opts...)
	}
	return nil, errors.NewConfigError("curator", "not set on mock", nil)
}

// Config returns the configuration using the mock function or the defaults.
func (m *Mock) Config() messcurator.Config {
	if m.ConfigFunc != nil {
		return m.ConfigFunc()
	}
	return messcurator.DefaultConfig()
}

// Fs returns the filesystem using the mock function or a fresh MemMapFs.
func (m *Mock) Fs() afero.Fs {
	if m.FsFunc != nil {
		return m.FsFunc()
	}
	return afero.NewMemMapFs()
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns output format using the mock function or "table".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// Quiet returns the quiet flag using the mock function or false.
func (m *Mock) Quiet() bool {
	if m.QuietFunc != nil {
		return m.QuietFunc()
	}
	return false
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns builtBy using the mock function or "test".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "test"
}

// Ensure Mock implements Application at compile time.
var _ iface.Application = (*Mock)(nil)
