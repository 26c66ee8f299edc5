// Package application provides the application interface for messcurator
// commands.
//
// The Application interface defines the contract between the application
// layer and command implementations, enabling dependency injection and
// testability.
//
// Usage in Commands:
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            mc, err := app.Curator()
//	            if err != nil {
//	                return err
//	            }
//	            result, err := mc.Search(cmd.Context(), req)
//	            // ... render result
//	        },
//	    }
//	}
//
// Testing with Mocks:
//
//	mock := &application.Mock{
//	    CuratorFunc: func(opts ...messcurator.Option) (messcurator.Client, error) {
//	        return messcurator.New(cfg, append(testOpts, opts...)...)
//	    },
//	}
//	cmd := search.NewCommand(mock)
package application

import (
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/agentstation/messcurator"
)

// Application provides the application interface that commands need.
// The App struct from cmd/messcurator/app implements this interface.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// Curator returns the curator client. Without options it returns the
	// default cached instance; with options it builds a new client from the
	// same configuration, for example with a different event emitter.
	Curator(opts ...messcurator.Option) (messcurator.Client, error)

	// Config returns the loaded curator configuration.
	Config() messcurator.Config

	// Fs is the filesystem commands write output files and reports to.
	Fs() afero.Fs

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the --format flag value (table, json, yaml, csv)
	// or an empty string when unset.
	OutputFormat() string

	// Quiet reports whether -q was given.
	Quiet() bool

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
