package cmdutil

import (
	"context"

	"github.com/agentstation/messcurator"
	"github.com/agentstation/messcurator/cmd/application"
	"github.com/agentstation/messcurator/internal/cmd/output"
	"github.com/agentstation/messcurator/internal/tui"
	"github.com/agentstation/messcurator/pkg/events"
)

// Format resolves the --format flag, detecting a default from the terminal.
func Format(app application.Application) output.Format {
	return output.DetectFormat(app.OutputFormat())
}

// Run calls fn with a curator client. With withTUI set, the client reports
// to a terminal progress view instead of the configured event sink and fn
// runs in the background until it returns.
func Run(ctx context.Context, app application.Application, withTUI bool, title string,
	fn func(ctx context.Context, mc messcurator.Client) error) error {
	if !withTUI {
		mc, err := app.Curator()
		if err != nil {
			return err
		}
		return fn(ctx, mc)
	}
	return tui.Run(ctx, title, func(ctx context.Context, emit events.Emitter) error {
		mc, err := app.Curator(messcurator.WithEmitter(emit))
		if err != nil {
			return err
		}
		return fn(ctx, mc)
	})
}
