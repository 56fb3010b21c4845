package cli

import (
	"context"
	"fmt"
)

func (a *App) getStatus() string {
	if a.Mode == "" {
		return ""
	}
	return fmt.Sprintf("(%s) ", a.Mode)
}

// Root runs the interactive REPL until the user exits.
func (a *App) Root(ctx context.Context) {

	fmt.Fprintf(a.out, "Countdown CLI, server %s (type 'help' for commands)\n", a.config.ServerURL)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.checkOnline(ctx)
	go a.StartOnlineStatusWatcher(ctx, a.refreshInterval())

	runREPL(ctx, a, a.getStatus, a.reader, a.out)
}
