package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/countdown/internal/server/models"
)

// clearScreen moves the cursor home and clears the terminal.
const clearScreen = "\033[H\033[2J"

// Watch redraws the countdowns every second and reloads them from the
// server every refresh interval until ctx is cancelled.
func (a *App) Watch(ctx context.Context) {
	tick := time.NewTicker(time.Second)
	defer tick.Stop()
	refresh := time.NewTicker(a.refreshInterval())
	defer refresh.Stop()

	a.watchLoop(ctx, tick.C, refresh.C)
}

func (a *App) watchLoop(ctx context.Context, tick, refresh <-chan time.Time) {
	var (
		timers    []models.Timer
		loadedAt  time.Time
		lastError error
	)

	load := func() {
		list, err := a.client.List(ctx)
		if err != nil {
			lastError = err
			a.logger.Warn(ctx, "refresh failed", "error", err)
			return
		}
		timers, loadedAt, lastError = list, a.now(), nil
	}

	load()
	for {
		a.drawFrame(timers, loadedAt, lastError)

		select {
		case <-ctx.Done():
			return
		case <-tick:
		case <-refresh:
			load()
		}
	}
}

func (a *App) drawFrame(timers []models.Timer, loadedAt time.Time, lastError error) {
	if a.tty {
		fmt.Fprint(a.out, clearScreen)
	}

	fmt.Fprintf(a.out, "Countdown timers at %s\n", a.config.ServerURL)
	if !loadedAt.IsZero() {
		fmt.Fprintf(a.out, "Last refresh %s, every %s\n", loadedAt.Local().Format("15:04:05"), a.refreshInterval())
	}
	if lastError != nil {
		fmt.Fprintf(a.out, "Refresh failed: %v\n", lastError)
	}
	fmt.Fprintln(a.out)

	RenderTimers(a.out, timers, a.now())

	if !a.tty {
		fmt.Fprintln(a.out)
	}
}
