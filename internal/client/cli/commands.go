package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/countdown/internal/client/client"
	"github.com/dmitrijs2005/countdown/internal/common"
)

func (a *App) List(ctx context.Context) error {
	timers, err := a.client.List(ctx)
	if err != nil {
		return a.report(ctx, "list", err)
	}
	RenderTimers(a.out, timers, a.now())
	return nil
}

// Create accepts "create [days] [name...]" and prompts for what is missing.
func (a *App) Create(ctx context.Context, args []string) error {
	var daysText, name string
	if len(args) > 0 {
		daysText = args[0]
		name = strings.Join(args[1:], " ")
	}

	var err error
	if daysText == "" {
		if daysText, err = GetSimpleText(a.reader, "Days (0-5000):", a.out); err != nil {
			return err
		}
	}
	days, err := strconv.Atoi(daysText)
	if err != nil {
		fmt.Fprintf(a.out, "Days must be a whole number, got %q\n", daysText)
		return fmt.Errorf("%w: days must be a whole number", common.ErrValidation)
	}

	if name == "" {
		if name, err = GetSimpleText(a.reader, "Name:", a.out); err != nil {
			return err
		}
	}

	timer, err := a.client.Create(ctx, a.newID(), name, days)
	if err != nil {
		return a.report(ctx, "create", err)
	}

	fmt.Fprintf(a.out, "Created %q (%s), ends %s\n", timer.Name, timer.ID, timer.EndDate.Local().Format(dateLayout))
	return nil
}

// Reset accepts "reset [id]" and prompts for the id when missing.
func (a *App) Reset(ctx context.Context, args []string) error {
	var id string
	if len(args) > 0 {
		id = args[0]
	}

	var err error
	if id == "" {
		if id, err = GetSimpleText(a.reader, "Timer id:", a.out); err != nil {
			return err
		}
	}

	timer, err := a.client.Reset(ctx, id)
	if err != nil {
		return a.report(ctx, "reset", err)
	}

	fmt.Fprintf(a.out, "Reset %q, ends %s\n", timer.Name, timer.EndDate.Local().Format(dateLayout))
	return nil
}

func (a *App) Init(ctx context.Context) error {
	if err := a.client.Init(ctx); err != nil {
		return a.report(ctx, "init", err)
	}
	fmt.Fprintln(a.out, "Timers storage is ready")
	return nil
}

// report prints a user-facing message for err and returns it.
func (a *App) report(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, client.ErrUnavailable):
		a.setMode(ModeOffline)
		fmt.Fprintln(a.out, "Server is unreachable, try again later")
	case errors.Is(err, client.ErrUnauthorized):
		fmt.Fprintln(a.out, "Not authorized, check the shared secret (-s)")
	case errors.Is(err, common.ErrNotFound):
		fmt.Fprintln(a.out, "No such timer")
	default:
		fmt.Fprintln(a.out, "Error:", err.Error())
	}
	a.logger.Debug(ctx, "command failed", "op", op, "error", err)
	return err
}
