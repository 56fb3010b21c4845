package cli

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/dmitrijs2005/countdown/internal/client/client"
	"github.com/dmitrijs2005/countdown/internal/client/config"
	"github.com/dmitrijs2005/countdown/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// isTerminal is a test seam for term.IsTerminal.
var isTerminal = term.IsTerminal

type App struct {
	config *config.Config
	client client.Client
	logger logging.Logger
	reader *bufio.Reader
	out    io.Writer
	now    func() time.Time
	newID  func() string
	tty    bool
	Mode   Mode
}

func NewApp(c *config.Config) (*App, error) {
	apiClient := client.NewHTTPClient(c.ServerURL, c.SecretKey, c.RequestTimeout)
	// REPL output owns stdout; logs go to the file when one is set.
	var out io.Writer = os.Stderr
	if c.LogFile != "" {
		out = nil
	}
	w, _ := logging.Output(out, c.LogFile)
	logger := logging.NewJSONLogger(w, "warn")

	a := newApp(c, apiClient, logger, os.Stdin, os.Stdout)
	a.tty = isTerminal(int(os.Stdout.Fd()))
	return a, nil
}

func newApp(c *config.Config, cl client.Client, logger logging.Logger, in io.Reader, out io.Writer) *App {
	return &App{
		config: c,
		client: cl,
		logger: logger.With("module", "cli"),
		reader: bufio.NewReader(in),
		out:    out,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Run starts watch mode or the REPL and returns on exit, end of input,
// or SIGINT/SIGTERM.
func (a *App) Run(ctx context.Context) {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if a.config.Watch {
		a.Watch(ctx)
		return
	}
	a.Root(ctx)
}

func (a *App) setMode(mode Mode) {
	if a.Mode != mode {
		a.Mode = mode
		a.logger.Info(context.Background(), "connection mode changed", "mode", mode)
	}
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := a.client.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

// StartOnlineStatusWatcher pings the server every interval until ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) refreshInterval() time.Duration {
	if a.config.RefreshInterval <= 0 {
		return 30 * time.Second
	}
	return a.config.RefreshInterval
}
