package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	List(ctx context.Context) error
	Create(ctx context.Context, args []string) error
	Reset(ctx context.Context, args []string) error
	Init(ctx context.Context) error
}

const helpText = `Available commands:
  (l)ist                  list timers with their countdown
  create [days] [name]    create a timer (prompts for missing values)
  reset [id]              restart a timer from now
  init                    create the timers document if it is missing
  help                    show this help
  exit | quit             leave the program`

// runREPL reads commands line by line from reader and dispatches them to a.
// It returns on EOF, on "exit"/"quit", or when ctx is cancelled. Command
// errors are reported by the handlers themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}

		fmt.Fprintf(w, "countdown %s> ", statusFn())
		line, err := readLine(reader)
		if err != nil {
			fmt.Fprintln(w)
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			fmt.Fprintln(w, helpText)

		case "l", "list":
			_ = a.List(ctx)

		case "create", "add":
			_ = a.Create(ctx, args)

		case "reset":
			_ = a.Reset(ctx, args)

		case "init":
			_ = a.Init(ctx)

		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return

		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}
	}
}
