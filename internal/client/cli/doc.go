// Package cli provides the interactive countdown command-line client.
//
// Two modes are available:
//   - REPL (default): list, create, reset and init timers on the server.
//   - Watch (-w): a live countdown of every timer, redrawn every second and
//     reloaded from the server on the configured refresh interval.
//
// A background watcher pings the server and shows online/offline in the
// prompt. See App.Run, runREPL and App.Watch.
package cli
