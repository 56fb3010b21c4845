// Package client contains the CLI's side of the timers HTTP API.
//
// # Overview
//
// Client is the transport-agnostic contract used by the CLI: Ping, Init,
// List, Create and Reset. HTTPClient implements it over HTTP/JSON and, when
// a shared secret is configured, signs a short-lived bearer token for every
// request.
//
// # Error Handling
//
// Responses are mapped to sentinel errors that callers can match with
// errors.Is: common.ErrValidation (400), ErrUnauthorized (401),
// common.ErrNotFound (404), common.ErrAlreadyExists (409), ErrServer (5xx)
// and ErrUnavailable (transport failures). The server's message is kept in
// the wrapped error text.
package client
