// Package client talks to the GophTasks HTTP API.
//
// HTTPClient keeps the access token returned by Login and sends it as a
// bearer token on every protected call. Transport failures are reported as
// ErrUnavailable and 401 responses as ErrUnauthorized; any other non-2xx
// response becomes an *APIError carrying the server's detail message.
package client
