// Package cli provides the interactive GophTasks command-line client.
//
// App wires configuration and the HTTP API client into a small REPL:
// register, log in, then list, add, show, complete and delete tasks.
// Passwords are read from the terminal without echo and wiped after use.
package cli
