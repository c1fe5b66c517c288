// Package cli implements the interactive otpauth client.
//
// The REPL accepts signin, confirm, check, forget, help and exit. A
// successful confirm stores the bearer token in the configured token file so
// later sessions can run check without signing in again. Codes typed at the
// confirm prompt are read without echo when stdin is a terminal.
package cli
