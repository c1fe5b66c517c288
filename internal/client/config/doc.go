// Package config loads runtime configuration for the otpauth CLI.
//
// Sources, in order of precedence (later wins):
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags -a (server URL), -f (token file), -t (timeout, seconds).
//
// The JSON loader uses timex.Duration, so request_timeout may be a string
// like "5s" or integer nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "token_file": ".otpauth/token",
//	  "request_timeout": "5s"
//	}
package config
