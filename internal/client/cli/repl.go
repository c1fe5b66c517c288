package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	hasToken() bool
	SignIn(ctx context.Context, args []string) error
	Confirm(ctx context.Context, args []string) error
	Check(ctx context.Context) error
	Forget(ctx context.Context) error
}

// runREPL reads commands line by line from reader and dispatches them to a.
// It returns on EOF or when the user types "exit" or "quit".
//
// Commands:
//
//	signin [email]    request a one-time code
//	confirm [code]    exchange the code for a token (code is read hidden when omitted)
//	check             verify the saved token
//	forget            drop the saved token
//	help              show available commands
//	exit | quit       leave the program
//
// Handler errors are reported and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("otp %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.hasToken() {
				printlnFn("Available commands: check, forget, signin, confirm, exit")
			} else {
				printlnFn("Available commands: signin, confirm, check, exit")
			}

		case "signin":
			cmdErr = a.SignIn(ctx, args)

		case "confirm":
			cmdErr = a.Confirm(ctx, args)

		case "check":
			cmdErr = a.Check(ctx)

		case "forget", "logout":
			cmdErr = a.Forget(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", describe(cmdErr))
		}

		if ctx.Err() != nil {
			return
		}
	}
}
