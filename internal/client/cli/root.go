package cli

import (
	"context"
	"fmt"
	"strings"
)

func (a *App) getStatus() string {
	var parts []string
	if a.email != "" {
		parts = append(parts, a.email)
	}
	if a.Mode != "" {
		parts = append(parts, string(a.Mode))
	}
	if a.authService != nil && a.hasToken() {
		parts = append(parts, "signed in")
	}
	if len(parts) == 0 {
		return ""
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, ", "))
}

func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to otpauth CLI (type 'help' for commands)")

	a.track(ctx, a.authService.Ping(ctx))

	runREPL(ctx, a, a.getStatus, a.reader)
}
