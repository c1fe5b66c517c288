package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/otpauth/internal/common"
	"golang.org/x/term"
)

// readPassword and isTerminal are test seams for golang.org/x/term.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

var errCodeFormat = errors.New("code must be a 6-digit number")

// GetSimpleText prints a prompt to w and reads a single line of input from reader.
// The trailing newline is trimmed. If EOF occurs after some input was read,
// the partial line is returned.
//
// Example prompt format:
//
//	Prompt text
//	> _
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetCode reads a one-time code. On a terminal the input is not echoed;
// otherwise it falls back to a plain line read from reader.
func GetCode(reader *bufio.Reader, w io.Writer) (int, error) {
	fd := int(os.Stdin.Fd())
	if !isTerminal(fd) {
		raw, err := GetSimpleText(reader, "Enter code", w)
		if err != nil {
			return 0, err
		}
		return ParseCode(raw)
	}

	if _, err := fmt.Fprint(w, "Enter code: "); err != nil {
		return 0, err
	}
	raw, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return 0, err
	}
	return ParseCode(string(raw))
}

// ParseCode accepts exactly the codes the server can issue.
func ParseCode(s string) (int, error) {
	s = strings.TrimSpace(s)
	code, err := strconv.Atoi(s)
	if err != nil || len(s) != len(strconv.Itoa(common.CodeMax)) {
		return 0, errCodeFormat
	}
	if code < common.CodeMin || code > common.CodeMax {
		return 0, errCodeFormat
	}
	return code, nil
}
