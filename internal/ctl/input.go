package ctl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Test seams for the terminal.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// readSecret reads a password. On a terminal it prompts on w and disables
// echo; otherwise it reads a single line from r, so the command also works
// in pipelines.
func readSecret(r io.Reader, w io.Writer, prompt string) (string, error) {
	if f, ok := r.(*os.File); ok && isTerminal(int(f.Fd())) {
		if _, err := fmt.Fprint(w, prompt); err != nil {
			return "", err
		}
		pw, err := readPassword(int(f.Fd()))
		fmt.Fprintln(w)
		if err != nil {
			return "", err
		}
		return string(pw), nil
	}

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
