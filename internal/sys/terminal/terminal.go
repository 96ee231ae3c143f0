// Package terminal provides the prompts and checks for interactive use.
package terminal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Default terminal settings.
var (
	MaxWidth int = 120
	MinWidth int = 40
)

// IsPiped returns true if the input is piped.
func IsPiped() bool {
	fileInfo, _ := os.Stdin.Stat()
	return (fileInfo.Mode() & os.ModeCharDevice) == 0
}

// Width returns the width of stdout capped to MaxWidth, MaxWidth when stdout
// is not a terminal.
func Width() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return MaxWidth
	}

	w, _, err := term.GetSize(fd)
	if err != nil || w < MinWidth {
		return MaxWidth
	}

	return min(w, MaxWidth)
}

// Confirm asks q on w and reads the answer from r. An empty answer picks
// def.
func Confirm(r io.Reader, w io.Writer, q, def string) bool {
	opts := "[y/N]"
	if strings.EqualFold(def, "y") {
		opts = "[Y/n]"
	}

	fmt.Fprintf(w, "%s %s: ", q, opts)

	s := bufio.NewScanner(r)
	answer := def
	if s.Scan() {
		if a := strings.TrimSpace(s.Text()); a != "" {
			answer = a
		}
	}

	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
