package interact

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/eiannone/keyboard"
	"github.com/fatih/color"
	"golang.org/x/term"
)

// Terminal implements Interactor on a terminal. Confirmations read a single
// key press when stdin is a TTY and a full line otherwise.
type Terminal struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool

	// AssumeYes answers every confirmation with yes without asking
	AssumeYes bool

	notice *color.Color
	mu     sync.Mutex
}

// NewTerminal creates a Terminal reading stdin and writing prompts to stderr
func NewTerminal(assumeYes bool) *Terminal {
	return &Terminal{
		in:          bufio.NewReader(os.Stdin),
		out:         os.Stderr,
		interactive: term.IsTerminal(int(os.Stdin.Fd())),
		AssumeYes:   assumeYes,
		notice:      color.New(color.FgYellow, color.Bold),
	}
}

// NewLineTerminal creates a Terminal that always reads whole lines from in
func NewLineTerminal(in io.Reader, out io.Writer, assumeYes bool) *Terminal {
	return &Terminal{
		in:        bufio.NewReader(in),
		out:       out,
		AssumeYes: assumeYes,
		notice:    color.New(color.FgYellow, color.Bold),
	}
}

func (t *Terminal) Confirm(message string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.AssumeYes {
		return true
	}
	fmt.Fprintf(t.out, "%s [y/N] ", message)

	if t.interactive {
		char, _, err := keyboard.GetSingleKey()
		if err == nil {
			fmt.Fprintln(t.out, string(char))
			return char == 'y' || char == 'Y'
		}
		// fall back to line input when raw mode is unavailable
	}

	line, err := t.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(t.out)
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func (t *Terminal) PromptText(message, def string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if def != "" {
		fmt.Fprintf(t.out, "%s [%s] ", message, def)
	} else {
		fmt.Fprintf(t.out, "%s ", message)
	}
	line, err := t.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(t.out)
		return "", false
	}
	answer := strings.TrimSpace(line)
	if answer == "" {
		return def, def != ""
	}
	return answer, true
}

func (t *Terminal) Notify(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.notice.Fprintln(t.out, message)
}

// ReadLine prints prompt and reads the next input line, sharing the buffer
// used by prompts and confirmations. ok is false at end of input.
func (t *Terminal) ReadLine(prompt string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprint(t.out, prompt)
	line, err := t.in.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimRight(line, "\r\n"), true
}
