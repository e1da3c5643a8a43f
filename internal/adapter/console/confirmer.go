package console

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Confirmer asks yes/no questions on a terminal. Anything but y/yes is "no".
type Confirmer struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer
	// AssumeYes answers every prompt positively without reading input.
	AssumeYes bool
}

func NewConfirmer(in io.Reader, out io.Writer) *Confirmer {
	return &Confirmer{in: bufio.NewReader(in), out: out}
}

func (c *Confirmer) Confirm(prompt string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.AssumeYes {
		return true
	}
	fmt.Fprintf(c.out, "%s [y/N]: ", prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// ReadLine reads the next input line without the trailing newline. It shares
// the buffered reader with Confirm so interactive prompts do not lose input.
func (c *Confirmer) ReadLine() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
