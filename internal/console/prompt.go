package console

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/pkg/browser"
)

// Terminal implements the blocking notification and confirmation prompts
// on top of the shared input queue.
type Terminal struct {
	ctx   context.Context
	lines *lineQueue
	out   io.Writer
	mu    sync.Mutex
}

// Notify prints msg and waits for Enter.
func (t *Terminal) Notify(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "\n  ! %s\n  [press Enter] ", msg)
	_, _ = t.lines.next(t.ctx)
}

// Confirm asks a yes/no question; anything but y/yes is a no.
func (t *Terminal) Confirm(question string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "%s [y/N] ", question)
	line, err := t.lines.next(t.ctx)
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// Ask prompts for a field value. Enter keeps current, "-" clears it.
func (t *Terminal) Ask(label, current string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if current != "" {
		fmt.Fprintf(t.out, "%s [%s]: ", label, current)
	} else {
		fmt.Fprintf(t.out, "%s: ", label)
	}
	line, err := t.lines.next(t.ctx)
	if err != nil {
		return current, err
	}
	switch line = strings.TrimSpace(line); line {
	case "":
		return current, nil
	case "-":
		return "", nil
	default:
		return line, nil
	}
}

// Browser opens URLs in the system browser, printing them as well so the
// operator can copy them on a headless host.
type Browser struct {
	Out     io.Writer
	Resolve func(string) string
	Launch  bool

	open func(string) error
}

// Navigate resolves url against the backend and opens it.
func (b *Browser) Navigate(url string) error {
	if b.Resolve != nil {
		url = b.Resolve(url)
	}
	fmt.Fprintf(b.Out, "-> %s\n", url)
	if !b.Launch {
		return nil
	}
	open := b.open
	if open == nil {
		open = browser.OpenURL
	}
	return open(url)
}
