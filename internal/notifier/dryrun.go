package notifier

import (
	"context"
	"fmt"
	"io"
	"sync"
	"unicode/utf8"

	"github.com/pfrederiksen/ski-report/internal/caption"
)

// DryRunNotifier prints what a channel would post without posting it
type DryRunNotifier struct {
	name    string
	variant caption.Variant
	out     io.Writer
	mu      *sync.Mutex
}

// NewDryRunNotifier wraps ch so that sends are written to out instead
func NewDryRunNotifier(ch Channel, out io.Writer) *DryRunNotifier {
	return &DryRunNotifier{
		name:    ch.Name(),
		variant: ch.Variant(),
		out:     out,
		mu:      &sync.Mutex{},
	}
}

// WrapDryRun replaces every channel with a dry-run printer sharing out
func WrapDryRun(channels []Channel, out io.Writer) []Channel {
	mu := &sync.Mutex{}
	wrapped := make([]Channel, 0, len(channels))
	for _, ch := range channels {
		n := NewDryRunNotifier(ch, out)
		n.mu = mu
		wrapped = append(wrapped, n)
	}
	return wrapped
}

// Name implements Channel.
func (n *DryRunNotifier) Name() string { return n.name }

// Variant implements Channel.
func (n *DryRunNotifier) Variant() caption.Variant { return n.variant }

// Send prints the caption that would be posted
func (n *DryRunNotifier) Send(_ context.Context, image []byte, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	fmt.Fprintf(n.out, "--- %s ---\n", n.name)
	fmt.Fprintln(n.out, text)
	fmt.Fprintf(n.out, "\n(Length: %d characters, image: %d bytes)\n\n", utf8.RuneCountInString(text), len(image))
	return nil
}
