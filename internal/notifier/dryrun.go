package notifier

import (
	"context"
	"fmt"
	"io"
	"unicode/utf8"
)

// DryRunNotifier prints what would be posted without contacting any API
type DryRunNotifier struct {
	w      io.Writer
	target string
}

// NewDryRunNotifier creates a dry-run notifier writing to w. target names
// where the real notifier would have posted and may be empty.
func NewDryRunNotifier(w io.Writer, target string) *DryRunNotifier {
	return &DryRunNotifier{w: w, target: target}
}

// Notify prints the comment that would be posted
func (n *DryRunNotifier) Notify(_ context.Context, report string) error {
	target := n.target
	if target == "" {
		target = "(no target)"
	}
	if _, err := fmt.Fprintf(n.w, "--- Comment for %s ---\n%s\n(Length: %d characters)\n",
		target, report, utf8.RuneCountInString(report)); err != nil {
		return fmt.Errorf("writing dry-run comment: %w", err)
	}
	return nil
}
