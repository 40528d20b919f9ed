package feedback

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/pfrederiksen/activity-intake/internal/validate"
	"golang.org/x/term"
)

// ColorEnabled reports whether output to w should be colored: w must be a
// terminal, noColor unset and NO_COLOR absent.
func ColorEnabled(w io.Writer, noColor bool) bool {
	if noColor || color.NoColor {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

type palette struct {
	title   *color.Color
	label   *color.Color
	ok      *color.Color
	error   *color.Color
	warning *color.Color
	info    *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		title:   color.New(color.FgWhite, color.Bold),
		label:   color.New(color.FgBlue),
		ok:      color.New(color.FgGreen),
		error:   color.New(color.FgRed),
		warning: color.New(color.FgYellow),
		info:    color.New(color.FgCyan),
	}
	for _, c := range []*color.Color{p.title, p.label, p.ok, p.error, p.warning, p.info} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// WriteText writes a terminal summary of doc
func WriteText(w io.Writer, doc *Document, colored bool) error {
	p := newPalette(colored)
	var b strings.Builder

	if s := doc.Source; s != nil {
		p.title.Fprintf(&b, "Source: %s (%s, %d chars)\n", s.Source, s.Kind, s.Chars)
		if len(doc.Links) > 0 {
			fmt.Fprintf(&b, "Links:  %s\n", strings.Join(doc.Links, ", "))
		}
		b.WriteString("\n")
	}

	if rec := doc.Record; rec != nil {
		p.title.Fprintf(&b, "%s\n", rec.Title)
		field := func(name, value string) {
			if value == "" {
				value = "-"
			}
			p.label.Fprintf(&b, "  %-12s", name)
			fmt.Fprintf(&b, "%s\n", value)
		}
		field("category", string(rec.Category))
		field("description", rec.Description)
		field("tags", strings.Join(rec.Tags, ", "))
		for i, ev := range rec.Events {
			if len(rec.Events) > 1 {
				fmt.Fprintf(&b, "  event %d\n", i+1)
			}
			field("id", ev.ID)
			field("year", fmt.Sprintf("%d", ev.Year))
			field("date", ev.Date)
			field("place", ev.Place)
			field("timezone", ev.Timezone)
			field("link", ev.Link)
			for _, t := range ev.Timeline {
				field("timeline", t.Deadline+"  "+t.Comment)
			}
		}
		b.WriteString("\n")
	}

	if res := doc.Validation; res != nil {
		writeTextValidation(&b, p, res)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeTextValidation(b *strings.Builder, p palette, res *validate.Result) {
	if res.IsValid() {
		p.ok.Fprint(b, "✓ valid")
	} else {
		p.error.Fprint(b, "✗ invalid")
	}
	fmt.Fprintf(b, " (%d errors, %d warnings, %d suggestions)\n",
		len(res.Errors), len(res.Warnings), len(res.Suggestions))

	write := func(c *color.Color, tag string, issues []validate.Issue) {
		for _, is := range issues {
			c.Fprintf(b, "  %-7s ", tag)
			fmt.Fprintf(b, "%s: %s\n", is.Field, is.Issue)
			if is.Suggestion != "" {
				fmt.Fprintf(b, "          → %s\n", is.Suggestion)
			}
		}
	}
	write(p.error, "ERROR", res.Errors)
	write(p.warning, "WARN", res.Warnings)
	write(p.info, "INFO", res.Suggestions)
}
