package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"

	"github.com/devbotsxyz/xcresult-annotate/internal/annotate"
	"github.com/devbotsxyz/xcresult-annotate/internal/xcresult"
)

// Bundle writes a parsed bundle in the given format. width bounds text output;
// zero uses DefaultWidth.
func Bundle(w io.Writer, b *xcresult.Bundle, format Format, width int) error {
	if format != FormatText {
		return encode(w, format, b)
	}
	if width <= 0 {
		width = DefaultWidth
	}

	st := newStyles(w)
	var out strings.Builder

	out.WriteString(st.title.Render(b.Path) + "\n")
	if b.Info != nil {
		fmt.Fprintf(&out, "%s %s  %s %s/%s\n",
			st.label.Render("format"), b.Info.Version,
			st.label.Render("storage"), b.Info.Storage.Backend, b.Info.Storage.Compression)
	}

	r := b.Record
	if r == nil {
		_, err := io.WriteString(w, out.String())
		return err
	}

	if len(r.Actions) > 0 {
		out.WriteString("\n" + st.title.Render("Actions") + "\n")
		for _, a := range r.Actions {
			title := ansi.Truncate(a.Title, width-4, "...")
			fmt.Fprintf(&out, "  %s\n", title)
			fmt.Fprintf(&out, "    %s %s/%s  %s %s\n",
				st.label.Render("scheme"), a.SchemeCommandName, a.SchemeTaskName,
				st.label.Render("took"), a.EndedTime.Sub(a.StartedTime).Round(time.Second))
		}
	}

	if m := r.Metrics; m != nil {
		out.WriteString("\n" + st.title.Render("Metrics") + "\n")
		writeMetric(&out, st, "tests", m.TestsCount)
		writeMetric(&out, st, "failed tests", m.TestsFailedCount)
		writeMetric(&out, st, "warnings", m.WarningCount)
		writeMetric(&out, st, "errors", m.ErrorCount)
	}

	writeIssues(&out, st, "Warnings", st.warning, r.Warnings(), width)
	writeIssues(&out, st, "Errors", st.failure, r.Errors(), width)

	_, err := io.WriteString(w, out.String())
	return err
}

func writeMetric(out *strings.Builder, st styles, name string, v *int) {
	if v == nil {
		return
	}
	fmt.Fprintf(out, "  %s %d\n", st.label.Render(name+":"), *v)
}

func writeIssues(out *strings.Builder, st styles, heading string, marker lipgloss.Style, issues []xcresult.IssueSummary, width int) {
	if len(issues) == 0 {
		return
	}
	fmt.Fprintf(out, "\n%s %s\n", st.title.Render(heading), st.dim.Render(fmt.Sprintf("(%d)", len(issues))))
	for _, issue := range issues {
		fmt.Fprintf(out, "  %s %s\n", marker.Render("●"), issue.IssueType)
		out.WriteString(indent.String(wordwrap.String(issue.Message, width-4), 4) + "\n")
		if loc := issue.DocumentLocationInCreatingWorkspace; loc != nil {
			out.WriteString("    " + st.path.Render(locationLabel(loc.URL)) + "\n")
		}
	}
}

// locationLabel renders a document location URL as path:line when it decodes.
func locationLabel(url string) string {
	loc, err := annotate.ParseLocation(url)
	if err != nil || loc.Path == "" {
		return url
	}
	if !loc.HasLine() {
		return loc.Path
	}
	if loc.EndLine != loc.StartLine {
		return fmt.Sprintf("%s:%d-%d", loc.Path, loc.StartLine, loc.EndLine)
	}
	return fmt.Sprintf("%s:%d", loc.Path, loc.StartLine)
}
