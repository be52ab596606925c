package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/wordwrap"

	"github.com/devbotsxyz/xcresult-annotate/internal/db"
)

// historyRun is the structured form of a recorded run.
type historyRun struct {
	ID             string         `json:"id" yaml:"id"`
	StartedAt      time.Time      `json:"startedAt" yaml:"startedAt"`
	Duration       string         `json:"duration" yaml:"duration"`
	Status         string         `json:"status" yaml:"status"`
	Repo           string         `json:"repo,omitempty" yaml:"repo,omitempty"`
	HeadSHA        string         `json:"headSha,omitempty" yaml:"headSha,omitempty"`
	Sink           string         `json:"sink" yaml:"sink"`
	NumAnnotations int            `json:"numAnnotations" yaml:"numAnnotations"`
	NumFailures    int            `json:"numFailures" yaml:"numFailures"`
	CheckRunID     *int64         `json:"checkRunId,omitempty" yaml:"checkRunId,omitempty"`
	Conclusion     string         `json:"conclusion,omitempty" yaml:"conclusion,omitempty"`
	Error          string         `json:"error,omitempty" yaml:"error,omitempty"`
	Bundles        []db.RunBundle `json:"bundles,omitempty" yaml:"bundles,omitempty"`
}

func toHistoryRun(r *db.Run) historyRun {
	return historyRun{
		ID:             r.ID,
		StartedAt:      r.StartedAt,
		Duration:       r.FinishedAt.Sub(r.StartedAt).String(),
		Status:         r.Status,
		Repo:           r.Repo,
		HeadSHA:        r.HeadSHA,
		Sink:           r.Sink,
		NumAnnotations: r.NumAnnotations,
		NumFailures:    r.NumFailures,
		CheckRunID:     r.CheckRunID,
		Conclusion:     r.Conclusion,
		Error:          r.Error,
		Bundles:        r.Bundles,
	}
}

// History writes recorded runs, most recent first as given.
func History(w io.Writer, runs []*db.Run, format Format, width int) error {
	if format != FormatText {
		out := make([]historyRun, len(runs))
		for i, r := range runs {
			out[i] = toHistoryRun(r)
		}
		return encode(w, format, out)
	}

	if width <= 0 {
		width = DefaultWidth
	}
	st := newStyles(w)
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, st.dim.Render("No runs recorded."))
		return err
	}

	var out strings.Builder
	for _, r := range runs {
		id := r.ID
		if len(id) > 8 {
			id = id[:8]
		}

		line := fmt.Sprintf("%s  %s  %s  %s  %d annotations",
			st.dim.Render(id),
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			statusStyle(st, r.Status).Render(padRight(r.Status, 9)),
			padRight(r.Sink, 8),
			r.NumAnnotations)
		if r.Conclusion != "" {
			line += "  " + r.Conclusion
		}
		out.WriteString(ansi.Truncate(line, width, "...") + "\n")

		writeRunBundles(&out, st, r.Bundles, width)
		if r.Error != "" {
			out.WriteString(ansi.Truncate("    "+st.failure.Render(r.Error), width, "...") + "\n")
		}
	}

	_, err := io.WriteString(w, out.String())
	return err
}

// Run writes a single recorded run with every stored detail.
func Run(w io.Writer, r *db.Run, format Format, width int) error {
	if format != FormatText {
		return encode(w, format, toHistoryRun(r))
	}
	if width <= 0 {
		width = DefaultWidth
	}

	st := newStyles(w)
	var out strings.Builder
	field := func(name, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&out, "%s %s\n", st.label.Render(padRight(name+":", 12)), value)
	}

	out.WriteString(st.title.Render("Run "+r.ID) + "\n")
	field("status", statusStyle(st, r.Status).Render(r.Status))
	field("started", r.StartedAt.Local().Format("2006-01-02 15:04:05"))
	field("duration", r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String())
	field("sink", r.Sink)
	field("repo", r.Repo)
	field("commit", r.HeadSHA)
	if r.CheckRunID != nil {
		field("check run", fmt.Sprintf("%d", *r.CheckRunID))
	}
	field("conclusion", r.Conclusion)
	field("annotations", fmt.Sprintf("%d (%d failures)", r.NumAnnotations, r.NumFailures))
	if r.Error != "" {
		field("error", st.failure.Render(wordwrap.String(r.Error, width-13)))
	}

	if len(r.Bundles) > 0 {
		out.WriteString("\n" + st.title.Render("Bundles") + "\n")
		writeRunBundles(&out, st, r.Bundles, width)
	}

	_, err := io.WriteString(w, out.String())
	return err
}

func writeRunBundles(out *strings.Builder, st styles, bundles []db.RunBundle, width int) {
	for _, b := range bundles {
		out.WriteString(ansi.Truncate(fmt.Sprintf("    %s %s", st.path.Render(b.Path),
			st.dim.Render(fmt.Sprintf("(%d warnings, %d errors)", b.NumWarnings, b.NumErrors))), width, "...") + "\n")
	}
}

func statusStyle(st styles, status string) lipgloss.Style {
	if status == db.StatusSucceeded {
		return st.success
	}
	return st.failure
}

func padRight(s string, n int) string {
	if w := lipgloss.Width(s); w < n {
		return s + strings.Repeat(" ", n-w)
	}
	return s
}
