package annotate

import (
	"slices"

	"github.com/devbotsxyz/xcresult-annotate/internal/logging"
	"github.com/devbotsxyz/xcresult-annotate/internal/xcresult"
)

// Level is a GitHub annotation level.
type Level string

const (
	LevelNotice  Level = "notice"
	LevelWarning Level = "warning"
	LevelFailure Level = "failure"
)

// DefaultWarningIssueTypes are the warning issue types annotated when none are configured.
var DefaultWarningIssueTypes = []string{"Swift Compiler Warning"}

// Annotation is a check run annotation in the shape the checks API expects.
type Annotation struct {
	Path        string `json:"path"`
	StartLine   int    `json:"start_line"`
	EndLine     int    `json:"end_line"`
	StartColumn int    `json:"start_column,omitempty"`
	EndColumn   int    `json:"end_column,omitempty"`
	Level       Level  `json:"annotation_level"`
	Title       string `json:"title,omitempty"`
	Message     string `json:"message"`
}

// Options selects which issues become annotations.
type Options struct {
	// WarningIssueTypes filters warning summaries. Nil uses DefaultWarningIssueTypes;
	// an empty non-nil slice accepts every issue type.
	WarningIssueTypes []string
	// ErrorIssueTypes filters error summaries the same way; nil accepts every type.
	ErrorIssueTypes []string
	// IncludeErrors also annotates error summaries.
	IncludeErrors bool
	// Paths normalizes file paths. Nil keeps them as recorded.
	Paths *PathMapper
}

// Build maps the record's issues to annotations, warnings first, each group in
// bundle order. Issues without a usable location are skipped.
func Build(record *xcresult.InvocationRecord, opts Options) []Annotation {
	warningTypes := opts.WarningIssueTypes
	if warningTypes == nil {
		warningTypes = DefaultWarningIssueTypes
	}

	var annotations []Annotation
	annotations = appendIssues(annotations, record.Warnings(), warningTypes, LevelWarning, opts.Paths)
	if opts.IncludeErrors {
		annotations = appendIssues(annotations, record.Errors(), opts.ErrorIssueTypes, LevelFailure, opts.Paths)
	}
	return annotations
}

func appendIssues(dst []Annotation, issues []xcresult.IssueSummary, types []string, level Level, paths *PathMapper) []Annotation {
	for _, issue := range issues {
		if len(types) > 0 && !slices.Contains(types, issue.IssueType) {
			continue
		}
		a, ok := fromIssue(issue, level, paths)
		if !ok {
			continue
		}
		dst = append(dst, a)
	}
	return dst
}

func fromIssue(issue xcresult.IssueSummary, level Level, paths *PathMapper) (Annotation, bool) {
	doc := issue.DocumentLocationInCreatingWorkspace
	if doc == nil || doc.URL == "" {
		logging.Debug("skipping issue without location", "issueType", issue.IssueType)
		return Annotation{}, false
	}
	loc, err := ParseLocation(doc.URL)
	if err != nil {
		logging.Warn("skipping issue with malformed location", "url", doc.URL, "error", err)
		return Annotation{}, false
	}
	if !loc.HasLine() {
		logging.Debug("skipping issue without line", "url", doc.URL)
		return Annotation{}, false
	}

	p := loc.Path
	if paths != nil {
		p = paths.Map(p)
	}

	a := Annotation{
		Path:      p,
		StartLine: loc.StartLine,
		EndLine:   loc.EndLine,
		Level:     level,
		Title:     issue.IssueType,
		Message:   issue.Message,
	}
	// GitHub only accepts columns on single-line annotations.
	if loc.StartLine == loc.EndLine {
		a.StartColumn = loc.StartColumn
		a.EndColumn = loc.EndColumn
	}
	return a, true
}

// Summary counts annotations per level.
type Summary struct {
	Notices  int
	Warnings int
	Failures int
}

// Summarize counts annotations by level.
func Summarize(annotations []Annotation) Summary {
	var s Summary
	for _, a := range annotations {
		switch a.Level {
		case LevelNotice:
			s.Notices++
		case LevelWarning:
			s.Warnings++
		case LevelFailure:
			s.Failures++
		}
	}
	return s
}

// Total returns the number of counted annotations.
func (s Summary) Total() int {
	return s.Notices + s.Warnings + s.Failures
}
