package github

import (
	"fmt"
	"io"
	"strings"

	"github.com/devbotsxyz/xcresult-annotate/internal/annotate"
)

// WorkflowCommands writes annotations as GitHub Actions workflow commands, for
// runs where no token is available to use the checks API.
func WorkflowCommands(w io.Writer, annotations []annotate.Annotation) error {
	for _, a := range annotations {
		if _, err := fmt.Fprintln(w, workflowCommand(a)); err != nil {
			return fmt.Errorf("failed to write workflow command: %w", err)
		}
	}
	return nil
}

func workflowCommand(a annotate.Annotation) string {
	command := "warning"
	switch a.Level {
	case annotate.LevelFailure:
		command = "error"
	case annotate.LevelNotice:
		command = "notice"
	}

	props := []string{
		"file=" + escapeProperty(a.Path),
		fmt.Sprintf("line=%d", a.StartLine),
		fmt.Sprintf("endLine=%d", a.EndLine),
	}
	if a.StartColumn > 0 {
		props = append(props, fmt.Sprintf("col=%d", a.StartColumn))
	}
	if a.EndColumn > 0 {
		props = append(props, fmt.Sprintf("endColumn=%d", a.EndColumn))
	}
	if a.Title != "" {
		props = append(props, "title="+escapeProperty(a.Title))
	}

	return fmt.Sprintf("::%s %s::%s", command, strings.Join(props, ","), escapeData(a.Message))
}

var (
	dataEscaper     = strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A")
	propertyEscaper = strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A", ":", "%3A", ",", "%2C")
)

func escapeData(s string) string     { return dataEscaper.Replace(s) }
func escapeProperty(s string) string { return propertyEscaper.Replace(s) }
