package xcresult

import "time"

// Concrete type names the builder recognizes.
const (
	RootTypeName         = "ActionsInvocationRecord"
	ActionRecordTypeName = "ActionRecord"
	IssueSummaryTypeName = "IssueSummary"
)

// InvocationRecord is the root of a parsed result bundle.
// Nil fields were absent from the bundle.
type InvocationRecord struct {
	Actions []ActionRecord  `json:"actions,omitempty" yaml:"actions,omitempty"`
	Issues  *IssueSummaries `json:"issues,omitempty" yaml:"issues,omitempty"`
	Metrics *ResultMetrics  `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

// ActionRecord is one build or test action.
type ActionRecord struct {
	StartedTime       time.Time `json:"startedTime" yaml:"startedTime"`
	EndedTime         time.Time `json:"endedTime" yaml:"endedTime"`
	Title             string    `json:"title" yaml:"title"`
	SchemeCommandName string    `json:"schemeCommandName" yaml:"schemeCommandName"`
	SchemeTaskName    string    `json:"schemeTaskName" yaml:"schemeTaskName"`
}

// IssueSummaries groups the issues reported by the invocation, in bundle order.
type IssueSummaries struct {
	WarningSummaries []IssueSummary `json:"warningSummaries,omitempty" yaml:"warningSummaries,omitempty"`
	ErrorSummaries   []IssueSummary `json:"errorSummaries,omitempty" yaml:"errorSummaries,omitempty"`
}

// IssueSummary is a single compiler or analyzer diagnostic.
type IssueSummary struct {
	IssueType                           string            `json:"issueType" yaml:"issueType"` // e.g. "Swift Compiler Warning"
	Message                             string            `json:"message" yaml:"message"`
	DocumentLocationInCreatingWorkspace *DocumentLocation `json:"documentLocationInCreatingWorkspace,omitempty" yaml:"documentLocationInCreatingWorkspace,omitempty"`
}

// DocumentLocation points into a source file. The line and column range is
// encoded in URL and decoded by consumers.
type DocumentLocation struct {
	ConcreteTypeName string `json:"concreteTypeName" yaml:"concreteTypeName"`
	URL              string `json:"url" yaml:"url"`
}

// ResultMetrics holds the invocation counters; each one is independently optional.
type ResultMetrics struct {
	TestsCount       *int `json:"testsCount,omitempty" yaml:"testsCount,omitempty"`
	TestsFailedCount *int `json:"testsFailedCount,omitempty" yaml:"testsFailedCount,omitempty"`
	WarningCount     *int `json:"warningCount,omitempty" yaml:"warningCount,omitempty"`
	ErrorCount       *int `json:"errorCount,omitempty" yaml:"errorCount,omitempty"`
}

// Warnings returns the warning summaries, or nil when the record has none.
func (r *InvocationRecord) Warnings() []IssueSummary {
	if r == nil || r.Issues == nil {
		return nil
	}
	return r.Issues.WarningSummaries
}

// Errors returns the error summaries, or nil when the record has none.
func (r *InvocationRecord) Errors() []IssueSummary {
	if r == nil || r.Issues == nil {
		return nil
	}
	return r.Issues.ErrorSummaries
}
