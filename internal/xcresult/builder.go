package xcresult

// BuildRecord turns an ActionsInvocationRecord node into an InvocationRecord.
// The root type is not checked here; errors from nested fields are returned unwrapped.
func BuildRecord(root *Node) (*InvocationRecord, error) {
	actions, err := elements(root, "actions", ActionRecordTypeName, buildActionRecord)
	if err != nil {
		return nil, err
	}
	issues, err := object(root, "issues", buildIssueSummaries)
	if err != nil {
		return nil, err
	}
	metrics, err := object(root, "metrics", buildResultMetrics)
	if err != nil {
		return nil, err
	}

	return &InvocationRecord{
		Actions: actions,
		Issues:  issues,
		Metrics: metrics,
	}, nil
}

func buildActionRecord(n *Node) (ActionRecord, error) {
	var (
		a   ActionRecord
		err error
	)
	if a.StartedTime, err = Date(n, "startedTime"); err != nil {
		return a, err
	}
	if a.EndedTime, err = Date(n, "endedTime"); err != nil {
		return a, err
	}
	if a.Title, err = String(n, "title"); err != nil {
		return a, err
	}
	if a.SchemeCommandName, err = String(n, "schemeCommandName"); err != nil {
		return a, err
	}
	if a.SchemeTaskName, err = String(n, "schemeTaskName"); err != nil {
		return a, err
	}
	return a, nil
}

func buildIssueSummaries(n *Node) (IssueSummaries, error) {
	warnings, err := elements(n, "warningSummaries", IssueSummaryTypeName, buildIssueSummary)
	if err != nil {
		return IssueSummaries{}, err
	}
	errs, err := elements(n, "errorSummaries", IssueSummaryTypeName, buildIssueSummary)
	if err != nil {
		return IssueSummaries{}, err
	}
	return IssueSummaries{WarningSummaries: warnings, ErrorSummaries: errs}, nil
}

func buildIssueSummary(n *Node) (IssueSummary, error) {
	var (
		s   IssueSummary
		err error
	)
	if s.IssueType, err = String(n, "issueType"); err != nil {
		return s, err
	}
	if s.Message, err = String(n, "message"); err != nil {
		return s, err
	}
	if s.DocumentLocationInCreatingWorkspace, err = object(n, "documentLocationInCreatingWorkspace", buildDocumentLocation); err != nil {
		return s, err
	}
	return s, nil
}

func buildDocumentLocation(n *Node) (DocumentLocation, error) {
	var (
		l   DocumentLocation
		err error
	)
	if l.ConcreteTypeName, err = String(n, "concreteTypeName"); err != nil {
		return l, err
	}
	if l.URL, err = String(n, "url"); err != nil {
		return l, err
	}
	return l, nil
}

func buildResultMetrics(n *Node) (ResultMetrics, error) {
	var (
		m   ResultMetrics
		err error
	)
	if m.TestsCount, err = OptionalInt(n, "testsCount"); err != nil {
		return m, err
	}
	if m.TestsFailedCount, err = OptionalInt(n, "testsFailedCount"); err != nil {
		return m, err
	}
	if m.WarningCount, err = OptionalInt(n, "warningCount"); err != nil {
		return m, err
	}
	if m.ErrorCount, err = OptionalInt(n, "errorCount"); err != nil {
		return m, err
	}
	return m, nil
}

// object builds an optional nested object. Absence or null yields nil.
func object[T any](n *Node, field string, build func(*Node) (T, error)) (*T, error) {
	child, ok := n.Field(field)
	if !ok || child == nil {
		return nil, nil
	}
	v, err := build(child)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// elements builds an optional array field, keeping only the elements whose
// concrete type is elemType. Absence or null yields nil; a present empty array yields
// an empty non-nil slice.
func elements[T any](n *Node, field, elemType string, build func(*Node) (T, error)) ([]T, error) {
	if !n.Has(field) {
		return nil, nil
	}
	items, err := Array(n, field)
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		if item.TypeName() != elemType {
			continue
		}
		v, err := build(item)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
