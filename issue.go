package fhirtabulate

// IssueSeverity represents the severity of a reported condition.
type IssueSeverity string

const (
	// SeverityError indicates invalid input; the operation produced no output.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates an advisory condition; the operation still
	// returned a well-defined result.
	SeverityWarning IssueSeverity = "warning"
	// SeverityInformation indicates informational feedback.
	SeverityInformation IssueSeverity = "information"
)

// IssueType classifies the condition being reported.
type IssueType string

const (
	// IssueTypeInputShape indicates a malformed input (not a table, missing
	// column, mismatched column list).
	IssueTypeInputShape IssueType = "input-shape"
	// IssueTypeSchema indicates an invalid table description: ambiguous
	// bracket or separator configuration, or malformed path syntax.
	IssueTypeSchema IssueType = "schema"
	// IssueTypeUnknownType indicates a resource type name outside the known
	// vocabulary. Advisory only: the FHIR resource list evolves and
	// extraction must remain forward-compatible.
	IssueTypeUnknownType IssueType = "unknown-type"
	// IssueTypeAbsentType indicates a design entry whose resource type
	// matched nothing in the supplied bundles.
	IssueTypeAbsentType IssueType = "absent-type"
	// IssueTypeNoRows indicates a melt that produced no output rows for any
	// input row.
	IssueTypeNoRows IssueType = "no-rows"
	// IssueTypeNoIndices indicates index removal found no index pattern in
	// any selected column, likely a wrong bracket configuration.
	IssueTypeNoIndices IssueType = "no-indices"
	// IssueTypeProcessing indicates an internal processing problem.
	IssueTypeProcessing IssueType = "processing"
)

// Issue is a single reported condition. Operations collect Issues instead
// of failing so that pipelines which do not know in advance whether an
// attribute is populated can proceed.
type Issue struct {
	// Severity of the issue
	Severity IssueSeverity `json:"severity"`

	// Code identifying the type of issue
	Code IssueType `json:"code"`

	// Diagnostics contains human-readable details
	Diagnostics string `json:"diagnostics,omitempty"`

	// Location points at the design entry, column, or path involved
	Location string `json:"location,omitempty"`
}

// IsError returns true if this issue is an error.
func (i Issue) IsError() bool {
	return i.Severity == SeverityError
}

// IsWarning returns true if this issue is a warning.
func (i Issue) IsWarning() bool {
	return i.Severity == SeverityWarning
}

// String returns a human-readable representation of the issue.
func (i Issue) String() string {
	s := string(i.Severity) + ": " + i.Diagnostics
	if i.Location != "" {
		s += " at " + i.Location
	}
	return s
}

// IssueBuilder provides a fluent API for building issues.
type IssueBuilder struct {
	issue Issue
}

// NewIssue creates a new IssueBuilder.
func NewIssue(severity IssueSeverity, code IssueType) *IssueBuilder {
	return &IssueBuilder{
		issue: Issue{
			Severity: severity,
			Code:     code,
		},
	}
}

// Error creates an error issue.
func Error(code IssueType) *IssueBuilder {
	return NewIssue(SeverityError, code)
}

// Warning creates a warning issue.
func Warning(code IssueType) *IssueBuilder {
	return NewIssue(SeverityWarning, code)
}

// Info creates an informational issue.
func Info(code IssueType) *IssueBuilder {
	return NewIssue(SeverityInformation, code)
}

// Diagnostics sets the diagnostic message.
func (b *IssueBuilder) Diagnostics(msg string) *IssueBuilder {
	b.issue.Diagnostics = msg
	return b
}

// At sets the location.
func (b *IssueBuilder) At(location string) *IssueBuilder {
	b.issue.Location = location
	return b
}

// Build returns the constructed issue.
func (b *IssueBuilder) Build() Issue {
	return b.issue
}

// HasWarnings reports whether issues contains at least one warning.
func HasWarnings(issues []Issue) bool {
	for _, i := range issues {
		if i.IsWarning() {
			return true
		}
	}
	return false
}
