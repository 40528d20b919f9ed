package validate

import "encoding/json"

// Level is the severity of an Issue
type Level string

const (
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
)

// Issue is one validation finding
type Issue struct {
	Field      string `json:"field" yaml:"field"`
	Issue      string `json:"issue" yaml:"issue"`
	Level      Level  `json:"level" yaml:"level"`
	Suggestion string `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
}

// Result groups findings by level. Info issues land in Suggestions.
type Result struct {
	Errors      []Issue
	Warnings    []Issue
	Suggestions []Issue
}

// IsValid reports whether the record has no errors
func (r *Result) IsValid() bool {
	return len(r.Errors) == 0
}

// Add files an issue under its level
func (r *Result) Add(is Issue) {
	switch is.Level {
	case LevelError:
		r.Errors = append(r.Errors, is)
	case LevelWarning:
		r.Warnings = append(r.Warnings, is)
	default:
		is.Level = LevelInfo
		r.Suggestions = append(r.Suggestions, is)
	}
}

// Issues returns every finding, errors first
func (r *Result) Issues() []Issue {
	out := make([]Issue, 0, len(r.Errors)+len(r.Warnings)+len(r.Suggestions))
	out = append(out, r.Errors...)
	out = append(out, r.Warnings...)
	return append(out, r.Suggestions...)
}

// Report is the serialized form of a Result
type Report struct {
	IsValid         bool    `json:"is_valid" yaml:"is_valid"`
	ErrorCount      int     `json:"error_count" yaml:"error_count"`
	WarningCount    int     `json:"warning_count" yaml:"warning_count"`
	SuggestionCount int     `json:"suggestion_count" yaml:"suggestion_count"`
	Errors          []Issue `json:"errors" yaml:"errors"`
	Warnings        []Issue `json:"warnings" yaml:"warnings"`
	Suggestions     []Issue `json:"suggestions" yaml:"suggestions"`
}

// Report returns the serializable summary. Empty groups are [] rather than null.
func (r *Result) Report() Report {
	return Report{
		IsValid:         r.IsValid(),
		ErrorCount:      len(r.Errors),
		WarningCount:    len(r.Warnings),
		SuggestionCount: len(r.Suggestions),
		Errors:          nonNil(r.Errors),
		Warnings:        nonNil(r.Warnings),
		Suggestions:     nonNil(r.Suggestions),
	}
}

// MarshalJSON renders the result in its Report shape
func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Report())
}

// MarshalYAML renders the result in its Report shape
func (r *Result) MarshalYAML() (interface{}, error) {
	return r.Report(), nil
}

func nonNil(issues []Issue) []Issue {
	if issues == nil {
		return []Issue{}
	}
	return issues
}
