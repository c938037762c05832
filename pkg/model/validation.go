package model

// Issue codes raised while decoding and validating table configurations.
const (
	IssueMissingColumns     = "missing_columns"
	IssueMissingLayout      = "missing_layout"
	IssueUnknownLayoutType  = "unknown_layout_type"
	IssueEmptyColumnKey     = "empty_column_key"
	IssueDuplicateColumnKey = "duplicate_column_key"
	IssueInvalidType        = "invalid_type"
	IssueInvalidColumns     = "invalid_columns_per_row"
	IssueInvalidWidth       = "invalid_width"
	IssueWidthOverflow      = "width_overflow"
	IssueUnknownTableType   = "unknown_table_type"
)

// KnownIssue reports whether code is one of the issue codes above.
func KnownIssue(code string) bool {
	switch code {
	case IssueMissingColumns, IssueMissingLayout, IssueUnknownLayoutType, IssueEmptyColumnKey,
		IssueDuplicateColumnKey, IssueInvalidType, IssueInvalidColumns, IssueInvalidWidth,
		IssueWidthOverflow, IssueUnknownTableType:
		return true
	default:
		return false
	}
}

// FieldError describes one structural problem in a configuration.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// ValidationResult is produced once per resolve call and treated as
// immutable afterwards.
type ValidationResult struct {
	Valid    bool         `json:"valid"`
	Errors   []FieldError `json:"errors,omitempty"`
	Warnings []string     `json:"warnings,omitempty"`
}

// Messages flattens the errors into display strings.
func (v ValidationResult) Messages() []string {
	if len(v.Errors) == 0 {
		return nil
	}
	out := make([]string, 0, len(v.Errors))
	for _, err := range v.Errors {
		out = append(out, err.Error())
	}
	return out
}

// Clone deep-copies the result.
func (v ValidationResult) Clone() ValidationResult {
	out := v
	if v.Errors != nil {
		out.Errors = append([]FieldError{}, v.Errors...)
	}
	if v.Warnings != nil {
		out.Warnings = append([]string{}, v.Warnings...)
	}
	return out
}
