package resolver

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-tablegen/pkg/model"
)

// Severity decides how an issue surfaces in the ValidationResult.
type Severity string

const (
	// SeveritySilent issues are logged at debug level and nothing else.
	SeveritySilent Severity = "silent"
	// SeverityWarning issues land in ValidationResult.Warnings.
	SeverityWarning Severity = "warning"
	// SeverityError issues land in ValidationResult.Errors and flip Valid.
	SeverityError Severity = "error"
)

// SeverityPolicy maps issue codes to severities. Codes without an entry use
// Default, and an empty Default means SeverityError.
type SeverityPolicy struct {
	Default Severity
	Codes   map[string]Severity
}

// DefaultSeverityPolicy keeps coercible issues as warnings and everything
// that loses information as an error. An unknown table type is silent since
// the resolver falls back to the global default.
func DefaultSeverityPolicy() SeverityPolicy {
	return SeverityPolicy{
		Default: SeverityError,
		Codes: map[string]Severity{
			model.IssueUnknownLayoutType:  SeverityWarning,
			model.IssueDuplicateColumnKey: SeverityWarning,
			model.IssueWidthOverflow:      SeverityWarning,
			model.IssueInvalidColumns:     SeverityWarning,
			model.IssueUnknownTableType:   SeveritySilent,
		},
	}
}

// For returns the severity configured for code.
func (p SeverityPolicy) For(code string) Severity {
	if sev, ok := p.Codes[code]; ok && sev.valid() {
		return sev
	}
	if p.Default.valid() {
		return p.Default
	}
	return SeverityError
}

// With returns a copy of the policy with code mapped to sev.
func (p SeverityPolicy) With(code string, sev Severity) SeverityPolicy {
	out := SeverityPolicy{Default: p.Default, Codes: make(map[string]Severity, len(p.Codes)+1)}
	for k, v := range p.Codes {
		out.Codes[k] = v
	}
	out.Codes[code] = sev
	return out
}

// ParseSeverity maps the textual form used in config files.
func ParseSeverity(raw string) (Severity, bool) {
	sev := Severity(strings.ToLower(strings.TrimSpace(raw)))
	return sev, sev.valid()
}

// DefaultKey names the fallback severity in a textual policy.
const DefaultKey = "default"

// PolicyFromMap applies a textual code -> severity table over
// DefaultSeverityPolicy. The DefaultKey entry replaces the policy default.
// Unknown codes and severities are reported together.
func PolicyFromMap(entries map[string]string) (SeverityPolicy, error) {
	policy := DefaultSeverityPolicy()
	codes := make([]string, 0, len(entries))
	for code := range entries {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var errs []error
	for _, code := range codes {
		sev, ok := ParseSeverity(entries[code])
		if !ok {
			errs = append(errs, fmt.Errorf("severity %q for %s must be silent, warning or error", entries[code], code))
			continue
		}
		switch key := strings.TrimSpace(code); {
		case key == DefaultKey:
			policy.Default = sev
		case model.KnownIssue(key):
			policy = policy.With(key, sev)
		default:
			errs = append(errs, fmt.Errorf("unknown issue code %q", code))
		}
	}
	if len(errs) > 0 {
		return SeverityPolicy{}, fmt.Errorf("resolver: severity policy: %w", errors.Join(errs...))
	}
	return policy, nil
}

func (s Severity) valid() bool {
	switch s {
	case SeveritySilent, SeverityWarning, SeverityError:
		return true
	default:
		return false
	}
}
