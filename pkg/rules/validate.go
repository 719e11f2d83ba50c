package rules

import (
	"fmt"
	"sort"
	"strings"
)

// Severity classifies a validation issue
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one finding from validating a rules file
type Issue struct {
	Severity Severity `json:"severity"`
	Rule     string   `json:"rule,omitempty"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	if i.Rule == "" {
		return fmt.Sprintf("%s: %s", i.Severity, i.Message)
	}
	return fmt.Sprintf("%s: rule %q: %s", i.Severity, i.Rule, i.Message)
}

// HasErrors reports whether any issue is an error
func HasErrors(issues []Issue) bool {
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate checks the file without touching a registry. Errors would
// make Apply fail; warnings are declarations that are legal but
// probably not what the author meant.
func (f *File) Validate() []Issue {
	var issues []Issue

	seen := make(map[string]bool, len(f.Rules))
	for i := range f.Rules {
		r := &f.Rules[i]

		if r.Type == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Message:  fmt.Sprintf("rule %d has no type", i+1),
			})
			continue
		}
		if seen[r.Type] {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Rule:     r.Type,
				Message:  "declared more than once",
			})
		}
		seen[r.Type] = true

		cfg := r.Config()
		if err := cfg.Validate(); err != nil {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Rule:     r.Type,
				Message:  err.Error(),
			})
		}

		issues = append(issues, r.warnings()...)
	}

	return issues
}

// warnings reports declarations that resolve in surprising ways
func (r *Rule) warnings() []Issue {
	var issues []Issue

	// several sources landing on one destination: the later copy wins
	byDest := make(map[string][]string, len(r.Map))
	for src, dst := range r.Map {
		byDest[dst] = append(byDest[dst], src)
	}
	dests := make([]string, 0, len(byDest))
	for dst := range byDest {
		dests = append(dests, dst)
	}
	sort.Strings(dests)
	for _, dst := range dests {
		srcs := byDest[dst]
		if len(srcs) > 1 {
			sort.Strings(srcs)
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Rule:     r.Type,
				Message: fmt.Sprintf("attributes %s all map to %q; the last copy wins",
					strings.Join(srcs, ", "), dst),
			})
		}
	}

	// an include cancelled by an exclude never copies
	excluded := make(map[string]bool, len(r.Exclude))
	for _, name := range r.Exclude {
		excluded[name] = true
	}
	for _, name := range r.Include {
		if excluded[name] {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Rule:     r.Type,
				Message:  fmt.Sprintf("include %q is cancelled by an exclude of the same name", name),
			})
		}
	}

	return issues
}
