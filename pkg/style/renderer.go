package style

import (
	"fmt"
	"sort"
	"strings"

	"github.com/arthur-debert/mothball/pkg/rules"
)

// Renderer defines the interface for rendering command output
type Renderer interface {
	RenderRules(rs []rules.Rule) string
	RenderIssues(issues []rules.Issue) string
	RenderError(err error) string
}

// TerminalRenderer implements Renderer with rich terminal output
type TerminalRenderer struct {
	width int
}

// NewTerminalRenderer creates a new terminal renderer
func NewTerminalRenderer() *TerminalRenderer {
	return &TerminalRenderer{
		width: 80, // Default width, can be updated
	}
}

// SetWidth updates the terminal width for rendering
func (r *TerminalRenderer) SetWidth(width int) {
	r.width = width
}

// RenderRules renders the archival rules of a loaded rules file
func (r *TerminalRenderer) RenderRules(rs []rules.Rule) string {
	if len(rs) == 0 {
		return MutedStyle.Render("No rules declared")
	}

	var result strings.Builder
	result.WriteString(TitleStyle.Render("Archival rules") + "\n\n")

	for _, rule := range rs {
		header := fmt.Sprintf("%s %s -> %s", InfoIndicator, Bold(rule.Type), targetName(rule))
		result.WriteString(header + "\n")

		for _, line := range ruleDetails(rule) {
			result.WriteString(Indent(MutedStyle.Render(line), 1) + "\n")
		}

		result.WriteString("\n")
	}

	return strings.TrimRight(result.String(), "\n")
}

// RenderIssues renders validation findings, one badge-prefixed line each
func (r *TerminalRenderer) RenderIssues(issues []rules.Issue) string {
	if len(issues) == 0 {
		return SuccessIndicator + " " + SuccessStyle.Render("no problems found")
	}

	var result strings.Builder
	for _, issue := range issues {
		badge := SeverityStyle(issue.Severity).Sprint(" " + strings.ToUpper(string(issue.Severity)) + " ")
		result.WriteString(badge + " ")
		if issue.Rule != "" {
			result.WriteString(Bold(issue.Rule) + ": ")
		}
		result.WriteString(issue.Message + "\n")
	}

	return strings.TrimRight(result.String(), "\n")
}

// RenderError renders an error message
func (r *TerminalRenderer) RenderError(err error) string {
	return ErrorIndicator + " " + ErrorStyle.Render(err.Error())
}

func targetName(rule rules.Rule) string {
	if rule.Target == "" || rule.Target == "self" {
		return "self"
	}
	return rule.Target
}

// ruleDetails lists the non-empty clauses of a rule in declaration order
func ruleDetails(rule rules.Rule) []string {
	var lines []string

	if len(rule.Map) > 0 {
		keys := make([]string, 0, len(rule.Map))
		for key := range rule.Map {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		pairs := make([]string, 0, len(keys))
		for _, key := range keys {
			pairs = append(pairs, key+" -> "+rule.Map[key])
		}
		lines = append(lines, "map: "+strings.Join(pairs, ", "))
	}

	if len(rule.Include) > 0 {
		lines = append(lines, "include: "+strings.Join(rule.Include, ", "))
	}
	if len(rule.Exclude) > 0 {
		lines = append(lines, "exclude: "+strings.Join(rule.Exclude, ", "))
	}
	if len(rule.With) > 0 {
		lines = append(lines, "with: "+strings.Join(rule.With, ", "))
	}

	return lines
}
