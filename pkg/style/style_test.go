package style

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arthur-debert/mothball/pkg/rules"
)

func TestTextHelpers(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		style    func(string) string
		contains string
	}{
		{
			name:     "bold text",
			text:     "Hello World",
			style:    Bold,
			contains: "Hello World",
		},
		{
			name:     "italic text",
			text:     "Hello World",
			style:    Italic,
			contains: "Hello World",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.style(tt.text)
			if !strings.Contains(result, tt.contains) {
				t.Errorf("Expected output to contain %q, got %q", tt.contains, result)
			}
		})
	}
}

func TestIndent(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		level    int
		expected string
	}{
		{
			name:     "no indent",
			text:     "Hello",
			level:    0,
			expected: "Hello",
		},
		{
			name:     "single indent",
			text:     "Hello",
			level:    1,
			expected: "  Hello",
		},
		{
			name:     "double indent",
			text:     "Hello",
			level:    2,
			expected: "    Hello",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Indent(tt.text, tt.level)
			if result != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestFormatString(t *testing.T) {
	tests := []struct {
		format   Format
		expected string
	}{
		{FormatAuto, "auto"},
		{FormatTerminal, "term"},
		{FormatText, "text"},
		{FormatJSON, "json"},
		{Format(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.format.String(); got != tt.expected {
			t.Errorf("Format(%d).String() = %q, want %q", tt.format, got, tt.expected)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
		wantErr  bool
	}{
		{"auto", FormatAuto, false},
		{"", FormatAuto, false},
		{"term", FormatTerminal, false},
		{"terminal", FormatTerminal, false},
		{"TEXT", FormatText, false},
		{"plain", FormatText, false},
		{"json", FormatJSON, false},
		{"xml", FormatAuto, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseFormat(%q) expected an error", tt.input)
				}
				return
			}
			if err != nil {
				t.Errorf("ParseFormat(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDetectFormat(t *testing.T) {
	t.Run("no color forces text", func(t *testing.T) {
		t.Setenv("NO_COLOR", "1")
		if got := DetectFormat(os.Stdout); got != FormatText {
			t.Errorf("DetectFormat with NO_COLOR = %v, want %v", got, FormatText)
		}
	})

	t.Run("non terminal output is text", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.txt")
		f, err := os.Create(path)
		if err != nil {
			t.Fatalf("creating temp output: %v", err)
		}
		defer func() { _ = f.Close() }()

		if got := DetectFormat(f); got != FormatText {
			t.Errorf("DetectFormat on a file = %v, want %v", got, FormatText)
		}
	})

	t.Run("resolve keeps explicit formats", func(t *testing.T) {
		if got := FormatJSON.Resolve(os.Stdout); got != FormatJSON {
			t.Errorf("FormatJSON.Resolve = %v, want %v", got, FormatJSON)
		}
	})
}

func TestTerminalRenderer(t *testing.T) {
	renderer := NewTerminalRenderer()

	t.Run("RenderRules", func(t *testing.T) {
		rs := []rules.Rule{
			{
				Type:    "company",
				Target:  "archived_company",
				Map:     map[string]string{"name": "company_name"},
				Exclude: []string{"bank_details"},
				With:    []string{"employees"},
			},
			{Type: "invoice"},
		}

		result := renderer.RenderRules(rs)
		for _, want := range []string{
			"company",
			"archived_company",
			"map: name -> company_name",
			"exclude: bank_details",
			"with: employees",
			"invoice -> self",
		} {
			if !strings.Contains(result, want) {
				t.Errorf("Expected output to contain %q, got:\n%s", want, result)
			}
		}
	})

	t.Run("RenderRules empty", func(t *testing.T) {
		result := renderer.RenderRules(nil)
		if !strings.Contains(result, "No rules declared") {
			t.Errorf("Expected empty notice, got %q", result)
		}
	})

	t.Run("RenderIssues", func(t *testing.T) {
		issues := []rules.Issue{
			{Severity: rules.SeverityError, Rule: "company", Message: "declared more than once"},
			{Severity: rules.SeverityWarning, Message: "something looks off"},
		}

		result := renderer.RenderIssues(issues)
		for _, want := range []string{"ERROR", "WARNING", "company", "declared more than once", "something looks off"} {
			if !strings.Contains(result, want) {
				t.Errorf("Expected output to contain %q, got:\n%s", want, result)
			}
		}
	})

	t.Run("RenderIssues empty", func(t *testing.T) {
		result := renderer.RenderIssues(nil)
		if !strings.Contains(result, "no problems found") {
			t.Errorf("Expected success notice, got %q", result)
		}
	})

	t.Run("RenderError", func(t *testing.T) {
		result := renderer.RenderError(errors.New("rules file is unreadable"))
		if !strings.Contains(result, "rules file is unreadable") {
			t.Errorf("Expected error text, got %q", result)
		}
	})
}
