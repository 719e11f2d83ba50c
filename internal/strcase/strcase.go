// Package strcase converts Go identifier names to their snake_case
// attribute form. Field and method names written in PascalCase map to
// the snake_case names used in clone configurations and rule files.
package strcase

import (
	"strings"
	"unicode"
)

// Snake converts a PascalCase or camelCase identifier to snake_case.
// Acronym runs stay together: "HTTPTimeout" becomes "http_timeout",
// "EmployeeID" becomes "employee_id".
func Snake(name string) string {
	if name == "" {
		return ""
	}

	runes := []rune(name)
	var b strings.Builder
	b.Grow(len(runes) + 4)

	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && needsBoundary(runes, i) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}

// needsBoundary reports whether a word boundary precedes runes[i],
// which is known to be upper case.
func needsBoundary(runes []rune, i int) bool {
	prev := runes[i-1]
	if unicode.IsLower(prev) || unicode.IsDigit(prev) {
		return true
	}
	// An acronym run ends where the next rune is lower case:
	// the "S" in "HTTPServer" starts a new word.
	if unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
		return true
	}
	return false
}
