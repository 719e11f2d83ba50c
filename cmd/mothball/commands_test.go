package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/mothball/pkg/rules"
	"github.com/arthur-debert/mothball/pkg/testutil"
)

const validRules = `
[[rules]]
type = "company"
target = "archived_company"
exclude = ["bank_details"]
with = ["employees"]

[rules.map]
name = "company_name"

[[rules]]
type = "employee"
target = "archived_employee"
include = ["calculated_worth"]
`

const brokenRules = `
[[rules]]
target = "archived_company"

[[rules]]
type = "employee"

[[rules]]
type = "employee"
`

// runCommand executes the CLI against a buffer, so auto format resolves
// to plain text
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd := NewRootCmd()
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

func chdir(t *testing.T, dir string) {
	t.Helper()

	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(orig) })
}

func TestValidateCommandCleanFile(t *testing.T) {
	path := testutil.CreateFile(t, t.TempDir(), "rules.toml", validRules)

	out, err := runCommand(t, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "no problems found")
}

func TestValidateCommandReportsErrors(t *testing.T) {
	path := testutil.CreateFile(t, t.TempDir(), "rules.toml", brokenRules)

	out, err := runCommand(t, "validate", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 error(s)")
	assert.Contains(t, out, "has no type")
	assert.Contains(t, out, "declared more than once")
}

func TestValidateCommandJSON(t *testing.T) {
	t.Run("findings", func(t *testing.T) {
		path := testutil.CreateFile(t, t.TempDir(), "rules.toml", brokenRules)

		out, err := runCommand(t, "validate", path, "--format", "json")
		require.Error(t, err)

		var issues []rules.Issue
		require.NoError(t, json.Unmarshal([]byte(out), &issues))
		require.Len(t, issues, 2)
		assert.Equal(t, rules.SeverityError, issues[0].Severity)
	})

	t.Run("clean file is an empty array", func(t *testing.T) {
		path := testutil.CreateFile(t, t.TempDir(), "rules.toml", validRules)

		out, err := runCommand(t, "validate", path, "--format", "json")
		require.NoError(t, err)
		assert.Equal(t, "[]", strings.TrimSpace(out))
	})
}

func TestValidateCommandMissingFile(t *testing.T) {
	absent := filepath.Join(t.TempDir(), "absent.toml")

	_, err := runCommand(t, "validate", absent)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absent.toml")
}

func TestValidateCommandFindsLocalFile(t *testing.T) {
	dir := t.TempDir()
	testutil.CreateFile(t, dir, "mothball.toml", validRules)
	chdir(t, dir)
	t.Setenv("MOTHBALL_RULES", "")

	out, err := runCommand(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "no problems found")
}

func TestShowCommandListsRules(t *testing.T) {
	path := testutil.CreateFile(t, t.TempDir(), "rules.toml", validRules)

	out, err := runCommand(t, "show", path)
	require.NoError(t, err)
	assert.Contains(t, out, "company -> archived_company")
	assert.Contains(t, out, "employee -> archived_employee")
}

func TestShowCommandJSON(t *testing.T) {
	path := testutil.CreateFile(t, t.TempDir(), "rules.toml", validRules)

	out, err := runCommand(t, "show", path, "--format", "json")
	require.NoError(t, err)

	var decoded rules.File
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, path, decoded.Path)
	require.Len(t, decoded.Rules, 2)
	assert.Equal(t, "company_name", decoded.Rules[0].Map["name"])
	assert.Equal(t, []string{"calculated_worth"}, decoded.Rules[1].Include)
}

func TestInitCommandWritesStarter(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "mothball.toml")

	out, err := runCommand(t, "init", "-o", dest)
	require.NoError(t, err)
	assert.Contains(t, out, "Created rules file")

	loaded, err := rules.Load(dest)
	require.NoError(t, err)
	assert.Len(t, loaded.Rules, 2)

	_, err = runCommand(t, "init", "-o", dest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refusing to overwrite")
}

func TestInitCommandDefaultNames(t *testing.T) {
	chdir(t, t.TempDir())

	_, err := runCommand(t, "init")
	require.NoError(t, err)
	assert.True(t, testutil.FileExists(t, "mothball.toml"))

	_, err = runCommand(t, "init", "yaml")
	require.NoError(t, err)

	loaded, err := rules.Load("mothball.yaml")
	require.NoError(t, err)
	assert.Len(t, loaded.Rules, 2)
}

func TestInitCommandRejectsUnknownFormat(t *testing.T) {
	_, err := runCommand(t, "init", "json", "-o", filepath.Join(t.TempDir(), "out.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "json")
}

func TestDocsCommand(t *testing.T) {
	out, err := runCommand(t, "docs")
	require.NoError(t, err)
	assert.Contains(t, out, "[[rules]]")
	assert.Contains(t, out, "MOTHBALL_RULES")
}

func TestVersionCommand(t *testing.T) {
	out, err := runCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "mothball version")
}

func TestRootCommandRequiresSubcommand(t *testing.T) {
	_, err := runCommand(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no command specified")
}
