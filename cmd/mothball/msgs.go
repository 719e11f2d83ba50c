package main

import (
	_ "embed"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort     = "Declarative record archival"
	MsgValidateShort = "Check a rules file for problems"
	MsgShowShort     = "Show the rules a file declares"
	MsgInitShort     = "Create a starter rules file"
	MsgDocsShort     = "Explain the rules file format"
	MsgVersionShort  = "Print version information"

	// Flag descriptions
	MsgFlagVerbose = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagFormat  = "Output format: auto, term, text or json"
	MsgFlagOutput  = "Destination path for the new rules file"

	// Status messages
	MsgRulesValid  = "no problems found"
	MsgInitCreated = "Created rules file %s\n"

	// Error messages
	MsgErrRulesInvalid = "rules file %s has %d error(s)"
	MsgErrInitExists   = "refusing to overwrite %s"
)

// Long messages
const (
	MsgRootLong = `mothball copies records into archive types, driven by declarative
rules. A rule picks the attributes the copy carries and the relations
that are archived along with their parent.

Rules live in a TOML or YAML file. Run "mothball init" to create one
and "mothball docs" for the format reference.`

	MsgValidateLong = `Validate loads a rules file and reports structural errors and
suspicious mappings without touching any records.

The file is looked up like every other command: an explicit path wins,
then the MOTHBALL_RULES environment variable, then the default
locations listed in "mothball docs".`

	MsgShowLong = `Show prints the archival rules a file declares, one entry per source
type with its target, attribute mapping and cascade relations.`

	MsgInitLong = `Init writes a starter rules file with two worked examples in the
current directory. Pass "yaml" for a YAML file instead of TOML.`
)

//go:embed docs/rules-format.md
var docsRulesFormat string
