// Package rules loads archival rule files and turns them into clone
// configuration declarations.
//
// A rules file is a TOML or YAML document with a list of rules, one
// per record type:
//
//	[[rules]]
//	type = "company"
//	target = "archived_company"
//	exclude = ["bank_details"]
//	with = ["employees"]
//
//	[rules.map]
//	name = "company_name"
//
// Load reads and decodes a file, Validate reports structural problems
// and suspicious declarations, and Apply declares every rule in a
// clone registry. Block predicates are code, not data; they cannot be
// expressed in a rules file and are attached through the registry API.
package rules
