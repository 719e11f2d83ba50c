package rules

import (
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/mothball/pkg/errors"
)

// starterHeader tops every generated rules file
const starterHeader = `# mothball rules
#
# Each rule declares how one record type is archived. Attribute and
# type names are snake_case. Run "mothball docs" for the full format.

`

// starterRule mirrors Rule with the tags the file encoders need
type starterRule struct {
	Type    string            `toml:"type" yaml:"type"`
	Target  string            `toml:"target,omitempty" yaml:"target,omitempty"`
	Map     map[string]string `toml:"map,omitempty" yaml:"map,omitempty"`
	Include []string          `toml:"include,omitempty" yaml:"include,omitempty"`
	Exclude []string          `toml:"exclude,omitempty" yaml:"exclude,omitempty"`
	With    []string          `toml:"with,omitempty" yaml:"with,omitempty"`
}

type starterDoc struct {
	Rules []starterRule `toml:"rules" yaml:"rules"`
}

// starter is the worked example written by "mothball init"
var starter = starterDoc{
	Rules: []starterRule{
		{
			Type:    "company",
			Target:  "archived_company",
			Map:     map[string]string{"name": "company_name"},
			Exclude: []string{"bank_details"},
			With:    []string{"employees"},
		},
		{
			Type:    "employee",
			Target:  "archived_employee",
			Include: []string{"calculated_worth"},
		},
	},
}

// Starter renders the starter rules file for a format, one of "toml",
// "yaml" or "yml"
func Starter(format string) ([]byte, error) {
	var (
		encoded []byte
		err     error
	)

	switch strings.ToLower(format) {
	case "toml":
		encoded, err = toml.Marshal(starter)
	case "yaml", "yml":
		encoded, err = yaml.Marshal(starter)
	default:
		return nil, errors.Newf(errors.ErrInvalidInput,
			"unknown rules format %q, use toml or yaml", format)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "encoding starter rules")
	}

	return append([]byte(starterHeader), encoded...), nil
}
