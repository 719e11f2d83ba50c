package rules

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/mothball/pkg/clone"
	"github.com/arthur-debert/mothball/pkg/errors"
	"github.com/arthur-debert/mothball/pkg/logging"
)

var log = logging.GetLogger("rules")

// Rule is one archival declaration from a rules file
type Rule struct {
	// Type is the registered name of the source record type
	Type string `koanf:"type" json:"type"`

	// Target names the destination type; empty means self
	Target string `koanf:"target" json:"target,omitempty"`

	// Map lists source attributes and their destination names
	Map map[string]string `koanf:"map" json:"map,omitempty"`

	// Include adds attributes or derived accessors to the copy
	Include []string `koanf:"include" json:"include,omitempty"`

	// Exclude removes attributes from the copy
	Exclude []string `koanf:"exclude" json:"exclude,omitempty"`

	// With lists relation names to cascade into
	With []string `koanf:"with" json:"with,omitempty"`
}

// Config converts the rule into a clone configuration
func (r *Rule) Config() clone.Config {
	return clone.Config{
		Target:  r.Target,
		Map:     r.Map,
		Include: r.Include,
		Exclude: r.Exclude,
		With:    r.With,
	}
}

// File is a decoded rules file
type File struct {
	Path  string `json:"path"`
	Rules []Rule `json:"rules"`
}

// Load reads and decodes the rules file at path. The format is chosen
// by extension: .toml, .yaml or .yml.
func Load(path string) (*File, error) {
	parser, err := parserFor(path)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(err, errors.ErrRulesLoad, "reading rules file %s", path)
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, errors.Wrapf(err, errors.ErrRulesParse, "parsing rules file %s", path)
	}

	var decoded []Rule
	if err := k.Unmarshal("rules", &decoded); err != nil {
		return nil, errors.Wrapf(err, errors.ErrRulesParse, "decoding rules file %s", path)
	}

	log.Debug().Str("path", path).Int("rules", len(decoded)).Msg("Loaded rules file")
	return &File{Path: path, Rules: decoded}, nil
}

// Apply declares every rule in the registry, in file order. The first
// failing rule aborts and earlier declarations stay in place.
func (f *File) Apply(registry *clone.Registry) error {
	for i := range f.Rules {
		r := &f.Rules[i]
		if r.Type == "" {
			return errors.Newf(errors.ErrRulesInvalid, "rule %d has no type", i+1)
		}
		if err := registry.Declare(r.Type, r.Config()); err != nil {
			return errors.Wrapf(err, errors.ErrRulesInvalid,
				"rule %d (%s) cannot be declared", i+1, r.Type)
		}
	}
	return nil
}

// parserFor picks the koanf parser matching the file extension
func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Parser(), nil
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	default:
		return nil, errors.Newf(errors.ErrRulesLoad,
			"unsupported rules format %q, use .toml, .yaml or .yml", filepath.Ext(path))
	}
}
