package clone

import (
	"github.com/arthur-debert/mothball/pkg/errors"
	"github.com/arthur-debert/mothball/pkg/registry"
)

// TargetSelf clones a type onto itself; equivalent to leaving Target empty
const TargetSelf = "self"

// Attrs is a set of attribute values keyed by destination attribute
// name. Parent invocations pass linkage Attrs down so a child clone
// references the newly saved parent.
type Attrs map[string]interface{}

// Predicate gates a clone operation. Returning true blocks the clone
// of that instance and its entire subtree, silently.
type Predicate func(source interface{}) bool

// Config declares how one source type is cloned. The zero value copies
// every natural attribute onto a fresh instance of the source's own
// type with no cascade.
type Config struct {
	// Target names the destination type. Empty or "self" clones onto
	// the source's own type. A target that is not registered at clone
	// time falls back to the source's own type.
	Target string

	// Map lists the source attributes to copy and their destination
	// names. When non-empty it replaces the natural attribute set as
	// the base of the copy; attributes missing from the map are not
	// copied unless listed in Include.
	Map map[string]string

	// Include adds attributes on top of the base set. Entries may name
	// derived accessors that are not part of the natural attribute set.
	Include []string

	// Exclude removes attributes from the copy. Exclusion wins over
	// Map and Include.
	Exclude []string

	// With lists relation names to cascade into, in order.
	With []string

	// Block, when set and returning true for a source instance, skips
	// the clone of that instance and its subtree.
	Block Predicate
}

// Validate checks the declaration for structural problems. Attribute
// existence is not checked here; unresolvable names surface when a
// clone executes.
func (cfg *Config) Validate() error {
	for src, dst := range cfg.Map {
		if src == "" {
			return errors.New(errors.ErrConfigInvalid, "map contains an empty source attribute name")
		}
		if dst == "" {
			return errors.Newf(errors.ErrConfigInvalid,
				"map entry %q has an empty destination attribute name", src)
		}
	}
	for _, name := range cfg.Include {
		if name == "" {
			return errors.New(errors.ErrConfigInvalid, "include contains an empty attribute name")
		}
	}
	for _, name := range cfg.Exclude {
		if name == "" {
			return errors.New(errors.ErrConfigInvalid, "exclude contains an empty attribute name")
		}
	}
	seen := make(map[string]bool, len(cfg.With))
	for _, name := range cfg.With {
		if name == "" {
			return errors.New(errors.ErrConfigInvalid, "with contains an empty relation name")
		}
		if seen[name] {
			return errors.Newf(errors.ErrConfigInvalid,
				"relation %q is listed twice in with", name)
		}
		seen[name] = true
	}
	return nil
}

// copyOf returns a deep copy so declared configurations stay immutable
func (cfg *Config) copyOf() *Config {
	out := &Config{
		Target: cfg.Target,
		Block:  cfg.Block,
	}
	if len(cfg.Map) > 0 {
		out.Map = make(map[string]string, len(cfg.Map))
		for k, v := range cfg.Map {
			out.Map[k] = v
		}
	}
	if len(cfg.Include) > 0 {
		out.Include = append([]string(nil), cfg.Include...)
	}
	if len(cfg.Exclude) > 0 {
		out.Exclude = append([]string(nil), cfg.Exclude...)
	}
	if len(cfg.With) > 0 {
		out.With = append([]string(nil), cfg.With...)
	}
	return out
}

// Registry holds the clone configuration declared for each type name.
// Declarations happen once at setup; the registry is read-only during
// clone execution and safe for concurrent readers.
type Registry struct {
	configs registry.Registry[*Config]
}

// NewRegistry creates an empty configuration registry
func NewRegistry() *Registry {
	return &Registry{
		configs: registry.New[*Config](),
	}
}

// Declare registers the clone configuration for a type name. The
// configuration is copied; later mutation of cfg by the caller has no
// effect on the declared state.
func (r *Registry) Declare(typeName string, cfg Config) error {
	if typeName == "" {
		return errors.New(errors.ErrInvalidInput, "type name cannot be empty")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := r.configs.Register(typeName, cfg.copyOf()); err != nil {
		if errors.IsErrorCode(err, errors.ErrAlreadyExists) {
			return errors.Newf(errors.ErrTypeAlreadyRegistered,
				"clone configuration for %q is already declared", typeName)
		}
		return err
	}
	return nil
}

// MustDeclare declares a configuration and panics on failure
func (r *Registry) MustDeclare(typeName string, cfg Config) {
	if err := r.Declare(typeName, cfg); err != nil {
		panic(err)
	}
}

// Lookup returns the configuration declared for a type name
func (r *Registry) Lookup(typeName string) (*Config, error) {
	cfg, err := r.configs.Get(typeName)
	if err != nil {
		return nil, errors.Newf(errors.ErrTypeNotRegistered,
			"no clone configuration declared for type %q", typeName)
	}
	return cfg, nil
}

// Has reports whether a configuration is declared for a type name
func (r *Registry) Has(typeName string) bool {
	return r.configs.Has(typeName)
}

// Types returns all declared type names in sorted order
func (r *Registry) Types() []string {
	return r.configs.List()
}
