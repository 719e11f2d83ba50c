package clone

import (
	"fmt"
	"reflect"
	"sort"
	"sync/atomic"

	"github.com/arthur-debert/mothball/pkg/logging"
	"github.com/arthur-debert/mothball/pkg/schema"
)

var log = logging.GetLogger("clone")

// Saver persists receivers produced by clone operations. Save either
// succeeds or returns the failure detail; implementations that assign
// identity on save must write it back to the instance before
// returning, since cascades read the post-save identity.
type Saver interface {
	Save(instance interface{}) error
}

// Cloner executes clone operations against an injected schema set,
// configuration registry, and persistence collaborator. A Cloner is
// stateless between calls apart from the fallback counter and is safe
// for concurrent use.
type Cloner struct {
	schemas   *schema.Set
	configs   *Registry
	store     Saver
	fallbacks atomic.Int64
}

// New creates a Cloner over the given collaborators
func New(schemas *schema.Set, configs *Registry, store Saver) *Cloner {
	return &Cloner{
		schemas: schemas,
		configs: configs,
		store:   store,
	}
}

// ReceiverFallbacks reports how many clone operations fell back to the
// source's own type because the configured target was not resolvable
func (c *Cloner) ReceiverFallbacks() int64 {
	return c.fallbacks.Load()
}

// invocation carries the state of one clone call. A fresh invocation
// is created per source, root or cascaded; the receiver is exclusive
// to it and never shared across siblings.
type invocation struct {
	source     interface{}
	srcSchema  *schema.Schema
	cfg        *Config
	linkage    Attrs
	receiver   interface{}
	recvSchema *schema.Schema
	fellBack   bool
}

// visitKey identifies a record in the visited set carried through a
// cascade. Records with a non-zero identity key on (type, identity);
// unsaved pointer records key on the pointer itself.
type visitKey struct {
	typ string
	ref interface{}
}

// Clone archives one source instance and cascades into its declared
// relations. The source's type must be registered in the schema set
// and have a declared clone configuration.
func (c *Cloner) Clone(source interface{}) error {
	return c.CloneWith(source, nil)
}

// CloneWith clones a source with externally supplied linkage
// attributes. Linkage values are written onto the receiver after the
// attribute copy and overwrite any copied value of the same name.
func (c *Cloner) CloneWith(source interface{}, linkage Attrs) error {
	defer logging.LogOperationStart(log, "clone")()
	return c.execute(source, linkage, make(map[visitKey]bool))
}

// execute runs one invocation. The visited set threads through the
// cascade so a relation graph that returns to an in-progress record
// fails instead of recursing forever.
func (c *Cloner) execute(source interface{}, linkage Attrs, visited map[visitKey]bool) error {
	srcSchema, err := c.schemas.For(source)
	if err != nil {
		return err
	}

	cfg, err := c.configs.Lookup(srcSchema.Name())
	if err != nil {
		return err
	}

	// Blocked clones abort before any other work, silently
	if cfg.Block != nil && cfg.Block(source) {
		log.Debug().Str("type", srcSchema.Name()).Msg("Clone blocked by predicate")
		return nil
	}

	if key, ok := visitKeyFor(source, srcSchema); ok {
		if visited[key] {
			return cycleError(srcSchema, source)
		}
		visited[key] = true
	}

	inv := &invocation{
		source:    source,
		srcSchema: srcSchema,
		cfg:       cfg,
		linkage:   linkage,
	}

	pairs := resolveAttributes(cfg, srcSchema)
	receiver, recvSchema := c.receiverFor(inv)

	for _, p := range pairs {
		value, err := srcSchema.Get(source, p.src)
		if err != nil {
			return err
		}
		if err := recvSchema.Set(receiver, p.dst, value); err != nil {
			return err
		}
	}

	// Linkage writes happen after the attribute copy and may overwrite it
	for _, name := range sortedKeys(linkage) {
		if err := recvSchema.Set(receiver, name, linkage[name]); err != nil {
			return err
		}
	}

	if err := c.store.Save(receiver); err != nil {
		return err
	}

	log.Debug().
		Str("type", srcSchema.Name()).
		Str("receiver", recvSchema.Name()).
		Int("attributes", len(pairs)).
		Bool("fallback", inv.fellBack).
		Msg("Cloned instance")

	return c.cascade(inv, visited)
}

// visitKeyFor derives the visited-set key for a source instance. The
// second result is false when the instance cannot be keyed, in which
// case it is not guarded.
func visitKeyFor(source interface{}, s *schema.Schema) (visitKey, bool) {
	if id, ok := s.Identity(source); ok && id != nil {
		if v := reflect.ValueOf(id); !v.IsZero() {
			return visitKey{typ: s.Name(), ref: fmt.Sprint(id)}, true
		}
	}
	if reflect.TypeOf(source).Kind() == reflect.Ptr {
		return visitKey{typ: s.Name(), ref: source}, true
	}
	return visitKey{}, false
}

func sortedKeys(attrs Attrs) []string {
	if len(attrs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
