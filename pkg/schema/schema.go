package schema

import (
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/arthur-debert/mothball/internal/strcase"
	"github.com/arthur-debert/mothball/pkg/errors"
	"github.com/arthur-debert/mothball/pkg/logging"
	"github.com/arthur-debert/mothball/pkg/registry"
)

var log = logging.GetLogger("schema")

// tagKey is the struct tag controlling attribute naming and options
const tagKey = "archive"

// fieldAttr is a natural attribute backed by a struct field
type fieldAttr struct {
	name  string
	index []int
	typ   reflect.Type
}

// methodAttr is a derived attribute backed by a zero-argument method
type methodAttr struct {
	name   string
	method int
	typ    reflect.Type
}

// Schema is the accessor table for one registered record type.
// It is built once at registration and read-only afterwards.
type Schema struct {
	name      string
	goType    reflect.Type
	fields    map[string]*fieldAttr
	order     []string
	derived   map[string]*methodAttr
	relations map[string]*Relation
	relOrder  []string
	identity  string
}

// Name returns the registered type name (snake_case of the Go type name)
func (s *Schema) Name() string {
	return s.name
}

// Type returns the underlying Go struct type
func (s *Schema) Type() reflect.Type {
	return s.goType
}

// New constructs a fresh zero-valued instance, returned as a pointer
// to the schema's struct type
func (s *Schema) New() interface{} {
	return reflect.New(s.goType).Interface()
}

// AttributeNames returns the natural attribute names in field
// declaration order. Derived accessors and relations are not included.
func (s *Schema) AttributeNames() []string {
	names := make([]string, len(s.order))
	copy(names, s.order)
	return names
}

// HasAttribute reports whether name resolves to a natural attribute or
// a derived accessor
func (s *Schema) HasAttribute(name string) bool {
	if _, ok := s.fields[name]; ok {
		return true
	}
	_, ok := s.derived[name]
	return ok
}

// IdentityName returns the name of the identity attribute, or "" when
// the type has none
func (s *Schema) IdentityName() string {
	return s.identity
}

// Get reads the named attribute from instance. Natural attributes read
// the struct field; derived attributes call the accessor method.
func (s *Schema) Get(instance interface{}, name string) (interface{}, error) {
	v, err := s.structValue(instance)
	if err != nil {
		return nil, err
	}

	if f, ok := s.fields[name]; ok {
		return v.FieldByIndex(f.index).Interface(), nil
	}

	if m, ok := s.derived[name]; ok {
		return s.callAccessor(v, m), nil
	}

	return nil, errors.Newf(errors.ErrMissingAttribute,
		"attribute %q not found on %s", name, s.name)
}

// Set writes the named attribute on instance, which must be a pointer
// to the schema's struct type. Derived accessors are not writable.
func (s *Schema) Set(instance interface{}, name string, value interface{}) error {
	v := reflect.ValueOf(instance)
	if v.Kind() != reflect.Ptr || v.IsNil() || v.Elem().Type() != s.goType {
		return errors.Newf(errors.ErrInvalidInput,
			"instance must be a non-nil *%s", s.goType.Name())
	}

	f, ok := s.fields[name]
	if !ok {
		return errors.Newf(errors.ErrMissingAttribute,
			"attribute %q is not writable on %s", name, s.name)
	}

	field := v.Elem().FieldByIndex(f.index)
	if value == nil {
		field.Set(reflect.Zero(f.typ))
		return nil
	}

	val := reflect.ValueOf(value)
	switch {
	case val.Type().AssignableTo(f.typ):
		field.Set(val)
	case val.Type().ConvertibleTo(f.typ):
		field.Set(val.Convert(f.typ))
	default:
		return errors.Newf(errors.ErrAttributeType,
			"cannot assign %s to attribute %q (%s) on %s",
			val.Type(), name, f.typ, s.name)
	}
	return nil
}

// Identity returns the identity attribute value of instance. The second
// result is false when the type declares no identity attribute.
func (s *Schema) Identity(instance interface{}) (interface{}, bool) {
	if s.identity == "" {
		return nil, false
	}
	val, err := s.Get(instance, s.identity)
	if err != nil {
		return nil, false
	}
	return val, true
}

// structValue unwraps instance down to the schema's struct value
func (s *Schema) structValue(instance interface{}) (reflect.Value, error) {
	v := reflect.ValueOf(instance)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return reflect.Value{}, errors.Newf(errors.ErrInvalidInput,
				"nil instance of %s", s.name)
		}
		v = v.Elem()
	}
	if v.Type() != s.goType {
		return reflect.Value{}, errors.Newf(errors.ErrInvalidInput,
			"instance is %s, schema is %s", v.Type(), s.goType)
	}
	return v, nil
}

// callAccessor invokes a derived accessor. The method set was built
// from the pointer type, so value instances are copied to an
// addressable location first.
func (s *Schema) callAccessor(v reflect.Value, m *methodAttr) interface{} {
	var pv reflect.Value
	if v.CanAddr() {
		pv = v.Addr()
	} else {
		pv = reflect.New(s.goType)
		pv.Elem().Set(v)
	}
	results := pv.Method(m.method).Call(nil)
	return results[0].Interface()
}

// Set is a registry of Schemas indexed by type name and by Go type
type Set struct {
	byName registry.Registry[*Schema]

	mu     sync.RWMutex
	byType map[reflect.Type]*Schema
}

// NewSet creates an empty schema registry
func NewSet() *Set {
	return &Set{
		byName: registry.New[*Schema](),
		byType: make(map[reflect.Type]*Schema),
	}
}

// Register builds the schema for prototype's type and adds it to the
// set. The prototype may be a struct value or a pointer to one; only
// its type is inspected.
func (set *Set) Register(prototype interface{}) (*Schema, error) {
	t := reflect.TypeOf(prototype)
	if t == nil {
		return nil, errors.New(errors.ErrInvalidInput, "prototype cannot be nil")
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, errors.Newf(errors.ErrSchemaInvalid,
			"prototype must be a struct type, got %s", t.Kind())
	}

	s, err := buildSchema(t)
	if err != nil {
		return nil, err
	}

	if err := set.byName.Register(s.name, s); err != nil {
		if errors.IsErrorCode(err, errors.ErrAlreadyExists) {
			return nil, errors.Newf(errors.ErrTypeAlreadyRegistered,
				"type %q is already registered", s.name)
		}
		return nil, err
	}

	set.mu.Lock()
	set.byType[t] = s
	set.mu.Unlock()

	log.Debug().
		Str("type", s.name).
		Int("attributes", len(s.order)).
		Int("relations", len(s.relOrder)).
		Msg("Registered schema")

	return s, nil
}

// MustRegister registers prototype and panics on failure. Useful during
// program setup where a bad schema is a programming error.
func (set *Set) MustRegister(prototype interface{}) *Schema {
	s, err := set.Register(prototype)
	if err != nil {
		panic(err)
	}
	return s
}

// ByName returns the schema registered under the given type name
func (set *Set) ByName(name string) (*Schema, error) {
	s, err := set.byName.Get(name)
	if err != nil {
		return nil, errors.Newf(errors.ErrTypeNotRegistered,
			"type %q is not registered", name)
	}
	return s, nil
}

// For returns the schema for instance's dynamic type
func (set *Set) For(instance interface{}) (*Schema, error) {
	t := reflect.TypeOf(instance)
	if t == nil {
		return nil, errors.New(errors.ErrInvalidInput, "instance cannot be nil")
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	set.mu.RLock()
	s, ok := set.byType[t]
	set.mu.RUnlock()

	if !ok {
		return nil, errors.Newf(errors.ErrTypeNotRegistered,
			"type %s is not registered", t)
	}
	return s, nil
}

// Has reports whether a type name is registered
func (set *Set) Has(name string) bool {
	return set.byName.Has(name)
}

// Names returns all registered type names in sorted order
func (set *Set) Names() []string {
	return set.byName.List()
}

var timeType = reflect.TypeOf(time.Time{})

// buildSchema constructs the accessor table for a struct type
func buildSchema(t reflect.Type) (*Schema, error) {
	s := &Schema{
		name:      strcase.Snake(t.Name()),
		goType:    t,
		fields:    make(map[string]*fieldAttr),
		derived:   make(map[string]*methodAttr),
		relations: make(map[string]*Relation),
	}
	if s.name == "" {
		return nil, errors.Newf(errors.ErrSchemaInvalid,
			"cannot register unnamed struct type %s", t)
	}

	var explicitIdentity string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" {
			continue // unexported
		}

		tagName, opts := parseTag(field.Tag.Get(tagKey))
		if tagName == "-" {
			continue
		}

		name := tagName
		if name == "" {
			name = strcase.Snake(field.Name)
		}

		if isRelationField(field, opts) {
			rel, err := buildRelation(s.name, name, field, opts)
			if err != nil {
				return nil, err
			}
			if _, dup := s.relations[rel.Name]; dup {
				return nil, errors.Newf(errors.ErrSchemaInvalid,
					"duplicate relation name %q on %s", rel.Name, s.name)
			}
			s.relations[rel.Name] = rel
			s.relOrder = append(s.relOrder, rel.Name)
			continue
		}

		if _, dup := s.fields[name]; dup {
			return nil, errors.Newf(errors.ErrSchemaInvalid,
				"duplicate attribute name %q on %s", name, s.name)
		}
		s.fields[name] = &fieldAttr{
			name:  name,
			index: field.Index,
			typ:   field.Type,
		}
		s.order = append(s.order, name)

		if _, ok := opts["identity"]; ok {
			if explicitIdentity != "" {
				return nil, errors.Newf(errors.ErrSchemaInvalid,
					"multiple identity attributes on %s", s.name)
			}
			explicitIdentity = name
		}
	}

	switch {
	case explicitIdentity != "":
		s.identity = explicitIdentity
	default:
		if _, ok := s.fields["id"]; ok {
			s.identity = "id"
		}
	}

	// Derived accessors come from the pointer method set, which covers
	// value receiver methods as well
	pt := reflect.PointerTo(t)
	for i := 0; i < pt.NumMethod(); i++ {
		m := pt.Method(i)
		if m.PkgPath != "" {
			continue
		}
		// receiver only, single result
		if m.Type.NumIn() != 1 || m.Type.NumOut() != 1 {
			continue
		}
		name := strcase.Snake(m.Name)
		if _, taken := s.fields[name]; taken {
			continue
		}
		if _, taken := s.relations[name]; taken {
			continue
		}
		s.derived[name] = &methodAttr{
			name:   name,
			method: i,
			typ:    m.Type.Out(0),
		}
	}

	return s, nil
}

// parseTag splits an `archive` tag into its name part and options
func parseTag(tag string) (string, map[string]string) {
	if tag == "" {
		return "", nil
	}
	parts := strings.Split(tag, ",")
	opts := make(map[string]string, len(parts)-1)
	for _, p := range parts[1:] {
		if k, v, found := strings.Cut(p, "="); found {
			opts[k] = v
		} else if p != "" {
			opts[p] = ""
		}
	}
	return parts[0], opts
}
