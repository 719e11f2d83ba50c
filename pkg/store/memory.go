package store

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/arthur-debert/mothball/pkg/errors"
	"github.com/arthur-debert/mothball/pkg/logging"
	"github.com/arthur-debert/mothball/pkg/schema"
)

var log = logging.GetLogger("store")

// Memory is an in-memory archive sink. Saved instances are stored as
// attribute snapshots grouped by type name, in save order. Instances
// whose identity attribute is zero are assigned the next identity for
// their type before the snapshot is taken.
type Memory struct {
	schemas *schema.Set

	// Validate, when set, runs before each save. A returned error
	// rejects the save and surfaces as a persistence failure.
	Validate func(instance interface{}) error

	mu      sync.RWMutex
	records map[string][]Record
	nextID  map[string]int64
}

// Record is one archived attribute snapshot
type Record struct {
	Type  string
	ID    interface{}
	Attrs map[string]interface{}
}

// NewMemory creates an empty in-memory sink over a schema set
func NewMemory(schemas *schema.Set) *Memory {
	return &Memory{
		schemas: schemas,
		records: make(map[string][]Record),
		nextID:  make(map[string]int64),
	}
}

// Save validates, assigns identity if needed, and snapshots the
// instance's natural attributes
func (m *Memory) Save(instance interface{}) error {
	if m.Validate != nil {
		if err := m.Validate(instance); err != nil {
			return errors.Wrap(err, errors.ErrPersistence, "validation rejected save")
		}
	}

	s, err := m.schemas.For(instance)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id, err := m.assignIdentity(s, instance)
	if err != nil {
		return err
	}

	attrs := make(map[string]interface{}, len(s.AttributeNames()))
	for _, name := range s.AttributeNames() {
		value, err := s.Get(instance, name)
		if err != nil {
			return errors.Wrapf(err, errors.ErrPersistence,
				"reading %q while saving %s", name, s.Name())
		}
		attrs[name] = value
	}

	m.records[s.Name()] = append(m.records[s.Name()], Record{
		Type:  s.Name(),
		ID:    id,
		Attrs: attrs,
	})

	log.Trace().Str("type", s.Name()).Interface("id", id).Msg("Saved record")
	return nil
}

// assignIdentity gives the instance the next identity for its type
// when its current identity is zero, and returns the final identity.
// Only integer identity attributes are auto-assigned; other identity
// kinds are left as the caller set them.
func (m *Memory) assignIdentity(s *schema.Schema, instance interface{}) (interface{}, error) {
	idName := s.IdentityName()
	if idName == "" {
		return nil, nil
	}

	current, ok := s.Identity(instance)
	if !ok || current == nil {
		return current, nil
	}
	v := reflect.ValueOf(current)
	if !v.IsZero() || !isIntegerKind(v.Kind()) {
		return current, nil
	}

	m.nextID[s.Name()]++
	next := m.nextID[s.Name()]
	if err := s.Set(instance, idName, next); err != nil {
		return nil, errors.Wrapf(err, errors.ErrPersistence,
			"assigning identity while saving %s", s.Name())
	}
	id, _ := s.Identity(instance)
	return id, nil
}

func isIntegerKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	default:
		return false
	}
}

// Count returns how many records of a type have been saved
func (m *Memory) Count(typeName string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records[typeName])
}

// Records returns copies of the saved snapshots for a type, in save
// order
func (m *Memory) Records(typeName string) []Record {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Record, len(m.records[typeName]))
	copy(out, m.records[typeName])
	return out
}

// Find returns the first saved record of a type with the given
// identity
func (m *Memory) Find(typeName string, id interface{}) (Record, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	want := fmt.Sprint(id)
	for _, rec := range m.records[typeName] {
		if fmt.Sprint(rec.ID) == want {
			return rec, true
		}
	}
	return Record{}, false
}

// Reset drops all saved records and identity counters
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = make(map[string][]Record)
	m.nextID = make(map[string]int64)
}
