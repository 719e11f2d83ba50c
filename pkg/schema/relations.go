package schema

import (
	"reflect"

	"github.com/arthur-debert/mothball/internal/strcase"
	"github.com/arthur-debert/mothball/pkg/errors"
)

// Relation describes a declared association from one record type to
// another. The foreign key names the attribute on the related side that
// references back to the owning type.
type Relation struct {
	Name       string
	TypeName   string
	ForeignKey string
	Singular   bool

	index []int
}

// RelationNames returns the declared relation names in field order
func (s *Schema) RelationNames() []string {
	names := make([]string, len(s.relOrder))
	copy(names, s.relOrder)
	return names
}

// Relation returns the descriptor for a declared relation name
func (s *Schema) Relation(name string) (*Relation, error) {
	rel, ok := s.relations[name]
	if !ok {
		return nil, errors.Newf(errors.ErrUnknownRelation,
			"relation %q is not declared on %s", name, s.name)
	}
	return rel, nil
}

// Related enumerates the current related objects of instance under the
// named relation. Singular relations yield zero or one element; nil
// pointers and nil slice elements are skipped. Every element is
// returned as a pointer to the related struct type.
func (s *Schema) Related(instance interface{}, name string) ([]interface{}, error) {
	rel, err := s.Relation(name)
	if err != nil {
		return nil, err
	}

	v, err := s.structValue(instance)
	if err != nil {
		return nil, err
	}

	field := v.FieldByIndex(rel.index)

	if rel.Singular {
		if field.IsNil() {
			return nil, nil
		}
		return []interface{}{field.Interface()}, nil
	}

	if field.IsNil() || field.Len() == 0 {
		return nil, nil
	}

	related := make([]interface{}, 0, field.Len())
	for i := 0; i < field.Len(); i++ {
		el := field.Index(i)
		if el.Kind() == reflect.Ptr {
			if el.IsNil() {
				continue
			}
			related = append(related, el.Interface())
			continue
		}
		// slice of struct values: elements are addressable through the
		// slice's backing array
		related = append(related, el.Addr().Interface())
	}
	return related, nil
}

// isRelationField reports whether a struct field declares an
// association rather than an attribute
func isRelationField(field reflect.StructField, opts map[string]string) bool {
	if _, forced := opts["attr"]; forced {
		return false
	}
	if _, forced := opts["fk"]; forced {
		return true
	}
	return relatedElem(field.Type) != nil
}

// relatedElem returns the related struct type for a relation-shaped
// field type, or nil when the field is a plain attribute
func relatedElem(t reflect.Type) reflect.Type {
	switch t.Kind() {
	case reflect.Slice:
		return structElem(t.Elem())
	case reflect.Ptr:
		return structElem(t)
	default:
		return nil
	}
}

// structElem unwraps one level of pointer and returns the named struct
// type, excluding time.Time which always behaves as an attribute value
func structElem(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct || t.Name() == "" {
		return nil
	}
	if t == timeType {
		return nil
	}
	return t
}

// buildRelation constructs the descriptor for a relation field
func buildRelation(ownerName, name string, field reflect.StructField, opts map[string]string) (*Relation, error) {
	elem := relatedElem(field.Type)
	if elem == nil {
		return nil, errors.Newf(errors.ErrSchemaInvalid,
			"relation field %q on %s must be a slice of structs or a pointer to one",
			field.Name, ownerName)
	}

	fk := opts["fk"]
	if fk == "" {
		fk = ownerName + "_id"
	}

	return &Relation{
		Name:       name,
		TypeName:   strcase.Snake(elem.Name()),
		ForeignKey: fk,
		Singular:   field.Type.Kind() == reflect.Ptr,
		index:      field.Index,
	}, nil
}
