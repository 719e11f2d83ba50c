// Package schema builds per-type accessor tables over plain Go structs.
//
// A Schema describes one registered record type: its natural attributes
// (exported struct fields), derived accessors (exported zero-argument
// methods), declared relations to other record types, and the identity
// attribute. The table is built once at registration via reflection;
// attribute reads and writes after that are index lookups, never
// name-based dispatch over the reflect API per call.
//
// Field behavior is controlled with the `archive` struct tag:
//
//	type Employee struct {
//		ID        int64  `archive:",identity"`
//		FullName  string `archive:"full_name"`
//		Password  string `archive:"-"`
//		CompanyID int64
//	}
//
//	type Company struct {
//		ID        int64
//		Name      string
//		Employees []*Employee `archive:"employees,fk=company_id"`
//	}
//
// Attribute names default to the snake_case form of the field name, so
// the tags above are mostly illustrative: CompanyID is "company_id"
// without any tag, and a field named ID is the identity attribute by
// default. Slice-of-struct and pointer-to-struct fields are treated as
// relations; the `fk=` option overrides the foreign key attribute name
// on the related side, which defaults to "<owner_type>_id".
package schema
