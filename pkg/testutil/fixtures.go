package testutil

import (
	"testing"

	"github.com/arthur-debert/mothball/pkg/clone"
	"github.com/arthur-debert/mothball/pkg/schema"
	"github.com/arthur-debert/mothball/pkg/store"
)

// Company is the canonical parent fixture: a record with sensitive
// attributes worth excluding and a relation worth cascading into.
type Company struct {
	ID          int64
	Name        string
	BankDetails string
	Notes       string
	Employees   []*Employee
}

// ArchivedCompany is the shape companies are archived onto
type ArchivedCompany struct {
	ID          int64
	CompanyName string
	Notes       string
}

// Employee is the canonical child fixture, reached from Company
// through the employees relation.
type Employee struct {
	ID        int64
	FullName  string
	Salary    int64
	CompanyID int64
}

// CalculatedWorth is a derived accessor. Archival configurations can
// include it even though it is not a stored attribute.
func (e *Employee) CalculatedWorth() int64 {
	return e.Salary * 100
}

// ArchivedEmployee is the shape employees are archived onto
type ArchivedEmployee struct {
	ID              int64
	FullName        string
	CalculatedWorth int64
	CompanyID       int64
}

// Env bundles the collaborators a clone test needs: a schema set with
// the fixture types registered, an empty configuration registry, an
// in-memory store, and a cloner wired over all three.
type Env struct {
	Schemas *schema.Set
	Configs *clone.Registry
	Store   *store.Memory
	Cloner  *clone.Cloner
}

// NewEnv creates a fresh test environment with the fixture types
// registered. No clone configurations are declared; call
// DeclareArchival or declare your own.
func NewEnv(t *testing.T) *Env {
	t.Helper()

	schemas := schema.NewSet()
	schemas.MustRegister(&Company{})
	schemas.MustRegister(&ArchivedCompany{})
	schemas.MustRegister(&Employee{})
	schemas.MustRegister(&ArchivedEmployee{})

	configs := clone.NewRegistry()
	mem := store.NewMemory(schemas)

	return &Env{
		Schemas: schemas,
		Configs: configs,
		Store:   mem,
		Cloner:  clone.New(schemas, configs, mem),
	}
}

// DeclareArchival declares the standard archival configurations:
// companies map name to company_name, exclude bank details and cascade
// into employees; employees keep their full name and include the
// derived calculated worth.
func (e *Env) DeclareArchival() {
	e.Configs.MustDeclare("company", clone.Config{
		Target:  "archived_company",
		Map:     map[string]string{"name": "company_name"},
		Exclude: []string{"bank_details"},
		With:    []string{"employees"},
	})
	e.Configs.MustDeclare("employee", clone.Config{
		Target:  "archived_employee",
		Map:     map[string]string{"full_name": "full_name"},
		Include: []string{"calculated_worth"},
	})
}

// AcmeCompany returns a populated company with two employees, the
// standard scenario for cascade tests.
func AcmeCompany() *Company {
	return &Company{
		ID:          1,
		Name:        "Acme",
		BankDetails: "routing 021000021",
		Notes:       "retained for the 2025 audit cycle",
		Employees: []*Employee{
			{ID: 10, FullName: "Grace Field", Salary: 10000, CompanyID: 1},
			{ID: 11, FullName: "Ray Olsen", Salary: 9000, CompanyID: 1},
		},
	}
}
