package clone_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/mothball/pkg/clone"
	"github.com/arthur-debert/mothball/pkg/errors"
	"github.com/arthur-debert/mothball/pkg/schema"
	"github.com/arthur-debert/mothball/pkg/testutil"
)

type author struct {
	ID      int64
	Name    string
	Profile *profile
}

type profile struct {
	ID       int64
	Bio      string
	AuthorID int64
}

type node struct {
	ID     int64
	Label  string
	NodeID int64
	Peers  []*node
}

type tombstone struct {
	Note string
}

type branch struct {
	ID     int64
	Name   string
	Clerks []*clerk
	Vaults []*vault
}

type clerk struct {
	ID       int64
	Name     string
	BranchID int64
}

type vault struct {
	ID       int64
	Code     string
	BranchID int64
}

// recordingSaver notes the type name of every saved instance
type recordingSaver struct {
	schemas *schema.Set
	order   []string
}

func (r *recordingSaver) Save(instance interface{}) error {
	s, err := r.schemas.For(instance)
	if err != nil {
		return err
	}
	r.order = append(r.order, s.Name())
	return nil
}

func TestCascadeLinksChildrenToPostSaveIdentity(t *testing.T) {
	env := testutil.NewEnv(t)
	env.DeclareArchival()

	// Shift the archive's identity sequence so the new company id cannot
	// collide with the source id
	require.NoError(t, env.Store.Save(&testutil.ArchivedCompany{CompanyName: "seed"}))
	require.NoError(t, env.Store.Save(&testutil.ArchivedCompany{CompanyName: "seed"}))

	err := env.Cloner.Clone(testutil.AcmeCompany())
	require.NoError(t, err)

	require.Equal(t, 3, env.Store.Count("archived_company"))
	parent := env.Store.Records("archived_company")[2]
	assert.Equal(t, int64(3), parent.ID)

	workers := env.Store.Records("archived_employee")
	require.Len(t, workers, 2)
	for _, w := range workers {
		assert.Equal(t, int64(3), w.Attrs["company_id"],
			"children link to the archived identity, not the source's")
	}
}

func TestCascadeHaltsSiblingsOnFailure(t *testing.T) {
	env := testutil.NewEnv(t)
	env.DeclareArchival()
	env.Store.Validate = func(instance interface{}) error {
		if e, ok := instance.(*testutil.ArchivedEmployee); ok && e.FullName == "Maddie Cho" {
			return fmt.Errorf("constraint violation")
		}
		return nil
	}

	company := &testutil.Company{
		ID:   1,
		Name: "Acme",
		Employees: []*testutil.Employee{
			{ID: 10, FullName: "Ana Reyes", Salary: 1000},
			{ID: 11, FullName: "Maddie Cho", Salary: 2000},
			{ID: 12, FullName: "Tom Hale", Salary: 3000},
		},
	}

	err := env.Cloner.Clone(company)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPersistence))

	// The parent and the already processed sibling stay saved; the
	// remaining sibling is never reached
	assert.Equal(t, 1, env.Store.Count("archived_company"))
	require.Equal(t, 1, env.Store.Count("archived_employee"))
	rec := env.Store.Records("archived_employee")[0]
	assert.Equal(t, "Ana Reyes", rec.Attrs["full_name"])
}

func TestCascadeSingularRelation(t *testing.T) {
	env := testutil.NewEnv(t)
	env.Schemas.MustRegister(&author{})
	env.Schemas.MustRegister(&profile{})
	env.Configs.MustDeclare("author", clone.Config{With: []string{"profile"}})
	env.Configs.MustDeclare("profile", clone.Config{})

	src := &author{ID: 5, Name: "M. Duras", Profile: &profile{ID: 9, Bio: "novelist"}}
	require.NoError(t, env.Cloner.Clone(src))

	rec, ok := env.Store.Find("profile", int64(9))
	require.True(t, ok)
	assert.Equal(t, int64(5), rec.Attrs["author_id"])
}

func TestCascadeNilSingularRelation(t *testing.T) {
	env := testutil.NewEnv(t)
	env.Schemas.MustRegister(&author{})
	env.Schemas.MustRegister(&profile{})
	env.Configs.MustDeclare("author", clone.Config{With: []string{"profile"}})
	env.Configs.MustDeclare("profile", clone.Config{})

	require.NoError(t, env.Cloner.Clone(&author{ID: 5, Name: "M. Duras"}))
	assert.Equal(t, 1, env.Store.Count("author"))
	assert.Zero(t, env.Store.Count("profile"))
}

func TestCascadeFollowsDeclaredOrder(t *testing.T) {
	schemas := schema.NewSet()
	schemas.MustRegister(&branch{})
	schemas.MustRegister(&clerk{})
	schemas.MustRegister(&vault{})

	configs := clone.NewRegistry()
	configs.MustDeclare("branch", clone.Config{With: []string{"vaults", "clerks"}})
	configs.MustDeclare("clerk", clone.Config{})
	configs.MustDeclare("vault", clone.Config{})

	rec := &recordingSaver{schemas: schemas}
	cloner := clone.New(schemas, configs, rec)

	src := &branch{
		ID:     1,
		Name:   "downtown",
		Clerks: []*clerk{{ID: 20, Name: "Pat"}},
		Vaults: []*vault{{ID: 30, Code: "V1"}},
	}
	require.NoError(t, cloner.Clone(src))

	// vaults cascade before clerks because the declaration says so,
	// regardless of field order on the struct
	assert.Equal(t, []string{"branch", "vault", "clerk"}, rec.order)
}

func TestCascadeCycleDetected(t *testing.T) {
	env := testutil.NewEnv(t)
	env.Schemas.MustRegister(&node{})
	env.Configs.MustDeclare("node", clone.Config{With: []string{"peers"}})

	a := &node{ID: 1, Label: "a"}
	b := &node{ID: 2, Label: "b"}
	a.Peers = []*node{b}
	b.Peers = []*node{a}

	err := env.Cloner.Clone(a)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCascadeCycle))
	assert.Contains(t, err.Error(), "node")

	// Both nodes were archived before the graph closed on itself
	assert.Equal(t, 2, env.Store.Count("node"))
}

func TestCascadeSelfCycleDetected(t *testing.T) {
	env := testutil.NewEnv(t)
	env.Schemas.MustRegister(&node{})
	env.Configs.MustDeclare("node", clone.Config{With: []string{"peers"}})

	a := &node{ID: 1, Label: "a"}
	a.Peers = []*node{a}

	err := env.Cloner.Clone(a)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCascadeCycle))
	assert.Equal(t, 1, env.Store.Count("node"))
}

func TestCascadeGuardsUnsavedRecordsByPointer(t *testing.T) {
	env := testutil.NewEnv(t)
	env.Schemas.MustRegister(&node{})
	env.Configs.MustDeclare("node", clone.Config{
		Exclude: []string{"id"},
		With:    []string{"peers"},
	})

	a := &node{Label: "a"}
	a.Peers = []*node{a}

	err := env.Cloner.Clone(a)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCascadeCycle))
}

func TestCascadeDistinctUnsavedSiblings(t *testing.T) {
	// Two different unsaved records share a zero identity; the guard
	// must not mistake them for the same node
	env := testutil.NewEnv(t)
	env.Schemas.MustRegister(&node{})
	env.Configs.MustDeclare("node", clone.Config{
		Exclude: []string{"id"},
		With:    []string{"peers"},
	})

	a := &node{Label: "a", Peers: []*node{{Label: "b"}, {Label: "c"}}}

	require.NoError(t, env.Cloner.Clone(a))
	assert.Equal(t, 3, env.Store.Count("node"))
}

func TestCascadeUndeclaredChildType(t *testing.T) {
	env := testutil.NewEnv(t)
	env.Configs.MustDeclare("company", clone.Config{
		Target: "archived_company",
		Map:    map[string]string{"name": "company_name"},
		With:   []string{"employees"},
	})

	err := env.Cloner.Clone(testutil.AcmeCompany())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrTypeNotRegistered))
	assert.Contains(t, err.Error(), "clone configuration")
	assert.Contains(t, err.Error(), `relation "employees"`)

	// The parent saved before the cascade failed
	assert.Equal(t, 1, env.Store.Count("archived_company"))
}

func TestCascadeUnknownRelationName(t *testing.T) {
	env := testutil.NewEnv(t)
	env.Configs.MustDeclare("company", clone.Config{
		Target: "archived_company",
		Map:    map[string]string{"name": "company_name"},
		With:   []string{"minions"},
	})

	err := env.Cloner.Clone(testutil.AcmeCompany())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnknownRelation))
	assert.Contains(t, err.Error(), "minions")
}

func TestCascadeReceiverWithoutIdentity(t *testing.T) {
	env := testutil.NewEnv(t)
	env.Schemas.MustRegister(&author{})
	env.Schemas.MustRegister(&profile{})
	env.Schemas.MustRegister(&tombstone{})
	env.Configs.MustDeclare("author", clone.Config{
		Target: "tombstone",
		Map:    map[string]string{"name": "note"},
		With:   []string{"profile"},
	})
	env.Configs.MustDeclare("profile", clone.Config{})

	src := &author{ID: 5, Name: "M. Duras", Profile: &profile{ID: 9}}
	err := env.Cloner.Clone(src)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrSchemaInvalid))
	assert.Contains(t, err.Error(), "tombstone")
}
