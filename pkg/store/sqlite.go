package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"reflect"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/arthur-debert/mothball/pkg/errors"
	"github.com/arthur-debert/mothball/pkg/schema"
)

// sqliteSchema is the archive table: one row per saved record, its
// attributes as a JSON document
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS archives (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	record_type TEXT NOT NULL,
	record_id   TEXT,
	attributes  TEXT NOT NULL,
	archived_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_archives_type ON archives(record_type);
CREATE INDEX IF NOT EXISTS idx_archives_record ON archives(record_type, record_id);
`

// SQLite is an archive sink backed by a SQLite database file. Records
// whose integer identity attribute is zero receive the inserted row id
// as their identity, written back onto the instance.
type SQLite struct {
	schemas *schema.Set
	db      *sql.DB
	mu      sync.Mutex
}

// OpenSQLite opens or creates the archive database at path. Use
// ":memory:" for an in-memory database.
func OpenSQLite(path string, schemas *schema.Set) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrPersistence, "opening sqlite %s", path)
	}

	// Single writer connection avoids SQLITE_BUSY during cascades
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, errors.ErrPersistence, "setting WAL mode")
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, errors.ErrPersistence, "creating archive schema")
	}

	log.Debug().Str("path", path).Msg("Opened archive database")
	return &SQLite{schemas: schemas, db: db}, nil
}

// Close closes the underlying database
func (st *SQLite) Close() error {
	return st.db.Close()
}

// Save inserts the instance's attribute snapshot as an archive row.
// When the instance has an integer identity attribute that is still
// zero, the inserted row id becomes its identity.
func (st *SQLite) Save(instance interface{}) error {
	s, err := st.schemas.For(instance)
	if err != nil {
		return err
	}

	attrs, err := snapshotAttrs(s, instance)
	if err != nil {
		return err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	payload, err := json.Marshal(attrs)
	if err != nil {
		return errors.Wrapf(err, errors.ErrPersistence,
			"encoding attributes of %s", s.Name())
	}

	recordID := identityString(s, instance)
	res, err := st.db.Exec(
		`INSERT INTO archives (record_type, record_id, attributes, archived_at) VALUES (?, ?, ?, ?)`,
		s.Name(), recordID, string(payload), time.Now().UTC(),
	)
	if err != nil {
		return errors.Wrapf(err, errors.ErrPersistence, "inserting %s archive row", s.Name())
	}

	if needsIdentity(s, instance) {
		rowID, err := res.LastInsertId()
		if err != nil {
			return errors.Wrap(err, errors.ErrPersistence, "reading inserted row id")
		}
		if err := st.writeBackIdentity(s, instance, rowID); err != nil {
			return err
		}
	}

	return nil
}

// writeBackIdentity assigns rowID as the instance identity and updates
// the stored row so record_id and the JSON snapshot reflect it
func (st *SQLite) writeBackIdentity(s *schema.Schema, instance interface{}, rowID int64) error {
	if err := s.Set(instance, s.IdentityName(), rowID); err != nil {
		return errors.Wrapf(err, errors.ErrPersistence,
			"assigning identity while saving %s", s.Name())
	}

	attrs, err := snapshotAttrs(s, instance)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(attrs)
	if err != nil {
		return errors.Wrapf(err, errors.ErrPersistence,
			"encoding attributes of %s", s.Name())
	}

	if _, err := st.db.Exec(
		`UPDATE archives SET record_id = ?, attributes = ? WHERE id = ?`,
		identityString(s, instance), string(payload), rowID,
	); err != nil {
		return errors.Wrapf(err, errors.ErrPersistence, "updating %s archive row", s.Name())
	}
	return nil
}

// Count returns how many archive rows exist for a type
func (st *SQLite) Count(typeName string) (int, error) {
	var n int
	err := st.db.QueryRow(
		`SELECT COUNT(*) FROM archives WHERE record_type = ?`, typeName,
	).Scan(&n)
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrPersistence, "counting %s archives", typeName)
	}
	return n, nil
}

// Find loads the attribute snapshot archived for a record
func (st *SQLite) Find(typeName string, id interface{}) (map[string]interface{}, error) {
	var payload string
	err := st.db.QueryRow(
		`SELECT attributes FROM archives WHERE record_type = ? AND record_id = ? ORDER BY id DESC LIMIT 1`,
		typeName, fmt.Sprint(id),
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, errors.Newf(errors.ErrNotFound, "no %s archive for id %v", typeName, id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrPersistence, "loading %s archive", typeName)
	}

	attrs := make(map[string]interface{})
	if err := json.Unmarshal([]byte(payload), &attrs); err != nil {
		return nil, errors.Wrapf(err, errors.ErrPersistence, "decoding %s archive", typeName)
	}
	return attrs, nil
}

// snapshotAttrs reads every natural attribute of instance into a map
func snapshotAttrs(s *schema.Schema, instance interface{}) (map[string]interface{}, error) {
	attrs := make(map[string]interface{}, len(s.AttributeNames()))
	for _, name := range s.AttributeNames() {
		value, err := s.Get(instance, name)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrPersistence,
				"reading %q while saving %s", name, s.Name())
		}
		attrs[name] = value
	}
	return attrs, nil
}

// identityString renders the identity for the record_id column, empty
// when the type has no identity attribute
func identityString(s *schema.Schema, instance interface{}) string {
	id, ok := s.Identity(instance)
	if !ok || id == nil {
		return ""
	}
	return fmt.Sprint(id)
}

// needsIdentity reports whether the instance still needs an identity
// assigned on save
func needsIdentity(s *schema.Schema, instance interface{}) bool {
	if s.IdentityName() == "" {
		return false
	}
	id, ok := s.Identity(instance)
	if !ok || id == nil {
		return false
	}
	v := reflect.ValueOf(id)
	return v.IsZero() && isIntegerKind(v.Kind())
}
