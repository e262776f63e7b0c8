package migrations

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/golang-migrate/migrate/v4/database"
)

// DefaultMigrationsTable tracks the applied schema version.
const DefaultMigrationsTable = "schema_migrations"

// ErrNilConfig is returned by WithInstance when config is nil.
var ErrNilConfig = errors.New("no config")

// Config configures the driver.
type Config struct {
	MigrationsTable string
	// NoTxWrap runs each migration outside a transaction.
	NoTxWrap bool
}

// Driver implements database.Driver over an already-open connection.
type Driver struct {
	db     *sql.DB
	locked atomic.Bool
	config *Config
}

var _ database.Driver = (*Driver)(nil)

// WithInstance wraps db and makes sure the version table exists.
func WithInstance(db *sql.DB, config *Config) (database.Driver, error) {
	if config == nil {
		return nil, ErrNilConfig
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	if config.MigrationsTable == "" {
		config.MigrationsTable = DefaultMigrationsTable
	}

	d := &Driver{db: db, config: config}
	if err := d.ensureVersionTable(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Driver) ensureVersionTable() (err error) {
	if err := d.Lock(); err != nil {
		return err
	}
	defer func() { err = errors.Join(err, d.Unlock()) }()

	t := d.config.MigrationsTable
	_, err = d.db.Exec(fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (version uint64, dirty bool);
	CREATE UNIQUE INDEX IF NOT EXISTS version_unique ON %s (version);`, t, t))
	return err
}

// Open is unsupported; connections come in through WithInstance.
func (d *Driver) Open(string) (database.Driver, error) {
	return nil, errors.New("open not supported: use WithInstance")
}

// Close closes the underlying connection.
func (d *Driver) Close() error {
	return d.db.Close()
}

// Lock takes the in-process migration lock.
func (d *Driver) Lock() error {
	if !d.locked.CompareAndSwap(false, true) {
		return database.ErrLocked
	}
	return nil
}

// Unlock releases the in-process migration lock.
func (d *Driver) Unlock() error {
	if !d.locked.CompareAndSwap(true, false) {
		return database.ErrNotLocked
	}
	return nil
}

// Run executes one migration file.
func (d *Driver) Run(migration io.Reader) error {
	body, err := io.ReadAll(migration)
	if err != nil {
		return err
	}
	query := string(body)

	if d.config.NoTxWrap {
		if _, err := d.db.Exec(query); err != nil {
			return &database.Error{OrigErr: err, Query: body}
		}
		return nil
	}
	return d.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(query); err != nil {
			return &database.Error{OrigErr: err, Query: body}
		}
		return nil
	})
}

// SetVersion records version as the current schema version.
func (d *Driver) SetVersion(version int, dirty bool) error {
	t := d.config.MigrationsTable
	return d.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM " + t); err != nil { //nolint:gosec // table name comes from config
			return &database.Error{OrigErr: err, Query: []byte("DELETE FROM " + t)}
		}
		// A dirty NilVersion is kept so a failed first down migration is visible.
		if version >= 0 || (version == database.NilVersion && dirty) {
			q := fmt.Sprintf(`INSERT INTO %s (version, dirty) VALUES (?, ?)`, t)
			if _, err := tx.Exec(q, version, dirty); err != nil {
				return &database.Error{OrigErr: err, Query: []byte(q)}
			}
		}
		return nil
	})
}

// Version returns the current schema version, or NilVersion.
func (d *Driver) Version() (int, bool, error) {
	var (
		version int
		dirty   bool
	)
	q := "SELECT version, dirty FROM " + d.config.MigrationsTable + " LIMIT 1" //nolint:gosec // table name comes from config
	if err := d.db.QueryRow(q).Scan(&version, &dirty); err != nil {
		return database.NilVersion, false, nil
	}
	return version, dirty, nil
}

// Drop removes every table.
func (d *Driver) Drop() error {
	rows, err := d.db.Query(`SELECT name FROM sqlite_master WHERE type = 'table'`)
	if err != nil {
		return err
	}
	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			_ = rows.Close()
			return err
		}
		tables = append(tables, name)
	}
	if err := errors.Join(rows.Err(), rows.Close()); err != nil {
		return err
	}

	for _, name := range tables {
		if err := d.inTx(func(tx *sql.Tx) error {
			_, err := tx.Exec("DROP TABLE " + name) //nolint:gosec // names read from sqlite_master
			return err
		}); err != nil {
			return &database.Error{OrigErr: err, Query: []byte("DROP TABLE " + name)}
		}
	}
	return nil
}

func (d *Driver) inTx(fn func(*sql.Tx) error) error {
	tx, err := d.db.Begin()
	if err != nil {
		return &database.Error{OrigErr: err, Err: "transaction start failed"}
	}
	if err := fn(tx); err != nil {
		return errors.Join(err, tx.Rollback())
	}
	if err := tx.Commit(); err != nil {
		return &database.Error{OrigErr: err, Err: "transaction commit failed"}
	}
	return nil
}
