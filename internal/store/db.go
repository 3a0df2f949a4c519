// Package store persists employers, jobs and snapshots in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound is returned when a job or employer does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNotInitialized is returned when the database file has not been created with Init.
	ErrNotInitialized = errors.New("database not initialized, run `hunt init`")
)

const lockRetryDelay = 50 * time.Millisecond

type DB struct {
	Pool *sql.DB

	path string
	// mu serializes writers in this process; lock serializes processes.
	mu   sync.Mutex
	lock *flock.Flock
	now  func() time.Time
}

// Init creates the database file and its schema. It is safe to run on an
// existing database.
func Init(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	d, err := open(path)
	if err != nil {
		return nil, err
	}
	if err := Migrate(d.Pool); err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return d, nil
}

// Open opens an existing database and upgrades its schema when needed.
func Open(path string) (*DB, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotInitialized, path)
	}

	d, err := open(path)
	if err != nil {
		return nil, err
	}

	v, err := schemaVersion(d.Pool)
	if err != nil {
		_ = d.Close()
		return nil, err
	}
	if v == 0 {
		_ = d.Close()
		return nil, fmt.Errorf("%w: %s", ErrNotInitialized, path)
	}
	if err := Migrate(d.Pool); err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return d, nil
}

func open(path string) (*DB, error) {
	// modernc sqlite uses DSN like: file:foo.db?_pragma=busy_timeout(5000)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)

	pool, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	pool.SetMaxOpenConns(1) // sqlite typically wants 1 writer
	pool.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, err
	}

	return &DB{
		Pool: pool,
		path: path,
		lock: flock.New(path + ".lock"),
		now:  time.Now,
	}, nil
}

func (d *DB) Path() string { return d.path }

func (d *DB) Close() error {
	if d == nil || d.Pool == nil {
		return nil
	}
	return d.Pool.Close()
}

// Update runs fn in a write transaction while holding the database lock file,
// so no other process can resolve against a stale view of the jobs table.
// The transaction is rolled back when fn returns an error.
func (d *DB) Update(ctx context.Context, fn func(tx *Tx) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	locked, err := d.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("lock database: %w", err)
	}
	if !locked {
		return fmt.Errorf("lock database: %s is busy", d.lock.Path())
	}
	defer func() { _ = d.lock.Unlock() }()

	return d.run(ctx, fn)
}

// View runs fn in a transaction that is always rolled back.
func (d *DB) View(ctx context.Context, fn func(tx *Tx) error) error {
	tx, err := d.Pool.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	return fn(&Tx{tx: tx, now: d.now})
}

func (d *DB) run(ctx context.Context, fn func(tx *Tx) error) error {
	tx, err := d.Pool.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&Tx{tx: tx, now: d.now}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Tx is a transaction handle passed to Update and View.
type Tx struct {
	tx  *sql.Tx
	now func() time.Time
}

func (t *Tx) timestamp() string {
	return t.now().UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return ts
}
