// Package ledgerdb owns the embedded per-wallet ledger database. Each wallet
// has one sqlite file; a handle is opened, used within a single logical
// operation, and closed. Mutations run inside one transaction that Save
// commits; Close discards whatever was not saved.
package ledgerdb

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"

	"github.com/tinoosan/wallet/internal/errs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Handle is a scoped connection to one wallet's ledger file.
// Lifecycle: Closed -> Open -> Closed; any use after Close fails with
// errs.ErrClosed rather than silently no-oping.
type Handle struct {
	db     *sql.DB
	tx     *sql.Tx
	closed bool
}

// dsn builds the sqlite file: URI. sqlite percent-decodes URI paths, so the
// characters that would change the resolved file must be escaped; container
// directories legitimately contain literal % (path-escaped identities).
func dsn(path string) string {
	escaped := strings.NewReplacer("%", "%25", "?", "%3F", "#", "%23").Replace(path)
	return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", escaped)
}

// bootstrap applies the schema migrations on a dedicated connection, so the
// working handle never shares state with the migrate driver.
func bootstrap(path string) error {
	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return fmt.Errorf("open for bootstrap: %w", err)
	}
	defer db.Close()

	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("migrate driver: %w", err)
	}
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migrate source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// Open opens (creating and bootstrapping if needed) the ledger file at path
// and begins the handle's transaction.
func Open(ctx context.Context, path string) (*Handle, error) {
	if err := bootstrap(path); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	db.SetMaxOpenConns(1) // sqlite
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("begin: %w", err)
	}
	return &Handle{db: db, tx: tx}, nil
}

// Exec runs a parameterized statement inside the open transaction. Dynamic
// values must always be bound, never concatenated into the query text.
func (h *Handle) Exec(ctx context.Context, query string, args ...any) error {
	if h.closed {
		return errs.ErrClosed
	}
	if _, err := h.tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	return nil
}

// QueryEach runs a parameterized query and invokes fn once per row. fn scans
// from the rows cursor and must not retain it.
func (h *Handle) QueryEach(ctx context.Context, query string, args []any, fn func(rows *sql.Rows) error) error {
	if h.closed {
		return errs.ErrClosed
	}
	rows, err := h.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Save commits the open transaction to the backing file and begins a new one,
// so the handle can keep serving the same logical operation.
func (h *Handle) Save(ctx context.Context) error {
	if h.closed {
		return errs.ErrClosed
	}
	if err := h.tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	h.tx = tx
	return nil
}

// Close rolls back unsaved work and releases the handle. Closing twice is an
// error; every call site is expected to close exactly once on all exit paths.
func (h *Handle) Close() error {
	if h.closed {
		return errs.ErrClosed
	}
	h.closed = true
	_ = h.tx.Rollback()
	if err := h.db.Close(); err != nil {
		return fmt.Errorf("close ledger: %w", err)
	}
	return nil
}
