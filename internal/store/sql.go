package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// dialect holds the statements that differ between drivers
type dialect struct {
	name       string
	outputType string
	numbered   bool
}

var (
	sqliteDialect   = dialect{name: "sqlite3", outputType: "BLOB"}
	postgresDialect = dialect{name: "pgx", outputType: "BYTEA", numbered: true}
)

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case "sqlite3", DriverSQLite:
		return sqliteDialect, nil
	case "pgx", "postgres", "postgresql":
		return postgresDialect, nil
	}
	return dialect{}, fmt.Errorf("unsupported sql driver %q", driver)
}

// rebind rewrites ? placeholders into $n for drivers that number them
func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d dialect) schema() []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS pages (
	path TEXT PRIMARY KEY,
	store_path TEXT NOT NULL,
	output %s NOT NULL
)`, d.outputType),
		`CREATE TABLE IF NOT EXISTS entries (
	page_path TEXT NOT NULL,
	position INTEGER NOT NULL,
	name TEXT NOT NULL,
	path TEXT NOT NULL,
	type TEXT NOT NULL,
	PRIMARY KEY (page_path, position)
)`,
	}
}

const (
	upsertPageQuery = `INSERT INTO pages (path, store_path, output) VALUES (?, ?, ?)
ON CONFLICT (path) DO UPDATE SET store_path = excluded.store_path, output = excluded.output`
	deleteEntriesQuery = `DELETE FROM entries WHERE page_path = ?`
	insertEntryQuery   = `INSERT INTO entries (page_path, position, name, path, type) VALUES (?, ?, ?, ?, ?)`
	selectPageQuery    = `SELECT output FROM pages WHERE path = ?`
	selectEntriesQuery = `SELECT e.name, e.path, e.type FROM entries e
JOIN pages p ON p.path = e.page_path
ORDER BY p.rowid, e.position`
	selectEntriesPostgresQuery = `SELECT name, path, type FROM entries ORDER BY page_path = 'index' DESC, page_path, position`
)

// SQLStore keeps pages and entries in a SQLite or PostgreSQL database
type SQLStore struct {
	db      *sql.DB
	dialect dialect
}

// OpenSQL connects to dsn with driver ("sqlite3" or "pgx") and creates the tables
func OpenSQL(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%s output requires a dsn", driver)
	}
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(d.name, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if d == sqliteDialect {
		// in-memory databases exist per connection
		db.SetMaxOpenConns(1)
	}

	s, err := NewSQLStore(ctx, db, driver)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLStore wraps an open database and creates the tables
func NewSQLStore(ctx context.Context, db *sql.DB, driver string) (*SQLStore, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}

	for _, stmt := range d.schema() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return &SQLStore{db: db, dialect: d}, nil
}

// Put upserts the page and replaces its entries in one transaction
func (s *SQLStore) Put(ctx context.Context, page Page) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.dialect.rebind(upsertPageQuery), page.Path, storePath(page), page.Output); err != nil {
		return fmt.Errorf("failed to store page %s: %w", page.Path, err)
	}
	if _, err := tx.ExecContext(ctx, s.dialect.rebind(deleteEntriesQuery), page.Path); err != nil {
		return fmt.Errorf("failed to clear entries of %s: %w", page.Path, err)
	}
	for i, e := range page.Entries {
		if _, err := tx.ExecContext(ctx, s.dialect.rebind(insertEntryQuery), page.Path, i, e.Name, e.Path, e.Type); err != nil {
			return fmt.Errorf("failed to store entry %s: %w", e.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Get returns the output of the page stored at path
func (s *SQLStore) Get(ctx context.Context, path string) ([]byte, error) {
	var output []byte
	err := s.db.QueryRowContext(ctx, s.dialect.rebind(selectPageQuery), path).Scan(&output)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load page %s: %w", path, err)
	}
	return output, nil
}

// Entries returns all entries. SQLite keeps page insertion order; PostgreSQL
// lists the index first, then pages by path.
func (s *SQLStore) Entries(ctx context.Context) ([]Entry, error) {
	query := selectEntriesQuery
	if s.dialect.numbered {
		query = selectEntriesPostgresQuery
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Name, &e.Path, &e.Type); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database
func (s *SQLStore) Close() error {
	return s.db.Close()
}
