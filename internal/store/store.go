// Package store persists rendered documentation pages and their search entries.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
)

// ErrNotFound is returned when a page is not stored
var ErrNotFound = errors.New("page not found")

// Entry is a search-index record pointing at a page
type Entry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"`
}

// Page is one rendered page
type Page struct {
	Path      string
	StorePath string
	Output    []byte
	Entries   []Entry
}

// Store is the output sink of a scrape run and the backing of the preview server.
// Putting a page twice replaces it.
type Store interface {
	Put(ctx context.Context, page Page) error
	Get(ctx context.Context, path string) ([]byte, error)
	Entries(ctx context.Context) ([]Entry, error)
	Close() error
}

// Driver names accepted by Open
const (
	DriverFS       = "fs"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Drivers lists the known drivers
var Drivers = []string{DriverFS, DriverSQLite, DriverPostgres, DriverRedis}

// Config selects and configures a store
type Config struct {
	Driver string
	Dir    string
	DSN    string
	Redis  RedisConfig
}

// Open creates the store selected by cfg.Driver. fs is only used by the fs driver.
func Open(ctx context.Context, cfg Config, fs afero.Fs) (Store, error) {
	switch cfg.Driver {
	case "", DriverFS:
		if fs == nil {
			fs = afero.NewOsFs()
		}
		return NewFileStore(fs, cfg.Dir)
	case DriverSQLite:
		return OpenSQL(ctx, "sqlite3", cfg.DSN)
	case DriverPostgres:
		return OpenSQL(ctx, "pgx", cfg.DSN)
	case DriverRedis:
		return NewRedisStore(ctx, cfg.Redis)
	default:
		return nil, fmt.Errorf("unknown output driver %q (expected one of %s)", cfg.Driver, strings.Join(Drivers, ", "))
	}
}

// DefaultStorePath is where a page is written when no store path is given
func DefaultStorePath(path string) string {
	return path + ".html"
}

func storePath(page Page) string {
	if page.StorePath != "" {
		return page.StorePath
	}
	return DefaultStorePath(page.Path)
}

// entryList keeps entries grouped by page path in insertion order
type entryList struct {
	order  []string
	byPage map[string][]Entry
}

func newEntryList() *entryList {
	return &entryList{byPage: make(map[string][]Entry)}
}

func (l *entryList) set(path string, entries []Entry) {
	if _, ok := l.byPage[path]; !ok {
		l.order = append(l.order, path)
	}
	l.byPage[path] = append([]Entry(nil), entries...)
}

func (l *entryList) all() []Entry {
	var all []Entry
	for _, path := range l.order {
		all = append(all, l.byPage[path]...)
	}
	if all == nil {
		all = []Entry{}
	}
	return all
}
