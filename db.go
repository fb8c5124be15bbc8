package cfdb

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// System column families, created by Init next to the caller's indexes.
const (
	CFSystem         = "cf.system"
	CFSystemTypes    = "cf.system.types"
	CFSystemCounters = "cf.system.counters"
)

var systemFamilies = []string{CFSystem, CFSystemTypes, CFSystemCounters}

type Engine string

const (
	EngineBolt   Engine = "bolt"
	EngineBadger Engine = "badger"
	EngineMemory Engine = "memory"
)

const defaultTimeout = 10 * time.Second

type Options struct {
	// Engine selects the storage backend; bolt by default. The memory
	// engine keeps nothing across Close.
	Engine Engine
	Logger *slog.Logger
	// Verbose enables per-operation debug records.
	Verbose bool
	// Timeout bounds waiting for the bolt file lock.
	Timeout  time.Duration
	NoSync   bool
	MmapSize int
	// Now is the clock used for history index suffixes and creation stamps.
	Now func() time.Time
}

func (opt Options) engine() Engine {
	if opt.Engine == "" {
		return EngineBolt
	}
	return opt.Engine
}

func (opt Options) timeout() time.Duration {
	if opt.Timeout == 0 {
		return defaultTimeout
	}
	return opt.Timeout
}

// DbInfo tells Init and OpenDB where the database lives and how to open it.
type DbInfo interface {
	Path() string
	Options() Options
}

// Dir is the simplest DbInfo: a path with default options.
type Dir string

func (d Dir) Path() string      { return string(d) }
func (d Dir) Options() Options { return Options{} }

// IndexBuilder names the column families a database must carry.
type IndexBuilder interface {
	CFNames() []string
}

// Families is an IndexBuilder listing column families explicitly.
type Families []string

func (f Families) CFNames() []string { return f }

// Combine merges several IndexBuilders, dropping duplicate names.
func Combine(builders ...IndexBuilder) Families {
	var out Families
	for _, b := range builders {
		for _, name := range b.CFNames() {
			if !slices.Contains(out, name) {
				out = append(out, name)
			}
		}
	}
	return out
}

type Database struct {
	st      storage
	path    string
	engine  Engine
	logger  *slog.Logger
	verbose bool
	now     func() time.Time

	stampMu   sync.Mutex
	lastStamp int64

	famMu    sync.RWMutex
	families map[string]bool

	closed     atomic.Bool
	ReadCount  atomic.Uint64
	WriteCount atomic.Uint64
}

// Init opens the database at info.Path(), creating the directory and every
// missing column family named by indexes plus the system families.
func Init(info DbInfo, indexes IndexBuilder) (*Database, error) {
	db, err := open(info)
	if err != nil {
		return nil, err
	}
	want := allFamilies(indexes)
	err = db.update(func(tx *Tx) error {
		for _, name := range want {
			b, err := tx.stx.Bucket(name)
			if err != nil {
				return err
			}
			if b != nil {
				db.logger.Info("found column family", "cf", name)
				continue
			}
			db.logger.Info("creating column family", "cf", name)
			if _, err := tx.stx.CreateBucket(name); err != nil {
				return indexErrf(name, nil, err, "creating column family")
			}
		}
		return nil
	})
	if err == nil {
		err = db.loadFamilies()
	}
	if err != nil {
		db.st.Close()
		return nil, err
	}
	return db, nil
}

// OpenDB opens an existing database. It never creates column families and
// fails with ErrMissingIndex naming the first one that is absent.
func OpenDB(info DbInfo, indexes IndexBuilder) (*Database, error) {
	db, err := open(info)
	if err != nil {
		return nil, err
	}
	err = db.loadFamilies()
	if err == nil {
		for _, name := range allFamilies(indexes) {
			if !db.HasColumnFamily(name) {
				err = indexErrf(name, nil, ErrMissingIndex, "opening %s", db.path)
				break
			}
		}
	}
	if err != nil {
		db.st.Close()
		return nil, err
	}
	return db, nil
}

// ListColumnFamilies lists the column families present in an existing database.
func ListColumnFamilies(info DbInfo) ([]string, error) {
	path := info.Path()
	if _, err := os.Stat(dirOf(path)); err != nil && info.Options().engine() != EngineMemory {
		return nil, err
	}
	db, err := open(info)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return db.ColumnFamilies()
}

func allFamilies(indexes IndexBuilder) []string {
	var names []string
	if indexes != nil {
		names = indexes.CFNames()
	}
	return Combine(Families(names), Families(systemFamilies))
}

func open(info DbInfo) (*Database, error) {
	path := info.Path()
	opt := info.Options()
	if err := checkPath(path); err != nil {
		return nil, err
	}
	dir := dirOf(path)
	if opt.engine() != EngineMemory {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	st, err := openStorage(dir, opt)
	if err != nil {
		return nil, err
	}

	logger := opt.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opt.Now
	if now == nil {
		now = time.Now
	}
	return &Database{
		st:       st,
		path:     path,
		engine:   opt.engine(),
		logger:   logger.With("db", path),
		verbose:  opt.Verbose,
		now:      now,
		families: make(map[string]bool),
	}, nil
}

func dirOf(path string) string {
	if path == "" {
		return "."
	}
	return path
}

// checkPath rejects paths naming a regular file or a symlink. A missing path
// is fine; it will be created.
func checkPath(path string) error {
	if path == "" {
		return nil
	}
	fi, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	} else if err != nil {
		return err
	}
	if fi.Mode()&fs.ModeSymlink != 0 {
		return &PathError{Path: path, Symlink: true}
	}
	if fi.Mode().IsRegular() {
		return &PathError{Path: path}
	}
	return nil
}

func (db *Database) loadFamilies() error {
	var names []string
	err := db.Read(func(tx *Tx) error {
		var err error
		names, err = tx.stx.BucketNames()
		return err
	})
	if err != nil {
		return err
	}
	db.famMu.Lock()
	defer db.famMu.Unlock()
	clear(db.families)
	for _, name := range names {
		db.families[name] = true
	}
	return nil
}

func (db *Database) Path() string   { return db.path }
func (db *Database) Engine() Engine { return db.engine }

// Now returns the database clock.
func (db *Database) Now() time.Time { return db.now() }

// historyStamp returns the clock in Unix nanoseconds, bumped past the last
// stamp handed out so history keys written by this handle never collide.
func (db *Database) historyStamp() int64 {
	n := db.now().UnixNano()
	db.stampMu.Lock()
	defer db.stampMu.Unlock()
	if n <= db.lastStamp {
		n = db.lastStamp + 1
	}
	db.lastStamp = n
	return n
}

func (db *Database) Logger() *slog.Logger { return db.logger }

func (db *Database) HasColumnFamily(name string) bool {
	db.famMu.RLock()
	defer db.famMu.RUnlock()
	return db.families[name]
}

// ColumnFamilies lists the column families in name order.
func (db *Database) ColumnFamilies() ([]string, error) {
	var names []string
	err := db.Read(func(tx *Tx) error {
		var err error
		names, err = tx.stx.BucketNames()
		return err
	})
	return names, err
}

func (db *Database) Close() error {
	if !db.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := db.st.Close(); err != nil {
		return fmt.Errorf("cfdb: closing: %w", err)
	}
	return nil
}

func (db *Database) trace(msg string, args ...any) {
	if db.verbose {
		db.logger.Debug(msg, args...)
	}
}
