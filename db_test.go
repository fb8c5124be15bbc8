package cfdb

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"sync"
	"testing"
	"time"
)

type Widget struct {
	ID    uint64 `msgpack:"id"`
	Name  string `msgpack:"n"`
	Color string `msgpack:"c"`
}

func (*Widget) TypeName() string { return "Widget" }

func (w *Widget) Key() (uint64, bool) { return w.ID, w.ID > 0 }

func (w *Widget) Encode() ([]byte, error) { return MsgPack.Marshal(w) }

const (
	cfWidgetID    = "index.widget.id"
	cfWidgetName  = "index.widget.name"
	cfWidgetColor = "index.widget.color"
)

type widgetsByID struct{ Replacing }

func (widgetsByID) CFName() string { return cfWidgetID }
func (widgetsByID) KeyValue(w *Widget) ([]byte, []byte, error) {
	v, err := w.Encode()
	return Uint64Bytes(w.ID), v, err
}

type widgetsByName struct{ Replacing }

func (widgetsByName) CFName() string { return cfWidgetName }
func (widgetsByName) KeyValue(w *Widget) ([]byte, []byte, error) {
	return []byte(w.Name), Uint64Bytes(w.ID), nil
}

type widgetsByColor struct{ History }

func (widgetsByColor) CFName() string { return cfWidgetColor }
func (widgetsByColor) KeyValue(w *Widget) ([]byte, []byte, error) {
	return []byte(w.Color), Uint64Bytes(w.ID), nil
}

var widgetIndexes = IndexSet[*Widget]{widgetsByID{}, widgetsByName{}, widgetsByColor{}}

type widgetHelper struct{}

func (widgetHelper) ValueIndex() Index[*Widget] { return widgetsByID{} }
func (widgetHelper) Indexes() IndexSet[*Widget] { return widgetIndexes }

func (widgetHelper) BeforePut(reg *Registry, w *Widget) error {
	if w.ID != 0 {
		return nil
	}
	id, err := reg.NextID()
	if err != nil {
		return err
	}
	w.ID = id
	return nil
}

func (widgetHelper) Decode(key, value []byte) (*Widget, error) {
	w := new(Widget)
	if err := MsgPack.Unmarshal(value, w); err != nil {
		return nil, err
	}
	return w, nil
}

func widgets(db *Database) *Operations[uint64, *Widget] {
	return NewOperations[uint64, *Widget](db, Uint64Key{}, widgetHelper{}, nil)
}

var engines = []Engine{EngineMemory, EngineBolt, EngineBadger}

type testInfo struct {
	path string
	opt  Options
}

func (ti testInfo) Path() string     { return ti.path }
func (ti testInfo) Options() Options { return ti.opt }

func testOptions(engine Engine) Options {
	return Options{Engine: engine, NoSync: true, Now: fakeClock()}
}

// fakeClock returns a clock that advances by one millisecond per call.
func fakeClock() func() time.Time {
	var mu sync.Mutex
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Millisecond)
		return now
	}
}

func setup(t testing.TB, engine Engine) *Database {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "db")
	t.Logf("DB: %s (%s)", dir, engine)
	db := must(Init(testInfo{dir, testOptions(engine)}, Combine(widgetIndexes, PairIndexes)))
	t.Cleanup(func() { db.Close() })
	return db
}

func forEachEngine(t *testing.T, f func(t *testing.T, db *Database)) {
	for _, engine := range engines {
		t.Run(string(engine), func(t *testing.T) {
			f(t, setup(t, engine))
		})
	}
}

func TestInit_CreatesFamilies(t *testing.T) {
	forEachEngine(t, func(t *testing.T, db *Database) {
		names := must(db.ColumnFamilies())
		for _, want := range []string{cfWidgetID, cfWidgetName, cfWidgetColor, CFPairs, CFSystem, CFSystemTypes, CFSystemCounters} {
			if !slices.Contains(names, want) {
				t.Errorf("** %q missing from %v", want, names)
			}
			if !db.HasColumnFamily(want) {
				t.Errorf("** HasColumnFamily(%q) = false, wanted true", want)
			}
		}
		if db.HasColumnFamily("index.nope") {
			t.Errorf("** HasColumnFamily(index.nope) = true, wanted false")
		}
	})
}

func TestInit_Idempotent(t *testing.T) {
	for _, engine := range []Engine{EngineBolt, EngineBadger} {
		t.Run(string(engine), func(t *testing.T) {
			info := testInfo{t.TempDir(), testOptions(engine)}
			db := must(Init(info, widgetIndexes))
			ok(t, db.Close())
			db = must(Init(info, widgetIndexes))
			defer db.Close()
			deepEqual(t, len(must(db.ColumnFamilies())), len(widgetIndexes)+len(systemFamilies))
		})
	}
}

func TestOpenDB_Reopen(t *testing.T) {
	for _, engine := range []Engine{EngineBolt, EngineBadger} {
		t.Run(string(engine), func(t *testing.T) {
			info := testInfo{t.TempDir(), testOptions(engine)}
			db := must(Init(info, widgetIndexes))
			id := must(widgets(db).Put(&Widget{Name: "foo", Color: "red"}))
			ok(t, db.Close())

			db = must(OpenDB(info, widgetIndexes))
			defer db.Close()
			w, found := must2(widgets(db).Get(id))
			if !found {
				t.Fatalf("** widget %v not found after reopen", id)
			}
			deepEqual(t, *w, Widget{ID: 1, Name: "foo", Color: "red"})
		})
	}
}

func TestOpenDB_MissingFamily(t *testing.T) {
	info := testInfo{t.TempDir(), testOptions(EngineBolt)}
	db := must(Init(info, IndexSet[*Widget]{widgetsByID{}}))
	ok(t, db.Close())

	_, err := OpenDB(info, widgetIndexes)
	if !errors.Is(err, ErrMissingIndex) {
		t.Fatalf("OpenDB err = %v, wanted ErrMissingIndex", err)
	}
	var ie *IndexError
	if !errors.As(err, &ie) || ie.CF != cfWidgetName {
		t.Fatalf("OpenDB err = %v, wanted IndexError for %s", err, cfWidgetName)
	}

	// the failed open must release the file lock
	db = must(Init(info, widgetIndexes))
	ok(t, db.Close())
}

func TestInit_BadPath(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	ok(t, os.WriteFile(file, []byte("x"), 0o644))

	_, err := Init(Dir(file), widgetIndexes)
	var pe *PathError
	if !errors.Is(err, ErrBadDbPath) || !errors.As(err, &pe) || pe.Symlink {
		t.Fatalf("Init(file) err = %v, wanted PathError for a file", err)
	}

	link := filepath.Join(dir, "link")
	ok(t, os.Symlink(t.TempDir(), link))
	_, err = Init(Dir(link), widgetIndexes)
	if !errors.As(err, &pe) || !pe.Symlink {
		t.Fatalf("Init(symlink) err = %v, wanted PathError for a symlink", err)
	}
}

func TestListColumnFamilies(t *testing.T) {
	dir := t.TempDir()
	db := must(Init(Dir(dir), widgetIndexes))
	ok(t, db.Close())

	names := must(ListColumnFamilies(Dir(dir)))
	deepEqual(t, names, []string{CFSystem, CFSystemCounters, CFSystemTypes, cfWidgetColor, cfWidgetID, cfWidgetName})

	_, err := ListColumnFamilies(Dir(filepath.Join(dir, "missing")))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("ListColumnFamilies(missing) err = %v, wanted ErrNotExist", err)
	}
}

func TestDatabase_Closed(t *testing.T) {
	db := setup(t, EngineMemory)
	ok(t, db.Close())
	ok(t, db.Close())
	_, _, err := widgets(db).Get(IdFromBytes[*Widget](Uint64Bytes(1)))
	if !errors.Is(err, ErrNotOpen) {
		t.Fatalf("Get after Close err = %v, wanted ErrNotOpen", err)
	}
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func must2[T1, T2 any](v1 T1, v2 T2, err error) (T1, T2) {
	if err != nil {
		panic(err)
	}
	return v1, v2
}

func ok(t testing.TB, err error) {
	if err != nil {
		t.Helper()
		t.Fatalf("** unexpected error: %v", err)
	}
}

func deepEqual[T any](t testing.TB, a, e T) {
	if !reflect.DeepEqual(a, e) {
		t.Helper()
		t.Errorf("** got %v, wanted %v", a, e)
	}
}

func isempty[T any, S ~[]T](t testing.TB, a S) {
	if len(a) > 0 {
		t.Helper()
		t.Errorf("** got %v, wanted empty slice", a)
	}
}
