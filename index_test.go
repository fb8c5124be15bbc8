package cfdb

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestHistoryKey(t *testing.T) {
	ts := time.Unix(1700000000, 123)
	deepEqual(t, string(historyKey([]byte("abc"), ts.UnixNano())), "abc:1700000000000000123")
	deepEqual(t, string(historyKey(nil, ts.UnixNano())), ":1700000000000000123")

	key := make([]byte, 3, 10)
	copy(key, "abc")
	prefix := historyPrefix(key)
	deepEqual(t, string(prefix), "abc:")
	deepEqual(t, string(key[:cap(key)][3:4]), "\x00")
}

func TestIndexSet_CFNames(t *testing.T) {
	deepEqual(t, widgetIndexes.CFNames(), []string{cfWidgetID, cfWidgetName, cfWidgetColor})
}

func TestUpdateEntry(t *testing.T) {
	forEachEngine(t, func(t *testing.T, db *Database) {
		var b Batch
		w := &Widget{ID: 7, Name: "foo", Color: "red"}
		ok(t, UpdateEntry(db, &b, widgetsByName{}, w))
		ok(t, UpdateEntry(db, &b, widgetsByColor{}, w))
		ok(t, UpdateEntry(db, &b, widgetsByColor{}, w))
		deepEqual(t, b.Len(), 3)
		ok(t, db.Write(&b))

		deepEqual(t, countEntries(t, db, cfWidgetName), 1)
		deepEqual(t, countEntries(t, db, cfWidgetColor), 2)
		ok(t, db.ListIndex(cfWidgetColor, func(k, v []byte) bool {
			if len(k) != len("red:1704164645001000000") {
				t.Errorf("** history key %q has unexpected length", k)
			}
			deepEqual(t, v, Uint64Bytes(7))
			return true
		}))
	})
}

func TestDeleteEntry_History(t *testing.T) {
	forEachEngine(t, func(t *testing.T, db *Database) {
		var b Batch
		red := &Widget{ID: 1, Color: "red"}
		ok(t, UpdateEntry(db, &b, widgetsByColor{}, red))
		ok(t, UpdateEntry(db, &b, widgetsByColor{}, &Widget{ID: 2, Color: "red"}))
		ok(t, UpdateEntry(db, &b, widgetsByColor{}, &Widget{ID: 3, Color: "redish"}))
		ok(t, db.Write(&b))

		// every entry under the key goes, whichever record wrote it
		b.Reset()
		ok(t, DeleteEntry(db, &b, widgetsByColor{}, red))
		deepEqual(t, b.Len(), 2)
		ok(t, db.Write(&b))

		var left []string
		ok(t, db.ListIndex(cfWidgetColor, func(k, v []byte) bool {
			left = append(left, string(k[:len("redish")]))
			return true
		}))
		deepEqual(t, left, []string{"redish"})
	})
}

func TestEntries_MissingFamily(t *testing.T) {
	db := setup(t, EngineMemory)
	var b Batch
	err := UpdateEntry(db, &b, missingIndex{}, &Widget{ID: 1})
	if !errors.Is(err, ErrMissingIndex) {
		t.Fatalf("UpdateEntry err = %v, wanted ErrMissingIndex", err)
	}
	err = DeleteEntry(db, &b, missingIndex{}, &Widget{ID: 1})
	if !errors.Is(err, ErrMissingIndex) {
		t.Fatalf("DeleteEntry err = %v, wanted ErrMissingIndex", err)
	}
	deepEqual(t, b.Len(), 0)
}

type missingIndex struct{ History }

func (missingIndex) CFName() string { return "index.widget.missing" }
func (missingIndex) KeyValue(w *Widget) ([]byte, []byte, error) {
	return []byte(w.Name), Uint64Bytes(w.ID), nil
}

func TestBatch_AppliesInOrder(t *testing.T) {
	forEachEngine(t, func(t *testing.T, db *Database) {
		var b Batch
		b.Put(CFPairs, []byte("k"), []byte("1"))
		b.Delete(CFPairs, []byte("k"))
		b.Put(CFPairs, []byte("k"), []byte("2"))
		b.Put(CFPairs, []byte("gone"), []byte("x"))
		b.Delete(CFPairs, []byte("gone"))
		ok(t, db.Write(&b))

		var got []byte
		ok(t, db.Read(func(tx *Tx) error {
			var err error
			got, err = tx.Get(CFPairs, []byte("k"))
			return err
		}))
		deepEqual(t, string(got), "2")
		deepEqual(t, countEntries(t, db, CFPairs), 1)
	})
}

func TestBatch_MissingFamilyAbortsWrite(t *testing.T) {
	forEachEngine(t, func(t *testing.T, db *Database) {
		var b Batch
		b.Put(CFPairs, []byte("k"), []byte("1"))
		b.Put("index.nope", []byte("k"), []byte("1"))
		err := db.Write(&b)
		if !errors.Is(err, ErrMissingIndex) {
			t.Fatalf("Write err = %v, wanted ErrMissingIndex", err)
		}
		deepEqual(t, countEntries(t, db, CFPairs), 0)
	})
}

func TestHistory_FrozenClockKeepsEveryEntry(t *testing.T) {
	frozen := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	for _, engine := range engines {
		t.Run(string(engine), func(t *testing.T) {
			opt := testOptions(engine)
			opt.Now = func() time.Time { return frozen }
			db := must(Init(testInfo{filepath.Join(t.TempDir(), "db"), opt}, widgetIndexes))
			defer db.Close()

			ops := widgets(db)
			putWidgets(t, ops, &Widget{Name: "a", Color: "red"}, &Widget{Name: "b", Color: "red"}, &Widget{Name: "c", Color: "red"})

			ws := must(ops.MatchBytes(cfWidgetColor, []byte("red:"), 0))
			deepEqual(t, widgetNames(ws), []string{"a", "b", "c"})
			deepEqual(t, countEntries(t, db, cfWidgetColor), 3)
		})
	}
}
