package cfdb

import (
	"bytes"
	"slices"
	"strconv"
)

// Index projects a record into one key/value entry of a column family.
type Index[E any] interface {
	CFName() string
	KeyValue(e E) (key, value []byte, err error)
	// AppendOnly reports whether the index keeps history: every write adds
	// a timestamped entry instead of replacing the one under the same key.
	AppendOnly() bool
}

// Replacing is embedded by indexes that keep one entry per key.
type Replacing struct{}

func (Replacing) AppendOnly() bool { return false }

// History is embedded by append-only indexes.
type History struct{}

func (History) AppendOnly() bool { return true }

const historySep = ':'

// IndexSet is the ordered list of indexes maintained for one record type.
type IndexSet[E any] []Index[E]

func (s IndexSet[E]) CFNames() []string {
	names := make([]string, 0, len(s))
	for _, idx := range s {
		names = append(names, idx.CFName())
	}
	return names
}

func historyKey(key []byte, nanos int64) []byte {
	buf := make([]byte, 0, len(key)+21)
	buf = append(buf, key...)
	buf = append(buf, historySep)
	return strconv.AppendInt(buf, nanos, 10)
}

func historyPrefix(key []byte) []byte {
	return append(slices.Clip(key), historySep)
}

// UpdateEntry schedules writing e's projection into b.
func UpdateEntry[E any](db *Database, b *Batch, idx Index[E], e E) error {
	cf := idx.CFName()
	if !db.HasColumnFamily(cf) {
		return indexErrf(cf, nil, ErrMissingIndex, "update")
	}
	k, v, err := idx.KeyValue(e)
	if err != nil {
		return indexErrf(cf, nil, err, "projecting")
	}
	if idx.AppendOnly() {
		k = historyKey(k, db.historyStamp())
	}
	db.trace("db: INDEX.PUT", "cf", cf, hexAttr("key", k))
	b.Put(cf, k, v)
	return nil
}

// DeleteEntry schedules removing e's projection from b. For append-only
// indexes this removes every history entry under e's key, which takes a
// separate read of the column family.
func DeleteEntry[E any](db *Database, b *Batch, idx Index[E], e E) error {
	cf := idx.CFName()
	if !db.HasColumnFamily(cf) {
		return indexErrf(cf, nil, ErrMissingIndex, "delete")
	}
	k, _, err := idx.KeyValue(e)
	if err != nil {
		return indexErrf(cf, nil, err, "projecting")
	}
	if !idx.AppendOnly() {
		db.trace("db: INDEX.DELETE", "cf", cf, hexAttr("key", k))
		b.Delete(cf, k)
		return nil
	}

	prefix := historyPrefix(k)
	var keys [][]byte
	err = db.Read(func(tx *Tx) error {
		return tx.Scan(cf, prefix, func(k, v []byte) (bool, error) {
			if len(v) == 0 || !bytes.HasPrefix(k, prefix) {
				return false, nil
			}
			keys = append(keys, slices.Clone(k))
			return true, nil
		})
	})
	if err != nil {
		return err
	}
	for _, k := range keys {
		db.trace("db: INDEX.DELETE", "cf", cf, hexAttr("key", k))
		b.Delete(cf, k)
	}
	return nil
}
