package cfdb

import (
	"fmt"
	"slices"
)

// Tx is a consistent view of the database. Read transactions see a snapshot
// taken when they begin.
type Tx struct {
	db  *Database
	stx storageTx
}

// Read runs f inside a read-only snapshot transaction.
func (db *Database) Read(f func(tx *Tx) error) error {
	if db.closed.Load() {
		return ErrNotOpen
	}
	stx, err := db.st.BeginTx(false)
	if err != nil {
		return fmt.Errorf("cfdb: begin read: %w", err)
	}
	defer stx.Rollback()
	db.ReadCount.Add(1)
	return f(&Tx{db: db, stx: stx})
}

// update runs f inside a writable transaction and commits if f succeeds.
// Writable transactions are serialized by every storage engine.
func (db *Database) update(f func(tx *Tx) error) error {
	if db.closed.Load() {
		return ErrNotOpen
	}
	stx, err := db.st.BeginTx(true)
	if err != nil {
		return fmt.Errorf("cfdb: begin write: %w", err)
	}
	defer stx.Rollback()
	db.WriteCount.Add(1)
	if err := f(&Tx{db: db, stx: stx}); err != nil {
		return err
	}
	if err := stx.Commit(); err != nil {
		return fmt.Errorf("cfdb: commit: %w", err)
	}
	return nil
}

// Write applies every operation of b atomically, in order.
func (db *Database) Write(b *Batch) error {
	return db.update(func(tx *Tx) error {
		return tx.apply(b)
	})
}

func (tx *Tx) bucket(cf string) (storageBucket, error) {
	b, err := tx.stx.Bucket(cf)
	if err != nil {
		return nil, indexErrf(cf, nil, err, "")
	}
	if b == nil {
		return nil, indexErrf(cf, nil, ErrMissingIndex, "")
	}
	return b, nil
}

// Get returns a copy of the value stored under key, or nil if there is none.
func (tx *Tx) Get(cf string, key []byte) ([]byte, error) {
	b, err := tx.bucket(cf)
	if err != nil {
		return nil, err
	}
	v, err := b.Get(key)
	if err != nil {
		return nil, indexErrf(cf, key, err, "get")
	}
	if v == nil {
		return nil, nil
	}
	return slices.Clone(v), nil
}

// Scan calls f for every entry of cf in key order, starting at the first key
// >= start, until f returns false or an error. The slices passed to f are
// only valid during the call.
func (tx *Tx) Scan(cf string, start []byte, f func(k, v []byte) (bool, error)) error {
	b, err := tx.bucket(cf)
	if err != nil {
		return err
	}
	c := b.Cursor()
	var k, v []byte
	if len(start) == 0 {
		k, v = c.First()
	} else {
		k, v = c.Seek(start)
	}
	for ; k != nil; k, v = c.Next() {
		more, err := f(k, v)
		if err != nil {
			c.Close()
			return err
		}
		if !more {
			break
		}
	}
	if err := c.Close(); err != nil {
		return indexErrf(cf, nil, err, "scan")
	}
	return nil
}

// KeyCount returns the number of entries in cf.
func (tx *Tx) KeyCount(cf string) (int, error) {
	b, err := tx.bucket(cf)
	if err != nil {
		return 0, err
	}
	return b.KeyCount()
}

func (tx *Tx) apply(b *Batch) error {
	for _, op := range b.ops {
		bkt, err := tx.bucket(op.cf)
		if err != nil {
			return err
		}
		if op.delete {
			err = bkt.Delete(op.key)
		} else {
			err = bkt.Put(op.key, op.value)
		}
		if err != nil {
			return indexErrf(op.cf, op.key, err, "apply")
		}
	}
	return nil
}

// ListIndex walks every raw entry of cf until visit returns false.
func (db *Database) ListIndex(cf string, visit func(k, v []byte) bool) error {
	return db.Read(func(tx *Tx) error {
		return tx.Scan(cf, nil, func(k, v []byte) (bool, error) {
			return visit(k, v), nil
		})
	})
}
