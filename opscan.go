package cfdb

import (
	"bytes"
	"slices"
)

// Visit feeds records to v in ascending id order, starting at start (the zero
// Id starts at the beginning), until v returns false.
func (ops *Operations[K, E]) Visit(start Id[E], v Visitor[E]) error {
	cf := ops.helper.ValueIndex().CFName()
	return ops.db.Read(func(tx *Tx) error {
		return tx.Scan(cf, start.key, func(k, raw []byte) (bool, error) {
			e, err := ops.helper.Decode(k, raw)
			if err != nil {
				return false, indexErrf(cf, slices.Clone(k), err, "decoding %s", ops.typeName())
			}
			return v.Visit(e), nil
		})
	})
}

// MatchBytes returns up to n records whose key in the index column family
// starts with prefix, in index-key order. n <= 0 returns every match. An
// entry pointing at a missing record fails the whole call with ErrBadIndex.
func (ops *Operations[K, E]) MatchBytes(index string, prefix []byte, n int) ([]E, error) {
	var matches []E
	err := ops.db.Read(func(tx *Tx) error {
		return tx.Scan(index, prefix, func(k, v []byte) (bool, error) {
			if len(v) == 0 || !bytes.HasPrefix(k, prefix) {
				return false, nil
			}
			e, found, err := ops.get(tx, IdFromBytes[E](slices.Clone(v)))
			if err != nil {
				return false, err
			}
			if !found {
				ops.db.logger.Error("index entry points at a missing record", "cf", index, hexAttr("key", k), hexAttr("id", v))
				return false, indexErrf(index, slices.Clone(k), ErrBadIndex, "no %s under %x", ops.typeName(), v)
			}
			matches = append(matches, e)
			return n <= 0 || len(matches) < n, nil
		})
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}
