package cfdb

import "fmt"

// Put stores e and brings every index in line with it. The previous version's
// projections are removed and e's are written, together with the row counter,
// in one atomic batch.
func (ops *Operations[K, E]) Put(e E) (Id[E], error) {
	if err := ops.helper.BeforePut(ops.registry, e); err != nil {
		return Id[E]{}, fmt.Errorf("%s: pre-put: %w", e.TypeName(), err)
	}
	id := ops.IDOf(e)
	if id.IsZero() {
		return id, fmt.Errorf("%s: key not assigned by pre-put hook", e.TypeName())
	}

	old, found, err := ops.Get(id)
	if err != nil {
		return id, err
	}

	var b Batch
	indexes := ops.helper.Indexes()
	if found {
		for _, idx := range indexes {
			if err := DeleteEntry(ops.db, &b, idx, old); err != nil {
				return id, err
			}
		}
	}
	for _, idx := range indexes {
		if err := UpdateEntry(ops.db, &b, idx, e); err != nil {
			return id, err
		}
	}
	if !found {
		ctr, err := ops.counters.Get(e.TypeName())
		if err != nil {
			return id, err
		}
		ctr.Value++
		if err := ops.counters.Update(&b, ctr); err != nil {
			return id, err
		}
	}

	if err := ops.db.Write(&b); err != nil {
		return id, err
	}
	if found {
		ops.db.trace("db: PUT.UPDATE", "type", e.TypeName(), hexAttr("key", id.key), "ops", b.Len())
	} else {
		ops.db.trace("db: PUT", "type", e.TypeName(), hexAttr("key", id.key), "ops", b.Len())
	}
	return id, nil
}
