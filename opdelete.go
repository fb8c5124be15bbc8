package cfdb

// Delete removes the record stored under e's id together with every index
// entry of its stored projections. It returns false if there was no such
// record.
func (ops *Operations[K, E]) Delete(e E) (bool, error) {
	id := ops.IDOf(e)
	if id.IsZero() {
		return false, nil
	}
	return ops.DeleteID(id)
}

func (ops *Operations[K, E]) DeleteID(id Id[E]) (bool, error) {
	old, found, err := ops.Get(id)
	if err != nil {
		return false, err
	}
	if !found {
		ops.db.trace("db: DELETE.NOOP", "type", ops.typeName(), hexAttr("key", id.key))
		return false, nil
	}

	var b Batch
	for _, idx := range ops.helper.Indexes() {
		if err := DeleteEntry(ops.db, &b, idx, old); err != nil {
			return false, err
		}
	}
	ctr, err := ops.counters.Get(ops.typeName())
	if err != nil {
		return false, err
	}
	if ctr.Value > 0 {
		ctr.Value--
		if err := ops.counters.Update(&b, ctr); err != nil {
			return false, err
		}
	}

	if err := ops.db.Write(&b); err != nil {
		return false, err
	}
	ops.db.trace("db: DELETE", "type", ops.typeName(), hexAttr("key", id.key))
	return true, nil
}
