package cfdb

// Get loads the record stored under id.
func (ops *Operations[K, E]) Get(id Id[E]) (E, bool, error) {
	var e E
	var found bool
	err := ops.db.Read(func(tx *Tx) error {
		var err error
		e, found, err = ops.get(tx, id)
		return err
	})
	return e, found, err
}

func (ops *Operations[K, E]) get(tx *Tx, id Id[E]) (E, bool, error) {
	var zero E
	cf := ops.helper.ValueIndex().CFName()
	raw, err := tx.Get(cf, id.key)
	if err != nil {
		return zero, false, err
	}
	if raw == nil {
		ops.db.trace("db: GET.NOTFOUND", "cf", cf, hexAttr("key", id.key))
		return zero, false, nil
	}
	e, err := ops.helper.Decode(id.key, raw)
	if err != nil {
		return zero, false, indexErrf(cf, id.key, err, "decoding %s", ops.typeName())
	}
	ops.db.trace("db: GET", "cf", cf, hexAttr("key", id.key))
	return e, true, nil
}

// First resolves the entry stored under key in the index column family into
// the record it points at.
func (ops *Operations[K, E]) First(index string, key []byte) (E, bool, error) {
	var e E
	var found bool
	err := ops.db.Read(func(tx *Tx) error {
		raw, err := tx.Get(index, key)
		if err != nil || raw == nil {
			return err
		}
		e, found, err = ops.get(tx, IdFromBytes[E](raw))
		return err
	})
	return e, found, err
}
