package cfdb

// Entity is a record type that can be persisted.
//
// TypeName must not look at the receiver's fields: it is also called on zero
// values to name the per-type row counter.
type Entity interface {
	TypeName() string
	Encode() ([]byte, error)
}

// HasKey is an Entity with a natural key. ok is false while the key is
// not assigned yet.
type HasKey[K any] interface {
	Entity
	Key() (k K, ok bool)
}

// Visitor receives records during a scan and returns false to stop it.
//
// Visitors run inside a read transaction and must not write to the database.
type Visitor[E any] interface {
	Visit(e E) bool
}

type VisitorFunc[E any] func(e E) bool

func (f VisitorFunc[E]) Visit(e E) bool {
	return f(e)
}

// Collector gathers up to Max visited records (all of them if Max <= 0).
type Collector[E any] struct {
	Max   int
	Items []E
}

func (c *Collector[E]) Visit(e E) bool {
	c.Items = append(c.Items, e)
	return c.Max <= 0 || len(c.Items) < c.Max
}
