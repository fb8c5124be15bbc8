package graph

import (
	"time"

	"github.com/chunger/cfdb"
)

// Stamper is the pre-put strategy shared by nodes and edges: it assigns a
// fresh id to records without one, stamps the creation time once and
// resolves the type name into its registered code.
type Stamper struct {
	Now func() time.Time
}

func (s Stamper) AssignID(reg *cfdb.Registry, id *uint64) error {
	if *id != 0 {
		return nil
	}
	next, err := reg.NextID()
	if err != nil {
		return err
	}
	*id = next
	return nil
}

func (s Stamper) StampTime(createdAt *int64) {
	if *createdAt != 0 {
		return
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	*createdAt = now().UnixNano()
}

// ResolveType fills in defaultName for an empty type name and sets code to
// the name's registered type code.
func (s Stamper) ResolveType(reg *cfdb.Registry, name *string, defaultName string, code *uint64) error {
	if *name == "" {
		*name = defaultName
	}
	c, err := reg.TypeCode(*name)
	if err != nil {
		return err
	}
	*code = c
	return nil
}
