// Package graph stores named nodes and the directed edges between them.
package graph

import (
	"errors"
	"fmt"

	"github.com/chunger/cfdb"
)

var (
	ErrNodeNotFound = errors.New("node not found")
	// ErrUnknownID is returned when saving a record under an id that was
	// never stored.
	ErrUnknownID = errors.New("unknown id")
)

// All lists every column family used by the graph and by cfdb.Pairs.
var All = cfdb.Combine(NodeIndexes, EdgeIndexes, cfdb.PairIndexes)

// Graph bundles the node and edge façades of one database. They share a
// registry, so ids are unique across nodes and edges.
type Graph struct {
	DB    *cfdb.Database
	Nodes *cfdb.Operations[uint64, *Node]
	Edges *cfdb.Operations[uint64, *Edge]
}

func New(db *cfdb.Database) *Graph {
	reg := cfdb.NewRegistry(db)
	return &Graph{
		DB:    db,
		Nodes: Nodes(db, reg),
		Edges: Edges(db, reg),
	}
}

func (g *Graph) Node(id uint64) (*Node, bool, error) {
	return g.Nodes.Get(g.Nodes.ID(id))
}

func (g *Graph) Edge(id uint64) (*Edge, bool, error) {
	return g.Edges.Get(g.Edges.ID(id))
}

// SaveNode inserts n when it has no id, or replaces the stored node with the
// same id. A replacement keeps the stored creation time. created reports an
// insert.
func (g *Graph) SaveNode(n *Node) (created bool, err error) {
	if n.ID != 0 {
		old, found, err := g.Node(n.ID)
		if err != nil {
			return false, err
		}
		if !found {
			return false, fmt.Errorf("%w: node %d", ErrUnknownID, n.ID)
		}
		n.CreatedAt = old.CreatedAt
	}
	created = n.ID == 0
	_, err = g.Nodes.Put(n)
	return created, err
}

// SaveEdge is SaveNode for edges.
func (g *Graph) SaveEdge(e *Edge) (created bool, err error) {
	if e.ID != 0 {
		old, found, err := g.Edge(e.ID)
		if err != nil {
			return false, err
		}
		if !found {
			return false, fmt.Errorf("%w: edge %d", ErrUnknownID, e.ID)
		}
		e.CreatedAt = old.CreatedAt
	}
	created = e.ID == 0
	_, err = g.Edges.Put(e)
	return created, err
}

// NodeNamed returns the node currently indexed under exactly name.
func (g *Graph) NodeNamed(name string) (*Node, bool, error) {
	return g.Nodes.First(CFNodeName, []byte(name))
}

// NodesByName returns up to n nodes whose name starts with prefix, in name order.
func (g *Graph) NodesByName(prefix string, n int) ([]*Node, error) {
	return g.Nodes.MatchBytes(CFNodeName, []byte(prefix), n)
}

// NodesByNameHash returns up to n nodes recorded under the hash of name,
// oldest first.
func (g *Graph) NodesByNameHash(name string, n int) ([]*Node, error) {
	return g.Nodes.MatchBytes(CFNodeNameHash, []byte(NameHash(name)+":"), n)
}

// NodesByType returns up to n nodes of the named type, in id order. An
// unregistered type has no nodes.
func (g *Graph) NodesByType(typeName string, n int) ([]*Node, error) {
	code, found, err := g.Nodes.Registry().LookupType(typeName)
	if err != nil || !found {
		return nil, err
	}
	return g.Nodes.MatchBytes(CFNodeType, cfdb.Uint64Bytes(code), n)
}

// EdgesByType returns up to n edges of the named type, in id order.
func (g *Graph) EdgesByType(typeName string, n int) ([]*Edge, error) {
	code, found, err := g.Edges.Registry().LookupType(typeName)
	if err != nil || !found {
		return nil, err
	}
	return g.Edges.MatchBytes(CFEdgeType, cfdb.Uint64Bytes(code), n)
}

// EdgesFrom returns up to n edges whose head is the given node, ordered by tail.
func (g *Graph) EdgesFrom(head uint64, n int) ([]*Edge, error) {
	return g.Edges.MatchBytes(CFEdgeHeadTail, cfdb.Uint64Bytes(head), n)
}

// EdgesTo returns up to n edges whose tail is the given node, ordered by head.
func (g *Graph) EdgesTo(tail uint64, n int) ([]*Edge, error) {
	return g.Edges.MatchBytes(CFEdgeTailHead, cfdb.Uint64Bytes(tail), n)
}

// EdgeBetween returns the edge indexed for the head/tail pair.
func (g *Graph) EdgeBetween(head, tail uint64) (*Edge, bool, error) {
	return g.Edges.First(CFEdgeHeadTail, cfdb.Pair64(head, tail))
}

// Associate connects the nodes named head and tail with a new edge called
// relation.
func (g *Graph) Associate(head, tail, relation, typeName string) (*Edge, error) {
	h, err := g.mustNodeNamed(head)
	if err != nil {
		return nil, err
	}
	t, err := g.mustNodeNamed(tail)
	if err != nil {
		return nil, err
	}
	e := &Edge{Type: typeName, Name: relation, Head: h.ID, Tail: t.ID}
	if _, err := g.Edges.Put(e); err != nil {
		return nil, err
	}
	return e, nil
}

func (g *Graph) mustNodeNamed(name string) (*Node, error) {
	n, found, err := g.NodeNamed(name)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, name)
	}
	return n, nil
}
