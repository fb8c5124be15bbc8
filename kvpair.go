package cfdb

import (
	"errors"
	"strings"
)

// CFPairs holds free-form string pairs.
const CFPairs = "index.kv"

// Pair is a string value stored under a string name.
type Pair struct {
	Name  string
	Value string
}

func (*Pair) TypeName() string { return "Pair" }

func (p *Pair) Key() (string, bool) { return p.Name, true }

func (p *Pair) Encode() ([]byte, error) { return []byte(p.Value), nil }

type pairByName struct{ Replacing }

func (pairByName) CFName() string { return CFPairs }

func (pairByName) KeyValue(p *Pair) ([]byte, []byte, error) {
	return []byte(p.Name), []byte(p.Value), nil
}

// PairIndexes lists the column families used by Pairs.
var PairIndexes = IndexSet[*Pair]{pairByName{}}

type pairHelper struct{}

func (pairHelper) ValueIndex() Index[*Pair] { return pairByName{} }
func (pairHelper) Indexes() IndexSet[*Pair] { return PairIndexes }

var errEmptyPairName = errors.New("empty pair name")

func (pairHelper) BeforePut(_ *Registry, p *Pair) error {
	if p.Name == "" {
		return errEmptyPairName
	}
	return nil
}

func (pairHelper) Decode(key, value []byte) (*Pair, error) {
	return &Pair{Name: string(key), Value: string(value)}, nil
}

// Pairs returns the façade over CFPairs.
func Pairs(db *Database) *Operations[string, *Pair] {
	return NewOperations[string, *Pair](db, StringKey{}, pairHelper{}, nil)
}

// ListPairs calls f for every pair whose name starts with prefix, in name
// order, until f returns false.
func ListPairs(ops *Operations[string, *Pair], prefix string, f func(p *Pair) bool) error {
	return ops.Visit(ops.ID(prefix), VisitorFunc[*Pair](func(p *Pair) bool {
		if !strings.HasPrefix(p.Name, prefix) {
			return false
		}
		return f(p)
	}))
}
