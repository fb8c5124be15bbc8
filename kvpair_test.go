package cfdb

import "testing"

func TestPairs(t *testing.T) {
	forEachEngine(t, func(t *testing.T, db *Database) {
		pairs := Pairs(db)
		for _, p := range []*Pair{{"color", "red"}, {"colour", "blue"}, {"size", "xl"}, {"col", ""}} {
			must(pairs.Put(p))
		}
		must(pairs.Put(&Pair{"color", "green"}))

		p, found := must2(pairs.Get(pairs.ID("color")))
		if !found {
			t.Fatalf("Get(color) found = false, wanted true")
		}
		deepEqual(t, *p, Pair{"color", "green"})
		deepEqual(t, must(pairs.Count()), uint64(4))

		var got []string
		ok(t, ListPairs(pairs, "colo", func(p *Pair) bool {
			got = append(got, p.Name+"="+p.Value)
			return true
		}))
		deepEqual(t, got, []string{"color=green", "colour=blue"})

		deepEqual(t, must(pairs.Delete(&Pair{Name: "color"})), true)
		deepEqual(t, must(pairs.Delete(&Pair{Name: "color"})), false)
		_, found = must2(pairs.Get(pairs.ID("color")))
		deepEqual(t, found, false)

		_, err := pairs.Put(&Pair{Value: "x"})
		if err == nil {
			t.Fatalf("Put with empty name succeeded, wanted error")
		}
	})
}
