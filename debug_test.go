package cfdb

import (
	"strings"
	"testing"
)

func TestDump(t *testing.T) {
	db := setup(t, EngineBolt)
	must(widgets(db).Put(&Widget{Name: "Alice", Color: "red"}))

	var buf strings.Builder
	ok(t, db.Dump(&buf, cfWidgetName, CFSystem))
	s := buf.String()
	for _, want := range []string{
		"index.widget.name (1 keys)",
		`"Alice" => 0000000000000001`,
		"cf.system (1 keys)",
		`"sequence" => 0100000000000000`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("** dump lacks %q:\n%s", want, s)
		}
	}

	buf.Reset()
	ok(t, db.Dump(&buf))
	if !strings.Contains(buf.String(), "cf.system.counters (1 keys)") {
		t.Errorf("** full dump lacks counters:\n%s", buf.String())
	}
}

func TestStats(t *testing.T) {
	forEachEngine(t, func(t *testing.T, db *Database) {
		must(widgets(db).Put(&Widget{Name: "Alice", Color: "red"}))
		stats := must(db.Stats())
		byName := make(map[string]FamilyStats)
		for _, s := range stats {
			byName[s.Name] = s
		}
		deepEqual(t, byName[cfWidgetID], FamilyStats{Name: cfWidgetID, Keys: 1})
		deepEqual(t, byName[cfWidgetColor].Keys, 1)
		deepEqual(t, byName[CFSystem], FamilyStats{Name: CFSystem, Keys: 1, System: true})
		deepEqual(t, byName[CFPairs].Keys, 0)
	})
}
