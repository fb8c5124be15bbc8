package cfdb

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

var (
	dumpSep1 = strings.Repeat("=", 80)
	dumpSep2 = strings.Repeat("-", 60)
)

// Dump writes every entry of the given column families (all of them if none
// are given) to w in a human-readable form.
func (db *Database) Dump(w io.Writer, cfs ...string) error {
	if len(cfs) == 0 {
		var err error
		cfs, err = db.ColumnFamilies()
		if err != nil {
			return err
		}
	}
	return db.Read(func(tx *Tx) error {
		for _, cf := range cfs {
			n, err := tx.KeyCount(cf)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\n%s (%d keys)\n%s\n", dumpSep1, cf, n, dumpSep2)
			err = tx.Scan(cf, nil, func(k, v []byte) (bool, error) {
				fmt.Fprintf(w, "%s => %s\n", dumpBytes(k), dumpBytes(v))
				return true, nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// dumpBytes prints printable UTF-8 as a quoted string and anything else as hex.
func dumpBytes(b []byte) string {
	if len(b) > 0 && utf8.Valid(b) && !strings.ContainsFunc(string(b), isControl) {
		return fmt.Sprintf("%q", b)
	}
	return hexstr(b)
}

func isControl(r rune) bool {
	return r < 0x20 || r == 0x7f
}
