package cfdb

// FamilyStats describes one column family.
type FamilyStats struct {
	Name   string
	Keys   int
	System bool
}

// Stats reports the key count of every column family, in name order.
func (db *Database) Stats() ([]FamilyStats, error) {
	var stats []FamilyStats
	err := db.Read(func(tx *Tx) error {
		names, err := tx.stx.BucketNames()
		if err != nil {
			return err
		}
		for _, name := range names {
			n, err := tx.KeyCount(name)
			if err != nil {
				return err
			}
			stats = append(stats, FamilyStats{
				Name:   name,
				Keys:   n,
				System: isSystemFamily(name),
			})
		}
		return nil
	})
	return stats, err
}

func isSystemFamily(name string) bool {
	for _, s := range systemFamilies {
		if s == name {
			return true
		}
	}
	return false
}
