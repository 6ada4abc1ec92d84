package differ

import "github.com/dbsync/dbsync/internal/model"

// ColumnDelta is the per-column attribute set: type, not_null, default,
// collation, identity, statistics, comment, privileges.
type ColumnDelta struct {
	Name string
	Old, New model.Column

	TypeChanged bool
	NotNullChanged bool
	DefaultChanged bool
	CollationChanged bool
	IdentityChanged bool
	StatisticsChanged bool
	StorageChanged bool
	CommentChanged bool

	Grants []model.Privilege
	Revokes []model.Privilege
}

func (d ColumnDelta) IsEmpty() bool {
	return !d.TypeChanged && !d.NotNullChanged && !d.DefaultChanged && !d.CollationChanged &&
	!d.IdentityChanged && !d.StatisticsChanged && !d.StorageChanged && !d.CommentChanged &&
	len(d.Grants) == 0 && len(d.Revokes) == 0
}

// DiffColumns matches columns by name, never by ordinal position, so a reordering of otherwise-
// identical columns produces no spurious deltas while a genuine name-for-name swap is still
// detected.
func DiffColumns(oldCols, newCols []model.Column) (adds []model.Column, drops []model.Column, alters []ColumnDelta, reorderNote string) {
	oldByName := make(map[string]model.Column, len(oldCols))
	oldPos := make(map[string]int, len(oldCols))
	for i, c := range oldCols {
		oldByName[c.Name] = c
		oldPos[c.Name] = i
	}
	matched := make(map[string]bool, len(oldCols))

	survivorsByOldOrder := true
	lastOldPos := -1

	for newIdx, nc := range newCols {
		oc, ok := oldByName[nc.Name]
		if !ok {
			adds = append(adds, nc)
			continue
		}
		matched[nc.Name] = true
		if p := oldPos[nc.Name]; p < lastOldPos {
			survivorsByOldOrder = false
		} else {
			lastOldPos = p
		}
		_ = newIdx

		delta := diffColumn(oc, nc)
		if !delta.IsEmpty() {
			alters = append(alters, delta)
		}
	}

	for _, oc := range oldCols {
		if !matched[oc.Name] {
			drops = append(drops, oc)
		}
	}

	if !survivorsByOldOrder {
		reorderNote = "column order changed for surviving columns; Postgres cannot reorder columns in place, so only the attribute deltas above are actioned"
	}

	return adds, drops, alters, reorderNote
}

func diffColumn(old, new model.Column) ColumnDelta {
	d := ColumnDelta{Name: new.Name, Old: old, New: new}
	d.TypeChanged = old.Type != new.Type
	d.NotNullChanged = old.IsNullable != new.IsNullable
	d.DefaultChanged = old.Default != new.Default
	d.CollationChanged = old.Collation != new.Collation
	d.IdentityChanged = !identityEqual(old.Identity, new.Identity)
	d.StatisticsChanged = !intPtrEqual(old.Statistics, new.Statistics)
	d.StorageChanged = old.Storage != new.Storage
	d.CommentChanged = old.Descr != new.Descr
	d.Grants, d.Revokes = model.DiffPrivileges(old.Privs, new.Privs)
	return d
}

func identityEqual(a, b *model.ColumnIdentity) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}

func intPtrEqual(a, b *int) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
