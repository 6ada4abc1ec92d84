package differ

import "github.com/dbsync/dbsync/internal/model"

// SequenceDelta carries the fields ALTER SEQUENCE can change in place; sequences never need to be
// recreated for an attribute change.
type SequenceDelta struct {
	StartValue, Increment, MaxValue, MinValue, CacheSize bool
	Cycle, OwnerChanged bool
}

func (d SequenceDelta) IsEmpty() bool {
	return !d.StartValue && !d.Increment && !d.MaxValue && !d.MinValue && !d.CacheSize && !d.Cycle && !d.OwnerChanged
}

func sequenceOldName(s model.Sequence) string { return s.OldName }

func diffSequences(oldSeqs, newSeqs []model.Sequence) []Change {
	pd, err := PairByKey(oldSeqs, newSeqs, sequenceOldName)
	if err != nil {
		return nil
	}

	var out []Change
	for _, d := range pd.Drops {
		out = append(out, Change{ChangeKind: Drop, Object: d})
	}
	for _, r := range pd.Renames {
		out = append(out, Change{ChangeKind: Rename, OldKey: r.Old.Key(), NewKey: r.New.Key(), Old: r.Old, New: r.New})
		out = append(out, sequenceAlterChanges(r.Old, r.New)...)
	}
	for _, a := range pd.Alters {
		out = append(out, sequenceAlterChanges(a.Old, a.New)...)
	}
	for _, c := range pd.Creates {
		out = append(out, Change{ChangeKind: Create, Object: c})
	}
	return out
}

func sequenceAlterChanges(old, new model.Sequence) []Change {
	var out []Change
	out = append(out, metaChanges(new, old, new)...)

	delta := SequenceDelta{
		StartValue: old.StartValue != new.StartValue,
		Increment: old.Increment != new.Increment,
		MaxValue: old.MaxValue != new.MaxValue,
		MinValue: old.MinValue != new.MinValue,
		CacheSize: old.CacheSize != new.CacheSize,
		Cycle: old.Cycle != new.Cycle,
		OwnerChanged: old.OwnerName != new.OwnerName,
	}
	if !delta.IsEmpty() {
		out = append(out, Change{ChangeKind: Alter, Old: old, New: new})
	}
	return out
}
