package differ

// Revert inverts a change list for the Revert output mode: Create<->Drop swap,
// Rename inverts direction, Alter swaps old/new (and, for tables, the TableDelta's add/drop lists),
// GrantRevoke swaps grants/revokes, and Comment clears the comment (the forward Comment record
// does not carry the prior text). It is explicitly best-effort: a dropped object's full definition
// isn't always recoverable from a Drop change record alone, so yamltodb's --revert flag is labelled
// experimental rather than guaranteed lossless.
func Revert(changes []Change) []Change {
	out := make([]Change, len(changes))
	for i := len(changes) - 1; i >= 0; i-- {
		out[len(changes)-1-i] = revertOne(changes[i])
	}
	return out
}

func revertOne(c Change) Change {
	switch c.ChangeKind {
	case Create:
		return Change{ChangeKind: Drop, Object: c.Object}
	case Drop:
		return Change{ChangeKind: Create, Object: c.Object}
	case Rename:
		return Change{ChangeKind: Rename, OldKey: c.NewKey, NewKey: c.OldKey, Old: c.New, New: c.Old}
	case Alter:
		rc := Change{ChangeKind: Alter, Old: c.New, New: c.Old}
		if c.TableDelta != nil {
			rc.TableDelta = revertTableDelta(c.TableDelta)
		}
		return rc
	case GrantRevoke:
		return Change{ChangeKind: GrantRevoke, Object: c.Object, Grants: c.Revokes, Revokes: c.Grants}
	case Comment:
		// The prior text isn't carried on the forward Comment record; reverting a comment change
		// without access to the original current-side model degrades to clearing it. Callers with
		// the original current model should prefer re-diffing (desired, current) over Revert for
		// comment-heavy plans.
		return Change{ChangeKind: Comment, Object: c.Object, CommentText: "", HasComment: false}
	default:
		return c
	}
}

func revertTableDelta(d *TableDelta) *TableDelta {
	return &TableDelta{
		AddColumns: d.DropColumns,
		DropColumns: d.AddColumns,
		AlterColumns: revertColumnDeltas(d.AlterColumns),

		AddChecks: d.DropChecks,
		DropChecks: d.AddChecks,

		AddUniqueKeys: d.DropUniqueKeys,
		DropUniqueKeys: d.AddUniqueKeys,

		AddForeignKeys: d.DropForeignKeys,
		DropForeignKeys: d.AddForeignKeys,

		AddIndexes: d.DropIndexes,
		DropIndexes: d.AddIndexes,

		AddTriggers: d.DropTriggers,
		DropTriggers: d.AddTriggers,

		AddRules: d.DropRules,
		DropRules: d.AddRules,

		PrimaryKeyChanged: d.PrimaryKeyChanged,
		OldPrimaryKey: d.NewPrimaryKey,
		NewPrimaryKey: d.OldPrimaryKey,

		OwnerChanged: d.OwnerChanged,
		TablespaceChanged: d.TablespaceChanged,
		OptionsChanged: d.OptionsChanged,
		InheritsChanged: d.InheritsChanged,
		PartitioningChanged: d.PartitioningChanged,
	}
}

func revertColumnDeltas(deltas []ColumnDelta) []ColumnDelta {
	out := make([]ColumnDelta, len(deltas))
	for i, d := range deltas {
		out[i] = ColumnDelta{
			Name: d.Name, Old: d.New, New: d.Old,
			TypeChanged: d.TypeChanged, NotNullChanged: d.NotNullChanged, DefaultChanged: d.DefaultChanged,
			CollationChanged: d.CollationChanged, IdentityChanged: d.IdentityChanged,
			StatisticsChanged: d.StatisticsChanged, StorageChanged: d.StorageChanged, CommentChanged: d.CommentChanged,
			Grants: d.Revokes, Revokes: d.Grants,
		}
	}
	return out
}
