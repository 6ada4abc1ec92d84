// Package differ implements the Differ: given two linked models, current (C) and
// desired (D), it produces an ordered sequence of change records that internal/scheduler and
// internal/sqlgen turn into DDL.
package differ

import (
	"fmt"
	"sort"

	"github.com/dbsync/dbsync/internal/model"
)

// ErrOldnameKindMismatch is returned when a desired object's oldname resolves to a current-side
// object of a different Kind -- renames are only meaningful within the same kind.
var ErrOldnameKindMismatch = fmt.Errorf("oldname refers to an object of a different kind")

// ChangeKind discriminates the six change record variants.
type ChangeKind string

const (
	Create ChangeKind = "create"
	Drop ChangeKind = "drop"
	Rename ChangeKind = "rename"
	Alter ChangeKind = "alter"
	GrantRevoke ChangeKind = "grant_revoke"
	Comment ChangeKind = "comment"
)

// Change is one entry in the Differ's output. Which fields are populated depends on ChangeKind:
// Create/Drop use Object; Rename uses OldKey/NewKey/Old/New; Alter uses Old/New plus (for tables)
// TableDelta; GrantRevoke uses Object/Grants; Comment uses Object/CommentText.
type Change struct {
	ChangeKind ChangeKind
	Object model.Object
	Old, New model.Object
	OldKey model.Key
	NewKey model.Key

	TableDelta *TableDelta

	Grants []model.Privilege
	Revokes []model.Privilege
	CommentText string
	HasComment bool
}

// Diff walks every object kind in current and desired and returns the full ordered list of
// changes. The scheduler, not the differ, is responsible for topologically ordering these by
// dependency -- the order returned here only reflects the kind-by-kind walk and is not meant to be
// execution order.
func Diff(current, desired model.Model) ([]Change, error) {
	var out []Change

	out = append(out, diffByRecreate(current.NamedSchemas, desired.NamedSchemas, noOldName[model.NamedSchema], alwaysSame[model.NamedSchema])...)
	out = append(out, diffByRecreate(current.Extensions, desired.Extensions, noOldName[model.Extension], extensionChanged)...)
	out = append(out, diffByRecreate(current.Languages, desired.Languages, noOldName[model.Language], languageChanged)...)
	out = append(out, diffByRecreate(current.Collations, desired.Collations, noOldName[model.Collation], collationChanged)...)
	out = append(out, diffByRecreate(current.Conversions, desired.Conversions, noOldName[model.Conversion], conversionChanged)...)
	out = append(out, diffByRecreate(current.Types, desired.Types, typeOldName, typeChanged)...)

	tableChanges, err := diffTables(current.Tables, desired.Tables)
	if err != nil {
		return nil, err
	}
	out = append(out, tableChanges...)

	out = append(out, diffByRecreate(current.Views, desired.Views, viewOldName, viewChanged)...)
	out = append(out, diffByRecreate(current.MaterializedViews, desired.MaterializedViews, matviewOldName, matviewChanged)...)
	out = append(out, diffSequences(current.Sequences, desired.Sequences)...)
	out = append(out, diffByRecreate(current.Functions, desired.Functions, functionOldName, functionChanged)...)
	out = append(out, diffByRecreate(current.Aggregates, desired.Aggregates, noOldName[model.Aggregate], aggregateChanged)...)
	out = append(out, diffByRecreate(current.Operators, desired.Operators, noOldName[model.Operator], operatorChanged)...)
	out = append(out, diffByRecreate(current.OperatorClasses, desired.OperatorClasses, noOldName[model.OperatorClass], operatorClassChanged)...)
	out = append(out, diffByRecreate(current.OperatorFamilies, desired.OperatorFamilies, noOldName[model.OperatorFamily], operatorFamilyChanged)...)
	out = append(out, diffByRecreate(current.EventTriggers, desired.EventTriggers, eventTriggerOldName, eventTriggerChanged)...)
	out = append(out, diffByRecreate(current.Casts, desired.Casts, noOldName[model.Cast], castChanged)...)
	out = append(out, diffByRecreate(current.TSParsers, desired.TSParsers, noOldName[model.TSParser], tsParserChanged)...)
	out = append(out, diffByRecreate(current.TSDictionaries, desired.TSDictionaries, noOldName[model.TSDictionary], tsDictChanged)...)
	out = append(out, diffByRecreate(current.TSTemplates, desired.TSTemplates, noOldName[model.TSTemplate], tsTemplateChanged)...)
	out = append(out, diffByRecreate(current.TSConfigs, desired.TSConfigs, noOldName[model.TSConfig], tsConfigChanged)...)
	out = append(out, diffByRecreate(current.FDWs, desired.FDWs, noOldName[model.FDW], fdwChanged)...)
	out = append(out, diffByRecreate(current.ForeignServers, desired.ForeignServers, noOldName[model.ForeignServer], foreignServerChanged)...)
	out = append(out, diffByRecreate(current.UserMappings, desired.UserMappings, noOldName[model.UserMapping], userMappingChanged)...)
	out = append(out, diffByRecreate(current.ForeignTables, desired.ForeignTables, noOldName[model.ForeignTable], foreignTableChanged)...)

	return out, nil
}

// Paired holds one matched old/new object for an Alter change.
type Paired[T model.Object] struct {
	Old, New T
}

// RenamePair holds one oldname-matched old/new object for a Rename change.
type RenamePair[T model.Object] struct {
	Old, New T
}

// ListDiff is the generic pairing result "Pairing" steps produce, grounded on the
// teacher's listDiff (pkg/diff/diff.go) generalized to add the oldname pre-pass step 1 the
// teacher's diffLists doesn't have.
type ListDiff[T model.Object] struct {
	Creates []T
	Drops []T
	Renames []RenamePair[T]
	Alters []Paired[T]
}

// PairByKey implements three-step pairing algorithm generically over any object
// kind. oldNameOf extracts a desired-side object's one-shot rename directive (empty string means
// "no oldname").
func PairByKey[T model.Object](oldObjs, newObjs []T, oldNameOf func(T) string) (ListDiff[T], error) {
	byKey := make(map[string]T, len(oldObjs))
	for _, o := range oldObjs {
		byKey[o.Key().String()] = o
	}

	var out ListDiff[T]
	paired := make(map[string]bool, len(oldObjs))

	for _, n := range newObjs {
		if on := oldNameOf(n); on != "" {
			oldKey := keyWithName(n.Key(), on)
			if old, ok := byKey[oldKey.String()]; ok {
				if old.Kind() != n.Kind() {
					return ListDiff[T]{}, fmt.Errorf("%s %s -> %s: %w", n.Kind(), on, n.GetName(), ErrOldnameKindMismatch)
				}
				out.Renames = append(out.Renames, RenamePair[T]{Old: old, New: n})
				paired[oldKey.String()] = true
				continue
			}
		}
		if old, ok := byKey[n.Key().String()]; ok {
			out.Alters = append(out.Alters, Paired[T]{Old: old, New: n})
			paired[n.Key().String()] = true
		} else {
			out.Creates = append(out.Creates, n)
		}
	}

	for _, o := range oldObjs {
		if !paired[o.Key().String()] {
			out.Drops = append(out.Drops, o)
		}
	}
	sort.Slice(out.Drops, func(i, j int) bool { return out.Drops[i].Key().String() < out.Drops[j].Key().String() })
	sort.Slice(out.Creates, func(i, j int) bool { return out.Creates[i].Key().String() < out.Creates[j].Key().String() })

	return out, nil
}

// keyWithName returns key with its last component (always the object's bare Name, by convention of
// every Key() implementation in internal/model/objects.go) replaced by name.
func keyWithName(key model.Key, name string) model.Key {
	out := make(model.Key, len(key))
	copy(out, key)
	out[len(out)-1] = name
	return out
}

func noOldName[T model.Object](T) string { return "" }

// alwaysSame is used for kinds with no mutable attributes worth diffing beyond create/drop/rename
// (NamedSchema today only carries owner/description/privileges; metaChanges covers description
// and privileges, and an owner change is not emitted).
func alwaysSame[T model.Object](old, new T) bool {
	return false
}

// diffByRecreate handles every object kind for which Postgres has no (or only a narrow) ALTER
// form: a changed object is dropped and recreated rather than altered in place, same as the
// teacher's diffLists "requiresRecreation" path (pkg/diff/diff.go). changed should report true iff
// any attribute requiring recreation differs; metaChanges (description/privileges) is always
// applied separately since those never require recreation. An owner change on these kinds is not
// emitted.
func diffByRecreate[T model.Object](oldObjs, newObjs []T, oldNameOf func(T) string, changed func(old, new T) bool) []Change {
	pd, err := PairByKey(oldObjs, newObjs, oldNameOf)
	if err != nil {
		// Kind mismatches can't occur here because oldNameOf callers for kinds without Rename
		// support are noOldName, which never resolves a pair; diffTypes/diffViews etc. that do pass
		// a real oldNameOf are same-kind by construction (same slice element type T).
		return nil
	}

	var out []Change
	for _, d := range pd.Drops {
		out = append(out, Change{ChangeKind: Drop, Object: d})
	}
	for _, r := range pd.Renames {
		if changed(r.Old, r.New) {
			out = append(out, Change{ChangeKind: Drop, Object: r.Old})
			out = append(out, Change{ChangeKind: Create, Object: r.New})
			continue
		}
		out = append(out, Change{ChangeKind: Rename, OldKey: r.Old.Key(), NewKey: r.New.Key(), Old: r.Old, New: r.New})
		out = append(out, metaChanges(r.New, r.Old, r.New)...)
	}
	for _, a := range pd.Alters {
		if changed(a.Old, a.New) {
			out = append(out, Change{ChangeKind: Drop, Object: a.Old})
			out = append(out, Change{ChangeKind: Create, Object: a.New})
			continue
		}
		out = append(out, metaChanges(a.New, a.Old, a.New)...)
	}
	for _, c := range pd.Creates {
		out = append(out, Change{ChangeKind: Create, Object: c})
	}
	return out
}

// metaChanges emits Comment and GrantRevoke changes for whichever of Described/PrivilegeHolder
// `new` implements. subject is the object that
// sqlgen should target the statement at (the new object after any rename).
func metaChanges(subject model.Object, old, new model.Object) []Change {
	var out []Change

	if oldD, ok := old.(model.Described); ok {
		if newD, ok2 := new.(model.Described); ok2 && oldD.Description() != newD.Description() {
			out = append(out, Change{ChangeKind: Comment, Object: subject, CommentText: newD.Description(), HasComment: newD.Description() != ""})
		}
	}

	if oldP, ok := old.(model.PrivilegeHolder); ok {
		if newP, ok2 := new.(model.PrivilegeHolder); ok2 {
			grants, revokes := model.DiffPrivileges(oldP.Privileges(), newP.Privileges())
			if len(grants) > 0 || len(revokes) > 0 {
				out = append(out, Change{ChangeKind: GrantRevoke, Object: subject, Grants: grants, Revokes: revokes})
			}
		}
	}

	return out
}
