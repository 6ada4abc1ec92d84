package sqlgen

import (
	"github.com/dbsync/dbsync/internal/differ"
	"github.com/dbsync/dbsync/internal/model"
)

// renameUnsupported lists the kinds whose Rename is rendered as drop+create instead of ALTER...
// RENAME TO: operators, operator classes, operator families, casts and user mappings. The Differ can
// still produce a Rename change for these via an oldname directive; sqlgen degrades it to
// drop+create, the same fallback diffByRecreate itself uses when changed() reports true.
var renameUnsupported = map[model.Kind]bool{
	model.KindOperator: true,
	model.KindOperatorClass: true,
	model.KindOperatorFamily: true,
	model.KindCast: true,
	model.KindUserMapping: true,
}

func generateRename(c differ.Change) ([]Statement, error) {
	if t, ok := c.New.(model.Table); ok {
		old := c.Old.(model.Table)
		return []Statement{ddl("ALTER TABLE %s RENAME TO %s", old.QualifiedSQL(), model.EscapeIdentifier(t.Name))}, nil
	}
	if s, ok := c.New.(model.Sequence); ok {
		old := c.Old.(model.Sequence)
		return []Statement{ddl("ALTER SEQUENCE %s RENAME TO %s", old.QualifiedSQL(), model.EscapeIdentifier(s.Name))}, nil
	}

	if renameUnsupported[c.Old.Kind()] {
		drop, err := generateDrop(c.Old)
		if err != nil {
			return nil, err
		}
		create, err := generateCreate(c.New)
		if err != nil {
			return nil, err
		}
		return append(drop, create...), nil
	}

	kindWord, ident := objectLabel(c.Old)
	if kindWord == "" {
		return nil, nil
	}
	return []Statement{ddl("ALTER %s %s RENAME TO %s", kindWord, ident, model.EscapeIdentifier(c.New.GetName()))}, nil
}
