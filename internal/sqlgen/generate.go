package sqlgen

import (
	"fmt"

	"github.com/dbsync/dbsync/internal/differ"
	"github.com/dbsync/dbsync/internal/model"
)

// Generate renders a single differ.Change into zero or more Statements. The scheduler calls this
// once per change; the one exception is Create(Table), which the scheduler renders itself via
// CreateTableHeader/CreateTableTail so the two halves can become separate graph vertices for the
// header/tail SCC split requires.
func Generate(c differ.Change) ([]Statement, error) {
	switch c.ChangeKind {
	case differ.Create:
		if t, ok := c.Object.(model.Table); ok {
			stmts := []Statement{CreateTableHeader(t)}
			return append(stmts, CreateTableTail(t)...), nil
		}
		return generateCreate(c.Object)
	case differ.Drop:
		return generateDrop(c.Object)
	case differ.Rename:
		return generateRename(c)
	case differ.Alter:
		return generateAlter(c)
	case differ.GrantRevoke:
		return generateGrantRevoke(c)
	case differ.Comment:
		return generateComment(c)
	default:
		return nil, fmt.Errorf("sqlgen: unknown change kind %q", c.ChangeKind)
	}
}

func generateAlter(c differ.Change) ([]Statement, error) {
	if t, ok := c.New.(model.Table); ok {
		old, _ := c.Old.(model.Table)
		return AlterTable(old, t, c.TableDelta), nil
	}
	if s, ok := c.New.(model.Sequence); ok {
		old, _ := c.Old.(model.Sequence)
		return AlterSequence(old, s), nil
	}
	// every other kind's alter renders only ALTER... OWNER TO when the owner differs; comment and
	// privilege changes arrive as separate Comment/GrantRevoke changes from metaChanges.
	return alterOwnerIfChanged(c.Old, c.New), nil
}
