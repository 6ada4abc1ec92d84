package sqlgen

import (
	"fmt"

	"github.com/dbsync/dbsync/internal/model"
)

func generateDrop(o model.Object) ([]Statement, error) {
	if t, ok := o.(model.Table); ok {
		return []Statement{withHazard(ddl("DROP TABLE %s", t.QualifiedSQL()), HazardDeletesData, "dropping a table discards all of its rows")}, nil
	}
	kindWord, ident := objectLabel(o)
	if kindWord == "" {
		return nil, fmt.Errorf("sqlgen: %s is not a standalone droppable object", o.Kind())
	}
	s := ddl("DROP %s %s", kindWord, ident)
	if o.Kind() == model.KindIndex {
		s = withHazard(s, HazardIndexDropped, "dropping this index may degrade query performance until a replacement is built")
	}
	if o.Kind() == model.KindSchema || o.Kind() == model.KindMatView {
		s = withHazard(s, HazardDeletesData, "drop cascades to everything owned by this object")
	}
	return []Statement{s}, nil
}
