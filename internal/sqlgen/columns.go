package sqlgen

import (
	"fmt"

	"github.com/dbsync/dbsync/internal/differ"
	"github.com/dbsync/dbsync/internal/model"
)

// columnAlterClauses renders the ALTER TABLE... ALTER COLUMN sub-clauses for one column's
// attribute delta. Type/not-null/default/collation/identity/storage each have their own ALTER
// COLUMN form and are emitted as separate clauses joined into the table's single ALTER TABLE
// statement by the caller.
func columnAlterClauses(d differ.ColumnDelta) []string {
	name := model.EscapeIdentifier(d.Name)
	var out []string
	if d.TypeChanged || d.CollationChanged {
		clause := fmt.Sprintf("ALTER COLUMN %s SET DATA TYPE %s", name, d.New.Type)
		if d.New.Collation != "" {
			clause += " COLLATE " + model.EscapeIdentifier(d.New.Collation)
		}
		if d.New.Default != "" {
			clause += " USING " + name + "::" + d.New.Type
		}
		out = append(out, clause)
	}
	if d.NotNullChanged {
		if d.New.IsNullable {
			out = append(out, fmt.Sprintf("ALTER COLUMN %s DROP NOT NULL", name))
		} else {
			out = append(out, fmt.Sprintf("ALTER COLUMN %s SET NOT NULL", name))
		}
	}
	if d.DefaultChanged {
		if d.New.Default == "" {
			out = append(out, fmt.Sprintf("ALTER COLUMN %s DROP DEFAULT", name))
		} else {
			out = append(out, fmt.Sprintf("ALTER COLUMN %s SET DEFAULT %s", name, d.New.Default))
		}
	}
	if d.StatisticsChanged && d.New.Statistics != nil {
		out = append(out, fmt.Sprintf("ALTER COLUMN %s SET STATISTICS %d", name, *d.New.Statistics))
	}
	if d.StorageChanged && d.New.Storage != "" {
		out = append(out, fmt.Sprintf("ALTER COLUMN %s SET STORAGE %s", name, d.New.Storage))
	}
	if d.IdentityChanged {
		out = append(out, identityClause(name, d.Old.Identity, d.New.Identity)...)
	}
	return out
}

func identityClause(name string, old, new *model.ColumnIdentity) []string {
	switch {
	case old == nil && new != nil:
		kind := "BY DEFAULT"
		if new.IsAlways {
			kind = "ALWAYS"
		}
		return []string{fmt.Sprintf("ALTER COLUMN %s ADD GENERATED %s AS IDENTITY", name, kind)}
	case old != nil && new == nil:
		return []string{fmt.Sprintf("ALTER COLUMN %s DROP IDENTITY", name)}
	case old != nil && new != nil:
		kind := "BY DEFAULT"
		if new.IsAlways {
			kind = "ALWAYS"
		}
		return []string{fmt.Sprintf("ALTER COLUMN %s SET GENERATED %s", name, kind)}
	default:
		return nil
	}
}

// columnMetaStatements renders the per-column COMMENT/GRANT changes a ColumnDelta carries. These
// ride alongside, not inside, the table's ALTER TABLE statement since COMMENT ON COLUMN and
// GRANT/REVOKE ON TABLE (column-list) are their own statement forms.
func columnMetaStatements(t model.Table, d differ.ColumnDelta) []Statement {
	colIdent := fmt.Sprintf("%s.%s", t.QualifiedSQL(), model.EscapeIdentifier(d.Name))
	var out []Statement
	if d.CommentChanged {
		text := "NULL"
		if d.New.Descr != "" {
			text = model.EscapeLiteral(d.New.Descr)
		}
		out = append(out, ddl("COMMENT ON COLUMN %s IS %s", colIdent, text))
	}
	for _, grp := range groupPrivileges(d.Revokes) {
		out = append(out, ddl("REVOKE %s (%s) ON %s FROM %s", grp.list, model.EscapeIdentifier(d.Name), t.QualifiedSQL(), model.EscapeIdentifier(grp.grantee)))
	}
	for _, grp := range groupPrivileges(d.Grants) {
		out = append(out, ddl("GRANT %s (%s) ON %s TO %s", grp.list, model.EscapeIdentifier(d.Name), t.QualifiedSQL(), model.EscapeIdentifier(grp.grantee)))
	}
	return out
}
