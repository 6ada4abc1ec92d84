package sqlgen

import (
	"fmt"
	"strings"

	"github.com/dbsync/dbsync/internal/differ"
	"github.com/dbsync/dbsync/internal/model"
)

// CreateTableHeader renders the part of a table's definition that holds no foreign key: columns
// (with their defaults), PRIMARY KEY, CHECK constraints, INHERITS or PARTITION OF its parent,
// PARTITION BY, and the tablespace. The table's storage parameters (Options) are not rendered. SCC
// handling for mutual-FK table creates relies on every table's header being schedulable without
// waiting on any other table's tail.
func CreateTableHeader(t model.Table) Statement {
	var parts []string
	for _, c := range t.Columns {
		parts = append(parts, columnDef(c))
	}
	if t.PrimaryKey != nil {
		parts = append(parts, fmt.Sprintf("CONSTRAINT %s PRIMARY KEY (%s)",
				model.EscapeIdentifier(t.PrimaryKey.Name), quoteJoin(t.PrimaryKey.Columns)))
	}
	for _, ck := range t.CheckConstraints {
		piece := fmt.Sprintf("CONSTRAINT %s CHECK (%s)", model.EscapeIdentifier(ck.Name), ck.Expression)
		if !ck.IsValid {
			piece += " NOT VALID"
		}
		parts = append(parts, piece)
	}

	stmt := fmt.Sprintf("CREATE TABLE %s (%s)", t.QualifiedSQL(), strings.Join(parts, ", "))
	if len(t.Inherits) > 0 {
		names := make([]string, len(t.Inherits))
		for i, p := range t.Inherits {
			names[i] = p.QualifiedSQL()
		}
		stmt += " INHERITS (" + strings.Join(names, ", ") + ")"
	}
	if t.IsPartitioned() {
		stmt += " PARTITION BY " + t.PartitionKeyDef
	}
	if t.IsPartition() {
		stmt = fmt.Sprintf("CREATE TABLE %s PARTITION OF %s %s", t.QualifiedSQL(), t.ParentTable.QualifiedSQL(), t.PartitionBound)
	}
	if t.Tablespace != "" {
		stmt += " TABLESPACE " + model.EscapeIdentifier(t.Tablespace)
	}
	return ddl(stmt)
}

// CreateTableTail renders everything that may reference another table: foreign keys, plus the
// table's unique constraints, indexes/triggers/rules, owner, and comment. The scheduler orders
// each tail after its own header and after the headers of the tables its foreign keys reference,
// which breaks mutual-FK create cycles.
func CreateTableTail(t model.Table) []Statement {
	var out []Statement
	for _, fk := range t.ForeignKeys {
		out = append(out, ddl("ALTER TABLE %s ADD %s", t.QualifiedSQL(), foreignKeyClause(fk)))
	}
	for _, uk := range t.UniqueKeys {
		out = append(out, ddl("ALTER TABLE %s ADD CONSTRAINT %s UNIQUE (%s)", t.QualifiedSQL(), model.EscapeIdentifier(uk.Name), quoteJoin(uk.Columns)))
	}
	for _, idx := range t.Indexes {
		if idx.IsPk() {
			continue
		}
		out = append(out, CreateIndex(idx))
	}
	for _, tr := range t.Triggers {
		out = append(out, ddl(tr.GetTriggerDefStmt))
	}
	for _, r := range t.Rules {
		out = append(out, ddl(r.Definition))
	}
	if t.OwnerName != "" {
		out = append(out, ddl("ALTER TABLE %s OWNER TO %s", t.QualifiedSQL(), model.EscapeIdentifier(t.OwnerName)))
	}
	if t.DescrText != "" {
		out = append(out, ddl("COMMENT ON TABLE %s IS %s", t.QualifiedSQL(), model.EscapeLiteral(t.DescrText)))
	}
	return out
}

func foreignKeyClause(fk model.ForeignKeyConstraint) string {
	s := fmt.Sprintf("CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s.%s (%s)",
		model.EscapeIdentifier(fk.Name), quoteJoin(fk.Columns),
		model.EscapeIdentifier(fk.RefSchema), model.EscapeIdentifier(fk.RefTable), quoteJoin(fk.RefColumns))
	if fk.MatchType != "" {
		s += " MATCH " + fk.MatchType
	}
	if fk.OnDelete != "" {
		s += " ON DELETE " + fk.OnDelete
	}
	if fk.OnUpdate != "" {
		s += " ON UPDATE " + fk.OnUpdate
	}
	if !fk.IsValid {
		s += " NOT VALID"
	}
	return s
}

func CreateIndex(idx model.Index) Statement {
	if idx.GetIndexDefStmt != "" {
		s := ddl(idx.GetIndexDefStmt)
		return withHazard(s, HazardIndexBuild, "building a non-concurrent index holds a write lock on the table for the duration of the build")
	}
	unique := ""
	if idx.IsUnique {
		unique = "UNIQUE "
	}
	stmt := fmt.Sprintf("CREATE %sINDEX %s ON %s USING %s (%s)", unique, model.EscapeIdentifier(idx.Name), idx.OwningTable.QualifiedSQL(), idx.Method, quoteJoin(idx.Columns))
	if idx.WhereClause != "" {
		stmt += " WHERE " + idx.WhereClause
	}
	return withHazard(ddl(stmt), HazardIndexBuild, "building a non-concurrent index holds a write lock on the table for the duration of the build")
}

// AlterTable renders the attribute changes TableDelta records, grouped by capability (most attribute
// changes collapse into a single ALTER TABLE with a comma-separated action list; index/trigger/rule
// changes, which have no ALTER form, are always separate DROP+CREATE statement pairs). Options,
// inheritance and partitioning changes (OptionsChanged, InheritsChanged, PartitioningChanged) are
// not rendered.
func AlterTable(old, new model.Table, d *differ.TableDelta) []Statement {
	if d == nil {
		return nil
	}
	var actions []string
	for _, c := range d.AddColumns {
		actions = append(actions, "ADD COLUMN "+columnDef(c))
	}
	for _, c := range d.DropColumns {
		actions = append(actions, "DROP COLUMN "+model.EscapeIdentifier(c.Name))
	}
	var columnMetaStmts []Statement
	for _, ad := range d.AlterColumns {
		actions = append(actions, columnAlterClauses(ad)...)
		columnMetaStmts = append(columnMetaStmts, columnMetaStatements(old, ad)...)
	}
	for _, ck := range d.DropChecks {
		actions = append(actions, "DROP CONSTRAINT "+model.EscapeIdentifier(ck.Name))
	}
	for _, ck := range d.AddChecks {
		piece := fmt.Sprintf("ADD CONSTRAINT %s CHECK (%s)", model.EscapeIdentifier(ck.Name), ck.Expression)
		if !ck.IsValid {
			piece += " NOT VALID"
		}
		actions = append(actions, piece)
	}
	for _, uk := range d.DropUniqueKeys {
		actions = append(actions, "DROP CONSTRAINT "+model.EscapeIdentifier(uk.Name))
	}
	for _, uk := range d.AddUniqueKeys {
		actions = append(actions, fmt.Sprintf("ADD CONSTRAINT %s UNIQUE (%s)", model.EscapeIdentifier(uk.Name), quoteJoin(uk.Columns)))
	}
	for _, fk := range d.DropForeignKeys {
		actions = append(actions, "DROP CONSTRAINT "+model.EscapeIdentifier(fk.Name))
	}
	for _, fk := range d.AddForeignKeys {
		actions = append(actions, "ADD "+foreignKeyClause(fk))
	}
	if d.PrimaryKeyChanged {
		if d.OldPrimaryKey != nil {
			actions = append(actions, "DROP CONSTRAINT "+model.EscapeIdentifier(d.OldPrimaryKey.Name))
		}
		if d.NewPrimaryKey != nil {
			actions = append(actions, fmt.Sprintf("ADD CONSTRAINT %s PRIMARY KEY (%s)",
					model.EscapeIdentifier(d.NewPrimaryKey.Name), quoteJoin(d.NewPrimaryKey.Columns)))
		}
	}
	if d.OwnerChanged {
		actions = append(actions, "OWNER TO "+model.EscapeIdentifier(new.OwnerName))
	}
	if d.TablespaceChanged && new.Tablespace != "" {
		actions = append(actions, "SET TABLESPACE "+model.EscapeIdentifier(new.Tablespace))
	}

	var out []Statement
	// Indexes being dropped must go before the table's own ALTER TABLE statement: a dropped index
	// may depend on a column the ALTER is about to change the type of (e.g. ALTER COLUMN ... TYPE),
	// and the dependent object's drop must precede the ALTER it's unblocking.
	for _, idx := range d.DropIndexes {
		name := model.SchemaQualifiedName{SchemaName: idx.OwningTable.SchemaName, Name: idx.Name}.QualifiedSQL()
		out = append(out, withHazard(ddl("DROP INDEX %s", name), HazardIndexDropped, "dropping this index may degrade query performance until a replacement is built"))
	}

	if len(actions) > 0 {
		out = append(out, withHazard(ddl("ALTER TABLE %s %s", old.QualifiedSQL(), strings.Join(actions, ", ")), HazardAcquiresAccessExclusiveLock,
				"ALTER TABLE takes ACCESS EXCLUSIVE for most of these sub-actions"))
	}

	for _, idx := range d.AddIndexes {
		out = append(out, CreateIndex(idx))
	}
	for _, tr := range d.DropTriggers {
		out = append(out, ddl("DROP TRIGGER %s ON %s", model.EscapeIdentifier(tr.Name), tr.OwningTable.QualifiedSQL()))
	}
	for _, tr := range d.AddTriggers {
		out = append(out, ddl(tr.GetTriggerDefStmt))
	}
	for _, r := range d.DropRules {
		out = append(out, ddl("DROP RULE %s ON %s", model.EscapeIdentifier(r.Name), r.OwningTable.QualifiedSQL()))
	}
	for _, r := range d.AddRules {
		out = append(out, ddl(r.Definition))
	}
	out = append(out, columnMetaStmts...)

	return out
}

func columnDef(c model.Column) string {
	def := fmt.Sprintf("%s %s", model.EscapeIdentifier(c.Name), c.Type)
	if c.Collation != "" {
		def += " COLLATE " + model.EscapeIdentifier(c.Collation)
	}
	if !c.IsNullable {
		def += " NOT NULL"
	}
	if c.Default != "" {
		def += " DEFAULT " + c.Default
	}
	if c.Identity != nil {
		kind := "BY DEFAULT"
		if c.Identity.IsAlways {
			kind = "ALWAYS"
		}
		def += fmt.Sprintf(" GENERATED %s AS IDENTITY (START WITH %d INCREMENT BY %d MINVALUE %d MAXVALUE %d CACHE %d%s)",
			kind, c.Identity.StartValue, c.Identity.Increment, c.Identity.MinValue, c.Identity.MaxValue, c.Identity.CacheSize, cycleSuffix(c.Identity.Cycle))
	}
	return def
}

func cycleSuffix(cycle bool) string {
	if cycle {
		return " CYCLE"
	}
	return ""
}

func quoteJoin(cols []string) string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = model.EscapeIdentifier(c)
	}
	return strings.Join(out, ", ")
}
