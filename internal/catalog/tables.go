package catalog

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"github.com/dbsync/dbsync/internal/model"
)

func (r *Reader) fetchTables(ctx context.Context) ([]model.Table, error) {
	q := r.query(getTablesQuery)
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying pg_class for tables: %w", err)
	}

	type rawTable struct {
		oid int64
		schema, name, tablespace string
		partKeyDef, parentSchema, parentName, partitionBoundExpr string
	}
	var raws []rawTable
	for rows.Next() {
		var t rawTable
		if err := rows.Scan(&t.oid, &t.schema, &t.name, &t.tablespace, &t.partKeyDef, &t.parentSchema, &t.parentName, &t.partitionBoundExpr); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning pg_class row: %w", err)
		}
		raws = append(raws, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var out []model.Table
	for _, raw := range raws {
		if !r.nameIncluded(raw.schema) {
			continue
		}

		t := model.Table{
			SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: raw.schema, Name: raw.name},
			Tablespace: raw.tablespace,
			PartitionKeyDef: raw.partKeyDef,
			PartitionBound: raw.partitionBoundExpr,
		}
		if raw.parentName != "" {
			t.ParentTable = &model.SchemaQualifiedName{SchemaName: raw.parentSchema, Name: raw.parentName}
		}

		owner, descr, acl, err := r.fetchRelMeta(ctx, raw.oid)
		if err != nil {
			return nil, fmt.Errorf("fetching metadata for table %s.%s: %w", raw.schema, raw.name, err)
		}
		t.OwnerName, t.DescrText, t.Privs = owner, descr, acl

		if t.Columns, err = r.fetchColumns(ctx, raw.oid); err != nil {
			return nil, fmt.Errorf("fetching columns for %s.%s: %w", raw.schema, raw.name, err)
		}
		if t.PrimaryKey, t.UniqueKeys, t.ForeignKeys, err = r.fetchConstraints(ctx, raw.oid, raw.schema, raw.name); err != nil {
			return nil, fmt.Errorf("fetching constraints for %s.%s: %w", raw.schema, raw.name, err)
		}
		if t.CheckConstraints, err = r.fetchCheckConstraints(ctx, raw.oid); err != nil {
			return nil, fmt.Errorf("fetching check constraints for %s.%s: %w", raw.schema, raw.name, err)
		}
		if t.Indexes, err = r.fetchIndexesForTable(ctx, raw.oid, raw.schema, raw.name); err != nil {
			return nil, fmt.Errorf("fetching indexes for %s.%s: %w", raw.schema, raw.name, err)
		}
		if t.Triggers, err = r.fetchTriggers(ctx, raw.oid, raw.schema, raw.name); err != nil {
			return nil, fmt.Errorf("fetching triggers for %s.%s: %w", raw.schema, raw.name, err)
		}
		if t.Rules, err = r.fetchRules(ctx, raw.oid, raw.schema, raw.name); err != nil {
			return nil, fmt.Errorf("fetching rules for %s.%s: %w", raw.schema, raw.name, err)
		}

		out = append(out, t)
	}
	return out, nil
}

// fetchRelMeta fetches the owner/description/ACL shared by every pg_class-backed kind
// (table, view, matview, sequence).
func (r *Reader) fetchRelMeta(ctx context.Context, oid int64) (owner, descr string, acl []model.Privilege, err error) {
	const q = `
 SELECT pg_get_userbyid(c.relowner), coalesce(obj_description(c.oid, 'pg_class'), ''),
 coalesce(c.relacl::text[], '{}')
 FROM pg_class c WHERE c.oid = $1`
	var rawACL pq.StringArray
	if err := r.db.QueryRowContext(ctx, q, oid).Scan(&owner, &descr, &rawACL); err != nil {
		return "", "", nil, err
	}
	return owner, descr, decodeACL(rawACL), nil
}

func (r *Reader) fetchColumns(ctx context.Context, tableOid int64) ([]model.Column, error) {
	q := r.query(getColumnsQuery)
	rows, err := r.db.QueryContext(ctx, q, tableOid)
	if err != nil {
		return nil, fmt.Errorf("querying pg_attribute: %w", err)
	}
	defer rows.Close()

	var out []model.Column
	for rows.Next() {
		var c model.Column
		var notNull bool
		var identityType string
		var identStart, identIncr, identMax, identMin, identCache int64
		var identCycle bool
		var statTarget int
		var storage, generatedExpr string
		if err := rows.Scan(&c.Name, &c.Type, &notNull, new(int), &c.Default, &c.Collation, new(string),
			&identityType, &identStart, &identIncr, &identMax, &identMin, &identCache, &identCycle,
			&statTarget, &storage, &generatedExpr); err != nil {
			return nil, fmt.Errorf("scanning pg_attribute row: %w", err)
		}
		c.IsNullable = !notNull
		c.Storage = storage
		if statTarget >= 0 {
			c.Statistics = &statTarget
		}
		if identityType == "a" || identityType == "d" {
			c.Identity = &model.ColumnIdentity{
				IsAlways: identityType == "a",
				StartValue: identStart,
				Increment: identIncr,
				MinValue: identMin,
				MaxValue: identMax,
				CacheSize: identCache,
				Cycle: identCycle,
			}
		}
		if generatedExpr != "" {
			c.Default = generatedExpr
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Reader) fetchConstraints(ctx context.Context, tableOid int64, schema, table string) (*model.PrimaryKey, []model.UniqueKey, []model.ForeignKeyConstraint, error) {
	const q = `
 SELECT con.conname, con.contype::text,
 coalesce(array_agg(a.attname ORDER BY k.ord), '{}'),
 coalesce(fn.nspname, ''), coalesce(fc.relname, ''),
 coalesce(array_agg(fa.attname ORDER BY k.ord) FILTER (WHERE fa.attname IS NOT NULL), '{}'),
 coalesce(con.confupdtype::text, ''), coalesce(con.confdeltype::text, ''),
 con.convalidated, coalesce(obj_description(con.oid, 'pg_constraint'), '')
 FROM pg_constraint con
 JOIN unnest(con.conkey) WITH ORDINALITY AS k(attnum, ord) ON true
 JOIN pg_attribute a ON a.attrelid = con.conrelid AND a.attnum = k.attnum
 LEFT JOIN pg_class fc ON fc.oid = con.confrelid
 LEFT JOIN pg_namespace fn ON fn.oid = fc.relnamespace
 LEFT JOIN unnest(con.confkey) WITH ORDINALITY AS fk(attnum, ord2) ON fk.ord2 = k.ord
 LEFT JOIN pg_attribute fa ON fa.attrelid = con.confrelid AND fa.attnum = fk.attnum
 WHERE con.conrelid = $1 AND con.contype IN ('p', 'u', 'f')
 GROUP BY con.oid, con.conname, con.contype, fn.nspname, fc.relname, con.confupdtype, con.confdeltype, con.convalidated`

	rows, err := r.db.QueryContext(ctx, q, tableOid)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("querying pg_constraint: %w", err)
	}
	defer rows.Close()

	var pk *model.PrimaryKey
	var uks []model.UniqueKey
	var fks []model.ForeignKeyConstraint
	for rows.Next() {
		var name, contype, refSchema, refTable, onUpdate, onDelete, descr string
		var cols, refCols pq.StringArray
		var valid bool
		if err := rows.Scan(&name, &contype, &cols, &refSchema, &refTable, &refCols, &onUpdate, &onDelete, &valid, &descr); err != nil {
			return nil, nil, nil, fmt.Errorf("scanning pg_constraint row: %w", err)
		}
		switch contype {
		case "p":
			pk = &model.PrimaryKey{Name: name, Columns: cols}
		case "u":
			uks = append(uks, model.UniqueKey{Name: name, Columns: cols})
		case "f":
			fks = append(fks, model.ForeignKeyConstraint{
					Name: name,
					Columns: cols,
					RefSchema: refSchema,
					RefTable: refTable,
					RefColumns: refCols,
					OnUpdate: fkActionName(onUpdate),
					OnDelete: fkActionName(onDelete),
					IsValid: valid,
					Descr: descr,
			})
		}
	}
	return pk, uks, fks, rows.Err()
}

// fkActionName maps pg_constraint.confupdtype/confdeltype's single-char encoding to its SQL
// keyword. An empty input (no FK on this constraint) maps to "".
func fkActionName(code string) string {
	switch code {
	case "a":
		return "NO ACTION"
	case "r":
		return "RESTRICT"
	case "c":
		return "CASCADE"
	case "n":
		return "SET NULL"
	case "d":
		return "SET DEFAULT"
	}
	return ""
}

func (r *Reader) fetchCheckConstraints(ctx context.Context, tableOid int64) ([]model.CheckConstraint, error) {
	const q = `
 SELECT con.conname, pg_get_constraintdef(con.oid), con.convalidated,
 coalesce(obj_description(con.oid, 'pg_constraint'), '')
 FROM pg_constraint con
 WHERE con.conrelid = $1 AND con.contype = 'c'`

	rows, err := r.db.QueryContext(ctx, q, tableOid)
	if err != nil {
		return nil, fmt.Errorf("querying check constraints: %w", err)
	}
	defer rows.Close()

	var out []model.CheckConstraint
	for rows.Next() {
		var name, def, descr string
		var valid bool
		if err := rows.Scan(&name, &def, &valid, &descr); err != nil {
			return nil, fmt.Errorf("scanning check constraint row: %w", err)
		}
		out = append(out, model.CheckConstraint{Name: name, Expression: def, IsValid: valid, Descr: descr})
	}
	return out, rows.Err()
}

func (r *Reader) fetchIndexesForTable(ctx context.Context, tableOid int64, schema, table string) ([]model.Index, error) {
	const q = `
 SELECT i.relname, pg_get_indexdef(ix.indexrelid),
 ix.indisunique, NOT ix.indisvalid, ix.indpred IS NOT NULL,
 am.amname, coalesce(i.reltablespace::regclass::text, ''),
 coalesce(array_agg(a.attname ORDER BY k.ord) FILTER (WHERE a.attname IS NOT NULL), '{}'),
 coalesce(con.contype::text, ''), coalesce(con.conname, ''),
 coalesce(obj_description(i.oid, 'pg_class'), '')
 FROM pg_index ix
 JOIN pg_class i ON i.oid = ix.indexrelid
 JOIN pg_am am ON am.oid = i.relam
 LEFT JOIN unnest(ix.indkey) WITH ORDINALITY AS k(attnum, ord) ON true
 LEFT JOIN pg_attribute a ON a.attrelid = ix.indrelid AND a.attnum = k.attnum AND k.attnum > 0
 LEFT JOIN pg_constraint con ON con.conindid = ix.indexrelid
 WHERE ix.indrelid = $1
 GROUP BY i.relname, ix.indexrelid, ix.indisunique, ix.indisvalid, ix.indpred, am.amname,
 i.reltablespace, con.contype, con.conname, i.oid`

	rows, err := r.db.QueryContext(ctx, q, tableOid)
	if err != nil {
		return nil, fmt.Errorf("querying pg_index: %w", err)
	}
	defer rows.Close()

	var out []model.Index
	for rows.Next() {
		var name, def, method, tablespace, contype, conname, descr string
		var unique, invalid, partial bool
		var cols pq.StringArray
		if err := rows.Scan(&name, &def, &unique, &invalid, &partial, &method, &tablespace, &cols, &contype, &conname, &descr); err != nil {
			return nil, fmt.Errorf("scanning pg_index row: %w", err)
		}
		idx := model.Index{
			Name: name,
			OwningTable: model.SchemaQualifiedName{SchemaName: schema, Name: table},
			Columns: cols,
			IsUnique: unique,
			IsInvalid: invalid,
			IsPartial: partial,
			Method: method,
			Tablespace: tablespace,
			GetIndexDefStmt: def,
			Descr: descr,
		}
		if len(cols) == 0 {
			idx.IsExpression = true
		}
		if contype == "p" || contype == "u" {
			ct := model.IndexConstraintType(contype)
			idx.Constraint = &ct
		}
		out = append(out, idx)
	}
	return out, rows.Err()
}

func (r *Reader) fetchTriggers(ctx context.Context, tableOid int64, schema, table string) ([]model.Trigger, error) {
	const q = `
 SELECT t.tgname, pg_get_triggerdef(t.oid), fn.nspname, fp.proname,
 coalesce(obj_description(t.oid, 'pg_trigger'), '')
 FROM pg_trigger t
 JOIN pg_proc fp ON fp.oid = t.tgfoid
 JOIN pg_namespace fn ON fn.oid = fp.pronamespace
 WHERE t.tgrelid = $1 AND NOT t.tgisinternal`

	rows, err := r.db.QueryContext(ctx, q, tableOid)
	if err != nil {
		return nil, fmt.Errorf("querying pg_trigger: %w", err)
	}
	defer rows.Close()

	var out []model.Trigger
	for rows.Next() {
		var name, def, fnSchema, fnName, descr string
		if err := rows.Scan(&name, &def, &fnSchema, &fnName, &descr); err != nil {
			return nil, fmt.Errorf("scanning pg_trigger row: %w", err)
		}
		out = append(out, model.Trigger{
				Name: name,
				OwningTable: model.SchemaQualifiedName{SchemaName: schema, Name: table},
				Function: model.SchemaQualifiedName{SchemaName: fnSchema, Name: fnName},
				GetTriggerDefStmt: def,
				Descr: descr,
		})
	}
	return out, rows.Err()
}

func (r *Reader) fetchRules(ctx context.Context, tableOid int64, schema, table string) ([]model.Rule, error) {
	const q = `
 SELECT r.rulename, pg_get_ruledef(r.oid), r.ev_type::text
 FROM pg_rewrite r
 WHERE r.ev_class = $1 AND r.rulename != '_RETURN'`

	rows, err := r.db.QueryContext(ctx, q, tableOid)
	if err != nil {
		return nil, fmt.Errorf("querying pg_rewrite: %w", err)
	}
	defer rows.Close()

	var out []model.Rule
	for rows.Next() {
		var name, def, evType string
		if err := rows.Scan(&name, &def, &evType); err != nil {
			return nil, fmt.Errorf("scanning pg_rewrite row: %w", err)
		}
		out = append(out, model.Rule{
				Name: name,
				OwningTable: model.SchemaQualifiedName{SchemaName: schema, Name: table},
				Event: ruleEventName(evType),
				Definition: def,
		})
	}
	return out, rows.Err()
}

func ruleEventName(code string) string {
	switch code {
	case "1":
		return "SELECT"
	case "2":
		return "UPDATE"
	case "3":
		return "INSERT"
	case "4":
		return "DELETE"
	}
	return code
}
