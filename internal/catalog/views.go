package catalog

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"github.com/dbsync/dbsync/internal/model"
)

func (r *Reader) fetchViews(ctx context.Context) ([]model.View, error) {
	q := `
 SELECT c.oid, n.nspname, c.relname, pg_get_viewdef(c.oid, true)
 FROM pg_class c
 JOIN pg_namespace n ON n.oid = c.relnamespace
 WHERE c.relkind = 'v' AND ` + systemSchemaPredicate + ` AND ` + extensionOwnedPredicate("c.oid")

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying views: %w", err)
	}
	defer rows.Close()

	var out []model.View
	for rows.Next() {
		var oid int64
		var schema, name, def string
		if err := rows.Scan(&oid, &schema, &name, &def); err != nil {
			return nil, fmt.Errorf("scanning view row: %w", err)
		}
		if !r.nameIncluded(schema) {
			continue
		}
		owner, descr, acl, err := r.fetchRelMeta(ctx, oid)
		if err != nil {
			return nil, fmt.Errorf("fetching metadata for view %s.%s: %w", schema, name, err)
		}
		deps, err := r.fetchRelationDependencies(ctx, oid)
		if err != nil {
			return nil, fmt.Errorf("fetching table dependencies for view %s.%s: %w", schema, name, err)
		}
		out = append(out, model.View{
				SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: schema, Name: name},
				ViewDefinition: def,
				TableDependencies: deps,
				Meta: model.Meta{OwnerName: owner, DescrText: descr, Privs: acl},
		})
	}
	return out, rows.Err()
}

func (r *Reader) fetchMaterializedViews(ctx context.Context) ([]model.MaterializedView, error) {
	q := `
 SELECT c.oid, n.nspname, c.relname, pg_get_viewdef(c.oid, true), c.relispopulated
 FROM pg_class c
 JOIN pg_namespace n ON n.oid = c.relnamespace
 WHERE c.relkind = 'm' AND ` + systemSchemaPredicate + ` AND ` + extensionOwnedPredicate("c.oid")

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying materialized views: %w", err)
	}
	defer rows.Close()

	var out []model.MaterializedView
	for rows.Next() {
		var oid int64
		var schema, name, def string
		var populated bool
		if err := rows.Scan(&oid, &schema, &name, &def, &populated); err != nil {
			return nil, fmt.Errorf("scanning materialized view row: %w", err)
		}
		if !r.nameIncluded(schema) {
			continue
		}
		owner, descr, acl, err := r.fetchRelMeta(ctx, oid)
		if err != nil {
			return nil, fmt.Errorf("fetching metadata for materialized view %s.%s: %w", schema, name, err)
		}
		idxs, err := r.fetchIndexesForTable(ctx, oid, schema, name)
		if err != nil {
			return nil, fmt.Errorf("fetching indexes for materialized view %s.%s: %w", schema, name, err)
		}
		deps, err := r.fetchRelationDependencies(ctx, oid)
		if err != nil {
			return nil, fmt.Errorf("fetching table dependencies for materialized view %s.%s: %w", schema, name, err)
		}
		out = append(out, model.MaterializedView{
				SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: schema, Name: name},
				ViewDefinition: def,
				IsPopulated: populated,
				Indexes: idxs,
				TableDependencies: deps,
				Meta: model.Meta{OwnerName: owner, DescrText: descr, Privs: acl},
		})
	}
	return out, rows.Err()
}

// fetchRelationDependencies resolves a view or matview's pg_depend rows (via its implicit SELECT
// rule) to the relations and columns it reads from, for the Dependency Linker's view-to-table edge
// source without re-parsing the view's defining SQL.
func (r *Reader) fetchRelationDependencies(ctx context.Context, relOid int64) ([]model.TableDependency, error) {
	const q = `
 SELECT n.nspname, c.relname, array_agg(DISTINCT a.attname) FILTER (WHERE a.attname IS NOT NULL)
 FROM pg_depend d
 JOIN pg_rewrite rw ON rw.oid = d.objid AND d.classid = 'pg_rewrite'::regclass
 JOIN pg_class c ON c.oid = d.refobjid
 JOIN pg_namespace n ON n.oid = c.relnamespace
 LEFT JOIN pg_attribute a ON a.attrelid = d.refobjid AND a.attnum = d.refobjsubid AND d.refobjsubid > 0
 WHERE rw.ev_class = $1 AND d.deptype = 'n' AND c.oid != $1 AND c.relkind IN ('r', 'v', 'm', 'p', 'f')
 GROUP BY n.nspname, c.relname
 ORDER BY n.nspname, c.relname`

	rows, err := r.db.QueryContext(ctx, q, relOid)
	if err != nil {
		return nil, fmt.Errorf("querying pg_depend for relation dependencies: %w", err)
	}
	defer rows.Close()

	var out []model.TableDependency
	for rows.Next() {
		var schema, name string
		var cols pq.StringArray
		if err := rows.Scan(&schema, &name, &cols); err != nil {
			return nil, fmt.Errorf("scanning pg_depend row: %w", err)
		}
		out = append(out, model.TableDependency{
				SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: schema, Name: name},
				Columns: cols,
		})
	}
	return out, rows.Err()
}
