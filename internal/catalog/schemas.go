package catalog

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"github.com/dbsync/dbsync/internal/model"
)

func (r *Reader) fetchSchemas(ctx context.Context) ([]model.NamedSchema, error) {
	const q = `
 SELECT n.nspname, pg_get_userbyid(n.nspowner),
 coalesce(obj_description(n.oid, 'pg_namespace'), ''),
 coalesce(n.nspacl::text[], '{}')
 FROM pg_namespace n
 WHERE ` + systemSchemaPredicate

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying pg_namespace: %w", err)
	}
	defer rows.Close()

	var out []model.NamedSchema
	for rows.Next() {
		var name, owner, descr string
		var acl pq.StringArray
		if err := rows.Scan(&name, &owner, &descr, &acl); err != nil {
			return nil, fmt.Errorf("scanning pg_namespace row: %w", err)
		}
		if !r.nameIncluded(name) {
			continue
		}
		out = append(out, model.NamedSchema{
				Name: name,
				Meta: model.Meta{
					OwnerName: owner,
					DescrText: descr,
					Privs: decodeACL(acl),
				},
		})
	}
	return out, rows.Err()
}

func (r *Reader) fetchExtensions(ctx context.Context) ([]model.Extension, error) {
	const q = `
 SELECT n.nspname, e.extname, e.extversion
 FROM pg_extension e
 JOIN pg_namespace n ON n.oid = e.extnamespace`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying pg_extension: %w", err)
	}
	defer rows.Close()

	var out []model.Extension
	for rows.Next() {
		var schema, name, version string
		if err := rows.Scan(&schema, &name, &version); err != nil {
			return nil, fmt.Errorf("scanning pg_extension row: %w", err)
		}
		if !r.nameIncluded(schema) {
			continue
		}
		out = append(out, model.Extension{
				SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: schema, Name: name},
				Version: version,
		})
	}
	return out, rows.Err()
}

func (r *Reader) fetchLanguages(ctx context.Context) ([]model.Language, error) {
	const q = `
 SELECT l.lanname, l.lanpltrusted, coalesce(p.proname, '')
 FROM pg_language l
 LEFT JOIN pg_proc p ON p.oid = l.lanplcallfoid
 WHERE l.lanispl
 AND NOT EXISTS (SELECT 1 FROM pg_depend d WHERE d.objid = l.oid AND d.deptype = 'e')`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying pg_language: %w", err)
	}
	defer rows.Close()

	var out []model.Language
	for rows.Next() {
		var name, handler string
		var trusted bool
		if err := rows.Scan(&name, &trusted, &handler); err != nil {
			return nil, fmt.Errorf("scanning pg_language row: %w", err)
		}
		out = append(out, model.Language{Name: name, IsTrusted: trusted, HandlerFn: handler})
	}
	return out, rows.Err()
}
