package catalog

import (
	"context"
	"fmt"

	"github.com/dbsync/dbsync/internal/model"
)

// fetchSequences fetches every sequence and, for ones owned by a column (serial columns and
// GENERATED... AS IDENTITY columns), attaches the owning table/column so yamlmap can nest them
// under that column instead of emitting a top-level sequence entry.
func (r *Reader) fetchSequences(ctx context.Context, tables []model.Table) ([]model.Sequence, error) {
	q := `
 SELECT c.oid, n.nspname, c.relname,
 s.seqtypid::regtype::text, s.seqstart, s.seqincrement, s.seqmax, s.seqmin, s.seqcache, s.seqcycle,
 coalesce(oc.relname, ''), coalesce(on_.nspname, ''), coalesce(a.attname, '')
 FROM pg_sequence s
 JOIN pg_class c ON c.oid = s.seqrelid
 JOIN pg_namespace n ON n.oid = c.relnamespace
 LEFT JOIN pg_depend d ON d.objid = c.oid AND d.deptype IN ('a', 'i')
 LEFT JOIN pg_class oc ON oc.oid = d.refobjid
 LEFT JOIN pg_namespace on_ ON on_.oid = oc.relnamespace
 LEFT JOIN pg_attribute a ON a.attrelid = d.refobjid AND a.attnum = d.refobjsubid
 WHERE ` + systemSchemaPredicate + ` AND ` + extensionOwnedPredicate("c.oid")

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying sequences: %w", err)
	}
	defer rows.Close()

	var out []model.Sequence
	for rows.Next() {
		var oid int64
		var schema, name, dataType string
		var start, incr, max, min, cache int64
		var cycle bool
		var ownerTable, ownerTableSchema, ownerColumn string
		if err := rows.Scan(&oid, &schema, &name, &dataType, &start, &incr, &max, &min, &cache, &cycle,
			&ownerTable, &ownerTableSchema, &ownerColumn); err != nil {
			return nil, fmt.Errorf("scanning sequence row: %w", err)
		}
		if !r.nameIncluded(schema) {
			continue
		}

		s := model.Sequence{
			SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: schema, Name: name},
			DataType: dataType,
			StartValue: start,
			Increment: incr,
			MaxValue: max,
			MinValue: min,
			CacheSize: cache,
			Cycle: cycle,
		}
		if ownerColumn != "" {
			s.Owner_ = &model.SequenceOwner{
				TableName: model.SchemaQualifiedName{SchemaName: ownerTableSchema, Name: ownerTable},
				ColumnName: ownerColumn,
			}
		} else {
			owner, descr, acl, err := r.fetchRelMeta(ctx, oid)
			if err != nil {
				return nil, fmt.Errorf("fetching metadata for sequence %s.%s: %w", schema, name, err)
			}
			s.OwnerName, s.DescrText, s.Privs = owner, descr, acl
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
