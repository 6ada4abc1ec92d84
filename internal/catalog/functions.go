package catalog

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"github.com/dbsync/dbsync/internal/model"
)

func (r *Reader) fetchFunctions(ctx context.Context) ([]model.Function, error) {
	q := `
 SELECT p.oid, n.nspname, p.proname, l.lanname,
 pg_get_function_result(p.oid),
 coalesce(string_to_array(pg_get_function_arguments(p.oid), ', '), '{}'),
 p.prosrc, p.provolatile::text, p.proisstrict, p.prosecdef,
 pg_get_userbyid(p.proowner), coalesce(obj_description(p.oid, 'pg_proc'), ''),
 coalesce(p.proacl::text[], '{}')
 FROM pg_proc p
 JOIN pg_namespace n ON n.oid = p.pronamespace
 JOIN pg_language l ON l.oid = p.prolang
 WHERE p.prokind = 'f' AND ` + systemSchemaPredicate + ` AND ` + extensionOwnedPredicate("p.oid")

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying pg_proc for functions: %w", err)
	}
	defer rows.Close()

	var out []model.Function
	for rows.Next() {
		var oid int64
		var schema, name, lang, ret, src, volatility string
		var argTypes pq.StringArray
		var strict, secdef bool
		var owner, descr string
		var acl pq.StringArray
		if err := rows.Scan(&oid, &schema, &name, &lang, &ret, &argTypes, &src, &volatility, &strict, &secdef,
			&owner, &descr, &acl); err != nil {
			return nil, fmt.Errorf("scanning pg_proc row: %w", err)
		}
		if !r.nameIncluded(schema) {
			continue
		}
		out = append(out, model.Function{
				SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: schema, Name: name},
				ArgTypes: argTypes,
				ReturnType: ret,
				Language: lang,
				FunctionDef: src,
				Volatility: volatility,
				IsStrict: strict,
				IsSecurityDefiner: secdef,
				Meta: model.Meta{OwnerName: owner, DescrText: descr, Privs: decodeACL(acl)},
		})
	}
	return out, rows.Err()
}

func (r *Reader) fetchAggregates(ctx context.Context) ([]model.Aggregate, error) {
	q := `
 SELECT n.nspname, p.proname,
 coalesce(string_to_array(pg_get_function_arguments(p.oid), ', '), '{}'),
 sfn.nspname, sfp.proname, format_type(a.aggtranstype, null),
 coalesce(ffn.nspname, ''), coalesce(ffp.proname, ''),
 coalesce(a.agginitval, ''),
 pg_get_userbyid(p.proowner)
 FROM pg_aggregate a
 JOIN pg_proc p ON p.oid = a.aggfnoid
 JOIN pg_namespace n ON n.oid = p.pronamespace
 JOIN pg_proc sfp ON sfp.oid = a.aggtransfn
 JOIN pg_namespace sfn ON sfn.oid = sfp.pronamespace
 LEFT JOIN pg_proc ffp ON ffp.oid = a.aggfinalfn AND a.aggfinalfn != 0
 LEFT JOIN pg_namespace ffn ON ffn.oid = ffp.pronamespace
 WHERE ` + systemSchemaPredicate + ` AND ` + extensionOwnedPredicate("p.oid")

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying pg_aggregate: %w", err)
	}
	defer rows.Close()

	var out []model.Aggregate
	for rows.Next() {
		var schema, name string
		var argTypes pq.StringArray
		var stateFnSchema, stateFnName, stateType string
		var finalFnSchema, finalFnName, initCond, owner string
		if err := rows.Scan(&schema, &name, &argTypes, &stateFnSchema, &stateFnName, &stateType,
			&finalFnSchema, &finalFnName, &initCond, &owner); err != nil {
			return nil, fmt.Errorf("scanning pg_aggregate row: %w", err)
		}
		if !r.nameIncluded(schema) {
			continue
		}
		agg := model.Aggregate{
			SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: schema, Name: name},
			ArgTypes: argTypes,
			StateFunction: model.SchemaQualifiedName{SchemaName: stateFnSchema, Name: stateFnName},
			StateType: stateType,
			InitialCondition: initCond,
			Meta: model.Meta{OwnerName: owner},
		}
		if finalFnName != "" {
			agg.FinalFunction = model.SchemaQualifiedName{SchemaName: finalFnSchema, Name: finalFnName}
		}
		out = append(out, agg)
	}
	return out, rows.Err()
}
