package catalog

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"github.com/dbsync/dbsync/internal/model"
)

func (r *Reader) fetchCollations(ctx context.Context) ([]model.Collation, error) {
	q := `
 SELECT n.nspname, c.collname, c.collcollate, c.collctype, pg_get_userbyid(c.collowner)
 FROM pg_collation c
 JOIN pg_namespace n ON n.oid = c.collnamespace
 WHERE ` + systemSchemaPredicate + ` AND ` + extensionOwnedPredicate("c.oid")

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying pg_collation: %w", err)
	}
	defer rows.Close()

	var out []model.Collation
	for rows.Next() {
		var schema, name, lcCollate, lcCtype, owner string
		if err := rows.Scan(&schema, &name, &lcCollate, &lcCtype, &owner); err != nil {
			return nil, fmt.Errorf("scanning pg_collation row: %w", err)
		}
		if !r.nameIncluded(schema) {
			continue
		}
		out = append(out, model.Collation{
				SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: schema, Name: name},
				LcCollate: lcCollate,
				LcCType: lcCtype,
				Meta: model.Meta{OwnerName: owner},
		})
	}
	return out, rows.Err()
}

func (r *Reader) fetchConversions(ctx context.Context) ([]model.Conversion, error) {
	q := `
 SELECT n.nspname, c.conname, pg_encoding_to_char(c.conforencoding), pg_encoding_to_char(c.contoencoding),
 pn.nspname, p.proname, c.condefault
 FROM pg_conversion c
 JOIN pg_namespace n ON n.oid = c.connamespace
 JOIN pg_proc p ON p.oid = c.conproc
 JOIN pg_namespace pn ON pn.oid = p.pronamespace
 WHERE ` + systemSchemaPredicate + ` AND ` + extensionOwnedPredicate("c.oid")

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying pg_conversion: %w", err)
	}
	defer rows.Close()

	var out []model.Conversion
	for rows.Next() {
		var schema, name, forEnc, toEnc, fnSchema, fnName string
		var isDefault bool
		if err := rows.Scan(&schema, &name, &forEnc, &toEnc, &fnSchema, &fnName, &isDefault); err != nil {
			return nil, fmt.Errorf("scanning pg_conversion row: %w", err)
		}
		if !r.nameIncluded(schema) {
			continue
		}
		out = append(out, model.Conversion{
				SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: schema, Name: name},
				ForEncoding: forEnc,
				ToEncoding: toEnc,
				FunctionName: model.SchemaQualifiedName{SchemaName: fnSchema, Name: fnName},
				IsDefault: isDefault,
		})
	}
	return out, rows.Err()
}

// fetchTypes fetches enum, composite, domain, and range types. Base types created via CREATE TYPE
// (input/output functions) are rare enough in practice that we fetch them with the same query but
// tagged TypeKindBase, recording only their input and output function names.
func (r *Reader) fetchTypes(ctx context.Context) ([]model.Type, error) {
	q := `
 SELECT n.nspname, t.typname, t.typtype::text, pg_get_userbyid(t.typowner),
 coalesce(t.typnotnull, false), coalesce(t.typdefault, ''),
 coalesce(bt.typname, ''), coalesce(rngsub.typname, ''),
 coalesce(ip.proname, ''), coalesce(op.proname, '')
 FROM pg_type t
 LEFT JOIN pg_type bt ON bt.oid = t.typbasetype
 LEFT JOIN pg_range rng ON rng.rngtypid = t.oid
 LEFT JOIN pg_type rngsub ON rngsub.oid = rng.rngsubtype
 LEFT JOIN pg_proc ip ON ip.oid = t.typinput
 LEFT JOIN pg_proc op ON op.oid = t.typoutput
 JOIN pg_namespace n ON n.oid = t.typnamespace
 WHERE t.typtype IN ('e', 'c', 'd', 'r', 'b')
 AND t.typname NOT LIKE '\_%'
 AND (t.typrelid = 0 OR (SELECT relkind FROM pg_class WHERE oid = t.typrelid) = 'c')
 AND ` + systemSchemaPredicate + ` AND ` + extensionOwnedPredicate("t.oid")

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying pg_type: %w", err)
	}
	defer rows.Close()

	var out []model.Type
	for rows.Next() {
		var schema, name, typtype, owner, baseType, subtype, inputFn, outputFn string
		var notNull bool
		var def string
		if err := rows.Scan(&schema, &name, &typtype, &owner, &notNull, &def, &baseType, &subtype, &inputFn, &outputFn); err != nil {
			return nil, fmt.Errorf("scanning pg_type row: %w", err)
		}
		if !r.nameIncluded(schema) {
			continue
		}

		t := model.Type{
			SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: schema, Name: name},
			Meta: model.Meta{OwnerName: owner},
		}
		switch typtype {
		case "e":
			t.TKind = model.TypeKindEnum
			labels, err := r.fetchEnumLabels(ctx, schema, name)
			if err != nil {
				return nil, err
			}
			t.Labels = labels
		case "c":
			t.TKind = model.TypeKindComposite
			attrs, err := r.fetchCompositeAttributes(ctx, schema, name)
			if err != nil {
				return nil, err
			}
			t.Attributes = attrs
		case "d":
			t.TKind = model.TypeKindDomain
			t.BaseType = baseType
			t.NotNull = notNull
			t.Default = def
			cons, err := r.fetchDomainConstraints(ctx, schema, name)
			if err != nil {
				return nil, err
			}
			t.DomainConstraints = cons
		case "r":
			t.TKind = model.TypeKindRange
			t.Subtype = subtype
		default:
			t.TKind = model.TypeKindBase
			t.InputFunction = inputFn
			t.OutputFunction = outputFn
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Reader) fetchEnumLabels(ctx context.Context, schema, name string) ([]string, error) {
	const q = `
 SELECT e.enumlabel FROM pg_enum e
 JOIN pg_type t ON t.oid = e.enumtypid
 JOIN pg_namespace n ON n.oid = t.typnamespace
 WHERE n.nspname = $1 AND t.typname = $2
 ORDER BY e.enumsortorder`
	rows, err := r.db.QueryContext(ctx, q, schema, name)
	if err != nil {
		return nil, fmt.Errorf("querying pg_enum: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, err
		}
		out = append(out, label)
	}
	return out, rows.Err()
}

func (r *Reader) fetchCompositeAttributes(ctx context.Context, schema, name string) ([]model.CompositeAttribute, error) {
	const q = `
 SELECT a.attname, format_type(a.atttypid, a.atttypmod)
 FROM pg_attribute a
 JOIN pg_class c ON c.oid = a.attrelid
 JOIN pg_type t ON t.typrelid = c.oid
 JOIN pg_namespace n ON n.oid = t.typnamespace
 WHERE n.nspname = $1 AND t.typname = $2 AND a.attnum > 0 AND NOT a.attisdropped
 ORDER BY a.attnum`
	rows, err := r.db.QueryContext(ctx, q, schema, name)
	if err != nil {
		return nil, fmt.Errorf("querying composite type attributes: %w", err)
	}
	defer rows.Close()
	var out []model.CompositeAttribute
	for rows.Next() {
		var attr model.CompositeAttribute
		if err := rows.Scan(&attr.Name, &attr.Type); err != nil {
			return nil, err
		}
		out = append(out, attr)
	}
	return out, rows.Err()
}

func (r *Reader) fetchDomainConstraints(ctx context.Context, schema, name string) ([]model.DomainConstraint, error) {
	const q = `
 SELECT con.conname, pg_get_constraintdef(con.oid), NOT con.convalidated
 FROM pg_constraint con
 JOIN pg_type t ON t.oid = con.contypid
 JOIN pg_namespace n ON n.oid = t.typnamespace
 WHERE n.nspname = $1 AND t.typname = $2`
	rows, err := r.db.QueryContext(ctx, q, schema, name)
	if err != nil {
		return nil, fmt.Errorf("querying domain constraints: %w", err)
	}
	defer rows.Close()
	var out []model.DomainConstraint
	for rows.Next() {
		var c model.DomainConstraint
		if err := rows.Scan(&c.Name, &c.Expression, &c.NotValid); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Reader) fetchOperators(ctx context.Context) ([]model.Operator, error) {
	q := `
 SELECT n.nspname, o.oprname,
 coalesce(format_type(o.oprleft, null), ''), coalesce(format_type(o.oprright, null), ''),
 fn.nspname, fp.proname, coalesce(o.oprcom::regoper::text, ''), coalesce(o.oprnegate::regoper::text, ''),
 pg_get_userbyid(o.oprowner)
 FROM pg_operator o
 JOIN pg_namespace n ON n.oid = o.oprnamespace
 JOIN pg_proc fp ON fp.oid = o.oprcode
 JOIN pg_namespace fn ON fn.oid = fp.pronamespace
 WHERE ` + systemSchemaPredicate + ` AND ` + extensionOwnedPredicate("o.oid")

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying pg_operator: %w", err)
	}
	defer rows.Close()

	var out []model.Operator
	for rows.Next() {
		var schema, name, left, right, fnSchema, fnName, commutator, negator, owner string
		if err := rows.Scan(&schema, &name, &left, &right, &fnSchema, &fnName, &commutator, &negator, &owner); err != nil {
			return nil, fmt.Errorf("scanning pg_operator row: %w", err)
		}
		if !r.nameIncluded(schema) {
			continue
		}
		out = append(out, model.Operator{
				SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: schema, Name: name},
				LeftType: left,
				RightType: right,
				Function: model.SchemaQualifiedName{SchemaName: fnSchema, Name: fnName},
				Commutator: commutator,
				Negator: negator,
				Meta: model.Meta{OwnerName: owner},
		})
	}
	return out, rows.Err()
}

func (r *Reader) fetchOperatorClasses(ctx context.Context) ([]model.OperatorClass, error) {
	q := `
 SELECT n.nspname, oc.opcname, am.amname, format_type(oc.opcintype, null), oc.opcdefault,
 coalesce(of.opfname, ''), pg_get_userbyid(oc.opcowner)
 FROM pg_opclass oc
 JOIN pg_am am ON am.oid = oc.opcmethod
 JOIN pg_namespace n ON n.oid = oc.opcnamespace
 LEFT JOIN pg_opfamily of ON of.oid = oc.opcfamily
 WHERE ` + systemSchemaPredicate + ` AND ` + extensionOwnedPredicate("oc.oid")

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying pg_opclass: %w", err)
	}
	defer rows.Close()

	var out []model.OperatorClass
	for rows.Next() {
		var schema, name, method, dataType, family, owner string
		var isDefault bool
		if err := rows.Scan(&schema, &name, &method, &dataType, &isDefault, &family, &owner); err != nil {
			return nil, fmt.Errorf("scanning pg_opclass row: %w", err)
		}
		if !r.nameIncluded(schema) {
			continue
		}
		out = append(out, model.OperatorClass{
				SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: schema, Name: name},
				IndexMethod: method,
				DataType: dataType,
				IsDefault: isDefault,
				Family: family,
				Meta: model.Meta{OwnerName: owner},
		})
	}
	return out, rows.Err()
}

func (r *Reader) fetchOperatorFamilies(ctx context.Context) ([]model.OperatorFamily, error) {
	q := `
 SELECT n.nspname, of.opfname, am.amname, pg_get_userbyid(of.opfowner)
 FROM pg_opfamily of
 JOIN pg_am am ON am.oid = of.opfmethod
 JOIN pg_namespace n ON n.oid = of.opfnamespace
 WHERE ` + systemSchemaPredicate + ` AND ` + extensionOwnedPredicate("of.oid")

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying pg_opfamily: %w", err)
	}
	defer rows.Close()

	var out []model.OperatorFamily
	for rows.Next() {
		var schema, name, method, owner string
		if err := rows.Scan(&schema, &name, &method, &owner); err != nil {
			return nil, fmt.Errorf("scanning pg_opfamily row: %w", err)
		}
		if !r.nameIncluded(schema) {
			continue
		}
		out = append(out, model.OperatorFamily{
				SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: schema, Name: name},
				IndexMethod: method,
				Meta: model.Meta{OwnerName: owner},
		})
	}
	return out, rows.Err()
}

func (r *Reader) fetchEventTriggers(ctx context.Context) ([]model.EventTrigger, error) {
	const q = `
 SELECT e.evtname, e.evtevent, n.nspname, p.proname, coalesce(e.evttags, '{}'), e.evtenabled != 'D',
 pg_get_userbyid(e.evtowner)
 FROM pg_event_trigger e
 JOIN pg_proc p ON p.oid = e.evtfoid
 JOIN pg_namespace n ON n.oid = p.pronamespace`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying pg_event_trigger: %w", err)
	}
	defer rows.Close()

	var out []model.EventTrigger
	for rows.Next() {
		var name, event, fnSchema, fnName, owner string
		var tags pq.StringArray
		var enabled bool
		if err := rows.Scan(&name, &event, &fnSchema, &fnName, &tags, &enabled, &owner); err != nil {
			return nil, fmt.Errorf("scanning pg_event_trigger row: %w", err)
		}
		out = append(out, model.EventTrigger{
				Name: name,
				Event: event,
				Function: model.SchemaQualifiedName{SchemaName: fnSchema, Name: fnName},
				Tags: tags,
				IsEnabled: enabled,
				Meta: model.Meta{OwnerName: owner},
		})
	}
	return out, rows.Err()
}

func (r *Reader) fetchCasts(ctx context.Context) ([]model.Cast, error) {
	const q = `
 SELECT format_type(c.castsource, null), format_type(c.casttarget, null),
 coalesce(fn.nspname, ''), coalesce(fp.proname, ''), c.castcontext::text
 FROM pg_cast c
 LEFT JOIN pg_proc fp ON fp.oid = c.castfunc AND c.castfunc != 0
 LEFT JOIN pg_namespace fn ON fn.oid = fp.pronamespace
 WHERE NOT EXISTS (SELECT 1 FROM pg_depend d WHERE d.objid = c.oid AND d.deptype = 'e')`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying pg_cast: %w", err)
	}
	defer rows.Close()

	var out []model.Cast
	for rows.Next() {
		var src, tgt, fnSchema, fnName, context string
		if err := rows.Scan(&src, &tgt, &fnSchema, &fnName, &context); err != nil {
			return nil, fmt.Errorf("scanning pg_cast row: %w", err)
		}
		c := model.Cast{SourceType: src, TargetType: tgt, Context: castContextName(context)}
		if fnName != "" {
			c.Function = model.SchemaQualifiedName{SchemaName: fnSchema, Name: fnName}
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func castContextName(code string) string {
	switch code {
	case "e":
		return "EXPLICIT"
	case "a":
		return "ASSIGNMENT"
	case "i":
		return "IMPLICIT"
	}
	return code
}

func (r *Reader) fetchTSParsers(ctx context.Context) ([]model.TSParser, error) {
	q := `
 SELECT n.nspname, p.prsname, sp.proname, tp.proname, ep.proname, hp.proname, lp.proname
 FROM pg_ts_parser p
 JOIN pg_namespace n ON n.oid = p.prsnamespace
 JOIN pg_proc sp ON sp.oid = p.prsstart
 JOIN pg_proc tp ON tp.oid = p.prstoken
 JOIN pg_proc ep ON ep.oid = p.prsend
 JOIN pg_proc hp ON hp.oid = p.prsheadline
 JOIN pg_proc lp ON lp.oid = p.prslextype
 WHERE ` + systemSchemaPredicate + ` AND ` + extensionOwnedPredicate("p.oid")

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying pg_ts_parser: %w", err)
	}
	defer rows.Close()

	var out []model.TSParser
	for rows.Next() {
		var schema, name, start, token, end, headline, lextypes string
		if err := rows.Scan(&schema, &name, &start, &token, &end, &headline, &lextypes); err != nil {
			return nil, fmt.Errorf("scanning pg_ts_parser row: %w", err)
		}
		if !r.nameIncluded(schema) {
			continue
		}
		out = append(out, model.TSParser{
				SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: schema, Name: name},
				StartFunc: start,
				TokenFunc: token,
				EndFunc: end,
				HeadlineFunc: headline,
				LextypesFunc: lextypes,
		})
	}
	return out, rows.Err()
}

func (r *Reader) fetchTSDictionaries(ctx context.Context) ([]model.TSDictionary, error) {
	q := `
 SELECT n.nspname, d.dictname, tn.nspname, t.tmplname, coalesce(d.dictinitoption, '')
 FROM pg_ts_dict d
 JOIN pg_namespace n ON n.oid = d.dictnamespace
 JOIN pg_ts_template t ON t.oid = d.dicttemplate
 JOIN pg_namespace tn ON tn.oid = t.tmplnamespace
 WHERE ` + systemSchemaPredicate + ` AND ` + extensionOwnedPredicate("d.oid")

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying pg_ts_dict: %w", err)
	}
	defer rows.Close()

	var out []model.TSDictionary
	for rows.Next() {
		var schema, name, tmplSchema, tmplName, initOption string
		if err := rows.Scan(&schema, &name, &tmplSchema, &tmplName, &initOption); err != nil {
			return nil, fmt.Errorf("scanning pg_ts_dict row: %w", err)
		}
		if !r.nameIncluded(schema) {
			continue
		}
		td := model.TSDictionary{
			SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: schema, Name: name},
			Template: model.SchemaQualifiedName{SchemaName: tmplSchema, Name: tmplName},
		}
		if initOption != "" {
			td.Options = parseDictInitOptions(initOption)
		}
		out = append(out, td)
	}
	return out, rows.Err()
}

// parseDictInitOptions parses dictinitoption's "key1 = val1, key2 = val2" form.
func parseDictInitOptions(raw string) map[string]string {
	out := map[string]string{}
	for _, part := range splitTrim(raw, ',') {
		kv := splitTrim(part, '=')
		if len(kv) == 2 {
			out[kv[0]] = kv[1]
		}
	}
	return out
}

func splitTrim(s string, sep byte) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == sep {
			part := trimSpaceLongtail(s[start:i])
			if part != "" {
				out = append(out, part)
			}
			start = i + 1
		}
	}
	return out
}

func trimSpaceLongtail(s string) string {
	for len(s) > 0 && s[0] == ' ' {
		s = s[1:]
	}
	for len(s) > 0 && s[len(s)-1] == ' ' {
		s = s[:len(s)-1]
	}
	return s
}

func (r *Reader) fetchTSTemplates(ctx context.Context) ([]model.TSTemplate, error) {
	q := `
 SELECT n.nspname, t.tmplname, ip.proname, lp.proname
 FROM pg_ts_template t
 JOIN pg_namespace n ON n.oid = t.tmplnamespace
 JOIN pg_proc ip ON ip.oid = t.tmplinit AND t.tmplinit != 0
 JOIN pg_proc lp ON lp.oid = t.tmpllexize
 WHERE ` + systemSchemaPredicate + ` AND ` + extensionOwnedPredicate("t.oid")

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying pg_ts_template: %w", err)
	}
	defer rows.Close()

	var out []model.TSTemplate
	for rows.Next() {
		var schema, name, initFn, lexizeFn string
		if err := rows.Scan(&schema, &name, &initFn, &lexizeFn); err != nil {
			return nil, fmt.Errorf("scanning pg_ts_template row: %w", err)
		}
		if !r.nameIncluded(schema) {
			continue
		}
		out = append(out, model.TSTemplate{
				SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: schema, Name: name},
				InitFunc: initFn,
				LexizeFunc: lexizeFn,
		})
	}
	return out, rows.Err()
}

func (r *Reader) fetchTSConfigs(ctx context.Context) ([]model.TSConfig, error) {
	q := `
 SELECT c.oid, n.nspname, c.cfgname, pn.nspname, p.prsname
 FROM pg_ts_config c
 JOIN pg_namespace n ON n.oid = c.cfgnamespace
 JOIN pg_ts_parser p ON p.oid = c.cfgparser
 JOIN pg_namespace pn ON pn.oid = p.prsnamespace
 WHERE ` + systemSchemaPredicate + ` AND ` + extensionOwnedPredicate("c.oid")

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying pg_ts_config: %w", err)
	}
	defer rows.Close()

	type raw struct {
		oid int64
		schema, name string
		parserSchema string
		parserName string
	}
	var raws []raw
	for rows.Next() {
		var x raw
		if err := rows.Scan(&x.oid, &x.schema, &x.name, &x.parserSchema, &x.parserName); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning pg_ts_config row: %w", err)
		}
		raws = append(raws, x)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var out []model.TSConfig
	for _, x := range raws {
		if !r.nameIncluded(x.schema) {
			continue
		}
		mappings, err := r.fetchTSConfigMappings(ctx, x.oid)
		if err != nil {
			return nil, fmt.Errorf("fetching mappings for text search config %s.%s: %w", x.schema, x.name, err)
		}
		out = append(out, model.TSConfig{
				SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: x.schema, Name: x.name},
				Parser: model.SchemaQualifiedName{SchemaName: x.parserSchema, Name: x.parserName},
				Mappings: mappings,
		})
	}
	return out, nil
}

func (r *Reader) fetchTSConfigMappings(ctx context.Context, cfgOid int64) ([]model.TSConfigMapping, error) {
	const q = `
 SELECT tok.alias, array_agg(dict.dictname ORDER BY m.mapcfg)
 FROM pg_ts_config_map m
 JOIN pg_ts_dict dict ON dict.oid = m.mapdict
 JOIN ts_token_type((SELECT cfgparser FROM pg_ts_config WHERE oid = m.mapcfg)
) tok ON tok.tokid = m.maptokentype
 WHERE m.mapcfg = $1
 GROUP BY tok.alias
 ORDER BY tok.alias`

	rows, err := r.db.QueryContext(ctx, q, cfgOid)
	if err != nil {
		return nil, fmt.Errorf("querying pg_ts_config_map: %w", err)
	}
	defer rows.Close()

	var out []model.TSConfigMapping
	for rows.Next() {
		var tokenType string
		var dicts pq.StringArray
		if err := rows.Scan(&tokenType, &dicts); err != nil {
			return nil, fmt.Errorf("scanning pg_ts_config_map row: %w", err)
		}
		out = append(out, model.TSConfigMapping{TokenType: tokenType, Dictionaries: dicts})
	}
	return out, rows.Err()
}

func (r *Reader) fetchFDWs(ctx context.Context) ([]model.FDW, error) {
	const q = `
 SELECT w.fdwname, coalesce(hp.proname, ''), coalesce(vp.proname, ''),
 coalesce(w.fdwoptions, '{}'), pg_get_userbyid(w.fdwowner)
 FROM pg_foreign_data_wrapper w
 LEFT JOIN pg_proc hp ON hp.oid = w.fdwhandler AND w.fdwhandler != 0
 LEFT JOIN pg_proc vp ON vp.oid = w.fdwvalidator AND w.fdwvalidator != 0
 WHERE NOT EXISTS (SELECT 1 FROM pg_depend d WHERE d.objid = w.oid AND d.deptype = 'e')`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying pg_foreign_data_wrapper: %w", err)
	}
	defer rows.Close()

	var out []model.FDW
	for rows.Next() {
		var name, handler, validator, owner string
		var opts pq.StringArray
		if err := rows.Scan(&name, &handler, &validator, &opts, &owner); err != nil {
			return nil, fmt.Errorf("scanning pg_foreign_data_wrapper row: %w", err)
		}
		out = append(out, model.FDW{
				Name: name,
				HandlerFn: handler,
				ValidatorFn: validator,
				Options: parseOptionsArray(opts),
				Meta: model.Meta{OwnerName: owner},
		})
	}
	return out, rows.Err()
}

// parseOptionsArray parses the "key=value" text[] form shared by fdwoptions/srvoptions/umoptions.
func parseOptionsArray(vals []string) map[string]string {
	if len(vals) == 0 {
		return nil
	}
	out := make(map[string]string, len(vals))
	for _, v := range vals {
		for i := 0; i < len(v); i++ {
			if v[i] == '=' {
				out[v[:i]] = v[i+1:]
				break
			}
		}
	}
	return out
}

func (r *Reader) fetchForeignServers(ctx context.Context) ([]model.ForeignServer, error) {
	const q = `
 SELECT s.srvname, w.fdwname, coalesce(s.srvtype, ''), coalesce(s.srvversion, ''),
 coalesce(s.srvoptions, '{}'), pg_get_userbyid(s.srvowner)
 FROM pg_foreign_server s
 JOIN pg_foreign_data_wrapper w ON w.oid = s.srvfdw
 WHERE NOT EXISTS (SELECT 1 FROM pg_depend d WHERE d.objid = s.oid AND d.deptype = 'e')`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying pg_foreign_server: %w", err)
	}
	defer rows.Close()

	var out []model.ForeignServer
	for rows.Next() {
		var name, fdw, typ, version, owner string
		var opts pq.StringArray
		if err := rows.Scan(&name, &fdw, &typ, &version, &opts, &owner); err != nil {
			return nil, fmt.Errorf("scanning pg_foreign_server row: %w", err)
		}
		out = append(out, model.ForeignServer{
				Name: name,
				FDWName: fdw,
				Type: typ,
				Version: version,
				Options: parseOptionsArray(opts),
				Meta: model.Meta{OwnerName: owner},
		})
	}
	return out, rows.Err()
}

func (r *Reader) fetchUserMappings(ctx context.Context) ([]model.UserMapping, error) {
	const q = `
 SELECT coalesce(rolname, 'PUBLIC'), s.srvname, coalesce(u.umoptions, '{}')
 FROM pg_user_mapping u
 JOIN pg_foreign_server s ON s.oid = u.umserver
 LEFT JOIN pg_roles ro ON ro.oid = u.umuser`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying pg_user_mapping: %w", err)
	}
	defer rows.Close()

	var out []model.UserMapping
	for rows.Next() {
		var user, server string
		var opts pq.StringArray
		if err := rows.Scan(&user, &server, &opts); err != nil {
			return nil, fmt.Errorf("scanning pg_user_mapping row: %w", err)
		}
		out = append(out, model.UserMapping{
				ServerName: server,
				UserName: user,
				Options: parseOptionsArray(opts),
		})
	}
	return out, rows.Err()
}

func (r *Reader) fetchForeignTables(ctx context.Context) ([]model.ForeignTable, error) {
	q := `
 SELECT c.oid, n.nspname, c.relname, s.srvname, coalesce(ft.ftoptions, '{}')
 FROM pg_foreign_table ft
 JOIN pg_class c ON c.oid = ft.ftrelid
 JOIN pg_namespace n ON n.oid = c.relnamespace
 JOIN pg_foreign_server s ON s.oid = ft.ftserver
 WHERE ` + systemSchemaPredicate + ` AND ` + extensionOwnedPredicate("c.oid")

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying pg_foreign_table: %w", err)
	}
	defer rows.Close()

	type raw struct {
		oid int64
		schema, name string
		server string
		opts pq.StringArray
	}
	var raws []raw
	for rows.Next() {
		var x raw
		if err := rows.Scan(&x.oid, &x.schema, &x.name, &x.server, &x.opts); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning pg_foreign_table row: %w", err)
		}
		raws = append(raws, x)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var out []model.ForeignTable
	for _, x := range raws {
		if !r.nameIncluded(x.schema) {
			continue
		}
		cols, err := r.fetchColumns(ctx, x.oid)
		if err != nil {
			return nil, fmt.Errorf("fetching columns for foreign table %s.%s: %w", x.schema, x.name, err)
		}
		out = append(out, model.ForeignTable{
				SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: x.schema, Name: x.name},
				ServerName: x.server,
				Columns: cols,
				Options: parseOptionsArray(x.opts),
		})
	}
	return out, nil
}
