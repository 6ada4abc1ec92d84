package yamlmap

import (
	"fmt"

	"github.com/dbsync/dbsync/internal/model"
)

func schemaToMap(s model.NamedSchema, m model.Model) map[string]any {
	out := map[string]any{}
	setIf(out, "owner", s.OwnerName)
	setIf(out, "description", s.DescrText)
	if privs := privilegesToMap(s.Privs); len(privs) > 0 {
		out["privileges"] = privs
	}

	for _, t := range m.Tables {
		if t.SchemaName == s.Name {
			out[objKey("table", t.Name)] = tableToMap(t)
		}
	}
	for _, v := range m.Views {
		if v.SchemaName == s.Name {
			out[objKey("view", v.Name)] = viewToMap(v)
		}
	}
	for _, v := range m.MaterializedViews {
		if v.SchemaName == s.Name {
			out[objKey("materialized_view", v.Name)] = matviewToMap(v)
		}
	}
	for _, sq := range m.Sequences {
		if sq.SchemaName == s.Name && sq.Owner_ == nil {
			// Only ownerless sequences are written; a sequence owned by a column (Owner_ set) is
			// written neither here nor by tableToMap.
			out[objKey("sequence", sq.Name)] = sequenceToMap(sq)
		}
	}
	for _, fn := range m.Functions {
		if fn.SchemaName == s.Name {
			out[objKey("function", fmt.Sprintf("%s(%s)", fn.Name, joinTypes(fn.ArgTypes)))] = functionToMap(fn)
		}
	}
	for _, ty := range m.Types {
		if ty.SchemaName == s.Name {
			out[objKey("type", ty.Name)] = typeToMap(ty)
		}
	}
	for _, c := range m.Collations {
		if c.SchemaName == s.Name {
			out[objKey("collation", c.Name)] = collationToMap(c)
		}
	}
	for _, c := range m.Conversions {
		if c.SchemaName == s.Name {
			out[objKey("conversion", c.Name)] = conversionToMap(c)
		}
	}
	for _, a := range m.Aggregates {
		if a.SchemaName == s.Name {
			out[objKey("aggregate", fmt.Sprintf("%s(%s)", a.Name, joinTypes(a.ArgTypes)))] = aggregateToMap(a)
		}
	}
	for _, op := range m.Operators {
		if op.SchemaName == s.Name {
			out[objKey("operator", fmt.Sprintf("%s(%s, %s)", op.Name, op.LeftType, op.RightType))] = operatorToMap(op)
		}
	}
	for _, oc := range m.OperatorClasses {
		if oc.SchemaName == s.Name {
			out[objKey("operator_class", oc.Name+" using "+oc.IndexMethod)] = operatorClassToMap(oc)
		}
	}
	for _, of := range m.OperatorFamilies {
		if of.SchemaName == s.Name {
			out[objKey("operator_family", of.Name+" using "+of.IndexMethod)] = operatorFamilyToMap(of)
		}
	}
	for _, tp := range m.TSParsers {
		if tp.SchemaName == s.Name {
			out[objKey("text_search_parser", tp.Name)] = tsParserToMap(tp)
		}
	}
	for _, td := range m.TSDictionaries {
		if td.SchemaName == s.Name {
			out[objKey("text_search_dictionary", td.Name)] = tsDictToMap(td)
		}
	}
	for _, tt := range m.TSTemplates {
		if tt.SchemaName == s.Name {
			out[objKey("text_search_template", tt.Name)] = tsTemplateToMap(tt)
		}
	}
	for _, tc := range m.TSConfigs {
		if tc.SchemaName == s.Name {
			out[objKey("text_search_configuration", tc.Name)] = tsConfigToMap(tc)
		}
	}
	for _, ft := range m.ForeignTables {
		if ft.SchemaName == s.Name {
			out[objKey("foreign_table", ft.Name)] = foreignTableToMap(ft)
		}
	}
	return out
}

func joinTypes(types []string) string {
	out := ""
	for i, t := range types {
		if i > 0 {
			out += ", "
		}
		out += t
	}
	return out
}

func schemaFromMap(name string, val map[string]any) (s model.NamedSchema,
	tables []model.Table,
	views []model.View,
	matviews []model.MaterializedView,
	seqs []model.Sequence,
	fns []model.Function,
	types []model.Type,
	colls []model.Collation,
	convs []model.Conversion,
	aggs []model.Aggregate,
	ops []model.Operator,
	opClasses []model.OperatorClass,
	opFamilies []model.OperatorFamily,
	tsParsers []model.TSParser,
	tsDicts []model.TSDictionary,
	tsTemplates []model.TSTemplate,
	tsConfigs []model.TSConfig,
	foreignTables []model.ForeignTable,
) {
	s = model.NamedSchema{Name: name}
	s.OwnerName = getStr(val, "owner")
	s.DescrText = getStr(val, "description")
	s.Privs = privilegesFromMap(val["privileges"])

	for key, raw := range val {
		kind, ident, _ := splitObjKey(key)
		m, _ := raw.(map[string]any)
		switch kind {
		case "table":
			tables = append(tables, tableFromMap(name, ident, m))
		case "view":
			views = append(views, viewFromMap(name, ident, m))
		case "materialized_view":
			matviews = append(matviews, matviewFromMap(name, ident, m))
		case "sequence":
			seqs = append(seqs, sequenceFromMap(name, ident, m))
		case "function":
			fns = append(fns, functionFromMap(name, ident, m))
		case "type":
			types = append(types, typeFromMap(name, ident, m))
		case "collation":
			colls = append(colls, collationFromMap(name, ident, m))
		case "conversion":
			convs = append(convs, conversionFromMap(name, ident, m))
		case "aggregate":
			aggName, argTypes := splitSignature(ident)
			agg := aggregateFromMap(name, aggName, m)
			agg.ArgTypes = argTypes
			aggs = append(aggs, agg)
		case "operator":
			ops = append(ops, operatorFromMap(name, ident, m))
		case "operator_class":
			opClasses = append(opClasses, operatorClassFromMap(name, ident, m))
		case "operator_family":
			opFamilies = append(opFamilies, operatorFamilyFromMap(name, ident, m))
		case "text_search_parser":
			tsParsers = append(tsParsers, tsParserFromMap(name, ident, m))
		case "text_search_dictionary":
			tsDicts = append(tsDicts, tsDictFromMap(name, ident, m))
		case "text_search_template":
			tsTemplates = append(tsTemplates, tsTemplateFromMap(name, ident, m))
		case "text_search_configuration":
			tsConfigs = append(tsConfigs, tsConfigFromMap(name, ident, m))
		case "foreign_table":
			foreignTables = append(foreignTables, foreignTableFromMap(name, ident, m))
		}
	}
	return
}
