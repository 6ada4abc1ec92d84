package yamlmap

import (
	"fmt"

	"github.com/dbsync/dbsync/internal/model"
	"gopkg.in/yaml.v3"
)

// ToMap builds the deterministic map[string]any tree for m. Marshal the
// result with gopkg.in/yaml.v3 to get the final YAML document.
func ToMap(m model.Model) map[string]any {
	root := map[string]any{}

	for _, s := range m.NamedSchemas {
		root[objKey("schema", s.Name)] = schemaToMap(s, m)
	}

	for _, e := range m.Extensions {
		root[objKey("extension", e.Name)] = extensionToMap(e)
	}
	for _, l := range m.Languages {
		root[objKey("language", l.Name)] = languageToMap(l)
	}
	for _, c := range m.Casts {
		root[objKey("cast", fmt.Sprintf("(%s AS %s)", c.SourceType, c.TargetType))] = castToMap(c)
	}
	for _, f := range m.FDWs {
		root[objKey("foreign_data_wrapper", f.Name)] = fdwToMap(f)
	}
	for _, s := range m.ForeignServers {
		root[objKey("foreign_server", s.Name)] = foreignServerToMap(s)
	}
	for _, u := range m.UserMappings {
		root[objKey("user_mapping", u.ServerName+" "+u.UserName)] = userMappingToMap(u)
	}
	for _, et := range m.EventTriggers {
		root[objKey("event_trigger", et.Name)] = eventTriggerToMap(et)
	}

	return root
}

// Marshal renders m as a YAML document.
func Marshal(m model.Model) ([]byte, error) {
	return yaml.Marshal(ToMap(m))
}

// FromMap parses a decoded YAML document tree back into a Model. Dependency edges are left
// unpopulated; the Linker fills those in after loading.
func FromMap(root map[string]any) (model.Model, error) {
	var out model.Model
	for key, valRaw := range root {
		kind, ident, err := splitObjKey(key)
		if err != nil {
			return model.Model{}, err
		}
		val, _ := valRaw.(map[string]any)

		switch kind {
		case "schema":
			s, tables, views, matviews, seqs, fns, types, colls, convs,
			aggs, ops, opClasses, opFamilies, tsParsers, tsDicts, tsTemplates, tsConfigs, foreignTables := schemaFromMap(ident, val)
			out.NamedSchemas = append(out.NamedSchemas, s)
			out.Tables = append(out.Tables, tables...)
			out.Views = append(out.Views, views...)
			out.MaterializedViews = append(out.MaterializedViews, matviews...)
			out.Sequences = append(out.Sequences, seqs...)
			out.Functions = append(out.Functions, fns...)
			out.Types = append(out.Types, types...)
			out.Collations = append(out.Collations, colls...)
			out.Conversions = append(out.Conversions, convs...)
			out.Aggregates = append(out.Aggregates, aggs...)
			out.Operators = append(out.Operators, ops...)
			out.OperatorClasses = append(out.OperatorClasses, opClasses...)
			out.OperatorFamilies = append(out.OperatorFamilies, opFamilies...)
			out.TSParsers = append(out.TSParsers, tsParsers...)
			out.TSDictionaries = append(out.TSDictionaries, tsDicts...)
			out.TSTemplates = append(out.TSTemplates, tsTemplates...)
			out.TSConfigs = append(out.TSConfigs, tsConfigs...)
			out.ForeignTables = append(out.ForeignTables, foreignTables...)
		case "extension":
			out.Extensions = append(out.Extensions, extensionFromMap(ident, val))
		case "language":
			out.Languages = append(out.Languages, languageFromMap(ident, val))
		case "cast":
			out.Casts = append(out.Casts, castFromMap(ident, val))
		case "foreign_data_wrapper":
			out.FDWs = append(out.FDWs, fdwFromMap(ident, val))
		case "foreign_server":
			out.ForeignServers = append(out.ForeignServers, foreignServerFromMap(ident, val))
		case "user_mapping":
			out.UserMappings = append(out.UserMappings, userMappingFromMap(ident, val))
		case "event_trigger":
			out.EventTriggers = append(out.EventTriggers, eventTriggerFromMap(ident, val))
		default:
			return model.Model{}, fmt.Errorf("unknown top-level object kind %q in key %q", kind, key)
		}
	}
	return out, nil
}

// Unmarshal parses a raw YAML document into a Model.
func Unmarshal(data []byte) (model.Model, error) {
	var root map[string]any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return model.Model{}, fmt.Errorf("parsing YAML: %w", err)
	}
	return FromMap(root)
}

func splitObjKey(key string) (kind, ident string, err error) {
	for i, c := range key {
		if c == ' ' {
			return key[:i], key[i+1:], nil
		}
	}
	return key, "", nil
}
