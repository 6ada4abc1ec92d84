package yamlmap

import "github.com/dbsync/dbsync/internal/model"

func viewToMap(v model.View) map[string]any {
	out := map[string]any{"definition": v.ViewDefinition}
	setIf(out, "owner", v.OwnerName)
	setIf(out, "description", v.DescrText)
	setMapStr(out, "options", v.Options)
	if privs := privilegesToMap(v.Privs); len(privs) > 0 {
		out["privileges"] = privs
	}
	return out
}

func viewFromMap(schema, name string, val map[string]any) model.View {
	v := model.View{SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: schema, Name: name}}
	v.ViewDefinition = getStr(val, "definition")
	v.OwnerName = getStr(val, "owner")
	v.DescrText = getStr(val, "description")
	v.Options = getMapStr(val, "options")
	v.Privs = privilegesFromMap(val["privileges"])
	return v
}

func matviewToMap(v model.MaterializedView) map[string]any {
	out := map[string]any{"definition": v.ViewDefinition}
	setIf(out, "owner", v.OwnerName)
	setIf(out, "description", v.DescrText)
	setMapStr(out, "options", v.Options)
	if privs := privilegesToMap(v.Privs); len(privs) > 0 {
		out["privileges"] = privs
	}
	if len(v.Indexes) > 0 {
		idx := map[string]any{}
		for _, i := range v.Indexes {
			idx[i.Name] = indexAttrsToMap(i)
		}
		out["indexes"] = idx
	}
	return out
}

func matviewFromMap(schema, name string, val map[string]any) model.MaterializedView {
	v := model.MaterializedView{SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: schema, Name: name}}
	v.ViewDefinition = getStr(val, "definition")
	v.OwnerName = getStr(val, "owner")
	v.DescrText = getStr(val, "description")
	v.Options = getMapStr(val, "options")
	v.Privs = privilegesFromMap(val["privileges"])
	for idxName, attrsRaw := range getMap(val, "indexes") {
		attrs, _ := attrsRaw.(map[string]any)
		v.Indexes = append(v.Indexes, model.Index{
				Name: idxName,
				OwningTable: model.SchemaQualifiedName{SchemaName: schema, Name: name},
				Columns: getStrList(attrs, "columns"),
				IsUnique: getBool(attrs, "unique"),
		})
	}
	return v
}

func sequenceToMap(s model.Sequence) map[string]any {
	out := map[string]any{}
	setIf(out, "owner", s.OwnerName)
	setIf(out, "description", s.DescrText)
	setIf(out, "data_type", s.DataType)
	setIf(out, "start", s.StartValue)
	setIf(out, "increment", s.Increment)
	setIf(out, "min_value", s.MinValue)
	setIf(out, "max_value", s.MaxValue)
	setIf(out, "cache", s.CacheSize)
	if s.Cycle {
		out["cycle"] = true
	}
	if privs := privilegesToMap(s.Privs); len(privs) > 0 {
		out["privileges"] = privs
	}
	return out
}

func sequenceFromMap(schema, name string, val map[string]any) model.Sequence {
	s := model.Sequence{SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: schema, Name: name}}
	s.OwnerName = getStr(val, "owner")
	s.DescrText = getStr(val, "description")
	s.DataType = getStr(val, "data_type")
	s.StartValue = getInt64(val, "start")
	s.Increment = getInt64(val, "increment")
	s.MinValue = getInt64(val, "min_value")
	s.MaxValue = getInt64(val, "max_value")
	s.CacheSize = getInt64(val, "cache")
	s.Cycle = getBool(val, "cycle")
	s.Privs = privilegesFromMap(val["privileges"])
	return s
}

func functionToMap(f model.Function) map[string]any {
	out := map[string]any{
		"language": f.Language,
		"returns": f.ReturnType,
		"source": f.FunctionDef,
	}
	setSlice(out, "arguments", f.ArgTypes)
	setIf(out, "owner", f.OwnerName)
	setIf(out, "description", f.DescrText)
	setIf(out, "volatility", f.Volatility)
	if f.IsStrict {
		out["strict"] = true
	}
	if f.IsSecurityDefiner {
		out["security_definer"] = true
	}
	if privs := privilegesToMap(f.Privs); len(privs) > 0 {
		out["privileges"] = privs
	}
	return out
}

func functionFromMap(schema, ident string, val map[string]any) model.Function {
	name, argTypes := splitSignature(ident)
	f := model.Function{SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: schema, Name: name}}
	if len(argTypes) == 0 {
		argTypes = getStrList(val, "arguments")
	}
	f.ArgTypes = argTypes
	f.Language = getStr(val, "language")
	f.ReturnType = getStr(val, "returns")
	f.FunctionDef = getStr(val, "source")
	f.OwnerName = getStr(val, "owner")
	f.DescrText = getStr(val, "description")
	f.Volatility = getStr(val, "volatility")
	f.IsStrict = getBool(val, "strict")
	f.IsSecurityDefiner = getBool(val, "security_definer")
	f.Privs = privilegesFromMap(val["privileges"])
	return f
}

// splitSignature parses "name(type1, type2)" into ("name", ["type1","type2"]).
func splitSignature(ident string) (string, []string) {
	open := -1
	for i, c := range ident {
		if c == '(' {
			open = i
			break
		}
	}
	if open < 0 {
		return ident, nil
	}
	name := ident[:open]
	inner := ident[open+1:]
	if len(inner) > 0 && inner[len(inner)-1] == ')' {
		inner = inner[:len(inner)-1]
	}
	if inner == "" {
		return name, nil
	}
	var types []string
	start := 0
	for i := 0; i <= len(inner); i++ {
		if i == len(inner) || inner[i] == ',' {
			t := trimSpace(inner[start:i])
			if t != "" {
				types = append(types, t)
			}
			start = i + 1
		}
	}
	return name, types
}

func trimSpace(s string) string {
	for len(s) > 0 && s[0] == ' ' {
		s = s[1:]
	}
	for len(s) > 0 && s[len(s)-1] == ' ' {
		s = s[:len(s)-1]
	}
	return s
}
