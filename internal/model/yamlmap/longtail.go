package yamlmap

import "github.com/dbsync/dbsync/internal/model"

// The kinds in this file (extension, language, cast, collation, conversion, type, aggregate,
// operator, operator class/family, text search objects, FDW/foreign server/user mapping/foreign
// table, event trigger) get a real, round-trippable mapping, but a leaner one than table/view/
// function/sequence: only the fields the Data Model names explicitly, plus owner and/or
// description for the kinds whose functions below map them. None of these kinds map privileges.

func extensionToMap(e model.Extension) map[string]any {
	out := map[string]any{"version": e.Version}
	setIf(out, "schema", e.SchemaName)
	setIf(out, "description", e.DescrText)
	return out
}

func extensionFromMap(name string, val map[string]any) model.Extension {
	return model.Extension{
		SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: getStr(val, "schema"), Name: name},
		Version: getStr(val, "version"),
		Meta: model.Meta{DescrText: getStr(val, "description")},
	}
}

func languageToMap(l model.Language) map[string]any {
	out := map[string]any{"handler": l.HandlerFn, "trusted": l.IsTrusted}
	setIf(out, "owner", l.OwnerName)
	setIf(out, "description", l.DescrText)
	return out
}

func languageFromMap(name string, val map[string]any) model.Language {
	return model.Language{
		Name: name,
		HandlerFn: getStr(val, "handler"),
		IsTrusted: getBool(val, "trusted"),
		Meta: model.Meta{OwnerName: getStr(val, "owner"), DescrText: getStr(val, "description")},
	}
}

func castToMap(c model.Cast) map[string]any {
	out := map[string]any{"context": c.Context}
	if !c.Function.IsEmpty() {
		out["function"] = map[string]any{"schema": c.Function.SchemaName, "name": c.Function.Name}
	}
	setIf(out, "description", c.DescrText)
	return out
}

func castFromMap(ident string, val map[string]any) model.Cast {
	src, tgt := splitCastPair(ident)
	c := model.Cast{SourceType: src, TargetType: tgt, Context: getStr(val, "context")}
	if fn := getMap(val, "function"); fn != nil {
		c.Function = model.SchemaQualifiedName{SchemaName: getStr(fn, "schema"), Name: getStr(fn, "name")}
	}
	c.DescrText = getStr(val, "description")
	return c
}

func splitCastPair(ident string) (string, string) {
	// ident is "(source AS target)"
	s := ident
	if len(s) > 1 && s[0] == '(' && s[len(s)-1] == ')' {
		s = s[1: len(s)-1]
	}
	for i := 0; i+4 <= len(s); i++ {
		if s[i:i+4] == " AS " {
			return trimSpace(s[:i]), trimSpace(s[i+4:])
		}
	}
	return s, ""
}

func typeToMap(t model.Type) map[string]any {
	out := map[string]any{"kind": string(t.TKind)}
	setIf(out, "owner", t.OwnerName)
	setIf(out, "description", t.DescrText)
	switch t.TKind {
	case model.TypeKindEnum:
		setSlice(out, "labels", t.Labels)
	case model.TypeKindComposite:
		var attrs []any
		for _, a := range t.Attributes {
			attrs = append(attrs, map[string]any{a.Name: map[string]any{"type": a.Type}})
		}
		out["attributes"] = attrs
	case model.TypeKindDomain:
		out["base_type"] = t.BaseType
		if t.NotNull {
			out["not_null"] = true
		}
		setIf(out, "default", t.Default)
		if len(t.DomainConstraints) > 0 {
			cons := map[string]any{}
			for _, c := range t.DomainConstraints {
				cons[c.Name] = map[string]any{"expression": c.Expression}
			}
			out["constraints"] = cons
		}
	case model.TypeKindRange:
		out["subtype"] = t.Subtype
		setIf(out, "subtype_opclass", t.SubtypeOpclass)
	case model.TypeKindBase:
		setIf(out, "input", t.InputFunction)
		setIf(out, "output", t.OutputFunction)
	}
	return out
}

func typeFromMap(schema, name string, val map[string]any) model.Type {
	t := model.Type{
		SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: schema, Name: name},
		TKind: model.TypeKind(getStr(val, "kind")),
	}
	t.OwnerName = getStr(val, "owner")
	t.DescrText = getStr(val, "description")
	switch t.TKind {
	case model.TypeKindEnum:
		t.Labels = getStrList(val, "labels")
	case model.TypeKindComposite:
		if attrsRaw, ok := val["attributes"].([]any); ok {
			for _, aRaw := range attrsRaw {
				aMap, ok := aRaw.(map[string]any)
				if !ok {
					continue
				}
				for aName, attrValRaw := range aMap {
					attrVal, _ := attrValRaw.(map[string]any)
					t.Attributes = append(t.Attributes, model.CompositeAttribute{Name: aName, Type: getStr(attrVal, "type")})
				}
			}
		}
	case model.TypeKindDomain:
		t.BaseType = getStr(val, "base_type")
		t.NotNull = getBool(val, "not_null")
		t.Default = getStr(val, "default")
		for cname, attrsRaw := range getMap(val, "constraints") {
			attrs, _ := attrsRaw.(map[string]any)
			t.DomainConstraints = append(t.DomainConstraints, model.DomainConstraint{Name: cname, Expression: getStr(attrs, "expression")})
		}
	case model.TypeKindRange:
		t.Subtype = getStr(val, "subtype")
		t.SubtypeOpclass = getStr(val, "subtype_opclass")
	case model.TypeKindBase:
		t.InputFunction = getStr(val, "input")
		t.OutputFunction = getStr(val, "output")
	}
	return t
}

func collationToMap(c model.Collation) map[string]any {
	out := map[string]any{"lc_collate": c.LcCollate, "lc_ctype": c.LcCType}
	setIf(out, "provider", c.Provider)
	setIf(out, "owner", c.OwnerName)
	return out
}

func collationFromMap(schema, name string, val map[string]any) model.Collation {
	return model.Collation{
		SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: schema, Name: name},
		LcCollate: getStr(val, "lc_collate"),
		LcCType: getStr(val, "lc_ctype"),
		Provider: getStr(val, "provider"),
		Meta: model.Meta{OwnerName: getStr(val, "owner")},
	}
}

func conversionToMap(c model.Conversion) map[string]any {
	return map[string]any{
		"for_encoding": c.ForEncoding,
		"to_encoding": c.ToEncoding,
		"function": map[string]any{"schema": c.FunctionName.SchemaName, "name": c.FunctionName.Name},
		"default": c.IsDefault,
	}
}

func conversionFromMap(schema, name string, val map[string]any) model.Conversion {
	fn := getMap(val, "function")
	return model.Conversion{
		SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: schema, Name: name},
		ForEncoding: getStr(val, "for_encoding"),
		ToEncoding: getStr(val, "to_encoding"),
		FunctionName: model.SchemaQualifiedName{SchemaName: getStr(fn, "schema"), Name: getStr(fn, "name")},
		IsDefault: getBool(val, "default"),
	}
}

func aggregateToMap(a model.Aggregate) map[string]any {
	out := map[string]any{
		"state_function": map[string]any{"schema": a.StateFunction.SchemaName, "name": a.StateFunction.Name},
		"state_type": a.StateType,
	}
	setSlice(out, "arguments", a.ArgTypes)
	if !a.FinalFunction.IsEmpty() {
		out["final_function"] = map[string]any{"schema": a.FinalFunction.SchemaName, "name": a.FinalFunction.Name}
	}
	setIf(out, "initial_condition", a.InitialCondition)
	setIf(out, "owner", a.OwnerName)
	return out
}

func operatorToMap(o model.Operator) map[string]any {
	out := map[string]any{"function": map[string]any{"schema": o.Function.SchemaName, "name": o.Function.Name}}
	setIf(out, "left_type", o.LeftType)
	setIf(out, "right_type", o.RightType)
	setIf(out, "commutator", o.Commutator)
	setIf(out, "negator", o.Negator)
	setIf(out, "owner", o.OwnerName)
	return out
}

func operatorClassToMap(oc model.OperatorClass) map[string]any {
	out := map[string]any{"data_type": oc.DataType}
	if oc.IsDefault {
		out["default"] = true
	}
	setIf(out, "family", oc.Family)
	setIf(out, "owner", oc.OwnerName)
	return out
}

func operatorFamilyToMap(of model.OperatorFamily) map[string]any {
	out := map[string]any{}
	setIf(out, "owner", of.OwnerName)
	return out
}

func tsParserToMap(t model.TSParser) map[string]any {
	return map[string]any{
		"start": t.StartFunc,
		"gettoken": t.TokenFunc,
		"end": t.EndFunc,
		"headline": t.HeadlineFunc,
		"lextypes": t.LextypesFunc,
	}
}

func tsDictToMap(t model.TSDictionary) map[string]any {
	out := map[string]any{"template": map[string]any{"schema": t.Template.SchemaName, "name": t.Template.Name}}
	setMapStr(out, "options", t.Options)
	return out
}

func tsTemplateToMap(t model.TSTemplate) map[string]any {
	return map[string]any{"init": t.InitFunc, "lexize": t.LexizeFunc}
}

func tsConfigToMap(t model.TSConfig) map[string]any {
	out := map[string]any{"parser": map[string]any{"schema": t.Parser.SchemaName, "name": t.Parser.Name}}
	var mappings []any
	for _, m := range t.Mappings {
		mappings = append(mappings, map[string]any{"token_type": m.TokenType, "dictionaries": strList(m.Dictionaries)})
	}
	if len(mappings) > 0 {
		out["mappings"] = mappings
	}
	return out
}

func foreignTableToMap(ft model.ForeignTable) map[string]any {
	out := map[string]any{"server": ft.ServerName}
	setMapStr(out, "options", ft.Options)
	if len(ft.Columns) > 0 {
		var cols []any
		for _, c := range ft.Columns {
			cols = append(cols, map[string]any{c.Name: columnAttrsToMap(c)})
		}
		out["columns"] = cols
	}
	return out
}

func fdwToMap(f model.FDW) map[string]any {
	out := map[string]any{}
	setIf(out, "handler", f.HandlerFn)
	setIf(out, "validator", f.ValidatorFn)
	setMapStr(out, "options", f.Options)
	setIf(out, "owner", f.OwnerName)
	return out
}

func fdwFromMap(name string, val map[string]any) model.FDW {
	return model.FDW{
		Name: name,
		HandlerFn: getStr(val, "handler"),
		ValidatorFn: getStr(val, "validator"),
		Options: getMapStr(val, "options"),
		Meta: model.Meta{OwnerName: getStr(val, "owner")},
	}
}

func foreignServerToMap(s model.ForeignServer) map[string]any {
	out := map[string]any{"fdw": s.FDWName}
	setIf(out, "type", s.Type)
	setIf(out, "version", s.Version)
	setMapStr(out, "options", s.Options)
	setIf(out, "owner", s.OwnerName)
	return out
}

func foreignServerFromMap(name string, val map[string]any) model.ForeignServer {
	return model.ForeignServer{
		Name: name,
		FDWName: getStr(val, "fdw"),
		Type: getStr(val, "type"),
		Version: getStr(val, "version"),
		Options: getMapStr(val, "options"),
		Meta: model.Meta{OwnerName: getStr(val, "owner")},
	}
}

func userMappingToMap(u model.UserMapping) map[string]any {
	out := map[string]any{}
	setMapStr(out, "options", u.Options)
	return out
}

func userMappingFromMap(ident string, val map[string]any) model.UserMapping {
	server, user := splitSignature2(ident)
	return model.UserMapping{ServerName: server, UserName: user, Options: getMapStr(val, "options")}
}

func splitSignature2(ident string) (string, string) {
	for i, c := range ident {
		if c == ' ' {
			return ident[:i], ident[i+1:]
		}
	}
	return ident, ""
}

func aggregateFromMap(schema, name string, val map[string]any) model.Aggregate {
	stateFn := getMap(val, "state_function")
	a := model.Aggregate{
		SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: schema, Name: name},
		StateFunction: model.SchemaQualifiedName{SchemaName: getStr(stateFn, "schema"), Name: getStr(stateFn, "name")},
		StateType: getStr(val, "state_type"),
		InitialCondition: getStr(val, "initial_condition"),
	}
	a.OwnerName = getStr(val, "owner")
	if finalFn := getMap(val, "final_function"); finalFn != nil {
		a.FinalFunction = model.SchemaQualifiedName{SchemaName: getStr(finalFn, "schema"), Name: getStr(finalFn, "name")}
	}
	return a
}

func operatorFromMap(schema, ident string, val map[string]any) model.Operator {
	name, argTypes := splitSignature(ident)
	fn := getMap(val, "function")
	o := model.Operator{
		SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: schema, Name: name},
		Function: model.SchemaQualifiedName{SchemaName: getStr(fn, "schema"), Name: getStr(fn, "name")},
		Commutator: getStr(val, "commutator"),
		Negator: getStr(val, "negator"),
	}
	if len(argTypes) > 0 {
		o.LeftType = argTypes[0]
	}
	if len(argTypes) > 1 {
		o.RightType = argTypes[1]
	}
	o.OwnerName = getStr(val, "owner")
	return o
}

func operatorClassFromMap(schema, ident string, val map[string]any) model.OperatorClass {
	name, method := splitUsing(ident)
	oc := model.OperatorClass{
		SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: schema, Name: name},
		IndexMethod: method,
		DataType: getStr(val, "data_type"),
		IsDefault: getBool(val, "default"),
		Family: getStr(val, "family"),
	}
	oc.OwnerName = getStr(val, "owner")
	return oc
}

func operatorFamilyFromMap(schema, ident string, val map[string]any) model.OperatorFamily {
	name, method := splitUsing(ident)
	of := model.OperatorFamily{
		SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: schema, Name: name},
		IndexMethod: method,
	}
	of.OwnerName = getStr(val, "owner")
	return of
}

func splitUsing(ident string) (string, string) {
	const sep = " using "
	for i := 0; i+len(sep) <= len(ident); i++ {
		if ident[i:i+len(sep)] == sep {
			return ident[:i], ident[i+len(sep):]
		}
	}
	return ident, ""
}

func tsParserFromMap(schema, name string, val map[string]any) model.TSParser {
	return model.TSParser{
		SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: schema, Name: name},
		StartFunc: getStr(val, "start"),
		TokenFunc: getStr(val, "gettoken"),
		EndFunc: getStr(val, "end"),
		HeadlineFunc: getStr(val, "headline"),
		LextypesFunc: getStr(val, "lextypes"),
	}
}

func tsDictFromMap(schema, name string, val map[string]any) model.TSDictionary {
	tmpl := getMap(val, "template")
	return model.TSDictionary{
		SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: schema, Name: name},
		Template: model.SchemaQualifiedName{SchemaName: getStr(tmpl, "schema"), Name: getStr(tmpl, "name")},
		Options: getMapStr(val, "options"),
	}
}

func tsTemplateFromMap(schema, name string, val map[string]any) model.TSTemplate {
	return model.TSTemplate{
		SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: schema, Name: name},
		InitFunc: getStr(val, "init"),
		LexizeFunc: getStr(val, "lexize"),
	}
}

func tsConfigFromMap(schema, name string, val map[string]any) model.TSConfig {
	parser := getMap(val, "parser")
	tc := model.TSConfig{
		SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: schema, Name: name},
		Parser: model.SchemaQualifiedName{SchemaName: getStr(parser, "schema"), Name: getStr(parser, "name")},
	}
	if mappingsRaw, ok := val["mappings"].([]any); ok {
		for _, mRaw := range mappingsRaw {
			mMap, ok := mRaw.(map[string]any)
			if !ok {
				continue
			}
			tc.Mappings = append(tc.Mappings, model.TSConfigMapping{
					TokenType: getStr(mMap, "token_type"),
					Dictionaries: getStrList(mMap, "dictionaries"),
			})
		}
	}
	return tc
}

func foreignTableFromMap(schema, name string, val map[string]any) model.ForeignTable {
	ft := model.ForeignTable{
		SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: schema, Name: name},
		ServerName: getStr(val, "server"),
		Options: getMapStr(val, "options"),
	}
	if colsRaw, ok := val["columns"].([]any); ok {
		for _, colRaw := range colsRaw {
			colMap, ok := colRaw.(map[string]any)
			if !ok {
				continue
			}
			for cname, attrsRaw := range colMap {
				attrs, _ := attrsRaw.(map[string]any)
				ft.Columns = append(ft.Columns, columnFromMap(cname, attrs))
			}
		}
	}
	return ft
}

func eventTriggerFromMap(name string, val map[string]any) model.EventTrigger {
	fn := getMap(val, "function")
	return model.EventTrigger{
		Name: name,
		Event: getStr(val, "event"),
		Function: model.SchemaQualifiedName{SchemaName: getStr(fn, "schema"), Name: getStr(fn, "name")},
		Tags: getStrList(val, "tags"),
		IsEnabled: getBool(val, "enabled"),
		Meta: model.Meta{OwnerName: getStr(val, "owner")},
	}
}

func eventTriggerToMap(e model.EventTrigger) map[string]any {
	out := map[string]any{
		"event": e.Event,
		"function": map[string]any{"schema": e.Function.SchemaName, "name": e.Function.Name},
		"enabled": e.IsEnabled,
	}
	setSlice(out, "tags", e.Tags)
	setIf(out, "owner", e.OwnerName)
	return out
}
