package sqlgen

import (
	"fmt"
	"strings"

	"github.com/dbsync/dbsync/internal/model"
)

// generateCreate renders a Create change for every object kind except Table (the scheduler renders
// table creates itself via CreateTableHeader/CreateTableTail for the header/tail SCC split).
func generateCreate(o model.Object) ([]Statement, error) {
	switch v := o.(type) {
	case model.NamedSchema:
		return withOwnerStatements(ddl("CREATE SCHEMA %s", model.EscapeIdentifier(v.Name)), v), nil
	case model.Extension:
		return []Statement{ddl("CREATE EXTENSION %s SCHEMA %s VERSION %s",
				model.EscapeIdentifier(v.Name), model.EscapeIdentifier(v.SchemaName), model.EscapeLiteral(v.Version))}, nil
	case model.Language:
		trusted := ""
		if v.IsTrusted {
			trusted = "TRUSTED "
		}
		return []Statement{ddl("CREATE %sLANGUAGE %s HANDLER %s", trusted, model.EscapeIdentifier(v.Name), v.HandlerFn)}, nil
	case model.Collation:
		return []Statement{ddl("CREATE COLLATION %s (LC_COLLATE = %s, LC_CTYPE = %s, PROVIDER = %s)",
				v.QualifiedSQL(), model.EscapeLiteral(v.LcCollate), model.EscapeLiteral(v.LcCType), model.EscapeLiteral(v.Provider))}, nil
	case model.Conversion:
		def := ""
		if v.IsDefault {
			def = "DEFAULT "
		}
		return []Statement{ddl("CREATE %sCONVERSION %s FOR %s TO %s FROM %s",
				def, v.QualifiedSQL(), model.EscapeLiteral(v.ForEncoding), model.EscapeLiteral(v.ToEncoding), v.FunctionName.QualifiedSQL())}, nil
	case model.Type:
		return createType(v)
	case model.View:
		return createView(v)
	case model.MaterializedView:
		return createMatview(v)
	case model.Sequence:
		return []Statement{CreateSequence(v)}, nil
	case model.Function:
		return []Statement{createFunction(v)}, nil
	case model.Aggregate:
		return []Statement{createAggregate(v)}, nil
	case model.Operator:
		return []Statement{createOperator(v)}, nil
	case model.OperatorClass:
		return []Statement{ddl("CREATE OPERATOR CLASS %s%s USING %s AS FAMILY %s",
				v.QualifiedSQL(), defaultSuffix(v.IsDefault), v.IndexMethod, v.Family)}, nil
	case model.OperatorFamily:
		return []Statement{ddl("CREATE OPERATOR FAMILY %s USING %s", v.QualifiedSQL(), v.IndexMethod)}, nil
	case model.EventTrigger:
		enabled := ""
		if !v.IsEnabled {
			enabled = "DISABLE"
		}
		stmtText := fmt.Sprintf("CREATE EVENT TRIGGER %s ON %s", model.EscapeIdentifier(v.Name), v.Event)
		if len(v.Tags) > 0 {
			tags := make([]string, len(v.Tags))
			for i, t := range v.Tags {
				tags[i] = model.EscapeLiteral(t)
			}
			stmtText += " WHEN TAG IN (" + strings.Join(tags, ", ") + ")"
		}
		stmtText += fmt.Sprintf(" EXECUTE FUNCTION %s()", v.Function.QualifiedSQL())
		stmts := []Statement{ddl(stmtText)}
		if enabled != "" {
			stmts = append(stmts, ddl("ALTER EVENT TRIGGER %s %s", model.EscapeIdentifier(v.Name), enabled))
		}
		return stmts, nil
	case model.Cast:
		return []Statement{ddl("CREATE CAST (%s AS %s) WITH FUNCTION %s AS %s", v.SourceType, v.TargetType, v.Function.QualifiedSQL(), v.Context)}, nil
	case model.TSParser:
		return []Statement{ddl("CREATE TEXT SEARCH PARSER %s (START = %s, GETTOKEN = %s, END = %s, LEXTYPES = %s, HEADLINE = %s)",
				v.QualifiedSQL(), v.StartFunc, v.TokenFunc, v.EndFunc, v.LextypesFunc, v.HeadlineFunc)}, nil
	case model.TSDictionary:
		return []Statement{ddl("CREATE TEXT SEARCH DICTIONARY %s (TEMPLATE = %s%s)", v.QualifiedSQL(), v.Template.QualifiedSQL(), optionsSuffix(v.Options))}, nil
	case model.TSTemplate:
		return []Statement{ddl("CREATE TEXT SEARCH TEMPLATE %s (INIT = %s, LEXIZE = %s)", v.QualifiedSQL(), v.InitFunc, v.LexizeFunc)}, nil
	case model.TSConfig:
		stmts := []Statement{ddl("CREATE TEXT SEARCH CONFIGURATION %s (PARSER = %s)", v.QualifiedSQL(), v.Parser.QualifiedSQL())}
		for _, m := range v.Mappings {
			stmts = append(stmts, ddl("ALTER TEXT SEARCH CONFIGURATION %s ADD MAPPING FOR %s WITH %s",
					v.QualifiedSQL(), m.TokenType, strings.Join(m.Dictionaries, ", ")))
		}
		return stmts, nil
	case model.FDW:
		return []Statement{ddl("CREATE FOREIGN DATA WRAPPER %s HANDLER %s VALIDATOR %s%s",
				model.EscapeIdentifier(v.Name), v.HandlerFn, v.ValidatorFn, optionsSuffix(v.Options))}, nil
	case model.ForeignServer:
		return []Statement{ddl("CREATE SERVER %s TYPE %s VERSION %s FOREIGN DATA WRAPPER %s%s",
				model.EscapeIdentifier(v.Name), model.EscapeLiteral(v.Type), model.EscapeLiteral(v.Version), model.EscapeIdentifier(v.FDWName), optionsSuffix(v.Options))}, nil
	case model.UserMapping:
		return []Statement{ddl("CREATE USER MAPPING FOR %s SERVER %s%s",
				model.EscapeIdentifier(v.UserName), model.EscapeIdentifier(v.ServerName), optionsSuffix(v.Options))}, nil
	case model.ForeignTable:
		return createForeignTable(v)
	default:
		return nil, fmt.Errorf("sqlgen: no CREATE generator for kind %q", o.Kind())
	}
}

func defaultSuffix(isDefault bool) string {
	if isDefault {
		return " DEFAULT"
	}
	return ""
}

func optionsSuffix(opts map[string]string) string {
	if len(opts) == 0 {
		return ""
	}
	var parts []string
	for k, v := range opts {
		parts = append(parts, fmt.Sprintf("%s %s", k, model.EscapeLiteral(v)))
	}
	return " OPTIONS (" + strings.Join(parts, ", ") + ")"
}

func withOwnerStatements(s Statement, o model.Owned) []Statement {
	stmts := []Statement{s}
	if o.Owner() != "" {
		kindWord, ident := objectLabel(o.(model.Object))
		stmts = append(stmts, ddl("ALTER %s %s OWNER TO %s", kindWord, ident, model.EscapeIdentifier(o.Owner())))
	}
	return stmts
}

func createType(t model.Type) ([]Statement, error) {
	switch t.TKind {
	case model.TypeKindEnum:
		labels := make([]string, len(t.Labels))
		for i, l := range t.Labels {
			labels[i] = model.EscapeLiteral(l)
		}
		return []Statement{ddl("CREATE TYPE %s AS ENUM (%s)", t.QualifiedSQL(), strings.Join(labels, ", "))}, nil
	case model.TypeKindComposite:
		attrs := make([]string, len(t.Attributes))
		for i, a := range t.Attributes {
			piece := fmt.Sprintf("%s %s", model.EscapeIdentifier(a.Name), a.Type)
			if a.Collation != "" {
				piece += " COLLATE " + model.EscapeIdentifier(a.Collation)
			}
			attrs[i] = piece
		}
		return []Statement{ddl("CREATE TYPE %s AS (%s)", t.QualifiedSQL(), strings.Join(attrs, ", "))}, nil
	case model.TypeKindDomain:
		stmt := fmt.Sprintf("CREATE DOMAIN %s AS %s", t.QualifiedSQL(), t.BaseType)
		if t.NotNull {
			stmt += " NOT NULL"
		}
		if t.Default != "" {
			stmt += " DEFAULT " + t.Default
		}
		for _, c := range t.DomainConstraints {
			stmt += fmt.Sprintf(" CONSTRAINT %s CHECK (%s)", model.EscapeIdentifier(c.Name), c.Expression)
			if c.NotValid {
				stmt += " NOT VALID"
			}
		}
		return []Statement{ddl(stmt)}, nil
	case model.TypeKindRange:
		stmt := fmt.Sprintf("CREATE TYPE %s AS RANGE (SUBTYPE = %s", t.QualifiedSQL(), t.Subtype)
		if t.SubtypeOpclass != "" {
			stmt += ", SUBTYPE_OPCLASS = " + t.SubtypeOpclass
		}
		stmt += ")"
		return []Statement{ddl(stmt)}, nil
	default:
		return []Statement{ddl("CREATE TYPE %s (INPUT = %s, OUTPUT = %s)", t.QualifiedSQL(), t.InputFunction, t.OutputFunction)}, nil
	}
}

func createView(v model.View) ([]Statement, error) {
	return []Statement{ddl("CREATE VIEW %s AS\n%s", v.QualifiedSQL(), v.ViewDefinition)}, nil
}

func createMatview(v model.MaterializedView) ([]Statement, error) {
	stmt := ddl("CREATE MATERIALIZED VIEW %s AS\n%s", v.QualifiedSQL(), v.ViewDefinition)
	stmts := []Statement{withHazard(stmt, HazardIndexBuild, "populating a materialized view scans its defining query in full")}
	if !v.IsPopulated {
		stmts[0].DDL += " WITH NO DATA"
	}
	for _, idx := range v.Indexes {
		stmts = append(stmts, CreateIndex(idx))
	}
	return stmts, nil
}

func createFunction(f model.Function) Statement {
	args := make([]string, len(f.ArgTypes))
	for i, t := range f.ArgTypes {
		name := ""
		if i < len(f.ArgNames) && f.ArgNames[i] != "" {
			name = model.EscapeIdentifier(f.ArgNames[i]) + " "
		}
		args[i] = name + t
	}
	strict := ""
	if f.IsStrict {
		strict = " STRICT"
	}
	secdef := ""
	if f.IsSecurityDefiner {
		secdef = " SECURITY DEFINER"
	}
	volatility := f.Volatility
	if volatility == "" {
		volatility = "VOLATILE"
	}
	return ddl("CREATE FUNCTION %s(%s) RETURNS %s LANGUAGE %s %s%s%s AS %s",
		f.QualifiedSQL(), strings.Join(args, ", "), f.ReturnType, f.Language, volatility, strict, secdef, model.EscapeLiteral(f.FunctionDef))
}

func createAggregate(a model.Aggregate) Statement {
	stmt := fmt.Sprintf("CREATE AGGREGATE %s(%s) (SFUNC = %s, STYPE = %s",
		a.QualifiedSQL(), strings.Join(a.ArgTypes, ", "), a.StateFunction.QualifiedSQL(), a.StateType)
	if a.FinalFunction.Name != "" {
		stmt += ", FINALFUNC = " + a.FinalFunction.QualifiedSQL()
	}
	if a.CombineFunction.Name != "" {
		stmt += ", COMBINEFUNC = " + a.CombineFunction.QualifiedSQL()
	}
	if a.InitialCondition != "" {
		stmt += ", INITCOND = " + model.EscapeLiteral(a.InitialCondition)
	}
	stmt += ")"
	return ddl(stmt)
}

func createOperator(o model.Operator) Statement {
	stmt := fmt.Sprintf("CREATE OPERATOR %s (PROCEDURE = %s", o.QualifiedSQL(), o.Function.QualifiedSQL())
	if o.LeftType != "" {
		stmt += ", LEFTARG = " + o.LeftType
	}
	if o.RightType != "" {
		stmt += ", RIGHTARG = " + o.RightType
	}
	if o.Commutator != "" {
		stmt += ", COMMUTATOR = " + o.Commutator
	}
	if o.Negator != "" {
		stmt += ", NEGATOR = " + o.Negator
	}
	stmt += ")"
	return ddl(stmt)
}

func createForeignTable(f model.ForeignTable) ([]Statement, error) {
	cols := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		cols[i] = columnDef(c)
	}
	return []Statement{ddl("CREATE FOREIGN TABLE %s (%s) SERVER %s%s",
			f.QualifiedSQL(), strings.Join(cols, ", "), model.EscapeIdentifier(f.ServerName), optionsSuffix(f.Options))}, nil
}

func alterOwnerIfChanged(old, new model.Object) []Statement {
	oldOwned, ok1 := old.(model.Owned)
	newOwned, ok2 := new.(model.Owned)
	if !ok1 || !ok2 || oldOwned.Owner() == newOwned.Owner() {
		return nil
	}
	kindWord, ident := objectLabel(new)
	if kindWord == "" {
		return nil
	}
	return []Statement{ddl("ALTER %s %s OWNER TO %s", kindWord, ident, model.EscapeIdentifier(newOwned.Owner()))}
}
