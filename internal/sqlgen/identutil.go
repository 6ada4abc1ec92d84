package sqlgen

import (
	"fmt"
	"strings"

	"github.com/dbsync/dbsync/internal/model"
)

// objectLabel returns the DROP/ALTER/COMMENT "object type identifier" pair Postgres's DDL grammar
// expects for o's kind, e.g. ("TABLE", "public.accounts") or ("AGGREGATE", "public.sum(integer)").
func objectLabel(o model.Object) (kindWord, ident string) {
	switch v := o.(type) {
	case model.NamedSchema:
		return "SCHEMA", model.EscapeIdentifier(v.Name)
	case model.Extension:
		return "EXTENSION", model.EscapeIdentifier(v.Name)
	case model.Language:
		return "LANGUAGE", model.EscapeIdentifier(v.Name)
	case model.Collation:
		return "COLLATION", v.QualifiedSQL()
	case model.Conversion:
		return "CONVERSION", v.QualifiedSQL()
	case model.Type:
		if v.TKind == model.TypeKindDomain {
			return "DOMAIN", v.QualifiedSQL()
		}
		return "TYPE", v.QualifiedSQL()
	case model.Table:
		return "TABLE", v.QualifiedSQL()
	case model.View:
		return "VIEW", v.QualifiedSQL()
	case model.MaterializedView:
		return "MATERIALIZED VIEW", v.QualifiedSQL()
	case model.Sequence:
		return "SEQUENCE", v.QualifiedSQL()
	case model.Function:
		return "FUNCTION", fmt.Sprintf("%s(%s)", v.QualifiedSQL(), strings.Join(v.ArgTypes, ", "))
	case model.Aggregate:
		return "AGGREGATE", fmt.Sprintf("%s(%s)", v.QualifiedSQL(), strings.Join(v.ArgTypes, ", "))
	case model.Operator:
		return "OPERATOR", fmt.Sprintf("%s(%s, %s)", v.QualifiedSQL(), operandOrNone(v.LeftType), operandOrNone(v.RightType))
	case model.OperatorClass:
		return "OPERATOR CLASS", fmt.Sprintf("%s USING %s", v.QualifiedSQL(), v.IndexMethod)
	case model.OperatorFamily:
		return "OPERATOR FAMILY", fmt.Sprintf("%s USING %s", v.QualifiedSQL(), v.IndexMethod)
	case model.EventTrigger:
		return "EVENT TRIGGER", model.EscapeIdentifier(v.Name)
	case model.Cast:
		return "CAST", fmt.Sprintf("(%s AS %s)", v.SourceType, v.TargetType)
	case model.TSParser:
		return "TEXT SEARCH PARSER", v.QualifiedSQL()
	case model.TSDictionary:
		return "TEXT SEARCH DICTIONARY", v.QualifiedSQL()
	case model.TSTemplate:
		return "TEXT SEARCH TEMPLATE", v.QualifiedSQL()
	case model.TSConfig:
		return "TEXT SEARCH CONFIGURATION", v.QualifiedSQL()
	case model.FDW:
		return "FOREIGN DATA WRAPPER", model.EscapeIdentifier(v.Name)
	case model.ForeignServer:
		return "SERVER", model.EscapeIdentifier(v.Name)
	case model.UserMapping:
		return "USER MAPPING", fmt.Sprintf("FOR %s SERVER %s", model.EscapeIdentifier(v.UserName), model.EscapeIdentifier(v.ServerName))
	case model.ForeignTable:
		return "FOREIGN TABLE", v.QualifiedSQL()
	case model.CheckConstraint, model.UniqueKey, model.ForeignKeyConstraint, model.Index, model.Trigger, model.Rule, model.Column:
		return "", "" // table sub-objects are rendered by table.go/columns.go, never standalone
	default:
		return "", ""
	}
}

func operandOrNone(t string) string {
	if t == "" {
		return "NONE"
	}
	return t
}

func qualifiedNameOf(o model.Object) string {
	_, ident := objectLabel(o)
	return ident
}
