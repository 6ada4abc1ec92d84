// Package model holds the typed, polymorphic in-memory representation of every catalog object
// kind this module understands. It is the "Object Model" component.
package model

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind tags the concrete variant of an Object. The differ, linker, and SQL generators all switch
// on Kind to select per-variant behavior; it is the discriminant of the sum type described by the
// Object interface.
type Kind string

const (
	KindSchema Kind = "schema"
	KindTable Kind = "table"
	KindColumn Kind = "column"
	KindCheckConstraint Kind = "check_constraint"
	KindPrimaryKey Kind = "primary_key"
	KindUniqueKey Kind = "unique_constraint"
	KindForeignKey Kind = "foreign_key"
	KindIndex Kind = "index"
	KindTrigger Kind = "trigger"
	KindRule Kind = "rule"
	KindView Kind = "view"
	KindMatView Kind = "materialized_view"
	KindSequence Kind = "sequence"
	KindFunction Kind = "function"
	KindAggregate Kind = "aggregate"
	KindOperator Kind = "operator"
	KindOperatorClass Kind = "operator_class"
	KindOperatorFamily Kind = "operator_family"
	KindType Kind = "type"
	KindCollation Kind = "collation"
	KindConversion Kind = "conversion"
	KindExtension Kind = "extension"
	KindEventTrigger Kind = "event_trigger"
	KindCast Kind = "cast"
	KindLanguage Kind = "language"
	KindTSParser Kind = "ts_parser"
	KindTSDictionary Kind = "ts_dict"
	KindTSTemplate Kind = "ts_template"
	KindTSConfig Kind = "ts_config"
	KindFDW Kind = "fdw"
	KindForeignServer Kind = "foreign_server"
	KindUserMapping Kind = "user_mapping"
	KindForeignTable Kind = "foreign_table"
)

// TypeKind distinguishes the sub-variants of KindType.
type TypeKind string

const (
	TypeKindBase TypeKind = "base"
	TypeKindComposite TypeKind = "composite"
	TypeKindEnum TypeKind = "enum"
	TypeKindDomain TypeKind = "domain"
	TypeKindRange TypeKind = "range"
)

// Key is the stable tuple of strings that identifies an object within a Model. It drives pairing
// during diff.
type Key []string

func (k Key) String() string {
	return strings.Join([]string(k), "\x1f")
}

func (k Key) Equal(other Key) bool {
	if len(k) != len(other) {
		return false
	}
	for i := range k {
		if k[i] != other[i] {
			return false
		}
	}
	return true
}

// Object is the sum-type interface every schema object kind implements. Description, owner and
// privileges are NOT part of this interface -- they are opt-in capability interfaces (Described
// and Owned below, PrivilegeHolder in privileges.go) that internal/differ and internal/sqlgen
// type-assert against. Which kinds can be renamed is decided per kind in internal/differ.
type Object interface {
	// Key returns the stable pairing key for this object within its Model.
	Key() Key
	// Kind returns the discriminant tag for this object's variant.
	Kind() Kind
	// GetName returns a short identifier suitable for graph vertex ids and log messages. It need
	// not be unique across kinds, only within Key()'s namespace.
	GetName() string
}

// Dependency is a single edge A -> B meaning "A requires B to exist", as populated by the Linker.
type Dependency struct {
	From Key
	To Key
}

// Described is implemented by every object kind that carries a COMMENT ON... IS string.
type Described interface {
	Object
	Description() string
}

// Owned is implemented by every object kind that has an owner role.
type Owned interface {
	Object
	Owner() string
}

// SchemaQualifiedName names an object that lives inside a single Postgres schema.
type SchemaQualifiedName struct {
	SchemaName string
	Name string
}

func (n SchemaQualifiedName) GetName() string { return n.Name }

func (n SchemaQualifiedName) IsEmpty() bool { return n.SchemaName == "" && n.Name == "" }

// QualifiedSQL renders the fully-qualified, escaped identifier for use in generated DDL.
func (n SchemaQualifiedName) QualifiedSQL() string {
	return fmt.Sprintf("%s.%s", EscapeIdentifier(n.SchemaName), EscapeIdentifier(n.Name))
}

var simpleIdentifierRegex = regexp.MustCompile(`^[a-z_][a-z0-9_$]*$`)

// IsSimpleIdentifier reports whether val requires no quoting to use as a Postgres identifier.
func IsSimpleIdentifier(val string) bool {
	return simpleIdentifierRegex.MatchString(val) && !reservedWords[val]
}

// EscapeIdentifier double-quotes val if, and only if, it needs quoting to round-trip through
// Postgres's parser.
func EscapeIdentifier(val string) string {
	if IsSimpleIdentifier(val) {
		return val
	}
	return `"` + strings.ReplaceAll(val, `"`, `""`) + `"`
}

// EscapeLiteral escapes val for use as a single-quoted SQL string literal.
func EscapeLiteral(val string) string {
	return "'" + strings.ReplaceAll(val, "'", "''") + "'"
}

// reservedWords is a small, practical subset of Postgres's reserved keywords that must always be
// quoted even though they match simpleIdentifierRegex.
var reservedWords = map[string]bool{
	"table": true, "select": true, "from": true, "where": true, "user": true,
	"order": true, "group": true, "column": true, "primary": true, "foreign": true,
	"check": true, "default": true, "grant": true, "all": true, "null": true,
}
