package model

// Meta is embedded by every object kind. It carries the fields every object
// carries: owner, description, privileges, oid (current-side only), dependency edges (populated by
// the Linker, never by the Reader or the YAML loader), and the one-shot rename directive.
type Meta struct {
	OwnerName string
	DescrText string
	Privs []Privilege
	OID uint32 `yaml:"-"`
	DependsOn []Key `yaml:"-"`
	// OldName signals, on a desired-side object, that it should be paired against the current-side
	// object with this key (same Kind) and renamed rather than dropped+created. It is a one-shot
	// directive: the Reader/to-map path must never populate it.
	OldName string
}

func (m Meta) Owner() string { return m.OwnerName }
func (m Meta) Description() string { return m.DescrText }
func (m Meta) Privileges() []Privilege { return m.Privs }

// NamedSchema represents a Postgres schema (namespace). Renamed from Schema to avoid clashing
// with the Model's schema-of-schemas framing.
type NamedSchema struct {
	Meta
	Name string
}

func (n NamedSchema) Key() Key { return Key{"schema", n.Name} }
func (n NamedSchema) Kind() Kind { return KindSchema }
func (n NamedSchema) GetName() string { return n.Name }

type Extension struct {
	Meta
	SchemaQualifiedName
	Version string
}

func (e Extension) Key() Key { return Key{"extension", e.Name} }
func (e Extension) Kind() Kind { return KindExtension }

type Language struct {
	Meta
	Name string
	IsTrusted bool
	HandlerFn string
}

func (l Language) Key() Key { return Key{"language", l.Name} }
func (l Language) Kind() Kind { return KindLanguage }
func (l Language) GetName() string { return l.Name }

type Collation struct {
	Meta
	SchemaQualifiedName
	LcCollate string
	LcCType string
	Provider string
}

func (c Collation) Key() Key { return Key{"collation", c.SchemaName, c.Name} }
func (c Collation) Kind() Kind { return KindCollation }

type Conversion struct {
	Meta
	SchemaQualifiedName
	ForEncoding string
	ToEncoding string
	FunctionName SchemaQualifiedName
	IsDefault bool
}

func (c Conversion) Key() Key { return Key{"conversion", c.SchemaName, c.Name} }
func (c Conversion) Kind() Kind { return KindConversion }

// Type represents any of base/composite/enum/domain/range pg_type entries, tagged by TKind.
type Type struct {
	Meta
	SchemaQualifiedName
	TKind TypeKind

	// Composite
	Attributes []CompositeAttribute

	// Enum
	Labels []string

	// Domain
	BaseType string
	NotNull bool
	Default string
	DomainConstraints []DomainConstraint

	// Range
	Subtype string
	SubtypeOpclass string

	// Base (rare to define directly; included for completeness of the kind enumeration)
	InputFunction string
	OutputFunction string
}

func (t Type) Key() Key { return Key{"type", t.SchemaName, t.Name} }
func (t Type) Kind() Kind { return KindType }

type CompositeAttribute struct {
	Name string
	Type string
	Collation string
}

type DomainConstraint struct {
	Name string
	Expression string
	NotValid bool
}

type Table struct {
	Meta
	SchemaQualifiedName

	Columns []Column
	PrimaryKey *PrimaryKey
	CheckConstraints []CheckConstraint
	UniqueKeys []UniqueKey
	ForeignKeys []ForeignKeyConstraint
	Indexes []Index
	Triggers []Trigger
	Rules []Rule

	Tablespace string
	PartitionKeyDef string
	ParentTable *SchemaQualifiedName
	PartitionBound string
	Inherits []SchemaQualifiedName
	Options map[string]string
}

func (t Table) Key() Key { return Key{"table", t.SchemaName, t.Name} }
func (t Table) Kind() Kind { return KindTable }
func (t Table) IsPartitioned() bool { return t.PartitionKeyDef != "" }
func (t Table) IsPartition() bool { return t.ParentTable != nil }

type ColumnIdentity struct {
	IsAlways bool
	StartValue int64
	Increment int64
	MinValue int64
	MaxValue int64
	CacheSize int64
	Cycle bool
}

type Column struct {
	Name string
	Type string
	Collation string
	Default string
	IsNullable bool
	Statistics *int
	Storage string
	Identity *ColumnIdentity
	Descr string
	Privs []Privilege

	// OwnedSequence is populated when this column is `GENERATED... AS IDENTITY` or `serial`-style;
	// it is not emitted as a standalone top-level object.
	OwnedSequence *Sequence
}

func (c Column) Key() Key { return Key{"column", c.Name} }
func (c Column) Kind() Kind { return KindColumn }
func (c Column) GetName() string { return c.Name }
func (c Column) Description() string { return c.Descr }
func (c Column) Privileges() []Privilege { return c.Privs }
func (c Column) IsCollated() bool { return c.Collation != "" }

type PrimaryKey struct {
	Name string
	Columns []string
}

func (p PrimaryKey) GetName() string { return p.Name }

type UniqueKey struct {
	Name string
	Columns []string
}

func (u UniqueKey) Key() Key { return Key{"unique_constraint", u.Name} }
func (u UniqueKey) Kind() Kind { return KindUniqueKey }
func (u UniqueKey) GetName() string { return u.Name }

type CheckConstraint struct {
	Name string
	KeyColumns []string
	Expression string
	IsValid bool
	IsInheritable bool
	DependsOnFunctions []SchemaQualifiedName
	Descr string
}

func (c CheckConstraint) Key() Key { return Key{"check_constraint", c.Name} }
func (c CheckConstraint) Kind() Kind { return KindCheckConstraint }
func (c CheckConstraint) GetName() string { return c.Name }
func (c CheckConstraint) Description() string { return c.Descr }

type ForeignKeyConstraint struct {
	Name string
	Columns []string
	RefSchema string
	RefTable string
	RefColumns []string
	OnDelete string
	OnUpdate string
	MatchType string
	IsValid bool
	Descr string
}

func (f ForeignKeyConstraint) Key() Key { return Key{"foreign_key", f.Name} }
func (f ForeignKeyConstraint) Kind() Kind { return KindForeignKey }
func (f ForeignKeyConstraint) GetName() string { return f.Name }
func (f ForeignKeyConstraint) Description() string { return f.Descr }

type IndexConstraintType string

const (
	IndexConstraintPrimary IndexConstraintType = "p"
	IndexConstraintUnique IndexConstraintType = "u"
)

type Index struct {
	Name string
	OwningTable SchemaQualifiedName
	Columns []string
	IsExpression bool
	IsUnique bool
	IsInvalid bool
	IsPartial bool
	WhereClause string
	Method string
	Tablespace string

	// GetIndexDefStmt is pg_get_indexdef's verbatim output, kept as a round-trip fallback for
	// expression indexes.
	GetIndexDefStmt string

	Constraint *IndexConstraintType
	ParentIdx *SchemaQualifiedName
	Descr string
}

func (i Index) Key() Key { return Key{"index", i.OwningTable.SchemaName, i.Name} }
func (i Index) Kind() Kind { return KindIndex }
func (i Index) GetName() string { return i.Name }
func (i Index) Description() string { return i.Descr }
func (i Index) IsPk() bool { return i.Constraint != nil && *i.Constraint == IndexConstraintPrimary }

type Trigger struct {
	Name string
	OwningTable SchemaQualifiedName
	Function SchemaQualifiedName
	Timing string // BEFORE / AFTER / INSTEAD OF
	Events []string
	Level string // ROW / STATEMENT
	Condition string
	IsConstraint bool
	Descr string

	// GetTriggerDefStmt is pg_get_triggerdef's verbatim output.
	GetTriggerDefStmt string
}

func (t Trigger) Key() Key { return Key{"trigger", t.OwningTable.SchemaName, t.OwningTable.Name, t.Name} }
func (t Trigger) Kind() Kind { return KindTrigger }
func (t Trigger) GetName() string { return t.Name }
func (t Trigger) Description() string { return t.Descr }

type Rule struct {
	Name string
	OwningTable SchemaQualifiedName
	Event string
	Definition string
	IsInstead bool
}

func (r Rule) Key() Key { return Key{"rule", r.OwningTable.SchemaName, r.OwningTable.Name, r.Name} }
func (r Rule) Kind() Kind { return KindRule }
func (r Rule) GetName() string { return r.Name }

type SequenceOwner struct {
	TableName SchemaQualifiedName
	ColumnName string
}

type Sequence struct {
	Meta
	SchemaQualifiedName
	Owner_ *SequenceOwner
	DataType string
	StartValue int64
	Increment int64
	MaxValue int64
	MinValue int64
	CacheSize int64
	Cycle bool
}

func (s Sequence) Key() Key { return Key{"sequence", s.SchemaName, s.Name} }
func (s Sequence) Kind() Kind { return KindSequence }

type Function struct {
	Meta
	SchemaQualifiedName
	ArgTypes []string
	ArgNames []string
	ReturnType string
	Language string
	FunctionDef string
	Volatility string
	IsStrict bool
	IsSecurityDefiner bool
	DependsOnFunctions []SchemaQualifiedName
}

func (f Function) Key() Key {
	return Key{"function", f.SchemaName, f.Name, joinTypes(f.ArgTypes)}
}
func (f Function) Kind() Kind { return KindFunction }

func joinTypes(types []string) string {
	out := ""
	for i, t := range types {
		if i > 0 {
			out += ","
		}
		out += t
	}
	return out
}

type Aggregate struct {
	Meta
	SchemaQualifiedName
	ArgTypes []string
	StateFunction SchemaQualifiedName
	FinalFunction SchemaQualifiedName
	CombineFunction SchemaQualifiedName
	StateType string
	InitialCondition string
}

func (a Aggregate) Key() Key { return Key{"aggregate", a.SchemaName, a.Name, joinTypes(a.ArgTypes)} }
func (a Aggregate) Kind() Kind { return KindAggregate }

type Operator struct {
	Meta
	SchemaQualifiedName
	LeftType string
	RightType string
	Function SchemaQualifiedName
	Commutator string
	Negator string
}

func (o Operator) Key() Key {
	return Key{"operator", o.SchemaName, o.Name, o.LeftType, o.RightType}
}
func (o Operator) Kind() Kind { return KindOperator }

type OperatorClass struct {
	Meta
	SchemaQualifiedName
	IndexMethod string
	DataType string
	IsDefault bool
	Family string
}

func (o OperatorClass) Key() Key { return Key{"operator_class", o.SchemaName, o.Name, o.IndexMethod} }
func (o OperatorClass) Kind() Kind { return KindOperatorClass }

type OperatorFamily struct {
	Meta
	SchemaQualifiedName
	IndexMethod string
}

func (o OperatorFamily) Key() Key { return Key{"operator_family", o.SchemaName, o.Name, o.IndexMethod} }
func (o OperatorFamily) Kind() Kind { return KindOperatorFamily }

type EventTrigger struct {
	Meta
	Name string
	Event string
	Function SchemaQualifiedName
	Tags []string
	IsEnabled bool
}

func (e EventTrigger) Key() Key { return Key{"event_trigger", e.Name} }
func (e EventTrigger) Kind() Kind { return KindEventTrigger }
func (e EventTrigger) GetName() string { return e.Name }

type Cast struct {
	Meta
	SourceType string
	TargetType string
	Function SchemaQualifiedName
	Context string // IMPLICIT / ASSIGNMENT / EXPLICIT
}

func (c Cast) Key() Key { return Key{"cast", c.SourceType, c.TargetType} }
func (c Cast) Kind() Kind { return KindCast }
func (c Cast) GetName() string { return c.SourceType + "_as_" + c.TargetType }

type TSParser struct {
	Meta
	SchemaQualifiedName
	StartFunc string
	TokenFunc string
	EndFunc string
	HeadlineFunc string
	LextypesFunc string
}

func (t TSParser) Key() Key { return Key{"ts_parser", t.SchemaName, t.Name} }
func (t TSParser) Kind() Kind { return KindTSParser }

type TSDictionary struct {
	Meta
	SchemaQualifiedName
	Template SchemaQualifiedName
	Options map[string]string
}

func (t TSDictionary) Key() Key { return Key{"ts_dict", t.SchemaName, t.Name} }
func (t TSDictionary) Kind() Kind { return KindTSDictionary }

type TSTemplate struct {
	Meta
	SchemaQualifiedName
	InitFunc string
	LexizeFunc string
}

func (t TSTemplate) Key() Key { return Key{"ts_template", t.SchemaName, t.Name} }
func (t TSTemplate) Kind() Kind { return KindTSTemplate }

type TSConfigMapping struct {
	TokenType string
	Dictionaries []string
}

type TSConfig struct {
	Meta
	SchemaQualifiedName
	Parser SchemaQualifiedName
	Mappings []TSConfigMapping
}

func (t TSConfig) Key() Key { return Key{"ts_config", t.SchemaName, t.Name} }
func (t TSConfig) Kind() Kind { return KindTSConfig }

type FDW struct {
	Meta
	Name string
	HandlerFn string
	ValidatorFn string
	Options map[string]string
}

func (f FDW) Key() Key { return Key{"fdw", f.Name} }
func (f FDW) Kind() Kind { return KindFDW }
func (f FDW) GetName() string { return f.Name }

type ForeignServer struct {
	Meta
	Name string
	FDWName string
	Type string
	Version string
	Options map[string]string
}

func (s ForeignServer) Key() Key { return Key{"foreign_server", s.Name} }
func (s ForeignServer) Kind() Kind { return KindForeignServer }
func (s ForeignServer) GetName() string { return s.Name }

type UserMapping struct {
	Meta
	ServerName string
	UserName string
	Options map[string]string
}

func (u UserMapping) Key() Key { return Key{"user_mapping", u.ServerName, u.UserName} }
func (u UserMapping) Kind() Kind { return KindUserMapping }
func (u UserMapping) GetName() string { return u.UserName }

type ForeignTable struct {
	Meta
	SchemaQualifiedName
	ServerName string
	Columns []Column
	Options map[string]string
}

func (f ForeignTable) Key() Key { return Key{"foreign_table", f.SchemaName, f.Name} }
func (f ForeignTable) Kind() Kind { return KindForeignTable }

type TableDependency struct {
	SchemaQualifiedName
	Columns []string
}

type View struct {
	Meta
	SchemaQualifiedName
	ViewDefinition string
	Options map[string]string
	TableDependencies []TableDependency
	Columns []Column
}

func (v View) Key() Key { return Key{"view", v.SchemaName, v.Name} }
func (v View) Kind() Kind { return KindView }

type MaterializedView struct {
	Meta
	SchemaQualifiedName
	ViewDefinition string
	Options map[string]string
	TableDependencies []TableDependency
	Indexes []Index
	IsPopulated bool
}

func (m MaterializedView) Key() Key { return Key{"materialized_view", m.SchemaName, m.Name} }
func (m MaterializedView) Kind() Kind { return KindMatView }
