package dbsync

import (
	"bytes"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsync/dbsync/internal/model"
)

func TestWriteDependencyGraphDOT(t *testing.T) {
	desired := model.Model{
		Tables: []model.Table{
			{SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: "public", Name: "widgets"}},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteDependencyGraphDOT(model.Model{}, desired, &buf))
	assert.Contains(t, buf.String(), "digraph")
}

func TestDiff_CreateTable(t *testing.T) {
	current := model.Model{}
	desired := model.Model{
		Tables: []model.Table{
			{
				SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: "public", Name: "widgets"},
				Columns: []model.Column{
					{Name: "id", Type: "bigint", IsNullable: false},
				},
			},
		},
	}

	plan, err := Diff(current, desired)
	require.NoError(t, err)
	require.NotEmpty(t, plan.Statements)
	assert.Contains(t, plan.ToSQL()[0], "CREATE TABLE")
	assert.NotEqual(t, plan.CurrentModelHash, plan.DesiredModelHash)
}

func TestDiff_NoChanges(t *testing.T) {
	m := model.Model{
		Tables: []model.Table{
			{SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: "public", Name: "widgets"}},
		},
	}
	plan, err := Diff(m, m)
	require.NoError(t, err)
	assert.Empty(t, plan.Statements)
	assert.Equal(t, plan.CurrentModelHash, plan.DesiredModelHash)
}

func TestPlan_ToTransactionalSQL(t *testing.T) {
	p := Plan{Statements: []Statement{{DDL: "SELECT 1"}}}
	got := p.ToTransactionalSQL()
	assert.Equal(t, []string{"BEGIN;", "SELECT 1;", "COMMIT;"}, got)
}

func TestPlan_ApplyStatementTimeoutModifier(t *testing.T) {
	p := Plan{Statements: []Statement{
			{DDL: "CREATE INDEX foo ON bar(x)"},
			{DDL: "ALTER TABLE bar ADD COLUMN y int"},
	}}
	out := p.ApplyStatementTimeoutModifier(regexp.MustCompile("CREATE INDEX"), 5*time.Minute)
	assert.Equal(t, 5*time.Minute, out.Statements[0].Timeout)
	assert.Zero(t, out.Statements[1].Timeout)
}

func TestPlan_InsertStatement(t *testing.T) {
	p := Plan{Statements: []Statement{{DDL: "A"}, {DDL: "B"}}}
	out, err := p.InsertStatement(1, Statement{DDL: "X"})
	require.NoError(t, err)
	require.Len(t, out.Statements, 3)
	assert.Equal(t, "X", out.Statements[1].DDL)

	_, err = p.InsertStatement(10, Statement{DDL: "X"})
	assert.Error(t, err)
}

func TestPlan_CheckHazards(t *testing.T) {
	p := Plan{Statements: []Statement{
			{DDL: "DROP TABLE foo", Hazards: []MigrationHazard{{Type: "DELETES_DATA", Message: "drops foo"}}},
	}}
	assert.Error(t, p.CheckHazards())
	assert.NoError(t, p.CheckHazards("DELETES_DATA"))
}

func TestPlan_HazardTypes(t *testing.T) {
	p := Plan{Statements: []Statement{
			{Hazards: []MigrationHazard{{Type: "A"}, {Type: "B"}}},
			{Hazards: []MigrationHazard{{Type: "A"}}},
	}}
	assert.ElementsMatch(t, []MigrationHazardType{"A", "B"}, p.HazardTypes())
}

// TestDiff_DropFirstOrdering covers: given table t(c int, index ix on t(c)) changing to
// t(c text, index ix on t(c)), the column retype forces ix to be dropped and rebuilt, and the
// DROP must be scheduled before the ALTER that changes c's type, which in turn precedes the
// CREATE that rebuilds ix.
func TestDiff_DropFirstOrdering(t *testing.T) {
	sqn := model.SchemaQualifiedName{SchemaName: "public", Name: "t"}
	idx := model.Index{Name: "ix", OwningTable: sqn, Columns: []string{"c"}}

	current := model.Model{Tables: []model.Table{
			{SchemaQualifiedName: sqn, Columns: []model.Column{{Name: "c", Type: "int"}}, Indexes: []model.Index{idx}},
	}}
	desired := model.Model{Tables: []model.Table{
			{SchemaQualifiedName: sqn, Columns: []model.Column{{Name: "c", Type: "text"}}, Indexes: []model.Index{idx}},
	}}

	plan, err := Diff(current, desired)
	require.NoError(t, err)

	sql := plan.ToSQL()
	var dropIdx, alterIdx, createIdx int = -1, -1, -1
	for i, s := range sql {
		switch {
		case strings.Contains(s, "DROP INDEX") && strings.Contains(s, "ix"):
			dropIdx = i
		case strings.Contains(s, "ALTER TABLE") && strings.Contains(s, "TYPE"):
			alterIdx = i
		case strings.Contains(s, "CREATE INDEX") && strings.Contains(s, "ix"):
			createIdx = i
		}
	}
	require.NotEqual(t, -1, dropIdx, "expected a DROP INDEX statement: %v", sql)
	require.NotEqual(t, -1, alterIdx, "expected an ALTER TABLE ... TYPE statement: %v", sql)
	require.NotEqual(t, -1, createIdx, "expected a CREATE INDEX statement: %v", sql)
	assert.Less(t, dropIdx, alterIdx, "index drop must precede the column retype")
	assert.Less(t, alterIdx, createIdx, "index rebuild must follow the column retype")
}

func TestDiff_RenameEmitsRenameNotDropCreate(t *testing.T) {
	current := model.Model{Tables: []model.Table{
			{SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: "public", Name: "old_t"}},
	}}
	desired := model.Model{Tables: []model.Table{
			{SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: "public", Name: "new_t"}, Meta: model.Meta{OldName: "old_t"}},
	}}

	plan, err := Diff(current, desired)
	require.NoError(t, err)

	sql := plan.ToSQL()
	require.Len(t, sql, 1)
	assert.Contains(t, sql[0], "RENAME TO")
	assert.Contains(t, sql[0], "old_t")
	assert.Contains(t, sql[0], "new_t")
	for _, s := range sql {
		assert.NotContains(t, s, "DROP TABLE")
		assert.NotContains(t, s, "CREATE TABLE")
	}
}

func TestDiff_ScenarioEmptyToOneSchemaOneTable(t *testing.T) {
	current := model.Model{}
	desired := model.Model{
		NamedSchemas: []model.NamedSchema{{Name: "public"}},
		Tables: []model.Table{{
			SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: "public", Name: "t1"},
			Columns: []model.Column{{Name: "c1", Type: "integer", IsNullable: false}},
			PrimaryKey: &model.PrimaryKey{Name: "t1_pkey", Columns: []string{"c1"}},
		}},
	}

	plan, err := Diff(current, desired)
	require.NoError(t, err)

	full := strings.Join(plan.ToSQL(), " ")
	assert.Contains(t, full, "CREATE TABLE")
	assert.Contains(t, full, `public.t1`)
	assert.Contains(t, full, "c1")
	assert.Contains(t, full, "PRIMARY KEY")
	assert.Contains(t, full, "t1_pkey")
}

func TestDiff_ScenarioCrossSchemaForeignKey(t *testing.T) {
	current := model.Model{NamedSchemas: []model.NamedSchema{{Name: "public"}}}
	desired := model.Model{
		NamedSchemas: []model.NamedSchema{{Name: "public"}, {Name: "s1"}},
		Tables: []model.Table{
			{
				SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: "s1", Name: "t2"},
				Columns: []model.Column{{Name: "c21", Type: "integer", IsNullable: false}},
				PrimaryKey: &model.PrimaryKey{Name: "t2_pkey", Columns: []string{"c21"}},
			},
			{
				SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: "public", Name: "t1"},
				Columns: []model.Column{
					{Name: "c1", Type: "integer", IsNullable: false},
					{Name: "c2", Type: "integer"},
				},
				PrimaryKey: &model.PrimaryKey{Name: "t1_pkey", Columns: []string{"c1"}},
				ForeignKeys: []model.ForeignKeyConstraint{
					{Name: "t1_c2_fkey", Columns: []string{"c2"}, RefSchema: "s1", RefTable: "t2", RefColumns: []string{"c21"}, IsValid: true},
				},
			},
		},
	}

	plan, err := Diff(current, desired)
	require.NoError(t, err)

	sql := plan.ToSQL()
	full := strings.Join(sql, " ")
	assert.Contains(t, full, "CREATE SCHEMA")
	assert.Contains(t, full, "s1")
	assert.Contains(t, full, `public.t1`)
	assert.Contains(t, full, `s1.t2`)
	assert.Contains(t, full, "t1_c2_fkey")

	var schemaIdx, t2Idx, fkIdx int = -1, -1, -1
	for i, s := range sql {
		if strings.Contains(s, "CREATE SCHEMA") {
			schemaIdx = i
		}
		if strings.Contains(s, "CREATE TABLE") && strings.Contains(s, `s1.t2`) {
			t2Idx = i
		}
		if strings.Contains(s, "t1_c2_fkey") {
			fkIdx = i
		}
	}
	require.NotEqual(t, -1, schemaIdx)
	require.NotEqual(t, -1, t2Idx)
	require.NotEqual(t, -1, fkIdx)
	assert.Less(t, schemaIdx, t2Idx, "schema must be created before a table inside it")
	assert.Less(t, t2Idx, fkIdx, "the referenced table must exist before the FK referencing it")
}

func TestDiff_ScenarioAddColumn(t *testing.T) {
	sqn := model.SchemaQualifiedName{SchemaName: "public", Name: "t"}
	current := model.Model{Tables: []model.Table{
			{SchemaQualifiedName: sqn, Columns: []model.Column{{Name: "c1", Type: "integer"}}},
	}}
	desired := model.Model{Tables: []model.Table{
			{SchemaQualifiedName: sqn, Columns: []model.Column{{Name: "c1", Type: "integer"}, {Name: "c2", Type: "text"}}},
	}}

	plan, err := Diff(current, desired)
	require.NoError(t, err)

	sql := plan.ToSQL()
	require.Len(t, sql, 1)
	assert.Contains(t, sql[0], "ALTER TABLE")
	assert.Contains(t, sql[0], "ADD COLUMN")
	assert.Contains(t, sql[0], "c2")
}

func TestDiff_ScenarioDropColumnWithOwnedSequenceOmitsSeparateDropSequence(t *testing.T) {
	sqn := model.SchemaQualifiedName{SchemaName: "public", Name: "t"}
	current := model.Model{Tables: []model.Table{
			{SchemaQualifiedName: sqn, Columns: []model.Column{
					{Name: "c1", Type: "integer", OwnedSequence: &model.Sequence{}},
			}},
	}}
	desired := model.Model{Tables: []model.Table{
			{SchemaQualifiedName: sqn, Columns: nil},
	}}

	plan, err := Diff(current, desired)
	require.NoError(t, err)

	sql := plan.ToSQL()
	require.Len(t, sql, 1)
	assert.Contains(t, sql[0], "DROP COLUMN")
	assert.Contains(t, sql[0], "c1")
	for _, s := range sql {
		assert.NotContains(t, s, "DROP SEQUENCE")
	}
}

func TestDiff_ScenarioPrivilegeGrant(t *testing.T) {
	sqn := model.SchemaQualifiedName{SchemaName: "public", Name: "t"}
	current := model.Model{Tables: []model.Table{{SchemaQualifiedName: sqn}}}
	desired := model.Model{Tables: []model.Table{
			{SchemaQualifiedName: sqn, Meta: model.Meta{Privs: []model.Privilege{{Grantee: "alice", Privilege: "SELECT"}}}},
	}}

	plan, err := Diff(current, desired)
	require.NoError(t, err)

	sql := plan.ToSQL()
	var grants, revokes int
	for _, s := range sql {
		if strings.Contains(s, "GRANT") {
			grants++
			assert.Contains(t, s, "SELECT")
			assert.Contains(t, s, "alice")
		}
		if strings.Contains(s, "REVOKE") {
			revokes++
		}
	}
	assert.Equal(t, 1, grants)
	assert.Equal(t, 0, revokes)
}

func TestDiff_ScenarioRename(t *testing.T) {
	current := model.Model{Tables: []model.Table{
			{SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: "public", Name: "t1"}},
	}}
	desired := model.Model{Tables: []model.Table{
			{SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: "public", Name: "t2"}, Meta: model.Meta{OldName: "t1"}},
	}}

	plan, err := Diff(current, desired)
	require.NoError(t, err)

	sql := plan.ToSQL()
	require.Len(t, sql, 1)
	assert.Contains(t, sql[0], "RENAME TO")
}
