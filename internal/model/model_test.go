package model

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceTable_ReplacesExistingLeavesOriginalUntouched(t *testing.T) {
	orig := Model{Tables: []Table{
			{SchemaQualifiedName: SchemaQualifiedName{SchemaName: "public", Name: "widgets"}, Columns: []Column{{Name: "id"}}},
	}}
	updated := orig.Tables[0]
	updated.Columns = append(updated.Columns, Column{Name: "name"})

	out := orig.ReplaceTable(updated)

	if diff := cmp.Diff(orig.Tables[0].Columns, []Column{{Name: "id"}}); diff != "" {
		t.Fatalf("original model mutated:\n%s", diff)
	}
	require.Len(t, out.Tables[0].Columns, 2)
}

func TestReplaceTable_AppendsWhenAbsent(t *testing.T) {
	orig := Model{}
	out := orig.ReplaceTable(Table{SchemaQualifiedName: SchemaQualifiedName{SchemaName: "public", Name: "new"}})
	require.Len(t, out.Tables, 1)
	assert.Empty(t, orig.Tables)
}

func TestFindTable(t *testing.T) {
	m := Model{Tables: []Table{
			{SchemaQualifiedName: SchemaQualifiedName{SchemaName: "public", Name: "widgets"}},
	}}
	got, ok := m.FindTable("public", "widgets")
	assert.True(t, ok)
	assert.Equal(t, "widgets", got.Name)

	_, ok = m.FindTable("public", "ghost")
	assert.False(t, ok)
}

func TestAllObjects_CoversEveryTopLevelKind(t *testing.T) {
	m := Model{
		NamedSchemas: []NamedSchema{{Name: "public"}},
		Tables: []Table{{SchemaQualifiedName: SchemaQualifiedName{SchemaName: "public", Name: "t"}}},
		Functions: []Function{{SchemaQualifiedName: SchemaQualifiedName{SchemaName: "public", Name: "f"}}},
	}
	objs := m.AllObjects()
	require.Len(t, objs, 3)

	byKey := m.ByKey()
	assert.Contains(t, byKey, NamedSchema{Name: "public"}.Key().String())
}
