package augment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsync/dbsync/internal/model"
)

func baseModel() model.Model {
	return model.Model{
		Tables: []model.Table{
			{
				SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: "public", Name: "orders"},
				Columns: []model.Column{
					{Name: "id", Type: "bigint", IsNullable: false},
				},
			},
		},
	}
}

func TestApply_DefaultTemplate_AddsColumnsTriggerAndFunction(t *testing.T) {
	m, err := Apply(baseModel(), Spec{Tables: map[string]string{"public.orders": "default"}})
	require.NoError(t, err)

	table, ok := m.FindTable("public", "orders")
	require.True(t, ok)

	var colNames []string
	for _, c := range table.Columns {
		colNames = append(colNames, c.Name)
	}
	assert.Contains(t, colNames, "modified_by_user")
	assert.Contains(t, colNames, "modified_timestamp")

	require.Len(t, table.Triggers, 1)
	assert.Equal(t, "audit_columns_default_orders", table.Triggers[0].Name)
	assert.Equal(t, "aud_dflt", table.Triggers[0].Function.Name)

	require.Len(t, m.Functions, 1)
	assert.Equal(t, "aud_dflt", m.Functions[0].Name)
	require.Len(t, m.Languages, 1)
	assert.Equal(t, "plpgsql", m.Languages[0].Name)
}

func TestApply_CreatedDateOnly_NoTriggerOrFunction(t *testing.T) {
	m, err := Apply(baseModel(), Spec{Tables: map[string]string{"public.orders": "created_date_only"}})
	require.NoError(t, err)

	table, ok := m.FindTable("public", "orders")
	require.True(t, ok)

	var colNames []string
	for _, c := range table.Columns {
		colNames = append(colNames, c.Name)
	}
	assert.Contains(t, colNames, "created_date")
	assert.Empty(t, table.Triggers)
	assert.Empty(t, m.Functions)
}

func TestApply_IsIdempotent(t *testing.T) {
	spec := Spec{Tables: map[string]string{"public.orders": "default"}}
	once, err := Apply(baseModel(), spec)
	require.NoError(t, err)

	twice, err := Apply(once, spec)
	require.NoError(t, err)

	table, ok := twice.FindTable("public", "orders")
	require.True(t, ok)
	assert.Len(t, table.Triggers, 1)
	assert.Len(t, twice.Functions, 1)

	var modifiedUserCount int
	for _, c := range table.Columns {
		if c.Name == "modified_by_user" {
			modifiedUserCount++
		}
	}
	assert.Equal(t, 1, modifiedUserCount)
}

func TestApply_UnknownTemplate(t *testing.T) {
	_, err := Apply(baseModel(), Spec{Tables: map[string]string{"public.orders": "nope"}})
	require.Error(t, err)
}

func TestApply_UnknownTable(t *testing.T) {
	_, err := Apply(baseModel(), Spec{Tables: map[string]string{"public.missing": "default"}})
	require.Error(t, err)
}

func TestApply_InvalidTableKey(t *testing.T) {
	_, err := Apply(baseModel(), Spec{Tables: map[string]string{"orders": "default"}})
	require.Error(t, err)
}
