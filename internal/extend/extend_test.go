package extend

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
				SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: "public", Name: "customers"},
				Columns: []model.Column{
					{Name: "id", Type: "bigint", IsNullable: false},
					{Name: "region", Type: "text", IsNullable: true},
				},
			},
			{
				SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: "public", Name: "orders"},
				Columns: []model.Column{
					{Name: "id", Type: "bigint", IsNullable: false},
					{Name: "customer_id", Type: "bigint", IsNullable: false},
				},
				ForeignKeys: []model.ForeignKeyConstraint{
					{Name: "orders_customer_fk", Columns: []string{"customer_id"}, RefSchema: "public", RefTable: "customers", RefColumns: []string{"id"}},
				},
			},
		},
	}
}

func denormSpec() Spec {
	return Spec{Tables: map[string]TableSpec{
			"public.orders": {Columns: []ColumnSpec{
					{Name: "customer_region", Copy: "region", ForeignKey: "orders_customer_fk"},
			}},
	}}
}

func TestApply_AddsColumnAndBothTriggerDirections(t *testing.T) {
	m, err := Apply(baseModel(), denormSpec())
	require.NoError(t, err)

	orders, ok := m.FindTable("public", "orders")
	require.True(t, ok)
	var names []string
	for _, c := range orders.Columns {
		names = append(names, c.Name)
	}
	assert.Contains(t, names, "customer_region")
	require.Len(t, orders.Triggers, 1)
	assert.Equal(t, "copy_denorm_orders_customer_region", orders.Triggers[0].Name)
	assert.Equal(t, "BEFORE", orders.Triggers[0].Timing)

	customers, ok := m.FindTable("public", "customers")
	require.True(t, ok)
	require.Len(t, customers.Triggers, 1)
	assert.Equal(t, "copy_cascade_customers_orders_customer_region", customers.Triggers[0].Name)
	assert.Equal(t, "AFTER", customers.Triggers[0].Timing)

	require.Len(t, m.Functions, 2)
	require.Len(t, m.Languages, 1)
	assert.Equal(t, "plpgsql", m.Languages[0].Name)
}

func TestApply_CopiedColumnTypeDefaultsToParentColumnType(t *testing.T) {
	m, err := Apply(baseModel(), denormSpec())
	require.NoError(t, err)

	orders, _ := m.FindTable("public", "orders")
	col, ok := func() (model.Column, bool) {
		for _, c := range orders.Columns {
			if c.Name == "customer_region" {
				return c, true
			}
		}
		return model.Column{}, false
	}()
	require.True(t, ok)
	assert.Equal(t, "text", col.Type)
}

func TestApply_IsIdempotent(t *testing.T) {
	spec := denormSpec()
	once, err := Apply(baseModel(), spec)
	require.NoError(t, err)
	twice, err := Apply(once, spec)
	require.NoError(t, err)

	orders, _ := twice.FindTable("public", "orders")
	assert.Len(t, orders.Triggers, 1)
	var colCount int
	for _, c := range orders.Columns {
		if c.Name == "customer_region" {
			colCount++
		}
	}
	assert.Equal(t, 1, colCount)
	assert.Len(t, twice.Functions, 2)
}

func TestApply_UnknownForeignKey(t *testing.T) {
	spec := Spec{Tables: map[string]TableSpec{
			"public.orders": {Columns: []ColumnSpec{{Name: "x", Copy: "region", ForeignKey: "nope"}}},
	}}
	_, err := Apply(baseModel(), spec)
	assert.Error(t, err)
}

func TestApply_UnknownCopyColumn(t *testing.T) {
	spec := Spec{Tables: map[string]TableSpec{
			"public.orders": {Columns: []ColumnSpec{{Name: "x", Copy: "nonexistent", ForeignKey: "orders_customer_fk"}}},
	}}
	_, err := Apply(baseModel(), spec)
	assert.Error(t, err)
}

func TestApply_InvalidTableKey(t *testing.T) {
	_, err := Apply(baseModel(), Spec{Tables: map[string]TableSpec{"orders": {}}})
	assert.Error(t, err)
}
