package scheduler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsync/dbsync/internal/differ"
	"github.com/dbsync/dbsync/internal/linker"
	"github.com/dbsync/dbsync/internal/model"
)

func TestSchedule_CreateOrdersDependencyBeforeDependent(t *testing.T) {
	customers := model.Table{SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: "public", Name: "customers"}}
	orders := model.Table{
		SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: "public", Name: "orders"},
		ForeignKeys: []model.ForeignKeyConstraint{
			{Name: "orders_customer_fk", RefSchema: "public", RefTable: "customers"},
		},
	}
	desired := model.Model{Tables: []model.Table{customers, orders}}
	deps := linker.Link(&desired)

	changes := []differ.Change{
		{ChangeKind: differ.Create, Object: orders},
		{ChangeKind: differ.Create, Object: customers},
	}

	stmts, err := Schedule(changes, deps)
	require.NoError(t, err)

	customersIdx, ordersTailIdx := -1, -1
	for i, s := range stmts {
		if strings.Contains(s.DDL, `public.customers`) && strings.Contains(s.DDL, "CREATE TABLE") {
			customersIdx = i
		}
		if strings.Contains(s.DDL, "orders_customer_fk") {
			ordersTailIdx = i
		}
	}
	require.NotEqual(t, -1, customersIdx)
	require.NotEqual(t, -1, ordersTailIdx)
	assert.Less(t, customersIdx, ordersTailIdx)
}

func TestSchedule_DropsOrderedBeforeCreates(t *testing.T) {
	dropped := model.Table{SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: "public", Name: "old_table"}}
	created := model.Table{SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: "public", Name: "new_table"}}

	changes := []differ.Change{
		{ChangeKind: differ.Create, Object: created},
		{ChangeKind: differ.Drop, Object: dropped},
	}
	deps := linker.Link(&model.Model{})

	stmts, err := Schedule(changes, deps)
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	assert.Contains(t, stmts[0].DDL, "DROP TABLE")
	assert.Contains(t, stmts[1].DDL, "CREATE TABLE")
}

func TestSchedule_MutualForeignKeyCycleIsSchedulable(t *testing.T) {
	a := model.Table{
		SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: "public", Name: "a"},
		ForeignKeys: []model.ForeignKeyConstraint{{Name: "a_b_fk", RefSchema: "public", RefTable: "b"}},
	}
	b := model.Table{
		SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: "public", Name: "b"},
		ForeignKeys: []model.ForeignKeyConstraint{{Name: "b_a_fk", RefSchema: "public", RefTable: "a"}},
	}
	desired := model.Model{Tables: []model.Table{a, b}}
	deps := linker.Link(&desired)

	changes := []differ.Change{
		{ChangeKind: differ.Create, Object: a},
		{ChangeKind: differ.Create, Object: b},
	}

	stmts, err := Schedule(changes, deps)
	require.NoError(t, err)
	assert.NotEmpty(t, stmts)
}
