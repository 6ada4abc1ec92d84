package linker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dbsync/dbsync/internal/model"
)

func TestLink_TableRequiresSchema(t *testing.T) {
	m := &model.Model{
		NamedSchemas: []model.NamedSchema{{Name: "public"}},
		Tables: []model.Table{
			{SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: "public", Name: "widgets"}},
		},
	}
	g := Link(m)
	assert.True(t, Requires(g, m.Tables[0].Key(), model.Key{"schema", "public"}))
}

func TestLink_ForeignKeyRequiresReferencedTable(t *testing.T) {
	m := &model.Model{
		Tables: []model.Table{
			{SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: "public", Name: "orders"},
				ForeignKeys: []model.ForeignKeyConstraint{
					{Name: "orders_customer_fk", RefSchema: "public", RefTable: "customers"},
			}},
			{SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: "public", Name: "customers"}},
		},
	}
	g := Link(m)
	assert.True(t, Requires(g, m.Tables[0].Key(), m.Tables[1].Key()))
	assert.False(t, Requires(g, m.Tables[1].Key(), m.Tables[0].Key()))
}

func TestLink_ColumnTypeRequiresUserDefinedType(t *testing.T) {
	m := &model.Model{
		Types: []model.Type{
			{SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: "public", Name: "color"}},
		},
		Tables: []model.Table{
			{SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: "public", Name: "widgets"},
				Columns: []model.Column{{Name: "shade", Type: "color"}, {Name: "count", Type: "integer"}}},
		},
	}
	g := Link(m)
	assert.True(t, Requires(g, m.Tables[0].Key(), m.Types[0].Key()))
	// a builtin type like "integer" never gets a vertex, so no dangling edge is added for it
	assert.False(t, Requires(g, m.Tables[0].Key(), model.Key{"type", "public", "integer"}))
}

func TestLink_TriggerRequiresTableAndFunction(t *testing.T) {
	fn := model.Function{SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: "public", Name: "aud_dflt"}}
	m := &model.Model{
		Functions: []model.Function{fn},
		Tables: []model.Table{
			{SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: "public", Name: "widgets"},
				Triggers: []model.Trigger{{
						Name: "widgets_aud_trig",
						OwningTable: model.SchemaQualifiedName{SchemaName: "public", Name: "widgets"},
						Function: fn.SchemaQualifiedName,
			}}},
		},
	}
	g := Link(m)
	trgKey := m.Tables[0].Triggers[0].Key()
	assert.True(t, Requires(g, trgKey, m.Tables[0].Key()))
	assert.True(t, Requires(g, trgKey, fn.Key()))
}

func TestLink_SequenceOwnedByRequiresOwningTable(t *testing.T) {
	owner := &model.SequenceOwner{TableName: model.SchemaQualifiedName{SchemaName: "public", Name: "widgets"}, ColumnName: "id"}
	m := &model.Model{
		Tables: []model.Table{
			{SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: "public", Name: "widgets"}},
		},
		Sequences: []model.Sequence{
			{SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: "public", Name: "widgets_id_seq"}, Owner_: owner},
		},
	}
	g := Link(m)
	assert.True(t, Requires(g, m.Sequences[0].Key(), m.Tables[0].Key()))
}

func TestRequires_UnknownKeysReturnsFalse(t *testing.T) {
	g := Link(&model.Model{})
	assert.False(t, Requires(g, model.Key{"table", "public", "ghost"}, model.Key{"table", "public", "also_ghost"}))
}
