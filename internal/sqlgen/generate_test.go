package sqlgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsync/dbsync/internal/differ"
	"github.com/dbsync/dbsync/internal/model"
)

func TestGenerate_CreateSchema(t *testing.T) {
	stmts, err := Generate(differ.Change{ChangeKind: differ.Create, Object: model.NamedSchema{Name: "reporting"}})
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Contains(t, stmts[0].DDL, `CREATE SCHEMA reporting`)
}

func TestGenerate_CreateTableSplitsHeaderAndTail(t *testing.T) {
	table := model.Table{
		SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: "public", Name: "widgets"},
		Columns: []model.Column{{Name: "id", Type: "bigint", IsNullable: false}},
	}
	stmts, err := Generate(differ.Change{ChangeKind: differ.Create, Object: table})
	require.NoError(t, err)
	require.NotEmpty(t, stmts)
	assert.Contains(t, stmts[0].DDL, "CREATE TABLE")
}

func TestGenerate_DropTableCarriesDataLossHazard(t *testing.T) {
	table := model.Table{SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: "public", Name: "widgets"}}
	stmts, err := Generate(differ.Change{ChangeKind: differ.Drop, Object: table})
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	require.Len(t, stmts[0].Hazards, 1)
	assert.Equal(t, HazardDeletesData, stmts[0].Hazards[0].Type)
}

func TestGenerate_UnknownChangeKindErrors(t *testing.T) {
	_, err := Generate(differ.Change{ChangeKind: "bogus"})
	assert.Error(t, err)
}

func TestStatement_ToSQLAppendsSemicolon(t *testing.T) {
	s := Statement{DDL: "SELECT 1"}
	assert.Equal(t, "SELECT 1;", s.ToSQL())
}
