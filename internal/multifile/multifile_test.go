package multifile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsync/dbsync/internal/model"
)

func sampleModel() model.Model {
	return model.Model{
		NamedSchemas: []model.NamedSchema{{Name: "public"}},
		Tables: []model.Table{
			{SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: "public", Name: "orders"}},
		},
		Functions: []model.Function{
			{SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: "public", Name: "total"}, ArgTypes: []string{"integer"}},
			{SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: "public", Name: "total"}, ArgTypes: []string{"integer", "integer"}},
		},
	}
}

func TestWrite_SplitsFilesAndWritesIndex(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Write(context.Background(), dir, "mydb", sampleModel(), 32))

	assertExists(t, filepath.Join(dir, "database.mydb.yaml"))
	assertExists(t, filepath.Join(dir, "schema.public.yaml"))
	assertExists(t, filepath.Join(dir, "schema.public", "table.orders.yaml"))
	// both function overloads collapse into one shared file.
	assertExists(t, filepath.Join(dir, "schema.public", "function.total.yaml"))
}

func TestWrite_PrunesStaleFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Write(context.Background(), dir, "mydb", sampleModel(), 32))
	assertExists(t, filepath.Join(dir, "schema.public", "table.orders.yaml"))

	trimmed := model.Model{NamedSchemas: []model.NamedSchema{{Name: "public"}}}
	require.NoError(t, Write(context.Background(), dir, "mydb", trimmed, 32))

	assertMissing(t, filepath.Join(dir, "schema.public", "table.orders.yaml"))
	assertMissing(t, filepath.Join(dir, "schema.public", "function.total.yaml"))
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "my_table", sanitize("My-Table", 32))
	assert.Equal(t, "abc", sanitize("abcdef", 3))
}

func TestChildFilenameBase_StripsFunctionSignature(t *testing.T) {
	assert.Equal(t, "total", childFilenameBase("function", "total(integer, integer)"))
	assert.Equal(t, "orders", childFilenameBase("table", "orders"))
}

func assertExists(t *testing.T, path string) {
	t.Helper()
	_, err := os.Stat(path)
	assert.NoError(t, err, "expected %s to exist", path)
}

func assertMissing(t *testing.T, path string) {
	t.Helper()
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "expected %s to be removed", path)
}
