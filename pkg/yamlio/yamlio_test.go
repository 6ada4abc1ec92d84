package yamlio

import (
	"context"
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
			{SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: "public", Name: "widgets"}},
		},
	}
}

func TestWriteThenRead_SingleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, Write(path, sampleModel()))

	got, err := Read(path)
	require.NoError(t, err)
	_, ok := got.FindTable("public", "widgets")
	assert.True(t, ok)
}

func TestWriteDirThenReadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteDir(context.Background(), dir, "mydb", sampleModel(), 32))

	got, err := ReadDir(dir)
	require.NoError(t, err)
	_, ok := got.FindTable("public", "widgets")
	assert.True(t, ok)
}

func TestRead_MissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
