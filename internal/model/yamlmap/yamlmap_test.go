package yamlmap

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/dbsync/dbsync/internal/differ"
	"github.com/dbsync/dbsync/internal/model"
)

func sampleModel() model.Model {
	return model.Model{
		NamedSchemas: []model.NamedSchema{{Name: "public"}},
		Tables: []model.Table{
			{
				SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: "public", Name: "widgets"},
				Columns: []model.Column{
					{Name: "id", Type: "integer", IsNullable: false},
					{Name: "label", Type: "text", IsNullable: true},
				},
				PrimaryKey: &model.PrimaryKey{Name: "widgets_pkey", Columns: []string{"id"}},
				Indexes: []model.Index{
					{
						Name: "widgets_label_idx",
						OwningTable: model.SchemaQualifiedName{SchemaName: "public", Name: "widgets"},
						Columns: []string{"label"},
						Method: "btree",
					},
				},
			},
		},
	}
}

// normalize sorts every slice whose order the map representation doesn't preserve, so two models
// built independently but describing the same catalog compare equal regardless of map/range
// iteration order upstream.
func normalize(m model.Model) model.Model {
	sort.Slice(m.NamedSchemas, func(i, j int) bool { return m.NamedSchemas[i].Name < m.NamedSchemas[j].Name })
	sort.Slice(m.Tables, func(i, j int) bool { return m.Tables[i].Name < m.Tables[j].Name })
	return m
}

func TestRoundTrip_MarshalUnmarshalDiffEmpty(t *testing.T) {
	want := sampleModel()

	data, err := Marshal(want)
	require.NoError(t, err)

	got, err := Unmarshal(data)
	require.NoError(t, err)

	if diff := cmp.Diff(normalize(want), normalize(got)); diff != "" {
		t.Fatalf("round-tripped model differs from original:\n%s", diff)
	}

	changes, err := differ.Diff(want, got)
	require.NoError(t, err)
	require.Empty(t, changes, "diffing a model against its own round-trip must be empty")
}

func TestRoundTrip_ToMapFromMapDiffEmpty(t *testing.T) {
	want := sampleModel()

	got, err := FromMap(ToMap(want))
	require.NoError(t, err)

	changes, err := differ.Diff(want, got)
	require.NoError(t, err)
	require.Empty(t, changes)
}

func TestDiff_IdempotenceOnEqualModels(t *testing.T) {
	d := sampleModel()

	changes, err := differ.Diff(d, d)
	require.NoError(t, err)
	require.Empty(t, changes, "diffing a model against itself must yield no changes")
}
