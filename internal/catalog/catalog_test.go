package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeACL_GrantsAndGrantable(t *testing.T) {
	got := decodeACL([]string{"bob=r*w/alice"})
	require.Len(t, got, 2)
	assert.Equal(t, "bob", got[0].Grantee)
	assert.Equal(t, "alice", got[0].Grantor)
	assert.Equal(t, "SELECT", got[0].Privilege)
	assert.True(t, got[0].Grantable)
	assert.Equal(t, "UPDATE", got[1].Privilege)
	assert.False(t, got[1].Grantable)
}

func TestDecodeACL_EmptyGranteeMeansPublic(t *testing.T) {
	got := decodeACL([]string{"=r/alice"})
	require.Len(t, got, 1)
	assert.Equal(t, "", got[0].Grantee)
}

func TestDecodeACL_MalformedItemSkipped(t *testing.T) {
	assert.Empty(t, decodeACL([]string{"not-an-aclitem"}))
}

func TestDecodeACL_UnknownLetterSkippedRestParsed(t *testing.T) {
	got := decodeACL([]string{"bob=?r/alice"})
	require.Len(t, got, 1)
	assert.Equal(t, "SELECT", got[0].Privilege)
}

func TestPgMajor_FloorsDownToNearestKnownVersion(t *testing.T) {
	assert.Equal(t, 150000, pgMajor(150004))
	assert.Equal(t, 140000, pgMajor(140999))
	assert.Equal(t, 90400, pgMajor(90400))
	assert.Equal(t, 90400, pgMajor(1))
}

func TestVersionedQuery_PicksExactThenFallsBackOlder(t *testing.T) {
	vq := versionedQuery{90400: "old sql", 130000: "new sql"}
	assert.Equal(t, "new sql", vq.pick(150004))
	assert.Equal(t, "old sql", vq.pick(100000))
	assert.Equal(t, "old sql", vq.pick(90400))
}

func TestNameIncluded_IncludeListRestricts(t *testing.T) {
	r := &Reader{includeSchemas: []string{"public", "reporting"}}
	assert.True(t, r.nameIncluded("public"))
	assert.False(t, r.nameIncluded("other"))
}

func TestNameIncluded_ExcludeListRemoves(t *testing.T) {
	r := &Reader{excludeSchemas: []string{"archive"}}
	assert.True(t, r.nameIncluded("public"))
	assert.False(t, r.nameIncluded("archive"))
}

func TestNameIncluded_NoFiltersIncludesEverything(t *testing.T) {
	r := &Reader{}
	assert.True(t, r.nameIncluded("anything"))
}

func TestExtensionOwnedPredicate_ReferencesOidExpr(t *testing.T) {
	got := extensionOwnedPredicate("c.oid")
	assert.Contains(t, got, "c.oid")
	assert.Contains(t, got, "deptype = 'e'")
}
