package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithoutOwners(t *testing.T) {
	m := Model{
		Tables: []Table{
			{Meta: Meta{OwnerName: "alice"}, SchemaQualifiedName: SchemaQualifiedName{SchemaName: "public", Name: "t"}},
		},
		Languages: []Language{
			{Meta: Meta{OwnerName: "alice"}, Name: "plpgsql"},
		},
	}
	out := m.WithoutOwners()
	assert.Empty(t, out.Tables[0].OwnerName)
	assert.Empty(t, out.Languages[0].OwnerName)
	assert.Equal(t, "alice", m.Tables[0].OwnerName, "original model must be untouched")
}

func TestWithoutPrivileges(t *testing.T) {
	m := Model{
		Tables: []Table{
			{Meta: Meta{Privs: []Privilege{{Grantee: "bob", Privilege: "SELECT"}}},
				SchemaQualifiedName: SchemaQualifiedName{SchemaName: "public", Name: "t"}},
		},
	}
	out := m.WithoutPrivileges()
	assert.Empty(t, out.Tables[0].Privs)
	assert.NotEmpty(t, m.Tables[0].Privs, "original model must be untouched")
}
