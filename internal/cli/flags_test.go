package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDSN_Defaults(t *testing.T) {
	t.Setenv("PGHOST", "")
	t.Setenv("PGPORT", "")
	t.Setenv("PGUSER", "alice")
	t.Setenv("PGPASSWORD", "")
	t.Setenv("PGDATABASE", "")

	c := &ConnectionFlags{}
	dsn, err := c.ResolveDSN("")
	require.NoError(t, err)
	assert.Contains(t, dsn, "host=localhost")
	assert.Contains(t, dsn, "port=5432")
	assert.Contains(t, dsn, "user=alice")
	assert.Contains(t, dsn, "dbname=alice")
}

func TestResolveDSN_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("PGHOST", "envhost")
	c := &ConnectionFlags{Host: "flaghost", Port: 5555, User: "bob"}
	dsn, err := c.ResolveDSN("widgets")
	require.NoError(t, err)
	assert.Contains(t, dsn, "host=flaghost")
	assert.Contains(t, dsn, "port=5555")
	assert.Contains(t, dsn, "dbname=widgets")
}

func TestResolveDSN_PasswordFromEnv(t *testing.T) {
	t.Setenv("PGPASSWORD", "s3cret")
	c := &ConnectionFlags{User: "bob"}
	dsn, err := c.ResolveDSN("db")
	require.NoError(t, err)
	assert.Contains(t, dsn, "password=s3cret")
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "b", "c"))
	assert.Equal(t, "", firstNonEmpty("", ""))
}

func TestEnvInt(t *testing.T) {
	t.Setenv("SOME_PORT", "")
	assert.Equal(t, 5432, envInt("SOME_PORT", 5432))
	t.Setenv("SOME_PORT", "9999")
	assert.Equal(t, 9999, envInt("SOME_PORT", 5432))
}
