package migrations

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestURL(t *testing.T) {
	u, err := URL("postgres", "postgres://srm@localhost:5432/srm?sslmode=disable")
	require.NoError(t, err)
	assert.Equal(t, "postgres://srm@localhost:5432/srm?sslmode=disable", u)

	_, err = URL("postgres", "host=localhost dbname=srm")
	assert.Error(t, err)

	u, err = URL("sqlite", "/var/lib/srm/eval.db")
	require.NoError(t, err)
	assert.Equal(t, "sqlite:///var/lib/srm/eval.db", u)

	_, err = URL("memory", "")
	assert.Error(t, err)
}

func TestRunSQLiteIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eval.db")

	require.NoError(t, Run("sqlite", path))
	require.NoError(t, Run("sqlite", path))

	conn, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer conn.Close()

	var n int
	require.NoError(t, conn.QueryRow(`select count(*) from supplier_evaluations`).Scan(&n))
	assert.Equal(t, 0, n)
}
