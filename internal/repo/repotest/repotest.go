// Package repotest provides a throwaway in-memory sqlite Store for tests.
package repotest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/canteen/internal/repo"
	pkgdb "github.com/Skotchmaster/canteen/pkg/db"
)

func New(t *testing.T) *repo.GormRepo {
	t.Helper()

	ctx := context.Background()
	db, err := pkgdb.Open(ctx, pkgdb.DriverSQLite, ":memory:")
	require.NoError(t, err)

	r := &repo.GormRepo{DB: db}
	require.NoError(t, r.Migrate(ctx))

	t.Cleanup(func() { _ = pkgdb.Close(db) })
	return r
}
