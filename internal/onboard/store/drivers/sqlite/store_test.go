package sqlite

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/aussiebroadwan/onboard/internal/onboard/store/storetest"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	storetest.Run(t, s)
}

func TestApplyMigrationsIsIdempotent(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "onboard.db")

	s, err := NewStore(dsn)
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	require.NoError(t, s.Close())

	s, err = NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())
}

func TestIsUniqueViolation(t *testing.T) {
	require.False(t, isUniqueViolation(nil))
	require.False(t, isUniqueViolation(errors.New("constraint failed")))
}
