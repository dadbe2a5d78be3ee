package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Config{Dir: "/out"}, afero.NewMemMapFs())
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	s, err = Open(ctx, Config{Driver: DriverSQLite, DSN: ":memory:"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &SQLStore{}, s)
	require.NoError(t, s.Close())

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	s, err = Open(ctx, Config{Driver: DriverRedis, Redis: RedisConfig{Addr: mr.Addr(), Prefix: "t:"}}, nil)
	require.NoError(t, err)
	assert.IsType(t, &RedisStore{}, s)
	require.NoError(t, s.Close())
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "mongo"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fs, sqlite, postgres, redis")
}

func TestOpen_PostgresRequiresDSN(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: DriverPostgres}, nil)
	assert.Error(t, err)
}
