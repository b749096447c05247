package sink

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newRedisSink(t *testing.T) (*RedisSink, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisSink(client, "gfdeals:deals"), mr
}

func TestRedisSinkRoundTrip(t *testing.T) {
	s, mr := newRedisSink(t)
	ctx := context.Background()

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, loaded)

	res, err := s.Persist(ctx, sampleDeals())
	require.NoError(t, err)
	require.Equal(t, Result{Deleted: 0, Inserted: 2}, res)
	keys, err := mr.HKeys("gfdeals:deals")
	require.NoError(t, err)
	require.Len(t, keys, 2)

	loaded, err = s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, sampleDeals(), loaded, "load must restore ranking order")

	res, err = s.Persist(ctx, sampleDeals()[1:])
	require.NoError(t, err)
	require.Equal(t, Result{Deleted: 2, Inserted: 1}, res)
	keys, err = mr.HKeys("gfdeals:deals")
	require.NoError(t, err)
	require.Equal(t, []string{sampleDeals()[1].ContentHash()}, keys)
}

func TestRedisSinkPersistEmptyClearsKey(t *testing.T) {
	s, mr := newRedisSink(t)
	ctx := context.Background()

	_, err := s.Persist(ctx, sampleDeals())
	require.NoError(t, err)

	res, err := s.Persist(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, Result{Deleted: 2}, res)
	require.False(t, mr.Exists("gfdeals:deals"))
}

func TestRedisSinkLoadRejectsBadJSON(t *testing.T) {
	s, mr := newRedisSink(t)
	mr.HSet("gfdeals:deals", "abc", "{")

	_, err := s.Load(context.Background())
	require.ErrorContains(t, err, "decode deal abc")
}
