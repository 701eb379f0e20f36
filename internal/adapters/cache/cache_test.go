package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WINTERANDREA/vet-sheet-parser/internal/domain/documents"
	"github.com/WINTERANDREA/vet-sheet-parser/internal/parser"
)

func sampleResult() documents.Result {
	return documents.Result{
		Name:     "a.txt",
		Encoding: "utf-8",
		Document: parser.ParseDocument("Mario Rossi RSSMRA80A01H501U\nCG Labrador M 01/02/2015 Fido\n05/03/24 controllo", false),
	}
}

func TestLRU_GetSetEvict(t *testing.T) {
	c, err := NewLRU(1)
	require.NoError(t, err)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "k1", sampleResult()))
	got, ok, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleResult(), got)

	require.NoError(t, c.Set(ctx, "k2", documents.Result{Name: "b.txt"}))
	_, ok, _ = c.Get(ctx, "k1")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())
}

func TestLRU_ReturnsCopies(t *testing.T) {
	c, err := NewLRU(4)
	require.NoError(t, err)
	ctx := context.Background()

	in := sampleResult()
	require.NoError(t, c.Set(ctx, "k", in))
	in.Document.Owners[0].FullName = "cambiato"

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.NotEmpty(t, got.Document.Pets[0].Visits)
	got.Document.Owners[0].FullName = "otro"
	got.Document.Owners[0].TaxCode = ""
	got.Document.Pets[0].Visits[0].Description = "editado"

	again, _, _ := c.Get(ctx, "k")
	assert.Equal(t, sampleResult(), again)
}

func TestLRU_DefaultSize(t *testing.T) {
	c, err := NewLRU(0)
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func newMiniRedis(t *testing.T, ttl time.Duration) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisWithClient(client, "", ttl), mr
}

func TestRedis_RoundTrip(t *testing.T) {
	c, mr := newMiniRedis(t, time.Minute)
	ctx := context.Background()
	require.NoError(t, c.Ping(ctx))

	_, ok, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok)

	want := sampleResult()
	require.NoError(t, c.Set(ctx, "k1", want))
	assert.True(t, mr.Exists(DefaultPrefix+"k1"))

	got, ok, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)

	mr.FastForward(2 * time.Minute)
	_, ok, err = c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedis_CorruptValue(t *testing.T) {
	c, mr := newMiniRedis(t, 0)
	require.NoError(t, mr.Set(DefaultPrefix+"bad", "{not json"))

	_, ok, err := c.Get(context.Background(), "bad")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestRedis_Unavailable(t *testing.T) {
	c, mr := newMiniRedis(t, 0)
	mr.Close()

	_, _, err := c.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.Error(t, c.Set(context.Background(), "k", documents.Result{}))
}
