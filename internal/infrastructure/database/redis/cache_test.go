package redis

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/PrintShop-Customizer/internal/domain/customization"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestCache_SetGetDelete(t *testing.T) {
	client, mr := newTestClient(t)
	cache := NewRedisCache(client, nil, WithoutJitter())
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", payload{"a", 1}, time.Minute))
	assert.True(t, mr.Exists("customizer:k"))
	assert.Equal(t, time.Minute, mr.TTL("customizer:k"))

	var got payload
	require.NoError(t, cache.Get(ctx, "k", &got))
	assert.Equal(t, payload{"a", 1}, got)

	require.NoError(t, cache.Delete(ctx, "k"))
	assert.Equal(t, ErrCacheMiss, cache.Get(ctx, "k", &got))
}

func TestCache_DefaultTTLWithJitter(t *testing.T) {
	client, mr := newTestClient(t)
	cache := NewRedisCache(client, nil, WithDefaultTTL(100*time.Second))

	require.NoError(t, cache.Set(context.Background(), "k", 1, 0))
	ttl := mr.TTL("customizer:k")
	assert.GreaterOrEqual(t, ttl, 90*time.Second)
	assert.LessOrEqual(t, ttl, 110*time.Second)
}

func TestCache_GetOrSetSharesLoader(t *testing.T) {
	client, _ := newTestClient(t)
	cache := NewRedisCache(client, nil)
	ctx := context.Background()

	var calls atomic.Int32
	release := make(chan struct{})
	loader := func(context.Context) (interface{}, error) {
		calls.Add(1)
		<-release
		return payload{"loaded", 7}, nil
	}

	var wg sync.WaitGroup
	results := make([]payload, 4)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, cache.GetOrSet(ctx, "shared", &results[i], time.Minute, loader))
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Equal(t, payload{"loaded", 7}, r)
	}

	var cached payload
	require.NoError(t, cache.Get(ctx, "shared", &cached))
	assert.Equal(t, 7, cached.Count)
}

func TestCache_GetOrSetPropagatesLoaderError(t *testing.T) {
	client, _ := newTestClient(t)
	cache := NewRedisCache(client, nil)
	boom := errors.New("boom")

	var dest payload
	err := cache.GetOrSet(context.Background(), "x", &dest, 0, func(context.Context) (interface{}, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestCache_DeleteByPrefix(t *testing.T) {
	client, mr := newTestClient(t)
	cache := NewRedisCache(client, nil)
	ctx := context.Background()

	for _, k := range []string{"design:1", "design:2", "other:1"} {
		require.NoError(t, cache.Set(ctx, k, 1, time.Minute))
	}
	n, err := cache.DeleteByPrefix(ctx, "design:")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.True(t, mr.Exists("customizer:other:1"))
}

func TestDesignCache_RoundTrip(t *testing.T) {
	client, mr := newTestClient(t)
	dc := NewDesignCache(NewRedisCache(client, nil, WithoutJitter()), 5*time.Minute)
	ctx := context.Background()

	d, err := customization.NewDesign(customization.DefaultCatalog(), customization.ProductTShirt, "#00FF00",
		customization.WithDesignID("d-1"))
	require.NoError(t, err)
	logo := d.AddLogo("Acme", "logos/acme.png")
	require.NoError(t, d.Store().SetLogo(customization.LeftChest, logo))

	_, ok, err := dc.Get(ctx, "d-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, dc.Put(ctx, d.Record()))
	assert.True(t, mr.Exists("customizer:design:d-1"))
	assert.Equal(t, 5*time.Minute, mr.TTL("customizer:design:d-1"))

	rec, ok, err := dc.Get(ctx, "d-1")
	require.NoError(t, err)
	require.True(t, ok)

	again, err := customization.RehydrateDesign(customization.DefaultCatalog(), rec)
	require.NoError(t, err)
	assert.Equal(t, d.Snapshot(), again.Snapshot())

	require.NoError(t, dc.Invalidate(ctx, "d-1"))
	assert.False(t, mr.Exists("customizer:design:d-1"))
}

func TestDesignCache_PutKeepsNewerVersion(t *testing.T) {
	client, _ := newTestClient(t)
	dc := NewDesignCache(NewRedisCache(client, nil, WithoutJitter()), time.Minute)
	ctx := context.Background()

	d, err := customization.NewDesign(customization.DefaultCatalog(), customization.ProductTShirt, "#FFFFFF",
		customization.WithDesignID("d-v"))
	require.NoError(t, err)
	stale := d.Record()
	stale.Version = 3
	fresh := d.Record()
	fresh.Version = 4
	fresh.ProductColor = "#000000"

	tests := []struct {
		name    string
		put     customization.DesignRecord
		version int64
		color   string
	}{
		{"first write", stale, 3, "#FFFFFF"},
		{"newer replaces", fresh, 4, "#000000"},
		{"older is ignored", stale, 4, "#000000"},
		{"same version refreshes", fresh, 4, "#000000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, dc.Put(ctx, tt.put))
			got, ok, err := dc.Get(ctx, "d-v")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, tt.version, got.Version)
			assert.Equal(t, tt.color, got.ProductColor)
		})
	}
}

func TestCache_SetIfNewerOverwritesUnreadableEntry(t *testing.T) {
	client, mr := newTestClient(t)
	cache := NewRedisCache(client, nil, WithoutJitter())
	require.NoError(t, mr.Set("customizer:k", "{not json"))

	ok, err := cache.SetIfNewer(context.Background(), "k", map[string]int64{"version": 1}, 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	var got map[string]int64
	require.NoError(t, cache.Get(context.Background(), "k", &got))
	assert.Equal(t, int64(1), got["version"])
	assert.Equal(t, time.Minute, mr.TTL("customizer:k"))
}

func TestDesignCache_CorruptEntry(t *testing.T) {
	client, mr := newTestClient(t)
	dc := NewDesignCache(NewRedisCache(client, nil), time.Minute)
	require.NoError(t, mr.Set("customizer:design:bad", "{not json"))

	_, ok, err := dc.Get(context.Background(), "bad")
	assert.False(t, ok)
	assert.Error(t, err)
}

//Personal.AI order the ending
