package explorer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/kart-io/sbs-x/internal/model"
	"github.com/kart-io/sbs-x/pkg/infra/pool"
)

func newTestPool(t *testing.T) *pool.Pool {
	t.Helper()
	p, err := pool.NewPool(t.Name(), pool.FetchConfig())
	require.NoError(t, err)
	return p
}

func TestVolumeCacheGetPut(t *testing.T) {
	c := NewVolumeCache(newFakeAPI())

	_, ok := c.Get(3)
	assert.False(t, ok)
	assert.False(t, c.Loaded(3))

	c.Put(&model.Volume{Volume: 3})
	c.Put(&model.Volume{Volume: 1})
	c.Put(nil)

	v, ok := c.Get(3)
	require.True(t, ok)
	assert.Equal(t, 3, v.Volume)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []int{1, 3}, c.LoadedVolumes())
}

func TestEnsureLoadedFetchesOnce(t *testing.T) {
	api := seriesAPI(1, 2)
	c := NewVolumeCache(api)

	for range 3 {
		v, err := c.EnsureLoaded(context.Background(), 2)
		require.NoError(t, err)
		assert.Equal(t, 2, v.Volume)
	}
	assert.Equal(t, []int{2}, api.fetchedVolumes())
	assert.EqualValues(t, 1, c.Fetches())
}

func TestEnsureLoadedCoalescesConcurrentCalls(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	api := seriesAPI(1, 1)
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	api.onFetch = func(int) {
		once.Do(func() { close(started) })
		<-release
	}
	c := NewVolumeCache(api)

	var wg sync.WaitGroup
	got := make([]*model.Volume, 8)
	for i := range got {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.EnsureLoaded(context.Background(), 1)
			assert.NoError(t, err)
			got[i] = v
		}()
	}

	<-started
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, []int{1}, api.fetchedVolumes())
	for _, v := range got {
		assert.Same(t, got[0], v)
	}
}

func TestEnsureLoadedSurvivesFirstCallerCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	api := seriesAPI(1, 1)
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	api.onFetch = func(int) {
		once.Do(func() { close(started) })
		<-release
	}
	c := NewVolumeCache(api)

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.EnsureLoaded(ctx, 1)
		firstErr <- err
	}()
	<-started

	second := make(chan *model.Volume, 1)
	go func() {
		v, err := c.EnsureLoaded(context.Background(), 1)
		assert.NoError(t, err)
		second <- v
	}()

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	v := <-second
	require.NotNil(t, v)
	assert.Equal(t, 1, v.Volume)
	assert.True(t, c.Loaded(1))
	assert.Equal(t, []int{1}, api.fetchedVolumes())
}

func TestEnsureLoadedFailureIsRetryable(t *testing.T) {
	api := seriesAPI(1, 1)
	boom := errors.New("connection reset")
	api.fail(1, boom)
	c := NewVolumeCache(api)

	_, err := c.EnsureLoaded(context.Background(), 1)
	require.ErrorIs(t, err, boom)
	assert.False(t, c.Loaded(1))

	api.fail(1, nil)
	v, err := c.EnsureLoaded(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, v.Volume)
	assert.Equal(t, []int{1, 1}, api.fetchedVolumes())
}

func TestEnsureLoadedNotFound(t *testing.T) {
	c := NewVolumeCache(seriesAPI(1, 1))

	_, err := c.EnsureLoaded(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, c.Loaded(42))
}

func TestEnsureAllIsolatesFailures(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	api := seriesAPI(1, 4)
	boom := errors.New("timeout")
	api.fail(2, boom)
	c := NewVolumeCache(api)
	p := newTestPool(t)
	defer p.ReleaseTimeout(time.Second)

	failed := c.EnsureAll(context.Background(), p, []int{1, 2, 3})
	require.Len(t, failed, 1)
	assert.ErrorIs(t, failed[2], boom)
	assert.Equal(t, []int{1, 3}, c.LoadedVolumes())
	assert.ElementsMatch(t, []int{1, 2, 3}, api.fetchedVolumes())
}
