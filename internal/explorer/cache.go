package explorer

import (
	"context"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/kart-io/logger"

	"github.com/kart-io/sbs-x/internal/model"
	"github.com/kart-io/sbs-x/pkg/infra/pool"
)

// FetchTimeout bounds a shared volume fetch once it no longer follows the
// context of the caller that started it.
const FetchTimeout = time.Minute

// VolumeCache holds fetched volumes for the lifetime of a session. Entries are
// never evicted. Concurrent loads of the same volume share one fetch.
type VolumeCache struct {
	fetcher VolumeFetcher

	mu      sync.RWMutex
	volumes map[int]*model.Volume

	group   singleflight.Group
	fetches atomic.Int64
}

// NewVolumeCache creates an empty cache backed by fetcher.
func NewVolumeCache(fetcher VolumeFetcher) *VolumeCache {
	return &VolumeCache{
		fetcher: fetcher,
		volumes: make(map[int]*model.Volume),
	}
}

// Get returns a cached volume.
func (c *VolumeCache) Get(volume int) (*model.Volume, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.volumes[volume]
	return v, ok
}

// Loaded reports whether volume is cached.
func (c *VolumeCache) Loaded(volume int) bool {
	_, ok := c.Get(volume)
	return ok
}

// Put stores v under its volume number.
func (c *VolumeCache) Put(v *model.Volume) {
	if v == nil {
		return
	}
	c.mu.Lock()
	c.volumes[v.Volume] = v
	c.mu.Unlock()
}

// Len returns the number of cached volumes.
func (c *VolumeCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.volumes)
}

// LoadedVolumes returns the cached volume numbers, ascending.
func (c *VolumeCache) LoadedVolumes() []int {
	c.mu.RLock()
	out := make([]int, 0, len(c.volumes))
	for n := range c.volumes {
		out = append(out, n)
	}
	c.mu.RUnlock()
	slices.Sort(out)
	return out
}

// Fetches returns how many fetches the cache has issued.
func (c *VolumeCache) Fetches() int64 {
	return c.fetches.Load()
}

// EnsureLoaded returns the cached volume, fetching it first when needed. A
// failed fetch leaves the volume absent so a later call retries it.
//
// Concurrent callers share one fetch. The fetch is detached from their
// contexts and bounded by FetchTimeout, so a caller giving up only ends its
// own wait.
func (c *VolumeCache) EnsureLoaded(ctx context.Context, volume int) (*model.Volume, error) {
	if v, ok := c.Get(volume); ok {
		return v, nil
	}

	ch := c.group.DoChan(strconv.Itoa(volume), func() (any, error) {
		if v, ok := c.Get(volume); ok {
			return v, nil
		}
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), FetchTimeout)
		defer cancel()

		c.fetches.Add(1)
		v, err := c.fetcher.Volume(fctx, volume)
		if err != nil {
			return nil, err
		}
		c.Put(v)
		return v, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			logger.Debugw("Volume fetch failed", "volume", volume, "shared", res.Shared, "error", res.Err.Error())
			return nil, res.Err
		}
		return res.Val.(*model.Volume), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// EnsureAll loads every volume in vols concurrently on p. Failures are
// isolated per volume and returned keyed by volume number.
func (c *VolumeCache) EnsureAll(ctx context.Context, p *pool.Pool, vols []int) map[int]error {
	var (
		mu     sync.Mutex
		failed = make(map[int]error)
		tasks  = make([]func(context.Context), 0, len(vols))
	)
	for _, n := range vols {
		tasks = append(tasks, func(ctx context.Context) {
			if _, err := c.EnsureLoaded(ctx, n); err != nil {
				mu.Lock()
				failed[n] = err
				mu.Unlock()
			}
		})
	}
	p.RunAll(ctx, tasks...)
	return failed
}
