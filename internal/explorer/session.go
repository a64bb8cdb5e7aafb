package explorer

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/kart-io/logger"

	"github.com/kart-io/sbs-x/internal/model"
	"github.com/kart-io/sbs-x/pkg/infra/pool"
)

const (
	// DefaultVolume is shown when no search is active.
	DefaultVolume = 107
	// BatchSize is how many matched volumes a search or LoadMore fetches.
	BatchSize = 3
	// MinTermRunes is the shortest text or character term sent to the API.
	MinTermRunes = 2
	// RecentLimit bounds the recent search list.
	RecentLimit = 5
)

// Stats summarises a match list.
type Stats struct {
	TotalMatches int         `json:"totalMatches"`
	VolumeCount  int         `json:"volumeCount"`
	Volumes      map[int]int `json:"volumes"`
}

// ComputeStats counts matches per volume. Volumes without matches are ignored.
func ComputeStats(results []model.MatchResult) Stats {
	s := Stats{Volumes: make(map[int]int, len(results))}
	for _, r := range results {
		if len(r.Matches) == 0 {
			continue
		}
		if _, ok := s.Volumes[r.Volume]; !ok {
			s.VolumeCount++
		}
		s.Volumes[r.Volume] += len(r.Matches)
		s.TotalMatches += len(r.Matches)
	}
	return s
}

// Outcome is what a search hands back to the presentation layer.
type Outcome struct {
	Stats  Stats
	Groups []Group
	// Failed lists volumes of the initial batch whose fetch failed.
	Failed []int
	// Stale is set when a newer search started before this one finished.
	// A stale outcome carries nothing and changed nothing.
	Stale bool
}

// Session owns the client side search state: the current match list, its
// stats, the volume cache and the search history.
type Session struct {
	api       API
	cache     *VolumeCache
	assembler *Assembler
	pool      *pool.Pool
	ownPool   bool

	// generation is only advanced with mu held, so a search that sees its
	// own token under mu may commit.
	generation atomic.Uint64
	loading    atomic.Bool

	// beforeCommit runs between the batch fetch and the state commit.
	beforeCommit func()

	mu      sync.RWMutex
	term    string
	typ     model.SearchType
	results []model.MatchResult
	stats   Stats
	current int
	filter  int
	recent  []string
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithVolumeCache shares an existing cache with the session.
func WithVolumeCache(c *VolumeCache) SessionOption {
	return func(s *Session) { s.cache = c }
}

// WithPool runs volume fetches on p. The session does not release it.
func WithPool(p *pool.Pool) SessionOption {
	return func(s *Session) { s.pool = p }
}

// WithCurrentVolume sets the volume shown while no search is active.
func WithCurrentVolume(volume int) SessionOption {
	return func(s *Session) { s.current = volume }
}

// NewSession creates a session talking to api.
func NewSession(api API, opts ...SessionOption) (*Session, error) {
	s := &Session{api: api, current: DefaultVolume}
	for _, opt := range opts {
		opt(s)
	}

	if s.cache == nil {
		s.cache = NewVolumeCache(api)
	}
	if s.pool == nil {
		p, err := pool.NewPool("sbs-fetch", pool.FetchConfig())
		if err != nil {
			return nil, err
		}
		s.pool, s.ownPool = p, true
	}
	s.assembler = NewAssembler(s.cache, s.pool)
	return s, nil
}

// Cache returns the session's volume cache.
func (s *Session) Cache() *VolumeCache {
	return s.cache
}

// Search runs a search and fetches the first batch of matched volumes.
//
// A blank term, or a text or character term shorter than MinTermRunes,
// clears the search and returns the current volume from the cache without
// any request. A search overtaken by a newer one returns a stale outcome.
func (s *Session) Search(ctx context.Context, term string, typ model.SearchType) (*Outcome, error) {
	token := s.begin()

	typ, err := model.ParseSearchType(string(typ))
	if err != nil {
		return nil, err
	}
	term = strings.TrimSpace(term)
	if term == "" || (typ != model.SearchTag && utf8.RuneCountInString(term) < MinTermRunes) {
		return s.clear(token), nil
	}
	s.remember(term)

	results, err := s.api.Search(ctx, term, typ)
	if s.generation.Load() != token {
		return stale(term, typ), nil
	}
	if err != nil {
		return nil, err
	}

	batch := referencedVolumes(results)
	batch = batch[:min(len(batch), BatchSize)]
	_, err = s.assembler.Assemble(ctx, restrict(results, batch))

	var fetchErr *FetchError
	if err != nil && !errors.As(err, &fetchErr) {
		return nil, err
	}

	stats := ComputeStats(results)
	if s.beforeCommit != nil {
		s.beforeCommit()
	}

	s.mu.Lock()
	if s.generation.Load() != token {
		s.mu.Unlock()
		return stale(term, typ), nil
	}
	s.term, s.typ = term, typ
	s.results = results
	s.stats = stats
	groups := s.groupsLocked()
	s.mu.Unlock()

	out := &Outcome{Stats: stats, Groups: groups}
	if fetchErr != nil {
		out.Failed = fetchErr.Volumes()
	}
	logger.Debugw("Search finished", "term", term, "type", typ,
		"matches", stats.TotalMatches, "volumes", stats.VolumeCount, "failed", len(out.Failed))
	return out, nil
}

// begin starts a new search generation, making every older search stale.
func (s *Session) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation.Add(1)
}

func stale(term string, typ model.SearchType) *Outcome {
	logger.Debugw("Discarding stale search response", "term", term, "type", typ)
	return &Outcome{Stale: true}
}

// clear drops the match list and returns the current volume unfiltered,
// unless a newer search started after token.
func (s *Session) clear(token uint64) *Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation.Load() != token {
		return &Outcome{Stale: true}
	}
	s.term, s.typ = "", ""
	s.results = nil
	s.stats = Stats{}
	return &Outcome{Groups: s.groupsLocked()}
}

// LoadMore fetches the next batch of matched volumes that are not cached.
// It does nothing when every matched volume is cached or another LoadMore
// is still running. Failed volumes stay uncached and the returned
// *FetchError lists them.
func (s *Session) LoadMore(ctx context.Context) error {
	if !s.loading.CompareAndSwap(false, true) {
		return nil
	}
	defer s.loading.Store(false)

	s.mu.RLock()
	results := s.results
	s.mu.RUnlock()

	next := s.pending(results, BatchSize)
	if len(next) == 0 {
		return nil
	}
	_, err := s.assembler.Assemble(ctx, restrict(results, next))
	return err
}

// Loading reports whether a LoadMore is running.
func (s *Session) Loading() bool {
	return s.loading.Load()
}

// HasMore reports whether matched volumes remain uncached.
func (s *Session) HasMore() bool {
	s.mu.RLock()
	results := s.results
	s.mu.RUnlock()
	return len(s.pending(results, 1)) > 0
}

// pending returns up to n volumes of results that are not cached, in list order.
func (s *Session) pending(results []model.MatchResult, n int) []int {
	var out []int
	for _, v := range referencedVolumes(results) {
		if len(out) == n {
			break
		}
		if !s.cache.Loaded(v) {
			out = append(out, v)
		}
	}
	return out
}

// restrict keeps the results of vols.
func restrict(results []model.MatchResult, vols []int) []model.MatchResult {
	out := make([]model.MatchResult, 0, len(vols))
	for _, r := range results {
		if slices.Contains(vols, r.Volume) {
			out = append(out, r)
		}
	}
	return out
}

// Volume returns a volume from the cache, fetching it when needed.
func (s *Session) Volume(ctx context.Context, volume int) (*model.Volume, error) {
	return s.cache.EnsureLoaded(ctx, volume)
}

// Groups assembles the current match list against the cache. Without an
// active search it returns the current volume when cached.
func (s *Session) Groups() []Group {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.groupsLocked()
}

func (s *Session) groupsLocked() []Group {
	if s.term == "" {
		v, ok := s.cache.Get(s.current)
		if !ok {
			return nil
		}
		return []Group{VolumeGroup(v)}
	}

	groups := s.assembler.Snapshot(s.results)
	if s.filter != 0 {
		groups = slices.DeleteFunc(groups, func(g Group) bool { return g.Volume != s.filter })
	}
	return groups
}

// Stats returns the stats of the current match list.
func (s *Session) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// Results returns the current match list.
func (s *Session) Results() []model.MatchResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.results)
}

// Term returns the active term and type. The term is empty when no search
// is active.
func (s *Session) Term() (string, model.SearchType) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.term, s.typ
}

// CurrentVolume returns the volume shown while no search is active.
func (s *Session) CurrentVolume() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// SetCurrentVolume changes the volume shown while no search is active.
func (s *Session) SetCurrentVolume(volume int) {
	s.mu.Lock()
	s.current = volume
	s.mu.Unlock()
}

// SetVolumeFilter restricts Groups to one volume.
func (s *Session) SetVolumeFilter(volume int) {
	s.mu.Lock()
	s.filter = volume
	s.mu.Unlock()
}

// ClearVolumeFilter removes the volume filter.
func (s *Session) ClearVolumeFilter() {
	s.SetVolumeFilter(0)
}

// Recent returns the most recent distinct terms, newest first.
func (s *Session) Recent() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.recent)
}

func (s *Session) remember(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recent = slices.DeleteFunc(s.recent, func(t string) bool { return strings.EqualFold(t, term) })
	s.recent = slices.Insert(s.recent, 0, term)
	if len(s.recent) > RecentLimit {
		s.recent = s.recent[:RecentLimit]
	}
}

// Close releases the fetch pool when the session created it.
func (s *Session) Close() error {
	if !s.ownPool {
		return nil
	}
	return s.pool.ReleaseTimeout(5 * time.Second)
}
