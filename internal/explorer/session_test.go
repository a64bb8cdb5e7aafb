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
	"github.com/kart-io/sbs-x/internal/pkg/sbstest"
)

func newTestSession(t *testing.T, api API, opts ...SessionOption) *Session {
	t.Helper()
	s, err := NewSession(api, opts...)
	require.NoError(t, err)
	return s
}

func volumesOf(groups []Group) []int {
	out := make([]int, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.Volume)
	}
	return out
}

func TestComputeStats(t *testing.T) {
	s := ComputeStats([]model.MatchResult{
		{Volume: 1, Matches: make([]model.Match, 2)},
		{Volume: 4, Matches: make([]model.Match, 3)},
		{Volume: 9},
	})
	assert.Equal(t, 5, s.TotalMatches)
	assert.Equal(t, 2, s.VolumeCount)
	assert.Equal(t, map[int]int{1: 2, 4: 3}, s.Volumes)

	empty := ComputeStats(nil)
	assert.Zero(t, empty.TotalMatches)
	assert.Empty(t, empty.Volumes)
}

func TestSearchScenarioVolume107(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	api := newFakeAPI(sbstest.Volume107())
	api.results[key("Luffy", model.SearchText)] = []model.MatchResult{{Volume: 107, Matches: []model.Match{
		{Chapter: 5, Page: 12, SectionID: "107-Q3", MatchedIn: model.MatchedInQuestion},
	}}}
	s := newTestSession(t, api)
	defer s.Close()

	out, err := s.Search(context.Background(), "  Luffy ", model.SearchText)
	require.NoError(t, err)
	assert.False(t, out.Stale)
	assert.Equal(t, 1, out.Stats.TotalMatches)
	assert.Equal(t, 1, out.Stats.VolumeCount)

	require.Len(t, out.Groups, 1)
	sec := out.Groups[0].Chapters[0].Sections[0]
	assert.Equal(t, "107-Q3", sec.Section.ID)
	assert.Equal(t, "What is Luffy's dream?", sec.Section.Question.Text)
	assert.Equal(t, model.MatchedInQuestion, sec.MatchedIn)

	term, typ := s.Term()
	assert.Equal(t, "Luffy", term)
	assert.Equal(t, model.SearchText, typ)
}

func TestSearchBlankTermShowsCurrentVolume(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	api := newFakeAPI(sbstest.Volume107())
	s := newTestSession(t, api)
	defer s.Close()

	out, err := s.Search(context.Background(), "   ", model.SearchText)
	require.NoError(t, err)
	assert.Empty(t, out.Groups)
	assert.Zero(t, api.searchCount())
	assert.Empty(t, api.fetchedVolumes())

	_, err = s.Volume(context.Background(), 107)
	require.NoError(t, err)

	out, err = s.Search(context.Background(), "", model.SearchText)
	require.NoError(t, err)
	require.Len(t, out.Groups, 1)
	assert.Equal(t, 107, out.Groups[0].Volume)
	assert.Zero(t, api.searchCount())
	assert.Equal(t, []int{107}, api.fetchedVolumes())
}

func TestSearchShortTermClears(t *testing.T) {
	api := seriesAPI(1, 1)
	s := newTestSession(t, api)
	defer s.Close()

	_, err := s.Search(context.Background(), "luffy", model.SearchText)
	require.NoError(t, err)
	require.NotEmpty(t, s.Results())

	_, err = s.Search(context.Background(), "l", model.SearchCharacter)
	require.NoError(t, err)
	assert.Empty(t, s.Results())
	assert.Equal(t, Stats{}, s.Stats())
	assert.Equal(t, 1, api.searchCount())

	_, err = s.Search(context.Background(), "x", model.SearchTag)
	require.NoError(t, err)
	assert.Equal(t, 2, api.searchCount())
}

func TestSearchRejectsUnknownType(t *testing.T) {
	s := newTestSession(t, seriesAPI(1, 1))
	defer s.Close()

	_, err := s.Search(context.Background(), "luffy", model.SearchType("poll"))
	assert.Error(t, err)
}

func TestSearchFetchesFirstBatch(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	api := seriesAPI(1, 7)
	s := newTestSession(t, api)
	defer s.Close()

	out, err := s.Search(context.Background(), "luffy", model.SearchText)
	require.NoError(t, err)
	assert.Equal(t, 7, out.Stats.VolumeCount)
	assert.Equal(t, 7, out.Stats.TotalMatches)
	assert.Equal(t, []int{1, 2, 3}, volumesOf(out.Groups))
	assert.ElementsMatch(t, []int{1, 2, 3}, api.fetchedVolumes())
	assert.True(t, s.HasMore())
}

func TestSearchIsolatesBatchFailures(t *testing.T) {
	api := seriesAPI(1, 3)
	api.fail(2, errors.New("connection refused"))
	s := newTestSession(t, api)
	defer s.Close()

	out, err := s.Search(context.Background(), "luffy", model.SearchText)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, volumesOf(out.Groups))
	assert.Equal(t, []int{2}, out.Failed)
	assert.Equal(t, 3, out.Stats.VolumeCount)

	api.fail(2, nil)
	require.NoError(t, s.LoadMore(context.Background()))
	assert.Equal(t, []int{1, 2, 3}, volumesOf(s.Groups()))
}

func TestSearchFailureKeepsState(t *testing.T) {
	api := seriesAPI(1, 2)
	s := newTestSession(t, api)
	defer s.Close()

	_, err := s.Search(context.Background(), "luffy", model.SearchText)
	require.NoError(t, err)

	boom := &APIError{Status: 500, Code: 1300001, Message: "storage unavailable"}
	api.searchErr = boom
	_, err = s.Search(context.Background(), "sanji", model.SearchText)
	require.ErrorIs(t, err, boom)

	term, _ := s.Term()
	assert.Equal(t, "luffy", term)
	assert.Len(t, s.Groups(), 2)
}

func TestLoadMoreFetchesNextBatchInOrder(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	api := seriesAPI(1, 8)
	api.results[key("luffy", model.SearchText)] = []model.MatchResult{
		luffyResults(8, 8)[0],
		luffyResults(2, 2)[0],
		luffyResults(6, 6)[0],
		luffyResults(1, 1)[0],
		luffyResults(5, 5)[0],
		luffyResults(3, 3)[0],
		luffyResults(7, 7)[0],
	}
	s := newTestSession(t, api)
	defer s.Close()

	_, err := s.Search(context.Background(), "luffy", model.SearchText)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{8, 2, 6}, api.fetchedVolumes())

	require.NoError(t, s.LoadMore(context.Background()))
	assert.ElementsMatch(t, []int{8, 2, 6, 1, 5, 3}, api.fetchedVolumes())
	assert.Equal(t, []int{8, 2, 6, 1, 5, 3}, volumesOf(s.Groups()))

	require.NoError(t, s.LoadMore(context.Background()))
	assert.Len(t, api.fetchedVolumes(), 7)
	assert.False(t, s.HasMore())

	require.NoError(t, s.LoadMore(context.Background()))
	assert.Len(t, api.fetchedVolumes(), 7)
}

func TestLoadMoreSkipsCachedVolumes(t *testing.T) {
	api := seriesAPI(1, 6)
	s := newTestSession(t, api)
	defer s.Close()

	for _, v := range []int{4, 5} {
		_, err := s.Volume(context.Background(), v)
		require.NoError(t, err)
	}
	_, err := s.Search(context.Background(), "luffy", model.SearchText)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, volumesOf(s.Groups()))

	require.NoError(t, s.LoadMore(context.Background()))
	fetched := api.fetchedVolumes()
	require.Len(t, fetched, 6)
	assert.Equal(t, []int{4, 5}, fetched[:2])
	assert.ElementsMatch(t, []int{1, 2, 3}, fetched[2:5])
	assert.Equal(t, 6, fetched[5])
}

func TestLoadMoreSingleFlight(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	api := seriesAPI(1, 6)
	s := newTestSession(t, api)
	defer s.Close()

	_, err := s.Search(context.Background(), "luffy", model.SearchText)
	require.NoError(t, err)

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	api.mu.Lock()
	api.onFetch = func(int) {
		once.Do(func() { close(started) })
		<-release
	}
	api.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- s.LoadMore(context.Background()) }()

	<-started
	assert.True(t, s.Loading())
	require.NoError(t, s.LoadMore(context.Background()))
	close(release)
	require.NoError(t, <-done)

	assert.False(t, s.Loading())
	assert.Len(t, api.fetchedVolumes(), 6)
	assert.False(t, s.HasMore())
}

func TestLoadMoreReportsFailures(t *testing.T) {
	api := seriesAPI(1, 5)
	s := newTestSession(t, api)
	defer s.Close()

	_, err := s.Search(context.Background(), "luffy", model.SearchText)
	require.NoError(t, err)

	boom := errors.New("read: connection reset by peer")
	api.fail(5, boom)
	err = s.LoadMore(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "volume 5")
	assert.True(t, s.Cache().Loaded(4))
	assert.True(t, s.HasMore())
}

func TestStaleSearchIsDiscarded(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	api := seriesAPI(1, 2)
	api.results[key("sanji", model.SearchText)] = []model.MatchResult{{Volume: 2, Matches: []model.Match{
		{Chapter: 21, Page: 22, SectionID: "2-Q2", MatchedIn: model.MatchedInAnswer},
	}}}

	inFlight := make(chan struct{})
	release := make(chan struct{})
	api.onSearch = func(term string) {
		if term == "luffy" {
			close(inFlight)
			<-release
		}
	}
	s := newTestSession(t, api)
	defer s.Close()

	type result struct {
		out *Outcome
		err error
	}
	first := make(chan result, 1)
	go func() {
		out, err := s.Search(context.Background(), "luffy", model.SearchText)
		first <- result{out, err}
	}()

	<-inFlight
	out, err := s.Search(context.Background(), "sanji", model.SearchText)
	require.NoError(t, err)
	assert.False(t, out.Stale)

	close(release)
	stale := <-first
	require.NoError(t, stale.err)
	assert.True(t, stale.out.Stale)
	assert.Empty(t, stale.out.Groups)

	term, _ := s.Term()
	assert.Equal(t, "sanji", term)
	assert.Equal(t, 1, s.Stats().TotalMatches)
	require.Len(t, s.Groups(), 1)
	assert.Equal(t, "2-Q2", s.Groups()[0].Chapters[0].Sections[0].Section.ID)
}

func TestClearBeforeCommitWins(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	api := seriesAPI(1, 2)
	s := newTestSession(t, api)
	defer s.Close()

	var cleared *Outcome
	s.beforeCommit = func() {
		s.beforeCommit = nil
		out, err := s.Search(context.Background(), "", model.SearchText)
		require.NoError(t, err)
		cleared = out
	}

	out, err := s.Search(context.Background(), "luffy", model.SearchText)
	require.NoError(t, err)
	assert.True(t, out.Stale)
	assert.Empty(t, out.Groups)

	require.NotNil(t, cleared)
	assert.False(t, cleared.Stale)

	term, _ := s.Term()
	assert.Empty(t, term)
	assert.Empty(t, s.Results())
	assert.Zero(t, s.Stats().TotalMatches)
	assert.False(t, s.HasMore())
}

func TestNewerSearchBeforeCommitWins(t *testing.T) {
	api := seriesAPI(1, 2)
	api.results[key("sanji", model.SearchText)] = []model.MatchResult{{Volume: 2, Matches: []model.Match{
		{Chapter: 21, Page: 22, SectionID: "2-Q2", MatchedIn: model.MatchedInAnswer},
	}}}
	s := newTestSession(t, api)
	defer s.Close()

	s.beforeCommit = func() {
		s.beforeCommit = nil
		_, err := s.Search(context.Background(), "sanji", model.SearchText)
		require.NoError(t, err)
	}

	out, err := s.Search(context.Background(), "luffy", model.SearchText)
	require.NoError(t, err)
	assert.True(t, out.Stale)

	term, _ := s.Term()
	assert.Equal(t, "sanji", term)
	assert.Equal(t, 1, s.Stats().TotalMatches)
}

func TestNewSearchKeepsCache(t *testing.T) {
	api := seriesAPI(1, 3)
	api.results[key("cook", model.SearchText)] = []model.MatchResult{{Volume: 1, Matches: []model.Match{
		{Chapter: 11, Page: 21, SectionID: "1-Q2", MatchedIn: model.MatchedInQuestion},
	}}}
	s := newTestSession(t, api)
	defer s.Close()

	_, err := s.Search(context.Background(), "luffy", model.SearchText)
	require.NoError(t, err)
	_, err = s.Search(context.Background(), "cook", model.SearchText)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, s.Cache().LoadedVolumes())
	assert.Len(t, api.fetchedVolumes(), 3)
	assert.Equal(t, map[int]int{1: 1}, s.Stats().Volumes)
}

func TestVolumeFilter(t *testing.T) {
	s := newTestSession(t, seriesAPI(1, 3))
	defer s.Close()

	_, err := s.Search(context.Background(), "luffy", model.SearchText)
	require.NoError(t, err)

	s.SetVolumeFilter(2)
	assert.Equal(t, []int{2}, volumesOf(s.Groups()))
	assert.Equal(t, 3, s.Stats().VolumeCount)

	s.ClearVolumeFilter()
	assert.Equal(t, []int{1, 2, 3}, volumesOf(s.Groups()))
}

func TestRecentSearches(t *testing.T) {
	s := newTestSession(t, seriesAPI(1, 1))
	defer s.Close()

	for _, term := range []string{"luffy", "zoro", "nami", "", "Luffy", "usopp", "robin", "chopper"} {
		_, err := s.Search(context.Background(), term, model.SearchCharacter)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"chopper", "robin", "usopp", "Luffy", "nami"}, s.Recent())
}

func TestCurrentVolume(t *testing.T) {
	vols, _ := sbstest.Series(1, 2)
	api := newFakeAPI(vols...)
	s := newTestSession(t, api, WithCurrentVolume(2))
	defer s.Close()
	assert.Equal(t, 2, s.CurrentVolume())

	v, err := s.Volume(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, v.Volume)

	s.SetCurrentVolume(1)
	assert.Empty(t, s.Groups())
	_, err = s.Volume(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, s.Groups(), 1)
	assert.Equal(t, 1, s.Groups()[0].Volume)
}

func TestSessionSharedPoolNotReleased(t *testing.T) {
	p := newTestPool(t)
	defer p.ReleaseTimeout(time.Second)

	s := newTestSession(t, seriesAPI(1, 1), WithPool(p))
	require.NoError(t, s.Close())
	require.NoError(t, p.Submit(func() {}))
}
