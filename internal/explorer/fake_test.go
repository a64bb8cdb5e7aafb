package explorer

import (
	"context"
	"fmt"
	"sync"

	"github.com/kart-io/sbs-x/internal/model"
	"github.com/kart-io/sbs-x/internal/pkg/sbstest"
)

// fakeAPI serves volumes and canned search results from memory.
type fakeAPI struct {
	mu        sync.Mutex
	volumes   map[int]*model.Volume
	results   map[string][]model.MatchResult
	failing   map[int]error
	searchErr error
	fetched   []int
	searches  []string

	// onFetch and onSearch run before the call returns, outside the lock.
	onFetch  func(volume int)
	onSearch func(term string)
}

func newFakeAPI(vols ...model.Volume) *fakeAPI {
	f := &fakeAPI{
		volumes: make(map[int]*model.Volume),
		results: make(map[string][]model.MatchResult),
		failing: make(map[int]error),
	}
	for i := range vols {
		f.volumes[vols[i].Volume] = &vols[i]
	}
	return f
}

// seriesAPI serves sbstest.Series(first, last) and answers "luffy" with the
// Q1 section of every volume.
func seriesAPI(first, last int) *fakeAPI {
	vols, _ := sbstest.Series(first, last)
	f := newFakeAPI(vols...)
	f.results[key("luffy", model.SearchText)] = luffyResults(first, last)
	return f
}

func luffyResults(first, last int) []model.MatchResult {
	var out []model.MatchResult
	for n := first; n <= last; n++ {
		out = append(out, model.MatchResult{Volume: n, Matches: []model.Match{{
			Chapter:   n * 10,
			Page:      n,
			SectionID: fmt.Sprintf("%d-Q1", n),
			MatchedIn: model.MatchedInQuestion,
		}}})
	}
	return out
}

func key(term string, typ model.SearchType) string {
	return string(typ) + ":" + term
}

func (f *fakeAPI) Volume(ctx context.Context, volume int) (*model.Volume, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, volume)
	hook := f.onFetch
	f.mu.Unlock()

	if hook != nil {
		hook(volume)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failing[volume]; err != nil {
		return nil, err
	}
	v, ok := f.volumes[volume]
	if !ok {
		return nil, &APIError{Status: 404, Message: "volume not found"}
	}
	return v, nil
}

func (f *fakeAPI) Search(ctx context.Context, term string, typ model.SearchType) ([]model.MatchResult, error) {
	f.mu.Lock()
	f.searches = append(f.searches, term)
	hook := f.onSearch
	f.mu.Unlock()

	if hook != nil {
		hook(term)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if r, ok := f.results[key(term, typ)]; ok {
		return r, nil
	}
	return []model.MatchResult{}, nil
}

func (f *fakeAPI) fetchedVolumes() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.fetched...)
}

func (f *fakeAPI) searchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.searches)
}

func (f *fakeAPI) fail(volume int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failing, volume)
		return
	}
	f.failing[volume] = err
}
