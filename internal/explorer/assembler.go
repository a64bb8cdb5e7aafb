package explorer

import (
	"context"
	"fmt"
	"maps"
	"slices"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/kart-io/sbs-x/internal/model"
	"github.com/kart-io/sbs-x/pkg/infra/pool"
)

// SectionHit is a hydrated section with the location it matched in.
type SectionHit struct {
	Section    model.Section       `json:"section"`
	MatchedIn  model.MatchLocation `json:"matchedIn,omitempty"`
	Provenance model.Provenance    `json:"provenance,omitempty"`
}

// ChapterGroup is one chapter's matched sections, in match order.
type ChapterGroup struct {
	Chapter  int          `json:"chapter"`
	Page     int          `json:"page"`
	Sections []SectionHit `json:"sections"`
}

// Group is the renderable result of one volume.
type Group struct {
	Volume   int            `json:"volume"`
	Chapters []ChapterGroup `json:"chapters"`
}

// Hits returns the number of sections in g.
func (g Group) Hits() int {
	n := 0
	for _, ch := range g.Chapters {
		n += len(ch.Sections)
	}
	return n
}

// Assembler joins sparse match lists to the full volumes in a VolumeCache.
type Assembler struct {
	cache *VolumeCache
	pool  *pool.Pool
}

// NewAssembler creates an Assembler. Missing volumes are fetched on p.
func NewAssembler(cache *VolumeCache, p *pool.Pool) *Assembler {
	return &Assembler{cache: cache, pool: p}
}

// FetchError lists the volumes whose fetch failed during Assemble.
type FetchError struct {
	Failed map[int]error
}

// Volumes returns the failed volume numbers, ascending.
func (e *FetchError) Volumes() []int {
	return slices.Sorted(maps.Keys(e.Failed))
}

func (e *FetchError) Error() string {
	return utilerrors.NewAggregate(e.Unwrap()).Error()
}

func (e *FetchError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, v := range e.Volumes() {
		errs = append(errs, fmt.Errorf("volume %d: %w", v, e.Failed[v]))
	}
	return errs
}

// Assemble fetches every referenced volume that is not cached yet, then
// assembles. A volume whose fetch fails has no group and is listed in the
// returned *FetchError.
func (a *Assembler) Assemble(ctx context.Context, results []model.MatchResult) ([]Group, error) {
	var missing []int
	for _, v := range referencedVolumes(results) {
		if !a.cache.Loaded(v) {
			missing = append(missing, v)
		}
	}
	if len(missing) == 0 {
		return a.Snapshot(results), nil
	}

	failed := a.cache.EnsureAll(ctx, a.pool, missing)
	groups := a.Snapshot(results)
	if len(failed) > 0 {
		return groups, &FetchError{Failed: failed}
	}
	return groups, nil
}

// Snapshot assembles results against the cache without fetching. Volumes
// that are not cached are skipped, and matches pointing at sections that no
// longer exist are dropped. The output only depends on results and the
// cached content of the volumes they reference.
func (a *Assembler) Snapshot(results []model.MatchResult) []Group {
	var (
		groups []Group
		index  = make(map[int]int)
	)
	for _, r := range results {
		vol, ok := a.cache.Get(r.Volume)
		if !ok {
			continue
		}

		gi, seen := index[r.Volume]
		if !seen {
			groups = append(groups, Group{Volume: r.Volume})
			gi = len(groups) - 1
			index[r.Volume] = gi
		}
		g := &groups[gi]

		for _, m := range r.Matches {
			ch, sec, found := vol.FindSection(m.Chapter, m.SectionID)
			if !found {
				continue
			}
			ci := slices.IndexFunc(g.Chapters, func(c ChapterGroup) bool { return c.Chapter == ch.Chapter })
			if ci < 0 {
				g.Chapters = append(g.Chapters, ChapterGroup{Chapter: ch.Chapter, Page: ch.Page})
				ci = len(g.Chapters) - 1
			}
			g.Chapters[ci].Sections = append(g.Chapters[ci].Sections, SectionHit{
				Section:    *sec,
				MatchedIn:  m.MatchedIn,
				Provenance: m.Provenance,
			})
		}
	}

	return slices.DeleteFunc(groups, func(g Group) bool { return len(g.Chapters) == 0 })
}

// VolumeGroup renders a whole cached volume unfiltered.
func VolumeGroup(v *model.Volume) Group {
	g := Group{Volume: v.Volume, Chapters: make([]ChapterGroup, 0, len(v.Chapters))}
	for _, ch := range v.Chapters {
		cg := ChapterGroup{Chapter: ch.Chapter, Page: ch.Page, Sections: make([]SectionHit, 0, len(ch.Sections))}
		for _, sec := range ch.Sections {
			cg.Sections = append(cg.Sections, SectionHit{Section: sec})
		}
		g.Chapters = append(g.Chapters, cg)
	}
	return g
}

// referencedVolumes returns the distinct volumes of results in list order.
func referencedVolumes(results []model.MatchResult) []int {
	seen := make(map[int]struct{}, len(results))
	out := make([]int, 0, len(results))
	for _, r := range results {
		if _, ok := seen[r.Volume]; ok {
			continue
		}
		seen[r.Volume] = struct{}{}
		out = append(out, r.Volume)
	}
	return out
}
