package explorer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/sbs-x/internal/model"
	"github.com/kart-io/sbs-x/internal/pkg/sbstest"
)

func TestSnapshotHydratesSections(t *testing.T) {
	vol := sbstest.Volume107()
	c := NewVolumeCache(newFakeAPI())
	c.Put(&vol)
	a := NewAssembler(c, nil)

	results := []model.MatchResult{{Volume: 107, Matches: []model.Match{
		{Chapter: 5, Page: 12, SectionID: "107-Q3", MatchedIn: model.MatchedInQuestion},
	}}}

	want := []Group{{Volume: 107, Chapters: []ChapterGroup{{
		Chapter: 5,
		Page:    12,
		Sections: []SectionHit{{
			Section:   vol.Chapters[0].Sections[0],
			MatchedIn: model.MatchedInQuestion,
		}},
	}}}}
	got := a.Snapshot(results)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Snapshot() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "107-Q3", got[0].Chapters[0].Sections[0].Section.ID)
	assert.Equal(t, 1, got[0].Hits())
}

func TestSnapshotDropsDrift(t *testing.T) {
	vols, _ := sbstest.Series(1, 2)
	c := NewVolumeCache(newFakeAPI())
	c.Put(&vols[0])
	c.Put(&vols[1])
	a := NewAssembler(c, nil)

	got := a.Snapshot([]model.MatchResult{
		{Volume: 1, Matches: []model.Match{
			{Chapter: 10, SectionID: "1-Q9"},
			{Chapter: 99, SectionID: "1-Q1"},
			{Chapter: 10, SectionID: "1-Q1", MatchedIn: model.MatchedInQuestion},
		}},
		{Volume: 2, Matches: []model.Match{{Chapter: 20, SectionID: "gone"}}},
	})

	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Volume)
	require.Len(t, got[0].Chapters, 1)
	assert.Equal(t, "1-Q1", got[0].Chapters[0].Sections[0].Section.ID)
}

func TestSnapshotOrdering(t *testing.T) {
	vols, _ := sbstest.Series(3, 4)
	c := NewVolumeCache(newFakeAPI())
	c.Put(&vols[0])
	c.Put(&vols[1])
	a := NewAssembler(c, nil)

	got := a.Snapshot([]model.MatchResult{
		{Volume: 4, Matches: []model.Match{{Chapter: 41, SectionID: "4-Q2"}}},
		{Volume: 3, Matches: []model.Match{
			{Chapter: 31, SectionID: "3-Q2", MatchedIn: model.MatchedInAnswer},
			{Chapter: 30, SectionID: "3-Q1", MatchedIn: model.MatchedInCharacters, Provenance: model.ProvenanceTagged},
			{Chapter: 30, SectionID: "3-Q1", MatchedIn: model.MatchedInQuestion, Provenance: model.ProvenanceMention},
			{Chapter: 30, SectionID: "3-M1"},
		}},
	})

	require.Len(t, got, 2)
	assert.Equal(t, 4, got[0].Volume)
	assert.Equal(t, 3, got[1].Volume)

	chapters := got[1].Chapters
	require.Len(t, chapters, 2)
	assert.Equal(t, 31, chapters[0].Chapter)
	assert.Equal(t, 23, chapters[0].Page)
	assert.Equal(t, 30, chapters[1].Chapter)

	var ids []string
	var provs []model.Provenance
	for _, s := range chapters[1].Sections {
		ids = append(ids, s.Section.ID)
		provs = append(provs, s.Provenance)
	}
	assert.Equal(t, []string{"3-Q1", "3-Q1", "3-M1"}, ids)
	assert.Equal(t, []model.Provenance{model.ProvenanceTagged, model.ProvenanceMention, ""}, provs)
}

func TestSnapshotIdempotentUnderSupersetCache(t *testing.T) {
	vols, _ := sbstest.Series(1, 6)
	c := NewVolumeCache(newFakeAPI())
	c.Put(&vols[0])
	c.Put(&vols[2])
	a := NewAssembler(c, nil)

	results := luffyResults(1, 3)
	first := a.Snapshot(results)
	second := a.Snapshot(results)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("repeated Snapshot() differs (-first +second):\n%s", diff)
	}

	for _, v := range []int{4, 5, 6} {
		c.Put(&vols[v-1])
	}
	if diff := cmp.Diff(first, a.Snapshot(results)); diff != "" {
		t.Errorf("Snapshot() changed after unrelated cache entries (-before +after):\n%s", diff)
	}
}

func TestSnapshotSkipsUncachedVolumes(t *testing.T) {
	vols, _ := sbstest.Series(1, 2)
	c := NewVolumeCache(newFakeAPI())
	c.Put(&vols[1])

	got := NewAssembler(c, nil).Snapshot(luffyResults(1, 2))
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Volume)
}

func TestAssembleFetchesMissingVolumes(t *testing.T) {
	api := seriesAPI(1, 3)
	boom := errors.New("502 bad gateway")
	api.fail(2, boom)
	c := NewVolumeCache(api)
	p := newTestPool(t)
	defer p.ReleaseTimeout(time.Second)

	vols, _ := sbstest.Series(1, 1)
	c.Put(&vols[0])

	groups, err := NewAssembler(c, p).Assemble(context.Background(), luffyResults(1, 3))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "volume 2")
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, []int{2}, fe.Volumes())

	require.Len(t, groups, 2)
	assert.Equal(t, 1, groups[0].Volume)
	assert.Equal(t, 3, groups[1].Volume)
	assert.ElementsMatch(t, []int{2, 3}, api.fetchedVolumes())
}

func TestVolumeGroup(t *testing.T) {
	vols, _ := sbstest.Series(5, 5)
	g := VolumeGroup(&vols[0])

	assert.Equal(t, 5, g.Volume)
	require.Len(t, g.Chapters, 2)
	assert.Equal(t, 3, g.Hits())
	assert.Equal(t, "5-M1", g.Chapters[0].Sections[0].Section.ID)
	assert.Empty(t, g.Chapters[0].Sections[0].MatchedIn)
}
