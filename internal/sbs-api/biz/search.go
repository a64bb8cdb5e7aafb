// Package biz implements the SBS query service on top of the document store.
package biz

import (
	"context"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/kart-io/logger"

	"github.com/kart-io/sbs-x/internal/model"
	"github.com/kart-io/sbs-x/internal/pkg/textmatch"
	"github.com/kart-io/sbs-x/internal/sbs-api/store"
	"github.com/kart-io/sbs-x/pkg/validator"
)

// NormalizeTerm trims term and checks its length.
func NormalizeTerm(term string) (string, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return "", ErrEmptyTerm
	}
	if utf8.RuneCountInString(term) > validator.MaxTermLength {
		return "", ErrTermTooLong
	}
	return term, nil
}

// SearchService answers text, character and tag searches.
type SearchService struct {
	store store.Factory
	cache *SearchCache
}

// NewSearchService creates a SearchService. cache may be nil.
func NewSearchService(f store.Factory, cache *SearchCache) *SearchService {
	return &SearchService{store: f, cache: cache}
}

// Search runs a search and returns the matches grouped by volume, ascending.
// The result is never nil.
func (s *SearchService) Search(ctx context.Context, term string, typ model.SearchType) ([]model.MatchResult, error) {
	term, err := NormalizeTerm(term)
	if err != nil {
		return nil, err
	}
	if _, err := model.ParseSearchType(string(typ)); err != nil {
		return nil, ErrInvalidSearchType
	}

	if cached, ok := s.cache.Get(ctx, typ, term); ok {
		return cached, nil
	}

	var results []model.MatchResult
	switch typ {
	case model.SearchText:
		results, err = s.searchText(ctx, textmatch.New(term))
	case model.SearchCharacter:
		results, err = s.searchCharacter(ctx, textmatch.New(term))
	case model.SearchTag:
		results, err = s.searchTag(ctx, textmatch.New(term))
	default:
		return nil, ErrInvalidSearchType
	}
	if err != nil {
		return nil, ErrStoreUnavailable.WithCause(err)
	}

	logger.Debugw("search completed", "type", typ, "term", term, "volumes", len(results))
	s.cache.Set(ctx, typ, term, results)
	return results, nil
}

func (s *SearchService) searchText(ctx context.Context, m textmatch.Matcher) ([]model.MatchResult, error) {
	vols, err := s.store.Volumes().SearchText(ctx, m.Term())
	if err != nil {
		return nil, err
	}

	byVol := make(map[int][]model.Match, len(vols))
	for _, v := range vols {
		byVol[v.Volume] = append(byVol[v.Volume], textMatches(v, m, "")...)
	}
	return group(byVol), nil
}

// searchCharacter joins tagged appearances with free text mentions. Both are
// kept even when they point at the same section.
func (s *SearchService) searchCharacter(ctx context.Context, m textmatch.Matcher) ([]model.MatchResult, error) {
	tagged, err := s.store.Tags().SearchByField(ctx, model.FieldCharacters, m.Term())
	if err != nil {
		return nil, err
	}
	mentioned, err := s.store.Volumes().SearchText(ctx, m.Term())
	if err != nil {
		return nil, err
	}

	byVol := make(map[int][]model.Match)
	for _, t := range tagged {
		byVol[t.Volume] = append(byVol[t.Volume], tagMatches(t, model.FieldCharacters, m)...)
	}
	for _, v := range mentioned {
		byVol[v.Volume] = append(byVol[v.Volume], textMatches(v, m, model.ProvenanceMention)...)
	}
	return group(byVol), nil
}

func (s *SearchService) searchTag(ctx context.Context, m textmatch.Matcher) ([]model.MatchResult, error) {
	tagged, err := s.store.Tags().SearchByField(ctx, model.FieldTags, m.Term())
	if err != nil {
		return nil, err
	}

	byVol := make(map[int][]model.Match, len(tagged))
	for _, t := range tagged {
		byVol[t.Volume] = append(byVol[t.Volume], tagMatches(t, model.FieldTags, m)...)
	}
	return group(byVol), nil
}

func textMatches(v *model.Volume, m textmatch.Matcher, prov model.Provenance) []model.Match {
	var out []model.Match
	for ci := range v.Chapters {
		ch := &v.Chapters[ci]
		for si := range ch.Sections {
			qa, ok := ch.Sections[si].QA()
			if !ok {
				continue
			}
			loc, hit := qa.Locate(m)
			if !hit {
				continue
			}
			out = append(out, model.Match{
				Chapter:    ch.Chapter,
				Page:       ch.Page,
				SectionID:  qa.ID,
				MatchedIn:  loc,
				Provenance: prov,
			})
		}
	}
	return out
}

func tagMatches(t *model.VolumeTags, field model.TagField, m textmatch.Matcher) []model.Match {
	var (
		out  []model.Match
		loc  = model.MatchedInTags
		prov model.Provenance
	)
	if field == model.FieldCharacters {
		loc, prov = model.MatchedInCharacters, model.ProvenanceTagged
	}

	for ci := range t.Chapters {
		ch := &t.Chapters[ci]
		for si := range ch.Sections {
			sec := &ch.Sections[si]
			if !m.Any(sec.Values(field)) {
				continue
			}
			out = append(out, model.Match{
				Chapter:    ch.Chapter,
				Page:       ch.Page,
				SectionID:  sec.ID,
				MatchedIn:  loc,
				Provenance: prov,
			})
		}
	}
	return out
}

// group orders volumes ascending and drops volumes without matches.
func group(byVol map[int][]model.Match) []model.MatchResult {
	vols := make([]int, 0, len(byVol))
	for v, matches := range byVol {
		if len(matches) > 0 {
			vols = append(vols, v)
		}
	}
	slices.Sort(vols)

	results := make([]model.MatchResult, 0, len(vols))
	for _, v := range vols {
		results = append(results, model.MatchResult{Volume: v, Matches: byVol[v]})
	}
	return results
}
