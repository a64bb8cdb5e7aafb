package model

import (
	"fmt"
	"strings"
)

// SearchType selects the search predicate.
type SearchType string

const (
	SearchText      SearchType = "text"
	SearchCharacter SearchType = "character"
	SearchTag       SearchType = "tag"
)

// ParseSearchType parses a search type name.
func ParseSearchType(s string) (SearchType, error) {
	switch t := SearchType(strings.ToLower(strings.TrimSpace(s))); t {
	case SearchText, SearchCharacter, SearchTag:
		return t, nil
	default:
		return "", fmt.Errorf("unknown search type %q", s)
	}
}

// MatchLocation identifies which field a match was found in.
type MatchLocation string

const (
	MatchedInQuestion   MatchLocation = "question"
	MatchedInAnswer     MatchLocation = "answer"
	MatchedInCharacters MatchLocation = "characters"
	MatchedInTags       MatchLocation = "tags"
)

// Provenance distinguishes tagged character appearances from text mentions.
type Provenance string

const (
	ProvenanceTagged  Provenance = "tagged"
	ProvenanceMention Provenance = "mention"
)

// Match locates one section hit without carrying its content.
type Match struct {
	Chapter    int           `json:"chapter"`
	Page       int           `json:"page"`
	SectionID  string        `json:"sectionId"`
	MatchedIn  MatchLocation `json:"matchedIn"`
	Provenance Provenance    `json:"provenance,omitempty"`
}

// MatchResult holds every match of one volume.
type MatchResult struct {
	Volume  int     `json:"volume"`
	Matches []Match `json:"matches"`
}
