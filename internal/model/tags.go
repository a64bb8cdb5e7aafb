package model

import "github.com/kart-io/sbs-x/internal/pkg/textmatch"

// VolumeTags annotates a volume's sections with tags and characters.
type VolumeTags struct {
	Volume   int           `json:"volume" bson:"volume"`
	Summary  string        `json:"summary,omitempty" bson:"summary,omitempty"`
	Chapters []ChapterTags `json:"chapters" bson:"chapters"`
}

// ChapterTags mirrors Chapter.
type ChapterTags struct {
	Chapter  int           `json:"chapter" bson:"chapter"`
	Page     int           `json:"page" bson:"page"`
	Sections []SectionTags `json:"sections" bson:"sections"`
}

// SectionTags carries the annotations of one section.
type SectionTags struct {
	Type       string   `json:"type" bson:"type"`
	ID         string   `json:"id" bson:"id"`
	Tags       []string `json:"tags" bson:"tags"`
	Characters []string `json:"characters" bson:"characters"`
	Summary    string   `json:"summary,omitempty" bson:"summary,omitempty"`
}

// TagField names an annotation list of SectionTags.
type TagField string

const (
	FieldTags       TagField = "tags"
	FieldCharacters TagField = "characters"
)

// Valid reports whether f names a known annotation list.
func (f TagField) Valid() bool {
	return f == FieldTags || f == FieldCharacters
}

// Path returns the nested document path for f.
func (f TagField) Path() string {
	return "chapters.sections." + string(f)
}

// Values returns the annotation list selected by f.
func (s *SectionTags) Values(f TagField) []string {
	switch f {
	case FieldTags:
		return s.Tags
	case FieldCharacters:
		return s.Characters
	default:
		return nil
	}
}

// Matches reports whether any section of t has f containing m.
func (t *VolumeTags) Matches(f TagField, m textmatch.Matcher) bool {
	for ci := range t.Chapters {
		for si := range t.Chapters[ci].Sections {
			if m.Any(t.Chapters[ci].Sections[si].Values(f)) {
				return true
			}
		}
	}
	return false
}
