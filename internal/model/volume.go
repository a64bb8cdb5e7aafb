// Package model defines the SBS documents shared by the API server and its clients.
package model

import (
	"strconv"
	"strings"

	"github.com/kart-io/sbs-x/internal/pkg/textmatch"
)

// Volume is one published volume with its question corner chapters.
type Volume struct {
	Volume   int       `json:"volume" bson:"volume"`
	Summary  string    `json:"summary,omitempty" bson:"summary,omitempty"`
	Chapters []Chapter `json:"chapters" bson:"chapters"`
}

// VolumeSummary is the listing projection of a Volume.
type VolumeSummary struct {
	Volume  int    `json:"volume" bson:"volume"`
	Summary string `json:"summary,omitempty" bson:"summary,omitempty"`
}

// Chapter groups the sections printed in one chapter.
type Chapter struct {
	Chapter  int       `json:"chapter" bson:"chapter"`
	Page     int       `json:"page" bson:"page"`
	Sections []Section `json:"sections" bson:"sections"`
}

// Section type tags as stored.
const (
	SectionTypeQA      = "q&a"
	SectionTypeMessage = "message"
	SectionTypeImage   = "image"
)

// SectionKind is the resolved variant of a Section.
type SectionKind int

const (
	KindUnknown SectionKind = iota
	KindQA
	KindMessage
	KindImage
)

func (k SectionKind) String() string {
	switch k {
	case KindQA:
		return SectionTypeQA
	case KindMessage:
		return SectionTypeMessage
	case KindImage:
		return SectionTypeImage
	default:
		return "unknown"
	}
}

// Section is stored flat; Kind selects which fields are meaningful.
type Section struct {
	Type     string    `json:"type" bson:"type"`
	ID       string    `json:"id" bson:"id"`
	Question *Question `json:"question,omitempty" bson:"question,omitempty"`
	Answer   *Answer   `json:"answer,omitempty" bson:"answer,omitempty"`
	Images   []Image   `json:"images,omitempty" bson:"images,omitempty"`
	Message  string    `json:"message,omitempty" bson:"message,omitempty"`
	Text     string    `json:"text,omitempty" bson:"text,omitempty"`
}

// Kind resolves the variant from the type tag.
func (s *Section) Kind() SectionKind {
	switch s.Type {
	case SectionTypeQA:
		return KindQA
	case SectionTypeMessage:
		return KindMessage
	case SectionTypeImage:
		return KindImage
	default:
		return KindUnknown
	}
}

// QA returns the question/answer view of a q&a section.
func (s *Section) QA() (*QA, bool) {
	if s.Kind() != KindQA {
		return nil, false
	}
	qa := &QA{ID: s.ID, Images: s.Images}
	if s.Question != nil {
		qa.Question = *s.Question
	}
	if s.Answer != nil {
		qa.Answer = *s.Answer
	}
	return qa, true
}

// Number returns the numeric suffix of the id ("107-Q3" -> 3).
func (s *Section) Number() (int, bool) {
	id := s.ID
	i := len(id)
	for i > 0 && id[i-1] >= '0' && id[i-1] <= '9' {
		i--
	}
	if i == len(id) {
		return 0, false
	}
	n, err := strconv.Atoi(id[i:])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Question is the fan question of a q&a section.
type Question struct {
	Text     string `json:"text" bson:"text"`
	Author   string `json:"author" bson:"author"`
	Location string `json:"location,omitempty" bson:"location,omitempty"`
}

// Answer is the author's reply, split into segments.
type Answer struct {
	Author   string    `json:"author" bson:"author"`
	Segments []Segment `json:"segments" bson:"segments"`
}

// Segment types.
const (
	SegmentText  = "text"
	SegmentImage = "image"
)

// Segment is one part of an answer.
type Segment struct {
	Type    string `json:"type" bson:"type"`
	Author  string `json:"author,omitempty" bson:"author,omitempty"`
	Text    string `json:"text,omitempty" bson:"text,omitempty"`
	URL     string `json:"url,omitempty" bson:"url,omitempty"`
	Caption string `json:"caption,omitempty" bson:"caption,omitempty"`
}

// AuthorOr returns the segment author, falling back to the answer author.
func (s Segment) AuthorOr(answerAuthor string) string {
	if s.Author != "" {
		return s.Author
	}
	return answerAuthor
}

// Image types.
const (
	ImageQuestion     = "question"
	ImageAnswer       = "answer"
	ImageIllustration = "illustration"
)

// Image is an illustration attached to a section.
type Image struct {
	Type    string `json:"type,omitempty" bson:"type,omitempty"`
	URL     string `json:"url" bson:"url"`
	Caption string `json:"caption,omitempty" bson:"caption,omitempty"`
	Author  string `json:"author,omitempty" bson:"author,omitempty"`
}

// QA is the typed view of a q&a section.
type QA struct {
	ID       string
	Question Question
	Answer   Answer
	Images   []Image
}

// Locate reports where m first matches: the question text, then text
// segments of the answer in order. Image segments are never searched.
func (qa *QA) Locate(m textmatch.Matcher) (MatchLocation, bool) {
	if m.In(qa.Question.Text) {
		return MatchedInQuestion, true
	}
	for _, seg := range qa.Answer.Segments {
		if seg.Type == SegmentText && m.In(seg.Text) {
			return MatchedInAnswer, true
		}
	}
	return "", false
}

// FindSection returns the section with id inside the given chapter number.
func (v *Volume) FindSection(chapter int, id string) (*Chapter, *Section, bool) {
	for ci := range v.Chapters {
		ch := &v.Chapters[ci]
		if ch.Chapter != chapter {
			continue
		}
		for si := range ch.Sections {
			if ch.Sections[si].ID == id {
				return ch, &ch.Sections[si], true
			}
		}
	}
	return nil, nil, false
}

// MentionsText reports whether any q&a section of v matches m.
func (v *Volume) MentionsText(m textmatch.Matcher) bool {
	for ci := range v.Chapters {
		for si := range v.Chapters[ci].Sections {
			if qa, ok := v.Chapters[ci].Sections[si].QA(); ok {
				if _, hit := qa.Locate(m); hit {
					return true
				}
			}
		}
	}
	return false
}

// Summarize returns the listing projection.
func (v *Volume) Summarize() VolumeSummary {
	return VolumeSummary{Volume: v.Volume, Summary: strings.TrimSpace(v.Summary)}
}
