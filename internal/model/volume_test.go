package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/sbs-x/internal/pkg/textmatch"
)

func qaSection(id, question string, answers ...string) Section {
	segs := make([]Segment, 0, len(answers))
	for _, a := range answers {
		segs = append(segs, Segment{Type: SegmentText, Text: a})
	}
	return Section{
		Type:     SectionTypeQA,
		ID:       id,
		Question: &Question{Text: question, Author: "Fan"},
		Answer:   &Answer{Author: "Oda", Segments: segs},
	}
}

func TestSectionKind(t *testing.T) {
	tests := []struct {
		typ  string
		want SectionKind
	}{
		{SectionTypeQA, KindQA},
		{SectionTypeMessage, KindMessage},
		{SectionTypeImage, KindImage},
		{"poll", KindUnknown},
		{"", KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			s := Section{Type: tt.typ}
			assert.Equal(t, tt.want, s.Kind())
		})
	}
}

func TestSectionQA(t *testing.T) {
	s := qaSection("107-Q3", "What is Luffy's dream?", "To find the One Piece!")
	qa, ok := s.QA()
	require.True(t, ok)
	assert.Equal(t, "107-Q3", qa.ID)
	assert.Equal(t, "Oda", qa.Answer.Author)

	msg := Section{Type: SectionTypeMessage, ID: "107-M1", Message: "Hello"}
	_, ok = msg.QA()
	assert.False(t, ok)

	bare := Section{Type: SectionTypeQA, ID: "1-Q1"}
	qa, ok = bare.QA()
	require.True(t, ok)
	assert.Empty(t, qa.Question.Text)
}

func TestSectionNumber(t *testing.T) {
	tests := []struct {
		id   string
		want int
		ok   bool
	}{
		{"107-Q3", 3, true},
		{"12-Q15", 15, true},
		{"Q7", 7, true},
		{"107-intro", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			s := Section{ID: tt.id}
			n, ok := s.Number()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestQALocate(t *testing.T) {
	s := qaSection("1-Q1", "Is Luffy strong?", "Luffy is very strong.")
	qa, _ := s.QA()

	loc, ok := qa.Locate(textmatch.New("luffy"))
	require.True(t, ok)
	assert.Equal(t, MatchedInQuestion, loc, "question takes priority over answer")

	loc, ok = qa.Locate(textmatch.New("very"))
	require.True(t, ok)
	assert.Equal(t, MatchedInAnswer, loc)

	_, ok = qa.Locate(textmatch.New("zoro"))
	assert.False(t, ok)
}

func TestQALocateSkipsImageSegments(t *testing.T) {
	s := Section{
		Type:     SectionTypeQA,
		ID:       "1-Q2",
		Question: &Question{Text: "Draw something"},
		Answer: &Answer{Author: "Oda", Segments: []Segment{
			{Type: SegmentImage, URL: "http://img/zoro.png", Caption: "Zoro sketch", Text: "Zoro"},
		}},
	}
	qa, _ := s.QA()
	_, ok := qa.Locate(textmatch.New("zoro"))
	assert.False(t, ok)
}

func TestSegmentAuthorOr(t *testing.T) {
	assert.Equal(t, "Oda", Segment{}.AuthorOr("Oda"))
	assert.Equal(t, "Editor", Segment{Author: "Editor"}.AuthorOr("Oda"))
}

func TestVolumeFindSection(t *testing.T) {
	v := Volume{Volume: 107, Chapters: []Chapter{
		{Chapter: 5, Page: 12, Sections: []Section{qaSection("107-Q3", "q")}},
		{Chapter: 6, Page: 30, Sections: []Section{qaSection("107-Q4", "q")}},
	}}

	ch, s, ok := v.FindSection(5, "107-Q3")
	require.True(t, ok)
	assert.Equal(t, 12, ch.Page)
	assert.Equal(t, "107-Q3", s.ID)

	_, _, ok = v.FindSection(6, "107-Q3")
	assert.False(t, ok, "section id must be looked up inside the matching chapter")

	_, _, ok = v.FindSection(9, "107-Q9")
	assert.False(t, ok)
}

func TestVolumeMentionsText(t *testing.T) {
	v := Volume{Volume: 1, Chapters: []Chapter{
		{Chapter: 1, Sections: []Section{
			{Type: SectionTypeMessage, ID: "1-M1", Message: "Luffy says hi"},
			qaSection("1-Q1", "Who is the cook?", "Sanji."),
		}},
	}}
	assert.True(t, v.MentionsText(textmatch.New("sanji")))
	assert.False(t, v.MentionsText(textmatch.New("luffy")), "message sections are not searchable")
}

func TestVolumeTagsMatches(t *testing.T) {
	tags := VolumeTags{Volume: 1, Chapters: []ChapterTags{
		{Chapter: 1, Sections: []SectionTags{{ID: "1-Q1", Tags: []string{"food"}, Characters: []string{"Sanji"}}}},
	}}
	assert.True(t, tags.Matches(FieldCharacters, textmatch.New("san")))
	assert.False(t, tags.Matches(FieldTags, textmatch.New("san")))
	assert.True(t, tags.Matches(FieldTags, textmatch.New("FOOD")))
	assert.False(t, TagField("summary").Valid())
	assert.Equal(t, "chapters.sections.characters", FieldCharacters.Path())
}

func TestParseSearchType(t *testing.T) {
	for _, s := range []string{"text", "Character", " tag "} {
		_, err := ParseSearchType(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseSearchType("regex")
	assert.Error(t, err)
}
