// Package sbstest provides shared SBS fixtures for tests.
package sbstest

import (
	"fmt"

	"github.com/kart-io/sbs-x/internal/model"
)

// QA builds a q&a section with text answer segments.
func QA(id, question string, answers ...string) model.Section {
	segs := make([]model.Segment, 0, len(answers))
	for _, a := range answers {
		segs = append(segs, model.Segment{Type: model.SegmentText, Text: a})
	}
	return model.Section{
		Type:     model.SectionTypeQA,
		ID:       id,
		Question: &model.Question{Text: question, Author: "Fan"},
		Answer:   &model.Answer{Author: "Oda", Segments: segs},
	}
}

// Volume107 is the canonical single-section volume.
func Volume107() model.Volume {
	return model.Volume{
		Volume:  107,
		Summary: "Egghead",
		Chapters: []model.Chapter{{
			Chapter:  5,
			Page:     12,
			Sections: []model.Section{QA("107-Q3", "What is Luffy's dream?", "To find the One Piece!")},
		}},
	}
}

// Tags107 annotates Volume107.
func Tags107() model.VolumeTags {
	return model.VolumeTags{
		Volume:  107,
		Summary: "Egghead",
		Chapters: []model.ChapterTags{{
			Chapter: 5,
			Page:    12,
			Sections: []model.SectionTags{{
				Type:       model.SectionTypeQA,
				ID:         "107-Q3",
				Tags:       []string{"dreams"},
				Characters: []string{"Monkey D. Luffy"},
			}},
		}},
	}
}

// Series returns volumes first..last where every volume has one chapter
// with a section mentioning Luffy, plus volume-specific content.
func Series(first, last int) ([]model.Volume, []model.VolumeTags) {
	var (
		volumes []model.Volume
		tags    []model.VolumeTags
	)
	for n := first; n <= last; n++ {
		id1 := fmt.Sprintf("%d-Q1", n)
		id2 := fmt.Sprintf("%d-Q2", n)
		volumes = append(volumes, model.Volume{
			Volume:  n,
			Summary: fmt.Sprintf("Volume %d", n),
			Chapters: []model.Chapter{
				{
					Chapter: n * 10,
					Page:    n,
					Sections: []model.Section{
						{Type: model.SectionTypeMessage, ID: fmt.Sprintf("%d-M1", n), Message: "Luffy waves"},
						QA(id1, fmt.Sprintf("Does Luffy like meat in volume %d?", n), "Yes."),
					},
				},
				{
					Chapter:  n*10 + 1,
					Page:     n + 20,
					Sections: []model.Section{QA(id2, "Who is the cook?", "Sanji, of course.")},
				},
			},
		})
		tags = append(tags, model.VolumeTags{
			Volume: n,
			Chapters: []model.ChapterTags{
				{Chapter: n * 10, Page: n, Sections: []model.SectionTags{
					{Type: model.SectionTypeQA, ID: id1, Tags: []string{"food"}, Characters: []string{"Luffy"}},
				}},
				{Chapter: n*10 + 1, Page: n + 20, Sections: []model.SectionTags{
					{Type: model.SectionTypeQA, ID: id2, Tags: []string{"cooking", "food"}, Characters: []string{"Sanji"}},
				}},
			},
		})
	}
	return volumes, tags
}
