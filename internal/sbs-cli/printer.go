package cli

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kart-io/sbs-x/internal/explorer"
	"github.com/kart-io/sbs-x/internal/model"
	"github.com/kart-io/sbs-x/pkg/utils/json"
)

// Printer renders client output as plain text. Styling is only applied when
// the writer is a terminal.
type Printer struct {
	w io.Writer

	heading lipgloss.Style
	chapter lipgloss.Style
	marker  lipgloss.Style
	muted   lipgloss.Style
	warn    lipgloss.Style
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:       w,
		heading: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#2196F3")),
		chapter: r.NewStyle().Bold(true),
		marker:  r.NewStyle().Foreground(lipgloss.Color("#8BC34A")),
		muted:   r.NewStyle().Faint(true),
		warn:    r.NewStyle().Foreground(lipgloss.Color("#FFC107")),
	}
}

func (p *Printer) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format, args...)
}

// JSON prints v as indented JSON.
func (p *Printer) JSON(v any) error {
	return json.Encode(p.w, v)
}

// Volumes prints the volume listing.
func (p *Printer) Volumes(list []model.VolumeSummary) {
	if len(list) == 0 {
		p.Empty("No volumes.")
		return
	}
	for _, v := range list {
		if v.Summary == "" {
			p.printf("%s\n", p.heading.Render(fmt.Sprintf("Volume %d", v.Volume)))
			continue
		}
		p.printf("%s  %s\n", p.heading.Render(fmt.Sprintf("Volume %d", v.Volume)), v.Summary)
	}
}

// List prints one value per line.
func (p *Printer) List(values []string) {
	if len(values) == 0 {
		p.Empty("Nothing found.")
		return
	}
	for _, v := range values {
		p.printf("%s\n", v)
	}
}

// Volume prints a whole volume.
func (p *Printer) Volume(v *model.Volume) {
	if v.Summary != "" {
		p.printf("%s\n", p.muted.Render(v.Summary))
	}
	p.Groups([]explorer.Group{explorer.VolumeGroup(v)})
}

// Tags prints the annotations of a volume.
func (p *Printer) Tags(t *model.VolumeTags) {
	p.printf("%s\n", p.heading.Render(fmt.Sprintf("Volume %d", t.Volume)))
	for _, ch := range t.Chapters {
		p.printf("%s\n", p.chapter.Render(fmt.Sprintf("  Chapter %d (p. %d)", ch.Chapter, ch.Page)))
		for _, s := range ch.Sections {
			p.printf("    %s", s.ID)
			if len(s.Characters) > 0 {
				p.printf("  characters: %s", strings.Join(s.Characters, ", "))
			}
			if len(s.Tags) > 0 {
				p.printf("  tags: %s", strings.Join(s.Tags, ", "))
			}
			p.printf("\n")
		}
	}
}

// Stats prints the match summary.
func (p *Printer) Stats(s explorer.Stats) {
	if s.TotalMatches == 0 {
		p.Empty("No matches.")
		return
	}

	vols := slices.Sorted(maps.Keys(s.Volumes))
	parts := make([]string, 0, len(vols))
	for _, v := range vols {
		parts = append(parts, fmt.Sprintf("%d (%d)", v, s.Volumes[v]))
	}
	p.printf("%d matches in %d volumes: %s\n", s.TotalMatches, s.VolumeCount, strings.Join(parts, ", "))
}

// Groups prints assembled groups.
func (p *Printer) Groups(groups []explorer.Group) {
	for _, g := range groups {
		p.printf("\n%s\n", p.heading.Render(fmt.Sprintf("Volume %d", g.Volume)))
		for _, ch := range g.Chapters {
			p.printf("%s\n", p.chapter.Render(fmt.Sprintf("  Chapter %d (p. %d)", ch.Chapter, ch.Page)))
			for _, hit := range ch.Sections {
				p.section(hit)
			}
		}
	}
}

func (p *Printer) section(hit explorer.SectionHit) {
	s := hit.Section
	label := s.ID
	if n, ok := s.Number(); ok && s.Kind() == model.KindQA {
		label = fmt.Sprintf("Q%d", n)
	}

	var marker string
	if hit.MatchedIn != "" {
		marker = " " + p.marker.Render("["+markerText(hit)+"]")
	}

	switch s.Kind() {
	case model.KindQA:
		qa, _ := s.QA()
		p.printf("    %s%s %s\n", label, marker, qa.Question.Text)
		if qa.Question.Author != "" {
			p.printf("      %s\n", p.muted.Render("asked by "+qa.Question.Author))
		}
		for _, seg := range qa.Answer.Segments {
			author := seg.AuthorOr(qa.Answer.Author)
			switch seg.Type {
			case model.SegmentImage:
				p.printf("      %s: %s\n", author, imageText(seg.URL, seg.Caption))
			default:
				p.printf("      %s: %s\n", author, seg.Text)
			}
		}
		for _, img := range qa.Images {
			p.printf("      %s\n", imageText(img.URL, img.Caption))
		}
	case model.KindMessage:
		text := s.Message
		if text == "" {
			text = s.Text
		}
		p.printf("    %s%s %s\n", label, marker, text)
	case model.KindImage:
		p.printf("    %s%s\n", label, marker)
		for _, img := range s.Images {
			p.printf("      %s\n", imageText(img.URL, img.Caption))
		}
	default:
		p.printf("    %s%s %s\n", label, marker, p.muted.Render("("+s.Type+")"))
	}
}

func markerText(hit explorer.SectionHit) string {
	if hit.Provenance != "" {
		return string(hit.MatchedIn) + ", " + string(hit.Provenance)
	}
	return string(hit.MatchedIn)
}

func imageText(url, caption string) string {
	if caption == "" {
		return "[image " + url + "]"
	}
	return "[image " + url + " " + caption + "]"
}

// Empty prints an empty state message.
func (p *Printer) Empty(msg string) {
	p.printf("%s\n", p.muted.Render(msg))
}

// Warn prints a non-fatal problem.
func (p *Printer) Warn(format string, args ...any) {
	p.printf("%s\n", p.warn.Render(fmt.Sprintf(format, args...)))
}

// More prints the load more hint.
func (p *Printer) More(hint string) {
	p.printf("\n%s\n", p.muted.Render(hint))
}
