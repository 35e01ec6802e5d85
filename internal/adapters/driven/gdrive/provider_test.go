package gdrive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/docs/v1"

	"github.com/atelier-labs/docmill/internal/core/domain"
)

func TestEscapeQuery(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"K-1001 Musterbau GmbH", "K-1001 Musterbau GmbH"},
		{"O'Brien GmbH", `O\'Brien GmbH`},
		{`back\slash`, `back\\slash`},
		{`both\'`, `both\\\'`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, escapeQuery(tt.in))
	}
}

func paragraph(start, end int64, text string) *docs.StructuralElement {
	return &docs.StructuralElement{
		StartIndex: start,
		EndIndex:   end,
		Paragraph: &docs.Paragraph{
			Elements: []*docs.ParagraphElement{
				{TextRun: &docs.TextRun{Content: text}},
			},
		},
	}
}

func TestSentinelRanges(t *testing.T) {
	doc := &docs.Document{
		Body: &docs.Body{
			Content: []*docs.StructuralElement{
				paragraph(1, 20, "Offer A-2042\n"),
				paragraph(20, 40, domain.RemoveLineSentinel+"\n"),
				paragraph(40, 60, "Total 1.234,56\n"),
			},
		},
	}

	ranges := sentinelRanges(doc)
	assert.Len(t, ranges, 1)
	assert.Equal(t, int64(20), ranges[0].StartIndex)
	assert.Equal(t, int64(40), ranges[0].EndIndex)
}

func TestSentinelRanges_FinalParagraphKeepsTrailingNewline(t *testing.T) {
	doc := &docs.Document{
		Body: &docs.Body{
			Content: []*docs.StructuralElement{
				paragraph(1, 20, "Offer A-2042\n"),
				paragraph(20, 40, domain.RemoveLineSentinel+"\n"),
			},
		},
	}

	ranges := sentinelRanges(doc)
	assert.Len(t, ranges, 1)
	assert.Equal(t, int64(39), ranges[0].EndIndex)
}

func TestSentinelRanges_NoSentinel(t *testing.T) {
	doc := &docs.Document{
		Body: &docs.Body{
			Content: []*docs.StructuralElement{
				paragraph(1, 20, "Offer A-2042\n"),
			},
		},
	}
	assert.Empty(t, sentinelRanges(doc))

	assert.Empty(t, sentinelRanges(&docs.Document{}))
}

func TestSentinelRanges_SkipsNonParagraphContent(t *testing.T) {
	doc := &docs.Document{
		Body: &docs.Body{
			Content: []*docs.StructuralElement{
				{StartIndex: 1, EndIndex: 10, SectionBreak: &docs.SectionBreak{}},
				paragraph(10, 30, domain.RemoveLineSentinel+"\n"),
				paragraph(30, 50, "rest\n"),
			},
		},
	}

	ranges := sentinelRanges(doc)
	assert.Len(t, ranges, 1)
	assert.Equal(t, int64(10), ranges[0].StartIndex)
}
