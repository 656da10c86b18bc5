package arxiv

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func atomFeed(entries ...string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title type="html">ArXiv Query: search_query=all:transformers</title>
  <id>http://arxiv.org/api/query</id>
` + strings.Join(entries, "\n") + `
</feed>`
}

func atomEntry(id, title, summary string) string {
	return fmt.Sprintf(`  <entry>
    <id>%s</id>
    <title>%s</title>
    <summary>%s</summary>
    <author><name>Ada Lovelace</name></author>
  </entry>`, id, title, summary)
}

func TestParseNumbersEntriesInDocumentOrder(t *testing.T) {
	t.Parallel()

	doc := atomFeed(
		atomEntry("http://arxiv.org/abs/2301.00001v1", "First", "One."),
		atomEntry("http://arxiv.org/abs/2301.00002v2", "Second", "Two."),
		atomEntry("http://arxiv.org/abs/2301.00003v1", "Third", "Three."),
	)

	papers, err := Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, papers, 3)
	for i, p := range papers {
		assert.Equal(t, i+1, p.ID)
	}
	assert.Equal(t, "Second", papers[1].Title)
	assert.Equal(t, "Two.", papers[1].Summary)
	assert.Equal(t, "http://arxiv.org/abs/2301.00002v2", papers[1].PaperID)
}

func TestParseKeepsWhitespaceVerbatim(t *testing.T) {
	t.Parallel()

	doc := atomFeed(atomEntry("http://arxiv.org/abs/2301.00001v1", "\n  Spaced\n  Title ", "  We propose\n  things.\n"))

	papers, err := Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, papers, 1)
	assert.Equal(t, "\n  Spaced\n  Title ", papers[0].Title)
	assert.Equal(t, "  We propose\n  things.\n", papers[0].Summary)
}

func TestParseTakesFirstElementAndNestedText(t *testing.T) {
	t.Parallel()

	entry := `  <entry>
    <id>http://arxiv.org/abs/2301.00001v1</id>
    <title>Deep <i>Sparse</i> Routing &amp; Experts</title>
    <title>Duplicate Title</title>
    <summary><![CDATA[Uses <b>top-k</b>]]> gating.</summary>
    <link href="http://arxiv.org/pdf/2301.00001v1"/>
    <id>http://arxiv.org/abs/9999.99999</id>
  </entry>`

	papers, err := Parse([]byte(atomFeed(entry)))
	require.NoError(t, err)
	require.Len(t, papers, 1)
	assert.Equal(t, "Deep Sparse Routing & Experts", papers[0].Title)
	assert.Equal(t, "Uses <b>top-k</b> gating.", papers[0].Summary)
	assert.Equal(t, "http://arxiv.org/abs/2301.00001v1", papers[0].PaperID)
}

func TestParseFindsFieldsInsideWrappers(t *testing.T) {
	t.Parallel()

	entry := `  <entry>
    <meta><id>http://arxiv.org/abs/2301.00007v1</id></meta>
    <title>Wrapped</title>
    <summary>Inner id.</summary>
  </entry>`

	papers, err := Parse([]byte(atomFeed(entry)))
	require.NoError(t, err)
	require.Len(t, papers, 1)
	assert.Equal(t, "http://arxiv.org/abs/2301.00007v1", papers[0].PaperID)
}

func TestParseFeedWithoutEntries(t *testing.T) {
	t.Parallel()

	papers, err := Parse([]byte(atomFeed()))
	require.NoError(t, err)
	assert.Empty(t, papers)
}

func TestParseFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		check func(t *testing.T, err error)
	}{
		{"empty", "", func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrEmptyDocument) }},
		{"blank", " \n\t", func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrEmptyDocument) }},
		{"json error body", `{"error": "Missing search query"}`, isParseError},
		{"unterminated", "<feed><entry><title>x</title>", isParseError},
		{"mismatched", "<feed><entry></feed></entry>", isParseError},
		{"two roots", "<feed></feed><feed></feed>", isParseError},
		{"missing summary", atomFeed(`<entry><id>http://arxiv.org/abs/1</id><title>T</title></entry>`), func(t *testing.T, err error) {
			var missing *MissingFieldError
			require.True(t, errors.As(err, &missing), "got %v", err)
			assert.Equal(t, 0, missing.Index)
			assert.Equal(t, "summary", missing.Field)
		}},
		{"missing id", atomFeed(
			atomEntry("http://arxiv.org/abs/1", "A", "a"),
			`<entry><title>T</title><summary>S</summary></entry>`,
		), func(t *testing.T, err error) {
			var missing *MissingFieldError
			require.True(t, errors.As(err, &missing), "got %v", err)
			assert.Equal(t, 1, missing.Index)
			assert.Equal(t, "id", missing.Field)
		}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			papers, err := Parse([]byte(tt.input))
			require.Error(t, err)
			assert.Nil(t, papers)
			tt.check(t, err)
			assert.Empty(t, ParseOrEmpty([]byte(tt.input)))
		})
	}
}

func isParseError(t *testing.T, err error) {
	t.Helper()
	var parseErr *ParseError
	assert.True(t, errors.As(err, &parseErr), "expected *ParseError, got %T: %v", err, err)
}

func TestWithoutDropsSelectedPaper(t *testing.T) {
	t.Parallel()

	papers := []Paper{{ID: 1, Title: "a"}, {ID: 2, Title: "b"}, {ID: 3, Title: "c"}}
	got := Without(papers, papers[1])
	assert.Equal(t, []Paper{papers[0], papers[2]}, got)
	assert.Len(t, papers, 3)
}
