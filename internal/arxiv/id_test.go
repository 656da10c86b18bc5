package arxiv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		in     string
		want   string
		wantOK bool
	}{
		{"abs url", "https://arxiv.org/abs/2301.12345", "2301.12345", true},
		{"versioned", "http://arxiv.org/abs/2301.12345v2", "2301.12345v2", true},
		{"legacy", "http://arxiv.org/abs/hep-th/9901001v1", "hep-th", true},
		{"trailing query", "https://arxiv.org/abs/2301.12345?context=cs", "2301.12345", true},
		{"no abs segment", "https://example.com/nope", "", false},
		{"pdf url", "https://arxiv.org/pdf/2301.12345.pdf", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ExtractID(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPaperKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "2301.12345", Paper{ID: 1, PaperID: "https://arxiv.org/abs/2301.12345"}.Key())
	assert.Equal(t, "scholar-xyz", Paper{ID: 2, PaperID: "scholar-xyz"}.Key())
	assert.Equal(t, "paper-3", Paper{ID: 3}.Key())
}

func TestFileName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Attention Is All You Need.pdf", FileName("1706.03762", "\n  Attention Is\n  All You Need "))
	assert.Equal(t, "A-B- C.pdf", FileName("1", "A/B: C"))
	assert.Equal(t, "1706.03762.pdf", FileName("1706.03762", "  "))
}
