package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csheth/papertalk/internal/arxiv"
)

func TestGreetingMentionsTitleAndSummary(t *testing.T) {
	t.Parallel()

	msg := Greeting(arxiv.Paper{ID: 1, Title: "Sparse Mixtures", Summary: "We route tokens."})
	assert.Equal(t, RoleAssistant, msg.Role)
	assert.True(t, strings.HasPrefix(msg.Content, `**Great! Let's discuss the paper titled "Sparse Mixtures"**.`))
	assert.True(t, strings.HasSuffix(msg.Content, "**Here is its summary:**  We route tokens."))
}

func TestSwitchNoticeIsSystemMessage(t *testing.T) {
	t.Parallel()

	msg := SwitchNotice(arxiv.Paper{Title: "Other", Summary: "Else."})
	assert.Equal(t, RoleSystem, msg.Role)
	assert.Equal(t, "Switching discussion to paper: \"Other\".\n\n\nHere is its summary: Else.", msg.Content)
}

func TestDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		want    Message
		wantErr bool
	}{
		{"assistant", `{"role":"assistant","content":"Hi"}`, Message{Role: RoleAssistant, Content: "Hi"}, false},
		{"extra fields", `{"role":"assistant","content":"Hi","model":"x"}`, Message{Role: RoleAssistant, Content: "Hi"}, false},
		{"empty content allowed", `{"role":"assistant","content":""}`, Message{Role: RoleAssistant}, false},
		{"missing content", `{"role":"assistant"}`, Message{}, true},
		{"missing role", `{"content":"Hi"}`, Message{}, true},
		{"unknown role", `{"role":"bot","content":"Hi"}`, Message{}, true},
		{"array", `[{"role":"assistant","content":"Hi"}]`, Message{}, true},
		{"garbage", `oops`, Message{}, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Decode([]byte(tt.body))
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidMessage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFallback(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Message{Role: RoleAssistant, Content: "I'm sorry, I encountered an error while processing your request."}, Fallback())
}

func TestCloneIsIndependent(t *testing.T) {
	t.Parallel()

	orig := []Message{Human("a")}
	cp := Clone(orig)
	cp[0].Content = "b"
	assert.Equal(t, "a", orig[0].Content)
	assert.Nil(t, Clone(nil))
}
