package tui

import (
	"log/slog"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/reflow/wordwrap"

	"github.com/csheth/papertalk/internal/chat"
)

// messageRenderer turns transcript messages into terminal markdown. It keeps
// one glamour renderer per wrap width.
type messageRenderer struct {
	style    string
	width    int
	renderer *glamour.TermRenderer
	log      *slog.Logger
}

func newMessageRenderer(style string, logger *slog.Logger) *messageRenderer {
	if style == "" {
		style = "dark"
	}
	return &messageRenderer{style: style, log: logger}
}

func (r *messageRenderer) ensure(width int) *glamour.TermRenderer {
	if r.renderer != nil && r.width == width {
		return r.renderer
	}
	styleOpt := glamour.WithStandardStyle(r.style)
	if r.style == "auto" {
		styleOpt = glamour.WithAutoStyle()
	}
	renderer, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		r.log.Warn("markdown renderer unavailable", slog.String("style", r.style), slog.Any("err", err))
		r.renderer = nil
		return nil
	}
	r.renderer = renderer
	r.width = width
	return renderer
}

// Markdown renders content, falling back to plain wrapped text.
func (r *messageRenderer) Markdown(content string, width int) string {
	if renderer := r.ensure(width); renderer != nil {
		if out, err := renderer.Render(content); err == nil {
			return strings.Trim(out, "\n")
		}
	}
	return wordwrap.String(content, width)
}

// Message renders one transcript entry under its speaker label.
func (r *messageRenderer) Message(msg chat.Message, width int) string {
	return messageLabel(msg.Role) + "\n" + r.Markdown(msg.Content, width)
}

// Transcript renders every message, separated by blank lines.
func (r *messageRenderer) Transcript(messages []chat.Message, width int) string {
	parts := make([]string, 0, len(messages))
	for _, msg := range messages {
		parts = append(parts, r.Message(msg, width))
	}
	return strings.Join(parts, "\n\n")
}

func messageLabel(role chat.Role) string {
	switch role {
	case chat.RoleHuman:
		return humanLabelStyle.Render("You")
	case chat.RoleAssistant:
		return assistantLabelStyle.Render("Assistant")
	case chat.RoleSystem:
		return systemLabelStyle.Render("System")
	default:
		return helperStyle.Render(string(role))
	}
}
