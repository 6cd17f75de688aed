// ABOUTME: Markdown rendering for Matrix replies
// ABOUTME: Turns bot replies and menus into plain body plus HTML formatted body

package matrix

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"
	"maunium.net/go/mautrix/event"

	"github.com/2389/habit-streaks/internal/bot"
)

const menuFooter = "_Reply with a number to choose._"

var markdown = goldmark.New(
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// renderMenu lays out options as a numbered markdown list.
func renderMenu(text string, options []bot.MenuOption) string {
	var b strings.Builder
	b.WriteString(text)
	for i, opt := range options {
		fmt.Fprintf(&b, "\n%d. %s", i+1, opt.Label)
	}
	b.WriteString("\n\n")
	b.WriteString(menuFooter)
	return b.String()
}

// renderHTML converts markdown to HTML. Raw HTML in the input is dropped.
func renderHTML(text string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(text), &buf); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

// messageContent builds a text message, falling back to plain text when
// rendering fails.
func messageContent(text string) *event.MessageEventContent {
	content := &event.MessageEventContent{
		MsgType: event.MsgText,
		Body:    text,
	}
	if formatted, err := renderHTML(text); err == nil {
		content.Format = event.FormatHTML
		content.FormattedBody = formatted
	}
	return content
}
