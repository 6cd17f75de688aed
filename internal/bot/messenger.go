// ABOUTME: Outbound messaging contract implemented by transports
// ABOUTME: Plain or markdown text replies plus selectable option menus

package bot

import "context"

// MenuOption is one selectable entry of a menu.
type MenuOption struct {
	Label string // shown to the user
	Data  string // action code delivered back on selection
}

// Messenger delivers replies to a chat. Text may contain light markdown
// (bold, lists); transports that cannot render it send it verbatim.
type Messenger interface {
	SendText(ctx context.Context, chatID, text string) error
	SendMenu(ctx context.Context, chatID, text string, options []MenuOption) error
}
