// Package bell renders the unread-notification badge shown in the header.
package bell

import (
	"strconv"

	"github.com/nhle/campus-inbox/internal/theme"
)

// Icon precedes the badge in the header.
const Icon = "🔔"

// Text is the badge label for count unread deliveries: the decimal count,
// or "" when there is nothing unread and the badge is hidden.
func Text(count int) string {
	if count <= 0 {
		return ""
	}
	return strconv.Itoa(count)
}

// View renders the bell with its badge.
func View(count int) string {
	text := Text(count)
	if text == "" {
		return Icon
	}
	return Icon + " " + theme.BadgeStyle.Render(text)
}
