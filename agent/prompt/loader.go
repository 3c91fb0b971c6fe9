package prompt

import (
	_ "embed"
	"strings"
)

//go:embed template/support.txt
var supportRaw string

// Support returns the system prompt for the customer-support agent,
// trimmed. Safe to call concurrently; the embed is compile-time.
func Support() string {
	return strings.TrimSpace(supportRaw)
}
