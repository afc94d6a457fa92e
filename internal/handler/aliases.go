package handler

import (
	"fmt"
	"sort"
	"strings"

	tele "gopkg.in/telebot.v3"
)

// AliasesHandler lists the configured alias table.
type AliasesHandler struct {
	aliases map[string]string
}

// NewAliasesHandler creates a new AliasesHandler.
func NewAliasesHandler(aliases map[string]string) *AliasesHandler {
	return &AliasesHandler{aliases: aliases}
}

// Handle replies with the alias table, sorted for a stable listing.
func (h *AliasesHandler) Handle(c tele.Context) error {
	if len(h.aliases) == 0 {
		return c.Send("No aliases configured")
	}

	keys := make([]string, 0, len(h.aliases))
	for k := range h.aliases {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("Configured aliases:")
	for _, k := range keys {
		fmt.Fprintf(&b, "\n- %s -> %s", k, h.aliases[k])
	}
	return c.Send(b.String())
}
