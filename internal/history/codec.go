// Package history encodes the per-conversation message history. Each side of
// a conversation (user turns, bot turns) is an ordered list of strings stored
// as a JSON array literal in a single text column. The i-th user turn pairs
// with the i-th bot turn.
//
// Rows written before the array format hold a bare string. Decode treats any
// value that is not a JSON array as a single-element history, so reading a
// legacy row never fails.
package history

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Pair is one user turn and the bot turn that answered it.
type Pair struct {
	User string `json:"user"`
	Bot  string `json:"bot"`
}

// Encode renders msgs as a JSON array literal. A nil or empty list encodes
// as "[]".
func Encode(msgs []string) string {
	if len(msgs) == 0 {
		return "[]"
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(msgs); err != nil {
		return "[]"
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// Decode parses stored history text. Anything that is not a JSON array is
// returned as the single element [stored]. The empty string is an empty
// history.
func Decode(stored string) []string {
	if stored == "" {
		return []string{}
	}
	trimmed := strings.TrimSpace(stored)
	if !strings.HasPrefix(trimmed, "[") {
		return []string{stored}
	}

	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
		return []string{stored}
	}

	out := make([]string, 0, len(raw))
	for _, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			out = append(out, s)
			continue
		}
		// Mixed arrays keep the literal text of non-string elements.
		out = append(out, string(r))
	}
	return out
}

// IsArray reports whether stored is already in array form.
func IsArray(stored string) bool {
	trimmed := strings.TrimSpace(stored)
	if !strings.HasPrefix(trimmed, "[") {
		return false
	}
	var raw []json.RawMessage
	return json.Unmarshal([]byte(trimmed), &raw) == nil
}

// Append pushes one user turn and one bot turn. When the inputs have
// diverged, trailing elements of the longer side are dropped first so the
// two lists have equal length afterwards. The inputs are not modified.
func Append(users, bots []string, user, bot string) ([]string, []string) {
	n := min(len(users), len(bots))

	u := make([]string, n, n+1)
	b := make([]string, n, n+1)
	copy(u, users[:n])
	copy(b, bots[:n])

	return append(u, user), append(b, bot)
}

// Pairs zips users and bots index-wise, stopping at the shorter list.
func Pairs(users, bots []string) []Pair {
	n := min(len(users), len(bots))
	out := make([]Pair, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Pair{User: users[i], Bot: bots[i]})
	}
	return out
}

// TitleRunes is the number of leading runes of the first user message used
// as a fallback conversation title.
const TitleRunes = 30

// Title resolves the display title of a conversation: the stored title when
// set, otherwise the first TitleRunes runes of the first user message with
// "..." appended when it was cut.
func Title(stored *string, users []string) string {
	if stored != nil && strings.TrimSpace(*stored) != "" {
		return *stored
	}
	if len(users) == 0 {
		return ""
	}
	first := users[0]
	if utf8.RuneCountInString(first) <= TitleRunes {
		return first
	}
	return string([]rune(first)[:TitleRunes]) + "..."
}

// Validate returns an error when users and bots differ in length.
func Validate(users, bots []string) error {
	if len(users) != len(bots) {
		return fmt.Errorf("history: %d user turns but %d bot turns", len(users), len(bots))
	}
	return nil
}
