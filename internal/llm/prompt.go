package llm

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"

	"github.com/tbourn/support-chat-backend/internal/history"
)

// PromptInput is everything a prompt is built from.
type PromptInput struct {
	Question string
	// Context is document text the answer should rely on.
	Context string
	// History holds earlier turns of the same conversation, oldest first.
	History []history.Pair
}

// MaxHistoryTurns is how many of the most recent turns a prompt carries.
const MaxHistoryTurns = 6

// BuildPrompt renders in as a single completion prompt. Context longer than
// maxChars runes is cut and marked. History keeps at most MaxHistoryTurns
// recent turns and shares maxChars with the context, dropping the oldest
// turns first. maxChars <= 0 disables both caps.
func BuildPrompt(in PromptInput, lang language.Tag, maxChars int) string {
	p := phrasesFor(lang)
	var b strings.Builder

	ctx := strings.TrimSpace(in.Context)
	if ctx != "" {
		ctx = capRunes(ctx, maxChars, p.truncated)
	}

	budget := -1
	if maxChars > 0 {
		budget = max(maxChars-utf8.RuneCountInString(ctx), 0)
	}
	turns, dropped := recentTurns(in.History, MaxHistoryTurns, budget)
	if len(turns) > 0 {
		b.WriteString(p.history)
		b.WriteString("\n")
		if dropped {
			b.WriteString(p.truncated)
			b.WriteString("\n")
		}
		for _, turn := range turns {
			fmt.Fprintf(&b, "- %s\n  %s\n", turn.User, turn.Bot)
		}
		b.WriteString("\n")
	}

	if ctx != "" {
		b.WriteString(p.context)
		b.WriteString("\n")
		b.WriteString(ctx)
		b.WriteString("\n\n")
	}

	b.WriteString(p.instruction)
	b.WriteString("\n\n")
	b.WriteString(p.question)
	b.WriteString(" ")
	b.WriteString(strings.TrimSpace(in.Question))
	b.WriteString("\n")
	b.WriteString(p.answer)
	return b.String()
}

func capRunes(s string, max int, marker string) string {
	if max <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimSpace(string(r[:max])) + "\n" + marker
}

// recentTurns returns the newest turns, at most maxTurns of them, whose text
// fits in budget runes. budget < 0 means unlimited. dropped reports whether
// any turn was left out.
func recentTurns(all []history.Pair, maxTurns, budget int) (turns []history.Pair, dropped bool) {
	first := len(all)
	used := 0
	for i := len(all) - 1; i >= 0 && len(all)-i <= maxTurns; i-- {
		n := utf8.RuneCountInString(all[i].User) + utf8.RuneCountInString(all[i].Bot)
		if budget >= 0 && used+n > budget {
			break
		}
		used += n
		first = i
	}
	return all[first:], first > 0
}
