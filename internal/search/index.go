// Package search ranks the paragraphs of an uploaded document against a
// question so that the most relevant text fits inside the prompt budget.
//
// Scoring uses Jaccard similarity between the question token set and each
// paragraph's token set: score = |Q ∩ P| / |Q ∪ P|. The index is immutable
// after construction and safe for concurrent use.
package search

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Result is a ranked paragraph with its similarity score. Pos is the
// paragraph's position in the source text.
type Result struct {
	Snippet string
	Score   float64
	Pos     int
}

// Index ranks paragraphs against a query.
type Index interface {
	TopK(query string, k int) []Result
}

// Option configures an index.
type Option func(*config)

type config struct {
	minParagraphRunes int
	stopwords         map[string]struct{}
}

func defaultConfig() config {
	return config{
		minParagraphRunes: 0,
		stopwords:         defaultStopwords,
	}
}

// WithMinParagraphRunes skips paragraphs shorter than n runes.
func WithMinParagraphRunes(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.minParagraphRunes = n
		}
	}
}

// WithStopwords replaces the default French and English stop-word list.
// An empty list disables stop-word removal.
func WithStopwords(words []string) Option {
	return func(c *config) {
		c.stopwords = wordSet(words)
	}
}

type doc struct {
	text   string
	pos    int
	tokens map[string]struct{}
}

type index struct {
	cfg  config
	docs []doc
}

// NewIndex builds an index over the blank-line separated paragraphs of text.
func NewIndex(text string, opts ...Option) Index {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	paras := SplitParagraphs(text)
	docs := make([]doc, 0, len(paras))
	for i, p := range paras {
		if cfg.minParagraphRunes > 0 && utf8.RuneCountInString(p) < cfg.minParagraphRunes {
			continue
		}
		toks := tokenize(p, cfg.stopwords)
		if len(toks) == 0 {
			continue
		}
		docs = append(docs, doc{text: p, pos: i, tokens: toks})
	}
	return &index{cfg: cfg, docs: docs}
}

// TopK returns up to k paragraphs with a non-zero score, best first. Ties
// prefer shorter paragraphs, then earlier ones.
func (i *index) TopK(q string, k int) []Result {
	if len(i.docs) == 0 || strings.TrimSpace(q) == "" {
		return nil
	}
	if k <= 0 {
		k = 3
	}
	qTokens := tokenize(q, i.cfg.stopwords)
	if len(qTokens) == 0 {
		return nil
	}

	out := make([]Result, 0, len(i.docs))
	for _, d := range i.docs {
		over := overlap(qTokens, d.tokens)
		if over == 0 {
			continue
		}
		union := len(qTokens) + len(d.tokens) - over
		out = append(out, Result{
			Snippet: d.text,
			Score:   float64(over) / float64(union),
			Pos:     d.pos,
		})
	}
	if len(out) == 0 {
		return nil
	}

	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Score != out[b].Score {
			return out[a].Score > out[b].Score
		}
		la, lb := utf8.RuneCountInString(out[a].Snippet), utf8.RuneCountInString(out[b].Snippet)
		if la != lb {
			return la < lb
		}
		return out[a].Pos < out[b].Pos
	})
	if k < len(out) {
		out = out[:k]
	}
	return out
}

// paragraphSep joins selected paragraphs.
const paragraphSep = "\n\n"

// Select returns text unchanged when it fits in maxChars runes. Otherwise
// it keeps the paragraphs that best match question, in document order,
// until the budget is spent. When nothing matches it keeps the leading
// paragraphs. maxChars <= 0 disables the budget.
func Select(question, text string, maxChars int, opts ...Option) string {
	text = strings.TrimSpace(text)
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return text
	}

	idx := NewIndex(text, opts...).(*index)
	ranked := idx.TopK(question, len(idx.docs))
	if len(ranked) == 0 {
		ranked = make([]Result, 0, len(idx.docs))
		for _, d := range idx.docs {
			ranked = append(ranked, Result{Snippet: d.text, Pos: d.pos})
		}
	}

	picked := make([]Result, 0, len(ranked))
	used := 0
	for _, r := range ranked {
		n := utf8.RuneCountInString(r.Snippet)
		if len(picked) > 0 {
			n += len(paragraphSep)
		}
		if used+n > maxChars {
			continue
		}
		picked = append(picked, r)
		used += n
	}

	sort.Slice(picked, func(a, b int) bool { return picked[a].Pos < picked[b].Pos })
	parts := make([]string, len(picked))
	for i, r := range picked {
		parts[i] = r.Snippet
	}
	return strings.Join(parts, paragraphSep)
}

var wordRE = regexp.MustCompile(`\p{L}+\p{N}*`)

func tokenize(s string, stop map[string]struct{}) map[string]struct{} {
	words := wordRE.FindAllString(strings.ToLower(s), -1)
	if len(words) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		if _, skip := stop[w]; skip {
			continue
		}
		out[w] = struct{}{}
	}
	return out
}

func overlap(a, b map[string]struct{}) int {
	if len(a) > len(b) {
		a, b = b, a
	}
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}

var paraSplitRE = regexp.MustCompile(`\n\s*\n`)

// SplitParagraphs splits text on blank lines, collapsing runs of spaces and
// tabs and dropping empty paragraphs.
func SplitParagraphs(text string) []string {
	chunks := paraSplitRE.Split(strings.ReplaceAll(text, "\r\n", "\n"), -1)
	out := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if t := strings.TrimSpace(normalizeWhitespace(c)); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func normalizeWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\r' {
			if !prevSpace {
				b.WriteByte(' ')
				prevSpace = true
			}
			continue
		}
		prevSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

func wordSet(words []string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			m[w] = struct{}{}
		}
	}
	return m
}

var defaultStopwords = wordSet([]string{
	"le", "la", "les", "un", "une", "des", "du", "de", "et", "ou", "en", "au", "aux",
	"est", "que", "qui", "quoi", "quel", "quelle", "pour", "dans", "sur", "par", "avec",
	"ce", "cet", "cette", "il", "elle", "je", "tu", "nous", "vous", "ils", "mon", "ma", "mes",
	"the", "a", "an", "and", "or", "of", "to", "in", "on", "for", "is", "are", "what",
	"which", "who", "how", "with", "by", "it", "this", "that", "my", "your",
})
