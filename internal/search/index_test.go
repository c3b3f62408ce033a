package search

import (
	"strings"
	"testing"
	"unicode/utf8"
)

const sampleDoc = `Refunds are processed within 30 days of the return request.

Shipping is free for orders above 50 euros.

Le remboursement est effectué sous 30 jours après la demande de retour.

Our support team answers emails on weekdays.`

func TestSplitParagraphs(t *testing.T) {
	got := SplitParagraphs("a  \t b\r\n\r\n\n  \nc\n\n")
	if len(got) != 2 || got[0] != "a b" || got[1] != "c" {
		t.Fatalf("SplitParagraphs = %#v", got)
	}
	if SplitParagraphs("   ") == nil || len(SplitParagraphs("   ")) != 0 {
		t.Fatalf("blank text should give an empty slice")
	}
}

func TestTopK_RanksByOverlap(t *testing.T) {
	idx := NewIndex(sampleDoc)

	res := idx.TopK("How are refunds processed?", 2)
	if len(res) == 0 || !strings.HasPrefix(res[0].Snippet, "Refunds are processed") {
		t.Fatalf("unexpected top result: %+v", res)
	}
	if res[0].Pos != 0 {
		t.Fatalf("expected position 0, got %d", res[0].Pos)
	}

	fr := idx.TopK("délai de remboursement", 1)
	if len(fr) != 1 || fr[0].Pos != 2 {
		t.Fatalf("unexpected French match: %+v", fr)
	}

	if idx.TopK("   ", 3) != nil || idx.TopK("zzz", 3) != nil {
		t.Fatal("blank or unmatched queries should give nil")
	}
	// Only stop words.
	if idx.TopK("the and of", 3) != nil {
		t.Fatal("stop-word-only query should give nil")
	}
}

func TestTopK_DefaultKAndTies(t *testing.T) {
	idx := NewIndex("alpha beta\n\nalpha beta gamma\n\nalpha\n\nalpha delta", WithStopwords(nil))
	res := idx.TopK("alpha", 0)
	if len(res) != 3 {
		t.Fatalf("default k should be 3, got %d", len(res))
	}
	if res[0].Snippet != "alpha" {
		t.Fatalf("exact match should win, got %q", res[0].Snippet)
	}
	// "alpha beta" and "alpha delta" tie on score; the shorter one wins.
	if res[1].Snippet != "alpha beta" || res[2].Snippet != "alpha delta" {
		t.Fatalf("tie order = %q, %q", res[1].Snippet, res[2].Snippet)
	}
}

func TestWithMinParagraphRunes(t *testing.T) {
	idx := NewIndex("short\n\nthis paragraph is long enough", WithMinParagraphRunes(10))
	if res := idx.TopK("short", 3); res != nil {
		t.Fatalf("short paragraph should be skipped, got %+v", res)
	}
	before := defaultConfig()
	WithMinParagraphRunes(-1)(&before)
	if before.minParagraphRunes != 0 {
		t.Fatal("negative values must be ignored")
	}
}

func TestSelect(t *testing.T) {
	t.Run("fits unchanged", func(t *testing.T) {
		if got := Select("q", "  small text  ", 100); got != "small text" {
			t.Fatalf("Select = %q", got)
		}
		if got := Select("q", sampleDoc, 0); got != sampleDoc {
			t.Fatal("zero budget means no cap")
		}
	})

	t.Run("keeps relevant paragraphs in order", func(t *testing.T) {
		got := Select("refunds processed return shipping", sampleDoc, 120)
		if utf8.RuneCountInString(got) > 120 {
			t.Fatalf("budget exceeded: %d runes", utf8.RuneCountInString(got))
		}
		if !strings.HasPrefix(got, "Refunds are processed") {
			t.Fatalf("expected refund paragraph first:\n%s", got)
		}
		if strings.Contains(got, "support team") {
			t.Fatalf("irrelevant paragraph kept:\n%s", got)
		}
	})

	t.Run("no match keeps leading paragraphs", func(t *testing.T) {
		got := Select("zzz", sampleDoc, 70)
		if !strings.HasPrefix(got, "Refunds are processed") || strings.Contains(got, "Shipping") {
			t.Fatalf("unexpected selection:\n%s", got)
		}
	})
}
