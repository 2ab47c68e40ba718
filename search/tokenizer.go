package search

import (
	"log/slog"
	"strings"
	"sync"
	"unicode"

	"github.com/go-ego/gse"
)

var (
	segmenter      gse.Segmenter
	segmenterReady bool
	segmenterOnce  sync.Once
)

// loadSegmenter initializes the shared CJK segmenter with its embedded
// dictionary. Loading is expensive, so it happens once per process. If the
// dictionary cannot load, CJK runs fall back to per-character tokens.
func loadSegmenter() {
	segmenterOnce.Do(func() {
		if err := segmenter.LoadDict(); err != nil {
			slog.Default().Warn("failed to load segmentation dictionary", "err", err)
			return
		}
		segmenterReady = true
	})
}

func isCJK(r rune) bool {
	return unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul)
}

func isLatin(r rune) bool {
	return unicode.IsDigit(r) || unicode.In(r, unicode.Latin)
}

// Tokenize splits mixed-script text into search tokens. Contiguous
// Latin-script and digit runs become single lowercased tokens (so
// identifiers like "HTTP2" stay whole), while contiguous CJK runs are
// segmented with a dictionary-based segmenter. Everything else
// (punctuation, whitespace, symbols) separates tokens.
//
// Tokenize is deterministic: the same input always yields the same token
// sequence.
func Tokenize(text string) []string {
	loadSegmenter()

	tokens := make([]string, 0, len(text)/4)
	var latin, cjk strings.Builder

	flushLatin := func() {
		if latin.Len() > 0 {
			tokens = append(tokens, strings.ToLower(latin.String()))
			latin.Reset()
		}
	}
	flushCJK := func() {
		if cjk.Len() == 0 {
			return
		}
		run := cjk.String()
		cjk.Reset()
		if !segmenterReady {
			for _, r := range run {
				tokens = append(tokens, string(r))
			}
			return
		}
		for _, seg := range segmenter.Cut(run, true) {
			seg = strings.TrimSpace(seg)
			if seg != "" {
				tokens = append(tokens, seg)
			}
		}
	}

	for _, r := range text {
		switch {
		case isCJK(r):
			flushLatin()
			cjk.WriteRune(r)
		case isLatin(r):
			flushCJK()
			latin.WriteRune(r)
		default:
			flushLatin()
			flushCJK()
		}
	}
	flushLatin()
	flushCJK()

	return tokens
}
