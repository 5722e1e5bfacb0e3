// Package search ranks free-text records against a short query.
//
// A record (for example a case questionnaire) is indexed as a set of
// passages; each passage is tokenized into a set of lower-cased words. A
// record's score is the best Jaccard similarity between the query token set
// and any of its passages: |Q ∩ P| / |Q ∪ P|. The index is built once and is
// read-only afterwards, so it is safe for concurrent use.
package search

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Doc is one record to index. Passages are scored independently.
type Doc struct {
	ID       uint
	Passages []string
}

// Hit is a ranked record with the passage that matched best.
type Hit struct {
	ID      uint    `json:"id"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
}

// Option configures an Index.
type Option func(*config)

type config struct {
	minPassageRunes int
	snippetRunes    int
	stopwords       map[string]struct{}
}

func defaultConfig() config {
	return config{
		minPassageRunes: 3,
		snippetRunes:    200,
	}
}

// WithMinPassageRunes drops passages shorter than n runes.
func WithMinPassageRunes(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.minPassageRunes = n
		}
	}
}

// WithSnippetRunes caps the length of Hit.Snippet. Zero keeps whole passages.
func WithSnippetRunes(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.snippetRunes = n
		}
	}
}

// WithStopwords ignores the given words in passages and queries.
func WithStopwords(words []string) Option {
	return func(c *config) {
		m := make(map[string]struct{}, len(words))
		for _, w := range words {
			w = strings.ToLower(strings.TrimSpace(w))
			if w != "" {
				m[w] = struct{}{}
			}
		}
		if len(m) > 0 {
			c.stopwords = m
		}
	}
}

type passage struct {
	docID  uint
	text   string
	tokens map[string]struct{}
}

// Index is an immutable passage index.
type Index struct {
	cfg      config
	passages []passage
}

// New indexes docs. Passages are normalized and split on blank lines.
func New(docs []Doc, opts ...Option) *Index {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	idx := &Index{cfg: cfg}
	for _, d := range docs {
		for _, raw := range d.Passages {
			for _, p := range splitParagraphs(raw) {
				if cfg.minPassageRunes > 0 && utf8.RuneCountInString(p) < cfg.minPassageRunes {
					continue
				}
				toks := tokenize(p, cfg.stopwords)
				if len(toks) == 0 {
					continue
				}
				idx.passages = append(idx.passages, passage{docID: d.ID, text: p, tokens: toks})
			}
		}
	}
	return idx
}

// Len returns the number of indexed passages.
func (i *Index) Len() int { return len(i.passages) }

// TopK returns up to k records ranked by score. Ties prefer the shorter
// passage, then the lower ID. An empty query yields nil; k <= 0 means 10.
func (i *Index) TopK(q string, k int) []Hit {
	if len(i.passages) == 0 || strings.TrimSpace(q) == "" {
		return nil
	}
	if k <= 0 {
		k = 10
	}
	qTokens := tokenize(q, i.cfg.stopwords)
	if len(qTokens) == 0 {
		return nil
	}

	type best struct {
		hit      Hit
		lenRunes int
	}
	byDoc := make(map[uint]best)
	for _, p := range i.passages {
		over := overlap(qTokens, p.tokens)
		if over == 0 {
			continue
		}
		score := float64(over) / float64(len(qTokens)+len(p.tokens)-over)
		n := utf8.RuneCountInString(p.text)
		cur, seen := byDoc[p.docID]
		if seen && (cur.hit.Score > score || (cur.hit.Score == score && cur.lenRunes <= n)) {
			continue
		}
		byDoc[p.docID] = best{hit: Hit{ID: p.docID, Snippet: p.text, Score: score}, lenRunes: n}
	}
	if len(byDoc) == 0 {
		return nil
	}

	buf := make([]best, 0, len(byDoc))
	for _, b := range byDoc {
		buf = append(buf, b)
	}
	sort.Slice(buf, func(a, b int) bool {
		if buf[a].hit.Score != buf[b].hit.Score {
			return buf[a].hit.Score > buf[b].hit.Score
		}
		if buf[a].lenRunes != buf[b].lenRunes {
			return buf[a].lenRunes < buf[b].lenRunes
		}
		return buf[a].hit.ID < buf[b].hit.ID
	})

	if k > len(buf) {
		k = len(buf)
	}
	out := make([]Hit, k)
	for j := 0; j < k; j++ {
		h := buf[j].hit
		h.Snippet = clip(h.Snippet, i.cfg.snippetRunes)
		out[j] = h
	}
	return out
}

var wordRE = regexp.MustCompile(`[\p{L}\p{N}]+`)

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

func splitParagraphs(s string) []string {
	chunks := paraSplitRE.Split(s, -1)
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
		if r == ' ' || r == '\t' || r == '\r' || r == '\n' {
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

func clip(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "…"
}
