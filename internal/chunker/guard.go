package chunker

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// wsSentinel replaces whitespace runs inside protected spans so the
// segmenter cannot split through them. Unguard maps it back to a single
// space.
const wsSentinel = "\x1f"

const guardCacheSize = 1024

// protection rules in priority order; the first rule to match a span
// claims it and later rules never re-match inside a claimed span.
var protectionRules = []struct {
	name    string
	pattern string
}{
	{"date", `\b\d{1,2}/\d{1,2}/\d{2,4}\b`},
	{"measurement", `\b\d+(?:\.\d+)?\s*(?:mg|ml|g|kg|mm|cm)\b|\b\d+(?:\.\d+)?\s*%`},
	{"title", `\b(?:Dr\.|Mrs\.|Mr\.|Prof\.|Pt\.|Rx)\s+\w+`},
	{"code", `\b[A-Z]+\d+(?:\.\d+)?\b`},
	{"frequency", `\b(?:qid|bid|tid|qd|prn)\b|\b\d+\s+times?\s+(?:per|a)\s+day\b`},
	{"vitals", `\b(?:BP|HR|RR|SpO2)\s*:\s*\d+(?:/\d+)?(?:\.\d+)?`},
}

// Guard masks text spans that must never be split across chunk
// boundaries: dates, dosages, medical codes, vital-sign readings.
type Guard struct {
	rules       []*regexp.Regexp
	whitespace  *regexp.Regexp
	date        *regexp.Regexp
	measurement *regexp.Regexp
	code        *regexp.Regexp
	cache       *lru.Cache[string, string]
}

// NewGuard compiles the protection rule set. A rule that fails to
// compile is reported here rather than at match time.
func NewGuard() (*Guard, error) {
	g := &Guard{whitespace: regexp.MustCompile(`\s+`)}
	for _, r := range protectionRules {
		re, err := regexp.Compile(r.pattern)
		if err != nil {
			return nil, fmt.Errorf("compile %s rule: %w", r.name, err)
		}
		g.rules = append(g.rules, re)
	}
	g.date = g.rules[0]
	g.measurement = g.rules[1]
	g.code = g.rules[3]
	cache, err := lru.New[string, string](guardCacheSize)
	if err != nil {
		return nil, err
	}
	g.cache = cache
	return g, nil
}

type span struct{ start, end int }

// Protect replaces whitespace inside every protected span with the
// sentinel token. Pure function over the input; results are memoized in
// a bounded cache.
func (g *Guard) Protect(text string) string {
	if v, ok := g.cache.Get(text); ok {
		return v
	}
	var claimed []span
	for _, re := range g.rules {
		for _, m := range re.FindAllStringIndex(text, -1) {
			if overlapsAny(claimed, m[0], m[1]) {
				continue
			}
			claimed = append(claimed, span{m[0], m[1]})
		}
	}
	out := text
	if len(claimed) > 0 {
		sort.Slice(claimed, func(i, j int) bool { return claimed[i].start < claimed[j].start })
		var b strings.Builder
		b.Grow(len(text))
		last := 0
		for _, s := range claimed {
			b.WriteString(text[last:s.start])
			b.WriteString(g.whitespace.ReplaceAllString(text[s.start:s.end], wsSentinel))
			last = s.end
		}
		b.WriteString(text[last:])
		out = b.String()
	}
	g.cache.Add(text, out)
	return out
}

// Restore is the inverse of Protect up to whitespace normalization:
// each sentinel becomes a single space.
func (g *Guard) Restore(text string) string {
	return strings.ReplaceAll(text, wsSentinel, " ")
}

// HasDates reports whether text contains a protected date span.
func (g *Guard) HasDates(text string) bool { return g.date.MatchString(text) }

// HasMeasurements reports whether text contains a value+unit reading.
func (g *Guard) HasMeasurements(text string) bool { return g.measurement.MatchString(text) }

// HasCodes reports whether text contains a medical or billing code.
func (g *Guard) HasCodes(text string) bool { return g.code.MatchString(text) }

func overlapsAny(spans []span, start, end int) bool {
	for _, s := range spans {
		if start < s.end && end > s.start {
			return true
		}
	}
	return false
}
