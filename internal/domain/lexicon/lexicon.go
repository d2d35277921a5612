// Package lexicon holds the keyword lists every scorer consults.
//
// Matching is deliberately shallow: a transcript is lower-cased, split on
// whitespace and stripped of surrounding punctuation, and each token is
// looked up verbatim.
package lexicon

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"
)

// Category is a topic a complete pitch is expected to cover.
type Category string

// Topic categories used for coverage scoring.
const (
	CategoryProblem         Category = "problem"
	CategorySolution        Category = "solution"
	CategoryMarket          Category = "market"
	CategoryBusinessModel   Category = "business_model"
	CategoryTraction        Category = "traction"
	CategoryDifferentiation Category = "differentiation"
)

type wordSet map[string]struct{}

func newWordSet(words []string) wordSet {
	s := make(wordSet, len(words))
	for _, w := range words {
		w = normalize(w)
		if w != "" {
			s[w] = struct{}{}
		}
	}
	return s
}

func (s wordSet) sorted() []string {
	out := make([]string, 0, len(s))
	for w := range s {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

func (s wordSet) has(w string) bool {
	_, ok := s[w]
	return ok
}

// Set is a read-only collection of classified keywords.
type Set struct {
	positive   wordSet
	negative   wordSet
	categories map[Category]wordSet
	order      []Category
	byWord     map[string]Category
}

// New builds a Set. Every categorized word is also positive. A word may only
// belong to one category.
func New(positive, negative []string, categories map[Category][]string) (*Set, error) {
	if len(categories) == 0 {
		return nil, fmt.Errorf("%w: no categories", ErrInvalidLexicon)
	}

	s := &Set{
		positive:   newWordSet(positive),
		negative:   newWordSet(negative),
		categories: make(map[Category]wordSet, len(categories)),
		byWord:     make(map[string]Category),
	}

	for cat, words := range categories {
		ws := newWordSet(words)
		if len(ws) == 0 {
			return nil, fmt.Errorf("%w: category %q is empty", ErrInvalidLexicon, cat)
		}
		for w := range ws {
			if prev, dup := s.byWord[w]; dup {
				return nil, fmt.Errorf("%w: %q listed under %q and %q", ErrInvalidLexicon, w, prev, cat)
			}
			if s.negative.has(w) {
				return nil, fmt.Errorf("%w: %q is both filler and keyword", ErrInvalidLexicon, w)
			}
			s.byWord[w] = cat
			s.positive[w] = struct{}{}
		}
		s.categories[cat] = ws
		s.order = append(s.order, cat)
	}
	sort.Slice(s.order, func(i, j int) bool { return categoryRank(s.order[i]) < categoryRank(s.order[j]) })

	return s, nil
}

// categoryRank keeps the built-in categories in pitch order and sorts custom
// ones after them alphabetically.
func categoryRank(c Category) string {
	for i, known := range defaultOrder {
		if c == known {
			return fmt.Sprintf("0%d", i)
		}
	}
	return "1" + string(c)
}

// Categories returns the categories in a stable order.
func (s *Set) Categories() []Category {
	out := make([]Category, len(s.order))
	copy(out, s.order)
	return out
}

// IsPositive reports whether a normalized token is a business keyword.
func (s *Set) IsPositive(token string) bool { return s.positive.has(token) }

// IsFiller reports whether a normalized token is a filler word.
func (s *Set) IsFiller(token string) bool { return s.negative.has(token) }

// CategoryOf returns the topic category of a normalized token.
func (s *Set) CategoryOf(token string) (Category, bool) {
	c, ok := s.byWord[token]
	return c, ok
}

// Keywords returns the words of category c in sorted order.
func (s *Set) Keywords(c Category) []string { return s.categories[c].sorted() }

// Fillers returns the filler words in sorted order.
func (s *Set) Fillers() []string { return s.negative.sorted() }

// Uncategorized returns positive words outside every category, sorted.
func (s *Set) Uncategorized() []string {
	out := make([]string, 0, len(s.positive))
	for w := range s.positive {
		if _, ok := s.byWord[w]; !ok {
			out = append(out, w)
		}
	}
	sort.Strings(out)
	return out
}

// Counts summarises a token sequence against a Set.
type Counts struct {
	Words       int
	Positive    int
	Filler      int
	Categorized int
	ByCategory  map[Category]int
}

// Covered returns how many distinct categories were hit at least once.
func (c Counts) Covered() int {
	n := 0
	for _, hits := range c.ByCategory {
		if hits > 0 {
			n++
		}
	}
	return n
}

// FillerRatio is the filler fraction of all words, 0 for no words.
func (c Counts) FillerRatio() float64 {
	if c.Words == 0 {
		return 0
	}
	return float64(c.Filler) / float64(c.Words)
}

// Classify counts keyword and filler occurrences in tokens.
func (s *Set) Classify(tokens []string) Counts {
	c := Counts{Words: len(tokens), ByCategory: make(map[Category]int)}
	for _, t := range tokens {
		if s.negative.has(t) {
			c.Filler++
			continue
		}
		if s.positive.has(t) {
			c.Positive++
		}
		if cat, ok := s.byWord[t]; ok {
			c.Categorized++
			c.ByCategory[cat]++
		}
	}
	return c
}

// Tokenize lower-cases text, splits it on whitespace and strips leading and
// trailing punctuation. Tokens that are pure punctuation are dropped.
func Tokenize(text string) []string {
	fields := strings.Fields(text)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if t := normalize(f); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// CommonPrefix returns how many leading tokens a and b share. Live
// transcripts are full snapshots that a recogniser may revise, so only the
// tokens past this point are new.
func CommonPrefix(a, b []string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

func normalize(word string) string {
	return strings.TrimFunc(strings.ToLower(word), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

var (
	defaultOnce sync.Once
	defaultSet  *Set
)

// Default returns the built-in lexicon. It is built once per process.
func Default() *Set {
	defaultOnce.Do(func() {
		s, err := New(defaultPositive, defaultNegative, defaultCategories)
		if err != nil {
			panic("lexicon: invalid built-in lexicon: " + err.Error())
		}
		defaultSet = s
	})
	return defaultSet
}
