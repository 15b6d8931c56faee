package themes

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/models"
)

// Document is one text of the corpus together with the ID of the item it
// came from.
type Document struct {
	ID   string
	Text string
}

// FromTexts wraps bare texts as documents identified by their position.
func FromTexts(texts []string) []Document {
	docs := make([]Document, len(texts))
	for i, text := range texts {
		docs[i] = Document{ID: strconv.Itoa(i), Text: text}
	}
	return docs
}

func FromItems(items []models.ScoredItem) []Document {
	docs := make([]Document, len(items))
	for i, item := range items {
		docs[i] = Document{ID: item.ID, Text: item.Text}
	}
	return docs
}

type Extractor struct {
	tokenizer *Tokenizer
	taxonomy  *Taxonomy
}

type Option func(*Extractor)

// WithTaxonomy replaces the default taxonomy; nil disables curated grouping.
func WithTaxonomy(t *Taxonomy) Option {
	return func(e *Extractor) { e.taxonomy = t }
}

func WithStopwords(words []string) Option {
	return func(e *Extractor) { e.tokenizer = NewTokenizer(words) }
}

// NewExtractor builds an extractor with the embedded stopwords and taxonomy.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		tokenizer: NewTokenizer(DefaultStopwords()),
		taxonomy:  DefaultTaxonomy(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type group struct {
	label    string
	curated  bool
	docs     map[int]struct{}
	itemIDs  []string
	mentions int
	surfaces map[string]int
}

func (g *group) add(docIndex int, docID, surface string) {
	g.mentions++
	g.surfaces[surface]++
	if _, seen := g.docs[docIndex]; !seen {
		g.docs[docIndex] = struct{}{}
		g.itemIDs = append(g.itemIDs, docID)
	}
}

// Extract returns at most topN themes ordered by weight (the number of
// distinct documents mentioning the theme) descending, then label ascending,
// curated themes before free terms of the same label.
func (e *Extractor) Extract(docs []Document, topN int) ([]models.Theme, error) {
	if topN < 1 {
		return nil, fmt.Errorf("%w: topN must be >= 1, got %d", models.ErrInvalidArgument, topN)
	}

	groups := make(map[string]*group)
	lookup := func(key, label string, curated bool) *group {
		g, ok := groups[key]
		if !ok {
			g = &group{label: label, curated: curated, docs: make(map[int]struct{}), surfaces: make(map[string]int)}
			groups[key] = g
		}
		return g
	}

	for di, doc := range docs {
		tokens := e.tokenizer.Tokenize(doc.Text)
		for i := 0; i < len(tokens); {
			if e.taxonomy != nil {
				if label, n := e.taxonomy.Match(tokens[i:]); n > 0 {
					lookup("curated:"+label, label, true).add(di, doc.ID, joinSurfaces(tokens[i:i+n]))
					i += n
					continue
				}
			}
			tok := tokens[i]
			i++
			if e.tokenizer.IsStopword(tok) {
				continue
			}
			lookup("term:"+tok.Norm, "", false).add(di, doc.ID, tok.Surface)
		}
	}

	type ranked struct {
		key   string
		theme models.Theme
	}
	candidates := make([]ranked, 0, len(groups))
	for key, g := range groups {
		label := g.label
		if !g.curated {
			label = dominantSurface(g.surfaces)
		}
		candidates = append(candidates, ranked{key: key, theme: models.Theme{
			Label:    label,
			Weight:   float64(len(g.docs)),
			Mentions: g.mentions,
			Keywords: sortedKeys(g.surfaces),
			ItemIDs:  g.itemIDs,
		}})
	}

	// A curated label can equal a free term's surface; the group key keeps
	// the order total.
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i].theme, candidates[j].theme
		if a.Weight != b.Weight {
			return a.Weight > b.Weight
		}
		if a.Label != b.Label {
			return a.Label < b.Label
		}
		return candidates[i].key < candidates[j].key
	})

	themes := make([]models.Theme, len(candidates))
	for i, c := range candidates {
		themes[i] = c.theme
	}

	if len(themes) > topN {
		themes = themes[:topN]
	}
	return themes, nil
}

func joinSurfaces(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.Surface
	}
	return strings.Join(parts, " ")
}

// dominantSurface picks the most frequent surface form, breaking ties by
// lexical order.
func dominantSurface(surfaces map[string]int) string {
	best, bestCount := "", -1
	for _, s := range sortedKeys(surfaces) {
		if surfaces[s] > bestCount {
			best, bestCount = s, surfaces[s]
		}
	}
	return best
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
