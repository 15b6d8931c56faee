package themes

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed taxonomy.yaml
var defaultTaxonomyRaw []byte

type TaxonomyConfig struct {
	Themes []TaxonomyEntry `yaml:"themes"`
}

type TaxonomyEntry struct {
	Label    string   `yaml:"label"`
	Keywords []string `yaml:"keywords"`
}

// Taxonomy maps curated keywords and phrases onto theme labels.
type Taxonomy struct {
	phrases map[string]string // normalized phrase → label
	maxLen  int
	labels  []string
}

func NewTaxonomy(cfg TaxonomyConfig) (*Taxonomy, error) {
	t := &Taxonomy{phrases: make(map[string]string), maxLen: 1}
	for _, entry := range cfg.Themes {
		label := strings.TrimSpace(entry.Label)
		if label == "" {
			return nil, fmt.Errorf("taxonomy entry with keywords %v has no label", entry.Keywords)
		}
		t.labels = append(t.labels, label)
		for _, kw := range entry.Keywords {
			words := NormalizePhrase(kw)
			if len(words) == 0 {
				continue
			}
			key := strings.Join(words, " ")
			if prev, ok := t.phrases[key]; ok && prev != label {
				return nil, fmt.Errorf("keyword %q is claimed by both %q and %q", kw, prev, label)
			}
			t.phrases[key] = label
			if len(words) > t.maxLen {
				t.maxLen = len(words)
			}
		}
	}
	return t, nil
}

func ParseTaxonomy(data []byte) (*Taxonomy, error) {
	var cfg TaxonomyConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse taxonomy: %w", err)
	}
	return NewTaxonomy(cfg)
}

func LoadTaxonomy(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy %s: %w", path, err)
	}
	return ParseTaxonomy(data)
}

// DefaultTaxonomy returns the embedded product-feedback taxonomy.
func DefaultTaxonomy() *Taxonomy {
	t, err := ParseTaxonomy(defaultTaxonomyRaw)
	if err != nil {
		panic(fmt.Sprintf("embedded taxonomy is invalid: %v", err))
	}
	return t
}

func (t *Taxonomy) Labels() []string {
	return append([]string(nil), t.labels...)
}

// Match applies greedy longest-match at the start of tokens and returns the
// theme label and the number of tokens consumed, or ("", 0).
func (t *Taxonomy) Match(tokens []Token) (string, int) {
	maxPhrase := t.maxLen
	if maxPhrase > len(tokens) {
		maxPhrase = len(tokens)
	}
	for n := maxPhrase; n >= 1; n-- {
		parts := make([]string, n)
		for i := 0; i < n; i++ {
			parts[i] = tokens[i].Norm
		}
		if label, ok := t.phrases[strings.Join(parts, " ")]; ok {
			return label, n
		}
	}
	return "", 0
}
