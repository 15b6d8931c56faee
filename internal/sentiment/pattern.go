package sentiment

import (
	"bufio"
	_ "embed"
	"strconv"
	"strings"
	"sync"
	"unicode"
)

//go:embed lexicon/pattern_en.txt
var patternLexiconRaw string

var (
	patternOnce    sync.Once
	patternLexicon map[string]float64
)

var intensifiers = map[string]float64{
	"absolutely": 1.5,
	"extremely":  1.5,
	"incredibly": 1.5,
	"really":     1.3,
	"so":         1.3,
	"super":      1.3,
	"totally":    1.3,
	"very":       1.3,
	"pretty":     1.1,
	"quite":      1.1,
	"somewhat":   0.7,
	"kinda":      0.7,
	"slightly":   0.5,
}

var negations = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "nothing": {}, "hardly": {}, "without": {},
	"dont": {}, "cant": {}, "wont": {}, "isnt": {}, "wasnt": {}, "doesnt": {}, "didnt": {},
}

const negationWindow = 2

func loadPatternLexicon() map[string]float64 {
	patternOnce.Do(func() {
		patternLexicon = make(map[string]float64, 256)
		scanner := bufio.NewScanner(strings.NewReader(patternLexiconRaw))
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			fields := strings.Fields(line)
			if len(fields) != 2 {
				continue
			}
			value, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				continue
			}
			patternLexicon[fields[0]] = value
		}
	})
	return patternLexicon
}

// PatternEstimator averages the polarity of the opinion words found in a text,
// scaling a word by a directly preceding intensifier and flipping it at half
// strength when a negation appears shortly before it.
type PatternEstimator struct {
	lexicon map[string]float64
}

func NewPatternEstimator() *PatternEstimator {
	return &PatternEstimator{lexicon: loadPatternLexicon()}
}

func (p *PatternEstimator) Name() string { return "pattern" }

func (p *PatternEstimator) Polarity(text string) (float64, error) {
	words := patternTokens(text)

	var sum float64
	var assessments int
	for i, word := range words {
		value, ok := p.lexicon[word]
		if !ok {
			continue
		}
		if i > 0 {
			if factor, ok := intensifiers[words[i-1]]; ok {
				value *= factor
			}
		}
		for j := i - 1; j >= 0 && j >= i-negationWindow; j-- {
			if isNegation(words[j]) {
				value *= -0.5
				break
			}
		}
		sum += value
		assessments++
	}

	if assessments == 0 {
		return 0, nil
	}
	return clamp(sum / float64(assessments)), nil
}

func isNegation(word string) bool {
	if _, ok := negations[word]; ok {
		return true
	}
	return strings.HasSuffix(word, "n't")
}

func patternTokens(text string) []string {
	text = strings.ReplaceAll(strings.ToLower(text), "’", "'")
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
	words := fields[:0]
	for _, f := range fields {
		if f = strings.Trim(f, "'"); f != "" {
			words = append(words, f)
		}
	}
	return words
}

func clamp(v float64) float64 {
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	default:
		return v
	}
}
