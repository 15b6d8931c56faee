package themes

import (
	"bufio"
	_ "embed"
	"strings"
	"unicode"
)

//go:embed stopwords.txt
var defaultStopwordsRaw string

// DefaultStopwords returns the embedded stopword list: function words,
// conversational filler, Reddit vocabulary and generic opinion words.
func DefaultStopwords() []string {
	var words []string
	scanner := bufio.NewScanner(strings.NewReader(defaultStopwordsRaw))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, strings.Fields(line)...)
	}
	return words
}

// Token keeps the surface form next to the normalized form used for grouping.
type Token struct {
	Surface string
	Norm    string
}

// Tokenizer handles text tokenization and normalization
type Tokenizer struct {
	stopwords map[string]struct{}
}

func NewTokenizer(stopwords []string) *Tokenizer {
	stops := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		stops[strings.ToLower(w)] = struct{}{}
	}
	return &Tokenizer{stopwords: stops}
}

// Tokenize splits text into lowercase tokens. Stopwords are kept so that
// phrase matching can see them; callers filter with IsStopword.
func (t *Tokenizer) Tokenize(text string) []Token {
	var tokens []Token
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		if word := cleanToken(current.String()); word != "" {
			tokens = append(tokens, Token{Surface: word, Norm: Normalize(word)})
		}
		current.Reset()
	}

	for _, r := range strings.ReplaceAll(text, "’", "'") {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '-' || r == '\'' {
			current.WriteRune(unicode.ToLower(r))
		} else {
			flush()
		}
	}
	flush()

	return tokens
}

func (t *Tokenizer) IsStopword(tok Token) bool {
	if _, ok := t.stopwords[tok.Surface]; ok {
		return true
	}
	_, ok := t.stopwords[tok.Norm]
	return ok
}

// cleanToken strips leading/trailing hyphens and apostrophes, drops a
// possessive suffix and rejects one-character and numeric-only tokens.
func cleanToken(token string) string {
	token = strings.Trim(token, "-'")
	for strings.Contains(token, "--") {
		token = strings.ReplaceAll(token, "--", "-")
	}
	token = strings.TrimSuffix(token, "'s")

	if len([]rune(token)) <= 1 || isNumericOnly(token) {
		return ""
	}
	return token
}

func isNumericOnly(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '-' && r != '\'' {
			return false
		}
	}
	return true
}

// Normalize folds common English plural forms so that near-duplicate terms
// ("batteries", "battery") share one group.
func Normalize(word string) string {
	n := len(word)
	switch {
	case n > 4 && strings.HasSuffix(word, "ies"):
		return word[:n-3] + "y"
	case n > 4 && strings.HasSuffix(word, "sses"):
		return word[:n-2]
	case n > 4 && (strings.HasSuffix(word, "ches") || strings.HasSuffix(word, "shes")):
		return word[:n-2]
	case n > 3 && strings.HasSuffix(word, "xes"):
		return word[:n-2]
	case n > 3 && strings.HasSuffix(word, "s") &&
		!strings.HasSuffix(word, "ss") && !strings.HasSuffix(word, "us") && !strings.HasSuffix(word, "is"):
		return word[:n-1]
	default:
		return word
	}
}

// NormalizePhrase applies Normalize to every word of a phrase.
func NormalizePhrase(phrase string) []string {
	words := strings.Fields(strings.ToLower(phrase))
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = Normalize(strings.Trim(w, "-'"))
	}
	return out
}
