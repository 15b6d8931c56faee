package themes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tok := NewTokenizer(DefaultStopwords())

	tokens := tok.Tokenize("The Pixel's batteries don’t last -- 2024 A")
	var surfaces, norms []string
	for _, token := range tokens {
		surfaces = append(surfaces, token.Surface)
		norms = append(norms, token.Norm)
	}

	assert.Equal(t, []string{"the", "pixel", "batteries", "don't", "last"}, surfaces)
	assert.Equal(t, []string{"the", "pixel", "battery", "don't", "last"}, norms)
}

func TestIsStopword(t *testing.T) {
	tok := NewTokenizer([]string{"Thing"})

	assert.True(t, tok.IsStopword(Token{Surface: "thing", Norm: "thing"}))
	assert.True(t, tok.IsStopword(Token{Surface: "things", Norm: "thing"}))
	assert.False(t, tok.IsStopword(Token{Surface: "camera", Norm: "camera"}))
}

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"batteries": "battery",
		"classes":   "class",
		"patches":   "patch",
		"fixes":     "fix",
		"drains":    "drain",
		"apps":      "app",
		"glass":     "glass",
		"status":    "status",
		"this":      "this",
		"its":       "its",
		"camera":    "camera",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, Normalize(in))
		})
	}
}

func TestDefaultStopwords(t *testing.T) {
	words := DefaultStopwords()
	assert.Contains(t, words, "the")
	assert.Contains(t, words, "meh")
	assert.NotContains(t, words, "fast")
	assert.NotContains(t, words, "# function words")
}
