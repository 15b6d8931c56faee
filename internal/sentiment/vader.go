package sentiment

import (
	"html"
	"regexp"
	"strings"
	"sync"

	"github.com/jonreiter/govader"
	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"
)

var (
	markdownLinkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern          = regexp.MustCompile(`https?://\S+|www\.\S+`)

	stripPolicy = bluemonday.StrictPolicy()

	vaderOnce     sync.Once
	vaderAnalyzer *govader.SentimentIntensityAnalyzer
)

func RemoveLinks(input string) string {
	input = markdownLinkPattern.ReplaceAllString(input, "$1") // Keep only the text
	return urlPattern.ReplaceAllString(input, "")
}

// ConvertMarkdownToText renders Reddit markdown and strips the resulting HTML
// so only the readable text is left.
func ConvertMarkdownToText(input string) string {
	output := blackfriday.Run([]byte(RemoveLinks(input)), blackfriday.WithNoExtensions())
	plainText := html.UnescapeString(stripPolicy.Sanitize(string(output)))

	return strings.Join(strings.Fields(plainText), " ")
}

// VaderEstimator returns the VADER compound score. The lexicon is loaded once
// per process and shared by every estimator value.
type VaderEstimator struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVaderEstimator() *VaderEstimator {
	vaderOnce.Do(func() {
		vaderAnalyzer = govader.NewSentimentIntensityAnalyzer()
	})
	return &VaderEstimator{analyzer: vaderAnalyzer}
}

func (v *VaderEstimator) Name() string { return "vader" }

func (v *VaderEstimator) Polarity(text string) (float64, error) {
	return v.analyzer.PolarityScores(text).Compound, nil
}
