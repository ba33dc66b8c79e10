package sentiment

import (
	"context"
	"html"
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"

	"github.com/spacesedan/insightsyn/internal/models"
)

const (
	LabelPositive = "POSITIVE"
	LabelNegative = "NEGATIVE"
)

var (
	linkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern  = regexp.MustCompile(`https?://\S+|www\.\S+`)
	tagPattern  = regexp.MustCompile(`<[^>]*>`)
)

func RemoveLinks(input string) string {
	input = linkPattern.ReplaceAllString(input, "$1") // Keep only the text
	input = urlPattern.ReplaceAllString(input, "")

	return input
}

// ConvertMarkdownToText renders markdown and flattens the result to a single
// line of plain text without links.
func ConvertMarkdownToText(input string) string {
	input = RemoveLinks(input)
	// no smartypants, quotes and dashes must reach the models untouched
	renderer := blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{})
	output := blackfriday.Run([]byte(input), blackfriday.WithNoExtensions(), blackfriday.WithRenderer(renderer))
	stripped := html.UnescapeString(tagPattern.ReplaceAllString(string(output), " "))

	return strings.Join(strings.Fields(stripped), " ")
}

// VaderClassifier is a lexicon-based stand-in for the sentiment model. It
// needs no weights, so it also serves when the model cannot be loaded.
type VaderClassifier struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVaderClassifier() *VaderClassifier {
	return &VaderClassifier{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func (v *VaderClassifier) AnalyzeWithVADER(text string) float64 {
	plainText := ConvertMarkdownToText(text)
	return v.analyzer.PolarityScores(plainText).Compound
}

// Classify maps the VADER compound score onto the binary label set of the
// sentiment model, best prediction first.
func (v *VaderClassifier) Classify(_ context.Context, text string) ([]models.Prediction, error) {
	compound := v.AnalyzeWithVADER(text)
	positive := (compound + 1) / 2

	predictions := []models.Prediction{
		{Label: LabelPositive, Score: positive},
		{Label: LabelNegative, Score: 1 - positive},
	}
	if compound < 0 {
		predictions[0], predictions[1] = predictions[1], predictions[0]
	}
	return predictions, nil
}
