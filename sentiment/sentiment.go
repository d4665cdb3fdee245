// Package sentiment scores text polarity with the VADER lexicon.
package sentiment

import (
	"strings"

	"github.com/jonreiter/govader"
)

// analyzer is built once; its lexicon is read-only after construction.
var analyzer = govader.NewSentimentIntensityAnalyzer()

// Score returns the VADER compound polarity of text in [-1, 1].
// Blank text scores 0.
func Score(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	return analyzer.PolarityScores(text).Compound
}

// ScoreAll scores each text, preserving order.
func ScoreAll(texts []string) []float64 {
	out := make([]float64, len(texts))
	for i, t := range texts {
		out[i] = Score(t)
	}
	return out
}
