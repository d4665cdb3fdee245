package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore_Empty(t *testing.T) {
	assert.Equal(t, 0.0, Score(""))
	assert.Equal(t, 0.0, Score("   \n"))
}

func TestScore_Deterministic(t *testing.T) {
	text := "The new release is great, but support was slow."
	assert.Equal(t, Score(text), Score(text))
}

func TestScore_Polarity(t *testing.T) {
	pos := Score("I love this, it is wonderful and amazing!")
	neg := Score("This is terrible, awful and I hate it.")

	assert.Greater(t, pos, 0.0)
	assert.Less(t, neg, 0.0)
	for _, s := range []float64{pos, neg} {
		assert.GreaterOrEqual(t, s, -1.0)
		assert.LessOrEqual(t, s, 1.0)
	}
}

func TestScoreAll_Order(t *testing.T) {
	texts := []string{"", "I love it", "I hate it"}
	scores := ScoreAll(texts)

	assert.Len(t, scores, 3)
	assert.Equal(t, 0.0, scores[0])
	assert.Equal(t, Score(texts[1]), scores[1])
	assert.Equal(t, Score(texts[2]), scores[2])
}
