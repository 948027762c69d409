package swipe

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func qwertyPoints() map[rune]Point {
	rows := []string{"qwertyuiop", "asdfghjkl", "zxcvbnm"}
	points := make(map[rune]Point)
	for y, row := range rows {
		for x, r := range row {
			points[r] = Point{X: float64(x) + float64(y)*0.5, Y: float64(y)}
		}
	}
	return points
}

func TestNewWordlistEngineNeedsPoints(t *testing.T) {
	_, err := NewWordlistEngine([]string{"hey"}, nil)
	assert.ErrorIs(t, err, ErrNoPoints)
}

func TestPredictHey(t *testing.T) {
	e, err := NewWordlistEngine([]string{"hey", "hy", "he", "they"}, qwertyPoints())
	require.NoError(t, err)

	preds := e.Predict("hey", "", 5)
	require.NotEmpty(t, preds)
	assert.Equal(t, "hey", preds[0].Word)
	for _, p := range preds {
		assert.True(t, strings.HasPrefix(p.Word, "h"))
		assert.True(t, strings.HasSuffix(p.Word, "y"))
	}
}

func TestPredictDoubledLetters(t *testing.T) {
	e, err := NewWordlistEngine([]string{"hello"}, qwertyPoints())
	require.NoError(t, err)

	preds := e.Predict("hgfdrerkjlo", "", 5)
	require.Len(t, preds, 1)
	assert.Equal(t, "hello", preds[0].Word)
}

func TestPredictTopN(t *testing.T) {
	e, err := NewWordlistEngine([]string{"to", "too", "two", "trio"}, qwertyPoints())
	require.NoError(t, err)

	assert.Len(t, e.Predict("trewio", "", 2), 2)
	assert.Empty(t, e.Predict("", "", 5))
	assert.Empty(t, e.Predict("trewio", "", 0))
}

func TestUntraceableWordsAreDropped(t *testing.T) {
	e, err := NewWordlistEngine([]string{"héllo", "hello", "hello"}, qwertyPoints())
	require.NoError(t, err)
	assert.Equal(t, []string{"hello"}, e.words)
}

func TestLoadWordlistDefault(t *testing.T) {
	words, err := LoadWordlist("")
	require.NoError(t, err)
	assert.Contains(t, words, "hey")
	assert.NotContains(t, words, "# built-in vocabulary, most frequent first.")
}
