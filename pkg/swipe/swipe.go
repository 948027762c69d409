package swipe

import "errors"

var ErrNoPoints = errors.New("no key positions to build an engine from")

// Point is a key center in layout units.
type Point struct {
	X float64
	Y float64
}

type Prediction struct {
	Word  string
	Score float64
}

// Engine ranks words for a traced path of letters.
type Engine interface {
	Predict(path string, context string, topN int) []Prediction
}

// Factory builds an engine for one keyboard geometry.
type Factory func(points map[rune]Point) (Engine, error)
