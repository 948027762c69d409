package swipe

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"
)

//go:embed words.txt
var defaultWords string

// WordlistEngine matches traced paths against a fixed vocabulary. A word is a
// candidate when it starts and ends on the path's first and last letters and
// its letters appear in order along the path.
type WordlistEngine struct {
	words  []string
	rank   map[string]int
	points map[rune]Point
}

// LoadWordlist reads one word per line, most frequent first. An empty path
// yields the built-in list.
func LoadWordlist(path string) ([]string, error) {
	if path == "" {
		return parseWords(strings.NewReader(defaultWords))
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wordlist: %w", err)
	}
	defer file.Close()

	return parseWords(file)
}

func parseWords(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		word := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if word == "" || strings.HasPrefix(word, "#") {
			continue
		}
		words = append(words, word)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan wordlist: %w", err)
	}
	return words, nil
}

func NewWordlistFactory(words []string) Factory {
	return func(points map[rune]Point) (Engine, error) {
		e, err := NewWordlistEngine(words, points)
		if err != nil {
			return nil, err
		}
		return e, nil
	}
}

func NewWordlistEngine(words []string, points map[rune]Point) (*WordlistEngine, error) {
	if len(points) == 0 {
		return nil, ErrNoPoints
	}

	e := &WordlistEngine{
		rank:   make(map[string]int, len(words)),
		points: points,
	}

	// Words with letters off the keyboard can never be traced.
	for _, w := range words {
		if _, dup := e.rank[w]; dup || !e.traceable(w) {
			continue
		}
		e.rank[w] = len(e.words)
		e.words = append(e.words, w)
	}

	return e, nil
}

func (e *WordlistEngine) traceable(word string) bool {
	for _, r := range word {
		if _, ok := e.points[r]; !ok {
			return false
		}
	}
	return word != ""
}

func (e *WordlistEngine) Predict(path string, context string, topN int) []Prediction {
	path = strings.ToLower(path)
	if path == "" || topN <= 0 {
		return nil
	}

	pathLen := e.length(path)

	var out []Prediction
	for _, w := range e.words {
		if !matchesPath(w, path) {
			continue
		}

		// Closer trace lengths and more frequent words score higher.
		score := 1 / (1 + math.Abs(e.length(w)-pathLen))
		score += 0.1 / float64(1+e.rank[w])
		if context != "" && w == strings.ToLower(context) {
			score *= 0.5
		}
		out = append(out, Prediction{Word: w, Score: score})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})

	if len(out) > topN {
		out = out[:topN]
	}
	return out
}

// length is the polyline length through the letters of s.
func (e *WordlistEngine) length(s string) float64 {
	var total float64
	var prev *Point
	for _, r := range s {
		p, ok := e.points[r]
		if !ok {
			continue
		}
		if prev != nil {
			total += math.Hypot(p.X-prev.X, p.Y-prev.Y)
		}
		prev = &p
	}
	return total
}

func matchesPath(word, path string) bool {
	w := []rune(word)
	p := []rune(path)
	if w[0] != p[0] || w[len(w)-1] != p[len(p)-1] {
		return false
	}

	i := 0
	for _, r := range p {
		// Doubled letters are traced over a single key.
		for i < len(w) && w[i] == r {
			i++
		}
		if i == len(w) {
			return true
		}
	}
	return i == len(w)
}
