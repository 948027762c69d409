package keyboard

import (
	"unicode"
	"unicode/utf8"

	"codeberg.org/miketth/vrboard/pkg/keymap"
	"codeberg.org/miketth/vrboard/pkg/layout"
	"codeberg.org/miketth/vrboard/pkg/swipe"
	"go.uber.org/zap"
)

// BuildPointMap maps every letter on the layout to the position of its key.
// When a letter appears twice the later key wins.
func BuildPointMap(km *keymap.Keymap, l *layout.Layout) map[rune]swipe.Point {
	points := make(map[rune]swipe.Point)
	hasAltGr := km != nil && km.HasAltGr()

	var y float32
	for row := range l.MainLayout {
		var x float32
		for col := range l.MainLayout[row] {
			data, ok := l.GetKeyData(km, hasAltGr, col, row)
			if ok && data.CapType == layout.Letter && len(data.Label) > 0 {
				if r, _ := utf8.DecodeRuneInString(data.Label[0]); r != utf8.RuneError {
					points[unicode.ToLower(r)] = swipe.Point{X: float64(x), Y: float64(y)}
				}
			}
			x += l.Width(col, row)
		}
		y += l.RowHeight
	}

	return points
}

func newSwipeEngine(factory swipe.Factory, km *keymap.Keymap, l *layout.Layout, log *zap.SugaredLogger) swipe.Engine {
	if factory == nil {
		return nil
	}

	engine, err := factory(BuildPointMap(km, l))
	if err != nil {
		log.Errorw("load swipe engine", "keymap", keymapName(km), "error", err)
		return nil
	}

	log.Infow("swipe engine created", "keymap", keymapName(km))
	return engine
}

func keymapName(km *keymap.Keymap) string {
	if km == nil {
		return ""
	}
	return km.String()
}
