package keymap

import "github.com/holoplot/go-evdev"

type Level int

const (
	LevelPlain Level = iota
	LevelShift
	LevelAltGr
	LevelShiftAltGr
)

type levels [4]string

var usSymbols = map[evdev.EvCode]levels{
	evdev.KEY_GRAVE:      {"`", "~"},
	evdev.KEY_1:          {"1", "!"},
	evdev.KEY_2:          {"2", "@"},
	evdev.KEY_3:          {"3", "#"},
	evdev.KEY_4:          {"4", "$"},
	evdev.KEY_5:          {"5", "%"},
	evdev.KEY_6:          {"6", "^"},
	evdev.KEY_7:          {"7", "&"},
	evdev.KEY_8:          {"8", "*"},
	evdev.KEY_9:          {"9", "("},
	evdev.KEY_0:          {"0", ")"},
	evdev.KEY_MINUS:      {"-", "_"},
	evdev.KEY_EQUAL:      {"=", "+"},
	evdev.KEY_Q:          {"q", "Q"},
	evdev.KEY_W:          {"w", "W"},
	evdev.KEY_E:          {"e", "E"},
	evdev.KEY_R:          {"r", "R"},
	evdev.KEY_T:          {"t", "T"},
	evdev.KEY_Y:          {"y", "Y"},
	evdev.KEY_U:          {"u", "U"},
	evdev.KEY_I:          {"i", "I"},
	evdev.KEY_O:          {"o", "O"},
	evdev.KEY_P:          {"p", "P"},
	evdev.KEY_LEFTBRACE:  {"[", "{"},
	evdev.KEY_RIGHTBRACE: {"]", "}"},
	evdev.KEY_BACKSLASH:  {"\\", "|"},
	evdev.KEY_A:          {"a", "A"},
	evdev.KEY_S:          {"s", "S"},
	evdev.KEY_D:          {"d", "D"},
	evdev.KEY_F:          {"f", "F"},
	evdev.KEY_G:          {"g", "G"},
	evdev.KEY_H:          {"h", "H"},
	evdev.KEY_J:          {"j", "J"},
	evdev.KEY_K:          {"k", "K"},
	evdev.KEY_L:          {"l", "L"},
	evdev.KEY_SEMICOLON:  {";", ":"},
	evdev.KEY_APOSTROPHE: {"'", "\""},
	evdev.KEY_Z:          {"z", "Z"},
	evdev.KEY_X:          {"x", "X"},
	evdev.KEY_C:          {"c", "C"},
	evdev.KEY_V:          {"v", "V"},
	evdev.KEY_B:          {"b", "B"},
	evdev.KEY_N:          {"n", "N"},
	evdev.KEY_M:          {"m", "M"},
	evdev.KEY_COMMA:      {",", "<"},
	evdev.KEY_DOT:        {".", ">"},
	evdev.KEY_SLASH:      {"/", "?"},
	evdev.KEY_102ND:      {"\\", "|"},
}

// layoutOverrides lists the keys that differ from the us table.
var layoutOverrides = map[string]map[evdev.EvCode]levels{
	"de": {
		evdev.KEY_GRAVE:      {"^", "°", "′", "″"},
		evdev.KEY_2:          {"2", "\"", "²"},
		evdev.KEY_3:          {"3", "§", "³"},
		evdev.KEY_6:          {"6", "&"},
		evdev.KEY_7:          {"7", "/", "{"},
		evdev.KEY_8:          {"8", "(", "["},
		evdev.KEY_9:          {"9", ")", "]"},
		evdev.KEY_0:          {"0", "=", "}"},
		evdev.KEY_MINUS:      {"ß", "?", "\\", "ẞ"},
		evdev.KEY_EQUAL:      {"´", "`"},
		evdev.KEY_Q:          {"q", "Q", "@"},
		evdev.KEY_E:          {"e", "E", "€"},
		evdev.KEY_Y:          {"z", "Z"},
		evdev.KEY_LEFTBRACE:  {"ü", "Ü"},
		evdev.KEY_RIGHTBRACE: {"+", "*", "~"},
		evdev.KEY_BACKSLASH:  {"#", "'"},
		evdev.KEY_SEMICOLON:  {"ö", "Ö"},
		evdev.KEY_APOSTROPHE: {"ä", "Ä"},
		evdev.KEY_Z:          {"y", "Y"},
		evdev.KEY_M:          {"m", "M", "µ"},
		evdev.KEY_COMMA:      {",", ";"},
		evdev.KEY_DOT:        {".", ":"},
		evdev.KEY_SLASH:      {"-", "_"},
		evdev.KEY_102ND:      {"<", ">", "|"},
	},
	"fr": {
		evdev.KEY_GRAVE:      {"²", ""},
		evdev.KEY_1:          {"&", "1"},
		evdev.KEY_2:          {"é", "2", "~"},
		evdev.KEY_3:          {"\"", "3", "#"},
		evdev.KEY_4:          {"'", "4", "{"},
		evdev.KEY_5:          {"(", "5", "["},
		evdev.KEY_6:          {"-", "6", "|"},
		evdev.KEY_7:          {"è", "7", "`"},
		evdev.KEY_8:          {"_", "8", "\\"},
		evdev.KEY_9:          {"ç", "9", "^"},
		evdev.KEY_0:          {"à", "0", "@"},
		evdev.KEY_MINUS:      {")", "°", "]"},
		evdev.KEY_EQUAL:      {"=", "+", "}"},
		evdev.KEY_Q:          {"a", "A"},
		evdev.KEY_W:          {"z", "Z"},
		evdev.KEY_E:          {"e", "E", "€"},
		evdev.KEY_LEFTBRACE:  {"^", "¨"},
		evdev.KEY_RIGHTBRACE: {"$", "£", "¤"},
		evdev.KEY_BACKSLASH:  {"*", "µ"},
		evdev.KEY_A:          {"q", "Q"},
		evdev.KEY_SEMICOLON:  {"m", "M"},
		evdev.KEY_APOSTROPHE: {"ù", "%"},
		evdev.KEY_Z:          {"w", "W"},
		evdev.KEY_M:          {",", "?"},
		evdev.KEY_COMMA:      {";", "."},
		evdev.KEY_DOT:        {":", "/"},
		evdev.KEY_SLASH:      {"!", "§"},
		evdev.KEY_102ND:      {"<", ">"},
	},
}

var merged = map[string]map[evdev.EvCode]levels{}

func init() {
	for layout, overrides := range layoutOverrides {
		table := make(map[evdev.EvCode]levels, len(usSymbols))
		for code, lv := range usSymbols {
			table[code] = lv
		}
		for code, lv := range overrides {
			table[code] = lv
		}
		merged[layout] = table
	}
}

// symbolsFor returns the table for a layout. Layouts without a table fall back to us.
func symbolsFor(layout string) map[evdev.EvCode]levels {
	if table, ok := merged[layout]; ok {
		return table
	}
	return usSymbols
}
