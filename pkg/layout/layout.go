package layout

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed keyboard.yaml
var defaultLayout []byte

var ErrInvalidLayout = errors.New("invalid layout")

type ExecCommand struct {
	Press   []string `yaml:"press"`
	Release []string `yaml:"release"`
}

// Layout is the static description of the rendered keyboard.
type Layout struct {
	AutoLabels   *bool                  `yaml:"auto_labels"`
	RowSize      float32                `yaml:"row_size"`
	RowHeight    float32                `yaml:"row_height"`
	MainLayout   [][]string             `yaml:"main_layout"`
	KeySizes     [][]float32            `yaml:"key_sizes"`
	Macros       map[string][]string    `yaml:"macros"`
	ExecCommands map[string]ExecCommand `yaml:"exec_commands"`
	Labels       map[string][]string    `yaml:"labels"`
}

// Load reads a layout file, or the built-in layout when path is empty.
func Load(path string) (*Layout, error) {
	if path == "" {
		return Parse(defaultLayout)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}

	return Parse(data)
}

func Parse(data []byte) (*Layout, error) {
	l := &Layout{}
	if err := yaml.Unmarshal(data, l); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	if l.RowHeight <= 0 {
		l.RowHeight = 1.0
	}

	if err := l.validate(); err != nil {
		return nil, err
	}

	return l, nil
}

func (l *Layout) validate() error {
	if len(l.MainLayout) == 0 {
		return fmt.Errorf("no rows: %w", ErrInvalidLayout)
	}
	if len(l.KeySizes) != len(l.MainLayout) {
		return fmt.Errorf("%d rows but %d key size rows: %w", len(l.MainLayout), len(l.KeySizes), ErrInvalidLayout)
	}

	for row := range l.MainLayout {
		if len(l.MainLayout[row]) != len(l.KeySizes[row]) {
			return fmt.Errorf("row %d has %d keys but %d sizes: %w",
				row, len(l.MainLayout[row]), len(l.KeySizes[row]), ErrInvalidLayout)
		}
	}

	for name, verbs := range l.Macros {
		if _, err := parseMacro(verbs); err != nil {
			return fmt.Errorf("macro %q: %w", name, err)
		}
	}

	for name, cmd := range l.ExecCommands {
		if len(cmd.Press) == 0 {
			return fmt.Errorf("exec command %q has no program: %w", name, ErrInvalidLayout)
		}
	}

	if l.RowSize <= 0 {
		for row := range l.KeySizes {
			var width float32
			for _, w := range l.KeySizes[row] {
				width += w
			}
			l.RowSize = max(l.RowSize, width)
		}
	}

	return nil
}

func (l *Layout) AutoLabelsEnabled() bool {
	return l.AutoLabels == nil || *l.AutoLabels
}

// Height is the layout height in key units.
func (l *Layout) Height() float32 {
	return float32(len(l.MainLayout)) * l.RowHeight
}

func (l *Layout) Width(col, row int) float32 {
	return l.KeySizes[row][col]
}
