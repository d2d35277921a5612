package lexicon

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileFormat is the on-disk layout of a custom lexicon:
//
//	positive: [investment, team]
//	negative: [um, uh]
//	categories:
//	  problem: [pain, problem]
//	  solution: [platform]
type fileFormat struct {
	Positive   []string              `yaml:"positive"`
	Negative   []string              `yaml:"negative"`
	Categories map[Category][]string `yaml:"categories"`
}

// Parse builds a Set from YAML. A document that omits the filler list keeps
// the built-in one.
func Parse(data []byte) (*Set, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadLexicon, err)
	}
	if f.Negative == nil {
		f.Negative = defaultNegative
	}
	return New(f.Positive, f.Negative, f.Categories)
}

// LoadFile reads a YAML lexicon from path.
func LoadFile(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadLexicon, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
