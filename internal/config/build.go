package config

import (
	"fmt"

	"github.com/okian/pitchperfect/internal/domain/investor"
	"github.com/okian/pitchperfect/internal/domain/lexicon"
	"github.com/okian/pitchperfect/internal/domain/scoring"
)

// Lexicon returns the configured word lists.
func (c *Config) Lexicon() (*lexicon.Set, error) {
	if c.LexiconFile == "" {
		return lexicon.Default(), nil
	}
	lex, err := lexicon.LoadFile(c.LexiconFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	return lex, nil
}

// Engine builds the scoring engine described by the configuration.
func (c *Config) Engine() (*scoring.Engine, error) {
	lex, err := c.Lexicon()
	if err != nil {
		return nil, err
	}
	return scoring.NewEngine(
		scoring.WithLexicon(lex),
		scoring.WithPolicy(c.Scoring),
		scoring.WithCombo(c.Combo),
		scoring.WithAchievements(c.Achievements),
	), nil
}

// Catalog builds the investor and power-up tables.
func (c *Config) Catalog() (*investor.Catalog, error) {
	return investor.NewCatalog(c.Investors, c.PowerUps, c.PowerUpChance)
}
