// Package catalog loads deck definitions from YAML files. The catalog is
// the authoritative source of card content; learner progress never lives
// in it.
package catalog

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.yaml.in/yaml/v3"

	"braindrop/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type deckFile struct {
	ID    string     `yaml:"id" validate:"required"`
	Name  string     `yaml:"name" validate:"required"`
	Icon  string     `yaml:"icon"`
	Cards []cardFile `yaml:"cards" validate:"min=1,dive"`
}

type cardFile struct {
	ID      string   `yaml:"id" validate:"required"`
	Prompt  string   `yaml:"prompt" validate:"required"`
	Answer  string   `yaml:"answer" validate:"required"`
	Options []string `yaml:"options" validate:"len=4,dive,required"`
	Correct string   `yaml:"correct" validate:"required,oneof=A B C D"`
}

// Parse reads a single deck definition from r.
func Parse(r io.Reader) (domain.Deck, error) {
	var df deckFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&df); err != nil {
		return domain.Deck{}, fmt.Errorf("decode deck: %w", err)
	}
	if err := validate.Struct(df); err != nil {
		return domain.Deck{}, fmt.Errorf("invalid deck %q: %w", df.ID, err)
	}

	deck := domain.Deck{ID: df.ID, Name: df.Name, Icon: df.Icon}
	seen := make(map[string]bool, len(df.Cards))
	for _, cf := range df.Cards {
		if seen[cf.ID] {
			return domain.Deck{}, fmt.Errorf("deck %q: duplicate card id %q", df.ID, cf.ID)
		}
		seen[cf.ID] = true
		card := domain.Card{
			ID:      cf.ID,
			Prompt:  cf.Prompt,
			Answer:  cf.Answer,
			Correct: domain.Option(cf.Correct),
		}
		copy(card.Options[:], cf.Options)
		deck.Cards = append(deck.Cards, card)
	}
	return deck, nil
}

// ParseFile reads a deck definition from the file at path.
func ParseFile(path string) (domain.Deck, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Deck{}, err
	}
	defer f.Close()

	deck, err := Parse(f)
	if err != nil {
		return domain.Deck{}, fmt.Errorf("%s: %w", path, err)
	}
	return deck, nil
}

// LoadDir walks root and loads every .yaml/.yml file as a deck, in lexical
// walk order. Duplicate deck ids across files are an error.
func LoadDir(root string) ([]domain.Deck, error) {
	var decks []domain.Deck
	seen := make(map[string]string)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(d.Name()))
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		deck, err := ParseFile(path)
		if err != nil {
			return err
		}
		if prev, ok := seen[deck.ID]; ok {
			return fmt.Errorf("deck id %q defined in both %s and %s", deck.ID, prev, path)
		}
		seen[deck.ID] = path
		decks = append(decks, deck)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load catalog from %s: %w", root, err)
	}
	return decks, nil
}
