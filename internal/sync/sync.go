// Package sync reconciles the authored deck catalog with previously saved
// learner progress. It runs once at startup, before any session starts.
package sync

import (
	"fmt"
	"log/slog"
	"time"

	"braindrop/internal/catalog"
	"braindrop/internal/domain"
	"braindrop/internal/fingerprint"
	"braindrop/internal/gitsource"
	"braindrop/internal/storage"
)

// Options select where the catalog comes from and what a first run
// starts with.
type Options struct {
	Dir      string // local catalog directory
	GitURL   string // optional; when set, the catalog repo is cloned/pulled into CacheDir
	CacheDir string

	// Defaults replace the built-in settings when no profile has ever
	// been saved. The zero value keeps the built-ins.
	Defaults domain.Settings
}

// Run brings the catalog up to date, loads the saved state, merges the
// two and writes the result back. The returned state is the one the
// session controller should own.
func Run(db *storage.DB, opts Options, now time.Time) (*domain.State, error) {
	root := opts.Dir
	if opts.GitURL != "" {
		if err := gitsource.Sync(opts.GitURL, opts.CacheDir); err != nil {
			return nil, fmt.Errorf("sync catalog repo: %w", err)
		}
		root = opts.CacheDir
	}

	// No catalog source configured: serve whatever was synced before.
	if root == "" {
		saved, err := loadState(db, opts, now)
		if err != nil {
			return nil, err
		}
		return saved, nil
	}

	source, err := catalog.LoadDir(root)
	if err != nil {
		return nil, err
	}

	saved, err := loadState(db, opts, now)
	if err != nil {
		return nil, err
	}

	merged := Reconcile(saved, source, now)
	if err := db.SaveState(merged); err != nil {
		return nil, fmt.Errorf("save merged state: %w", err)
	}
	return merged, nil
}

// loadState reads the saved state and, on the very first run, swaps in
// the configured default settings.
func loadState(db *storage.DB, opts Options, now time.Time) (*domain.State, error) {
	saved, err := db.LoadState(now)
	if err != nil {
		return nil, fmt.Errorf("load saved state: %w", err)
	}
	if opts.Defaults != (domain.Settings{}) {
		has, err := db.HasProfile()
		if err != nil {
			return nil, err
		}
		if !has {
			saved.Settings = opts.Defaults
		}
	}
	return saved, nil
}

// Reconcile merges a freshly loaded catalog into previously saved state.
// Scheduling progress is kept for every card that still exists in the
// catalog, content fields are overwritten from the catalog, cards removed
// from the catalog are dropped, and catalog-only cards are default-filled.
// Top-level progress (gold, cosmetics, statistics, counters, settings) is
// preserved verbatim.
func Reconcile(saved *domain.State, source []domain.Deck, now time.Time) *domain.State {
	if saved == nil {
		saved = domain.DefaultState(now)
	}
	merged := *saved
	merged.Decks = make([]domain.Deck, 0, len(source))

	var newCards, updatedCards, droppedCards int
	for _, sourceDeck := range source {
		savedDeck := saved.Deck(sourceDeck.ID)
		if savedDeck == nil {
			deck := sourceDeck
			deck.Cards = make([]domain.Card, len(sourceDeck.Cards))
			for i, c := range sourceDeck.Cards {
				deck.Cards[i] = c.WithDefaults(now)
			}
			newCards += len(deck.Cards)
			merged.Decks = append(merged.Decks, deck)
			continue
		}

		deck := domain.Deck{ID: sourceDeck.ID, Name: sourceDeck.Name, Icon: sourceDeck.Icon}
		for _, sourceCard := range sourceDeck.Cards {
			savedCard := savedDeck.Card(sourceCard.ID)
			if savedCard == nil {
				deck.Cards = append(deck.Cards, sourceCard.WithDefaults(now))
				newCards++
				continue
			}
			if fingerprint.Hash(*savedCard) != fingerprint.Hash(sourceCard) {
				updatedCards++
			}
			card := *savedCard
			card.Prompt = sourceCard.Prompt
			card.Answer = sourceCard.Answer
			card.Options = sourceCard.Options
			card.Correct = sourceCard.Correct
			deck.Cards = append(deck.Cards, card.WithDefaults(now))
		}
		droppedCards += len(savedDeck.Cards) - countSurvivors(savedDeck, &sourceDeck)
		merged.Decks = append(merged.Decks, deck)
	}

	ensureBaseline(&merged)

	slog.Info("catalog reconciled",
		"decks", len(merged.Decks),
		"new_cards", newCards,
		"updated_cards", updatedCards,
		"dropped_cards", droppedCards,
	)
	return &merged
}

func countSurvivors(savedDeck *domain.Deck, sourceDeck *domain.Deck) int {
	n := 0
	for i := range savedDeck.Cards {
		if sourceDeck.Card(savedDeck.Cards[i].ID) != nil {
			n++
		}
	}
	return n
}

// ensureBaseline guarantees the free cosmetics are present after every
// merge, independent of save age.
func ensureBaseline(state *domain.State) {
	for _, id := range domain.DefaultOwned {
		if !state.Owns(id) {
			state.Owned = append(state.Owned, id)
		}
	}
	if state.Equipped == nil {
		state.Equipped = map[domain.CosmeticType]string{}
	}
	if state.Equipped[domain.CosmeticColor] == "" {
		state.Equipped[domain.CosmeticColor] = domain.CosmeticBaseColor
	}
}
