package sync

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"braindrop/internal/domain"
	"braindrop/internal/storage"
)

var now = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func sourceDeck() domain.Deck {
	return domain.Deck{
		ID:   "abx",
		Name: "Antibiotics",
		Cards: []domain.Card{
			{ID: "c1", Prompt: "Prompt one", Answer: "A1", Options: [4]string{"a", "b", "c", "d"}, Correct: domain.OptionA},
			{ID: "c2", Prompt: "Prompt two", Answer: "A2", Options: [4]string{"e", "f", "g", "h"}, Correct: domain.OptionB},
		},
	}
}

func TestReconcileFirstRun(t *testing.T) {
	merged := Reconcile(nil, []domain.Deck{sourceDeck()}, now)

	if len(merged.Decks) != 1 || len(merged.Decks[0].Cards) != 2 {
		t.Fatalf("Expected source deck carried over, got %+v", merged.Decks)
	}
	c := merged.Decks[0].Cards[0]
	if c.Ease != domain.DefaultEase || c.State != domain.StateNew || !c.DueDate.Equal(now) {
		t.Errorf("Expected default-filled card, got %+v", c)
	}
	if !merged.Owns(domain.CosmeticNoAccessory) || !merged.Owns(domain.CosmeticNoPet) {
		t.Errorf("Expected baseline cosmetics, got %v", merged.Owned)
	}
}

func TestReconcilePreservesProgress(t *testing.T) {
	saved := domain.DefaultState(now)
	saved.Gold = 250
	saved.Stats.TotalReviews = 42
	savedDeck := sourceDeck()
	savedDeck.Cards[0].Reps = 5
	savedDeck.Cards[0].Ease = 2.1
	savedDeck.Cards[0].SeenCount = 6
	savedDeck.Cards[0].State = domain.StateReview
	saved.Decks = []domain.Deck{savedDeck}

	// Catalog shipped with an edited prompt for c1.
	source := sourceDeck()
	source.Cards[0].Prompt = "Prompt one, reworded"

	merged := Reconcile(saved, []domain.Deck{source}, now)

	c := merged.Decks[0].Card("c1")
	if c == nil {
		t.Fatal("Expected c1 to survive the merge")
	}
	if c.Prompt != "Prompt one, reworded" {
		t.Errorf("Expected new prompt, got %q", c.Prompt)
	}
	if c.Reps != 5 || c.Ease != 2.1 || c.SeenCount != 6 || c.State != domain.StateReview {
		t.Errorf("Expected progress preserved, got %+v", c)
	}
	if merged.Gold != 250 || merged.Stats.TotalReviews != 42 {
		t.Errorf("Expected top-level progress preserved verbatim")
	}
}

func TestReconcileAddsAndDropsCards(t *testing.T) {
	saved := domain.DefaultState(now)
	savedDeck := sourceDeck()
	savedDeck.Cards = append(savedDeck.Cards, domain.Card{ID: "gone", Prompt: "Removed", Reps: 3})
	saved.Decks = []domain.Deck{savedDeck}

	source := sourceDeck()
	source.Cards = append(source.Cards, domain.Card{
		ID: "c3", Prompt: "Brand new", Answer: "A3",
		Options: [4]string{"1", "2", "3", "4"}, Correct: domain.OptionC,
	})

	merged := Reconcile(saved, []domain.Deck{source}, now)
	deck := merged.Decks[0]

	if deck.Card("gone") != nil {
		t.Error("Expected removed card to be dropped")
	}
	added := deck.Card("c3")
	if added == nil {
		t.Fatal("Expected new catalog card to appear")
	}
	if added.Ease != domain.DefaultEase || added.State != domain.StateNew {
		t.Errorf("Expected new card default-filled, got %+v", added)
	}
	if len(deck.Cards) != 3 {
		t.Errorf("Expected 3 cards, got %d", len(deck.Cards))
	}
}

func TestReconcileNewDeck(t *testing.T) {
	saved := domain.DefaultState(now)
	saved.Decks = []domain.Deck{sourceDeck()}

	extra := domain.Deck{ID: "kidney", Name: "Kidney", Cards: []domain.Card{
		{ID: "k1", Prompt: "P", Answer: "A", Options: [4]string{"a", "b", "c", "d"}, Correct: domain.OptionD},
	}}

	merged := Reconcile(saved, []domain.Deck{sourceDeck(), extra}, now)
	if len(merged.Decks) != 2 {
		t.Fatalf("Expected 2 decks, got %d", len(merged.Decks))
	}
	if merged.Deck("kidney") == nil || merged.Deck("kidney").Cards[0].State != domain.StateNew {
		t.Error("Expected new deck default-filled")
	}
}

func TestReconcileDropsDecksRemovedFromCatalog(t *testing.T) {
	saved := domain.DefaultState(now)
	saved.Decks = []domain.Deck{sourceDeck(), {ID: "old", Name: "Old"}}

	merged := Reconcile(saved, []domain.Deck{sourceDeck()}, now)
	if merged.Deck("old") != nil {
		t.Error("Expected deck absent from catalog to be dropped")
	}
}

func TestReconcileRestoresBaselineCosmetics(t *testing.T) {
	saved := domain.DefaultState(now)
	saved.Owned = []string{"color-blue"} // old save predating the none options
	saved.Equipped = nil

	merged := Reconcile(saved, nil, now)

	for _, id := range domain.DefaultOwned {
		if !merged.Owns(id) {
			t.Errorf("Expected baseline cosmetic %s post-merge", id)
		}
	}
	if !merged.Owns("color-blue") {
		t.Error("Expected previously owned cosmetics kept")
	}
	if merged.Equipped[domain.CosmeticColor] != domain.CosmeticBaseColor {
		t.Errorf("Expected default color equipped, got %v", merged.Equipped)
	}
}

func TestRunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	deckYAML := `id: abx
name: Antibiotics
cards:
  - id: c1
    prompt: Prompt one
    answer: A1
    options: [a, b, c, d]
    correct: A
`
	if err := os.WriteFile(filepath.Join(dir, "abx.yaml"), []byte(deckYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	defaults := domain.Settings{NewPerDay: 5, ReviewsPerDay: 20, ExamDate: now.AddDate(0, 0, 14)}
	state, err := Run(db, Options{Dir: dir, Defaults: defaults}, now)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(state.Decks) != 1 || len(state.Decks[0].Cards) != 1 {
		t.Fatalf("Expected one synced deck with one card, got %+v", state.Decks)
	}
	if state.Settings.NewPerDay != 5 || state.Settings.ReviewsPerDay != 20 {
		t.Errorf("Expected configured first-run settings, got %+v", state.Settings)
	}

	// A second run must keep persisted settings over the configured defaults.
	state.Settings.NewPerDay = 7
	if err := db.SaveState(state); err != nil {
		t.Fatalf("SaveState: %v", err)
	}
	again, err := Run(db, Options{Dir: dir, Defaults: defaults}, now)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if again.Settings.NewPerDay != 7 {
		t.Errorf("Expected persisted settings to win on rerun, got %+v", again.Settings)
	}
}
