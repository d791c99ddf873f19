package fingerprint

import (
	"testing"

	"braindrop/internal/domain"
)

func TestNormalize(t *testing.T) {
	card := domain.Card{
		Prompt:  "  Which drug blocks beta receptors? \r\n",
		Answer:  "Propranolol.",
		Options: [4]string{"Propranolol", "Amlodipine", "Lisinopril", "Furosemide"},
		Correct: domain.OptionA,
	}
	expected := "which drug blocks beta receptors?\npropranolol.\npropranolol\namlodipine\nlisinopril\nfurosemide\nA"
	normalized := Normalize(card)

	if normalized != expected {
		t.Errorf("Expected normalized string to be '%s', but got '%s'", expected, normalized)
	}
}

func TestHash(t *testing.T) {
	t.Run("hash is deterministic", func(t *testing.T) {
		card1 := domain.Card{Prompt: "Test"}
		card2 := domain.Card{Prompt: "Test"}
		if Hash(card1) != Hash(card2) {
			t.Error("Expected hashes for identical cards to be the same")
		}
	})

	t.Run("normalization produces same hash", func(t *testing.T) {
		card1 := domain.Card{Prompt: "  what is warfarin? ", Answer: "An anticoagulant."}
		card2 := domain.Card{Prompt: "What Is Warfarin?", Answer: "An anticoagulant."}
		if Hash(card1) != Hash(card2) {
			t.Error("Expected hashes to be the same after normalization, but they were different.")
		}
	})

	t.Run("different content has different hashes", func(t *testing.T) {
		card1 := domain.Card{Prompt: "Card 1"}
		card2 := domain.Card{Prompt: "Card 2"}
		if Hash(card1) == Hash(card2) {
			t.Error("Expected hashes for different cards to be different")
		}
	})

	t.Run("progress does not affect the hash", func(t *testing.T) {
		card1 := domain.Card{Prompt: "Same", Reps: 0, Ease: 2.4}
		card2 := domain.Card{Prompt: "Same", Reps: 9, Ease: 1.8, Lapses: 3, SeenCount: 12}
		if Hash(card1) != Hash(card2) {
			t.Error("Expected scheduling state to be excluded from the hash")
		}
	})

	t.Run("correct option affects the hash", func(t *testing.T) {
		card1 := domain.Card{Prompt: "Same", Correct: domain.OptionA}
		card2 := domain.Card{Prompt: "Same", Correct: domain.OptionB}
		if Hash(card1) == Hash(card2) {
			t.Error("Expected a changed correct option to change the hash")
		}
	})
}
