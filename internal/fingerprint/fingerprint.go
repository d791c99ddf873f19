package fingerprint

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"braindrop/internal/domain"
)

// Normalize concatenates a card's learner-visible content after cleaning
// each part. It trims whitespace, lowercases, and normalizes line endings
// so that cosmetic edits do not change the fingerprint.
func Normalize(card domain.Card) string {
	normalizePart := func(part string) string {
		p := strings.ToLower(part)
		p = strings.TrimSpace(p)
		p = strings.ReplaceAll(p, "\r\n", "\n")
		return p
	}

	parts := make([]string, 0, 7)
	parts = append(parts, normalizePart(card.Prompt), normalizePart(card.Answer))
	for _, o := range card.Options {
		parts = append(parts, normalizePart(o))
	}
	parts = append(parts, string(card.Correct))

	// Joined with newlines so adjacent fields cannot run together and
	// collide, e.g. "prompt"+"answer" vs "prompta"+"nswer".
	return strings.Join(parts, "\n")
}

// Hash returns the SHA-256 of the normalized card content as a hex string.
// Scheduling state does not participate: two cards with identical content
// but different progress hash the same.
func Hash(card domain.Card) string {
	normalized := Normalize(card)
	hashBytes := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%x", hashBytes)
}
