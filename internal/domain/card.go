package domain

import "time"

// Option identifies one of the four answer slots on a card.
type Option string

const (
	OptionA Option = "A"
	OptionB Option = "B"
	OptionC Option = "C"
	OptionD Option = "D"
)

// Options lists the four slots in display order.
var Options = [4]Option{OptionA, OptionB, OptionC, OptionD}

// Valid reports whether o is one of the four slots.
func (o Option) Valid() bool {
	switch o {
	case OptionA, OptionB, OptionC, OptionD:
		return true
	}
	return false
}

// Index returns the slot's position in the options array, or -1.
func (o Option) Index() int {
	for i, s := range Options {
		if s == o {
			return i
		}
	}
	return -1
}

// CardState is the scheduling lifecycle stage of a card.
type CardState string

const (
	StateNew      CardState = "new"
	StateLearning CardState = "learning"
	StateReview   CardState = "review"
	StateRelearn  CardState = "relearn"
)

// Ease factor bounds. Every scheduling update clamps into this range.
const (
	DefaultEase = 2.4
	MinEase     = 1.8
	MaxEase     = 2.8
)

// Card is a single multiple-choice flashcard together with its
// spaced-repetition scheduling state.
type Card struct {
	ID      string    `json:"id"`
	Prompt  string    `json:"prompt"`
	Answer  string    `json:"answer"`
	Options [4]string `json:"options"`
	Correct Option    `json:"correct"`

	Ease         float64   `json:"ease"`
	IntervalDays float64   `json:"intervalDays"`
	Reps         int       `json:"reps"`
	Lapses       int       `json:"lapses"`
	DueDate      time.Time `json:"dueDate"`
	LastReviewed time.Time `json:"lastReviewed,omitzero"`
	SeenCount    int       `json:"seenCount"`
	Suspended    bool      `json:"suspended"`
	State        CardState `json:"state"`

	// SessionEncounters counts how often the card has been answered
	// correctly within the current session. Reset when a session starts.
	SessionEncounters int `json:"sessionEncounters"`
}

// WithDefaults returns a copy of c with zero-valued scheduling fields
// filled in: ease 2.4, due now, state new. Content fields are untouched.
func (c Card) WithDefaults(now time.Time) Card {
	if c.Ease == 0 {
		c.Ease = DefaultEase
	}
	if c.DueDate.IsZero() {
		c.DueDate = now
	}
	if c.State == "" {
		c.State = StateNew
	}
	return c
}

// Deck is a named, ordered collection of cards. Decks are independent
// scheduling universes: due dates and daily quotas are evaluated per deck.
type Deck struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon,omitempty"`
	Cards []Card `json:"cards"`
}

// Card returns a pointer to the card with the given id, or nil.
func (d *Deck) Card(id string) *Card {
	for i := range d.Cards {
		if d.Cards[i].ID == id {
			return &d.Cards[i]
		}
	}
	return nil
}
