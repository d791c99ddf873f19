package session

import (
	"github.com/google/uuid"

	"braindrop/internal/domain"
	"braindrop/internal/srs"
)

// View is a point-in-time snapshot of the session for rendering. Card is
// nil when no card is active (idle or complete).
type View struct {
	SessionID  uuid.UUID         `json:"sessionId"`
	DeckID     string            `json:"deckId"`
	Phase      Phase             `json:"phase"`
	Card       *domain.Card      `json:"card,omitempty"`
	Index      int               `json:"index"`
	BatchSize  int               `json:"batchSize"`
	Remaining  int               `json:"remaining"`
	TotalCards int               `json:"totalCards"`
	Score      int               `json:"score"`
	Eliminated []domain.Option   `json:"eliminated"`
	Attempts   int               `json:"attempts"`
	Feedback   Feedback          `json:"feedback"`
	Gold       int               `json:"gold"`
	Studied    domain.DailyStudy `json:"studiedToday"`
}

// View returns the current session snapshot.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		SessionID:  c.sessionID,
		DeckID:     c.deckID,
		Phase:      c.phase,
		Index:      c.idx,
		Remaining:  len(c.snapshot),
		TotalCards: c.originalSize,
		Score:      c.score,
		Eliminated: append([]domain.Option(nil), c.eliminated...),
		Attempts:   c.attempts,
		Feedback:   c.feedback,
		Gold:       c.state.Gold,
		Studied:    c.state.Studied.Effective(c.now()),
	}
	switch c.phase {
	case PhaseLearn:
		v.BatchSize = len(c.learning)
		if c.idx < len(c.learning) {
			card := c.learning[c.idx]
			v.Card = &card
		}
	case PhaseDrag:
		v.BatchSize = len(c.testing)
		if c.idx < len(c.testing) {
			card := c.testing[c.idx]
			v.Card = &card
		}
	}
	return v
}

// DeckSummary is the deck-list entry: totals plus what is due today.
type DeckSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Icon      string `json:"icon"`
	Total     int    `json:"total"`
	New       int    `json:"new"`
	Due       int    `json:"due"`
	Suspended int    `json:"suspended"`
}

// DeckSummaries lists every deck with due counts computed against
// today's effective quotas. Read-only.
func (c *Controller) DeckSummaries() []DeckSummary {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	studied := c.state.Studied.Effective(now)
	out := make([]DeckSummary, 0, len(c.state.Decks))
	for i := range c.state.Decks {
		deck := &c.state.Decks[i]
		s := DeckSummary{ID: deck.ID, Name: deck.Name, Icon: deck.Icon, Total: len(deck.Cards)}
		for j := range deck.Cards {
			if deck.Cards[j].Suspended {
				s.Suspended++
			}
		}
		for _, card := range srs.DueCards(deck, c.state.Settings, studied, now) {
			if card.SeenCount == 0 {
				s.New++
			} else {
				s.Due++
			}
		}
		out = append(out, s)
	}
	return out
}

// Wallet reports the gold balance with owned and equipped cosmetics.
type Wallet struct {
	Gold     int                            `json:"gold"`
	Owned    []string                       `json:"owned"`
	Equipped map[domain.CosmeticType]string `json:"equipped"`
}

// CosmeticsView returns the wallet snapshot for the shop.
func (c *Controller) CosmeticsView() Wallet {
	c.mu.Lock()
	defer c.mu.Unlock()

	equipped := make(map[domain.CosmeticType]string, len(c.state.Equipped))
	for k, v := range c.state.Equipped {
		equipped[k] = v
	}
	return Wallet{
		Gold:     c.state.Gold,
		Owned:    append([]string(nil), c.state.Owned...),
		Equipped: equipped,
	}
}

// Settings returns a copy of the current settings.
func (c *Controller) Settings() domain.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Settings
}

// Stats returns a copy of the lifetime statistics.
func (c *Controller) Stats() domain.Statistics {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state.Stats
	s.StudyHistory = append([]domain.HistoryEntry(nil), s.StudyHistory...)
	return s
}

// Deck returns a copy of a deck for card-browser views, or false when
// the id is unknown.
func (c *Controller) DeckByID(id string) (domain.Deck, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	deck := c.state.Deck(id)
	if deck == nil {
		return domain.Deck{}, false
	}
	out := *deck
	out.Cards = append([]domain.Card(nil), deck.Cards...)
	return out, true
}
