package srs

import (
	"time"

	"braindrop/internal/domain"
)

// DueCards selects the deck's eligible subset for today: unseen cards up
// to the remaining new-card quota, then seen cards whose due date has
// arrived up to the remaining review quota, each group in deck order.
// Suspended cards are never selected. The studied counters passed in must
// already be rolled over to today (see domain.DailyStudy.RolloverIfNewDay);
// DueCards itself is pure.
func DueCards(deck *domain.Deck, settings domain.Settings, studied domain.DailyStudy, today time.Time) []domain.Card {
	day := domain.StartOfDay(today)
	newBudget := settings.NewPerDay - studied.NewCards
	reviewBudget := settings.ReviewsPerDay - studied.Reviews

	var newPool, reviewPool []domain.Card
	for _, c := range deck.Cards {
		if c.Suspended {
			continue
		}
		if c.SeenCount == 0 {
			if len(newPool) < newBudget {
				newPool = append(newPool, c)
			}
			continue
		}
		due := c.DueDate
		if due.IsZero() {
			// Saves without a due date are treated as due now.
			due = today
		}
		if !domain.StartOfDay(due).After(day) && len(reviewPool) < reviewBudget {
			reviewPool = append(reviewPool, c)
		}
	}
	return append(newPool, reviewPool...)
}
