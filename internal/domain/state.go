package domain

import "time"

// Settings hold the per-day study quotas and the exam date the scheduler
// targets. The exam date is a hard ceiling: no interval may push a card's
// due date past it.
type Settings struct {
	NewPerDay     int       `json:"newPerDay"`
	ReviewsPerDay int       `json:"reviewsPerDay"`
	ExamDate      time.Time `json:"examDate"`
}

// DefaultSettings returns the first-run settings: 10 new cards and 50
// reviews per day, exam three weeks out.
func DefaultSettings(now time.Time) Settings {
	return Settings{
		NewPerDay:     10,
		ReviewsPerDay: 50,
		ExamDate:      now.AddDate(0, 0, 21),
	}
}

// DayKey formats t at day granularity in its own location.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DailyStudy tracks how much of today's quotas has been consumed.
type DailyStudy struct {
	Date     string `json:"date"`
	NewCards int    `json:"newCards"`
	Reviews  int    `json:"reviews"`
}

// RolloverIfNewDay zeroes the counters the first time the stored date
// differs from now's date. Idempotent within a day; reports whether a
// reset happened.
func (d *DailyStudy) RolloverIfNewDay(now time.Time) bool {
	day := DayKey(now)
	if d.Date == day {
		return false
	}
	d.Date = day
	d.NewCards = 0
	d.Reviews = 0
	return true
}

// Effective returns the counters as they apply to now: zeroed when the
// stored date is stale, unchanged otherwise. Read-only companion to
// RolloverIfNewDay.
func (d DailyStudy) Effective(now time.Time) DailyStudy {
	if d.Date != DayKey(now) {
		return DailyStudy{Date: DayKey(now)}
	}
	return d
}

// HistoryEntry is one day's study totals.
type HistoryEntry struct {
	Date         string `json:"date"`
	CardsStudied int    `json:"cardsStudied"`
	Reviews      int    `json:"reviews"`
}

// Statistics are lifetime aggregates across all decks.
type Statistics struct {
	TotalCardsStudied int            `json:"totalCardsStudied"`
	TotalReviews      int            `json:"totalReviews"`
	PerfectAnswers    int            `json:"perfectAnswers"`
	Streak            int            `json:"streak"`
	LongestStreak     int            `json:"longestStreak"`
	TotalGoldEarned   int            `json:"totalGoldEarned"`
	StudyHistory      []HistoryEntry `json:"studyHistory"`
}

// RecordReview folds one graduated card into the aggregates: review and
// perfect counts, gold, the per-day history entry, and the study streak.
// newCard marks a card reviewed for the first time ever.
func (s *Statistics) RecordReview(now time.Time, newCard, perfect bool, gold int) {
	day := DayKey(now)
	n := len(s.StudyHistory)
	if n == 0 || s.StudyHistory[n-1].Date != day {
		yesterday := DayKey(now.AddDate(0, 0, -1))
		if n > 0 && s.StudyHistory[n-1].Date == yesterday {
			s.Streak++
		} else {
			s.Streak = 1
		}
		if s.Streak > s.LongestStreak {
			s.LongestStreak = s.Streak
		}
		s.StudyHistory = append(s.StudyHistory, HistoryEntry{Date: day})
		n++
	}
	entry := &s.StudyHistory[n-1]
	entry.Reviews++
	s.TotalReviews++
	if newCard {
		entry.CardsStudied++
		s.TotalCardsStudied++
	}
	if perfect {
		s.PerfectAnswers++
	}
	s.TotalGoldEarned += gold
}

// State is everything that survives a restart: decks with per-card
// progress, settings, daily counters, the gold balance, cosmetics, and
// aggregate statistics. Session state is deliberately absent.
type State struct {
	Decks    []Deck                  `json:"decks"`
	Settings Settings                `json:"settings"`
	Studied  DailyStudy              `json:"studiedToday"`
	Gold     int                     `json:"gold"`
	Owned    []string                `json:"ownedCosmetics"`
	Equipped map[CosmeticType]string `json:"equippedCosmetics"`
	Stats    Statistics              `json:"statistics"`
}

// DefaultState returns the first-run state with no decks.
func DefaultState(now time.Time) *State {
	return &State{
		Settings: DefaultSettings(now),
		Studied:  DailyStudy{Date: DayKey(now)},
		Owned:    append([]string(nil), DefaultOwned...),
		Equipped: map[CosmeticType]string{CosmeticColor: CosmeticBaseColor},
	}
}

// Deck returns a pointer to the deck with the given id, or nil.
func (s *State) Deck(id string) *Deck {
	for i := range s.Decks {
		if s.Decks[i].ID == id {
			return &s.Decks[i]
		}
	}
	return nil
}

// CardIn returns a pointer to a card inside one of the state's decks.
func (s *State) CardIn(deckID, cardID string) *Card {
	d := s.Deck(deckID)
	if d == nil {
		return nil
	}
	return d.Card(cardID)
}

// Owns reports whether the cosmetic id has been unlocked.
func (s *State) Owns(id string) bool {
	for _, o := range s.Owned {
		if o == id {
			return true
		}
	}
	return false
}
